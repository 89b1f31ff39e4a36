// internal/infrastructure/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "neko"

// Metrics - счётчики сканера. Регистрируются в собственном реестре,
// чтобы тесты могли создавать независимые экземпляры.
type Metrics struct {
	registry *prometheus.Registry

	Cycles         prometheus.Counter
	CycleDuration  prometheus.Histogram
	Outcomes       *prometheus.CounterVec
	GateRejections *prometheus.CounterVec
	GateEvals      *prometheus.GaugeVec
	Signals        *prometheus.CounterVec
	Resolutions    *prometheus.CounterVec
	OpenPositions  prometheus.Gauge
	SinkFailures   *prometheus.CounterVec
}

// New создаёт метрики. withRuntime добавляет go_* и process_* коллекторы.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "cycles_total",
			Help:      "Completed scan cycles",
		}),
		CycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one scan cycle",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "outcomes_total",
			Help:      "Per-instrument cycle outcomes by stage",
		}, []string{"stage"}),
		GateRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gates",
			Name:      "rejections_total",
			Help:      "Gate rejections by gate and reason",
		}, []string{"gate", "reason"}),
		GateEvals: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gates",
			Name:      "evaluations",
			Help:      "Gate evaluations since start by gate and result",
		}, []string{"gate", "result"}),
		Signals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "opened_total",
			Help:      "Virtual positions opened by direction",
		}, []string{"direction"}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "resolved_total",
			Help:      "Virtual positions resolved by reason",
		}, []string{"reason"}),
		OpenPositions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "positions",
			Name:      "open",
			Help:      "Currently open virtual positions",
		}),
		SinkFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "failures_total",
			Help:      "Failed deliveries by sink",
		}, []string{"sink"}),
	}
}

// Registry возвращает реестр для promhttp
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveCycle(d time.Duration) {
	m.Cycles.Inc()
	m.CycleDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordOutcome(stage string) {
	m.Outcomes.WithLabelValues(stage).Inc()
}

func (m *Metrics) RecordGateRejection(gate, reason string) {
	m.GateRejections.WithLabelValues(gate, reason).Inc()
}

// SetGateStats выставляет накопленную статистику гейта
func (m *Metrics) SetGateStats(gate string, processed, passed, filtered int64) {
	m.GateEvals.WithLabelValues(gate, "processed").Set(float64(processed))
	m.GateEvals.WithLabelValues(gate, "passed").Set(float64(passed))
	m.GateEvals.WithLabelValues(gate, "filtered").Set(float64(filtered))
}

func (m *Metrics) RecordSignal(direction string) {
	m.Signals.WithLabelValues(direction).Inc()
}

func (m *Metrics) RecordResolution(reason string) {
	m.Resolutions.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetOpenPositions(n int) {
	m.OpenPositions.Set(float64(n))
}

func (m *Metrics) RecordSinkFailure(sink string) {
	m.SinkFailures.WithLabelValues(sink).Inc()
}
