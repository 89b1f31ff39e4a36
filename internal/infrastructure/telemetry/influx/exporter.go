// internal/infrastructure/telemetry/influx/exporter.go
package influx

import (
	"context"
	"fmt"
	"time"

	"neko-signal-bot/internal/infrastructure/config"
	"neko-signal-bot/internal/types"
	"neko-signal-bot/pkg/logger"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const defaultMeasurement = "market_data"

// Exporter пишет снимки рынка в InfluxDB.
// Запись fire-and-forget: ошибка логируется и не влияет на цикл.
type Exporter struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
	timeout     time.Duration
}

// NewExporter подключается к InfluxDB и проверяет здоровье сервера
func NewExporter(ctx context.Context, cfg config.InfluxConfig) (*Exporter, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influx health %s: %w", cfg.URL, err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("influx health %s: status %s", cfg.URL, health.Status)
	}

	e := NewExporterWithAPI(client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg.Measurement, cfg.Timeout)
	e.client = client
	logger.Info("✅ InfluxDB подключен: %s (org=%s, bucket=%s)", cfg.URL, cfg.Org, cfg.Bucket)
	return e, nil
}

// NewExporterWithAPI собирает экспортёр поверх готового WriteAPIBlocking
func NewExporterWithAPI(writeAPI api.WriteAPIBlocking, measurement string, timeout time.Duration) *Exporter {
	if measurement == "" {
		measurement = defaultMeasurement
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Exporter{
		writeAPI:    writeAPI,
		measurement: measurement,
		timeout:     timeout,
	}
}

// Point строит точку market_data
func (e *Exporter) Point(s types.MarketSnapshot) *write.Point {
	return influxdb2.NewPoint(
		e.measurement,
		map[string]string{
			"symbol":      s.Symbol,
			"trade_state": s.TradeState,
		},
		map[string]interface{}{
			"close":  s.Close,
			"volume": s.Volume,
			"ofi":    s.OFI,
			"cvd":    s.CVD,
			"vwap":   s.VWAP,
			"score":  s.Score,
		},
		s.Timestamp,
	)
}

// Write синхронно пишет один снимок
func (e *Exporter) Write(ctx context.Context, s types.MarketSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.writeAPI.WritePoint(ctx, e.Point(s)); err != nil {
		return fmt.Errorf("influx write %s: %w", s.Symbol, err)
	}
	return nil
}

// Export пишет снимок из шины. Ошибка записи только логируется.
func (e *Exporter) Export(s types.MarketSnapshot) error {
	if err := e.Write(context.Background(), s); err != nil {
		logger.Warn("⚠️ Телеметрия не записана: %v", err)
	}
	return nil
}

// Close закрывает клиента, если экспортёр им владеет
func (e *Exporter) Close() {
	if e.client != nil {
		e.client.Close()
	}
}
