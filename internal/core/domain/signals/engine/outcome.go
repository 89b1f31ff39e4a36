// internal/core/domain/signals/engine/outcome.go
package engine

import (
	"sort"
	"time"

	"neko-signal-bot/internal/core/domain/position"
	"neko-signal-bot/internal/core/domain/signals"
	"neko-signal-bot/internal/types"
)

// Stage - чем закончилась оценка инструмента в цикле
type Stage string

const (
	StageFetchFailed      Stage = "fetch_failed"
	StageSessionClosed    Stage = "session_closed"
	StageGateRejected     Stage = "gate_rejected"
	StageInsufficientData Stage = "insufficient_data"
	StageLocked           Stage = "locked"
	StageNoSignal         Stage = "no_signal"
	StageRiskRejected     Stage = "risk_rejected"
	StageOpened           Stage = "opened"
	StageCancelled        Stage = "cancelled"
)

// AllStages в порядке прохождения конвейера
var AllStages = []Stage{
	StageFetchFailed, StageSessionClosed, StageGateRejected, StageInsufficientData,
	StageLocked, StageNoSignal, StageRiskRejected, StageOpened, StageCancelled,
}

// ReasonSameBar - сигнал на баре, который только что закрыл позицию
const ReasonSameBar = "same_bar"

// Outcome результат одного инструмента за цикл
type Outcome struct {
	Symbol     string
	Stage      Stage
	Reason     string
	Score      int
	Direction  signals.Direction
	Position   *position.VirtualPosition
	Resolution *position.Resolution
	Err        error
}

// CycleReport собирает все исходы цикла. Порядок исходов не гарантируется.
type CycleReport struct {
	Started   time.Time
	Duration  time.Duration
	Outcomes  []Outcome
	OpenCount int
}

// Counts число исходов по стадиям
func (r CycleReport) Counts() map[string]int {
	counts := make(map[string]int)
	for _, o := range r.Outcomes {
		counts[string(o.Stage)]++
	}
	return counts
}

// Opened открытые в цикле позиции
func (r CycleReport) Opened() []position.VirtualPosition {
	var out []position.VirtualPosition
	for _, o := range r.Outcomes {
		if o.Position != nil {
			out = append(out, *o.Position)
		}
	}
	return out
}

// Resolved закрытые в цикле позиции
func (r CycleReport) Resolved() []position.Resolution {
	var out []position.Resolution
	for _, o := range r.Outcomes {
		if o.Resolution != nil {
			out = append(out, *o.Resolution)
		}
	}
	return out
}

// Outcome исход по инструменту
func (r CycleReport) Outcome(symbol string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Symbol == symbol {
			return o, true
		}
	}
	return Outcome{}, false
}

// Summary для шины и логов
func (r CycleReport) Summary() types.CycleSummary {
	return types.CycleSummary{
		Started:   r.Started,
		Duration:  r.Duration,
		Outcomes:  r.Counts(),
		Opened:    len(r.Opened()),
		Resolved:  len(r.Resolved()),
		OpenCount: r.OpenCount,
	}
}

// sortedStages ключи Counts в стабильном порядке для логов
func sortedStages(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
