// internal/core/domain/signals/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"neko-signal-bot/internal/core/domain/features"
	"neko-signal-bot/internal/core/domain/fetchers"
	"neko-signal-bot/internal/core/domain/market"
	"neko-signal-bot/internal/core/domain/position"
	"neko-signal-bot/internal/core/domain/risk"
	"neko-signal-bot/internal/core/domain/signals"
	"neko-signal-bot/internal/core/domain/signals/filters"
	"neko-signal-bot/internal/core/domain/signals/scoring"
	"neko-signal-bot/internal/types"
	"neko-signal-bot/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const eventSource = "scan_engine"

// Recorder - приёмник метрик цикла
type Recorder interface {
	ObserveCycle(d time.Duration)
	RecordOutcome(stage string)
	RecordGateRejection(gate, reason string)
	SetGateStats(gate string, processed, passed, filtered int64)
	RecordSignal(direction string)
	RecordResolution(reason string)
	SetOpenPositions(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCycle(time.Duration)         {}
func (nopRecorder) RecordOutcome(string)               {}
func (nopRecorder) RecordGateRejection(string, string) {}
func (nopRecorder) SetGateStats(string, int64, int64, int64) {}
func (nopRecorder) RecordSignal(string)                {}
func (nopRecorder) RecordResolution(string)            {}
func (nopRecorder) SetOpenPositions(int)               {}

// ComputeFunc строит признаки по серии и стакану
type ComputeFunc func(series *market.Series, book market.OrderBook, cfg features.Config) (*features.Set, error)

// Config параметры цикла
type Config struct {
	Symbols      []string
	MaxWorkers   int
	CycleTimeout time.Duration
}

// Dependencies всё, что движок получает снаружи
type Dependencies struct {
	Fetcher    fetchers.MarketDataFetcher
	Book       *position.Book
	Session    *filters.SessionGate
	Gates      *filters.Cascade // гейты по барам, после загрузки данных
	Features   features.Config
	Thresholds scoring.Thresholds
	Risk       *risk.Manager

	// необязательные
	Publisher types.Publisher
	Recorder  Recorder
	Clock     func() time.Time
	Compute   ComputeFunc
}

// ScanEngine - координатор сканирования: один проход по всем инструментам за цикл
type ScanEngine struct {
	cfg  Config
	deps Dependencies
}

// NewScanEngine проверяет зависимости и подставляет значения по умолчанию
func NewScanEngine(cfg Config, deps Dependencies) (*ScanEngine, error) {
	var missing []string
	if len(cfg.Symbols) == 0 {
		missing = append(missing, "symbols")
	}
	if deps.Fetcher == nil {
		missing = append(missing, "fetcher")
	}
	if deps.Book == nil {
		missing = append(missing, "position book")
	}
	if deps.Session == nil {
		missing = append(missing, "session gate")
	}
	if deps.Gates == nil {
		missing = append(missing, "gate cascade")
	}
	if deps.Risk == nil {
		missing = append(missing, "risk manager")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("NewScanEngine: missing %s", strings.Join(missing, ", "))
	}

	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = len(cfg.Symbols)
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Compute == nil {
		deps.Compute = features.Compute
	}
	return &ScanEngine{cfg: cfg, deps: deps}, nil
}

// Symbols инструменты движка
func (e *ScanEngine) Symbols() []string {
	return append([]string(nil), e.cfg.Symbols...)
}

// Book книга позиций (read-only доступ для статуса)
func (e *ScanEngine) Book() *position.Book {
	return e.deps.Book
}

// GateStats статистика гейтов по имени, включая сессионный
func (e *ScanEngine) GateStats() map[string]filters.FilterStats {
	stats := e.deps.Gates.Stats()
	stats[e.deps.Session.Name()] = e.deps.Session.GetStats()
	return stats
}

// RunCycle оценивает все инструменты параллельно и ждёт всех.
// Ошибка одного инструмента не отменяет соседей.
func (e *ScanEngine) RunCycle(ctx context.Context) CycleReport {
	now := e.deps.Clock().UTC()
	report := CycleReport{Started: now}

	if e.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.CycleTimeout)
		defer cancel()
	}

	outcomes := make([]Outcome, len(e.cfg.Symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxWorkers)
	for i, symbol := range e.cfg.Symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			outcomes[i] = e.evaluate(gctx, symbol, now)
			return nil
		})
	}
	g.Wait()

	report.Outcomes = outcomes
	report.Duration = e.deps.Clock().UTC().Sub(now)
	report.OpenCount = e.deps.Book.OpenCount()

	for _, o := range outcomes {
		e.deps.Recorder.RecordOutcome(string(o.Stage))
	}
	e.deps.Recorder.ObserveCycle(report.Duration)
	e.deps.Recorder.SetOpenPositions(report.OpenCount)
	for name, st := range e.GateStats() {
		e.deps.Recorder.SetGateStats(name, st.TotalProcessed, st.PassedThrough, st.FilteredOut)
	}

	e.logCycle(report)
	e.publish(types.EventCycleCompleted, report.Summary())
	return report
}

// evaluate - конвейер одного инструмента; всегда возвращает исход, не ошибку
func (e *ScanEngine) evaluate(ctx context.Context, symbol string, now time.Time) Outcome {
	out := Outcome{Symbol: symbol, Direction: signals.DirectionNone}
	if ctx.Err() != nil {
		return cancelled(out, ctx.Err())
	}

	// 1. сессия: до похода на биржу
	if v := e.deps.Session.Evaluate(filters.Input{Symbol: symbol, Now: now}); !v.Passed {
		e.deps.Recorder.RecordGateRejection(v.Gate, v.Reason)
		out.Stage, out.Reason = StageSessionClosed, v.Reason
		return out
	}

	// 2. свечи и стакан параллельно
	series, book, err := e.fetch(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(out, err)
		}
		logger.Warn("⚠️ %s: данные не получены: %v", symbol, err)
		out.Stage, out.Err = StageFetchFailed, err
		return out
	}

	// короткая серия останавливается до гейтов
	if need := e.deps.Features.MinBars(); series.Len() < need {
		out.Stage, out.Reason = StageInsufficientData, filters.ReasonInsufficientData
		out.Err = &features.InsufficientDataError{Symbol: symbol, Have: series.Len(), Need: need}
		logger.Debug("⏭️ %s: %v", symbol, out.Err)
		return out
	}

	bars := series.Bars()

	// 3. каскад гейтов по барам
	if v := e.deps.Gates.Evaluate(filters.Input{Symbol: symbol, Now: now, Bars: bars}); !v.Passed {
		e.deps.Recorder.RecordGateRejection(v.Gate, v.Reason)
		logger.Debug("🚫 %s: отсечён %s (%s)", symbol, v.Gate, v.Reason)
		out.Stage, out.Reason = StageGateRejected, v.Reason
		return out
	}

	if ctx.Err() != nil {
		return cancelled(out, ctx.Err())
	}

	// 4. проверка открытой позиции по последнему бару
	last := bars[len(bars)-1]
	if res, ok := e.deps.Book.Observe(symbol, last); ok {
		out.Resolution = &res
		e.deps.Recorder.RecordResolution(res.Reason)
		logger.Info("🏁 %s %s закрыта: %s по %.4f", symbol, res.Position.Direction, res.Reason, res.ExitPrice)
		e.publish(types.EventPositionResolved, types.ResolutionEvent{
			PositionID: res.Position.ID,
			Symbol:     symbol,
			Direction:  string(res.Position.Direction),
			Reason:     res.Reason,
			Entry:      res.Position.Entry,
			ExitPrice:  res.ExitPrice,
			BarTime:    res.BarTime,
			Timestamp:  e.deps.Clock().UTC(),
		})
	}

	set, ferr := e.deps.Compute(series, book, e.deps.Features)

	// 5. пока позиция открыта, счёт и риск не считаются
	if state, serr := e.deps.Book.Snapshot(symbol); serr == nil && state.State != position.StateIdle {
		e.publishSnapshot(symbol, last, set, 0, state.State)
		out.Stage = StageLocked
		return out
	}

	// 6. признаки
	if ferr != nil {
		out.Stage, out.Err = StageInsufficientData, ferr
		var insufficient *features.InsufficientDataError
		if errors.As(ferr, &insufficient) {
			out.Reason = filters.ReasonInsufficientData
		} else {
			out.Reason = "degenerate_bar"
		}
		logger.Debug("⏭️ %s: %v", symbol, ferr)
		return out
	}

	// 7. счёт и направление
	score := scoring.Evaluate(set)
	direction := e.deps.Thresholds.Eligibility(score.Total)
	out.Score, out.Direction = score.Total, direction
	e.publishSnapshot(symbol, last, set, score.Total, position.StateIdle)

	if !direction.IsTradable() {
		out.Stage = StageNoSignal
		return out
	}

	// 8. SL/TP
	decision := e.deps.Risk.Evaluate(direction, set)
	if !decision.Accepted {
		out.Stage, out.Reason = StageRiskRejected, decision.Reason
		logger.Debug("📉 %s %s: риск отклонён (%s, RR=%.2f) %s",
			symbol, direction, decision.Reason, decision.RiskReward, score)
		return out
	}

	// 9. отмена до фиксации перехода
	if ctx.Err() != nil {
		return cancelled(out, ctx.Err())
	}

	// 10. открытие
	pos, err := e.deps.Book.Open(symbol, direction, decision.Params, score.Total, set.BarTime, e.deps.Clock())
	if err != nil {
		out.Err = err
		switch {
		case errors.Is(err, position.ErrSameBar):
			out.Stage, out.Reason = StageNoSignal, ReasonSameBar
		case errors.Is(err, position.ErrLocked):
			out.Stage = StageLocked
		default:
			out.Stage, out.Reason = StageRiskRejected, err.Error()
		}
		return out
	}

	out.Stage, out.Position = StageOpened, &pos
	e.deps.Recorder.RecordSignal(string(direction))
	e.publish(types.EventSignalOpened, types.SignalEvent{
		ID:         pos.ID,
		Symbol:     symbol,
		Direction:  string(pos.Direction),
		Entry:      pos.Entry,
		TakeProfit: pos.TakeProfit,
		StopLoss:   pos.StopLoss,
		RiskReward: pos.RiskReward,
		Score:      pos.Score,
		BarTime:    pos.OpenedAt,
		Timestamp:  pos.CreatedAt,
	})
	return out
}

func cancelled(out Outcome, err error) Outcome {
	out.Stage, out.Err = StageCancelled, err
	return out
}

func (e *ScanEngine) fetch(ctx context.Context, symbol string) (*market.Series, market.OrderBook, error) {
	var (
		series *market.Series
		book   market.OrderBook
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := e.deps.Fetcher.FetchBars(gctx, symbol)
		if err != nil {
			return err
		}
		if s == nil || s.Len() == 0 {
			return fmt.Errorf("ScanEngine.fetch %s: %w", symbol, market.ErrEmptySeries)
		}
		series = s
		return nil
	})
	g.Go(func() error {
		b, err := e.deps.Fetcher.FetchOrderBook(gctx, symbol)
		if err != nil {
			return err
		}
		book = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, market.OrderBook{}, err
	}
	return series, book, nil
}

func (e *ScanEngine) publishSnapshot(symbol string, last market.Bar, set *features.Set, score int, state position.State) {
	snap := types.MarketSnapshot{
		Symbol:     symbol,
		Close:      last.Close,
		Volume:     last.Volume,
		OFI:        last.OFI(),
		Score:      score,
		TradeState: string(state),
		Timestamp:  last.OpenTime,
	}
	if set != nil {
		snap.OFI = set.OFIMean
		snap.CVD = set.CVDLast()
		snap.VWAP = set.VWAP
	}
	e.publish(types.EventMarketSnapshot, snap)
}

func (e *ScanEngine) publish(eventType types.EventType, data interface{}) {
	if e.deps.Publisher == nil {
		return
	}
	err := e.deps.Publisher.Publish(types.Event{
		Type:   eventType,
		Source: eventSource,
		Data:   data,
	})
	if err != nil {
		logger.Warn("⚠️ Событие %s не опубликовано: %v", eventType, err)
	}
}

func (e *ScanEngine) logCycle(r CycleReport) {
	counts := r.Counts()
	parts := make([]string, 0, len(counts))
	for _, stage := range sortedStages(counts) {
		parts = append(parts, fmt.Sprintf("%s=%d", stage, counts[stage]))
	}
	logger.Info("🔄 Цикл завершён за %v: %s | открыто позиций: %d",
		r.Duration.Round(time.Millisecond), strings.Join(parts, " "), r.OpenCount)
}
