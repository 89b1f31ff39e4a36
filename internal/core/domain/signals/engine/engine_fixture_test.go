package engine

import (
	"context"
	"testing"
	"time"

	"neko-signal-bot/internal/core/domain/features"
	"neko-signal-bot/internal/core/domain/market"
	"neko-signal-bot/internal/core/domain/position"
	"neko-signal-bot/internal/core/domain/risk"
	"neko-signal-bot/internal/core/domain/signals"
	"neko-signal-bot/internal/core/domain/signals/filters"
	"neko-signal-bot/internal/core/domain/signals/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Рыночная картина на 40 минутных барах, 12:21..13:00 UTC:
// боковик 99.5..99.85, фрактальный максимум 103.5 на баре 28,
// фрактальный минимум 99.3 на баре 33. Последний бар снимает минимум
// и закрывается на 100.3 при покупательском потоке 70%.
// Стакан: биды у цены плотнее асков.
const fixtureBars = 40

var fixtureEnd = time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)

func sweepLongBars() []market.Bar {
	bars := make([]market.Bar, fixtureBars)
	for i := range bars {
		b := market.Bar{
			OpenTime:       fixtureEnd.Add(time.Duration(i-fixtureBars+1) * time.Minute),
			Open:           99.6,
			High:           99.85,
			Low:            99.5,
			Close:          99.7,
			Volume:         1000,
			TakerBuyVolume: 550,
		}
		if i >= 30 {
			b.TakerBuyVolume = 600
		}
		bars[i] = b
	}
	bars[28].High = 103.5
	bars[33].Low = 99.3

	last := &bars[fixtureBars-1]
	last.Open, last.High, last.Low, last.Close = 99.5, 100.4, 99.2, 100.3
	last.Volume, last.TakerBuyVolume = 2000, 1400
	return bars
}

func sweepLongBook(symbol string) market.OrderBook {
	bids := []market.OrderBookLevel{{Price: 100.25, Size: 10}, {Price: 100.2, Size: 5}}
	asks := []market.OrderBookLevel{{Price: 100.35, Size: 1}, {Price: 100.4, Size: 2}}
	return market.NewOrderBook(symbol, bids, asks, 20, fixtureEnd)
}

// mirrorBars отражает цены относительно 100 и меняет стороны потока
func mirrorBars(bars []market.Bar) []market.Bar {
	out := make([]market.Bar, len(bars))
	for i, b := range bars {
		out[i] = market.Bar{
			OpenTime:       b.OpenTime,
			Open:           200 - b.Open,
			High:           200 - b.Low,
			Low:            200 - b.High,
			Close:          200 - b.Close,
			Volume:         b.Volume,
			TakerBuyVolume: b.Volume - b.TakerBuyVolume,
		}
	}
	return out
}

func mirrorBook(ob market.OrderBook) market.OrderBook {
	flip := func(levels []market.OrderBookLevel) []market.OrderBookLevel {
		out := make([]market.OrderBookLevel, len(levels))
		for i, l := range levels {
			out[i] = market.OrderBookLevel{Price: 200 - l.Price, Size: l.Size}
		}
		return out
	}
	return market.NewOrderBook(ob.Symbol, flip(ob.Asks), flip(ob.Bids), 20, ob.Timestamp)
}

// fixtureFetcher отдаёт бары и стакан по символу
type fixtureFetcher struct {
	stubFetcher
	books map[string]market.OrderBook
}

func (f *fixtureFetcher) FetchOrderBook(ctx context.Context, symbol string) (market.OrderBook, error) {
	return f.books[symbol], nil
}

// newFixtureEngine собирает движок с настоящим расчётом признаков
func newFixtureEngine(t *testing.T, symbols []string) (*ScanEngine, *fixtureFetcher, *position.Book, *time.Time) {
	t.Helper()
	fetcher := &fixtureFetcher{
		stubFetcher: stubFetcher{bars: map[string][]market.Bar{}, errs: map[string]error{}},
		books:       map[string]market.OrderBook{},
	}
	book := position.NewBook(symbols, position.Options{})
	clock := fixtureEnd.Add(time.Minute)
	e, err := NewScanEngine(Config{Symbols: symbols, MaxWorkers: 2}, Dependencies{
		Fetcher:    fetcher,
		Book:       book,
		Session:    filters.NewSessionGate(12, 21),
		Gates:      filters.NewCascade(filters.NewAntiManipulationGate(filters.DefaultWashConfig())),
		Features:   features.DefaultConfig(),
		Thresholds: scoring.DefaultThresholds(),
		Risk:       risk.NewManager(risk.DefaultConfig()),
		Publisher:  &recordingPublisher{},
		Clock:      func() time.Time { return clock },
	})
	require.NoError(t, err)
	return e, fetcher, book, &clock
}

// nextBar сдвигает окно на один бар
func nextBar(bars []market.Bar, b market.Bar) []market.Bar {
	b.OpenTime = bars[len(bars)-1].OpenTime.Add(time.Minute)
	return append(append([]market.Bar(nil), bars[1:]...), b)
}

func TestComputedFeaturesOpenLongThenTakeProfit(t *testing.T) {
	e, fetcher, book, clock := newFixtureEngine(t, []string{"BTCUSDT"})
	bars := sweepLongBars()
	fetcher.set("BTCUSDT", bars)
	fetcher.books["BTCUSDT"] = sweepLongBook("BTCUSDT")

	out, ok := e.RunCycle(context.Background()).Outcome("BTCUSDT")
	require.True(t, ok)
	require.Equal(t, StageOpened, out.Stage, "reason=%s err=%v", out.Reason, out.Err)
	assert.Equal(t, 5, out.Score)
	assert.Equal(t, signals.DirectionLong, out.Direction)

	pos := *out.Position
	assert.Equal(t, 100.3, pos.Entry)
	// якорь SL - HVN 100.275 под ценой, минус 1.5 ATR
	assert.InDelta(t, 99.2464, pos.StopLoss, 1e-3)
	// выше цены узлов нет, TP по свинг-максимуму
	assert.Equal(t, 103.5, pos.TakeProfit)
	assert.InDelta(t, 3.0373, pos.RiskReward, 1e-3)

	*clock = clock.Add(time.Minute)
	fetcher.set("BTCUSDT", nextBar(bars, market.Bar{
		Open: 100.3, High: 103.8, Low: 100.2, Close: 103.6, Volume: 2000, TakerBuyVolume: 1400,
	}))
	out, _ = e.RunCycle(context.Background()).Outcome("BTCUSDT")
	require.NotNil(t, out.Resolution, "stage=%s reason=%s", out.Stage, out.Reason)
	assert.Equal(t, position.ReasonTakeProfit, out.Resolution.Reason)
	assert.Equal(t, 103.6, out.Resolution.ExitPrice)
	assert.False(t, book.IsLocked("BTCUSDT"))
}

func TestComputedFeaturesOpenShortThenTakeProfit(t *testing.T) {
	e, fetcher, book, clock := newFixtureEngine(t, []string{"ETHUSDT"})
	bars := mirrorBars(sweepLongBars())
	fetcher.set("ETHUSDT", bars)
	fetcher.books["ETHUSDT"] = mirrorBook(sweepLongBook("ETHUSDT"))

	out, _ := e.RunCycle(context.Background()).Outcome("ETHUSDT")
	require.Equal(t, StageOpened, out.Stage, "reason=%s err=%v", out.Reason, out.Err)
	assert.Equal(t, -5, out.Score)
	assert.Equal(t, signals.DirectionShort, out.Direction)

	pos := *out.Position
	assert.InDelta(t, 99.7, pos.Entry, 1e-9)
	assert.InDelta(t, 100.7536, pos.StopLoss, 1e-3)
	assert.InDelta(t, 96.5, pos.TakeProfit, 1e-9)
	assert.InDelta(t, 3.0373, pos.RiskReward, 1e-3)
	assert.True(t, book.IsLocked("ETHUSDT"))

	*clock = clock.Add(time.Minute)
	fetcher.set("ETHUSDT", nextBar(bars, market.Bar{
		Open: 99.7, High: 99.8, Low: 96.2, Close: 96.4, Volume: 2000, TakerBuyVolume: 600,
	}))
	out, _ = e.RunCycle(context.Background()).Outcome("ETHUSDT")
	require.NotNil(t, out.Resolution, "stage=%s reason=%s", out.Stage, out.Reason)
	assert.Equal(t, position.ReasonTakeProfit, out.Resolution.Reason)
	assert.InDelta(t, 96.4, out.Resolution.ExitPrice, 1e-9)
}

func TestSweepNeedsNodeAtOrBelowClose(t *testing.T) {
	cfg := features.DefaultConfig()
	bars := sweepLongBars()
	series, err := market.SeriesFromBars("BTCUSDT", time.Minute, len(bars), bars)
	require.NoError(t, err)
	set, err := features.Compute(series, sweepLongBook("BTCUSDT"), cfg)
	require.NoError(t, err)

	node, ok := set.NearHVN()
	require.True(t, ok)
	assert.InDelta(t, 100.275, node, 1e-9)
	assert.Equal(t, 1, scoring.Evaluate(set).Contributions[scoring.LiquiditySweep])

	// тот же снос минимума, но закрытие ниже узла в том же бине
	bars[len(bars)-1].Close = 100.22
	series, err = market.SeriesFromBars("BTCUSDT", time.Minute, len(bars), bars)
	require.NoError(t, err)
	set, err = features.Compute(series, sweepLongBook("BTCUSDT"), cfg)
	require.NoError(t, err)

	assert.True(t, set.Sweep.Bullish)
	node, ok = set.NearHVN()
	require.True(t, ok)
	assert.Greater(t, node, set.Close)

	score := scoring.Evaluate(set)
	assert.Equal(t, 0, score.Contributions[scoring.LiquiditySweep])
	assert.Equal(t, 4, score.Total)
	assert.Equal(t, signals.DirectionLong, scoring.DefaultThresholds().Eligibility(score.Total))
}
