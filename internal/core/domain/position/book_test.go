package position

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neko-signal-bot/internal/core/domain/market"
	"neko-signal-bot/internal/core/domain/risk"
	"neko-signal-bot/internal/core/domain/signals"
)

var t0 = time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC)

var longParams = risk.Params{Entry: 100, StopLoss: 98, TakeProfit: 105, RiskReward: 2.5}
var shortParams = risk.Params{Entry: 100, StopLoss: 102, TakeProfit: 95, RiskReward: 2.5}

func barAt(minutes int, low, high, closePrice float64) market.Bar {
	return market.Bar{
		OpenTime: t0.Add(time.Duration(minutes) * time.Minute),
		Open:     100,
		High:     high,
		Low:      low,
		Close:    closePrice,
		Volume:   10,
	}
}

func TestOpenLocksPair(t *testing.T) {
	b := NewBook([]string{"BTCUSDT", "ETHUSDT"}, Options{})

	pos, err := b.Open("BTCUSDT", signals.DirectionLong, longParams, 5, t0, t0)
	require.NoError(t, err)
	assert.NotEmpty(t, pos.ID)
	assert.Equal(t, 105.0, pos.TakeProfit)
	assert.Equal(t, t0, pos.OpenedAt)
	assert.True(t, b.IsLocked("BTCUSDT"))
	assert.False(t, b.IsLocked("ETHUSDT"))

	_, err = b.Open("BTCUSDT", signals.DirectionShort, shortParams, -5, t0.Add(time.Minute), t0)
	assert.ErrorIs(t, err, ErrLocked)

	snap, err := b.Snapshot("BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, StateLong, snap.State)
	require.NotNil(t, snap.Position)
	assert.Equal(t, pos, *snap.Position)
	assert.Equal(t, 1, b.OpenCount())
}

func TestOpenErrors(t *testing.T) {
	b := NewBook([]string{"BTCUSDT"}, Options{})

	_, err := b.Open("DOGEUSDT", signals.DirectionLong, longParams, 5, t0, t0)
	assert.ErrorIs(t, err, ErrUnknownInstrument)

	_, err = b.Open("BTCUSDT", signals.DirectionNone, longParams, 0, t0, t0)
	assert.ErrorIs(t, err, ErrInvalidDirection)
	assert.False(t, b.IsLocked("BTCUSDT"))

	_, err = b.Snapshot("DOGEUSDT")
	assert.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestSnapshotIsCopy(t *testing.T) {
	b := NewBook([]string{"BTCUSDT"}, Options{})
	_, err := b.Open("BTCUSDT", signals.DirectionLong, longParams, 5, t0, t0)
	require.NoError(t, err)

	snap, _ := b.Snapshot("BTCUSDT")
	snap.Position.StopLoss = 1

	again, _ := b.Snapshot("BTCUSDT")
	assert.Equal(t, 98.0, again.Position.StopLoss)
}

func TestObserveLong(t *testing.T) {
	tests := []struct {
		name   string
		bar    market.Bar
		hit    bool
		reason string
		exit   float64
	}{
		{"inside range", barAt(1, 97, 106, 101), false, "", 0},
		{"take profit", barAt(1, 100, 106, 105), true, ReasonTakeProfit, 105},
		{"stop loss", barAt(1, 97, 100, 97.5), true, ReasonStopLoss, 97.5},
		{"signal bar ignored", barAt(0, 90, 110, 90), false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBook([]string{"BTCUSDT"}, Options{})
			_, err := b.Open("BTCUSDT", signals.DirectionLong, longParams, 5, t0, t0)
			require.NoError(t, err)

			res, ok := b.Observe("BTCUSDT", tt.bar)
			assert.Equal(t, tt.hit, ok)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, tt.exit, res.ExitPrice)
			assert.Equal(t, !tt.hit, b.IsLocked("BTCUSDT"))
		})
	}
}

func TestObserveShort(t *testing.T) {
	b := NewBook([]string{"ETHUSDT"}, Options{})
	_, err := b.Open("ETHUSDT", signals.DirectionShort, shortParams, -4, t0, t0)
	require.NoError(t, err)

	_, ok := b.Observe("ETHUSDT", barAt(1, 96, 101, 99))
	assert.False(t, ok)

	res, ok := b.Observe("ETHUSDT", barAt(2, 94, 99, 94.5))
	require.True(t, ok)
	assert.Equal(t, ReasonTakeProfit, res.Reason)
	assert.Equal(t, signals.DirectionShort, res.Position.Direction)
}

func TestWicksStopLossFirst(t *testing.T) {
	b := NewBook([]string{"BTCUSDT"}, Options{UseWicks: true})
	_, err := b.Open("BTCUSDT", signals.DirectionLong, longParams, 5, t0, t0)
	require.NoError(t, err)

	// бар задевает оба уровня
	res, ok := b.Observe("BTCUSDT", barAt(1, 97, 106, 101))
	require.True(t, ok)
	assert.Equal(t, ReasonStopLoss, res.Reason)
	assert.Equal(t, 98.0, res.ExitPrice)
}

func TestWicksShort(t *testing.T) {
	b := NewBook([]string{"BTCUSDT"}, Options{UseWicks: true})
	_, err := b.Open("BTCUSDT", signals.DirectionShort, shortParams, -5, t0, t0)
	require.NoError(t, err)

	res, ok := b.Observe("BTCUSDT", barAt(1, 94.9, 101, 99))
	require.True(t, ok)
	assert.Equal(t, ReasonTakeProfit, res.Reason)
	assert.Equal(t, 95.0, res.ExitPrice)
}

func TestObserveIsIdempotent(t *testing.T) {
	b := NewBook([]string{"BTCUSDT"}, Options{})
	_, err := b.Open("BTCUSDT", signals.DirectionLong, longParams, 5, t0, t0)
	require.NoError(t, err)

	bar := barAt(3, 100, 107, 106)
	_, ok := b.Observe("BTCUSDT", bar)
	assert.True(t, ok)
	_, ok = b.Observe("BTCUSDT", bar)
	assert.False(t, ok)

	snap, _ := b.Snapshot("BTCUSDT")
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Position)
	assert.Equal(t, bar.OpenTime, snap.LastResolvedBar)
}

func TestSameBarReentry(t *testing.T) {
	b := NewBook([]string{"BTCUSDT"}, Options{})
	_, err := b.Open("BTCUSDT", signals.DirectionLong, longParams, 5, t0, t0)
	require.NoError(t, err)

	bar := barAt(2, 100, 106, 105)
	_, ok := b.Observe("BTCUSDT", bar)
	require.True(t, ok)

	_, err = b.Open("BTCUSDT", signals.DirectionShort, shortParams, -5, bar.OpenTime, t0)
	assert.True(t, errors.Is(err, ErrSameBar))

	_, err = b.Open("BTCUSDT", signals.DirectionShort, shortParams, -5, bar.OpenTime.Add(time.Minute), t0)
	assert.NoError(t, err)
	assert.True(t, b.IsLocked("BTCUSDT"))
}

func TestObserveIdleAndUnknown(t *testing.T) {
	b := NewBook([]string{"BTCUSDT"}, Options{})
	_, ok := b.Observe("BTCUSDT", barAt(1, 0, 1000, 500))
	assert.False(t, ok)
	_, ok = b.Observe("XRPUSDT", barAt(1, 0, 1000, 500))
	assert.False(t, ok)
}

func TestConcurrentOpenSinglePosition(t *testing.T) {
	b := NewBook([]string{"SOLUSDT"}, Options{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	opened := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir, params := signals.DirectionLong, longParams
			if i%2 == 1 {
				dir, params = signals.DirectionShort, shortParams
			}
			if _, err := b.Open("SOLUSDT", dir, params, 4, t0, t0); err == nil {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, opened)
	snaps := b.Snapshots()
	require.Len(t, snaps, 1)
	assert.NotEqual(t, StateIdle, snaps[0].State)
}
