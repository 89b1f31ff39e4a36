package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neko-signal-bot/internal/core/domain/market"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// expandingBars бары с растущим диапазоном: ATR последнего бара выше своего среднего
func expandingBars(n int) []market.Bar {
	bars := make([]market.Bar, n)
	for i := range bars {
		half := float64(i+1) / 2
		bars[i] = market.Bar{
			OpenTime:       day.Add(time.Duration(i) * time.Minute),
			Open:           100,
			High:           100 + half,
			Low:            100 - half,
			Close:          100,
			Volume:         1000,
			TakerBuyVolume: 600,
		}
	}
	bars[n-1].Close = 100.5
	return bars
}

func TestSessionGateBoundaries(t *testing.T) {
	g := NewSessionGate(12, 21)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"11:59", at(11, 59), false},
		{"12:00", at(12, 0), true},
		{"20:59", at(20, 59), true},
		{"21:00", at(21, 0), false},
		{"midnight", at(0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.Evaluate(Input{Now: tt.now})
			assert.Equal(t, tt.want, v.Passed)
			if !tt.want {
				assert.Equal(t, "session_filter", v.Gate)
				assert.Equal(t, ReasonOutsideSession, v.Reason)
			}
		})
	}

	stats := g.GetStats()
	assert.Equal(t, int64(5), stats.TotalProcessed)
	assert.Equal(t, int64(2), stats.PassedThrough)
	assert.Equal(t, int64(3), stats.FilteredOut)
}

func TestSessionGateWraparound(t *testing.T) {
	g := NewSessionGate(22, 5)

	assert.True(t, g.IsOpen(22))
	assert.True(t, g.IsOpen(23))
	assert.True(t, g.IsOpen(0))
	assert.True(t, g.IsOpen(4))
	assert.False(t, g.IsOpen(5))
	assert.False(t, g.IsOpen(12))
	assert.False(t, g.IsOpen(21))
	assert.Equal(t, "22:00-05:00 UTC", g.Window())
}

func TestSessionGateUsesUTC(t *testing.T) {
	g := NewSessionGate(12, 21)
	moscow := time.FixedZone("MSK", 3*3600)

	// 14:30 MSK = 11:30 UTC
	v := g.Evaluate(Input{Now: time.Date(2024, 3, 4, 14, 30, 0, 0, moscow)})
	assert.False(t, v.Passed)
}

func TestAntiManipulationGatePasses(t *testing.T) {
	g := NewAntiManipulationGate(DefaultWashConfig())
	v := g.Evaluate(Input{Bars: expandingBars(40)})
	assert.True(t, v.Passed, "verdict: %+v", v)
}

func TestAntiManipulationGateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(bars []market.Bar) []market.Bar
		reason string
	}{
		{
			name: "zero volume",
			mutate: func(bars []market.Bar) []market.Bar {
				bars[len(bars)-1].Volume = 0
				bars[len(bars)-1].TakerBuyVolume = 0
				return bars
			},
			reason: ReasonZeroVolume,
		},
		{
			name: "zero body",
			mutate: func(bars []market.Bar) []market.Bar {
				bars[len(bars)-1].Close = bars[len(bars)-1].Open
				return bars
			},
			reason: ReasonZeroBody,
		},
		{
			name: "low efficiency",
			mutate: func(bars []market.Bar) []market.Bar {
				// 0.5 / 10000 = 0.00005 < 0.0002
				bars[len(bars)-1].Volume = 10000
				bars[len(bars)-1].TakerBuyVolume = 6000
				return bars
			},
			reason: ReasonLowEfficiency,
		},
		{
			name: "insufficient history",
			mutate: func(bars []market.Bar) []market.Bar {
				return bars[len(bars)-10:]
			},
			reason: ReasonInsufficientData,
		},
		{
			name: "contracting volatility",
			mutate: func(bars []market.Bar) []market.Bar {
				last := len(bars) - 1
				for i := range bars {
					half := float64(last-i+1) / 2
					bars[i].High = 100 + half
					bars[i].Low = 100 - half
				}
				return bars
			},
			reason: ReasonLowVolatility,
		},
		{
			name: "balanced taker flow",
			mutate: func(bars []market.Bar) []market.Bar {
				bars[len(bars)-1].TakerBuyVolume = 500
				return bars
			},
			reason: ReasonWashTrading,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewAntiManipulationGate(DefaultWashConfig())
			v := g.Evaluate(Input{Bars: tt.mutate(expandingBars(40))})
			assert.False(t, v.Passed)
			assert.Equal(t, "wash_filter", v.Gate)
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

func TestAntiManipulationGateBandIsExclusive(t *testing.T) {
	g := NewAntiManipulationGate(DefaultWashConfig())

	for _, taker := range []float64{490, 510} {
		bars := expandingBars(40)
		bars[len(bars)-1].TakerBuyVolume = taker
		v := g.Evaluate(Input{Bars: bars})
		assert.True(t, v.Passed, "taker=%v verdict=%+v", taker, v)
	}
}

func TestAntiManipulationGateEmptyInput(t *testing.T) {
	g := NewAntiManipulationGate(DefaultWashConfig())
	v := g.Evaluate(Input{})
	assert.Equal(t, ReasonInsufficientData, v.Reason)
}

func TestCascadeStopsAtFirstFailure(t *testing.T) {
	session := NewSessionGate(12, 21)
	wash := NewAntiManipulationGate(DefaultWashConfig())
	c := NewCascade(session, wash)

	v := c.Evaluate(Input{Now: at(3, 0), Bars: expandingBars(40)})
	assert.False(t, v.Passed)
	assert.Equal(t, "session_filter", v.Gate)
	assert.Zero(t, wash.GetStats().TotalProcessed)

	v = c.Evaluate(Input{Now: at(13, 0), Bars: expandingBars(40)})
	assert.True(t, v.Passed)

	stats := c.Stats()
	require.Contains(t, stats, "wash_filter")
	assert.Equal(t, int64(1), stats["wash_filter"].PassedThrough)
	assert.Equal(t, int64(2), stats["session_filter"].TotalProcessed)
	assert.Len(t, c.Gates(), 2)
}
