// internal/core/domain/features/volatility.go
package features

import (
	"math"

	"neko-signal-bot/internal/core/domain/market"
)

// TrueRanges TR для каждого бара; для первого бара TR = high - low
func TrueRanges(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		tr := b.High - b.Low
		if i > 0 {
			prev := bars[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev)))
		}
		out[i] = tr
	}
	return out
}

// ATRSeries ATR как скользящее среднее TR; NaN пока окно не заполнено
func ATRSeries(bars []market.Bar, period int) []float64 {
	return RollingMean(TrueRanges(bars), period)
}

// ATRWithAverage ATR последнего бара и среднее ATR за maPeriod баров.
// ok=false если данных не хватает.
func ATRWithAverage(bars []market.Bar, period, maPeriod int) (atr, atrMA float64, ok bool) {
	if period <= 0 || maPeriod <= 0 || len(bars) < period+maPeriod-1 {
		return 0, 0, false
	}
	series := ATRSeries(bars, period)
	ma := RollingMean(series, maPeriod)

	atr = series[len(series)-1]
	atrMA = ma[len(ma)-1]
	if math.IsNaN(atr) || math.IsNaN(atrMA) {
		return 0, 0, false
	}
	return atr, atrMA, true
}

// RollingMean скользящее среднее; позиции до заполнения окна и окна,
// содержащие NaN, дают NaN
func RollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if window <= 0 || i+1 < window {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for _, v := range values[i+1-window : i+1] {
			sum += v
		}
		out[i] = sum / float64(window)
	}
	return out
}
