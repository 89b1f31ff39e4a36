// internal/core/domain/features/flow.go
package features

import "neko-signal-bot/internal/core/domain/market"

// OFISeries OFI каждого бара
func OFISeries(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.OFI()
	}
	return out
}

// OFIMean среднее OFI последних window баров
func OFIMean(bars []market.Bar, window int) float64 {
	if window <= 0 || len(bars) < window {
		return 0
	}
	sum := 0.0
	for _, b := range bars[len(bars)-window:] {
		sum += b.OFI()
	}
	return sum / float64(window)
}

// CVDSeries скользящая сумма OFI по окну window; в начале серии окно неполное
func CVDSeries(bars []market.Bar, window int) []float64 {
	ofi := OFISeries(bars)
	out := make([]float64, len(ofi))
	for i := range ofi {
		from := 0
		if window > 0 && i+1 > window {
			from = i + 1 - window
		}
		sum := 0.0
		for _, v := range ofi[from : i+1] {
			sum += v
		}
		out[i] = sum
	}
	return out
}

// CVDTrend знак (cvd[last] - cvd[last - window/2])
func CVDTrend(cvd []float64, window int) int {
	n := len(cvd)
	mid := n - 1 - window/2
	if n == 0 || window < 2 || mid < 0 {
		return 0
	}
	return sign(cvd[n-1] - cvd[mid])
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
