// internal/core/domain/features/swing.go
package features

import (
	"math"

	"neko-signal-bot/internal/core/domain/market"
)

// Swing последние экстремумы перед текущим баром
type Swing struct {
	High        float64
	Low         float64
	HighFractal bool // false: фрактала не нашлось, взят максимум окна
	LowFractal  bool
}

// SwingExtremes ищет в lookback барах перед последним самый свежий бар,
// чей high выше обоих соседей внутри окна (и зеркально для low).
// Если такого нет, берётся экстремум окна.
func SwingExtremes(bars []market.Bar, lookback int) (Swing, bool) {
	n := len(bars)
	if lookback < 3 || n < lookback+1 {
		return Swing{}, false
	}
	window := bars[n-1-lookback : n-1]

	s := Swing{High: math.Inf(-1), Low: math.Inf(1)}
	for _, b := range window {
		s.High = math.Max(s.High, b.High)
		s.Low = math.Min(s.Low, b.Low)
	}

	for i := len(window) - 2; i >= 1; i-- {
		if window[i].High > window[i-1].High && window[i].High > window[i+1].High {
			s.High, s.HighFractal = window[i].High, true
			break
		}
	}
	for i := len(window) - 2; i >= 1; i-- {
		if window[i].Low < window[i-1].Low && window[i].Low < window[i+1].Low {
			s.Low, s.LowFractal = window[i].Low, true
			break
		}
	}
	return s, true
}

// Sweep результат проверки снятия ликвидности последним баром
type Sweep struct {
	Bullish bool // прокол swing low и возврат закрытием выше
	Bearish bool // прокол swing high и возврат закрытием ниже
}

// DetectSweep проверяет прокол экстремума тенью с возвратом закрытием
func DetectSweep(last market.Bar, s Swing) Sweep {
	return Sweep{
		Bullish: last.Low < s.Low && last.Close > s.Low,
		Bearish: last.High > s.High && last.Close < s.High,
	}
}
