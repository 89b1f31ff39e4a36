// pkg/utils/helpers.go
package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatDuration форматирует продолжительность в читаемый вид
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dч %dм", hours, minutes)
	}
	return fmt.Sprintf("%dм", minutes)
}

// FormatPrice форматирует цену с заданной точностью
func FormatPrice(price float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, price)
}

// RoundTo округляет до places знаков после запятой (half away from zero)
func RoundTo(value float64, places int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	pow := math.Pow(10, float64(places))
	return math.Round(value*pow) / pow
}

// ScoreLabel "+4/5", "-5/5"
func ScoreLabel(score, max int) string {
	return fmt.Sprintf("%+d/%d", score, max)
}

// ScoreBar рисует шкалу силы сигнала по модулю счёта: 4 из 5 → "████░"
func ScoreBar(score, max int) string {
	filled := score
	if filled < 0 {
		filled = -filled
	}
	if filled > max {
		filled = max
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", max-filled)
}
