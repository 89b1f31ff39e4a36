// internal/core/domain/features/config.go
package features

import (
	"fmt"
	"strings"
)

// Config окна и пороги расчёта признаков
type Config struct {
	OFIWindow   int // окно скользящего среднего OFI
	CVDWindow   int // окно накопления CVD
	ATRPeriod   int
	ATRMAPeriod int // окно средней ATR
	ROCPeriod   int // лаг k для ROC

	ProfileBins     int     // число ценовых корзин профиля объёма
	HVNPercentile   float64 // перцентиль объёма корзины для HVN
	HVNProximityPct float64 // "рядом с HVN" для условия ликвидности

	SwingLookback int

	BookProximityPct    float64 // полоса вокруг mid для подсчёта ликвидности стакана
	BookImbalanceFactor float64 // во сколько раз одна сторона должна перевешивать

	SessionStartHour int // UTC час начала сессии, от него считается VWAP
}

// DefaultConfig значения по умолчанию
func DefaultConfig() Config {
	return Config{
		OFIWindow:           10,
		CVDWindow:           20,
		ATRPeriod:           14,
		ATRMAPeriod:         24,
		ROCPeriod:           5,
		ProfileBins:         30,
		HVNPercentile:       75,
		HVNProximityPct:     0.005,
		SwingLookback:       20,
		BookProximityPct:    0.005,
		BookImbalanceFactor: 1.2,
		SessionStartHour:    12,
	}
}

// MinBars минимальная длина серии для расчёта всех признаков
func (c Config) MinBars() int {
	need := c.OFIWindow
	for _, n := range []int{
		c.CVDWindow,
		c.ATRPeriod + c.ATRMAPeriod,
		c.ROCPeriod + 1,
		c.SwingLookback + 2,
		c.ProfileBins,
	} {
		if n > need {
			need = n
		}
	}
	return need
}

// Validate проверяет окна и пороги
func (c Config) Validate() error {
	var problems []string

	windows := []struct {
		name  string
		value int
	}{
		{"OFI_WINDOW", c.OFIWindow},
		{"CVD_WINDOW", c.CVDWindow},
		{"ATR_PERIOD", c.ATRPeriod},
		{"ATR_MA_PERIOD", c.ATRMAPeriod},
		{"MOMENTUM_ROC_PERIOD", c.ROCPeriod},
		{"VP_BINS", c.ProfileBins},
		{"SWING_LOOKBACK", c.SwingLookback},
	}
	for _, w := range windows {
		if w.value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive", w.name))
		}
	}
	if c.CVDWindow > 0 && c.CVDWindow < 2 {
		problems = append(problems, "CVD_WINDOW must be at least 2")
	}
	if c.SwingLookback > 0 && c.SwingLookback < 3 {
		problems = append(problems, "SWING_LOOKBACK must be at least 3")
	}
	if c.HVNPercentile <= 0 || c.HVNPercentile >= 100 {
		problems = append(problems, "HVN_PERCENTILE must be in (0, 100)")
	}
	if c.HVNProximityPct <= 0 {
		problems = append(problems, "HVN_PROXIMITY_PCT must be positive")
	}
	if c.BookProximityPct <= 0 {
		problems = append(problems, "OB_PROXIMITY_PCT must be positive")
	}
	if c.BookImbalanceFactor < 1 {
		problems = append(problems, "OB_IMBALANCE_FACTOR must be >= 1")
	}
	if c.SessionStartHour < 0 || c.SessionStartHour > 23 {
		problems = append(problems, "SESSION_START_UTC must be in 0..23")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
