// internal/core/domain/signals/scoring/scoring.go
package scoring

import (
	"fmt"

	"neko-signal-bot/internal/core/domain/features"
	"neko-signal-bot/internal/core/domain/signals"
)

// MaxScore число условий и максимальный модуль счёта
const MaxScore = 5

// Индексы условий в Contributions
const (
	OrderFlow = iota
	CumulativeDelta
	SessionVWAP
	MomentumClearance
	LiquiditySweep
)

var conditionNames = [MaxScore]string{"ofi", "cvd", "vwap", "momentum", "sweep"}

// Score итоговый счёт и вклад каждого условия (-1, 0, +1)
type Score struct {
	Total         int           `json:"total"`
	Contributions [MaxScore]int `json:"contributions"`
}

// Named вклады по именам условий (для логов)
func (s Score) Named() map[string]int {
	out := make(map[string]int, MaxScore)
	for i, name := range conditionNames {
		out[name] = s.Contributions[i]
	}
	return out
}

func (s Score) String() string {
	return fmt.Sprintf("%+d %v", s.Total, s.Contributions)
}

// Evaluate сворачивает признаки в счёт; чистая функция
func Evaluate(set *features.Set) Score {
	var s Score
	s.Contributions[OrderFlow] = sign(set.OFIMean)
	s.Contributions[CumulativeDelta] = clamp(set.CVDTrend)
	s.Contributions[SessionVWAP] = vwapSide(set)
	s.Contributions[MomentumClearance] = momentumAgreement(set)
	s.Contributions[LiquiditySweep] = sweepAtNode(set)

	for _, c := range s.Contributions {
		s.Total += c
	}
	return s
}

func vwapSide(set *features.Set) int {
	if !set.VWAPValid {
		return 0
	}
	return sign(set.Close - set.VWAP)
}

// momentumAgreement импульс и дисбаланс стакана должны совпасть по знаку
func momentumAgreement(set *features.Set) int {
	roc := sign(set.ROC)
	if roc != 0 && roc == set.Clearance.Sign {
		return roc
	}
	return 0
}

// sweepAtNode снятие ликвидности у HVN: поддержка под ценой для лонга,
// сопротивление над ценой для шорта
func sweepAtNode(set *features.Set) int {
	node, ok := set.NearHVN()
	if !ok {
		return 0
	}
	switch {
	case set.Sweep.Bullish && node <= set.Close:
		return 1
	case set.Sweep.Bearish && node >= set.Close:
		return -1
	}
	return 0
}

// Thresholds пороги открытия; задаются независимо
type Thresholds struct {
	Long  int
	Short int
}

// DefaultThresholds +4 / -4
func DefaultThresholds() Thresholds {
	return Thresholds{Long: 4, Short: -4}
}

// Eligibility направление, которое разрешает счёт
func (t Thresholds) Eligibility(score int) signals.Direction {
	switch {
	case score >= t.Long:
		return signals.DirectionLong
	case score <= t.Short:
		return signals.DirectionShort
	default:
		return signals.DirectionNone
	}
}

// Validate проверяет диапазоны порогов
func (t Thresholds) Validate() error {
	if t.Long < 1 || t.Long > MaxScore {
		return fmt.Errorf("long threshold %d out of range 1..%d", t.Long, MaxScore)
	}
	if t.Short > -1 || t.Short < -MaxScore {
		return fmt.Errorf("short threshold %d out of range -%d..-1", t.Short, MaxScore)
	}
	return nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func clamp(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
