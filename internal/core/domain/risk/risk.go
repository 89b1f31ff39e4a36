// internal/core/domain/risk/risk.go
package risk

import (
	"errors"
	"math"
	"strings"

	"neko-signal-bot/internal/core/domain/features"
	"neko-signal-bot/internal/core/domain/signals"
)

// Причины отказа
const (
	ReasonNoAnchor         = "no_anchor"
	ReasonInvalidGeometry  = "invalid_geometry"
	ReasonRewardTooLow     = "reward_too_low"
	ReasonInvalidDirection = "invalid_direction"
)

// Config параметры расчёта SL/TP
type Config struct {
	SLMultiplier         float64 // SL = якорь ± ATR * множитель
	MinRR                float64
	MaxAnchorDistancePct float64 // якорь дальше этой доли от входа не рассматривается
}

// DefaultConfig значения по умолчанию
func DefaultConfig() Config {
	return Config{
		SLMultiplier:         1.5,
		MinRR:                2.0,
		MaxAnchorDistancePct: 0.05,
	}
}

func (c Config) Validate() error {
	var problems []string
	if c.SLMultiplier <= 0 {
		problems = append(problems, "ATR_SL_MULTIPLIER must be > 0")
	}
	if c.MinRR <= 0 {
		problems = append(problems, "MIN_RR must be > 0")
	}
	if c.MaxAnchorDistancePct <= 0 {
		problems = append(problems, "MAX_ANCHOR_DISTANCE_PCT must be > 0")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Params неизменяемые параметры сделки
type Params struct {
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	RiskReward float64 `json:"risk_reward"` // без округления
	SLAnchor   float64 `json:"sl_anchor"`
}

// Decision либо полные Params, либо причина отказа.
// RiskReward при отказе reward_too_low заполнен только для логов.
type Decision struct {
	Accepted   bool
	Params     Params
	Reason     string
	RiskReward float64
}

func rejected(reason string) Decision {
	return Decision{Reason: reason}
}

// Manager считает SL/TP от HVN и swing-экстремумов
type Manager struct {
	cfg Config
}

// NewManager создает новый Manager
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

func (m *Manager) Config() Config {
	return m.cfg
}

// Evaluate строит параметры для направления по признакам последнего бара
func (m *Manager) Evaluate(direction signals.Direction, set *features.Set) Decision {
	entry := set.Close
	if entry <= 0 || math.IsNaN(entry) {
		return rejected(ReasonInvalidGeometry)
	}
	maxDist := entry * m.cfg.MaxAnchorDistancePct
	buffer := set.ATR * m.cfg.SLMultiplier

	var p Params
	p.Entry = entry

	switch direction {
	case signals.DirectionLong:
		slAnchor, ok := belowAnchor(set, entry, maxDist)
		if !ok {
			return rejected(ReasonNoAnchor)
		}
		tp, ok := aboveAnchor(set, entry, maxDist)
		if !ok {
			return rejected(ReasonNoAnchor)
		}
		p.SLAnchor = slAnchor
		p.StopLoss = slAnchor - buffer
		p.TakeProfit = tp
		if !(p.StopLoss < entry && entry < p.TakeProfit) {
			return rejected(ReasonInvalidGeometry)
		}

	case signals.DirectionShort:
		slAnchor, ok := aboveAnchor(set, entry, maxDist)
		if !ok {
			return rejected(ReasonNoAnchor)
		}
		tp, ok := belowAnchor(set, entry, maxDist)
		if !ok {
			return rejected(ReasonNoAnchor)
		}
		p.SLAnchor = slAnchor
		p.StopLoss = slAnchor + buffer
		p.TakeProfit = tp
		if !(p.TakeProfit < entry && entry < p.StopLoss) {
			return rejected(ReasonInvalidGeometry)
		}

	default:
		return rejected(ReasonInvalidDirection)
	}

	risk := math.Abs(entry - p.StopLoss)
	if risk == 0 {
		return rejected(ReasonInvalidGeometry)
	}
	p.RiskReward = math.Abs(p.TakeProfit-entry) / risk
	if p.RiskReward < m.cfg.MinRR {
		return Decision{Reason: ReasonRewardTooLow, RiskReward: p.RiskReward}
	}

	return Decision{Accepted: true, Params: p}
}

// belowAnchor HVN под ценой, иначе swing low
func belowAnchor(set *features.Set, entry, maxDist float64) (float64, bool) {
	if node, ok := set.Profile.NearestBelow(entry, maxDist); ok {
		return node, true
	}
	low := set.Swing.Low
	if low > 0 && low < entry && entry-low <= maxDist {
		return low, true
	}
	return 0, false
}

// aboveAnchor HVN над ценой, иначе swing high
func aboveAnchor(set *features.Set, entry, maxDist float64) (float64, bool) {
	if node, ok := set.Profile.NearestAbove(entry, maxDist); ok {
		return node, true
	}
	high := set.Swing.High
	if high > entry && high-entry <= maxDist {
		return high, true
	}
	return 0, false
}
