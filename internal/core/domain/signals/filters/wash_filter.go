// internal/core/domain/signals/filters/wash_filter.go
package filters

import "neko-signal-bot/internal/core/domain/features"

// WashConfig пороги анти-манипуляционного фильтра
type WashConfig struct {
	MinEfficiency float64 // |close-open| / volume
	ATRPeriod     int
	ATRMAPeriod   int
	WashLow       float64 // доля taker buy строго внутри (WashLow, WashHigh) - отказ
	WashHigh      float64
}

// DefaultWashConfig значения по умолчанию
func DefaultWashConfig() WashConfig {
	return WashConfig{
		MinEfficiency: 0.0002,
		ATRPeriod:     14,
		ATRMAPeriod:   24,
		WashLow:       0.49,
		WashHigh:      0.51,
	}
}

// AntiManipulationGate проверяет последний закрытый бар на признаки
// пустого или искусственного объёма
type AntiManipulationGate struct {
	statsCounter
	cfg WashConfig
}

// NewAntiManipulationGate создает новый AntiManipulationGate
func NewAntiManipulationGate(cfg WashConfig) *AntiManipulationGate {
	return &AntiManipulationGate{cfg: cfg}
}

func (g *AntiManipulationGate) Name() string {
	return "wash_filter"
}

func (g *AntiManipulationGate) Evaluate(in Input) Verdict {
	return g.record(g.check(in))
}

func (g *AntiManipulationGate) check(in Input) Verdict {
	if len(in.Bars) == 0 {
		return reject(g.Name(), ReasonInsufficientData)
	}
	last := in.Bars[len(in.Bars)-1]

	if last.Volume <= 0 {
		return reject(g.Name(), ReasonZeroVolume)
	}

	// Нулевое тело отклоняется независимо от остальных проверок
	body := last.Body()
	if body == 0 {
		return reject(g.Name(), ReasonZeroBody)
	}
	if body/last.Volume < g.cfg.MinEfficiency {
		return reject(g.Name(), ReasonLowEfficiency)
	}

	atr, atrMA, ok := features.ATRWithAverage(in.Bars, g.cfg.ATRPeriod, g.cfg.ATRMAPeriod)
	if !ok {
		return reject(g.Name(), ReasonInsufficientData)
	}
	if atr < atrMA {
		return reject(g.Name(), ReasonLowVolatility)
	}

	ratio, _ := last.TakerBuyRatio()
	if ratio > g.cfg.WashLow && ratio < g.cfg.WashHigh {
		return reject(g.Name(), ReasonWashTrading)
	}

	return pass()
}
