// internal/core/domain/signals/filters/types.go
package filters

import (
	"sync"
	"time"

	"neko-signal-bot/internal/core/domain/market"
)

// Причины отказа
const (
	ReasonOutsideSession   = "outside_session"
	ReasonZeroVolume       = "zero_volume"
	ReasonZeroBody         = "zero_body"
	ReasonLowEfficiency    = "low_efficiency"
	ReasonLowVolatility    = "low_volatility"
	ReasonInsufficientData = "insufficient_data"
	ReasonWashTrading      = "wash_trading"
)

// Input данные, которые видит гейт
type Input struct {
	Symbol string
	Now    time.Time
	Bars   []market.Bar // только закрытые бары, последний - текущий
}

// Verdict результат проверки; Gate и Reason заполнены только при отказе
type Verdict struct {
	Passed bool   `json:"passed"`
	Gate   string `json:"gate,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func pass() Verdict {
	return Verdict{Passed: true}
}

func reject(gate, reason string) Verdict {
	return Verdict{Gate: gate, Reason: reason}
}

// Gate - интерфейс фильтра
type Gate interface {
	Name() string
	Evaluate(in Input) Verdict
	GetStats() FilterStats
}

// FilterStats - статистика фильтра
type FilterStats struct {
	TotalProcessed int64 `json:"total_processed"`
	PassedThrough  int64 `json:"passed_through"`
	FilteredOut    int64 `json:"filtered_out"`
}

// statsCounter общий счётчик для гейтов
type statsCounter struct {
	mu    sync.RWMutex
	stats FilterStats
}

func (c *statsCounter) record(v Verdict) Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.TotalProcessed++
	if v.Passed {
		c.stats.PassedThrough++
	} else {
		c.stats.FilteredOut++
	}
	return v
}

func (c *statsCounter) GetStats() FilterStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
