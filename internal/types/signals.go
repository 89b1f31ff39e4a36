// internal/types/signals.go
package types

import "time"

// SignalEvent - открыта виртуальная позиция
type SignalEvent struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	Entry      float64   `json:"entry"`
	TakeProfit float64   `json:"take_profit"`
	StopLoss   float64   `json:"stop_loss"`
	RiskReward float64   `json:"risk_reward"`
	Score      int       `json:"score"`
	BarTime    time.Time `json:"bar_time"`
	Timestamp  time.Time `json:"timestamp"`
}

// ResolutionEvent - позиция закрыта по TP или SL
type ResolutionEvent struct {
	PositionID string    `json:"position_id"`
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	Reason     string    `json:"reason"`
	Entry      float64   `json:"entry"`
	ExitPrice  float64   `json:"exit_price"`
	BarTime    time.Time `json:"bar_time"`
	Timestamp  time.Time `json:"timestamp"`
}

// MarketSnapshot - телеметрия одного инструмента за цикл
type MarketSnapshot struct {
	Symbol     string    `json:"symbol"`
	Close      float64   `json:"close"`
	Volume     float64   `json:"volume"`
	OFI        float64   `json:"ofi"`
	CVD        float64   `json:"cvd"`
	VWAP       float64   `json:"vwap"`
	Score      int       `json:"score"`
	TradeState string    `json:"trade_state"`
	Timestamp  time.Time `json:"timestamp"`
}

// CycleSummary - итог цикла сканирования
type CycleSummary struct {
	Started   time.Time      `json:"started"`
	Duration  time.Duration  `json:"duration"`
	Outcomes  map[string]int `json:"outcomes"`
	Opened    int            `json:"opened"`
	Resolved  int            `json:"resolved"`
	OpenCount int            `json:"open_count"`
}
