// internal/infrastructure/persistence/postgres/models/signal_record.go
package models

import (
	"database/sql"
	"time"
)

const SignalStatusOpen = "OPEN"

// SignalRecord - строка таблицы signals
type SignalRecord struct {
	ID          string          `db:"id"           json:"id"`
	Symbol      string          `db:"symbol"       json:"symbol"`
	Direction   string          `db:"direction"    json:"direction"`
	Entry       float64         `db:"entry"        json:"entry"`
	TakeProfit  float64         `db:"take_profit"  json:"take_profit"`
	StopLoss    float64         `db:"stop_loss"    json:"stop_loss"`
	RiskReward  float64         `db:"risk_reward"  json:"risk_reward"`
	Score       int             `db:"score"        json:"score"`
	BarTime     time.Time       `db:"bar_time"     json:"bar_time"`
	OpenedAt    time.Time       `db:"opened_at"    json:"opened_at"`
	Status      string          `db:"status"       json:"status"`
	ExitPrice   sql.NullFloat64 `db:"exit_price"   json:"exit_price"`
	ResolvedBar sql.NullTime    `db:"resolved_bar" json:"resolved_bar"`
	ResolvedAt  sql.NullTime    `db:"resolved_at"  json:"resolved_at"`
}

// IsOpen true пока позиция не закрыта по TP/SL
func (r *SignalRecord) IsOpen() bool {
	return r.Status == SignalStatusOpen
}
