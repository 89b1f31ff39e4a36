// internal/core/domain/position/types.go
package position

import (
	"errors"
	"time"

	"neko-signal-bot/internal/core/domain/signals"
)

var (
	ErrLocked            = errors.New("position already open")
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrSameBar           = errors.New("re-entry on resolving bar")
	ErrInvalidDirection  = errors.New("invalid direction")
)

// State состояние пары
type State string

const (
	StateIdle  State = "IDLE"
	StateLong  State = "LONG"
	StateShort State = "SHORT"
)

func stateFor(d signals.Direction) State {
	if d == signals.DirectionLong {
		return StateLong
	}
	return StateShort
}

// Причины закрытия
const (
	ReasonTakeProfit = "TP_HIT"
	ReasonStopLoss   = "SL_HIT"
)

// VirtualPosition зафиксированные параметры открытой позиции; не меняется после создания
type VirtualPosition struct {
	ID         string            `json:"id"`
	Symbol     string            `json:"symbol"`
	Direction  signals.Direction `json:"direction"`
	Entry      float64           `json:"entry"`
	TakeProfit float64           `json:"take_profit"`
	StopLoss   float64           `json:"stop_loss"`
	RiskReward float64           `json:"risk_reward"`
	Score      int               `json:"score"`
	OpenedAt   time.Time         `json:"opened_at"`  // время открытия бара сигнала
	CreatedAt  time.Time         `json:"created_at"` // время по часам
}

// PairState снимок состояния пары; Position задана только вне IDLE
type PairState struct {
	Symbol          string           `json:"symbol"`
	State           State            `json:"state"`
	Position        *VirtualPosition `json:"position,omitempty"`
	LastResolvedBar time.Time        `json:"last_resolved_bar,omitempty"`
}

// Resolution закрытие позиции по TP или SL
type Resolution struct {
	Position  VirtualPosition `json:"position"`
	Reason    string          `json:"reason"`
	ExitPrice float64         `json:"exit_price"`
	BarTime   time.Time       `json:"bar_time"`
}
