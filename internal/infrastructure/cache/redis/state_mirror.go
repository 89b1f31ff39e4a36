// internal/infrastructure/cache/redis/state_mirror.go
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neko-signal-bot/internal/core/domain/position"
)

// PairRecord - снимок состояния пары в Redis.
// Только запись: бот никогда не читает состояние обратно при старте.
type PairRecord struct {
	Symbol          string    `json:"symbol"`
	State           string    `json:"state"`
	PositionID      string    `json:"position_id,omitempty"`
	Entry           float64   `json:"entry,omitempty"`
	TakeProfit      float64   `json:"take_profit,omitempty"`
	StopLoss        float64   `json:"stop_loss,omitempty"`
	RiskReward      float64   `json:"risk_reward,omitempty"`
	Score           int       `json:"score,omitempty"`
	OpenedAt        time.Time `json:"opened_at,omitempty"`
	LastResolvedBar time.Time `json:"last_resolved_bar,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StateMirror зеркалирует PairState в ключи <prefix>pair:<SYMBOL>
type StateMirror struct {
	cache *Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewStateMirror(cache *Cache, ttl time.Duration) *StateMirror {
	return &StateMirror{cache: cache, ttl: ttl, now: time.Now}
}

func pairKey(symbol string) string {
	return "pair:" + strings.ToUpper(symbol)
}

// NewPairRecord собирает запись из снимка книги позиций
func NewPairRecord(state position.PairState, updatedAt time.Time) PairRecord {
	rec := PairRecord{
		Symbol:          state.Symbol,
		State:           string(state.State),
		LastResolvedBar: state.LastResolvedBar,
		UpdatedAt:       updatedAt.UTC(),
	}
	if p := state.Position; p != nil {
		rec.PositionID = p.ID
		rec.Entry = p.Entry
		rec.TakeProfit = p.TakeProfit
		rec.StopLoss = p.StopLoss
		rec.RiskReward = p.RiskReward
		rec.Score = p.Score
		rec.OpenedAt = p.OpenedAt
	}
	return rec
}

// MirrorPair записывает состояние пары
func (m *StateMirror) MirrorPair(ctx context.Context, state position.PairState) error {
	if err := m.cache.Set(ctx, pairKey(state.Symbol), NewPairRecord(state, m.now()), m.ttl); err != nil {
		return fmt.Errorf("redis mirror %s: %w", state.Symbol, err)
	}
	return nil
}

// Name возвращает имя зеркала
func (m *StateMirror) Name() string {
	return "redis_state_mirror"
}
