package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"neko-signal-bot/internal/core/domain/position"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setCall struct {
	key   string
	value []byte
	ttl   time.Duration
}

type fakeKV struct {
	data   map[string]string
	sets   []setCall
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	data := value.([]byte)
	f.sets = append(f.sets, setCall{key: key, value: data, ttl: expiration})
	f.data[key] = string(data)
	return redis.NewStatusResult("OK", nil)
}

func TestCacheSetUsesPrefixAndJSON(t *testing.T) {
	kv := newFakeKV()
	c := NewCache(kv, "neko:")

	require.NoError(t, c.Set(context.Background(), "k", map[string]int{"a": 1}, time.Minute))
	require.Len(t, kv.sets, 1)
	assert.Equal(t, "neko:k", kv.sets[0].key)
	assert.Equal(t, time.Minute, kv.sets[0].ttl)
	assert.JSONEq(t, `{"a":1}`, kv.data["neko:k"])

	err := c.Set(context.Background(), "bad", make(chan int), time.Minute)
	assert.Error(t, err)
	assert.Len(t, kv.sets, 1)
}

func TestStateMirrorWritesOpenPosition(t *testing.T) {
	kv := newFakeKV()
	m := NewStateMirror(NewCache(kv, "neko:"), 24*time.Hour)
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	st := position.PairState{
		Symbol: "BTCUSDT",
		State:  position.StateLong,
		Position: &position.VirtualPosition{
			ID:         "p-1",
			Symbol:     "BTCUSDT",
			Entry:      100,
			TakeProfit: 105,
			StopLoss:   98,
			RiskReward: 2.5,
			Score:      5,
			OpenedAt:   fixed.Add(-time.Minute),
		},
	}
	require.NoError(t, m.MirrorPair(context.Background(), st))

	require.Len(t, kv.sets, 1)
	assert.Equal(t, "neko:pair:BTCUSDT", kv.sets[0].key)
	assert.Equal(t, 24*time.Hour, kv.sets[0].ttl)

	var rec PairRecord
	require.NoError(t, json.Unmarshal(kv.sets[0].value, &rec))
	assert.Equal(t, "LONG", rec.State)
	assert.Equal(t, "p-1", rec.PositionID)
	assert.Equal(t, 105.0, rec.TakeProfit)
	assert.Equal(t, 5, rec.Score)
	assert.True(t, rec.UpdatedAt.Equal(fixed))
}

func TestStateMirrorIdleAndErrors(t *testing.T) {
	rec := NewPairRecord(position.PairState{Symbol: "ETHUSDT", State: position.StateIdle}, time.Now())
	assert.Equal(t, "IDLE", rec.State)
	assert.Empty(t, rec.PositionID)

	kv := newFakeKV()
	kv.setErr = errors.New("connection refused")
	m := NewStateMirror(NewCache(kv, "neko:"), time.Hour)
	err := m.MirrorPair(context.Background(), position.PairState{Symbol: "ETHUSDT", State: position.StateIdle})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ETHUSDT")
	assert.Contains(t, err.Error(), "connection refused")
}
