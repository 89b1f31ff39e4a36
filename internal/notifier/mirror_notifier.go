// internal/notifier/mirror_notifier.go
package notifier

import (
	"context"
	"fmt"

	"neko-signal-bot/internal/core/domain/position"
	"neko-signal-bot/internal/types"
)

// PairMirror внешнее хранилище снимков состояния пар
type PairMirror interface {
	MirrorPair(ctx context.Context, state position.PairState) error
}

// StateSource источник истины о парах (книга позиций)
type StateSource interface {
	Snapshot(symbol string) (position.PairState, error)
	Snapshots() []position.PairState
}

// MirrorNotifier после каждого открытия/закрытия зеркалирует состояние пары
type MirrorNotifier struct {
	sendStats
	source StateSource
	mirror PairMirror
}

func NewMirrorNotifier(source StateSource, mirror PairMirror) *MirrorNotifier {
	return &MirrorNotifier{sendStats: newSendStats(), source: source, mirror: mirror}
}

func (m *MirrorNotifier) sync(ctx context.Context, symbol string) error {
	state, err := m.source.Snapshot(symbol)
	if err != nil {
		return m.record(err)
	}
	return m.record(m.mirror.MirrorPair(ctx, state))
}

// SyncAll записывает текущее состояние каждой пары; вызывается при подключении зеркала
func (m *MirrorNotifier) SyncAll(ctx context.Context) error {
	var failed []string
	var lastErr error
	for _, state := range m.source.Snapshots() {
		if err := m.record(m.mirror.MirrorPair(ctx, state)); err != nil {
			failed = append(failed, state.Symbol)
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("mirror sync failed for %v: %w", failed, lastErr)
	}
	return nil
}

func (m *MirrorNotifier) NotifySignal(ctx context.Context, s types.SignalEvent) error {
	return m.sync(ctx, s.Symbol)
}

func (m *MirrorNotifier) NotifyResolution(ctx context.Context, r types.ResolutionEvent) error {
	return m.sync(ctx, r.Symbol)
}

func (m *MirrorNotifier) Name() string {
	return "redis_mirror"
}

func (m *MirrorNotifier) GetStats() map[string]interface{} {
	return m.snapshot("redis")
}
