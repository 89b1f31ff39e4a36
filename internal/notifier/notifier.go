// internal/notifier/notifier.go
package notifier

import (
	"context"
	"sync"
	"time"

	"neko-signal-bot/internal/types"
)

// Notifier интерфейс отдельного нотификатора
type Notifier interface {
	NotifySignal(ctx context.Context, signal types.SignalEvent) error
	NotifyResolution(ctx context.Context, res types.ResolutionEvent) error
	Name() string
	IsEnabled() bool
	SetEnabled(bool)
	GetStats() map[string]interface{}
}

// sendStats счётчики отправок, общие для всех нотификаторов
type sendStats struct {
	mu       sync.Mutex
	enabled  bool
	sent     int
	failed   int
	lastSent time.Time
}

func newSendStats() sendStats {
	return sendStats{enabled: true}
}

func (s *sendStats) record(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failed++
		return err
	}
	s.sent++
	s.lastSent = time.Now()
	return nil
}

func (s *sendStats) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *sendStats) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *sendStats) snapshot(kind string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]interface{}{
		"type":           kind,
		"enabled":        s.enabled,
		"sent":           s.sent,
		"failed":         s.failed,
		"last_sent_time": s.lastSent,
	}
}
