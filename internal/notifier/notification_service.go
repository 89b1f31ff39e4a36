// internal/notifier/notification_service.go
package notifier

import (
	"context"
	"sync"
	"time"

	"neko-signal-bot/internal/types"
	"neko-signal-bot/pkg/logger"
)

// CompositeNotificationService рассылает события шины по всем нотификаторам.
// Ошибка одного нотификатора не мешает остальным.
type CompositeNotificationService struct {
	notifiers []Notifier
	mu        sync.RWMutex
	timeout   time.Duration
	onFailure func(name string)

	statsMu    sync.Mutex
	totalSent  int
	successful int
	failed     int
}

// NewCompositeNotificationService создает композитный сервис.
// timeout ограничивает доставку одного события одному нотификатору.
func NewCompositeNotificationService(timeout time.Duration) *CompositeNotificationService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CompositeNotificationService{
		notifiers: make([]Notifier, 0),
		timeout:   timeout,
	}
}

// OnFailure регистрирует колбэк на неудачную доставку (метрики)
func (c *CompositeNotificationService) OnFailure(fn func(name string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFailure = fn
}

// AddNotifier добавляет нотификатор
func (c *CompositeNotificationService) AddNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifiers = append(c.notifiers, n)
	logger.Info("🔔 Нотификатор подключен: %s", n.Name())
}

// Notifiers возвращает имена подключенных нотификаторов
func (c *CompositeNotificationService) Notifiers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.notifiers))
	for i, n := range c.notifiers {
		names[i] = n.Name()
	}
	return names
}

func (c *CompositeNotificationService) dispatch(send func(ctx context.Context, n Notifier) error) error {
	c.mu.RLock()
	notifiers := append([]Notifier(nil), c.notifiers...)
	onFailure := c.onFailure
	c.mu.RUnlock()

	var lastErr error
	var active, delivered int
	for _, n := range notifiers {
		if !n.IsEnabled() {
			continue
		}
		active++

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		err := send(ctx, n)
		cancel()

		if err != nil {
			logger.Warn("❌ Ошибка отправки через %s: %v", n.Name(), err)
			lastErr = err
			if onFailure != nil {
				onFailure(n.Name())
			}
			continue
		}
		delivered++
	}

	c.statsMu.Lock()
	c.totalSent++
	if delivered == active {
		c.successful++
	} else {
		c.failed++
	}
	c.statsMu.Unlock()

	if active > 0 && delivered == 0 {
		return lastErr
	}
	return nil
}

// NotifySignal отправляет открытие позиции
func (c *CompositeNotificationService) NotifySignal(signal types.SignalEvent) error {
	return c.dispatch(func(ctx context.Context, n Notifier) error {
		return n.NotifySignal(ctx, signal)
	})
}

// NotifyResolution отправляет закрытие позиции
func (c *CompositeNotificationService) NotifyResolution(res types.ResolutionEvent) error {
	return c.dispatch(func(ctx context.Context, n Notifier) error {
		return n.NotifyResolution(ctx, res)
	})
}

// GetStats возвращает статистику
func (c *CompositeNotificationService) GetStats() map[string]interface{} {
	c.statsMu.Lock()
	result := map[string]interface{}{
		"total_sent": c.totalSent,
		"successful": c.successful,
		"failed":     c.failed,
	}
	c.statsMu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()
	notifierStats := make(map[string]interface{}, len(c.notifiers))
	for _, n := range c.notifiers {
		notifierStats[n.Name()] = n.GetStats()
	}
	result["notifiers"] = notifierStats
	return result
}
