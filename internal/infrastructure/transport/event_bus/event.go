// internal/infrastructure/transport/event_bus/event.go
package events

import (
	"fmt"
	"time"

	"neko-signal-bot/internal/types"
	"neko-signal-bot/pkg/logger"
)

// Middleware - промежуточное ПО для обработки событий
type Middleware interface {
	Process(event types.Event, next HandlerFunc) error
}

// HandlerFunc - функция обработки события
type HandlerFunc func(event types.Event) error

// LoggingMiddleware - логирует время обработки
type LoggingMiddleware struct{}

func (m *LoggingMiddleware) Process(event types.Event, next HandlerFunc) error {
	start := time.Now()
	err := next(event)
	if err != nil {
		logger.Debug("❌ [LoggingMiddleware] %s за %v: %v", event.Type, time.Since(start), err)
	} else {
		logger.Debug("✅ [LoggingMiddleware] %s обработан за %v", event.Type, time.Since(start))
	}
	return err
}

// ValidationMiddleware - отклоняет события без обязательных полей
type ValidationMiddleware struct{}

func (m *ValidationMiddleware) Process(event types.Event, next HandlerFunc) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.Source == "" {
		return fmt.Errorf("event source is required")
	}
	if event.Timestamp.IsZero() {
		return fmt.Errorf("event timestamp is required")
	}
	return next(event)
}
