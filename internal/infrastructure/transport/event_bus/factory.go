// internal/infrastructure/transport/event_bus/factory.go
package events

import (
	"strings"

	"neko-signal-bot/internal/infrastructure/config"
)

// NewEventBusFromConfig создает EventBus из конфигурации
func NewEventBusFromConfig(cfg *config.Config) *EventBus {
	busCfg := DefaultConfig
	busCfg.BufferSize = cfg.EventBus.BufferSize
	busCfg.WorkerCount = cfg.EventBus.WorkerCount
	busCfg.EnableLogging = cfg.EventBus.EnableLogging

	bus := NewEventBus(busCfg)
	if strings.EqualFold(cfg.Logging.Level, "debug") {
		bus.AddMiddleware(&LoggingMiddleware{})
	}
	bus.AddMiddleware(&ValidationMiddleware{})
	return bus
}
