// internal/infrastructure/transport/event_bus/subscribers.go
package events

import (
	"fmt"

	"neko-signal-bot/internal/types"
)

// Subscriber раскладывает события шины по типизированным обработчикам.
// Типы событий, на которые он подписан, - те, для которых задан обработчик.
type Subscriber struct {
	name     string
	order    []types.EventType
	handlers map[types.EventType]func(types.Event) error
}

// NewSubscriber создает подписчика без обработчиков
func NewSubscriber(name string) *Subscriber {
	return &Subscriber{
		name:     name,
		handlers: make(map[types.EventType]func(types.Event) error),
	}
}

// On задает обработчик сырого события; повторный вызов заменяет обработчик
func (s *Subscriber) On(eventType types.EventType, handler func(types.Event) error) *Subscriber {
	if _, ok := s.handlers[eventType]; !ok {
		s.order = append(s.order, eventType)
	}
	s.handlers[eventType] = handler
	return s
}

// OnSignal обработчик signal_opened
func (s *Subscriber) OnSignal(handler func(types.SignalEvent) error) *Subscriber {
	return s.On(types.EventSignalOpened, func(e types.Event) error {
		data, ok := e.Data.(types.SignalEvent)
		if !ok {
			return s.unexpected(e)
		}
		return handler(data)
	})
}

// OnResolution обработчик position_resolved
func (s *Subscriber) OnResolution(handler func(types.ResolutionEvent) error) *Subscriber {
	return s.On(types.EventPositionResolved, func(e types.Event) error {
		data, ok := e.Data.(types.ResolutionEvent)
		if !ok {
			return s.unexpected(e)
		}
		return handler(data)
	})
}

// OnSnapshot обработчик market_snapshot
func (s *Subscriber) OnSnapshot(handler func(types.MarketSnapshot) error) *Subscriber {
	return s.On(types.EventMarketSnapshot, func(e types.Event) error {
		data, ok := e.Data.(types.MarketSnapshot)
		if !ok {
			return s.unexpected(e)
		}
		return handler(data)
	})
}

func (s *Subscriber) unexpected(e types.Event) error {
	return fmt.Errorf("%s: unexpected payload %T for %s", s.name, e.Data, e.Type)
}

func (s *Subscriber) HandleEvent(event types.Event) error {
	h, ok := s.handlers[event.Type]
	if !ok {
		return fmt.Errorf("%s: no handler for %s", s.name, event.Type)
	}
	return h(event)
}

func (s *Subscriber) GetName() string {
	return s.name
}

// GetSubscribedEvents типы в порядке регистрации
func (s *Subscriber) GetSubscribedEvents() []types.EventType {
	return append([]types.EventType(nil), s.order...)
}
