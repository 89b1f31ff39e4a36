// internal/infrastructure/transport/event_bus/event_bus.go
package events

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"neko-signal-bot/internal/types"
	"neko-signal-bot/pkg/logger"
)

var (
	ErrNotRunning = errors.New("event bus is not running")
	ErrBufferFull = errors.New("event buffer is full")
)

// EventBus - центральная шина событий
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[types.EventType][]types.EventSubscriber
	middlewares []Middleware
	eventBuffer chan types.Event
	config      EventBusConfig
	running     bool
	stopChan    chan struct{}
	wg          sync.WaitGroup

	metricsMu sync.RWMutex
	metrics   types.EventBusMetrics
}

// EventBusConfig - конфигурация EventBus
type EventBusConfig struct {
	BufferSize      int           `json:"buffer_size"`
	WorkerCount     int           `json:"worker_count"`
	EnableLogging   bool          `json:"enable_logging"`
	MetricsInterval time.Duration `json:"metrics_interval"` // 0 - не логировать метрики
}

// DefaultConfig - конфигурация по умолчанию
var DefaultConfig = EventBusConfig{
	BufferSize:      1000,
	WorkerCount:     4,
	EnableLogging:   true,
	MetricsInterval: 5 * time.Minute,
}

// NewEventBus создает новую шину событий
func NewEventBus(config ...EventBusConfig) *EventBus {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig.BufferSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}

	return &EventBus{
		subscribers: make(map[types.EventType][]types.EventSubscriber),
		eventBuffer: make(chan types.Event, cfg.BufferSize),
		metrics: types.EventBusMetrics{
			SubscribersCount: make(map[types.EventType]int),
		},
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Start запускает EventBus
func (b *EventBus) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}
	b.running = true

	for i := 0; i < b.config.WorkerCount; i++ {
		b.wg.Add(1)
		go b.eventWorker(i)
	}
	if b.config.MetricsInterval > 0 {
		b.wg.Add(1)
		go b.metricsLoop()
	}

	if b.config.EnableLogging {
		logger.Info("🚀 EventBus запущен с %d обработчиками", b.config.WorkerCount)
	}
}

// Stop останавливает EventBus; события, уже попавшие в буфер, обрабатываются
func (b *EventBus) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	close(b.stopChan)
	b.wg.Wait()
	b.drain()

	if b.config.EnableLogging {
		logger.Info("🛑 EventBus остановлен")
	}
}

func (b *EventBus) drain() {
	for {
		select {
		case event := <-b.eventBuffer:
			b.processEvent(event)
		default:
			return
		}
	}
}

// Subscribe подписывает обработчик на тип события
func (b *EventBus) Subscribe(eventType types.EventType, subscriber types.EventSubscriber) {
	found := false
	for _, et := range subscriber.GetSubscribedEvents() {
		if et == eventType {
			found = true
			break
		}
	}
	if !found {
		logger.Warn("⚠️ Подписчик %s не подписан на событие %s", subscriber.GetName(), eventType)
		return
	}

	b.mu.Lock()
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber)
	count := len(b.subscribers[eventType])
	b.mu.Unlock()

	b.metricsMu.Lock()
	b.metrics.SubscribersCount[eventType] = count
	b.metricsMu.Unlock()

	if b.config.EnableLogging {
		logger.Debug("✅ %s подписался на %s", subscriber.GetName(), eventType)
	}
}

// SubscribeAll подписывает на все заявленные подписчиком события
func (b *EventBus) SubscribeAll(subscriber types.EventSubscriber) {
	for _, et := range subscriber.GetSubscribedEvents() {
		b.Subscribe(et, subscriber)
	}
}

// Unsubscribe отписывает обработчик от типа события
func (b *EventBus) Unsubscribe(eventType types.EventType, subscriber types.EventSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers := b.subscribers[eventType]
	for i, sub := range subscribers {
		if sub == subscriber {
			b.subscribers[eventType] = append(subscribers[:i:i], subscribers[i+1:]...)

			b.metricsMu.Lock()
			b.metrics.SubscribersCount[eventType] = len(b.subscribers[eventType])
			b.metricsMu.Unlock()
			return
		}
	}
}

// Publish ставит событие в буфер; при переполнении событие отбрасывается
func (b *EventBus) Publish(event types.Event) error {
	b.mu.RLock()
	running := b.running
	b.mu.RUnlock()
	if !running {
		return ErrNotRunning
	}

	event = withDefaults(event)

	select {
	case b.eventBuffer <- event:
		b.metricsMu.Lock()
		b.metrics.EventsPublished++
		b.metricsMu.Unlock()
		return nil
	default:
		b.metricsMu.Lock()
		b.metrics.EventsDropped++
		b.metricsMu.Unlock()
		if b.config.EnableLogging {
			logger.Warn("⚠️ Буфер событий полон, событие отброшено: %s", event.Type)
		}
		return fmt.Errorf("EventBus.Publish %s: %w", event.Type, ErrBufferFull)
	}
}

// PublishSync обрабатывает событие в текущей горутине
func (b *EventBus) PublishSync(event types.Event) error {
	event = withDefaults(event)
	b.metricsMu.Lock()
	b.metrics.EventsPublished++
	b.metricsMu.Unlock()
	return b.processEvent(event)
}

func withDefaults(event types.Event) types.Event {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return event
}

// AddMiddleware добавляет middleware
func (b *EventBus) AddMiddleware(middleware Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, middleware)
}

// eventWorker - обработчик событий
func (b *EventBus) eventWorker(id int) {
	defer b.wg.Done()
	logger.Debug("🔍 [EventWorker %d] Запущен", id)

	for {
		select {
		case event := <-b.eventBuffer:
			b.processEvent(event)
		case <-b.stopChan:
			logger.Debug("🔍 [EventWorker %d] Остановлен", id)
			return
		}
	}
}

// processEvent обрабатывает одно событие
func (b *EventBus) processEvent(event types.Event) error {
	startTime := time.Now()
	defer func() {
		b.metricsMu.Lock()
		b.metrics.ProcessingTime += time.Since(startTime)
		b.metrics.EventsProcessed++
		b.metricsMu.Unlock()
	}()

	b.mu.RLock()
	subscribers := append([]types.EventSubscriber(nil), b.subscribers[event.Type]...)
	middlewares := append([]Middleware(nil), b.middlewares...)
	b.mu.RUnlock()

	if len(subscribers) == 0 {
		logger.Debug("⚠️ Нет подписчиков для события: %s", event.Type)
		return nil
	}

	return executeWithMiddleware(event, middlewares, b.createHandlerChain(subscribers))
}

// createHandlerChain вызывает всех подписчиков; ошибка одного не мешает остальным
func (b *EventBus) createHandlerChain(subscribers []types.EventSubscriber) HandlerFunc {
	return func(event types.Event) error {
		var lastError error
		for _, subscriber := range subscribers {
			if err := b.safeHandle(event, subscriber); err != nil {
				lastError = err
				b.metricsMu.Lock()
				b.metrics.EventsFailed++
				b.metricsMu.Unlock()
				logger.Warn("❌ Ошибка обработки события %s подписчиком %s: %v",
					event.Type, subscriber.GetName(), err)
			}
		}
		return lastError
	}
}

// safeHandle вызывает подписчика с восстановлением после паники
func (b *EventBus) safeHandle(event types.Event, subscriber types.EventSubscriber) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("⚠️ Паника в подписчике %s: %v\n%s", subscriber.GetName(), r, debug.Stack())
			err = fmt.Errorf("subscriber %s panicked: %v", subscriber.GetName(), r)
		}
	}()
	return subscriber.HandleEvent(event)
}

// executeWithMiddleware выполняет обработку через цепочку middleware
func executeWithMiddleware(event types.Event, middlewares []Middleware, handler HandlerFunc) error {
	chain := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw := middlewares[i]
		next := chain
		chain = func(event types.Event) error {
			return mw.Process(event, next)
		}
	}
	return chain(event)
}

// GetMetrics возвращает копию метрик
func (b *EventBus) GetMetrics() types.EventBusMetrics {
	b.metricsMu.RLock()
	defer b.metricsMu.RUnlock()

	m := b.metrics
	m.SubscribersCount = make(map[types.EventType]int, len(b.metrics.SubscribersCount))
	for k, v := range b.metrics.SubscribersCount {
		m.SubscribersCount[k] = v
	}
	return m
}

// GetSubscriberCount возвращает количество подписчиков
func (b *EventBus) GetSubscriberCount(eventType types.EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[eventType])
}

// GetEventTypes возвращает все типы событий с подписчиками
func (b *EventBus) GetEventTypes() []types.EventType {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var eventTypes []types.EventType
	for eventType := range b.subscribers {
		eventTypes = append(eventTypes, eventType)
	}
	sort.Slice(eventTypes, func(i, j int) bool {
		return eventTypes[i] < eventTypes[j]
	})
	return eventTypes
}

func (b *EventBus) metricsLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.config.MetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.logMetrics()
		case <-b.stopChan:
			return
		}
	}
}

// logMetrics логирует метрики
func (b *EventBus) logMetrics() {
	metrics := b.GetMetrics()

	logger.Info("📊 EventBus метрики: опубликовано=%d обработано=%d ошибок=%d отброшено=%d",
		metrics.EventsPublished, metrics.EventsProcessed, metrics.EventsFailed, metrics.EventsDropped)
	if metrics.EventsProcessed > 0 {
		logger.Info("   Среднее время обработки: %v",
			metrics.ProcessingTime/time.Duration(metrics.EventsProcessed))
	}
}

// IsRunning возвращает true если EventBus запущен
func (b *EventBus) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

// Name возвращает имя сервиса
func (b *EventBus) Name() string {
	return "EventBus"
}

// HealthCheck проверяет здоровье сервиса
func (b *EventBus) HealthCheck() bool {
	return b.IsRunning()
}
