// application/bootstrap/builder.go
package bootstrap

import (
	"fmt"
	"time"

	"neko-signal-bot/application/scheduler"
	"neko-signal-bot/internal/core/domain/fetchers"
	"neko-signal-bot/internal/core/domain/position"
	"neko-signal-bot/internal/core/domain/risk"
	"neko-signal-bot/internal/core/domain/signals/engine"
	"neko-signal-bot/internal/core/domain/signals/filters"
	"neko-signal-bot/internal/infrastructure/api/exchanges/binance"
	"neko-signal-bot/internal/infrastructure/config"
	"neko-signal-bot/internal/infrastructure/metrics"
	events "neko-signal-bot/internal/infrastructure/transport/event_bus"
	"neko-signal-bot/internal/notifier"
	"neko-signal-bot/internal/types"
	"neko-signal-bot/pkg/logger"
)

// AppBuilder собирает приложение из конфигурации
type AppBuilder struct {
	config  *config.Config
	fetcher fetchers.MarketDataFetcher
	clock   func() time.Time
	metrics *metrics.Metrics
}

// NewAppBuilder создает новый билдер
func NewAppBuilder() *AppBuilder {
	return &AppBuilder{}
}

// WithConfig устанавливает конфигурацию
func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	b.config = cfg
	return b
}

// WithFetcher подменяет источник рыночных данных (по умолчанию Binance)
func (b *AppBuilder) WithFetcher(f fetchers.MarketDataFetcher) *AppBuilder {
	b.fetcher = f
	return b
}

// WithClock подменяет часы движка
func (b *AppBuilder) WithClock(clock func() time.Time) *AppBuilder {
	b.clock = clock
	return b
}

// WithMetrics подменяет набор метрик (тесты создают отдельный реестр)
func (b *AppBuilder) WithMetrics(m *metrics.Metrics) *AppBuilder {
	b.metrics = m
	return b
}

// Build создает компоненты без сетевых подключений.
// Внешние приёмники (Redis, PostgreSQL, InfluxDB) подключаются в Run.
func (b *AppBuilder) Build() (*Application, error) {
	if b.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := b.config

	logger.Info("🏗️  Сборка приложения %s...", cfg.Version)

	fetcher := b.fetcher
	if fetcher == nil {
		client, err := binance.NewBinanceClient(binance.Config{
			BaseURL:    cfg.Exchange.BaseURL,
			ApiKey:     cfg.Exchange.ApiKey,
			Interval:   cfg.Scanner.Interval,
			KlineLimit: cfg.Exchange.KlineLimit,
			DepthLimit: cfg.Exchange.DepthLimit,
			MaxRetries: cfg.Exchange.MaxRetries,
			RetryDelay: cfg.Exchange.RetryDelay,
			RateLimit:  cfg.Exchange.RateLimit,
			Timeout:    cfg.Exchange.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create exchange client: %w", err)
		}
		fetcher = client
	}

	m := b.metrics
	if m == nil {
		m = metrics.New(true)
	}

	bus := events.NewEventBusFromConfig(cfg)
	book := position.NewBook(cfg.Scanner.Symbols, position.Options{UseWicks: cfg.Risk.UseWicks})

	gates := filters.NewCascade(filters.NewAntiManipulationGate(cfg.WashConfig()))
	for _, g := range gates.Gates() {
		logger.Debug("🧱 Гейт по барам: %s", g.Name())
	}

	scanEngine, err := engine.NewScanEngine(engine.Config{
		Symbols:      cfg.Scanner.Symbols,
		MaxWorkers:   cfg.Scanner.MaxWorkers,
		CycleTimeout: cfg.Scanner.CycleTimeout,
	}, engine.Dependencies{
		Fetcher:    fetcher,
		Book:       book,
		Session:    filters.NewSessionGate(cfg.Session.StartHour, cfg.Session.EndHour),
		Gates:      gates,
		Features:   cfg.FeatureConfig(),
		Thresholds: cfg.Thresholds(),
		Risk:       risk.NewManager(cfg.RiskConfig()),
		Publisher:  bus,
		Recorder:   m,
		Clock:      b.clock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scan engine: %w", err)
	}

	notifications := notifier.NewCompositeNotificationService(cfg.Webhook.Timeout)
	notifications.OnFailure(m.RecordSinkFailure)
	notifications.AddNotifier(notifier.NewConsoleNotifier())
	if cfg.Webhook.Enabled {
		notifications.AddNotifier(notifier.NewWebhookNotifier(notifier.WebhookConfig{
			URL:      cfg.Webhook.URL,
			Timeout:  cfg.Webhook.Timeout,
			Strategy: cfg.Webhook.Strategy,
			Session:  cfg.SessionWindow(),
		}))
		logger.Info("🌐 Вебхук включен: %s", cfg.Webhook.URL)
	}
	bus.SubscribeAll(events.NewSubscriber("notification_service").
		OnSignal(notifications.NotifySignal).
		OnResolution(notifications.NotifyResolution))
	bus.SubscribeAll(lifecycleLog())

	app := &Application{
		config:        cfg,
		engine:        scanEngine,
		book:          book,
		eventBus:      bus,
		notifications: notifications,
		metrics:       m,
		scheduler:     scheduler.New(),
		tally:         newDailyTally(),
	}
	if cfg.Metrics.Enabled {
		app.metricsServer = metrics.NewServer(cfg.Metrics.Port, m, app.Status)
	}
	app.registerJobs()

	logger.Info("✅ Приложение собрано: %d пар, таймфрейм %s, сессия %s",
		len(cfg.Scanner.Symbols), cfg.Scanner.Interval, cfg.SessionWindow())
	return app, nil
}

// lifecycleLog пишет в лог системные события шины
func lifecycleLog() *events.Subscriber {
	logEvent := func(e types.Event) error {
		logger.Info("📣 %s (%s): %v", e.Type, e.Source, e.Data)
		return nil
	}
	return events.NewSubscriber("lifecycle_log").
		On(types.EventSystemStarted, logEvent).
		On(types.EventSystemStopped, logEvent)
}
