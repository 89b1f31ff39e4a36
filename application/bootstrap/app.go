// application/bootstrap/app.go
package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"neko-signal-bot/application/scheduler"
	"neko-signal-bot/internal/core/domain/position"
	"neko-signal-bot/internal/core/domain/signals/engine"
	rediscache "neko-signal-bot/internal/infrastructure/cache/redis"
	"neko-signal-bot/internal/infrastructure/config"
	"neko-signal-bot/internal/infrastructure/metrics"
	"neko-signal-bot/internal/infrastructure/persistence/postgres/database"
	"neko-signal-bot/internal/infrastructure/persistence/postgres/repository/signal_journal"
	"neko-signal-bot/internal/infrastructure/telemetry/influx"
	events "neko-signal-bot/internal/infrastructure/transport/event_bus"
	"neko-signal-bot/internal/notifier"
	"neko-signal-bot/internal/types"
	"neko-signal-bot/pkg/logger"
	"neko-signal-bot/pkg/utils"

	"github.com/google/uuid"
)

const shutdownTimeout = 30 * time.Second

// Application - основное приложение
type Application struct {
	config        *config.Config
	engine        *engine.ScanEngine
	book          *position.Book
	eventBus      *events.EventBus
	notifications *notifier.CompositeNotificationService
	metrics       *metrics.Metrics
	metricsServer *metrics.Server
	scheduler     *scheduler.Scheduler

	// необязательные приёмники, подключаются в Run
	redis    *rediscache.RedisService
	database *database.DatabaseService
	influx   *influx.Exporter
	sinks    []healthChecker

	tally     *dailyTally
	mu        sync.RWMutex
	running   bool
	startTime time.Time
}

// Run подключает приёмники, запускает шину, HTTP метрик и планировщик
func (app *Application) Run(ctx context.Context) error {
	app.mu.Lock()
	if app.running {
		app.mu.Unlock()
		return fmt.Errorf("application already running")
	}
	app.running = true
	app.startTime = time.Now()
	app.mu.Unlock()

	logger.Info("🚀 Запуск Neko Signal Bot %s", app.config.Version)

	app.startSinks(ctx)
	app.eventBus.Start()
	if app.metricsServer != nil {
		app.metricsServer.Start()
	}
	app.scheduler.Start(ctx)

	app.publishSystem(types.EventSystemStarted, map[string]interface{}{
		"version": app.config.Version,
		"pairs":   app.config.Scanner.Symbols,
	})
	logger.Info("✅ Бот запущен, цикл каждые %s", utils.FormatDuration(app.config.Scanner.LoopInterval))
	return nil
}

// startSinks подключает внешние хранилища. Недоступный приёмник пропускается.
func (app *Application) startSinks(ctx context.Context) {
	cfg := app.config

	if cfg.Redis.Enabled {
		rs := rediscache.NewRedisService(cfg.Redis)
		if err := rs.Start(ctx); err != nil {
			logger.Warn("⚠️ Redis недоступен, зеркало состояния отключено: %v", err)
		} else {
			app.redis = rs
			app.addSink(rs)
			mirror := notifier.NewMirrorNotifier(app.book, rediscache.NewStateMirror(rs.GetCache(), cfg.Redis.StateTTL))
			if err := mirror.SyncAll(ctx); err != nil {
				logger.Warn("⚠️ Начальная запись состояния в Redis: %v", err)
			}
			app.notifications.AddNotifier(mirror)
		}
	}

	if cfg.Database.Enabled {
		ds := database.NewDatabaseService(cfg)
		if err := ds.Start(ctx); err != nil {
			logger.Warn("⚠️ PostgreSQL недоступен, журнал сигналов отключен: %v", err)
		} else {
			app.database = ds
			app.addSink(ds)
			logMigrations(ctx, ds)
			journal := signal_journal.NewSignalJournal(ds.GetDB())
			app.notifications.AddNotifier(notifier.NewJournalNotifier(journal))
		}
	}

	if cfg.Influx.Enabled {
		exporter, err := influx.NewExporter(ctx, cfg.Influx)
		if err != nil {
			logger.Warn("⚠️ InfluxDB недоступен, экспорт снимков отключен: %v", err)
		} else {
			app.influx = exporter
			app.eventBus.SubscribeAll(events.NewSubscriber("influx_exporter").OnSnapshot(exporter.Export))
		}
	}

	logger.Info("📨 Активные приёмники: %v", app.notifications.Notifiers())
	app.logSinkHealth()
}

// Stop останавливает компоненты в обратном порядке
func (app *Application) Stop() error {
	app.mu.Lock()
	if !app.running {
		app.mu.Unlock()
		return nil
	}
	app.running = false
	app.mu.Unlock()

	logger.Info("🛑 Остановка приложения...")

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.shutdown()
	}()

	select {
	case <-done:
		logger.Info("✅ Приложение остановлено")
		return nil
	case <-time.After(shutdownTimeout):
		return fmt.Errorf("shutdown timeout after %v", shutdownTimeout)
	}
}

func (app *Application) shutdown() {
	app.scheduler.Stop()

	app.publishSystem(types.EventSystemStopped, map[string]interface{}{
		"uptime":         time.Since(app.startTime).String(),
		"open_positions": app.book.OpenCount(),
	})
	app.eventBus.Stop()

	if app.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.metricsServer.Stop(ctx); err != nil {
			logger.Warn("⚠️ Ошибка остановки сервера метрик: %v", err)
		}
		cancel()
	}
	if app.influx != nil {
		app.influx.Close()
	}
	if app.database != nil {
		if err := app.database.Stop(); err != nil {
			logger.Warn("⚠️ Ошибка остановки PostgreSQL: %v", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Stop(); err != nil {
			logger.Warn("⚠️ Ошибка остановки Redis: %v", err)
		}
	}
}

// ScanOnce выполняет один цикл сканирования и учитывает его в суточной сводке
func (app *Application) ScanOnce(ctx context.Context) engine.CycleReport {
	report := app.engine.RunCycle(ctx)
	app.tally.add(report)
	return report
}

// IsRunning проверяет запущено ли приложение
func (app *Application) IsRunning() bool {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.running
}

// Book книга позиций
func (app *Application) Book() *position.Book {
	return app.book
}

// Status снимок для /status
func (app *Application) Status() interface{} {
	app.mu.RLock()
	started := app.startTime
	app.mu.RUnlock()

	uptime := time.Duration(0)
	if !started.IsZero() {
		uptime = time.Since(started)
	}

	return map[string]interface{}{
		"version":        app.config.Version,
		"uptime":         utils.FormatDuration(uptime),
		"session":        app.config.SessionWindow(),
		"pairs":          app.book.Snapshots(),
		"open_positions": app.book.OpenCount(),
		"jobs":           jobViews(app.scheduler.Jobs()),
		"gates":          app.engine.GateStats(),
		"event_bus":      app.eventBus.GetMetrics(),
		"notifiers":      app.notifications.GetStats(),
		"sinks":          app.sinkStatus(),
		"today":          app.tally.snapshot(),
	}
}

func (app *Application) publishSystem(eventType types.EventType, data map[string]interface{}) {
	err := app.eventBus.Publish(types.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "application",
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.Debug("событие %s не опубликовано: %v", eventType, err)
	}
}

type jobView struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run,omitempty"`
	LastErr string    `json:"last_error,omitempty"`
	Runs    int       `json:"runs"`
	Skipped int       `json:"skipped"`
	Running bool      `json:"running"`
}

func jobViews(jobs []scheduler.JobStatus) []jobView {
	views := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		v := jobView{
			Name:    j.Name,
			NextRun: j.NextRun,
			LastRun: j.LastRun,
			Runs:    j.Runs,
			Skipped: j.Skipped,
			Running: j.Running,
		}
		if j.LastErr != nil {
			v.LastErr = j.LastErr.Error()
		}
		views = append(views, v)
	}
	return views
}
