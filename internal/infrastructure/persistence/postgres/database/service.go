// internal/infrastructure/persistence/postgres/database/service.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"neko-signal-bot/internal/infrastructure/config"
	postgres_migrations "neko-signal-bot/internal/infrastructure/persistence/postgres"
	"neko-signal-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DatabaseService сервис для работы с базой данных
type DatabaseService struct {
	config   config.DatabaseConfig
	dsn      string
	db       *sqlx.DB
	mu       sync.RWMutex
	state    ServiceState
	migrator *postgres_migrations.Migrator
}

// ServiceState состояние сервиса
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateStopping ServiceState = "stopping"
	StateError    ServiceState = "error"
)

// NewDatabaseService создает новый сервис базы данных
func NewDatabaseService(cfg *config.Config) *DatabaseService {
	return &DatabaseService{
		config: cfg.Database,
		dsn:    cfg.GetPostgresDSN(),
		state:  StateStopped,
	}
}

// Start подключается к PostgreSQL и, если включено, применяет миграции
func (ds *DatabaseService) Start(ctx context.Context) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state == StateRunning {
		return fmt.Errorf("database service already running")
	}

	logger.Info("🔄 Starting database service...")
	ds.state = StateStarting

	logger.Info("📡 Connecting to PostgreSQL: %s:%d/%s",
		ds.config.Host, ds.config.Port, ds.config.Name)

	db, err := sqlx.Open("postgres", ds.dsn)
	if err != nil {
		ds.state = StateError
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(ds.config.MaxOpenConns)
	db.SetMaxIdleConns(ds.config.MaxIdleConns)
	db.SetConnMaxLifetime(ds.config.MaxConnLifetime)
	db.SetConnMaxIdleTime(ds.config.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		ds.state = StateError
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ds.db = db
	ds.state = StateRunning
	ds.migrator = postgres_migrations.NewMigrator(db)

	logger.Info("✅ Successfully connected to PostgreSQL (pool %d/%d)",
		ds.config.MaxIdleConns, ds.config.MaxOpenConns)

	if ds.config.EnableAutoMigrate {
		if err := ds.migrator.Migrate(ctx); err != nil {
			// журнал вспомогательный: без таблиц записи будут падать, но бот работает
			logger.Warn("⚠️ Database migrations failed: %v", err)
		}
	}
	return nil
}

// Stop останавливает сервис базы данных
func (ds *DatabaseService) Stop() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state != StateRunning {
		return fmt.Errorf("database service is not running")
	}

	logger.Info("🛑 Stopping database service...")
	ds.state = StateStopping

	if ds.db != nil {
		if err := ds.db.Close(); err != nil {
			ds.state = StateError
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	ds.db = nil
	ds.migrator = nil
	ds.state = StateStopped
	logger.Info("✅ Database service stopped")
	return nil
}

// GetMigrationStatus возвращает статус миграций
func (ds *DatabaseService) GetMigrationStatus(ctx context.Context) ([]postgres_migrations.MigrationStatus, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if ds.state != StateRunning || ds.migrator == nil {
		return nil, fmt.Errorf("database service is not running or migrator not initialized")
	}
	return ds.migrator.Status(ctx)
}

// GetDB возвращает соединение с базой данных
func (ds *DatabaseService) GetDB() *sqlx.DB {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.db
}

// State возвращает состояние сервиса
func (ds *DatabaseService) State() ServiceState {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.state
}

// HealthCheck проверяет здоровье базы данных
func (ds *DatabaseService) HealthCheck() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if ds.state != StateRunning || ds.db == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ds.db.PingContext(ctx); err != nil {
		logger.Warn("⚠️ Database health check failed: %v", err)
		return false
	}
	return true
}

// GetStats возвращает статистику пула
func (ds *DatabaseService) GetStats() map[string]interface{} {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	stats := map[string]interface{}{
		"state":     ds.state,
		"connected": ds.db != nil,
	}
	if ds.db != nil {
		s := ds.db.Stats()
		stats["open_connections"] = s.OpenConnections
		stats["in_use"] = s.InUse
		stats["idle"] = s.Idle
		stats["wait_count"] = s.WaitCount
	}
	return stats
}

// Name возвращает имя сервиса
func (ds *DatabaseService) Name() string {
	return "DatabaseService"
}
