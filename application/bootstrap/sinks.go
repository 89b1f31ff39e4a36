// application/bootstrap/sinks.go
package bootstrap

import (
	"context"

	"neko-signal-bot/internal/infrastructure/persistence/postgres/database"
	"neko-signal-bot/pkg/logger"
)

// healthChecker подключенный внешний приёмник (Redis, PostgreSQL)
type healthChecker interface {
	Name() string
	HealthCheck() bool
	GetStats() map[string]interface{}
}

// SinkStatus состояние приёмника для /status
type SinkStatus struct {
	Healthy bool                   `json:"healthy"`
	Stats   map[string]interface{} `json:"stats"`
}

func (app *Application) addSink(s healthChecker) {
	app.mu.Lock()
	app.sinks = append(app.sinks, s)
	app.mu.Unlock()
}

// sinkStatus пингует каждый подключенный приёмник
func (app *Application) sinkStatus() map[string]SinkStatus {
	app.mu.RLock()
	sinks := append([]healthChecker(nil), app.sinks...)
	app.mu.RUnlock()

	out := make(map[string]SinkStatus, len(sinks))
	for _, s := range sinks {
		out[s.Name()] = SinkStatus{Healthy: s.HealthCheck(), Stats: s.GetStats()}
	}
	return out
}

// logSinkHealth итог подключения приёмников
func (app *Application) logSinkHealth() {
	for name, st := range app.sinkStatus() {
		if st.Healthy {
			logger.Info("💚 %s: связь в порядке", name)
		} else {
			logger.Warn("💔 %s: проверка связи не прошла", name)
		}
	}
}

func logMigrations(ctx context.Context, ds *database.DatabaseService) {
	statuses, err := ds.GetMigrationStatus(ctx)
	if err != nil {
		logger.Debug("статус миграций недоступен: %v", err)
		return
	}
	applied := 0
	for _, st := range statuses {
		if st.Applied {
			applied++
		}
	}
	logger.Info("🗂️ Миграции журнала: применено %d из %d", applied, len(statuses))
}
