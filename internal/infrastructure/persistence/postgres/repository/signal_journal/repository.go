// internal/infrastructure/persistence/postgres/repository/signal_journal/repository.go
package signal_journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"neko-signal-bot/internal/infrastructure/persistence/postgres/models"
	"neko-signal-bot/pkg/logger"
)

// execer - то, что нужно журналу от *sqlx.DB
type execer interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ErrSignalNotFound закрытие записи, которой нет (или она уже закрыта)
var ErrSignalNotFound = errors.New("signal not found or already resolved")

type signalJournalImpl struct {
	db execer
}

// NewSignalJournal создаёт реализацию SignalJournal
func NewSignalJournal(db execer) SignalJournal {
	return &signalJournalImpl{db: db}
}

const insertSignalQuery = `
		INSERT INTO signals (id, symbol, direction, entry, take_profit, stop_loss,
			risk_reward, score, bar_time, opened_at, status)
		VALUES (:id, :symbol, :direction, :entry, :take_profit, :stop_loss,
			:risk_reward, :score, :bar_time, :opened_at, :status)
		ON CONFLICT (id) DO NOTHING
	`

const resolveSignalQuery = `
		UPDATE signals
		SET status = $2, exit_price = $3, resolved_bar = $4, resolved_at = $5
		WHERE id = $1 AND status = 'OPEN'
	`

func (r *signalJournalImpl) RecordOpened(ctx context.Context, record *models.SignalRecord) error {
	if record.Status == "" {
		record.Status = models.SignalStatusOpen
	}
	if _, err := r.db.NamedExecContext(ctx, insertSignalQuery, record); err != nil {
		return fmt.Errorf("SignalJournal.RecordOpened %s: %w", record.Symbol, err)
	}
	logger.Debug("💾 Сигнал записан в журнал: %s %s %s", record.ID, record.Symbol, record.Direction)
	return nil
}

func (r *signalJournalImpl) RecordResolution(ctx context.Context, id, reason string, exitPrice float64, barTime, resolvedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, resolveSignalQuery, id, reason, exitPrice, barTime.UTC(), resolvedAt.UTC())
	if err != nil {
		return fmt.Errorf("SignalJournal.RecordResolution %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("SignalJournal.RecordResolution %s: %w", id, ErrSignalNotFound)
	}
	return nil
}
