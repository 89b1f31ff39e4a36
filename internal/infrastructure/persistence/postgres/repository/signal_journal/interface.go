package signal_journal

import (
	"context"
	"time"

	"neko-signal-bot/internal/infrastructure/persistence/postgres/models"
)

// SignalJournal журнал открытых сигналов и их закрытий.
// Только запись: журнал не участвует в принятии решений.
type SignalJournal interface {
	// RecordOpened вставляет новую запись со статусом OPEN
	RecordOpened(ctx context.Context, record *models.SignalRecord) error
	// RecordResolution закрывает запись по TP/SL
	RecordResolution(ctx context.Context, id, reason string, exitPrice float64, barTime, resolvedAt time.Time) error
}
