// internal/notifier/journal_notifier.go
package notifier

import (
	"context"
	"time"

	"neko-signal-bot/internal/infrastructure/persistence/postgres/models"
	"neko-signal-bot/internal/infrastructure/persistence/postgres/repository/signal_journal"
	"neko-signal-bot/internal/types"
)

// JournalNotifier пишет сигналы и закрытия в PostgreSQL
type JournalNotifier struct {
	sendStats
	journal signal_journal.SignalJournal
	now     func() time.Time
}

func NewJournalNotifier(journal signal_journal.SignalJournal) *JournalNotifier {
	return &JournalNotifier{sendStats: newSendStats(), journal: journal, now: time.Now}
}

func (j *JournalNotifier) NotifySignal(ctx context.Context, s types.SignalEvent) error {
	opened := s.Timestamp
	if opened.IsZero() {
		opened = j.now()
	}
	rec := &models.SignalRecord{
		ID:         s.ID,
		Symbol:     s.Symbol,
		Direction:  s.Direction,
		Entry:      s.Entry,
		TakeProfit: s.TakeProfit,
		StopLoss:   s.StopLoss,
		RiskReward: s.RiskReward,
		Score:      s.Score,
		BarTime:    s.BarTime.UTC(),
		OpenedAt:   opened.UTC(),
		Status:     models.SignalStatusOpen,
	}
	return j.record(j.journal.RecordOpened(ctx, rec))
}

func (j *JournalNotifier) NotifyResolution(ctx context.Context, r types.ResolutionEvent) error {
	resolved := r.Timestamp
	if resolved.IsZero() {
		resolved = j.now()
	}
	return j.record(j.journal.RecordResolution(ctx, r.PositionID, r.Reason, r.ExitPrice, r.BarTime, resolved))
}

func (j *JournalNotifier) Name() string {
	return "postgres_journal"
}

func (j *JournalNotifier) GetStats() map[string]interface{} {
	return j.snapshot("postgres")
}
