// application/bootstrap/jobs.go
package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"neko-signal-bot/application/scheduler"
	"neko-signal-bot/internal/core/domain/position"
	"neko-signal-bot/internal/core/domain/signals/engine"
	"neko-signal-bot/pkg/logger"
	"neko-signal-bot/pkg/utils"
)

// registerJobs регистрирует цикл сканирования и суточную сводку
func (app *Application) registerJobs() {
	app.scheduler.Register(&scheduler.Job{
		Name:        "scan_cycle",
		Description: "Сканирование всех пар",
		Schedule:    scheduler.Every(app.config.Scanner.LoopInterval),
		Timeout:     app.config.Scanner.CycleTimeout,
		RunOnStart:  true,
		Handler: func(ctx context.Context) error {
			app.ScanOnce(ctx)
			return nil
		},
	})

	app.scheduler.Register(&scheduler.Job{
		Name:        "daily_summary",
		Description: "Итоги торговой сессии",
		Schedule:    scheduler.DailyAt(app.config.Session.EndHour, 0),
		Timeout:     time.Minute,
		Handler: func(ctx context.Context) error {
			app.logDailySummary()
			return nil
		},
	})
}

func (app *Application) logDailySummary() {
	s := app.tally.reset()
	logger.GetLogger().Status(map[string]string{
		"Период":         utils.FormatDuration(time.Since(s.Since)),
		"Циклов":         fmt.Sprintf("%d", s.Cycles),
		"Сигналов":       fmt.Sprintf("%d", s.Opened),
		"Take profit":    fmt.Sprintf("%d", s.TakeProfits),
		"Stop loss":      fmt.Sprintf("%d", s.StopLosses),
		"Открыто сейчас": fmt.Sprintf("%d", app.book.OpenCount()),
	})
}

// TallySnapshot счётчики с последней сводки
type TallySnapshot struct {
	Since       time.Time `json:"since"`
	Cycles      int       `json:"cycles"`
	Opened      int       `json:"opened"`
	TakeProfits int       `json:"take_profits"`
	StopLosses  int       `json:"stop_losses"`
}

type dailyTally struct {
	mu   sync.Mutex
	data TallySnapshot
	now  func() time.Time
}

func newDailyTally() *dailyTally {
	t := &dailyTally{now: time.Now}
	t.data.Since = t.now()
	return t
}

func (t *dailyTally) add(report engine.CycleReport) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Cycles++
	t.data.Opened += len(report.Opened())
	for _, r := range report.Resolved() {
		switch r.Reason {
		case position.ReasonTakeProfit:
			t.data.TakeProfits++
		case position.ReasonStopLoss:
			t.data.StopLosses++
		}
	}
}

func (t *dailyTally) snapshot() TallySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// reset возвращает накопленное и начинает новый период
func (t *dailyTally) reset() TallySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.data
	t.data = TallySnapshot{Since: t.now()}
	return s
}
