// internal/notifier/console_notifier.go
package notifier

import (
	"context"

	"neko-signal-bot/internal/types"
	"neko-signal-bot/pkg/logger"
)

// ConsoleNotifier пишет сигналы в лог
type ConsoleNotifier struct {
	sendStats
}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{sendStats: newSendStats()}
}

func (c *ConsoleNotifier) NotifySignal(ctx context.Context, s types.SignalEvent) error {
	logger.Signal(s.Symbol, s.Direction, s.Entry, s.TakeProfit, s.StopLoss, s.RiskReward, s.Score)
	return c.record(nil)
}

func (c *ConsoleNotifier) NotifyResolution(ctx context.Context, r types.ResolutionEvent) error {
	icon := "✅"
	if r.Reason == "SL_HIT" {
		icon = "🛑"
	}
	logger.Info("%s %s %s %s: вход=%.4f выход=%.4f",
		icon, r.Reason, r.Direction, r.Symbol, r.Entry, r.ExitPrice)
	return c.record(nil)
}

func (c *ConsoleNotifier) Name() string {
	return "console"
}

func (c *ConsoleNotifier) GetStats() map[string]interface{} {
	return c.snapshot("console")
}
