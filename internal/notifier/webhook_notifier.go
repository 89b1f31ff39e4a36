// internal/notifier/webhook_notifier.go
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"neko-signal-bot/internal/core/domain/signals"
	"neko-signal-bot/internal/core/domain/signals/scoring"
	"neko-signal-bot/internal/types"
	"neko-signal-bot/pkg/utils"
)

const (
	webhookSchemaVersion = "1.0"
	webhookSystem        = "NekoSignal"
	webhookUserAgent     = "NekoSignal/1.0"
)

// WebhookConfig параметры исходящего вебхука
type WebhookConfig struct {
	URL      string
	Timeout  time.Duration
	Strategy string
	Session  string // "12:00-21:00 UTC"
}

// WebhookPayload тело запроса, schema_version 1.0
type WebhookPayload struct {
	SchemaVersion string        `json:"schema_version"`
	System        string        `json:"system"`
	Event         string        `json:"event,omitempty"`
	TimestampUTC  string        `json:"timestamp_utc"`
	Signal        SignalPayload `json:"signal"`
	Reason        string        `json:"reason,omitempty"`
	Meta          MetaPayload   `json:"meta"`
}

type SignalPayload struct {
	Pair       string  `json:"pair"`
	Direction  string  `json:"direction"`
	Emoji      string  `json:"emoji"`
	EntryPrice float64 `json:"entry_price"`
	TakeProfit float64 `json:"take_profit,omitempty"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	ExitPrice  float64 `json:"exit_price,omitempty"`
	RiskReward float64 `json:"risk_reward,omitempty"`
	Score      int     `json:"score,omitempty"`
	ScoreLabel string  `json:"score_label,omitempty"`
	ScoreBar   string  `json:"score_bar,omitempty"`
}

type MetaPayload struct {
	Session  string `json:"session"`
	Strategy string `json:"strategy"`
}

// WebhookNotifier отправляет JSON POST на внешний URL.
// Любой ответ вне 2xx считается ошибкой доставки.
type WebhookNotifier struct {
	sendStats
	cfg        WebhookConfig
	httpClient *http.Client
	now        func() time.Time
}

func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		sendStats:  newSendStats(),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
}

// SignalPayload собирает тело для открытия позиции
func (w *WebhookNotifier) SignalPayload(s types.SignalEvent) WebhookPayload {
	return WebhookPayload{
		SchemaVersion: webhookSchemaVersion,
		System:        webhookSystem,
		TimestampUTC:  w.timestamp(s.Timestamp),
		Signal: SignalPayload{
			Pair:       s.Symbol,
			Direction:  s.Direction,
			Emoji:      signals.Direction(s.Direction).Emoji(),
			EntryPrice: s.Entry,
			TakeProfit: s.TakeProfit,
			StopLoss:   s.StopLoss,
			RiskReward: utils.RoundTo(s.RiskReward, 3),
			Score:      s.Score,
			ScoreLabel: utils.ScoreLabel(s.Score, scoring.MaxScore),
			ScoreBar:   utils.ScoreBar(s.Score, scoring.MaxScore),
		},
		Meta: w.meta(),
	}
}

// ResolutionPayload собирает тело для закрытия позиции
func (w *WebhookNotifier) ResolutionPayload(r types.ResolutionEvent) WebhookPayload {
	return WebhookPayload{
		SchemaVersion: webhookSchemaVersion,
		System:        webhookSystem,
		Event:         string(types.EventPositionResolved),
		TimestampUTC:  w.timestamp(r.Timestamp),
		Reason:        r.Reason,
		Signal: SignalPayload{
			Pair:       r.Symbol,
			Direction:  r.Direction,
			Emoji:      signals.Direction(r.Direction).Emoji(),
			EntryPrice: r.Entry,
			ExitPrice:  r.ExitPrice,
		},
		Meta: w.meta(),
	}
}

func (w *WebhookNotifier) meta() MetaPayload {
	return MetaPayload{Session: w.cfg.Session, Strategy: w.cfg.Strategy}
}

func (w *WebhookNotifier) timestamp(ts time.Time) string {
	if ts.IsZero() {
		ts = w.now()
	}
	return ts.UTC().Format(time.RFC3339)
}

func (w *WebhookNotifier) NotifySignal(ctx context.Context, s types.SignalEvent) error {
	return w.record(w.post(ctx, w.SignalPayload(s)))
}

func (w *WebhookNotifier) NotifyResolution(ctx context.Context, r types.ResolutionEvent) error {
	return w.record(w.post(ctx, w.ResolutionPayload(r)))
}

func (w *WebhookNotifier) post(ctx context.Context, payload WebhookPayload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("webhook: panic: %v", r)
		}
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("webhook: status %d: %s", resp.StatusCode, string(snippet))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (w *WebhookNotifier) Name() string {
	return "webhook"
}

func (w *WebhookNotifier) GetStats() map[string]interface{} {
	stats := w.snapshot("webhook")
	stats["url"] = w.cfg.URL
	return stats
}
