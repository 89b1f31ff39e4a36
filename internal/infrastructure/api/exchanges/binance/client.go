// internal/infrastructure/api/exchanges/binance/client.go
package binance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"neko-signal-bot/internal/core/domain/market"
	"neko-signal-bot/internal/infrastructure/api"
	"neko-signal-bot/pkg/logger"
	"neko-signal-bot/pkg/period"
)

// Config - параметры клиента
type Config struct {
	BaseURL    string
	ApiKey     string
	Interval   string
	KlineLimit int
	DepthLimit int
	MaxRetries int
	RetryDelay time.Duration // пауза перед попыткой n равна RetryDelay * n
	RateLimit  time.Duration // минимальный интервал между запросами
	Timeout    time.Duration
}

// BinanceClient - клиент публичного API Binance USDⓈ-M
type BinanceClient struct {
	cfg        Config
	interval   time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewBinanceClient создает нового клиента для Binance
func NewBinanceClient(cfg Config) (*BinanceClient, error) {
	interval, err := period.StringToDuration(cfg.Interval)
	if err != nil {
		return nil, fmt.Errorf("BinanceClient: %w", err)
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Every(cfg.RateLimit)
	}

	return &BinanceClient{
		cfg:        cfg,
		interval:   interval,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		now:        time.Now,
	}, nil
}

// FetchBars закрытые свечи; формирующаяся свеча отбрасывается
func (c *BinanceClient) FetchBars(ctx context.Context, symbol string) (*market.Series, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", c.cfg.Interval)
	query.Set("limit", strconv.Itoa(c.cfg.KlineLimit))

	body, err := c.requestWithRetry(ctx, "/fapi/v1/klines", query)
	if err != nil {
		return nil, fmt.Errorf("BinanceClient.FetchBars %s: %w", symbol, err)
	}

	raw, err := parseKlines(body)
	if err != nil {
		return nil, fmt.Errorf("BinanceClient.FetchBars %s: %w", symbol, &api.ParseError{Endpoint: "klines", Err: err})
	}

	bars := closedBars(raw, c.now())
	bars = contiguousTail(bars, c.interval)

	series, err := market.SeriesFromBars(symbol, c.interval, c.cfg.KlineLimit, bars)
	if err != nil {
		return nil, fmt.Errorf("BinanceClient.FetchBars %s: %w", symbol, err)
	}
	return series, nil
}

// FetchOrderBook снимок стакана
func (c *BinanceClient) FetchOrderBook(ctx context.Context, symbol string) (market.OrderBook, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("limit", strconv.Itoa(c.cfg.DepthLimit))

	body, err := c.requestWithRetry(ctx, "/fapi/v1/depth", query)
	if err != nil {
		return market.OrderBook{}, fmt.Errorf("BinanceClient.FetchOrderBook %s: %w", symbol, err)
	}

	book, err := parseDepth(symbol, body, c.cfg.DepthLimit, c.now())
	if err != nil {
		return market.OrderBook{}, fmt.Errorf("BinanceClient.FetchOrderBook %s: %w", symbol, &api.ParseError{Endpoint: "depth", Err: err})
	}
	return book, nil
}

// requestWithRetry повторяет сетевые ошибки, 429 и 5xx с линейной паузой
func (c *BinanceClient) requestWithRetry(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		body, err := c.makeRequest(ctx, path, query)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !api.IsRetryable(err) || attempt == c.cfg.MaxRetries {
			break
		}

		delay := c.cfg.RetryDelay * time.Duration(attempt)
		logger.Warn("⚠️ Binance %s %s: попытка %d/%d: %v, повтор через %v",
			path, query.Get("symbol"), attempt, c.cfg.MaxRetries, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// makeRequest выполняет HTTP запрос
func (c *BinanceClient) makeRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.cfg.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NekoSignal/1.0")
	if c.cfg.ApiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.cfg.ApiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &api.StatusError{Endpoint: path, Code: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

// contiguousTail последний непрерывный участок серии без пропусков
func contiguousTail(bars []market.Bar, interval time.Duration) []market.Bar {
	start := 0
	for i := 1; i < len(bars); i++ {
		if bars[i].OpenTime.Sub(bars[i-1].OpenTime) != interval {
			start = i
		}
	}
	if start > 0 {
		logger.Debug("🔍 Пропуск в свечах: используется %d из %d последних баров", len(bars)-start, len(bars))
	}
	return bars[start:]
}

var errEmptyResponse = errors.New("empty response")
