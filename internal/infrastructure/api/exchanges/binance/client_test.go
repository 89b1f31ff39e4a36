package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neko-signal-bot/internal/infrastructure/api"
)

var base = time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC)

func klineRow(minute int, open, close string, withTaker bool) string {
	openMs := base.Add(time.Duration(minute) * time.Minute).UnixMilli()
	closeMs := openMs + 59999
	if withTaker {
		return fmt.Sprintf(`[%d,"%s","101","99","%s","10",%d,"1000",5,"6","600","0"]`, openMs, open, close, closeMs)
	}
	return fmt.Sprintf(`[%d,"%s","101","99","%s","10",%d]`, openMs, open, close, closeMs)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *BinanceClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewBinanceClient(Config{
		BaseURL:    srv.URL,
		Interval:   "1m",
		KlineLimit: 500,
		DepthLimit: 2,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	// сейчас идёт третья минута: свеча с minute=2 ещё формируется
	c.now = func() time.Time { return base.Add(2*time.Minute + 30*time.Second) }
	return c
}

func TestFetchBarsDropsFormingCandle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		assert.Equal(t, "NekoSignal/1.0", r.Header.Get("User-Agent"))
		fmt.Fprintf(w, "[%s,%s,%s]",
			klineRow(0, "100", "100.5", true),
			klineRow(1, "100.5", "100.2", true),
			klineRow(2, "100.2", "100.9", true))
	})

	series, err := c.FetchBars(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())

	last, err := series.Last()
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Minute), last.OpenTime)
	assert.Equal(t, 100.2, last.Close)
	assert.Equal(t, 6.0, last.TakerBuyVolume)
	assert.Equal(t, time.Minute, series.Interval())
}

func TestFetchBarsWithoutTakerColumnsSplitsVolume(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "[%s]", klineRow(0, "100", "101", false))
	})

	series, err := c.FetchBars(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	last, _ := series.Last()
	assert.Equal(t, 5.0, last.TakerBuyVolume)
}

func TestFetchBarsKeepsContiguousTail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// minute -3, затем пропуск, затем -1 и 0
		fmt.Fprintf(w, "[%s,%s,%s]",
			klineRow(-3, "100", "100", true),
			klineRow(-1, "100", "100", true),
			klineRow(0, "100", "100", true))
	})

	series, err := c.FetchBars(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())
	assert.Equal(t, base.Add(-time.Minute), series.At(0).OpenTime)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, "[%s]", klineRow(0, "100", "101", true))
	})

	_, err := c.FetchBars(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetryGivesUp(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.FetchBars(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	})

	_, err := c.FetchBars(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "Invalid symbol")
}

func TestMalformedKlinesNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `[[1,"x"]]`)
	})

	_, err := c.FetchBars(context.Background(), "BTCUSDT")
	var pe *api.ParseError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchOrderBook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/depth", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"lastUpdateId":1,"E":1709557200000,
			"bids":[["99.0","1"],["99.5","2"],["98.0","3"]],
			"asks":[["100.5","4"],["100.0","5"]]}`)
	})

	ob, err := c.FetchOrderBook(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, ob.Bids, 2)
	assert.Equal(t, 99.5, ob.Bids[0].Price)
	assert.Equal(t, 100.0, ob.Asks[0].Price)
	mid, ok := ob.Mid()
	assert.True(t, ok)
	assert.Equal(t, 99.75, mid)
	assert.Equal(t, time.UnixMilli(1709557200000).UTC(), ob.Timestamp)
}

func TestCancelledContextStopsRetry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c.cfg.RetryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.FetchBars(ctx, "BTCUSDT")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, strings.Contains(err.Error(), "deadline"))
}

func TestUnknownInterval(t *testing.T) {
	_, err := NewBinanceClient(Config{Interval: "7m"})
	assert.Error(t, err)
}
