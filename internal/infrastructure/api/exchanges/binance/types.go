// internal/infrastructure/api/exchanges/binance/types.go
package binance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"neko-signal-bot/internal/core/domain/market"
)

// kline - одна строка /fapi/v1/klines:
// [openTime, open, high, low, close, volume, closeTime, quoteVolume,
//  trades, takerBuyBase, takerBuyQuote, ignore]
type kline struct {
	bar       market.Bar
	closeTime time.Time
}

// DepthResponse - ответ /fapi/v1/depth
type DepthResponse struct {
	LastUpdateID int64       `json:"lastUpdateId"`
	EventTime    int64       `json:"E"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

func parseKlines(body []byte) ([]kline, error) {
	var rows [][]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errEmptyResponse
	}

	out := make([]kline, 0, len(rows))
	for i, row := range rows {
		k, err := parseKlineRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, k)
	}
	return out, nil
}

func parseKlineRow(row []interface{}) (kline, error) {
	if len(row) < 7 {
		return kline{}, fmt.Errorf("expected at least 7 columns, got %d", len(row))
	}

	var b market.Bar
	openMs, err := number(row[0])
	if err != nil {
		return kline{}, fmt.Errorf("open time: %w", err)
	}
	closeMs, err := number(row[6])
	if err != nil {
		return kline{}, fmt.Errorf("close time: %w", err)
	}
	b.OpenTime = time.UnixMilli(int64(openMs)).UTC()

	fields := []*float64{&b.Open, &b.High, &b.Low, &b.Close, &b.Volume}
	for j, dst := range fields {
		if *dst, err = number(row[1+j]); err != nil {
			return kline{}, fmt.Errorf("column %d: %w", 1+j, err)
		}
	}

	// без taker buy объём делится пополам; такой бар отсечёт фильтр баланса
	b.TakerBuyVolume = b.Volume / 2
	if len(row) >= 10 {
		if b.TakerBuyVolume, err = number(row[9]); err != nil {
			return kline{}, fmt.Errorf("taker buy volume: %w", err)
		}
	}

	return kline{bar: b, closeTime: time.UnixMilli(int64(closeMs)).UTC()}, nil
}

// closedBars отбрасывает свечу, которая ещё не закрылась к now
func closedBars(rows []kline, now time.Time) []market.Bar {
	bars := make([]market.Bar, 0, len(rows))
	for _, k := range rows {
		if !k.closeTime.Before(now) {
			continue
		}
		bars = append(bars, k.bar)
	}
	return bars
}

func parseDepth(symbol string, body []byte, depth int, now time.Time) (market.OrderBook, error) {
	var resp DepthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return market.OrderBook{}, err
	}

	bids, err := levels(resp.Bids)
	if err != nil {
		return market.OrderBook{}, fmt.Errorf("bids: %w", err)
	}
	asks, err := levels(resp.Asks)
	if err != nil {
		return market.OrderBook{}, fmt.Errorf("asks: %w", err)
	}

	ts := now.UTC()
	if resp.EventTime > 0 {
		ts = time.UnixMilli(resp.EventTime).UTC()
	}
	return market.NewOrderBook(symbol, bids, asks, depth, ts), nil
}

func levels(raw [][2]string) ([]market.OrderBookLevel, error) {
	out := make([]market.OrderBookLevel, 0, len(raw))
	for _, l := range raw {
		price, err := strconv.ParseFloat(l[0], 64)
		if err != nil {
			return nil, err
		}
		size, err := strconv.ParseFloat(l[1], 64)
		if err != nil {
			return nil, err
		}
		out = append(out, market.OrderBookLevel{Price: price, Size: size})
	}
	return out, nil
}

// number значение колонки: Binance отдаёт цены строками, время числом
func number(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	case json.Number:
		return x.Float64()
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
