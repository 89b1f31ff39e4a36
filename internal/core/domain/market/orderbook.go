// internal/core/domain/market/orderbook.go
package market

import (
	"sort"
	"time"
)

// OrderBookLevel уровень стакана
type OrderBookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook - снимок стакана последнего запроса. Bids по убыванию цены,
// Asks по возрастанию.
type OrderBook struct {
	Symbol    string           `json:"symbol"`
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewOrderBook сортирует уровни и обрезает их до depth (depth <= 0 - без обрезки)
func NewOrderBook(symbol string, bids, asks []OrderBookLevel, depth int, ts time.Time) OrderBook {
	b := append([]OrderBookLevel(nil), bids...)
	a := append([]OrderBookLevel(nil), asks...)
	sort.SliceStable(b, func(i, j int) bool { return b[i].Price > b[j].Price })
	sort.SliceStable(a, func(i, j int) bool { return a[i].Price < a[j].Price })
	if depth > 0 {
		if len(b) > depth {
			b = b[:depth]
		}
		if len(a) > depth {
			a = a[:depth]
		}
	}
	return OrderBook{Symbol: symbol, Bids: b, Asks: a, Timestamp: ts}
}

// Mid средняя цена лучших уровней; ok=false если одна из сторон пуста
func (ob OrderBook) Mid() (float64, bool) {
	if len(ob.Bids) == 0 || len(ob.Asks) == 0 {
		return 0, false
	}
	return (ob.Bids[0].Price + ob.Asks[0].Price) / 2, true
}

// IsEmpty true если нет ни одного уровня
func (ob OrderBook) IsEmpty() bool {
	return len(ob.Bids) == 0 && len(ob.Asks) == 0
}
