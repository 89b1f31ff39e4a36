// internal/core/domain/fetchers/types.go
package fetchers

import (
	"context"

	"neko-signal-bot/internal/core/domain/market"
)

// MarketDataFetcher источник закрытых баров и снимка стакана
type MarketDataFetcher interface {
	FetchBars(ctx context.Context, symbol string) (*market.Series, error)
	FetchOrderBook(ctx context.Context, symbol string) (market.OrderBook, error)
}
