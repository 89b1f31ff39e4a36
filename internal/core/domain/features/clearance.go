// internal/core/domain/features/clearance.go
package features

import "neko-signal-bot/internal/core/domain/market"

// Clearance ликвидность стакана в полосе ±proximityPct вокруг mid
type Clearance struct {
	BidLiquidity float64
	AskLiquidity float64
	Imbalance    float64 // (bid-ask)/(bid+ask), [-1, 1]
	Sign         int     // +1 покупатели перевешивают в factor раз, -1 продавцы, иначе 0
}

// BookClearance считает дисбаланс ликвидности у mid-цены
func BookClearance(ob market.OrderBook, proximityPct, factor float64) Clearance {
	mid, ok := ob.Mid()
	if !ok || mid <= 0 {
		return Clearance{}
	}

	lower := mid * (1 - proximityPct)
	upper := mid * (1 + proximityPct)

	var c Clearance
	for _, lvl := range ob.Bids {
		if lvl.Price >= lower {
			c.BidLiquidity += lvl.Size
		}
	}
	for _, lvl := range ob.Asks {
		if lvl.Price <= upper {
			c.AskLiquidity += lvl.Size
		}
	}

	if total := c.BidLiquidity + c.AskLiquidity; total > 0 {
		c.Imbalance = (c.BidLiquidity - c.AskLiquidity) / total
	}

	switch {
	case c.BidLiquidity > c.AskLiquidity*factor:
		c.Sign = 1
	case c.AskLiquidity > c.BidLiquidity*factor:
		c.Sign = -1
	}
	return c
}
