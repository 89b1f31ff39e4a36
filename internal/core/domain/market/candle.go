// internal/core/domain/market/candle.go
package market

import "time"

// Bar - одна завершённая OHLCV-свеча с объёмом агрессивных покупок
type Bar struct {
	OpenTime       time.Time `json:"open_time"`
	Open           float64   `json:"open"`
	High           float64   `json:"high"`
	Low            float64   `json:"low"`
	Close          float64   `json:"close"`
	Volume         float64   `json:"volume"`
	TakerBuyVolume float64   `json:"taker_buy_volume"`
}

// TakerSellVolume объём агрессивных продаж
func (b Bar) TakerSellVolume() float64 {
	return b.Volume - b.TakerBuyVolume
}

// OFI дисбаланс потока ордеров бара: takerBuy - takerSell
func (b Bar) OFI() float64 {
	return b.TakerBuyVolume - b.TakerSellVolume()
}

// TypicalPrice (H+L+C)/3
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Body |close - open|
func (b Bar) Body() float64 {
	if b.Close >= b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// TakerBuyRatio доля агрессивных покупок в объёме; ok=false при нулевом объёме
func (b Bar) TakerBuyRatio() (float64, bool) {
	if b.Volume <= 0 {
		return 0, false
	}
	return b.TakerBuyVolume / b.Volume, true
}
