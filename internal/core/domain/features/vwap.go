// internal/core/domain/features/vwap.go
package features

import (
	"time"

	"neko-signal-bot/internal/core/domain/market"
)

// SessionAnchor последний момент HH:00 UTC (HH = startHour), не позже t
func SessionAnchor(t time.Time, startHour int) time.Time {
	t = t.UTC()
	anchor := time.Date(t.Year(), t.Month(), t.Day(), startHour, 0, 0, 0, time.UTC)
	if anchor.After(t) {
		anchor = anchor.AddDate(0, 0, -1)
	}
	return anchor
}

// SessionVWAP VWAP по барам, открытым начиная с якоря сессии последнего бара.
// ok=false если в сессии нет объёма.
func SessionVWAP(bars []market.Bar, startHour int) (vwap float64, anchor time.Time, ok bool) {
	if len(bars) == 0 {
		return 0, time.Time{}, false
	}
	anchor = SessionAnchor(bars[len(bars)-1].OpenTime, startHour)

	var pv, vol float64
	for i := len(bars) - 1; i >= 0; i-- {
		b := bars[i]
		if b.OpenTime.Before(anchor) {
			break
		}
		pv += b.TypicalPrice() * b.Volume
		vol += b.Volume
	}
	if vol <= 0 {
		return 0, anchor, false
	}
	return pv / vol, anchor, true
}
