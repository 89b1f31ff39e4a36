// internal/core/domain/market/symbol.go
package market

import "strings"

// DisplaySymbol приводит "BTC/USDT:USDT" и "btcusdt" к биржевому виду "BTCUSDT"
func DisplaySymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	return strings.ReplaceAll(s, "/", "")
}
