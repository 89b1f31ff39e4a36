// pkg/period/period.go
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Интервалы свечей Binance USDⓈ-M, которые понимает сканер
const (
	Period1m  = "1m"
	Period3m  = "3m"
	Period5m  = "5m"
	Period15m = "15m"
	Period30m = "30m"
	Period1h  = "1h"
	Period2h  = "2h"
	Period4h  = "4h"
	Period1d  = "1d"
)

// AllPeriods все поддерживаемые интервалы в порядке возрастания
var AllPeriods = []string{
	Period1m, Period3m, Period5m, Period15m, Period30m,
	Period1h, Period2h, Period4h, Period1d,
}

// DefaultPeriod интервал свечей по умолчанию
const DefaultPeriod = Period5m

// StringToDuration конвертирует строковый интервал в time.Duration
func StringToDuration(period string) (time.Duration, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	if !IsValidPeriod(p) {
		return 0, fmt.Errorf("неизвестный интервал: %q", period)
	}

	n, err := strconv.Atoi(p[:len(p)-1])
	if err != nil {
		return 0, fmt.Errorf("неизвестный интервал: %q", period)
	}

	switch p[len(p)-1] {
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	default:
		return time.Duration(n) * 24 * time.Hour, nil
	}
}

// MustDuration как StringToDuration, но паникует (только для констант)
func MustDuration(period string) time.Duration {
	d, err := StringToDuration(period)
	if err != nil {
		panic(err)
	}
	return d
}

// IsValidPeriod проверяет, поддерживается ли интервал
func IsValidPeriod(period string) bool {
	for _, p := range AllPeriods {
		if p == period {
			return true
		}
	}
	return false
}

// DurationToString обратное преобразование; для нестандартных длительностей
// возвращает запись в минутах
func DurationToString(d time.Duration) string {
	for _, p := range AllPeriods {
		if MustDuration(p) == d {
			return p
		}
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
