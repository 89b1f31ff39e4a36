// internal/core/domain/features/momentum.go
package features

// ROC (close[t] - close[t-k]) / close[t-k]; 0 при нехватке данных или нулевой базе
func ROC(closes []float64, k int) float64 {
	n := len(closes)
	if k <= 0 || n <= k {
		return 0
	}
	base := closes[n-1-k]
	if base == 0 {
		return 0
	}
	return (closes[n-1] - base) / base
}
