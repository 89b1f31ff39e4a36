// internal/core/domain/features/profile.go
package features

import (
	"math"
	"sort"

	"neko-signal-bot/internal/core/domain/market"
)

// Profile гистограмма объёма по равным ценовым корзинам
type Profile struct {
	Low       float64
	High      float64
	BinWidth  float64
	Volumes   []float64
	Threshold float64   // объём на заданном перцентиле
	Nodes     []float64 // середины HVN-корзин по возрастанию цены
}

// VolumeProfile строит профиль: объём бара относится к корзине его close
func VolumeProfile(bars []market.Bar, bins int, percentile float64) Profile {
	if len(bars) == 0 || bins <= 0 {
		return Profile{}
	}

	low, high := math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		low = math.Min(low, b.Low)
		high = math.Max(high, b.High)
	}
	if !(high > low) {
		return Profile{Low: low, High: high}
	}

	p := Profile{
		Low:      low,
		High:     high,
		BinWidth: (high - low) / float64(bins),
		Volumes:  make([]float64, bins),
	}
	for _, b := range bars {
		p.Volumes[p.binOf(b.Close)] += b.Volume
	}

	p.Threshold = Percentile(p.Volumes, percentile)
	for i, v := range p.Volumes {
		if v > 0 && v >= p.Threshold {
			p.Nodes = append(p.Nodes, p.midpoint(i))
		}
	}
	return p
}

func (p Profile) binOf(price float64) int {
	idx := int(math.Floor((price - p.Low) / p.BinWidth))
	if idx < 0 {
		return 0
	}
	if idx >= len(p.Volumes) {
		return len(p.Volumes) - 1
	}
	return idx
}

func (p Profile) midpoint(i int) float64 {
	return p.Low + (float64(i)+0.5)*p.BinWidth
}

// Nearest ближайший к цене HVN
func (p Profile) Nearest(price float64) (float64, bool) {
	best, found := 0.0, false
	for _, n := range p.Nodes {
		if !found || math.Abs(n-price) < math.Abs(best-price) {
			best, found = n, true
		}
	}
	return best, found
}

// NearestBelow самый высокий HVN строго ниже цены; ok=false если его нет
// или он дальше maxDistance
func (p Profile) NearestBelow(price, maxDistance float64) (float64, bool) {
	for i := len(p.Nodes) - 1; i >= 0; i-- {
		n := p.Nodes[i]
		if n < price {
			return n, price-n <= maxDistance
		}
	}
	return 0, false
}

// NearestAbove зеркально NearestBelow
func (p Profile) NearestAbove(price, maxDistance float64) (float64, bool) {
	for _, n := range p.Nodes {
		if n > price {
			return n, n-price <= maxDistance
		}
	}
	return 0, false
}

// Percentile перцентиль с линейной интерполяцией между соседними рангами
func Percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := pct / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}
