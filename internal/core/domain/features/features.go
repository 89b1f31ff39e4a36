// internal/core/domain/features/features.go
package features

import (
	"errors"
	"fmt"
	"math"
	"time"

	"neko-signal-bot/internal/core/domain/market"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrDegenerateBar    = errors.New("degenerate bar")
)

// InsufficientDataError серия короче самого длинного окна
type InsufficientDataError struct {
	Symbol string
	Have   int
	Need   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: have %d bars, need %d", e.Symbol, e.Have, e.Need)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Set признаки одного цикла для одного инструмента; не хранится между циклами
type Set struct {
	Symbol  string
	BarTime time.Time
	Close   float64
	Volume  float64

	OFIMean  float64
	CVD      []float64
	CVDTrend int

	VWAP         float64
	VWAPValid    bool
	SessionStart time.Time

	ROC       float64
	Clearance Clearance

	Profile Profile
	Swing   Swing
	Sweep   Sweep

	ATR   float64
	ATRMA float64

	HVNProximityPct float64
}

// CVDLast последнее значение CVD
func (s *Set) CVDLast() float64 {
	if len(s.CVD) == 0 {
		return 0
	}
	return s.CVD[len(s.CVD)-1]
}

// NearHVN ближайший HVN в пределах HVNProximityPct от close
func (s *Set) NearHVN() (float64, bool) {
	node, ok := s.Profile.Nearest(s.Close)
	if !ok {
		return 0, false
	}
	if math.Abs(node-s.Close) > s.Close*s.HVNProximityPct {
		return 0, false
	}
	return node, true
}

// Compute чистая функция: серия + стакан + конфиг -> признаки
func Compute(series *market.Series, book market.OrderBook, cfg Config) (*Set, error) {
	if need := cfg.MinBars(); series.Len() < need {
		return nil, &InsufficientDataError{Symbol: series.Symbol(), Have: series.Len(), Need: need}
	}

	bars := series.Bars()
	last := bars[len(bars)-1]
	if last.Close <= 0 || math.IsNaN(last.Close) || math.IsInf(last.Close, 0) {
		return nil, fmt.Errorf("%s: %w: close=%v", series.Symbol(), ErrDegenerateBar, last.Close)
	}

	atr, atrMA, ok := ATRWithAverage(bars, cfg.ATRPeriod, cfg.ATRMAPeriod)
	if !ok {
		return nil, &InsufficientDataError{Symbol: series.Symbol(), Have: len(bars), Need: cfg.ATRPeriod + cfg.ATRMAPeriod}
	}

	swing, ok := SwingExtremes(bars, cfg.SwingLookback)
	if !ok {
		return nil, &InsufficientDataError{Symbol: series.Symbol(), Have: len(bars), Need: cfg.SwingLookback + 1}
	}

	cvd := CVDSeries(bars, cfg.CVDWindow)
	vwap, anchor, vwapOK := SessionVWAP(bars, cfg.SessionStartHour)

	return &Set{
		Symbol:          series.Symbol(),
		BarTime:         last.OpenTime,
		Close:           last.Close,
		Volume:          last.Volume,
		OFIMean:         OFIMean(bars, cfg.OFIWindow),
		CVD:             cvd,
		CVDTrend:        CVDTrend(cvd, cfg.CVDWindow),
		VWAP:            vwap,
		VWAPValid:       vwapOK,
		SessionStart:    anchor,
		ROC:             ROC(series.Closes(), cfg.ROCPeriod),
		Clearance:       BookClearance(book, cfg.BookProximityPct, cfg.BookImbalanceFactor),
		Profile:         VolumeProfile(bars, cfg.ProfileBins, cfg.HVNPercentile),
		Swing:           swing,
		Sweep:           DetectSweep(last, swing),
		ATR:             atr,
		ATRMA:           atrMA,
		HVNProximityPct: cfg.HVNProximityPct,
	}, nil
}
