// internal/core/domain/market/series.go
package market

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOutOfOrder  = errors.New("bar timestamp is not after the last bar")
	ErrIntervalGap = errors.New("bar does not follow the series interval")
	ErrEmptySeries = errors.New("series is empty")
)

// Series - скользящее окно свечей одного инструмента.
// Время открытия строго возрастает с шагом Interval; при переполнении
// вытесняется самая старая свеча.
type Series struct {
	symbol   string
	interval time.Duration
	capacity int
	bars     []Bar
}

// NewSeries создает пустую серию; capacity <= 0 означает окно без ограничения
func NewSeries(symbol string, interval time.Duration, capacity int) *Series {
	return &Series{
		symbol:   symbol,
		interval: interval,
		capacity: capacity,
		bars:     make([]Bar, 0, max(capacity, 0)),
	}
}

// SeriesFromBars строит серию из упорядоченного среза, проверяя инварианты
func SeriesFromBars(symbol string, interval time.Duration, capacity int, bars []Bar) (*Series, error) {
	s := NewSeries(symbol, interval, capacity)
	for i, b := range bars {
		if err := s.Append(b); err != nil {
			return nil, fmt.Errorf("Series %s: bar %d: %w", symbol, i, err)
		}
	}
	return s, nil
}

// Append добавляет свечу в конец окна
func (s *Series) Append(b Bar) error {
	if n := len(s.bars); n > 0 {
		last := s.bars[n-1].OpenTime
		if !b.OpenTime.After(last) {
			return fmt.Errorf("%w: %s <= %s", ErrOutOfOrder,
				b.OpenTime.UTC().Format(time.RFC3339), last.UTC().Format(time.RFC3339))
		}
		if s.interval > 0 && b.OpenTime.Sub(last) != s.interval {
			return fmt.Errorf("%w: step %v, want %v", ErrIntervalGap, b.OpenTime.Sub(last), s.interval)
		}
	}

	if s.capacity > 0 && len(s.bars) == s.capacity {
		copy(s.bars, s.bars[1:])
		s.bars = s.bars[:len(s.bars)-1]
	}
	s.bars = append(s.bars, b)
	return nil
}

func (s *Series) Symbol() string { return s.symbol }
func (s *Series) Interval() time.Duration { return s.interval }
func (s *Series) Capacity() int { return s.capacity }
func (s *Series) Len() int { return len(s.bars) }

// At возвращает свечу по индексу; отрицательный индекс считается с конца
func (s *Series) At(i int) Bar {
	if i < 0 {
		i += len(s.bars)
	}
	return s.bars[i]
}

// Last последняя (самая свежая) свеча
func (s *Series) Last() (Bar, error) {
	if len(s.bars) == 0 {
		return Bar{}, ErrEmptySeries
	}
	return s.bars[len(s.bars)-1], nil
}

// Bars возвращает копию окна
func (s *Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Closes цены закрытия в порядке времени
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}
