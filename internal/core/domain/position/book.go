// internal/core/domain/position/book.go
package position

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"neko-signal-bot/internal/core/domain/market"
	"neko-signal-bot/internal/core/domain/risk"
	"neko-signal-bot/internal/core/domain/signals"
)

// Options поведение проверки уровней
type Options struct {
	// UseWicks проверять low/high бара вместо close; при касании обоих уровней
	// одним баром засчитывается SL
	UseWicks bool
}

type entry struct {
	mu              sync.Mutex
	state           State
	pos             *VirtualPosition
	lastResolvedBar time.Time
}

func (e *entry) snapshot(symbol string) PairState {
	ps := PairState{Symbol: symbol, State: e.state, LastResolvedBar: e.lastResolvedBar}
	if e.pos != nil {
		cp := *e.pos
		ps.Position = &cp
	}
	return ps
}

// Book состояния всех пар. Набор пар фиксируется при создании,
// у каждой пары свой мьютекс.
type Book struct {
	entries map[string]*entry
	opts    Options
}

// NewBook создает книгу со всеми парами в IDLE
func NewBook(symbols []string, opts Options) *Book {
	b := &Book{entries: make(map[string]*entry, len(symbols)), opts: opts}
	for _, s := range symbols {
		b.entries[s] = &entry{state: StateIdle}
	}
	return b
}

func (b *Book) get(symbol string) (*entry, error) {
	e, ok := b.entries[symbol]
	if !ok {
		return nil, fmt.Errorf("Book %s: %w", symbol, ErrUnknownInstrument)
	}
	return e, nil
}

// Open переводит пару из IDLE в LONG/SHORT
func (b *Book) Open(symbol string, dir signals.Direction, params risk.Params, score int, barTime, now time.Time) (VirtualPosition, error) {
	if !dir.IsTradable() {
		return VirtualPosition{}, fmt.Errorf("Book.Open %s: %w: %s", symbol, ErrInvalidDirection, dir)
	}
	e, err := b.get(symbol)
	if err != nil {
		return VirtualPosition{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return VirtualPosition{}, fmt.Errorf("Book.Open %s: %w (%s)", symbol, ErrLocked, e.state)
	}
	if !e.lastResolvedBar.IsZero() && !barTime.After(e.lastResolvedBar) {
		return VirtualPosition{}, fmt.Errorf("Book.Open %s: %w", symbol, ErrSameBar)
	}

	pos := VirtualPosition{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Direction:  dir,
		Entry:      params.Entry,
		TakeProfit: params.TakeProfit,
		StopLoss:   params.StopLoss,
		RiskReward: params.RiskReward,
		Score:      score,
		OpenedAt:   barTime,
		CreatedAt:  now.UTC(),
	}
	e.state = stateFor(dir)
	e.pos = &pos
	return pos, nil
}

// Observe проверяет бар против уровней открытой позиции. Бары не новее
// бара открытия игнорируются. Сначала проверяется SL, затем TP.
func (b *Book) Observe(symbol string, bar market.Bar) (Resolution, bool) {
	e, err := b.get(symbol)
	if err != nil {
		return Resolution{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle || e.pos == nil {
		return Resolution{}, false
	}
	pos := *e.pos
	if !bar.OpenTime.After(pos.OpenedAt) {
		return Resolution{}, false
	}

	reason, exit, hit := b.check(pos, bar)
	if !hit {
		return Resolution{}, false
	}

	e.state = StateIdle
	e.pos = nil
	e.lastResolvedBar = bar.OpenTime

	return Resolution{Position: pos, Reason: reason, ExitPrice: exit, BarTime: bar.OpenTime}, true
}

func (b *Book) check(pos VirtualPosition, bar market.Bar) (string, float64, bool) {
	adverse, favourable := bar.Close, bar.Close
	if pos.Direction == signals.DirectionLong {
		if b.opts.UseWicks {
			adverse, favourable = bar.Low, bar.High
		}
		if adverse <= pos.StopLoss {
			return ReasonStopLoss, exitPrice(b.opts.UseWicks, pos.StopLoss, bar.Close), true
		}
		if favourable >= pos.TakeProfit {
			return ReasonTakeProfit, exitPrice(b.opts.UseWicks, pos.TakeProfit, bar.Close), true
		}
		return "", 0, false
	}

	if b.opts.UseWicks {
		adverse, favourable = bar.High, bar.Low
	}
	if adverse >= pos.StopLoss {
		return ReasonStopLoss, exitPrice(b.opts.UseWicks, pos.StopLoss, bar.Close), true
	}
	if favourable <= pos.TakeProfit {
		return ReasonTakeProfit, exitPrice(b.opts.UseWicks, pos.TakeProfit, bar.Close), true
	}
	return "", 0, false
}

// exitPrice по теням выход считается по уровню, по закрытию - по close
func exitPrice(useWicks bool, level, closePrice float64) float64 {
	if useWicks {
		return level
	}
	return closePrice
}

// IsLocked true если по паре открыта позиция
func (b *Book) IsLocked(symbol string) bool {
	e, err := b.get(symbol)
	if err != nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != StateIdle
}

// Snapshot копия состояния пары
func (b *Book) Snapshot(symbol string) (PairState, error) {
	e, err := b.get(symbol)
	if err != nil {
		return PairState{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(symbol), nil
}

// Snapshots копии состояний всех пар, по алфавиту
func (b *Book) Snapshots() []PairState {
	symbols := b.Symbols()
	out := make([]PairState, 0, len(symbols))
	for _, s := range symbols {
		e := b.entries[s]
		e.mu.Lock()
		out = append(out, e.snapshot(s))
		e.mu.Unlock()
	}
	return out
}

// Symbols пары книги, по алфавиту
func (b *Book) Symbols() []string {
	out := make([]string, 0, len(b.entries))
	for s := range b.entries {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// OpenCount число открытых позиций
func (b *Book) OpenCount() int {
	n := 0
	for _, ps := range b.Snapshots() {
		if ps.State != StateIdle {
			n++
		}
	}
	return n
}
