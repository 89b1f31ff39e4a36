// internal/core/domain/signals/filters/session_filter.go
package filters

import "fmt"

// SessionGate пропускает только часы торговой сессии [start, end) по UTC.
// При start > end окно переходит через полночь.
type SessionGate struct {
	statsCounter
	startHour int
	endHour   int
}

// NewSessionGate создает новый SessionGate
func NewSessionGate(startHour, endHour int) *SessionGate {
	return &SessionGate{startHour: startHour, endHour: endHour}
}

func (g *SessionGate) Name() string {
	return "session_filter"
}

// IsOpen проверяет час без учёта статистики
func (g *SessionGate) IsOpen(hour int) bool {
	if g.startHour < g.endHour {
		return hour >= g.startHour && hour < g.endHour
	}
	return hour >= g.startHour || hour < g.endHour
}

func (g *SessionGate) Evaluate(in Input) Verdict {
	if g.IsOpen(in.Now.UTC().Hour()) {
		return g.record(pass())
	}
	return g.record(reject(g.Name(), ReasonOutsideSession))
}

// Window строка вида "12:00-21:00 UTC"
func (g *SessionGate) Window() string {
	return fmt.Sprintf("%02d:00-%02d:00 UTC", g.startHour, g.endHour)
}
