// internal/core/domain/signals/types.go
package signals

// Direction направление сигнала и состояние пары
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	DirectionNone  Direction = "NONE"
)

func (d Direction) String() string {
	return string(d)
}

// Sign +1 для LONG, -1 для SHORT, 0 иначе
func (d Direction) Sign() int {
	switch d {
	case DirectionLong:
		return 1
	case DirectionShort:
		return -1
	default:
		return 0
	}
}

// IsTradable направление, по которому можно открыть позицию
func (d Direction) IsTradable() bool {
	return d == DirectionLong || d == DirectionShort
}

// Emoji значок направления для уведомлений
func (d Direction) Emoji() string {
	switch d {
	case DirectionLong:
		return "🟢"
	case DirectionShort:
		return "🔴"
	default:
		return "⚪"
	}
}
