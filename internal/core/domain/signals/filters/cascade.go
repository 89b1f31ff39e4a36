// internal/core/domain/signals/filters/cascade.go
package filters

// Cascade применяет гейты по порядку и останавливается на первом отказе
type Cascade struct {
	gates []Gate
}

// NewCascade создает каскад; порядок аргументов - порядок проверки
func NewCascade(gates ...Gate) *Cascade {
	return &Cascade{gates: gates}
}

func (c *Cascade) Evaluate(in Input) Verdict {
	for _, g := range c.gates {
		if v := g.Evaluate(in); !v.Passed {
			return v
		}
	}
	return pass()
}

// Gates гейты каскада в порядке проверки
func (c *Cascade) Gates() []Gate {
	return append([]Gate(nil), c.gates...)
}

// Stats статистика по имени гейта
func (c *Cascade) Stats() map[string]FilterStats {
	out := make(map[string]FilterStats, len(c.gates))
	for _, g := range c.gates {
		out[g.Name()] = g.GetStats()
	}
	return out
}
