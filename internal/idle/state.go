package idle

import "github.com/papapumpkin/idlecore/internal/bignum"

// GeneratorState is the persistable form of a Generator.
type GeneratorState struct {
	ID         string        `toml:"id" json:"id"`
	Name       string        `toml:"name,omitempty" json:"name,omitempty"`
	BaseRate   bignum.Number `toml:"base_rate" json:"base_rate"`
	Count      int64         `toml:"count" json:"count"`
	Multiplier float64       `toml:"multiplier" json:"multiplier"`
	Enabled    bool          `toml:"enabled" json:"enabled"`
}

// State is the persistable form of a Calculator.
type State struct {
	SnapshotTime     int64            `toml:"snapshot_time" json:"snapshot_time"`
	GlobalMultiplier float64          `toml:"global_multiplier" json:"global_multiplier"`
	Generators       []GeneratorState `toml:"generators" json:"generators"`
}

// State exports the calculator as plain data.
func (c *Calculator) State() State {
	s := State{
		SnapshotTime:     c.snapshotTime,
		GlobalMultiplier: c.globalMultiplier,
		Generators:       make([]GeneratorState, 0, len(c.order)),
	}
	for _, g := range c.order {
		s.Generators = append(s.Generators, GeneratorState{
			ID:         g.ID,
			Name:       g.Name,
			BaseRate:   g.BaseRate,
			Count:      g.Count,
			Multiplier: g.Multiplier,
			Enabled:    g.Enabled,
		})
	}
	return s
}

// Restore replaces the calculator's generators, multiplier and snapshot with
// s. Duplicate ids in s keep the first occurrence.
func (c *Calculator) Restore(s State) {
	c.order = nil
	c.byID = make(map[string]*Generator, len(s.Generators))
	c.snapshotTime = s.SnapshotTime
	c.globalMultiplier = s.GlobalMultiplier
	for _, g := range s.Generators {
		c.AddGenerator(Generator{
			ID:         g.ID,
			Name:       g.Name,
			BaseRate:   g.BaseRate,
			Count:      g.Count,
			Multiplier: g.Multiplier,
			Enabled:    g.Enabled,
		})
	}
}
