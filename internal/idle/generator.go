package idle

import "github.com/papapumpkin/idlecore/internal/bignum"

// Generator is a production source: BaseRate units per second for each of
// Count owned copies, scaled by Multiplier.
type Generator struct {
	ID         string
	Name       string
	BaseRate   bignum.Number
	Count      int64
	Multiplier float64
	Enabled    bool
}

// NewGenerator returns an enabled generator with a multiplier of 1.
func NewGenerator(id string, baseRate bignum.Number, count int64) Generator {
	return Generator{
		ID:         id,
		BaseRate:   baseRate,
		Count:      count,
		Multiplier: 1,
		Enabled:    true,
	}
}

// EffectiveRate returns BaseRate x Count x Multiplier, or zero when the
// generator is disabled or owns no copies.
func (g *Generator) EffectiveRate() bignum.Number {
	if !g.Enabled || g.Count <= 0 {
		return bignum.Zero()
	}
	return g.BaseRate.MulScalar(float64(g.Count)).MulScalar(g.Multiplier)
}
