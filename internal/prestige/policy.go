package prestige

import (
	"math"

	"github.com/papapumpkin/idlecore/internal/bignum"
)

// Policy holds the overridable parts of the prestige mechanic. Hosts that
// want a different curve embed DefaultPolicy and replace single methods.
type Policy interface {
	// CanPrestige reports whether current progress allows a reset.
	CanPrestige(p *Prestige, current bignum.Number) bool
	// CalculateReward returns the points a reset at current would grant.
	CalculateReward(p *Prestige, current bignum.Number) bignum.Number
	// OnPrestige runs after points are granted and before the performed
	// notification is emitted.
	OnPrestige(p *Prestige, reward bignum.Number)
	// BonusMultiplier maps accumulated points to a production multiplier.
	BonusMultiplier(points bignum.Number) float64
}

// DefaultPolicy gates on the threshold and rewards
// (current/threshold)^scalingExponent points.
type DefaultPolicy struct{}

var _ Policy = DefaultPolicy{}

// CanPrestige reports whether current >= threshold.
func (DefaultPolicy) CanPrestige(p *Prestige, current bignum.Number) bool {
	return current.GreaterOrEqual(p.Threshold())
}

// CalculateReward returns (current/threshold)^scalingExponent, or zero below
// the threshold.
func (DefaultPolicy) CalculateReward(p *Prestige, current bignum.Number) bignum.Number {
	if current.Less(p.Threshold()) {
		return bignum.Zero()
	}
	return current.Div(p.Threshold()).Pow(p.ScalingExponent())
}

// OnPrestige does nothing.
func (DefaultPolicy) OnPrestige(*Prestige, bignum.Number) {}

// BonusMultiplier returns 1 + sqrt(points) x 0.1.
func (DefaultPolicy) BonusMultiplier(points bignum.Number) float64 {
	v := points.Float64()
	if v <= 0 {
		return 1
	}
	return 1 + math.Sqrt(v)*0.1
}
