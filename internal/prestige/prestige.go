// Package prestige implements the soft-reset mechanic: once progress reaches a
// threshold the player may trade it for permanent prestige points, which feed
// a production multiplier.
package prestige

import (
	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/events"
)

// DefaultScalingExponent gives square-root diminishing returns.
const DefaultScalingExponent = 0.5

// Config is the static configuration of a prestige layer.
type Config struct {
	ID              string
	Name            string
	Threshold       bignum.Number
	ScalingExponent float64 // 0 means DefaultScalingExponent; use SetScalingExponent(0) for a flat curve
	Policy          Policy  // nil means DefaultPolicy
}

// Prestige tracks accumulated points and the number of resets performed. It
// is not safe for concurrent use.
type Prestige struct {
	id              string
	name            string
	threshold       bignum.Number
	scalingExponent float64
	policy          Policy

	points         bignum.Number
	timesPrestiged int64

	events events.Bus
}

// New returns a prestige layer with no points.
func New(cfg Config) *Prestige {
	p := &Prestige{
		id:              cfg.ID,
		name:            cfg.Name,
		threshold:       cfg.Threshold,
		scalingExponent: cfg.ScalingExponent,
		policy:          cfg.Policy,
	}
	if p.scalingExponent == 0 {
		p.scalingExponent = DefaultScalingExponent
	}
	if p.policy == nil {
		p.policy = DefaultPolicy{}
	}
	return p
}

// ID returns the configured identifier.
func (p *Prestige) ID() string { return p.id }

// Name returns the configured display name.
func (p *Prestige) Name() string { return p.name }

// Threshold returns the minimum progress required to prestige.
func (p *Prestige) Threshold() bignum.Number { return p.threshold }

// SetThreshold changes the threshold.
func (p *Prestige) SetThreshold(t bignum.Number) { p.threshold = t }

// ScalingExponent returns the reward curve exponent.
func (p *Prestige) ScalingExponent() float64 { return p.scalingExponent }

// SetScalingExponent changes the reward curve exponent. Zero is accepted and
// makes every eligible reset worth exactly one point.
func (p *Prestige) SetScalingExponent(e float64) { p.scalingExponent = e }

// Points returns the accumulated prestige points.
func (p *Prestige) Points() bignum.Number { return p.points }

// SetPoints overwrites the accumulated points, for loading saves.
func (p *Prestige) SetPoints(n bignum.Number) { p.points = n }

// AddPoints adds n to the accumulated points.
func (p *Prestige) AddPoints(n bignum.Number) { p.points.AddInPlace(n) }

// TimesPrestiged returns how many resets have been performed.
func (p *Prestige) TimesPrestiged() int64 { return p.timesPrestiged }

// SetTimesPrestiged overwrites the reset counter, for loading saves.
func (p *Prestige) SetTimesPrestiged(n int64) { p.timesPrestiged = n }

// Events returns the bus on which KindPrestigePerformed is emitted.
func (p *Prestige) Events() *events.Bus { return &p.events }

// CanPrestige reports whether current progress allows a reset.
func (p *Prestige) CanPrestige(current bignum.Number) bool {
	return p.policy.CanPrestige(p, current)
}

// CalculateReward previews the points a reset at current would grant. It is
// safe to call below the threshold, where it returns zero.
func (p *Prestige) CalculateReward(current bignum.Number) bignum.Number {
	return p.policy.CalculateReward(p, current)
}

// Perform grants the reward for current progress and returns it. When not
// eligible it changes nothing and returns zero. The caller is responsible for
// resetting the progress it traded away.
func (p *Prestige) Perform(current bignum.Number) bignum.Number {
	if !p.CanPrestige(current) {
		return bignum.Zero()
	}
	reward := p.CalculateReward(current)
	p.points.AddInPlace(reward)
	p.timesPrestiged++
	p.policy.OnPrestige(p, reward)
	p.events.Emit(events.Event{
		Kind:    events.KindPrestigePerformed,
		Subject: p.id,
		Value:   reward,
	})
	return reward
}

// BonusMultiplier returns the production multiplier granted by the current
// points.
func (p *Prestige) BonusMultiplier() float64 {
	return p.policy.BonusMultiplier(p.points)
}

// Reset clears points and the reset counter. Configuration is kept.
func (p *Prestige) Reset() {
	p.points = bignum.Zero()
	p.timesPrestiged = 0
}

// State is the persistable form of a Prestige.
type State struct {
	Points          bignum.Number `toml:"points" json:"points"`
	TimesPrestiged  int64         `toml:"times_prestiged" json:"times_prestiged"`
	Threshold       bignum.Number `toml:"threshold" json:"threshold"`
	ScalingExponent float64       `toml:"scaling_exponent" json:"scaling_exponent"`
}

// State exports runtime state and configuration as plain data.
func (p *Prestige) State() State {
	return State{
		Points:          p.points,
		TimesPrestiged:  p.timesPrestiged,
		Threshold:       p.threshold,
		ScalingExponent: p.scalingExponent,
	}
}

// Restore loads s, including its configuration.
func (p *Prestige) Restore(s State) {
	p.points = s.Points
	p.timesPrestiged = s.TimesPrestiged
	p.threshold = s.Threshold
	p.scalingExponent = s.ScalingExponent
}
