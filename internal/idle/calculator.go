// Package idle aggregates generators into a production rate and projects
// that rate across elapsed time, both while the game runs and across the gap
// since it last ran ("offline" progress).
package idle

import (
	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/clock"
)

// Calculator owns a set of generators keyed by id. It is not safe for
// concurrent use.
type Calculator struct {
	clk              clock.Clock
	order            []*Generator
	byID             map[string]*Generator
	globalMultiplier float64
	snapshotTime     int64
}

// New returns an empty calculator reading time from clk. A nil clk uses the
// system clock.
func New(clk clock.Clock) *Calculator {
	return &Calculator{
		clk:              clock.OrReal(clk),
		byID:             make(map[string]*Generator),
		globalMultiplier: 1,
	}
}

// AddGenerator stores a copy of g. It returns false, leaving the calculator
// unchanged, when a generator with the same id already exists.
func (c *Calculator) AddGenerator(g Generator) bool {
	if _, ok := c.byID[g.ID]; ok {
		return false
	}
	stored := g
	c.order = append(c.order, &stored)
	c.byID[g.ID] = &stored
	return true
}

// RemoveGenerator deletes the generator with the given id and reports
// whether it existed.
func (c *Calculator) RemoveGenerator(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, g := range c.order {
		if g.ID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Generator returns the stored generator with the given id, or nil. The
// pointer refers to the calculator's own copy; mutating it (Count, Enabled,
// Multiplier) is how callers change production.
func (c *Calculator) Generator(id string) *Generator {
	return c.byID[id]
}

// Generators returns the stored generators in insertion order.
func (c *Calculator) Generators() []*Generator {
	out := make([]*Generator, len(c.order))
	copy(out, c.order)
	return out
}

// GlobalMultiplier returns the factor applied to the summed rate.
func (c *Calculator) GlobalMultiplier() float64 {
	return c.globalMultiplier
}

// SetGlobalMultiplier sets the factor applied to the summed rate.
func (c *Calculator) SetGlobalMultiplier(m float64) {
	c.globalMultiplier = m
}

// TotalRate returns the production per second of every generator combined,
// scaled by the global multiplier.
func (c *Calculator) TotalRate() bignum.Number {
	var total bignum.Number
	for _, g := range c.order {
		total.AddInPlace(g.EffectiveRate())
	}
	return total.MulScalar(c.globalMultiplier)
}

// Simulate returns the production over the given number of seconds, or zero
// when seconds <= 0.
func (c *Calculator) Simulate(seconds float64) bignum.Number {
	if seconds <= 0 {
		return bignum.Zero()
	}
	return c.TotalRate().MulScalar(seconds)
}

// OfflineReport describes one offline-progress calculation.
type OfflineReport struct {
	// Elapsed is the wall-clock gap in seconds since the last active time.
	Elapsed int64
	// Credited is the number of seconds actually simulated after clamping.
	Credited int64
	// Clamped is true when maxHours cut the gap short.
	Clamped bool
	// Efficiency is the scaling applied, 1 when none was.
	Efficiency float64
	// Produced is the resulting production.
	Produced bignum.Number
}

// SimulateOffline returns the production earned between lastActive (unix
// seconds) and now. maxHours > 0 caps the credited time; 0 means unlimited.
// An efficiency in [0, 1) scales the result; any other value applies none.
func (c *Calculator) SimulateOffline(lastActive int64, efficiency, maxHours float64) bignum.Number {
	return c.SimulateOfflineReport(lastActive, efficiency, maxHours).Produced
}

// SimulateOfflineReport is SimulateOffline with the intermediate values a UI
// shows in a "welcome back" summary.
func (c *Calculator) SimulateOfflineReport(lastActive int64, efficiency, maxHours float64) OfflineReport {
	report := OfflineReport{Efficiency: 1}
	if lastActive <= 0 {
		return report
	}
	elapsed := clock.Unix(c.clk) - lastActive
	if elapsed <= 0 {
		return report
	}
	report.Elapsed = elapsed
	report.Credited = elapsed
	if maxHours > 0 {
		limit := int64(maxHours * 3600)
		if elapsed > limit {
			report.Credited = limit
			report.Clamped = true
		}
	}

	produced := c.Simulate(float64(report.Credited))
	if efficiency >= 0 && efficiency < 1 {
		produced.MulScalarInPlace(efficiency)
		report.Efficiency = efficiency
	}
	report.Produced = produced
	return report
}

// TakeSnapshot records the current time as the baseline for the next
// offline calculation.
func (c *Calculator) TakeSnapshot() {
	c.snapshotTime = clock.Unix(c.clk)
}

// SnapshotTime returns the recorded baseline in unix seconds, 0 if none.
func (c *Calculator) SnapshotTime() int64 {
	return c.snapshotTime
}

// SetSnapshotTime restores a persisted baseline.
func (c *Calculator) SetSnapshotTime(t int64) {
	c.snapshotTime = t
}
