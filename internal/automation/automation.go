// Package automation runs per-rule trigger state machines once per tick.
// Interval rules fire each time their period elapses, threshold rules fire
// while a watched value is at or above a limit, and manual rules fire only
// when asked.
package automation

import (
	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/events"
)

// Callback is the action run each time a rule fires. Its result only
// matters to interval rules catching up inside a single Update: returning
// false stops further fires of that rule for the rest of the call.
type Callback func(r *Rule) bool

// Automation owns an ordered set of rules and their callbacks. It is not
// safe for concurrent use.
type Automation struct {
	order     []*Rule
	byID      map[string]*Rule
	callbacks map[string]Callback
	disabled  bool

	// firing counts callbacks in progress; a Reset requested by one is
	// applied once the outermost fire has settled its rule.
	firing       int
	resetPending bool

	events events.Bus
}

// New returns an enabled Automation with no rules.
func New() *Automation {
	return &Automation{
		byID:      make(map[string]*Rule),
		callbacks: make(map[string]Callback),
	}
}

// Events returns the bus on which KindRuleTriggered is emitted.
func (a *Automation) Events() *events.Bus { return &a.events }

// Enabled reports whether Update runs at all.
func (a *Automation) Enabled() bool { return !a.disabled }

// SetEnabled toggles the global gate.
func (a *Automation) SetEnabled(enabled bool) { a.disabled = !enabled }

// AddRule stores a copy of r. It returns false when a rule with the same id
// already exists.
func (a *Automation) AddRule(r Rule) bool {
	if _, ok := a.byID[r.ID]; ok {
		return false
	}
	stored := r
	a.order = append(a.order, &stored)
	a.byID[r.ID] = &stored
	return true
}

// RemoveRule deletes the rule and its callback.
func (a *Automation) RemoveRule(id string) bool {
	if _, ok := a.byID[id]; !ok {
		return false
	}
	delete(a.byID, id)
	delete(a.callbacks, id)
	for i, r := range a.order {
		if r.ID == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

// Rule returns the stored rule, or nil. Mutating it changes the rule.
func (a *Automation) Rule(id string) *Rule {
	return a.byID[id]
}

// Rules returns the stored rules in insertion order.
func (a *Automation) Rules() []*Rule {
	out := make([]*Rule, len(a.order))
	copy(out, a.order)
	return out
}

// SetCallback attaches fn to the rule with the given id, replacing any
// previous callback. A nil fn detaches. It returns false when the rule does
// not exist.
func (a *Automation) SetCallback(id string, fn Callback) bool {
	if _, ok := a.byID[id]; !ok {
		return false
	}
	if fn == nil {
		delete(a.callbacks, id)
		return true
	}
	a.callbacks[id] = fn
	return true
}

// SetRuleEnabled enables or disables a single rule.
func (a *Automation) SetRuleEnabled(id string, enabled bool) bool {
	r, ok := a.byID[id]
	if !ok {
		return false
	}
	r.Enabled = enabled
	return true
}

// Update advances every enabled rule by dt seconds. current is the value
// threshold rules compare against; nil skips threshold rules for this call.
func (a *Automation) Update(dt float64, current *bignum.Number) {
	if a.disabled {
		return
	}
	for _, r := range a.Rules() {
		if !r.Enabled {
			continue
		}
		switch r.Trigger {
		case TriggerInterval:
			a.updateInterval(r, dt)
		case TriggerThreshold:
			a.updateThreshold(r, current)
		}
	}
}

func (a *Automation) updateInterval(r *Rule, dt float64) {
	if r.Interval <= 0 {
		return
	}
	r.AccumulatedTime += dt
	for r.Enabled && r.AccumulatedTime >= r.Interval {
		r.AccumulatedTime -= r.Interval
		if !a.fire(r) {
			return
		}
	}
}

func (a *Automation) updateThreshold(r *Rule, current *bignum.Number) {
	if current == nil {
		return
	}
	if current.Less(r.Threshold) {
		r.Latched = false
		return
	}
	if r.Latch {
		if r.Latched {
			return
		}
		r.Latched = true
	}
	a.fire(r)
}

// fire runs one trigger of r and returns the callback's continue flag. A
// rule without a callback continues.
func (a *Automation) fire(r *Rule) bool {
	r.TriggerCount++
	cont := true
	if fn := a.callbacks[r.ID]; fn != nil {
		a.firing++
		cont = fn(r)
		a.firing--
	}
	if r.Exhausted() {
		r.Enabled = false
	}
	a.events.Emit(events.Event{Kind: events.KindRuleTriggered, Subject: r.ID})
	if a.firing == 0 && a.resetPending {
		a.resetPending = false
		a.resetRules()
	}
	return cont
}

// Trigger fires the rule once regardless of its kind. It returns false when
// the rule is missing or disabled.
func (a *Automation) Trigger(id string) bool {
	r, ok := a.byID[id]
	if !ok || !r.Enabled {
		return false
	}
	a.fire(r)
	return true
}

// TriggerAll fires every enabled rule once, in insertion order.
func (a *Automation) TriggerAll() {
	for _, r := range a.Rules() {
		if r.Enabled {
			a.fire(r)
		}
	}
}

// Reset zeroes every rule's counters and accumulators. Rules disabled by
// their trigger cap stay disabled. Called from a callback, the reset waits
// until the firing rule has been checked against its cap.
func (a *Automation) Reset() {
	if a.firing > 0 {
		a.resetPending = true
		return
	}
	a.resetRules()
}

func (a *Automation) resetRules() {
	for _, r := range a.order {
		r.reset()
	}
}
