package automation

import "github.com/papapumpkin/idlecore/internal/bignum"

// RuleState is the persistable form of a Rule. Callbacks are never
// persisted.
type RuleState struct {
	ID              string        `toml:"id" json:"id"`
	Name            string        `toml:"name,omitempty" json:"name,omitempty"`
	Trigger         Trigger       `toml:"trigger" json:"trigger"`
	Interval        float64       `toml:"interval" json:"interval"`
	Threshold       bignum.Number `toml:"threshold" json:"threshold"`
	Enabled         bool          `toml:"enabled" json:"enabled"`
	MaxTriggers     int64         `toml:"max_triggers" json:"max_triggers"`
	Latch           bool          `toml:"latch" json:"latch"`
	TriggerCount    int64         `toml:"trigger_count" json:"trigger_count"`
	AccumulatedTime float64       `toml:"accumulated_time" json:"accumulated_time"`
	Latched         bool          `toml:"latched" json:"latched"`
}

// State is the persistable form of an Automation.
type State struct {
	Enabled bool        `toml:"enabled" json:"enabled"`
	Rules   []RuleState `toml:"rules" json:"rules"`
}

// State exports the rules as plain data.
func (a *Automation) State() State {
	s := State{Enabled: a.Enabled(), Rules: make([]RuleState, 0, len(a.order))}
	for _, r := range a.order {
		s.Rules = append(s.Rules, RuleState(*r))
	}
	return s
}

// Restore replaces the rules with s. Callbacks registered for ids present in
// s are kept; the rest are dropped.
func (a *Automation) Restore(s State) {
	a.order = nil
	a.byID = make(map[string]*Rule, len(s.Rules))
	a.disabled = !s.Enabled
	for _, r := range s.Rules {
		a.AddRule(Rule(r))
	}
	for id := range a.callbacks {
		if _, ok := a.byID[id]; !ok {
			delete(a.callbacks, id)
		}
	}
}
