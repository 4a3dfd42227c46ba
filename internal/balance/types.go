// Package balance loads game definitions: the generators, milestones,
// prestige layer, unlock nodes and automation rules that make up an idle
// game's economy. Definitions are authored in TOML or YAML and validated
// before a session is built from them.
package balance

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/idlecore/internal/bignum"
)

// Defaults applied to omitted fields.
const (
	DefaultCostGrowth       = 1.15
	DefaultMultiplier       = 1.0
	DefaultCurrency         = "coins"
	DefaultScalingExponent  = 0.5
	DefaultRewardMultiplier = 1.0
)

// Definition is a complete, decoded game definition.
type Definition struct {
	Name       string `toml:"name" yaml:"name"`
	Version    string `toml:"version" yaml:"version"`
	Currency   string `toml:"currency" yaml:"currency"`
	SourceFile string `toml:"-" yaml:"-"`

	Generators []GeneratorDef `toml:"generators" yaml:"generators"`
	Milestones []MilestoneDef `toml:"milestones" yaml:"milestones"`
	Prestige   PrestigeDef    `toml:"prestige" yaml:"prestige"`
	Nodes      []NodeDef      `toml:"nodes" yaml:"nodes"`
	Rules      []RuleDef      `toml:"rules" yaml:"rules"`
	Offline    OfflineDef     `toml:"offline" yaml:"offline"`
}

// GeneratorDef describes a purchasable producer. The price of the next unit
// is BaseCost x CostGrowth^owned.
type GeneratorDef struct {
	ID         string        `toml:"id" yaml:"id"`
	Name       string        `toml:"name" yaml:"name"`
	BaseRate   bignum.Number `toml:"base_rate" yaml:"base_rate"`
	BaseCost   bignum.Number `toml:"base_cost" yaml:"base_cost"`
	CostGrowth float64       `toml:"cost_growth" yaml:"cost_growth"`
	StartCount int64         `toml:"start_count" yaml:"start_count"`
	Multiplier float64       `toml:"multiplier" yaml:"multiplier"`
}

// MilestoneDef describes a one-shot achievement on lifetime earnings.
type MilestoneDef struct {
	ID          string        `toml:"id" yaml:"id"`
	Name        string        `toml:"name" yaml:"name"`
	Description string        `toml:"description" yaml:"description"`
	Icon        string        `toml:"icon" yaml:"icon"`
	Threshold   bignum.Number `toml:"threshold" yaml:"threshold"`
	Reward      float64       `toml:"reward" yaml:"reward"`
}

// PrestigeDef configures the prestige layer. A zero Threshold disables
// prestige.
type PrestigeDef struct {
	ID              string        `toml:"id" yaml:"id"`
	Name            string        `toml:"name" yaml:"name"`
	Threshold       bignum.Number `toml:"threshold" yaml:"threshold"`
	ScalingExponent float64       `toml:"scaling_exponent" yaml:"scaling_exponent"`
}

// Enabled reports whether the definition has a prestige layer.
func (p PrestigeDef) Enabled() bool {
	return !p.Threshold.IsZero()
}

// Effect kinds a node can apply when unlocked.
const (
	EffectNone                = ""
	EffectGeneratorMultiplier = "generator_multiplier"
	EffectGlobalMultiplier    = "global_multiplier"
)

// EffectDef is what unlocking a node does. Factor multiplies the target's
// multiplier (or the global multiplier).
type EffectDef struct {
	Kind   string  `toml:"kind" yaml:"kind"`
	Target string  `toml:"target" yaml:"target"`
	Factor float64 `toml:"factor" yaml:"factor"`
}

// NodeDef describes an unlock tree node and its requirements.
type NodeDef struct {
	ID          string        `toml:"id" yaml:"id"`
	Name        string        `toml:"name" yaml:"name"`
	Description string        `toml:"description" yaml:"description"`
	Icon        string        `toml:"icon" yaml:"icon"`
	Cost        bignum.Number `toml:"cost" yaml:"cost"`
	Tier        int32         `toml:"tier" yaml:"tier"`
	Requires    []string      `toml:"requires" yaml:"requires"`
	Effect      EffectDef     `toml:"effect" yaml:"effect"`
}

// RuleDef describes an automation rule and the action it performs.
type RuleDef struct {
	ID          string        `toml:"id" yaml:"id"`
	Name        string        `toml:"name" yaml:"name"`
	Trigger     string        `toml:"trigger" yaml:"trigger"`
	Interval    float64       `toml:"interval" yaml:"interval"`
	Threshold   bignum.Number `toml:"threshold" yaml:"threshold"`
	MaxTriggers int64         `toml:"max_triggers" yaml:"max_triggers"`
	Latch       bool          `toml:"latch" yaml:"latch"`
	Disabled    bool          `toml:"disabled" yaml:"disabled"`
	Action      string        `toml:"action" yaml:"action"`
}

// OfflineDef overrides the offline settings from configuration. Nil fields
// fall back to the configured values.
type OfflineDef struct {
	Efficiency *float64 `toml:"efficiency" yaml:"efficiency"`
	MaxHours   *float64 `toml:"max_hours" yaml:"max_hours"`
}

// Resolve returns the effective offline settings given configured defaults.
func (o OfflineDef) Resolve(efficiency, maxHours float64) (float64, float64) {
	if o.Efficiency != nil {
		efficiency = *o.Efficiency
	}
	if o.MaxHours != nil {
		maxHours = *o.MaxHours
	}
	return efficiency, maxHours
}

// ActionKind is what an automation rule does when it fires.
type ActionKind string

// Rule actions.
const (
	ActionBuy      ActionKind = "buy"
	ActionUnlock   ActionKind = "unlock"
	ActionPrestige ActionKind = "prestige"
)

// Action is a parsed rule action such as "buy:cursor".
type Action struct {
	Kind   ActionKind
	Target string
}

// String returns the action in its "kind:target" form.
func (a Action) String() string {
	if a.Target == "" {
		return string(a.Kind)
	}
	return string(a.Kind) + ":" + a.Target
}

// ParseAction parses "buy:<generator>", "unlock:<node>" or "prestige".
func ParseAction(s string) (Action, error) {
	kind, target, _ := strings.Cut(strings.TrimSpace(s), ":")
	switch ActionKind(kind) {
	case ActionBuy, ActionUnlock:
		if target == "" {
			return Action{}, fmt.Errorf("%w: %q needs a target", ErrBadAction, s)
		}
		return Action{Kind: ActionKind(kind), Target: target}, nil
	case ActionPrestige:
		if target != "" {
			return Action{}, fmt.Errorf("%w: %q takes no target", ErrBadAction, s)
		}
		return Action{Kind: ActionPrestige}, nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrBadAction, s)
	}
}

// Generator returns the generator definition with the given id.
func (d *Definition) Generator(id string) (GeneratorDef, bool) {
	for _, g := range d.Generators {
		if g.ID == id {
			return g, true
		}
	}
	return GeneratorDef{}, false
}

// Node returns the node definition with the given id.
func (d *Definition) Node(id string) (NodeDef, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeDef{}, false
}
