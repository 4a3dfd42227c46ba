package balance

import (
	"fmt"

	"github.com/papapumpkin/idlecore/internal/automation"
	"github.com/papapumpkin/idlecore/internal/unlock"
)

// Validate checks a definition for structural correctness: required fields,
// unique IDs, resolvable references, acyclic node requirements and sane
// numeric bounds. It returns every problem found.
func Validate(def *Definition) []ValidationError {
	var errs []ValidationError
	add := func(cat ValidationCategory, section, id, field string, err error) {
		errs = append(errs, ValidationError{Category: cat, Section: section, ID: id, Field: field, Err: err})
	}

	if def.Name == "" {
		add(ValCatMissingField, "", "", "name", fmt.Errorf("%w: name", ErrMissingField))
	}
	if len(def.Generators) == 0 {
		add(ValCatMissingField, "generators", "", "generators", fmt.Errorf("%w: at least one generator", ErrMissingField))
	}

	gens := make(map[string]bool)
	for _, g := range def.Generators {
		if g.ID == "" {
			add(ValCatMissingField, "generators", "", "id", fmt.Errorf("%w: id", ErrMissingField))
			continue
		}
		if gens[g.ID] {
			add(ValCatDuplicateID, "generators", g.ID, "id", fmt.Errorf("%w: %q", ErrDuplicateID, g.ID))
		}
		gens[g.ID] = true
		if g.BaseRate.Sign() <= 0 {
			add(ValCatBoundsViolation, "generators", g.ID, "base_rate", fmt.Errorf("%w: base_rate must be > 0, got %s", ErrBounds, g.BaseRate))
		}
		if g.BaseCost.Sign() < 0 {
			add(ValCatBoundsViolation, "generators", g.ID, "base_cost", fmt.Errorf("%w: base_cost must be >= 0, got %s", ErrBounds, g.BaseCost))
		}
		if g.CostGrowth < 1 {
			add(ValCatBoundsViolation, "generators", g.ID, "cost_growth", fmt.Errorf("%w: cost_growth must be >= 1, got %v", ErrBounds, g.CostGrowth))
		}
		if g.StartCount < 0 {
			add(ValCatBoundsViolation, "generators", g.ID, "start_count", fmt.Errorf("%w: start_count must be >= 0, got %d", ErrBounds, g.StartCount))
		}
		if g.Multiplier < 0 {
			add(ValCatBoundsViolation, "generators", g.ID, "multiplier", fmt.Errorf("%w: multiplier must be >= 0, got %v", ErrBounds, g.Multiplier))
		}
	}

	milestones := make(map[string]bool)
	for _, m := range def.Milestones {
		if m.ID == "" {
			add(ValCatMissingField, "milestones", "", "id", fmt.Errorf("%w: id", ErrMissingField))
			continue
		}
		if milestones[m.ID] {
			add(ValCatDuplicateID, "milestones", m.ID, "id", fmt.Errorf("%w: %q", ErrDuplicateID, m.ID))
		}
		milestones[m.ID] = true
		if m.Threshold.Sign() <= 0 {
			add(ValCatBoundsViolation, "milestones", m.ID, "threshold", fmt.Errorf("%w: threshold must be > 0", ErrBounds))
		}
		if m.Reward < 0 {
			add(ValCatBoundsViolation, "milestones", m.ID, "reward", fmt.Errorf("%w: reward must be >= 0, got %v", ErrBounds, m.Reward))
		}
	}

	if def.Prestige.Threshold.Sign() < 0 {
		add(ValCatBoundsViolation, "prestige", "", "threshold", fmt.Errorf("%w: threshold must be >= 0", ErrBounds))
	}
	if def.Prestige.ScalingExponent <= 0 {
		add(ValCatBoundsViolation, "prestige", "", "scaling_exponent", fmt.Errorf("%w: scaling_exponent must be > 0, got %v", ErrBounds, def.Prestige.ScalingExponent))
	}

	errs = append(errs, validateNodes(def, gens)...)
	errs = append(errs, validateRules(def, gens)...)

	if eff := def.Offline.Efficiency; eff != nil && *eff < 0 {
		add(ValCatBoundsViolation, "offline", "", "efficiency", fmt.Errorf("%w: efficiency must be >= 0, got %v", ErrBounds, *eff))
	}
	if mh := def.Offline.MaxHours; mh != nil && *mh < 0 {
		add(ValCatBoundsViolation, "offline", "", "max_hours", fmt.Errorf("%w: max_hours must be >= 0, got %v", ErrBounds, *mh))
	}
	return errs
}

// validateNodes checks node fields and builds a scratch unlock tree so the
// requirement graph is held to the same acyclicity rule a session enforces.
func validateNodes(def *Definition, gens map[string]bool) []ValidationError {
	var errs []ValidationError
	add := func(cat ValidationCategory, id, field string, err error) {
		errs = append(errs, ValidationError{Category: cat, Section: "nodes", ID: id, Field: field, Err: err})
	}

	tree := unlock.NewTree(nil)
	for _, n := range def.Nodes {
		if n.ID == "" {
			add(ValCatMissingField, "", "id", fmt.Errorf("%w: id", ErrMissingField))
			continue
		}
		if !tree.AddNode(unlock.Node{ID: n.ID, Tier: n.Tier, Cost: n.Cost}) {
			add(ValCatDuplicateID, n.ID, "id", fmt.Errorf("%w: %q", ErrDuplicateID, n.ID))
		}
		if n.Cost.Sign() < 0 {
			add(ValCatBoundsViolation, n.ID, "cost", fmt.Errorf("%w: cost must be >= 0", ErrBounds))
		}
		switch n.Effect.Kind {
		case EffectNone:
		case EffectGeneratorMultiplier:
			if !gens[n.Effect.Target] {
				add(ValCatUnknownRef, n.ID, "effect.target", fmt.Errorf("%w: generator %q", ErrUnknownRef, n.Effect.Target))
			}
		case EffectGlobalMultiplier:
		default:
			add(ValCatInvalidValue, n.ID, "effect.kind", fmt.Errorf("%w: %q", ErrBadEffect, n.Effect.Kind))
		}
		if n.Effect.Factor < 0 {
			add(ValCatBoundsViolation, n.ID, "effect.factor", fmt.Errorf("%w: factor must be >= 0, got %v", ErrBounds, n.Effect.Factor))
		}
	}

	for _, n := range def.Nodes {
		for _, req := range n.Requires {
			if tree.Node(req) == nil {
				add(ValCatUnknownRef, n.ID, "requires", fmt.Errorf("%w: node %q", ErrUnknownRef, req))
				continue
			}
			if !tree.AddRequirement(n.ID, req) {
				add(ValCatCycle, n.ID, "requires", fmt.Errorf("%w: %q requires %q", ErrCycle, n.ID, req))
			}
		}
	}
	return errs
}

func validateRules(def *Definition, gens map[string]bool) []ValidationError {
	var errs []ValidationError
	add := func(cat ValidationCategory, id, field string, err error) {
		errs = append(errs, ValidationError{Category: cat, Section: "rules", ID: id, Field: field, Err: err})
	}

	nodes := make(map[string]bool, len(def.Nodes))
	for _, n := range def.Nodes {
		nodes[n.ID] = true
	}

	seen := make(map[string]bool)
	for _, r := range def.Rules {
		if r.ID == "" {
			add(ValCatMissingField, "", "id", fmt.Errorf("%w: id", ErrMissingField))
			continue
		}
		if seen[r.ID] {
			add(ValCatDuplicateID, r.ID, "id", fmt.Errorf("%w: %q", ErrDuplicateID, r.ID))
		}
		seen[r.ID] = true

		trigger, ok := automation.ParseTrigger(r.Trigger)
		if !ok {
			add(ValCatInvalidValue, r.ID, "trigger", fmt.Errorf("%w: %q", ErrBadTrigger, r.Trigger))
		} else if trigger == automation.TriggerInterval && r.Interval <= 0 {
			add(ValCatBoundsViolation, r.ID, "interval", fmt.Errorf("%w: interval must be > 0, got %v", ErrBounds, r.Interval))
		}
		if r.MaxTriggers < 0 {
			add(ValCatBoundsViolation, r.ID, "max_triggers", fmt.Errorf("%w: max_triggers must be >= 0, got %d", ErrBounds, r.MaxTriggers))
		}

		action, err := ParseAction(r.Action)
		if err != nil {
			add(ValCatInvalidValue, r.ID, "action", err)
			continue
		}
		switch action.Kind {
		case ActionBuy:
			if !gens[action.Target] {
				add(ValCatUnknownRef, r.ID, "action", fmt.Errorf("%w: generator %q", ErrUnknownRef, action.Target))
			}
		case ActionUnlock:
			if !nodes[action.Target] {
				add(ValCatUnknownRef, r.ID, "action", fmt.Errorf("%w: node %q", ErrUnknownRef, action.Target))
			}
		case ActionPrestige:
			if !def.Prestige.Enabled() {
				add(ValCatUnknownRef, r.ID, "action", fmt.Errorf("%w: prestige is not configured", ErrUnknownRef))
			}
		}
	}
	return errs
}
