// Package game assembles the progression core into a playable economy. A
// Session owns a wallet, the generators, milestones, prestige layer, unlock
// tree and automation rules described by a balance.Definition, and applies
// purchases, unlocks and resets to them.
package game

import (
	"fmt"

	"github.com/papapumpkin/idlecore/internal/automation"
	"github.com/papapumpkin/idlecore/internal/balance"
	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/events"
	"github.com/papapumpkin/idlecore/internal/idle"
	"github.com/papapumpkin/idlecore/internal/prestige"
	"github.com/papapumpkin/idlecore/internal/unlock"
)

// Session is one player's progress through a definition. Like the core
// components it wraps, it is not safe for concurrent use.
type Session struct {
	def *balance.Definition
	clk clock.Clock

	calc       *idle.Calculator
	layer      *prestige.Prestige // nil when the definition has no prestige
	tree       *unlock.Tree
	auto       *automation.Automation
	milestones []*idle.Milestone

	wallet   bignum.Number
	lifetime bignum.Number // earned since the last prestige
	allTime  bignum.Number
	playTime float64

	events events.Bus
}

// NewSession validates def and starts a fresh run of it. A nil clk uses the
// system clock.
func NewSession(def *balance.Definition, clk clock.Clock) (*Session, error) {
	if verrs := balance.Validate(def); len(verrs) > 0 {
		return nil, fmt.Errorf("game: invalid definition: %w", balance.Join(verrs))
	}
	s := &Session{def: def, clk: clock.OrReal(clk)}
	s.build()
	s.calc.TakeSnapshot()
	return s, nil
}

// build creates fresh core components from the definition and forwards their
// events to the session bus.
func (s *Session) build() {
	def := s.def

	s.calc = idle.New(s.clk)
	for _, g := range def.Generators {
		gen := idle.NewGenerator(g.ID, g.BaseRate, g.StartCount)
		gen.Name = g.Name
		gen.Multiplier = g.Multiplier
		s.calc.AddGenerator(gen)
	}

	s.milestones = s.milestones[:0]
	for _, m := range def.Milestones {
		s.milestones = append(s.milestones, &idle.Milestone{
			ID:               m.ID,
			Name:             m.Name,
			Description:      m.Description,
			Icon:             m.Icon,
			Threshold:        m.Threshold,
			RewardMultiplier: m.Reward,
		})
	}

	s.layer = nil
	if def.Prestige.Enabled() {
		s.layer = prestige.New(prestige.Config{
			ID:              def.Prestige.ID,
			Name:            def.Prestige.Name,
			Threshold:       def.Prestige.Threshold,
			ScalingExponent: def.Prestige.ScalingExponent,
		})
		events.Forward(s.layer.Events(), &s.events)
	}

	s.tree = unlock.NewTree(s.clk)
	for _, n := range def.Nodes {
		s.tree.AddNode(unlock.Node{
			ID:          n.ID,
			Name:        n.Name,
			Description: n.Description,
			Icon:        n.Icon,
			Cost:        n.Cost,
			Tier:        n.Tier,
		})
	}
	for _, n := range def.Nodes {
		for _, req := range n.Requires {
			s.tree.AddRequirement(n.ID, req)
		}
	}
	events.Forward(s.tree.Events(), &s.events)

	s.auto = automation.New()
	for _, rd := range def.Rules {
		trigger, _ := automation.ParseTrigger(rd.Trigger)
		r := automation.NewRule(rd.ID, trigger)
		r.Name = rd.Name
		r.Interval = rd.Interval
		r.Threshold = rd.Threshold
		r.MaxTriggers = rd.MaxTriggers
		r.Latch = rd.Latch
		r.Enabled = !rd.Disabled
		s.auto.AddRule(r)

		action, _ := balance.ParseAction(rd.Action)
		s.auto.SetCallback(rd.ID, s.actionCallback(action))
	}
	events.Forward(s.auto.Events(), &s.events)

	s.recompute()
}

// actionCallback adapts a rule action to an automation callback. A failed
// action (e.g. an unaffordable purchase) stops interval catch-up.
func (s *Session) actionCallback(a balance.Action) automation.Callback {
	return func(*automation.Rule) bool {
		return s.Do(a) == nil
	}
}

// Do performs a single rule action.
func (s *Session) Do(a balance.Action) error {
	switch a.Kind {
	case balance.ActionBuy:
		return s.BuyGenerator(a.Target)
	case balance.ActionUnlock:
		return s.UnlockNode(a.Target)
	case balance.ActionPrestige:
		_, err := s.Prestige()
		return err
	default:
		return fmt.Errorf("game: %w: %q", balance.ErrBadAction, a.Kind)
	}
}

// Tick advances the run by dt seconds: production is credited, milestones
// are checked, then automation rules run against the updated wallet. It
// returns the amount produced.
func (s *Session) Tick(dt float64) bignum.Number {
	if dt <= 0 {
		return bignum.Zero()
	}
	produced := s.calc.Simulate(dt)
	s.earn(produced)
	s.playTime += dt
	s.checkMilestones()
	s.auto.Update(dt, &s.wallet)
	return produced
}

// ApplyOffline credits production for the time since the last snapshot and
// takes a new one.
func (s *Session) ApplyOffline(efficiency, maxHours float64) idle.OfflineReport {
	report := s.calc.SimulateOfflineReport(s.calc.SnapshotTime(), efficiency, maxHours)
	s.calc.TakeSnapshot()
	if report.Produced.IsZero() {
		return report
	}
	s.earn(report.Produced)
	s.events.Emit(events.Event{Kind: events.KindOfflineProgress, Value: report.Produced})
	s.checkMilestones()
	return report
}

// Snapshot records now as the baseline for the next offline credit.
func (s *Session) Snapshot() {
	s.calc.TakeSnapshot()
}

func (s *Session) earn(n bignum.Number) {
	s.wallet.AddInPlace(n)
	s.lifetime.AddInPlace(n)
	s.allTime.AddInPlace(n)
}

// checkMilestones tests every milestone against all-time earnings, so
// achievements survive prestige.
func (s *Session) checkMilestones() {
	now := clock.Unix(s.clk)
	changed := false
	for _, m := range s.milestones {
		if m.Check(s.allTime, now) {
			changed = true
			s.events.Emit(events.Event{Kind: events.KindMilestoneAchieved, Subject: m.ID, Value: m.Threshold})
		}
	}
	if changed {
		s.recompute()
	}
}

// recompute derives every multiplier from the definition and current
// progress: generator multipliers from their base value and unlocked node
// effects, the global multiplier from the prestige bonus, achieved
// milestones and global node effects.
func (s *Session) recompute() {
	genMul := make(map[string]float64, len(s.def.Generators))
	for _, g := range s.def.Generators {
		genMul[g.ID] = g.Multiplier
	}
	global := 1.0
	if s.layer != nil {
		global *= s.layer.BonusMultiplier()
	}
	for _, m := range s.milestones {
		global *= m.Reward()
	}
	for _, n := range s.def.Nodes {
		node := s.tree.Node(n.ID)
		if node == nil || !node.Unlocked {
			continue
		}
		switch n.Effect.Kind {
		case balance.EffectGeneratorMultiplier:
			genMul[n.Effect.Target] *= n.Effect.Factor
		case balance.EffectGlobalMultiplier:
			global *= n.Effect.Factor
		}
	}
	for id, m := range genMul {
		if g := s.calc.Generator(id); g != nil {
			g.Multiplier = m
		}
	}
	s.calc.SetGlobalMultiplier(global)
}

// Reload swaps in a new definition while keeping progress: owned counts,
// unlocks, achievements, prestige points, rule counters and the wallet.
// Entries that no longer exist are dropped.
func (s *Session) Reload(def *balance.Definition) error {
	if verrs := balance.Validate(def); len(verrs) > 0 {
		return fmt.Errorf("game: invalid definition: %w", balance.Join(verrs))
	}
	st := s.State()
	s.def = def
	s.build()
	s.apply(st)
	return nil
}

// Definition returns the active definition.
func (s *Session) Definition() *balance.Definition { return s.def }

// Events returns the bus carrying every notification of the session and its
// components.
func (s *Session) Events() *events.Bus { return &s.events }

// Balance returns the spendable currency.
func (s *Session) Balance() bignum.Number { return s.wallet }

// Lifetime returns the currency earned since the last prestige.
func (s *Session) Lifetime() bignum.Number { return s.lifetime }

// AllTime returns the currency earned across every run.
func (s *Session) AllTime() bignum.Number { return s.allTime }

// PlayTime returns the simulated seconds played across every run.
func (s *Session) PlayTime() float64 { return s.playTime }

// Rate returns the current production per second.
func (s *Session) Rate() bignum.Number { return s.calc.TotalRate() }

// Calculator exposes the production calculator.
func (s *Session) Calculator() *idle.Calculator { return s.calc }

// Tree exposes the unlock tree.
func (s *Session) Tree() *unlock.Tree { return s.tree }

// Automation exposes the automation rules.
func (s *Session) Automation() *automation.Automation { return s.auto }

// PrestigeLayer exposes the prestige layer, or nil when none is configured.
func (s *Session) PrestigeLayer() *prestige.Prestige { return s.layer }

// Milestones returns the milestones in definition order.
func (s *Session) Milestones() []*idle.Milestone {
	out := make([]*idle.Milestone, len(s.milestones))
	copy(out, s.milestones)
	return out
}
