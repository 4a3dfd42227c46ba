package game

import (
	"github.com/papapumpkin/idlecore/internal/automation"
	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/idle"
	"github.com/papapumpkin/idlecore/internal/prestige"
	"github.com/papapumpkin/idlecore/internal/unlock"
)

// MilestoneState is the persistable form of a milestone's progress.
type MilestoneState struct {
	ID           string `toml:"id" json:"id"`
	Achieved     bool   `toml:"achieved" json:"achieved"`
	AchievedTime int64  `toml:"achieved_time" json:"achieved_time"`
}

// State is everything needed to resume a session against its definition.
type State struct {
	Definition string        `toml:"definition" json:"definition"`
	Wallet     bignum.Number `toml:"wallet" json:"wallet"`
	Lifetime   bignum.Number `toml:"lifetime" json:"lifetime"`
	AllTime    bignum.Number `toml:"all_time" json:"all_time"`
	PlayTime   float64       `toml:"play_time" json:"play_time"`

	Calculator idle.State       `toml:"calculator" json:"calculator"`
	Prestige   prestige.State   `toml:"prestige" json:"prestige"`
	Tree       unlock.State     `toml:"tree" json:"tree"`
	Automation automation.State `toml:"automation" json:"automation"`
	Milestones []MilestoneState `toml:"milestones" json:"milestones"`
}

// State exports the session's progress.
func (s *Session) State() State {
	st := State{
		Definition: s.def.Name,
		Wallet:     s.wallet,
		Lifetime:   s.lifetime,
		AllTime:    s.allTime,
		PlayTime:   s.playTime,
		Calculator: s.calc.State(),
		Tree:       s.tree.State(),
		Automation: s.auto.State(),
	}
	if s.layer != nil {
		st.Prestige = s.layer.State()
	}
	for _, m := range s.milestones {
		st.Milestones = append(st.Milestones, MilestoneState{ID: m.ID, Achieved: m.Achieved, AchievedTime: m.AchievedTime})
	}
	return st
}

// Restore rebuilds the session from its definition and overlays st.
// Tunables (rates, costs, thresholds, edges) come from the definition; only
// progress is taken from st, and entries the definition no longer has are
// ignored.
func (s *Session) Restore(st State) {
	s.build()
	s.apply(st)
}

func (s *Session) apply(st State) {
	s.wallet = st.Wallet
	s.lifetime = st.Lifetime
	s.allTime = st.AllTime
	s.playTime = st.PlayTime

	s.calc.SetSnapshotTime(st.Calculator.SnapshotTime)
	for _, gs := range st.Calculator.Generators {
		if g := s.calc.Generator(gs.ID); g != nil {
			g.Count = gs.Count
			g.Enabled = gs.Enabled
		}
	}

	if s.layer != nil {
		s.layer.SetPoints(st.Prestige.Points)
		s.layer.SetTimesPrestiged(st.Prestige.TimesPrestiged)
	}

	for _, ns := range st.Tree.Nodes {
		if n := s.tree.Node(ns.ID); n != nil {
			n.Unlocked = ns.Unlocked
			n.UnlockTime = ns.UnlockTime
		}
	}

	s.auto.SetEnabled(st.Automation.Enabled)
	for _, rs := range st.Automation.Rules {
		if r := s.auto.Rule(rs.ID); r != nil {
			r.Enabled = rs.Enabled
			r.TriggerCount = rs.TriggerCount
			r.AccumulatedTime = rs.AccumulatedTime
			r.Latched = rs.Latched
		}
	}

	achieved := make(map[string]MilestoneState, len(st.Milestones))
	for _, ms := range st.Milestones {
		achieved[ms.ID] = ms
	}
	for _, m := range s.milestones {
		if ms, ok := achieved[m.ID]; ok && ms.Achieved {
			m.Achieved = true
			m.AchievedTime = ms.AchievedTime
		}
	}

	s.recompute()
}
