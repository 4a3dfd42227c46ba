package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/idlecore/internal/ansi"
	"github.com/papapumpkin/idlecore/internal/balance"
	"github.com/papapumpkin/idlecore/internal/game"
	"github.com/papapumpkin/idlecore/internal/idle"
	"github.com/papapumpkin/idlecore/internal/store"
)

// ValidateResult prints the outcome of validating a definitions file.
func (p *Printer) ValidateResult(name string, def *balance.Definition, errs []balance.ValidationError) {
	if len(errs) == 0 {
		p.printf(ansi.Green+ansi.Bold+"✓ definitions %q"+ansi.Reset+" %d generator(s), %d node(s), %d rule(s), no errors\n",
			name, len(def.Generators), len(def.Nodes), len(def.Rules))
		return
	}
	p.printf(ansi.Red+ansi.Bold+"✗ definitions %q"+ansi.Reset+" %d error(s):\n", name, len(errs))
	for _, e := range errs {
		p.printf("  "+ansi.Red+"• "+ansi.Reset+"%s "+ansi.Dim+"[%s]"+ansi.Reset+"\n", e.Error(), e.Category)
	}
}

// Summary prints a boxed overview of a session.
func (p *Printer) Summary(s *game.Session) {
	def := s.Definition()
	p.printf("\n"+ansi.Dim+"┌─ "+ansi.Reset+ansi.Bold+"%s"+ansi.Reset+ansi.Dim+" ── played %s ─────────────"+ansi.Reset+"\n",
		def.Name, playTime(s.PlayTime()))
	row := func(label, format string, args ...any) {
		p.printf(ansi.Dim+"│"+ansi.Reset+"  %-12s "+format+"\n", append([]any{label + ":"}, args...)...)
	}
	row("balance", ansi.Bold+"%s"+ansi.Reset+" %s", p.num(s.Balance()), def.Currency)
	row("rate", "+%s/s", p.num(s.Rate()))
	row("this run", "%s", p.num(s.Lifetime()))
	row("all time", "%s", p.num(s.AllTime()))

	for _, g := range s.Calculator().Generators() {
		cost, _ := s.GeneratorCost(g.ID)
		state := ""
		if !g.Enabled {
			state = ansi.Dim + " (disabled)" + ansi.Reset
		}
		row("  "+g.ID, "x%s  +%s/s  next %s%s", humanize.Comma(g.Count), p.num(g.EffectiveRate()), p.num(cost), state)
	}

	tree := s.Tree()
	if tree.Len() > 0 {
		row("nodes", "%d/%d (%.0f%%)", len(tree.Unlocked()), tree.Len(), tree.Progress()*100)
	}
	if ms := s.Milestones(); len(ms) > 0 {
		done := 0
		for _, m := range ms {
			if m.Achieved {
				done++
			}
		}
		row("milestones", "%d/%d", done, len(ms))
	}
	if layer := s.PrestigeLayer(); layer != nil {
		row("prestige", "%s points, %s, bonus x%.2f, next +%s",
			p.num(layer.Points()), times(layer.TimesPrestiged()), layer.BonusMultiplier(), p.num(s.PrestigePreview()))
	}
	if rules := s.Automation().Rules(); len(rules) > 0 {
		fired := int64(0)
		for _, r := range rules {
			fired += r.TriggerCount
		}
		row("automation", "%d rule(s), %s trigger(s)", len(rules), humanize.Comma(fired))
	}
	p.println(ansi.Dim + "└──────────────────────────────────────────" + ansi.Reset)
}

func times(n int64) string {
	switch n {
	case 0:
		return "never prestiged"
	case 1:
		return "prestiged once"
	default:
		return "prestiged " + humanize.Comma(n) + " times"
	}
}

// Plan prints what a definition offers: generator prices, the order nodes
// can be unlocked in, prestige and automation.
func (p *Printer) Plan(s *game.Session) error {
	def := s.Definition()
	p.printf("\n"+ansi.Bold+ansi.Cyan+"plan: %s"+ansi.Reset+"\n", def.Name)

	p.println(ansi.Bold + "generators:" + ansi.Reset)
	for _, g := range def.Generators {
		cost, _ := s.GeneratorCost(g.ID)
		p.printf("  %-16s base %s/s  next %s  growth x%.2f\n", g.ID, p.num(g.BaseRate), p.num(cost), g.CostGrowth)
	}

	order, err := s.Tree().UnlockOrder()
	if err != nil {
		return fmt.Errorf("unlock order: %w", err)
	}
	if len(order) > 0 {
		p.println(ansi.Bold + "unlock order:" + ansi.Reset)
		for i, id := range order {
			n := s.Tree().Node(id)
			var reqs string
			if r := s.Tree().Requirements(id); len(r) > 0 {
				reqs = ansi.Dim + " requires:[" + strings.Join(r, ",") + "]" + ansi.Reset
			}
			p.printf("  %2d. "+ansi.Green+"%-16s"+ansi.Reset+" tier %d  cost %s%s\n", i+1, id, n.Tier, p.num(n.Cost), reqs)
		}
	}

	if def.Prestige.Enabled() {
		p.println(ansi.Bold + "prestige:" + ansi.Reset)
		p.printf("  %-16s threshold %s  exponent %.2f\n", def.Prestige.ID, p.num(def.Prestige.Threshold), def.Prestige.ScalingExponent)
	}

	if len(def.Rules) > 0 {
		p.println(ansi.Bold + "automation:" + ansi.Reset)
		for _, r := range def.Rules {
			when := r.Trigger
			switch strings.ToLower(r.Trigger) {
			case "interval":
				when = fmt.Sprintf("every %gs", r.Interval)
			case "threshold":
				when = "at " + p.num(r.Threshold)
			}
			p.printf("  %-16s %-14s → %s\n", r.ID, when, r.Action)
		}
	}
	p.println("")
	return nil
}

// Offline prints an offline catch-up report.
func (p *Printer) Offline(r idle.OfflineReport, currency string) {
	away := time.Duration(r.Elapsed) * time.Second
	p.printf(ansi.Cyan+ansi.Bold+"☾ away %s"+ansi.Reset+"\n", away)
	if r.Clamped {
		p.printf(ansi.Yellow+"  capped at %s"+ansi.Reset+"\n", time.Duration(r.Credited)*time.Second)
	}
	p.printf("  earned %s %s at %.0f%% efficiency\n", p.num(r.Produced), currency, r.Efficiency*100)
}

// Saves lists save slots with their age relative to now.
func (p *Printer) Saves(infos []store.SlotInfo, now time.Time) {
	if len(infos) == 0 {
		p.println(ansi.Dim + "no saves" + ansi.Reset)
		return
	}
	for _, si := range infos {
		p.printf("  "+ansi.Bold+"%-8s"+ansi.Reset+" %-16s %-12s all time %-10s played %-8s "+ansi.Dim+"%s"+ansi.Reset+"\n",
			short(si.ID), si.Name, si.Definition, p.num(si.AllTime), playTime(si.PlayTime),
			humanize.RelTime(si.SavedAt, now, "ago", "from now"))
	}
}
