package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// renderPane renders the rows of the focused pane.
func (m AppModel) renderPane() string {
	var rows []string
	switch m.Pane {
	case PaneGenerators:
		rows = m.generatorRows()
	case PaneNodes:
		rows = m.nodeRows()
	case PaneRules:
		rows = m.ruleRows()
	}
	if len(rows) == 0 {
		return styleRowDim.Render("  (nothing here)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// row prefixes text with the selection indicator when i is under the cursor
// and applies style otherwise.
func (m AppModel) row(i int, text string, style lipgloss.Style) string {
	if i == m.Cursors[m.Pane] {
		return styleSelectionIndicator.Render(selectionIndicator) + " " + styleRowSelected.Render(text)
	}
	return "  " + style.Render(text)
}

func (m AppModel) generatorRows() []string {
	wallet := m.Session.Balance()
	gens := m.Session.Calculator().Generators()
	rows := make([]string, 0, len(gens))
	for i, g := range gens {
		cost, err := m.Session.GeneratorCost(g.ID)
		if err != nil {
			continue
		}
		name := g.Name
		if name == "" {
			name = g.ID
		}
		text := fmt.Sprintf("%-16s x%-6s +%-10s next %s",
			name, humanize.Comma(g.Count), g.EffectiveRate().Format(m.Style)+"/s", cost.Format(m.Style))
		style := styleRowNormal
		if wallet.GreaterOrEqual(cost) {
			style = styleRowReady
		}
		rows = append(rows, m.row(i, text, style))
	}
	return rows
}

func (m AppModel) nodeRows() []string {
	tree := m.Session.Tree()
	wallet := m.Session.Balance()
	nodes := tree.Nodes()
	rows := make([]string, 0, len(nodes))
	for i, n := range nodes {
		icon, style := iconLocked, styleRowDim
		switch {
		case n.Unlocked:
			icon, style = iconUnlocked, styleRowReady
		case tree.CanUnlock(n.ID, wallet):
			icon, style = iconAvailable, styleRowNormal
		}
		name := n.Name
		if name == "" {
			name = n.ID
		}
		text := fmt.Sprintf("%s %-18s %-10s", icon, name, n.Cost.Format(m.Style))
		if reqs := tree.Requirements(n.ID); len(reqs) > 0 && !n.Unlocked {
			text += " needs " + strings.Join(reqs, ", ")
		}
		rows = append(rows, m.row(i, text, style))
	}
	return rows
}

func (m AppModel) ruleRows() []string {
	rules := m.Session.Automation().Rules()
	rows := make([]string, 0, len(rules))
	for i, r := range rules {
		icon, style := iconRuleOn, styleRowRule
		if !r.Enabled || r.Exhausted() {
			icon, style = iconRuleOff, styleRowDim
		}
		fired := humanize.Comma(r.TriggerCount)
		if r.MaxTriggers > 0 {
			fired += "/" + humanize.Comma(r.MaxTriggers)
		}
		text := fmt.Sprintf("%s %-18s %-14s fired %s", icon, r.ID, m.ruleWhen(r.Interval, r.Threshold.Format(m.Style), r.Trigger.String()), fired)
		rows = append(rows, m.row(i, text, style))
	}
	return rows
}

// ruleWhen describes when a rule fires, e.g. "every 30s" or "at 500".
func (m AppModel) ruleWhen(interval float64, threshold, trigger string) string {
	switch trigger {
	case "interval":
		return fmt.Sprintf("every %gs", interval)
	case "threshold":
		return "at " + threshold
	default:
		return trigger
	}
}
