package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/events"
	"github.com/papapumpkin/idlecore/internal/game"
	"github.com/papapumpkin/idlecore/internal/store"
)

// Pane is one of the selectable lists.
type Pane int

// Panes in tab order.
const (
	PaneGenerators Pane = iota
	PaneNodes
	PaneRules
	paneCount
)

// String returns the pane title.
func (p Pane) String() string {
	switch p {
	case PaneGenerators:
		return "generators"
	case PaneNodes:
		return "upgrades"
	case PaneRules:
		return "automation"
	default:
		return "?"
	}
}

// AppModel is the root BubbleTea model for an interactive session.
type AppModel struct {
	Session *game.Session
	// Store and Slot are optional; without them the save key and autosave
	// are no-ops.
	Store            store.Store
	Slot             *store.Slot
	Keys             KeyMap
	Style            bignum.Style
	TickInterval     time.Duration
	AutosaveInterval time.Duration
	Width            int
	Height           int
	Pane             Pane
	Cursors          [paneCount]int
	Log              *Log
	LastTick         time.Time
	LastSave         time.Time
	Done             bool
}

// NewAppModel creates a model for s and subscribes its message log to the
// session's notifications.
func NewAppModel(s *game.Session, style bignum.Style) AppModel {
	now := time.Now()
	m := AppModel{
		Session:      s,
		Keys:         DefaultKeyMap(),
		Style:        style,
		TickInterval: time.Second,
		Log:          &Log{},
		LastTick:     now,
		LastSave:     now,
	}
	log := m.Log
	s.Events().Subscribe(func(e events.Event) {
		log.Add("%s", eventText(e, style))
	})
	return m
}

// Init starts the tick timer.
func (m AppModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m AppModel) tickCmd() tea.Cmd {
	return tea.Tick(m.TickInterval, func(t time.Time) tea.Msg {
		return MsgTick{Time: t}
	})
}

// Update handles all messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case MsgTick:
		m.advance(msg.Time)
		return m, m.tickCmd()
	}
	return m, nil
}

// advance credits the wall time since the last tick and autosaves when due.
func (m *AppModel) advance(now time.Time) {
	if dt := now.Sub(m.LastTick).Seconds(); dt > 0 {
		m.Session.Tick(dt)
		m.Session.Snapshot()
	}
	m.LastTick = now
	if m.AutosaveInterval > 0 && now.Sub(m.LastSave) >= m.AutosaveInterval {
		m.save(now)
	}
}

// handleKey processes keyboard input.
func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.save(time.Now())
		m.Done = true
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Up):
		m.move(-1)

	case key.Matches(msg, m.Keys.Down):
		m.move(1)

	case key.Matches(msg, m.Keys.NextPane):
		m.Pane = (m.Pane + 1) % paneCount

	case key.Matches(msg, m.Keys.Act):
		m.act()

	case key.Matches(msg, m.Keys.BuyMax):
		m.buyMax()

	case key.Matches(msg, m.Keys.Prestige):
		if _, err := m.Session.Prestige(); err != nil {
			m.Log.Error(err)
		}

	case key.Matches(msg, m.Keys.Automation):
		a := m.Session.Automation()
		a.SetEnabled(!a.Enabled())
		if a.Enabled() {
			m.Log.Add("automation on")
		} else {
			m.Log.Add("automation off")
		}

	case key.Matches(msg, m.Keys.Save):
		m.save(time.Now())
	}
	return m, nil
}

// move shifts the cursor of the focused pane by delta, clamped to its rows.
func (m *AppModel) move(delta int) {
	n := m.rowCount(m.Pane)
	if n == 0 {
		return
	}
	c := m.Cursors[m.Pane] + delta
	m.Cursors[m.Pane] = min(max(c, 0), n-1)
}

func (m AppModel) rowCount(p Pane) int {
	switch p {
	case PaneGenerators:
		return len(m.Session.Calculator().Generators())
	case PaneNodes:
		return m.Session.Tree().Len()
	case PaneRules:
		return len(m.Session.Automation().Rules())
	default:
		return 0
	}
}

// selected returns the id under the cursor of the focused pane.
func (m AppModel) selected() (string, bool) {
	c := m.Cursors[m.Pane]
	switch m.Pane {
	case PaneGenerators:
		if gs := m.Session.Calculator().Generators(); c < len(gs) {
			return gs[c].ID, true
		}
	case PaneNodes:
		if ns := m.Session.Tree().Nodes(); c < len(ns) {
			return ns[c].ID, true
		}
	case PaneRules:
		if rs := m.Session.Automation().Rules(); c < len(rs) {
			return rs[c].ID, true
		}
	}
	return "", false
}

// act buys, unlocks or toggles the selected row.
func (m *AppModel) act() {
	id, ok := m.selected()
	if !ok {
		return
	}
	var err error
	switch m.Pane {
	case PaneGenerators:
		err = m.Session.BuyGenerator(id)
	case PaneNodes:
		err = m.Session.UnlockNode(id)
	case PaneRules:
		a := m.Session.Automation()
		on := !a.Rule(id).Enabled
		a.SetRuleEnabled(id, on)
		if on {
			m.Log.Add("rule %s on", id)
		} else {
			m.Log.Add("rule %s off", id)
		}
	}
	if err != nil {
		m.Log.Error(err)
	}
}

func (m *AppModel) buyMax() {
	id, ok := m.selected()
	if !ok || m.Pane != PaneGenerators {
		return
	}
	n, err := m.Session.BuyMax(id, 0)
	if err != nil {
		m.Log.Error(err)
		return
	}
	if n == 0 {
		m.Log.Add("cannot afford %s", id)
	}
}

// save writes the session to the slot.
func (m *AppModel) save(now time.Time) {
	if m.Store == nil || m.Slot == nil {
		return
	}
	m.LastSave = now
	m.Slot.State = m.Session.State()
	m.Slot.SavedAt = time.Time{}
	if err := m.Store.Save(context.Background(), m.Slot); err != nil {
		m.Log.Error(err)
		return
	}
	m.Log.Add("saved %s", shortID(m.Slot.ID))
}

// View renders the full TUI.
func (m AppModel) View() string {
	if m.Width == 0 {
		return "initializing..."
	}

	sections := []string{
		m.statusBar().View(),
		m.renderTabs(),
		m.renderPane(),
	}
	if len(m.Log.lines) > 0 {
		sep := styleSectionBorder.Width(m.Width).Render("")
		sections = append(sections, sep, m.renderLog())
	}
	footer := Footer{Width: m.Width, Bindings: FooterBindings(m.Keys, m.Pane)}
	sections = append(sections, footer.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AppModel) statusBar() StatusBar {
	def := m.Session.Definition()
	var points bignum.Number
	if layer := m.Session.PrestigeLayer(); layer != nil {
		points = layer.Points()
	}
	return StatusBar{
		Name:       def.Name,
		Currency:   def.Currency,
		Balance:    m.Session.Balance(),
		Rate:       m.Session.Rate(),
		Points:     points,
		Prestige:   def.Prestige.Enabled(),
		Automation: m.Session.Automation().Enabled(),
		PlayTime:   m.Session.PlayTime(),
		Style:      m.Style,
		Width:      m.Width,
	}
}

func (m AppModel) renderTabs() string {
	tabs := make([]string, 0, paneCount)
	for p := range paneCount {
		if p == m.Pane {
			tabs = append(tabs, styleTabActive.Render(p.String()))
		} else {
			tabs = append(tabs, styleTabInactive.Render(p.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m AppModel) renderLog() string {
	lines := make([]string, len(m.Log.lines))
	for i, l := range m.Log.lines {
		if l.err {
			lines[i] = styleMessageError.Render("  " + l.text)
		} else {
			lines[i] = styleMessage.Render("  " + l.text)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
