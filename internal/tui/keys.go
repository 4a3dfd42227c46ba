package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextPane   key.Binding
	Act        key.Binding
	BuyMax     key.Binding
	Prestige   key.Binding
	Automation key.Binding
	Save       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybinding configuration.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "pane"),
		),
		Act: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "buy"),
		),
		BuyMax: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "buy max"),
		),
		Prestige: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prestige"),
		),
		Automation: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "automation"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// forPane returns a copy of km with the act binding labelled for pane and
// bindings that do nothing there disabled.
func (km KeyMap) forPane(p Pane) KeyMap {
	switch p {
	case PaneNodes:
		km.Act.SetHelp("enter", "unlock")
		km.BuyMax.SetEnabled(false)
	case PaneRules:
		km.Act.SetHelp("enter", "toggle")
		km.BuyMax.SetEnabled(false)
	}
	return km
}
