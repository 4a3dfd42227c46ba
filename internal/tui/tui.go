// Package tui is the interactive full-screen view of a session: generators,
// upgrades and automation rules in selectable panes, driven by a real-time
// tick.
package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// NewProgram creates a BubbleTea program for model.
// The program uses the alternate screen buffer for a clean TUI experience.
func NewProgram(model AppModel, opts ...tea.ProgramOption) *Program {
	allOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
	}
	allOpts = append(allOpts, opts...)
	return tea.NewProgram(model, allOpts...)
}

// Run runs model until the user quits and returns the final model.
func Run(model AppModel, opts ...tea.ProgramOption) (AppModel, error) {
	final, err := NewProgram(model, opts...).Run()
	if err != nil {
		return model, fmt.Errorf("TUI error: %w", err)
	}
	if m, ok := final.(AppModel); ok {
		return m, nil
	}
	return model, nil
}

// WithOutput returns a program option that directs TUI output to the given writer.
// Useful for testing or redirecting output.
func WithOutput(w io.Writer) tea.ProgramOption {
	return tea.WithOutput(w)
}
