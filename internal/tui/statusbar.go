package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/idlecore/internal/bignum"
)

// StatusBar renders the persistent top bar with the wallet, production rate,
// prestige points and play time.
type StatusBar struct {
	Name       string
	Currency   string
	Balance    bignum.Number
	Rate       bignum.Number
	Points     bignum.Number
	Prestige   bool // definition has a prestige layer
	Automation bool // automation master switch
	PlayTime   float64
	Style      bignum.Style
	Width      int
}

// statusSegment is a styled segment of the status bar with a drop priority.
// Lower priority values are dropped first when the terminal is too narrow.
type statusSegment struct {
	text     string
	priority int
}

// View renders the status bar as a single line. Narrow terminals lose the
// play time, then the points, then the rate.
func (s StatusBar) View() string {
	const barPadding = 2
	innerWidth := max(s.Width-barPadding, 0)

	barBg := lipgloss.NewStyle().Background(colorSurface)
	left := styleStatusLabel.Background(colorSurface).Render("idlecore") +
		barBg.Render(" ") + styleStatusValue.Background(colorSurface).Render(s.Name)
	if !s.Automation {
		left += barBg.Render(" ") + styleMessageError.Background(colorSurface).Render("AUTO OFF")
	}

	segments := s.segments()
	leftWidth := lipgloss.Width(left)
	right := joinSegments(segments)
	for lipgloss.Width(right)+leftWidth+1 > innerWidth && len(segments) > 1 {
		segments = dropLowest(segments)
		right = joinSegments(segments)
	}

	gap := max(innerWidth-leftWidth-lipgloss.Width(right), 1)
	line := left + barBg.Render(strings.Repeat(" ", gap)) + right
	return styleStatusBar.Width(s.Width).Render(line)
}

func (s StatusBar) segments() []statusSegment {
	bg := colorSurface
	segs := []statusSegment{
		{styleStatusValue.Background(bg).Render(s.Balance.Format(s.Style) + " " + s.Currency), 4},
		{styleStatusValue.Background(bg).Render("+" + s.Rate.Format(s.Style) + "/s"), 3},
	}
	if s.Prestige {
		segs = append(segs, statusSegment{styleStatusPoints.Background(bg).Render("★ " + s.Points.Format(s.Style)), 2})
	}
	elapsed := time.Duration(s.PlayTime * float64(time.Second)).Round(time.Second)
	segs = append(segs, statusSegment{styleStatusValue.Background(bg).Render(elapsed.String()), 1})
	return segs
}

// dropLowest removes the segment with the lowest priority.
func dropLowest(segs []statusSegment) []statusSegment {
	low := 0
	for i, s := range segs {
		if s.priority < segs[low].priority {
			low = i
		}
	}
	out := make([]statusSegment, 0, len(segs)-1)
	out = append(out, segs[:low]...)
	return append(out, segs[low+1:]...)
}

func joinSegments(segs []statusSegment) string {
	sep := lipgloss.NewStyle().Background(colorSurface).Foreground(colorMuted).Render(" │ ")
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.text
	}
	return strings.Join(parts, sep)
}
