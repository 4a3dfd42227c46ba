package tui

import (
	"fmt"
	"time"

	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/events"
)

// MsgTick advances the session to Time.
type MsgTick struct {
	Time time.Time
}

// maxMessages is how many lines the message log keeps.
const maxMessages = 5

// Log is the bounded list of recent notifications shown under the panes.
// It is shared by pointer so bus listeners and model copies see one log.
type Log struct {
	lines []logLine
}

type logLine struct {
	text string
	err  bool
}

// Add appends an informational line.
func (l *Log) Add(format string, args ...any) {
	l.push(logLine{text: fmt.Sprintf(format, args...)})
}

// Error appends an error line.
func (l *Log) Error(err error) {
	l.push(logLine{text: err.Error(), err: true})
}

func (l *Log) push(line logLine) {
	l.lines = append(l.lines, line)
	if len(l.lines) > maxMessages {
		l.lines = l.lines[len(l.lines)-maxMessages:]
	}
}

// Lines returns the logged text, oldest first.
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	for i, line := range l.lines {
		out[i] = line.text
	}
	return out
}

// eventText describes a core notification in one line.
func eventText(e events.Event, style bignum.Style) string {
	switch e.Kind {
	case events.KindGeneratorPurchased:
		return fmt.Sprintf("+ bought %s for %s", e.Subject, e.Value.Format(style))
	case events.KindNodeUnlocked:
		return fmt.Sprintf("◆ unlocked %s", e.Subject)
	case events.KindNodeLocked:
		return fmt.Sprintf("◇ locked %s", e.Subject)
	case events.KindRuleTriggered:
		return fmt.Sprintf("↻ rule %s fired", e.Subject)
	case events.KindPrestigePerformed:
		return fmt.Sprintf("★ %s +%s points", e.Subject, e.Value.Format(style))
	case events.KindMilestoneAchieved:
		return fmt.Sprintf("✓ milestone %s", e.Subject)
	case events.KindOfflineProgress:
		return fmt.Sprintf("☾ offline progress +%s", e.Value.Format(style))
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.Subject)
	}
}
