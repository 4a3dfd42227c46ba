// Package ui renders idlecore's human-facing terminal output: session
// summaries, live status lines, core event notifications, definition
// validation results and save listings. Everything goes to stderr so stdout
// stays free for machine-readable output.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/papapumpkin/idlecore/internal/ansi"
	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/events"
)

// UI is what the real-time runner reports through.
type UI interface {
	Info(msg string)
	Error(msg string)
	Event(e events.Event)
	Status(d StatusData)
	Autosaved(slotID string, at time.Time)
	Reloaded(path string)
	ReloadFailed(path string, err error)
}

var _ UI = (*Printer)(nil)

// Printer writes styled lines to a writer, stderr by default.
type Printer struct {
	w     io.Writer
	style bignum.Style
}

// New returns a Printer writing to stderr with the short number style.
func New() *Printer {
	return &Printer{w: os.Stderr, style: bignum.StyleShort}
}

// NewWriter returns a Printer writing to w with the given number style.
func NewWriter(w io.Writer, style bignum.Style) *Printer {
	return &Printer{w: w, style: style}
}

// SetStyle changes how quantities are rendered.
func (p *Printer) SetStyle(s bignum.Style) {
	p.style = s
}

func (p *Printer) num(n bignum.Number) string {
	return n.Format(p.style)
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.w, s)
}

// Banner prints the startup banner.
func (p *Printer) Banner() {
	p.println(ansi.Bold + ansi.Cyan + "  ╔═══════════════════════════════╗" + ansi.Reset)
	p.println(ansi.Bold + ansi.Cyan + "  ║" + ansi.Reset + ansi.Bold + "   IDLECORE  " + ansi.Dim + "progression engine" + ansi.Reset + ansi.Bold + ansi.Cyan + " ║" + ansi.Reset)
	p.println(ansi.Bold + ansi.Cyan + "  ╚═══════════════════════════════╝" + ansi.Reset)
	p.println("")
}

// Error prints msg as an error line.
func (p *Printer) Error(msg string) {
	p.printf(ansi.Red+ansi.Bold+"error: "+ansi.Reset+"%s\n", msg)
}

// Info prints msg dimmed.
func (p *Printer) Info(msg string) {
	p.printf(ansi.Dim+"%s"+ansi.Reset+"\n", msg)
}

// Event prints one line for a core notification.
func (p *Printer) Event(e events.Event) {
	switch e.Kind {
	case events.KindGeneratorPurchased:
		p.printf(ansi.Blue+"+ bought %s"+ansi.Reset+ansi.Dim+" for %s"+ansi.Reset+"\n", e.Subject, p.num(e.Value))
	case events.KindNodeUnlocked:
		p.printf(ansi.Green+"◆ unlocked %s"+ansi.Reset+ansi.Dim+" (cost %s)"+ansi.Reset+"\n", e.Subject, p.num(e.Value))
	case events.KindNodeLocked:
		p.printf(ansi.Dim+"◇ locked %s"+ansi.Reset+"\n", e.Subject)
	case events.KindRuleTriggered:
		p.printf(ansi.Yellow+"↻ rule %s fired"+ansi.Reset+"\n", e.Subject)
	case events.KindPrestigePerformed:
		p.printf(ansi.Magenta+ansi.Bold+"★ %s"+ansi.Reset+" +%s points\n", e.Subject, p.num(e.Value))
	case events.KindMilestoneAchieved:
		p.printf(ansi.Green+ansi.Bold+"✓ milestone %s"+ansi.Reset+"\n", e.Subject)
	case events.KindOfflineProgress:
		p.printf(ansi.Cyan+"☾ offline progress"+ansi.Reset+" +%s\n", p.num(e.Value))
	default:
		p.printf(ansi.Dim+"%s %s"+ansi.Reset+"\n", e.Kind, e.Subject)
	}
}

// Autosaved reports a periodic save.
func (p *Printer) Autosaved(slotID string, at time.Time) {
	p.printf(ansi.Dim+"saved slot %s at %s"+ansi.Reset+"\n", short(slotID), at.Local().Format(time.TimeOnly))
}

// Reloaded reports a successful definitions hot reload.
func (p *Printer) Reloaded(path string) {
	p.printf(ansi.Cyan+"⟳ reloaded"+ansi.Reset+" %s\n", path)
}

// ReloadFailed reports a definitions change that was rejected. The running
// session keeps its previous definition.
func (p *Printer) ReloadFailed(path string, err error) {
	p.printf(ansi.Yellow+ansi.Bold+"⚠ reload of %s rejected"+ansi.Reset+" keeping previous definition\n", path)
	p.printf("  "+ansi.Red+"• "+ansi.Reset+"%v\n", err)
}

// short trims a uuid slot id to its first block for display.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
