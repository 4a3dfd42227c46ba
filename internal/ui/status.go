package ui

import (
	"fmt"
	"time"

	"github.com/papapumpkin/idlecore/internal/ansi"
	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/game"
)

// StatusData is the live snapshot shown on the status line.
type StatusData struct {
	Definition    string
	Currency      string
	Balance       bignum.Number
	Rate          bignum.Number
	NodesUnlocked int
	NodesTotal    int
	PlayTime      float64
}

// Status captures the live numbers of s.
func Status(s *game.Session) StatusData {
	def := s.Definition()
	return StatusData{
		Definition:    def.Name,
		Currency:      def.Currency,
		Balance:       s.Balance(),
		Rate:          s.Rate(),
		NodesUnlocked: len(s.Tree().Unlocked()),
		NodesTotal:    s.Tree().Len(),
		PlayTime:      s.PlayTime(),
	}
}

// StatusLine formats a status line without ANSI escapes, e.g.
// "[bakery] 1.50K coins | +12/s | 1/3 nodes | 2m0s".
func StatusLine(d StatusData, style bignum.Style) string {
	return fmt.Sprintf("[%s] %s %s | +%s/s | %d/%d nodes | %s",
		d.Definition, d.Balance.Format(style), d.Currency, d.Rate.Format(style),
		d.NodesUnlocked, d.NodesTotal, playTime(d.PlayTime))
}

// Status writes a carriage-return-overwritten status line so it updates in
// place.
func (p *Printer) Status(d StatusData) {
	p.printf("\r"+ansi.ClearLine+ansi.Cyan+"%s"+ansi.Reset, StatusLine(d, p.style))
}

// StatusDone ends the status line so later output does not overwrite it.
func (p *Printer) StatusDone() {
	p.println("")
}

func playTime(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
