// Package ansi provides ANSI escape code constants and helpers for terminal
// output. Styled output in idlecore goes through these constants so it can
// be stripped in one place for plain writers and tests.
package ansi

import (
	"fmt"
	"regexp"
	"strings"
)

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Blue    = "\033[34m"
	Yellow  = "\033[33m"
	Green   = "\033[32m"
	Red     = "\033[31m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"
)

// ANSI cursor and line control codes.
const (
	// ClearLine clears the entire current line.
	ClearLine = "\033[2K"

	// CursorUpFmt is a format string for moving the cursor up N lines.
	CursorUpFmt = "\033[%dA"
)

// CursorUp returns an ANSI escape sequence to move the cursor up n lines.
func CursorUp(n int) string {
	return fmt.Sprintf(CursorUpFmt, n)
}

// Wrap returns s preceded by codes and followed by Reset. With no codes s is
// returned unchanged.
func Wrap(s string, codes ...string) string {
	if len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + Reset
}

var escape = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// Strip removes every escape sequence from s.
func Strip(s string) string {
	return escape.ReplaceAllString(s, "")
}
