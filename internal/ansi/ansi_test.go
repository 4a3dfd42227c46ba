package ansi

import "testing"

func TestWrap(t *testing.T) {
	t.Parallel()
	if got := Wrap("x"); got != "x" {
		t.Errorf("Wrap without codes = %q, want %q", got, "x")
	}
	if got, want := Wrap("ok", Bold, Green), "\033[1m\033[32mok\033[0m"; got != want {
		t.Errorf("Wrap = %q, want %q", got, want)
	}
}

func TestStrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"sgr", Bold + Red + "error:" + Reset + " boom", "error: boom"},
		{"cursor", CursorUp(3) + ClearLine + "line", "line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Strip(tt.in); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
