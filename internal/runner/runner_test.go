package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/papapumpkin/idlecore/internal/balance"
	"github.com/papapumpkin/idlecore/internal/events"
	"github.com/papapumpkin/idlecore/internal/game"
	"github.com/papapumpkin/idlecore/internal/store"
	"github.com/papapumpkin/idlecore/internal/telemetry"
	"github.com/papapumpkin/idlecore/internal/ui"
)

// fakeUI records runner callbacks. Channels are buffered and sends never
// block so the runner goroutine cannot stall on a slow test.
type fakeUI struct {
	statuses  chan ui.StatusData
	autosaves chan string
	reloads   chan string
	failures  chan error
	errors    chan string
}

func newFakeUI() *fakeUI {
	return &fakeUI{
		statuses:  make(chan ui.StatusData, 1024),
		autosaves: make(chan string, 64),
		reloads:   make(chan string, 8),
		failures:  make(chan error, 8),
		errors:    make(chan string, 8),
	}
}

func send[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func (f *fakeUI) Info(string)                      {}
func (f *fakeUI) Event(events.Event)               {}
func (f *fakeUI) Error(msg string)                 { send(f.errors, msg) }
func (f *fakeUI) Status(d ui.StatusData)           { send(f.statuses, d) }
func (f *fakeUI) Autosaved(id string, _ time.Time) { send(f.autosaves, id) }
func (f *fakeUI) Reloaded(path string)             { send(f.reloads, path) }
func (f *fakeUI) ReloadFailed(_ string, err error) { send(f.failures, err) }

func bakeryFile(t *testing.T) (string, []byte) {
	t.Helper()
	data, err := os.ReadFile("../balance/testdata/bakery.toml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "bakery.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path, data
}

func newSession(t *testing.T, path string) *game.Session {
	t.Helper()
	def, err := balance.LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate: %v", err)
	}
	s, err := game.NewSession(def, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func wait[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		var zero T
		return zero
	}
}

func TestRunRequiresSession(t *testing.T) {
	t.Parallel()
	if err := (&Runner{}).Run(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("Run error = %v, want ErrNoSession", err)
	}
}

func TestRunTicksAndAutosaves(t *testing.T) {
	t.Parallel()
	path, _ := bakeryFile(t)
	dir := t.TempDir()

	st, err := store.NewSQLiteStore(context.Background(), filepath.Join(dir, "saves.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()

	telemetryPath := filepath.Join(dir, "events.jsonl")
	em, err := telemetry.NewEmitter(telemetryPath)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	fui := newFakeUI()
	sess := newSession(t, path)
	r := &Runner{
		Session:          sess,
		Store:            st,
		Slot:             &store.Slot{ID: "slot1", Name: "main"},
		UI:               fui,
		Emitter:          em,
		SessionID:        "sess",
		TickInterval:     5 * time.Millisecond,
		AutosaveInterval: 20 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if sess.PlayTime() <= 0 {
		t.Errorf("PlayTime = %v, want > 0", sess.PlayTime())
	}
	if len(fui.statuses) == 0 {
		t.Error("no status updates reported")
	}
	if len(fui.autosaves) == 0 {
		t.Error("no autosaves reported")
	}

	slot, err := st.Load(context.Background(), "slot1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if slot.Name != "main" || slot.State.PlayTime != sess.PlayTime() {
		t.Errorf("saved slot = (%q, %v), want (main, %v)", slot.Name, slot.State.PlayTime, sess.PlayTime())
	}

	f, err := os.Open(telemetryPath)
	if err != nil {
		t.Fatalf("open telemetry: %v", err)
	}
	defer f.Close()
	kinds := map[string]int{}
	if err := telemetry.Decode(f, func(e telemetry.Event) error {
		if e.SessionID != "sess" {
			t.Errorf("event %s has session %q", e.Kind, e.SessionID)
		}
		kinds[e.Kind]++
		return nil
	}); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for _, k := range []string{telemetry.KindSessionStart, telemetry.KindAutosave, telemetry.KindSessionStop} {
		if kinds[k] == 0 {
			t.Errorf("telemetry missing %s: %v", k, kinds)
		}
	}
	if kinds[telemetry.KindSessionStart] != 1 || kinds[telemetry.KindSessionStop] != 1 {
		t.Errorf("start/stop counts = %d/%d, want 1/1", kinds[telemetry.KindSessionStart], kinds[telemetry.KindSessionStop])
	}
}

func TestRunWithoutStore(t *testing.T) {
	t.Parallel()
	path, _ := bakeryFile(t)
	sess := newSession(t, path)
	r := &Runner{Session: sess, TickInterval: 5 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sess.PlayTime() <= 0 {
		t.Errorf("PlayTime = %v, want > 0", sess.PlayTime())
	}
}

func TestRunHotReload(t *testing.T) {
	t.Parallel()
	path, data := bakeryFile(t)
	fui := newFakeUI()
	sess := newSession(t, path)
	r := &Runner{
		Session:        sess,
		UI:             fui,
		TickInterval:   5 * time.Millisecond,
		DefinitionPath: path,
		Watch:          true,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// The watcher is running once the loop reports status.
	wait[ui.StatusData](t, fui.statuses, "first status")

	faster := strings.Replace(string(data), "base_rate = 0.1", "base_rate = 5", 1)
	if err := os.WriteFile(path, []byte(faster), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	wait[string](t, fui.reloads, "reload")

	broken := strings.Replace(string(data), `action = "prestige"`, `action = "explode"`, 1)
	if err := os.WriteFile(path, []byte(broken), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	err := wait[error](t, fui.failures, "reload failure")
	if !errors.Is(err, balance.ErrBadAction) {
		t.Errorf("reload failure = %v, want ErrBadAction", err)
	}

	cancel()
	if err := wait[error](t, done, "Run to return"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The valid reload stuck; the broken one was ignored.
	g := sess.Calculator().Generator("cursor")
	if g == nil || g.BaseRate.Float64() != 5 {
		t.Errorf("cursor base rate after reload = %v, want 5", g)
	}
	if sess.Definition().Rules[2].Action != "prestige" {
		t.Errorf("broken definition was applied: %q", sess.Definition().Rules[2].Action)
	}
}
