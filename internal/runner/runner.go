// Package runner drives a game session in real time: it ticks production on
// a fixed interval, autosaves to a store, records telemetry and hot-reloads
// the definitions file when it changes on disk. Everything that touches the
// session happens on the goroutine that called Run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/papapumpkin/idlecore/internal/balance"
	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/game"
	"github.com/papapumpkin/idlecore/internal/store"
	"github.com/papapumpkin/idlecore/internal/telemetry"
	"github.com/papapumpkin/idlecore/internal/ui"
)

// ErrNoSession is returned by Run when the runner has no session.
var ErrNoSession = errors.New("runner: no session")

// Default intervals used when a Runner leaves them zero.
const (
	DefaultTickInterval     = time.Second
	DefaultAutosaveInterval = 30 * time.Second
)

// Runner owns one session for the duration of Run.
type Runner struct {
	Session *game.Session
	Store   store.Store // nil disables saving
	Slot    *store.Slot // ID and Name of the slot to save into
	UI      ui.UI
	Clock   clock.Clock
	Emitter *telemetry.Emitter

	SessionID        string
	TickInterval     time.Duration
	AutosaveInterval time.Duration

	// DefinitionPath is reloaded into the session when Watch is set and the
	// file changes. A definition that fails validation is reported and the
	// session keeps running on the previous one.
	DefinitionPath string
	Watch          bool
}

// Run ticks the session until ctx is cancelled, then saves one last time.
// Cancellation is a normal stop and returns nil.
func (r *Runner) Run(ctx context.Context) error {
	if r.Session == nil {
		return ErrNoSession
	}
	clk := clock.OrReal(r.Clock)
	tickEvery := r.TickInterval
	if tickEvery <= 0 {
		tickEvery = DefaultTickInterval
	}
	saveEvery := r.AutosaveInterval
	if saveEvery <= 0 {
		saveEvery = DefaultAutosaveInterval
	}

	bus := r.Session.Events()
	if r.UI != nil {
		defer bus.Subscribe(r.UI.Event)()
	}
	defer telemetry.Subscribe(bus, r.Emitter, r.SessionID, clk)()
	r.emit(clk, telemetry.KindSessionStart, r.Session.Definition().Name)

	var reloads <-chan Change
	if r.Watch && r.DefinitionPath != "" {
		w, err := NewWatcher(r.DefinitionPath)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
		reloads = w.Changes
	}

	ticker := time.NewTicker(tickEvery)
	defer ticker.Stop()
	autosave := time.NewTicker(saveEvery)
	defer autosave.Stop()

	last := clk.Now()
	for {
		select {
		case <-ctx.Done():
			r.tick(clk, &last)
			err := r.save(context.WithoutCancel(ctx), clk)
			r.emit(clk, telemetry.KindSessionStop, r.Session.Definition().Name)
			return err

		case <-ticker.C:
			r.tick(clk, &last)
			if r.UI != nil {
				r.UI.Status(ui.Status(r.Session))
			}

		case <-autosave.C:
			if err := r.save(ctx, clk); err != nil && r.UI != nil {
				r.UI.Error(err.Error())
			}

		case ch, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			r.reload(clk, ch)
		}
	}
}

// tick advances the session by the wall time since the previous tick and
// moves the offline snapshot forward.
func (r *Runner) tick(clk clock.Clock, last *time.Time) {
	now := clk.Now()
	dt := now.Sub(*last).Seconds()
	*last = now
	r.Session.Tick(dt)
	r.Session.Snapshot()
}

func (r *Runner) save(ctx context.Context, clk clock.Clock) error {
	if r.Store == nil || r.Slot == nil {
		return nil
	}
	r.Slot.State = r.Session.State()
	r.Slot.SavedAt = clk.Now().UTC()
	if err := r.Store.Save(ctx, r.Slot); err != nil {
		return fmt.Errorf("runner: autosave: %w", err)
	}
	if r.UI != nil {
		r.UI.Autosaved(r.Slot.ID, r.Slot.SavedAt)
	}
	r.emit(clk, telemetry.KindAutosave, r.Slot.ID)
	return nil
}

func (r *Runner) reload(clk clock.Clock, ch Change) {
	if ch.Removed {
		r.reloadFailed(clk, ch.Path, errors.New("file removed"))
		return
	}
	def, err := balance.LoadAndValidate(ch.Path)
	if err != nil {
		r.reloadFailed(clk, ch.Path, err)
		return
	}
	if err := r.Session.Reload(def); err != nil {
		r.reloadFailed(clk, ch.Path, err)
		return
	}
	if r.UI != nil {
		r.UI.Reloaded(ch.Path)
	}
	r.emit(clk, telemetry.KindReload, ch.Path)
}

func (r *Runner) reloadFailed(clk clock.Clock, path string, err error) {
	if r.UI != nil {
		r.UI.ReloadFailed(path, err)
	}
	_ = r.Emitter.Emit(telemetry.Event{
		Timestamp: clk.Now().UTC(),
		Kind:      telemetry.KindReloadFailed,
		SessionID: r.SessionID,
		Subject:   path,
		Data:      map[string]string{"error": err.Error()},
	})
}

func (r *Runner) emit(clk clock.Clock, kind, subject string) {
	_ = r.Emitter.Emit(telemetry.Event{
		Timestamp: clk.Now().UTC(),
		Kind:      kind,
		SessionID: r.SessionID,
		Subject:   subject,
	})
}
