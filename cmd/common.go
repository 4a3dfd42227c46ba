package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papapumpkin/idlecore/internal/balance"
	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/config"
	"github.com/papapumpkin/idlecore/internal/game"
	"github.com/papapumpkin/idlecore/internal/store"
	"github.com/papapumpkin/idlecore/internal/ui"
)

// env bundles what most commands need: configuration and a printer styled
// by it.
type env struct {
	cfg     config.Config
	printer *ui.Printer
}

func loadEnv() (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, fmt.Errorf("failed to load config: %w", err)
	}
	p := ui.New()
	p.SetStyle(cfg.Style())
	return env{cfg: cfg, printer: p}, nil
}

// openStore opens the configured save backend under the data directory.
func (e env) openStore(ctx context.Context) (store.Store, error) {
	if err := os.MkdirAll(e.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dir := e.cfg.DataDir
	if e.cfg.SaveFormat == config.SaveTOML {
		dir = filepath.Join(dir, "saves")
	}
	return store.Open(ctx, e.cfg.SaveFormat, dir, e.cfg.SaveDB)
}

func (e env) telemetryDir() string {
	if filepath.IsAbs(e.cfg.TelemetryDir) {
		return e.cfg.TelemetryDir
	}
	return filepath.Join(e.cfg.DataDir, e.cfg.TelemetryDir)
}

// offline returns the offline settings for def, its own overrides first.
func (e env) offline(def *balance.Definition) (efficiency, maxHours float64) {
	return def.Offline.Resolve(e.cfg.Offline.Efficiency, e.cfg.Offline.MaxHours)
}

// loadDefinition loads and validates path, printing validation problems.
func (e env) loadDefinition(path string) (*balance.Definition, error) {
	def, err := balance.Load(path)
	if err != nil {
		e.printer.Error(err.Error())
		return nil, err
	}
	if verrs := balance.Validate(def); len(verrs) > 0 {
		e.printer.ValidateResult(def.Name, def, verrs)
		return nil, fmt.Errorf("validation failed with %d error(s)", len(verrs))
	}
	return def, nil
}

// openSession builds a session for def. With a slot reference it restores
// that slot's progress and returns the slot for saving back; otherwise the
// returned slot is new and named name.
func (e env) openSession(ctx context.Context, st store.Store, def *balance.Definition, clk clock.Clock, ref, name string) (*game.Session, *store.Slot, error) {
	sess, err := game.NewSession(def, clk)
	if err != nil {
		return nil, nil, err
	}
	if ref == "" {
		return sess, &store.Slot{Name: name}, nil
	}
	info, err := store.Resolve(ctx, st, ref)
	if err != nil {
		return nil, nil, err
	}
	slot, err := st.Load(ctx, info.ID)
	if err != nil {
		return nil, nil, err
	}
	if slot.State.Definition != def.Name {
		e.printer.Info(fmt.Sprintf("slot %s was saved with definitions %q; restoring into %q", info.ID, slot.State.Definition, def.Name))
	}
	sess.Restore(slot.State)
	if name != "" {
		slot.Name = name
	}
	return sess, &slot, nil
}
