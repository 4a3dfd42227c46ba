package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/events"
	"github.com/papapumpkin/idlecore/internal/runner"
	"github.com/papapumpkin/idlecore/internal/telemetry"
	"github.com/papapumpkin/idlecore/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run <definitions>",
	Short: "Play a session in real time with autosave and optional hot reload",
	Long: `Ticks a session in real time until interrupted. Resuming a slot first credits
offline progress for the time away. Progress is autosaved every autosave_interval and
once more on exit. With --watch, edits to the definitions file are applied live.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("slot", "", "resume this save slot (id, id prefix or name)")
	runCmd.Flags().String("name", "", "name for a new save slot")
	runCmd.Flags().Bool("watch", false, "reload the definitions file when it changes")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ref, _ := cmd.Flags().GetString("slot")
	name, _ := cmd.Flags().GetString("name")
	watch, _ := cmd.Flags().GetBool("watch")

	e, err := loadEnv()
	if err != nil {
		return err
	}
	def, err := e.loadDefinition(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalContext(cmd.Context(), e.printer)
	defer cancel()

	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, slot, err := e.openSession(ctx, st, def, clock.Real{}, ref, name)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	if err := os.MkdirAll(e.telemetryDir(), 0o755); err != nil {
		return fmt.Errorf("create telemetry dir: %w", err)
	}
	em, err := telemetry.NewEmitter(filepath.Join(e.telemetryDir(), sessionID+".jsonl"))
	if err != nil {
		return err
	}
	defer em.Close()

	e.printer.Banner()
	if ref != "" {
		if report := sess.ApplyOffline(e.offline(def)); !report.Produced.IsZero() {
			e.printer.Offline(report, def.Currency)
		}
	}

	var out ui.UI = quietUI{e.printer}
	if e.cfg.Verbose {
		out = e.printer
	}
	r := &runner.Runner{
		Session:          sess,
		Store:            st,
		Slot:             slot,
		UI:               out,
		Emitter:          em,
		SessionID:        sessionID,
		TickInterval:     e.cfg.TickInterval,
		AutosaveInterval: e.cfg.AutosaveInterval,
		DefinitionPath:   args[0],
		Watch:            watch,
	}
	err = r.Run(ctx)
	e.printer.StatusDone()
	e.printer.Summary(sess)
	return err
}

// quietUI drops per-event lines and autosave notices.
type quietUI struct {
	*ui.Printer
}

func (quietUI) Event(events.Event)          {}
func (quietUI) Autosaved(string, time.Time) {}

func setupSignalContext(parent context.Context, printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
