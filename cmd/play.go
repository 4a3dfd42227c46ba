package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/telemetry"
	"github.com/papapumpkin/idlecore/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play <definitions>",
	Short: "Play a session interactively in a full-screen terminal UI",
	Long: `Opens a full-screen view of a session. Buy generators, unlock upgrades,
prestige and toggle automation rules from the keyboard. Progress is autosaved
every autosave_interval and when you quit.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().String("slot", "", "resume this save slot (id, id prefix or name)")
	playCmd.Flags().String("name", "", "name for a new save slot")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ref, _ := cmd.Flags().GetString("slot")
	name, _ := cmd.Flags().GetString("name")

	e, err := loadEnv()
	if err != nil {
		return err
	}
	def, err := e.loadDefinition(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
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
	defer telemetry.Subscribe(sess.Events(), em, sessionID, clock.Real{})()
	emit := func(kind string) {
		_ = em.Emit(telemetry.Event{Timestamp: time.Now().UTC(), Kind: kind, SessionID: sessionID, Subject: def.Name})
	}

	var offline string
	if ref != "" {
		if report := sess.ApplyOffline(e.offline(def)); !report.Produced.IsZero() {
			offline = report.Produced.Format(e.cfg.Style())
		}
	}

	m := tui.NewAppModel(sess, e.cfg.Style())
	m.Store = st
	m.Slot = slot
	m.TickInterval = e.cfg.TickInterval
	m.AutosaveInterval = e.cfg.AutosaveInterval
	if offline != "" {
		m.Log.Add("☾ welcome back, +%s %s while away", offline, def.Currency)
	}

	emit(telemetry.KindSessionStart)
	final, err := tui.Run(m)
	emit(telemetry.KindSessionStop)
	if err != nil {
		return err
	}
	if !final.Done {
		final.Slot.State = sess.State()
		final.Slot.SavedAt = time.Time{}
		if err := st.Save(ctx, final.Slot); err != nil {
			return err
		}
	}
	e.printer.Summary(sess)
	return nil
}
