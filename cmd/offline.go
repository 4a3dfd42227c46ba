package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/idlecore/internal/clock"
)

var offlineCmd = &cobra.Command{
	Use:   "offline <definitions>",
	Short: "Credit a save slot with production for the time since it was last saved",
	Args:  cobra.ExactArgs(1),
	RunE:  runOffline,
}

func init() {
	offlineCmd.Flags().String("slot", "", "save slot to catch up (id, id prefix or name)")
	offlineCmd.Flags().Bool("dry-run", false, "report without saving")
	_ = offlineCmd.MarkFlagRequired("slot")
	rootCmd.AddCommand(offlineCmd)
}

func runOffline(cmd *cobra.Command, args []string) error {
	ref, _ := cmd.Flags().GetString("slot")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

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

	sess, slot, err := e.openSession(ctx, st, def, clock.Real{}, ref, "")
	if err != nil {
		return err
	}
	if e.cfg.Verbose {
		sess.Events().Subscribe(e.printer.Event)
	}
	report := sess.ApplyOffline(e.offline(def))
	e.printer.Offline(report, def.Currency)
	e.printer.Summary(sess)

	if dryRun {
		return nil
	}
	slot.State = sess.State()
	slot.SavedAt = time.Time{}
	return st.Save(ctx, slot)
}
