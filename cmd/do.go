package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/idlecore/internal/balance"
	"github.com/papapumpkin/idlecore/internal/clock"
)

var doCmd = &cobra.Command{
	Use:   "do <definitions> <action>...",
	Short: "Apply actions (buy:<generator>, unlock:<node>, prestige) to a save slot",
	Long: `Restores a slot, credits offline progress, applies each action in order and
saves the slot. Stops at the first action that fails; earlier actions are kept.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDo,
}

func init() {
	doCmd.Flags().String("slot", "", "save slot to act on (id, id prefix or name)")
	_ = doCmd.MarkFlagRequired("slot")
	rootCmd.AddCommand(doCmd)
}

func runDo(cmd *cobra.Command, args []string) error {
	ref, _ := cmd.Flags().GetString("slot")

	e, err := loadEnv()
	if err != nil {
		return err
	}
	def, err := e.loadDefinition(args[0])
	if err != nil {
		return err
	}
	actions := make([]balance.Action, 0, len(args)-1)
	for _, arg := range args[1:] {
		a, err := balance.ParseAction(arg)
		if err != nil {
			return err
		}
		actions = append(actions, a)
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
	sess.Events().Subscribe(e.printer.Event)
	sess.ApplyOffline(e.offline(def))

	var actErr error
	for _, a := range actions {
		if actErr = sess.Do(a); actErr != nil {
			actErr = fmt.Errorf("%s: %w", a, actErr)
			break
		}
	}

	slot.State = sess.State()
	slot.SavedAt = time.Time{}
	if err := st.Save(ctx, slot); err != nil {
		return err
	}
	e.printer.Summary(sess)
	return actErr
}
