package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/idlecore/internal/store"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List save slots, or delete one with --delete",
	Args:  cobra.NoArgs,
	RunE:  runSaves,
}

func init() {
	savesCmd.Flags().String("delete", "", "delete this slot (id, id prefix or name)")
	rootCmd.AddCommand(savesCmd)
}

func runSaves(cmd *cobra.Command, _ []string) error {
	del, _ := cmd.Flags().GetString("delete")

	e, err := loadEnv()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if del != "" {
		info, err := store.Resolve(ctx, st, del)
		if err != nil {
			return err
		}
		if err := st.Delete(ctx, info.ID); err != nil {
			return err
		}
		e.printer.Info(fmt.Sprintf("deleted slot %s (%s)", info.ID, info.Name))
		return nil
	}

	infos, err := st.List(ctx)
	if err != nil {
		return err
	}
	e.printer.Saves(infos, time.Now())
	return nil
}
