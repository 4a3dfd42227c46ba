package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/game"
)

var planCmd = &cobra.Command{
	Use:   "plan <definitions>",
	Short: "Show generator prices, unlock order, prestige and automation of a definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	def, err := e.loadDefinition(args[0])
	if err != nil {
		return err
	}
	sess, err := game.NewSession(def, clock.Real{})
	if err != nil {
		return err
	}
	return e.printer.Plan(sess)
}
