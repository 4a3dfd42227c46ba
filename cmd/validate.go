package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/idlecore/internal/balance"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definitions>...",
	Short: "Check definition files for missing fields, bad references and cycles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	failed := 0
	for _, path := range args {
		def, err := balance.Load(path)
		if err != nil {
			e.printer.Error(err.Error())
			failed++
			continue
		}
		verrs := balance.Validate(def)
		e.printer.ValidateResult(def.Name, def, verrs)
		if len(verrs) > 0 {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d definition file(s) invalid", failed, len(args))
	}
	return nil
}
