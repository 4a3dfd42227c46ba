package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/idlecore/internal/bignum"
)

var formatCmd = &cobra.Command{
	Use:   "format <number>...",
	Short: "Print numbers in short, scientific and engineering notation",
	Long: `Parses each argument as a big number ("1500", "2.5e400", "1e-5") and prints it
in every notation, or only in --style when given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().String("style", "", "only this style: short, scientific or engineering")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	style, _ := cmd.Flags().GetString("style")
	if style != "" && !bignum.ValidStyle(bignum.Style(style)) {
		return fmt.Errorf("format: unknown style %q", style)
	}
	out := cmd.OutOrStdout()
	for _, arg := range args {
		n, err := bignum.Parse(arg)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		if style != "" {
			fmt.Fprintln(out, n.Format(bignum.Style(style)))
			continue
		}
		fmt.Fprintf(out, "%s\tshort=%s\tscientific=%s\tengineering=%s\n",
			arg, n.FormatShort(), n.FormatScientific(), n.FormatEngineering())
	}
	return nil
}
