package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/idlecore/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "idlecore",
	Short: "Idle-game progression engine",
	Long: `idlecore runs idle-game economies described in TOML or YAML definition files:
generators that produce currency over time, milestones, a prestige layer, an unlock
tree and automation rules. Sessions are saved to slots and can be resumed with
offline progress credited for the time away.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .idlecore.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print every game event")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for saves and telemetry (default .idlecore)")
	rootCmd.PersistentFlags().String("number-format", "", "number style: short, scientific or engineering")
	rootCmd.PersistentFlags().String("save-format", "", "save backend: sqlite or toml")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("number_format", rootCmd.PersistentFlags().Lookup("number-format"))
	_ = viper.BindPFlag("save_format", rootCmd.PersistentFlags().Lookup("save-format"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".idlecore")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	config.BindEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
