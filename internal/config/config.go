// Package config loads runtime settings for the idlecore CLI from viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/papapumpkin/idlecore/internal/bignum"
)

// OfflineConfig controls how progress is credited for time spent away.
type OfflineConfig struct {
	// Efficiency scales offline production. Values in [0, 1) scale it;
	// 1 or above credits it in full.
	Efficiency float64 `mapstructure:"efficiency"`
	// MaxHours caps the credited absence. 0 means unlimited.
	MaxHours float64 `mapstructure:"max_hours"`
}

// Config holds all runtime configuration for an idlecore session.
// Values are populated from .idlecore.yaml, IDLECORE_* env vars, and CLI flags.
type Config struct {
	DataDir          string        `mapstructure:"data_dir"`
	SaveDB           string        `mapstructure:"save_db"`
	SaveFormat       string        `mapstructure:"save_format"`
	TelemetryDir     string        `mapstructure:"telemetry_dir"`
	NumberFormat     string        `mapstructure:"number_format"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
	Offline          OfflineConfig `mapstructure:"offline"`
	Verbose          bool          `mapstructure:"verbose"`
}

// Save backends accepted by SaveFormat.
const (
	SaveSQLite = "sqlite"
	SaveTOML   = "toml"
)

// EnvPrefix is the prefix of environment variables that override settings.
// Nested keys use underscores: IDLECORE_OFFLINE_MAX_HOURS.
const EnvPrefix = "IDLECORE"

// BindEnv makes viper consult IDLECORE_* environment variables.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("data_dir", ".idlecore")
	viper.SetDefault("save_db", "saves.db")
	viper.SetDefault("save_format", SaveSQLite)
	viper.SetDefault("telemetry_dir", "telemetry")
	viper.SetDefault("number_format", string(bignum.StyleShort))
	viper.SetDefault("tick_interval", time.Second)
	viper.SetDefault("autosave_interval", 30*time.Second)
	viper.SetDefault("offline.efficiency", 0.5)
	viper.SetDefault("offline.max_hours", 24.0)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	if !bignum.ValidStyle(bignum.Style(c.NumberFormat)) {
		return fmt.Errorf("config: number_format %q: want short, scientific or engineering", c.NumberFormat)
	}
	if c.SaveFormat != SaveSQLite && c.SaveFormat != SaveTOML {
		return fmt.Errorf("config: save_format %q: want %s or %s", c.SaveFormat, SaveSQLite, SaveTOML)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("config: autosave_interval must not be negative, got %s", c.AutosaveInterval)
	}
	if c.Offline.Efficiency < 0 {
		return fmt.Errorf("config: offline.efficiency must not be negative, got %v", c.Offline.Efficiency)
	}
	if c.Offline.MaxHours < 0 {
		return fmt.Errorf("config: offline.max_hours must not be negative, got %v", c.Offline.MaxHours)
	}
	return nil
}

// Style returns NumberFormat as a bignum presentation style.
func (c Config) Style() bignum.Style {
	return bignum.Style(c.NumberFormat)
}
