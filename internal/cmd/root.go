package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Jeropeesee-Bashan/pybar/internal/config"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "pybar",
	Short: "Reactive status bar for lemonbar",
	Long: `pybar renders a tree of widgets (clock, battery, volume, text and
markup decorators) into lemonbar's input and dispatches the clicks lemonbar
reports back to the widgets that registered them.

The widget tree is described by a layout file that is reloaded while the
bar runs.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/pybar/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	bindFlags()
}

func bindFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PYBAR")
	// Replace dots with underscores for nested keys in env vars
	// e.g., PYBAR_BAR_GEOMETRY for bar.geometry
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig returns the validated configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger creates the process logger. With quiet set and no log file the
// logger discards everything, so it cannot draw over a terminal UI.
func newLogger(cfg *config.Config, quiet bool) (*logging.Logger, error) {
	if cfg.Logging.File == "" {
		if quiet {
			return logging.NopLogger(), nil
		}
		return logging.New(os.Stderr, cfg.Logging.Level), nil
	}
	return logging.NewFileLogger(cfg.Logging.File, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
}
