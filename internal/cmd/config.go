package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Jeropeesee-Bashan/pybar/internal/config"
	"github.com/Jeropeesee-Bashan/pybar/internal/layout"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create the pybar configuration",
	Long: `View or create the pybar configuration.

Without arguments, displays the current configuration.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Create a default config file at $XDG_CONFIG_HOME/pybar/config.yaml
with all available options. With --layout the built-in layout is written
next to it as layout.yaml.`,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configInitLayout bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolVar(&configInitLayout, "layout", false, "also write the built-in layout")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "# Config file: (none - using defaults)\n")
	}

	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := config.Default().YAML()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	content := append([]byte("# pybar configuration\n# Every option is listed with its default value.\n\n"), data...)
	if err := os.WriteFile(configFile, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)

	if configInitLayout {
		layoutFile := config.Default().LayoutFile()
		if _, err := os.Stat(layoutFile); err == nil {
			return fmt.Errorf("layout file already exists at %s", layoutFile)
		}
		if err := os.WriteFile(layoutFile, layout.DefaultYAML(), 0o644); err != nil {
			return fmt.Errorf("failed to write layout file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created layout file at %s\n", layoutFile)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintln(cmd.OutOrStdout(), used)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFile())
	return nil
}
