package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Jeropeesee-Bashan/pybar/internal/config"
	"github.com/Jeropeesee-Bashan/pybar/internal/layout"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Inspect layout files",
}

var layoutCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a layout file",
	Long: `Decode and build a layout file without starting any source, and report
every problem found. Without an argument the configured layout is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayoutCheck,
}

var layoutDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the built-in layout",
	Args:  cobra.NoArgs,
	RunE:  runLayoutDefault,
}

// fs is the filesystem layout commands read from.
var fs = afero.NewOsFs()

var layoutFormat string

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.AddCommand(layoutCheckCmd)
	layoutCmd.AddCommand(layoutDefaultCmd)

	layoutDefaultCmd.Flags().StringVar(&layoutFormat, "format", "yaml", "output format: yaml or toml")
}

func runLayoutCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.LayoutFile()
	required := cfg.Bar.Layout != ""
	if len(args) == 1 {
		path, required = args[0], true
	}

	n, err := layout.Resolve(fs, path, required)
	if err != nil {
		return err
	}
	if err := checkLayout(cfg, n); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	return nil
}

// checkLayout builds n with no sources attached, so leaf widgets that need
// one are validated but left out.
func checkLayout(cfg *config.Config, n layout.Node) error {
	return layout.NewBuilder(layout.Env{Config: cfg, Logger: logging.NopLogger()}).Check(n)
}

func runLayoutDefault(cmd *cobra.Command, args []string) error {
	format := layout.Format(layoutFormat)
	if format != layout.FormatYAML && format != layout.FormatTOML {
		return fmt.Errorf("unknown format %q", layoutFormat)
	}
	if format == layout.FormatYAML {
		_, err := cmd.OutOrStdout().Write(layout.DefaultYAML())
		return err
	}
	data, err := layout.Encode(layout.Default(), format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
