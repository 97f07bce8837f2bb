package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Jeropeesee-Bashan/pybar/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the bar in the terminal",
	Long: `Render the bar in the terminal instead of lemonbar. Colors are drawn
with the terminal's palette and clicks on click regions are dispatched just
as lemonbar would report them.

With --once, or when stdout is not a terminal, the first line is printed
and the command exits.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

var (
	previewOnce    bool
	previewTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().BoolVar(&previewOnce, "once", false, "print the first line and exit")
	previewCmd.Flags().DurationVar(&previewTimeout, "timeout", 10*time.Second, "how long --once waits for the first line")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fd := int(os.Stdout.Fd())
	interactive := !previewOnce && term.IsTerminal(fd)

	logger, err := newLogger(cfg, interactive)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := newBar(cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	theme := preview.Theme{Foreground: cfg.Bar.Foreground, Background: cfg.Bar.Background}

	if !interactive {
		width := 0
		styled := term.IsTerminal(fd)
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
		ctx, cancel := context.WithTimeout(ctx, previewTimeout)
		defer cancel()
		return preview.Once(ctx, b.holder, cmd.OutOrStdout(), theme, styled, width)
	}

	if cfg.Bar.WatchLayout {
		go func() {
			if err := b.watcher.Run(ctx); err != nil {
				logger.Warn("layout reload disabled", "error", err)
			}
		}()
	}
	return preview.Run(ctx, b.holder, preview.NewModel(b.reg, theme, logger), tea.WithAltScreen())
}
