package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Jeropeesee-Bashan/pybar/internal/lemonbar"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start lemonbar and drive it",
	Long: `Start lemonbar with the configured geometry, fonts and colors, write
the bar line to it whenever a widget changes, and dispatch the clicks it
reports. The layout file is reloaded on change unless bar.watch_layout is
off.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, false)
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

	proc, err := lemonbar.Start(ctx, lemonbar.Options{
		Binary:         cfg.Bar.Lemonbar,
		Geometry:       cfg.Bar.Geometry,
		Fonts:          cfg.Bar.Fonts,
		Background:     cfg.Bar.Background,
		Foreground:     cfg.Bar.Foreground,
		UnderlineWidth: cfg.Bar.UnderlineWidth,
		Bottom:         cfg.Bar.Bottom,
		Clickable:      cfg.Bar.Clickable,
		Name:           cfg.Bar.Name,
	}, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return lemonbar.NewSession(b.holder, b.reg, logger).Run(gctx, proc.Stdin(), proc.Stdout())
	})
	if cfg.Bar.WatchLayout {
		g.Go(func() error {
			// A broken watcher leaves the bar running on the current layout.
			if err := b.watcher.Run(gctx); err != nil {
				logger.Warn("layout reload disabled", "error", err)
			}
			return nil
		})
	}

	err = g.Wait()
	closeErr := proc.Close()
	if err != nil {
		return fmt.Errorf("bar stopped: %w", err)
	}
	if ctx.Err() == nil && closeErr != nil {
		return fmt.Errorf("lemonbar: %w", closeErr)
	}
	return nil
}
