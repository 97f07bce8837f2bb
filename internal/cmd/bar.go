package cmd

import (
	"github.com/Jeropeesee-Bashan/pybar/internal/battery"
	"github.com/Jeropeesee-Bashan/pybar/internal/click"
	"github.com/Jeropeesee-Bashan/pybar/internal/config"
	"github.com/Jeropeesee-Bashan/pybar/internal/layout"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
	"github.com/Jeropeesee-Bashan/pybar/internal/pulse"
	"github.com/Jeropeesee-Bashan/pybar/internal/spawn"
	"github.com/Jeropeesee-Bashan/pybar/internal/upower"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

// bar is everything a running bar shares: the click registry, the live
// sources and the holder box the current layout is swapped into.
type bar struct {
	reg     *click.Registry
	holder  *widget.Box
	watcher *layout.Watcher
	power   *upower.Client
}

// newBar connects the sources and loads the layout. A source that cannot
// be reached is logged and the widgets using it drop out.
func newBar(cfg *config.Config, logger *logging.Logger) (*bar, error) {
	runner, err := spawn.NewRunner(cfg.Spawn.Via, logger)
	if err != nil {
		return nil, err
	}

	b := &bar{
		reg:    click.NewRegistry(logger),
		holder: widget.NewBox(nil, widget.WithLogger(logger)),
	}
	env := layout.Env{
		Config:   cfg,
		Registry: b.reg,
		Spawner:  runner,
		Logger:   logger,
		Volume:   pulse.New(pulse.WithBinary(cfg.Volume.Pactl), pulse.WithLogger(logger)),
	}

	if power, err := upower.Connect(logger); err != nil {
		logger.Warn("battery widgets disabled", "error", err)
	} else {
		b.power = power
		env.Power = battery.FromUPower(power)
	}

	b.watcher = layout.NewWatcher(cfg.LayoutFile(), layout.NewBuilder(env), b.holder,
		layout.WithRequired(cfg.Bar.Layout != ""))
	if err := b.watcher.Reload(); err != nil {
		b.Close()
		return nil, err
	}
	logger.Info("layout loaded", "path", b.watcher.Path())
	return b, nil
}

// Close releases the sources.
func (b *bar) Close() {
	if b.power != nil {
		_ = b.power.Close()
	}
}
