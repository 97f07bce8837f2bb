// Package battery renders UPower devices as bar widgets.
package battery

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
	"github.com/Jeropeesee-Bashan/pybar/internal/upower"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

// Device is the view of a power source a Battery needs.
type Device interface {
	Path() string
	Properties(ctx context.Context) (upower.Properties, error)
	Changes(ctx context.Context) (<-chan upower.Properties, error)
}

// Level buckets a whole charge percentage into 0 (critical) through 4
// (full).
func Level(percentage int) int {
	switch {
	case percentage <= 5:
		return 0
	case percentage <= 25:
		return 1
	case percentage <= 50:
		return 2
	case percentage <= 75:
		return 3
	default:
		return 4
	}
}

var levelColors = [...]string{"#ff0000", "#ef7d13", "#f7db00", "#a9f700", "#25e817"}

// Color returns the foreground color for a level.
func Color(level int) string {
	return levelColors[max(0, min(level, len(levelColors)-1))]
}

// Font Awesome battery glyphs run downwards from full at U+F244.
const batteryFull = '\uf244'

// LevelIcon returns the battery glyph for a level.
func LevelIcon(level int) string {
	return string(batteryFull - rune(level))
}

// TypeIcon returns the glyph describing the device kind and charge state.
// Batteries show a plug when on external power.
func TypeIcon(p upower.Properties) string {
	switch p.Type {
	case upower.TypeBattery:
		if p.State.Charging() {
			return "\ue55b"
		}
		return "\uf1e6"
	case upower.TypeHeadset:
		return "\uf025"
	}
	return ""
}

// Option configures Battery and Box widgets.
type Option func(*options)

type options struct {
	fontIndex int
	ignore    []Matcher
	logger    *logging.Logger
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFontIndex renders icons with the given 1-based lemonbar font.
// Zero keeps the current font.
func WithFontIndex(i int) Option {
	return func(o *options) { o.fontIndex = i }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Battery shows one device: level icon, type icon and percentage, colored
// by charge level.
type Battery struct {
	dev       Device
	fontIndex int
	logger    *logging.Logger
}

var _ widget.Widget = (*Battery)(nil)

// New creates a Battery for dev.
func New(dev Device, opts ...Option) *Battery {
	o := buildOptions(opts)
	return &Battery{
		dev:       dev,
		fontIndex: o.fontIndex,
		logger:    o.logger.WithWidget("battery").With("device", dev.Path()),
	}
}

// Render formats a property snapshot.
func (b *Battery) Render(p upower.Properties) string {
	pct := int(p.Percentage)
	level := Level(pct)

	font := "-"
	if b.fontIndex > 0 {
		font = strconv.Itoa(b.fontIndex)
	}
	icons := markup.Format(markup.Font, font, LevelIcon(level)+TypeIcon(p)) +
		markup.Open(markup.Font, "-")
	text := markup.Escape(fmt.Sprintf("%d%%", pct))

	return markup.Format(markup.ForegroundColor, Color(level), icons+" "+text)
}

// Subscribe emits the current state and then one value per change of
// percentage or charge state. If the device cannot be read the stream ends
// without a value.
func (b *Battery) Subscribe(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		props, err := b.dev.Properties(ctx)
		if err != nil {
			b.logger.Warn("battery unavailable", "error", err)
			return
		}
		changes, err := b.dev.Changes(ctx)
		if err != nil {
			b.logger.Warn("battery changes unavailable", "error", err)
			return
		}

		if widget.Send(ctx, out, b.Render(props)) {
			for p := range changes {
				if !widget.Send(ctx, out, b.Render(p)) {
					break
				}
			}
		}
		cancel()
		for range changes {
		}
	}()
	return out
}
