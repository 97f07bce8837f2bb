// Package volume provides the default sink volume widget.
package volume

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Jeropeesee-Bashan/pybar/internal/click"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

// DefaultColor is the foreground color of the widget.
const DefaultColor = "#1b998a"

const (
	speakerIcon   = "\uf028"
	adjustTimeout = 2 * time.Second
)

// Source reads, watches and adjusts the volume.
type Source interface {
	Volume(ctx context.Context) (int, error)
	Changes(ctx context.Context) (<-chan struct{}, error)
	Adjust(ctx context.Context, delta int) error
}

// Option configures a Volume.
type Option func(*Volume)

// WithFontIndex renders the icon with the given 1-based lemonbar font.
func WithFontIndex(i int) Option {
	return func(v *Volume) { v.fontIndex = i }
}

// WithColor sets the initial color.
func WithColor(c string) Option {
	return func(v *Volume) {
		if c != "" {
			v.color = c
		}
	}
}

// WithStep sets the scroll step in percent.
func WithStep(step int) Option {
	return func(v *Volume) {
		if step > 0 {
			v.step = step
		}
	}
}

// WithOnClick runs cb on a left click, typically a mixer launcher.
func WithOnClick(cb *click.Callback) Option {
	return func(v *Volume) { v.onClick = cb }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *Volume) {
		if l != nil {
			v.logger = l
		}
	}
}

// Volume shows the default sink volume. Scrolling up or down over it
// adjusts the volume by the configured step.
type Volume struct {
	src       Source
	fontIndex int
	step      int
	onClick   *click.Callback
	logger    *logging.Logger

	mu    sync.Mutex
	color string
	wakes map[chan struct{}]struct{}

	reg      *click.Registry
	up, down *click.Callback
}

var _ widget.Widget = (*Volume)(nil)

// New creates a Volume. Its buttons are registered with reg immediately.
func New(src Source, reg *click.Registry, opts ...Option) *Volume {
	v := &Volume{
		src:    src,
		step:   1,
		color:  DefaultColor,
		logger: logging.NopLogger(),
		wakes:  make(map[chan struct{}]struct{}),
		reg:    reg,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithWidget("volume")

	v.up = click.NewCallback(func() { v.adjust(v.step) }, "volume up")
	v.down = click.NewCallback(func() { v.adjust(-v.step) }, "volume down")
	if v.onClick != nil {
		reg.Register(v.onClick)
	}
	reg.Register(v.up)
	reg.Register(v.down)
	return v
}

// controls wraps w in the click regions of the widget.
func (v *Volume) controls(w widget.Widget) widget.Widget {
	if v.onClick != nil {
		w = widget.NewButton(v.reg, w, v.onClick)
	}
	w = widget.NewButton(v.reg, w, v.up, widget.WithMouseButton(markup.ButtonScrollUp))
	return widget.NewButton(v.reg, w, v.down, widget.WithMouseButton(markup.ButtonScrollDown))
}

// Color returns the current color.
func (v *Volume) Color() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.color
}

// SetColor changes the color and refreshes every live stream.
func (v *Volume) SetColor(c string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.color = c
	for wake := range v.wakes {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

// Subscribe streams the rendered widget including its click regions. If
// the volume cannot be read the stream ends without a value.
func (v *Volume) Subscribe(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		levels := (&label{v: v}).Subscribe(ctx)
		defer func() {
			cancel()
			for range levels {
			}
		}()

		var first string
		select {
		case <-ctx.Done():
			return
		case s, ok := <-levels:
			if !ok {
				return
			}
			first = s
		}

		lines := v.controls(&primed{first: first, rest: levels}).Subscribe(ctx)
		for line := range lines {
			if !widget.Send(ctx, out, line) {
				break
			}
		}
		cancel()
		for range lines {
		}
	}()
	return out
}

// Render formats a volume level with the current color.
func (v *Volume) Render(level int) string {
	font := "-"
	if v.fontIndex > 0 {
		font = strconv.Itoa(v.fontIndex)
	}
	body := markup.Format(markup.Font, font, speakerIcon) + markup.Open(markup.Font, "-") +
		" " + markup.Escape(fmt.Sprintf("%d%%", level))
	return markup.Format(markup.ForegroundColor, v.Color(), body) + markup.Open(markup.ForegroundColor, "-")
}

func (v *Volume) adjust(delta int) {
	ctx, cancel := context.WithTimeout(context.Background(), adjustTimeout)
	defer cancel()
	if err := v.src.Adjust(ctx, delta); err != nil {
		v.logger.Warn("failed to adjust volume", "delta", delta, "error", err)
	}
}

func (v *Volume) register() chan struct{} {
	wake := make(chan struct{}, 1)
	v.mu.Lock()
	v.wakes[wake] = struct{}{}
	v.mu.Unlock()
	return wake
}

func (v *Volume) unregister(wake chan struct{}) {
	v.mu.Lock()
	delete(v.wakes, wake)
	v.mu.Unlock()
}

// label is the undecorated volume text.
type label struct {
	v *Volume
}

func (l *label) Subscribe(ctx context.Context) <-chan string {
	v := l.v
	out := make(chan string)
	go func() {
		defer close(out)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		level, err := v.src.Volume(ctx)
		if err != nil {
			v.logger.Warn("volume unavailable", "error", err)
			return
		}
		changes, err := v.src.Changes(ctx)
		if err != nil {
			v.logger.Warn("volume changes unavailable", "error", err)
			return
		}
		wake := v.register()
		defer v.unregister(wake)

		events := changes
		emit := true
		for {
			if emit && !widget.Send(ctx, out, v.Render(level)) {
				break
			}
			emit = false

			select {
			case <-ctx.Done():
			case _, ok := <-events:
				if !ok {
					v.logger.Warn("volume change stream ended")
					events = nil
					continue
				}
			case <-wake:
			}
			if ctx.Err() != nil {
				break
			}

			next, err := v.src.Volume(ctx)
			if err != nil {
				v.logger.Warn("failed to read volume", "error", err)
				continue
			}
			level, emit = next, true
		}

		cancel()
		for range changes {
		}
	}()
	return out
}

// primed replays a value already taken from rest, then forwards rest. It
// is subscribed once.
type primed struct {
	first string
	rest  <-chan string
}

func (p *primed) Subscribe(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		if !widget.Send(ctx, out, p.first) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-p.rest:
				if !ok || !widget.Send(ctx, out, s) {
					return
				}
			}
		}
	}()
	return out
}
