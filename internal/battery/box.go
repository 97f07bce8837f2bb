package battery

import (
	"context"
	"path"

	"github.com/gobwas/glob"
	"github.com/sourcegraph/conc"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
	"github.com/Jeropeesee-Bashan/pybar/internal/upower"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

// Source enumerates devices and reports hotplug events.
type Source interface {
	EnumerateDevices(ctx context.Context) ([]string, error)
	DeviceEvents(ctx context.Context) (<-chan upower.DeviceEvent, error)
	Device(path string) Device
}

type upowerSource struct {
	*upower.Client
}

func (s upowerSource) Device(path string) Device {
	return s.Client.Device(path)
}

// FromUPower adapts a UPower client to Source.
func FromUPower(c *upower.Client) Source {
	return upowerSource{c}
}

// Matcher decides whether a device is ignored.
type Matcher = glob.Glob

// CompileIgnore compiles shell-style patterns matched against the device
// object path, its base name, native path and model.
func CompileIgnore(patterns []string) ([]Matcher, error) {
	out := make([]Matcher, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.NewValidationError("invalid ignore pattern").
				WithValue(p).WithCause(err)
		}
		out = append(out, g)
	}
	return out, nil
}

// WithIgnore skips devices matching any of the patterns.
func WithIgnore(m ...Matcher) Option {
	return func(o *options) { o.ignore = append(o.ignore, m...) }
}

// Box shows every battery-like device, separated by spaces. Devices are
// added and removed as they appear and disappear.
type Box struct {
	src  Source
	opts []Option
	o    options
}

var _ widget.Widget = (*Box)(nil)

// NewBox creates a Box over src. Options are passed on to each Battery.
func NewBox(src Source, opts ...Option) *Box {
	return &Box{src: src, opts: opts, o: buildOptions(opts)}
}

func (b *Box) ignored(devPath string, p upower.Properties) bool {
	if p.Type == upower.TypeLinePower {
		return true
	}
	for _, m := range b.o.ignore {
		for _, s := range []string{devPath, path.Base(devPath), p.NativePath, p.Model} {
			if s != "" && m.Match(s) {
				return true
			}
		}
	}
	return false
}

// Subscribe enumerates the devices and streams their joined values. If
// there are no devices the stream ends without a value. If every device is
// ignored, e.g. only line power is present, the stream starts with "" and
// waits for a battery to be plugged in.
func (b *Box) Subscribe(ctx context.Context) <-chan string {
	out := make(chan string)
	logger := b.o.logger.WithWidget("battery_box")

	go func() {
		defer close(out)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		paths, err := b.src.EnumerateDevices(ctx)
		if err != nil {
			logger.Warn("cannot enumerate power devices", "error", err)
			return
		}
		if len(paths) == 0 {
			return
		}

		events, err := b.src.DeviceEvents(ctx)
		if err != nil {
			logger.Warn("device hotplug unavailable", "error", err)
		}

		inner := widget.NewBox(nil, widget.WithSeparator(" "), widget.WithLogger(logger))
		tracked := newTracker(b, inner, logger)
		for _, p := range paths {
			tracked.add(ctx, p)
		}
		if len(tracked.batteries) == 0 && !widget.Send(ctx, out, "") {
			return
		}
		root := widget.NewBox([]widget.Widget{inner, widget.FColor(nil, "")})

		var wg conc.WaitGroup
		if events != nil {
			wg.Go(func() {
				for ev := range events {
					if ev.Removed {
						tracked.remove(ev.Path)
					} else {
						tracked.add(ctx, ev.Path)
					}
				}
			})
		}

		lines := root.Subscribe(ctx)
		for v := range lines {
			if !widget.Send(ctx, out, v) {
				break
			}
		}
		cancel()
		for range lines {
		}
		wg.Wait()
	}()
	return out
}

// tracker maps device paths to the Battery shown for them. It is only
// used from one goroutine at a time.
type tracker struct {
	box       *Box
	inner     *widget.Box
	logger    *logging.Logger
	batteries map[string]*Battery
}

func newTracker(b *Box, inner *widget.Box, logger *logging.Logger) *tracker {
	return &tracker{box: b, inner: inner, logger: logger, batteries: make(map[string]*Battery)}
}

func (t *tracker) add(ctx context.Context, devPath string) {
	if _, ok := t.batteries[devPath]; ok {
		return
	}
	dev := t.box.src.Device(devPath)
	props, err := dev.Properties(ctx)
	if err != nil {
		t.logger.Warn("skipping unreadable device", "device", devPath, "error", err)
		return
	}
	if t.box.ignored(devPath, props) {
		t.logger.Debug("ignoring device", "device", devPath, "type", props.Type)
		return
	}

	bat := New(dev, t.box.opts...)
	t.batteries[devPath] = bat
	if err := t.inner.Append(bat); err != nil {
		t.logger.Error("failed to add battery", "device", devPath, "error", err)
	}
}

func (t *tracker) remove(devPath string) {
	bat, ok := t.batteries[devPath]
	if !ok {
		return
	}
	delete(t.batteries, devPath)
	if err := t.inner.Remove(bat); err != nil {
		t.logger.Error("failed to remove battery", "device", devPath, "error", err)
	}
}
