// Package clock provides the date and time widget.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

// DefaultFormat renders day.month.year hours:minutes.
const DefaultFormat = "02.01.06 15:04"

const secondsSuffix = ":05"

// Option configures a Clock.
type Option func(*Clock)

// WithSeconds starts the clock with seconds shown.
func WithSeconds(show bool) Option {
	return func(c *Clock) { c.showSecs = show }
}

// WithFormat sets the time layout, without the seconds suffix.
func WithFormat(layout string) Option {
	return func(c *Clock) {
		if layout != "" {
			c.layout = layout
		}
	}
}

// WithNow replaces the time source.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		if now != nil {
			c.now = now
		}
	}
}

// Clock shows the local time. It refreshes every second while seconds are
// shown and at each minute boundary otherwise.
type Clock struct {
	mu       sync.Mutex
	layout   string
	showSecs bool
	now      func() time.Time
	wakes    map[chan struct{}]struct{}
}

var _ widget.Widget = (*Clock)(nil)

// New creates a Clock.
func New(opts ...Option) *Clock {
	c := &Clock{
		layout: DefaultFormat,
		now:    time.Now,
		wakes:  make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ShowSeconds reports whether seconds are shown.
func (c *Clock) ShowSeconds() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showSecs
}

// Toggle flips seconds on or off and refreshes every live stream at once.
func (c *Clock) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showSecs = !c.showSecs
	for wake := range c.wakes {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

// Subscribe emits the current time and then one value per refresh.
func (c *Clock) Subscribe(ctx context.Context) <-chan string {
	out := make(chan string)
	wake := make(chan struct{}, 1)

	c.mu.Lock()
	c.wakes[wake] = struct{}{}
	c.mu.Unlock()

	go func() {
		defer close(out)
		defer func() {
			c.mu.Lock()
			delete(c.wakes, wake)
			c.mu.Unlock()
		}()

		for {
			text, delay := c.render()
			if !widget.Send(ctx, out, text) {
				return
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-wake:
				timer.Stop()
			case <-timer.C:
			}
		}
	}()
	return out
}

// render returns the text to show and how long it stays valid.
func (c *Clock) render() (string, time.Duration) {
	c.mu.Lock()
	layout, secs := c.layout, c.showSecs
	c.mu.Unlock()

	now := c.now()
	if secs {
		return markup.Escape(now.Format(layout + secondsSuffix)), time.Second
	}
	return markup.Escape(now.Format(layout)), untilNextMinute(now)
}

func untilNextMinute(now time.Time) time.Duration {
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}
