package widget

import (
	"time"

	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
)

// BoxOption configures a Box.
type BoxOption func(*boxConfig)

type boxConfig struct {
	sep          string
	readyTimeout time.Duration
	logger       *logging.Logger
}

// WithSeparator sets the string placed between child values.
func WithSeparator(sep string) BoxOption {
	return func(c *boxConfig) { c.sep = sep }
}

// WithReadyTimeout bounds how long a child may stay without a first value
// before it is left out of the line. Zero waits forever.
func WithReadyTimeout(d time.Duration) BoxOption {
	return func(c *boxConfig) { c.readyTimeout = d }
}

// WithLogger sets the logger for the Box. A nil logger is ignored.
func WithLogger(l *logging.Logger) BoxOption {
	return func(c *boxConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ButtonOption configures a Button.
type ButtonOption func(*buttonConfig)

type buttonConfig struct {
	button markup.MouseButton
}

// WithMouseButton selects the mouse button that triggers the callback.
// Invalid buttons are ignored and the default (left) is kept.
func WithMouseButton(b markup.MouseButton) ButtonOption {
	return func(c *buttonConfig) {
		if b.Valid() {
			c.button = b
		}
	}
}
