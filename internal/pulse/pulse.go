// Package pulse reads and adjusts the default sink volume through pactl.
package pulse

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

// DefaultSink is pactl's alias for the default sink.
const DefaultSink = "@DEFAULT_SINK@"

var percentRe = regexp.MustCompile(`(\d+)%`)

// Client runs pactl commands.
type Client struct {
	bin    string
	logger *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBinary overrides the pactl executable.
func WithBinary(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.bin = path
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{bin: "pactl", logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("pulse")
	return c
}

func (c *Client) command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, c.bin, args...)
}

// Volume returns the default sink volume in percent, averaged over
// channels.
func (c *Client) Volume(ctx context.Context) (int, error) {
	out, err := c.command(ctx, "get-sink-volume", DefaultSink).Output()
	if err != nil {
		return 0, errors.NewSourceError("pulse", "get sink volume", err)
	}
	v, err := ParseVolume(string(out))
	if err != nil {
		return 0, errors.NewSourceError("pulse", "get sink volume", err)
	}
	return v, nil
}

// ParseVolume extracts the mean channel percentage from the output of
// "pactl get-sink-volume". The balance line carries no percentage.
func ParseVolume(out string) (int, error) {
	matches := percentRe.FindAllStringSubmatch(out, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no volume in %q", strings.TrimSpace(out))
	}

	sum := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, err
		}
		sum += n
	}
	return int(math.Round(float64(sum) / float64(len(matches)))), nil
}

// Adjust changes the default sink volume by delta percent.
func (c *Client) Adjust(ctx context.Context, delta int) error {
	arg := fmt.Sprintf("%+d%%", delta)
	if out, err := c.command(ctx, "set-sink-volume", DefaultSink, arg).CombinedOutput(); err != nil {
		return errors.NewSourceError("pulse", "set sink volume",
			fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))))
	}
	return nil
}

// Changes runs "pactl subscribe" and signals after every sink or server
// event. Bursts collapse into one pending signal. The channel is closed
// once the pactl process has exited.
func (c *Client) Changes(ctx context.Context) (<-chan struct{}, error) {
	cmd := c.command(ctx, "subscribe")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.NewSourceError("pulse", "subscribe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.NewSourceError("pulse", "subscribe", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if !IsSinkEvent(scanner.Text()) {
				continue
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			c.logger.Warn("pactl subscribe exited", "error", err)
		}
	}()
	return out, nil
}

// IsSinkEvent reports whether a "pactl subscribe" line concerns a sink or
// the server (which covers default sink changes).
func IsSinkEvent(line string) bool {
	return strings.Contains(line, " on sink ") || strings.Contains(line, " on server")
}
