// Package spawn starts programs from click handlers without blocking the
// bar.
package spawn

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/Jeropeesee-Bashan/pybar/internal/click"
	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

// ViaHerbstclient asks the herbstluftwm daemon to start the program, so it
// becomes a child of the window manager rather than of the bar.
const ViaHerbstclient = "herbstclient"

// ViaDirect starts the program as a detached child of the bar.
const ViaDirect = "direct"

const herbstclientTimeout = 5 * time.Second

// Runner starts programs.
type Runner struct {
	via    string
	bin    string
	logger *logging.Logger
}

// NewRunner creates a Runner. via is ViaHerbstclient or ViaDirect; an
// empty value means ViaDirect.
func NewRunner(via string, logger *logging.Logger) (*Runner, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	switch via {
	case "", ViaDirect:
		via = ViaDirect
	case ViaHerbstclient:
	default:
		return nil, errors.NewValidationError("unknown spawn method").
			WithField("spawn.via").WithValue(via)
	}
	return &Runner{via: via, bin: ViaHerbstclient, logger: logger.WithComponent("spawn")}, nil
}

// Via returns the spawn method.
func (r *Runner) Via() string { return r.via }

// Command builds the command that starts program.
func (r *Runner) Command(ctx context.Context, program string, args ...string) *exec.Cmd {
	if r.via == ViaHerbstclient {
		full := append([]string{"spawn", program}, args...)
		return exec.CommandContext(ctx, r.bin, full...)
	}
	cmd := exec.Command(program, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd
}

// Spawn starts program and returns without waiting for it to finish.
func (r *Runner) Spawn(program string, args ...string) error {
	if program == "" {
		return errors.NewValidationError("empty command")
	}

	if r.via == ViaHerbstclient {
		ctx, cancel := context.WithTimeout(context.Background(), herbstclientTimeout)
		defer cancel()
		if out, err := r.Command(ctx, program, args...).CombinedOutput(); err != nil {
			return fmt.Errorf("herbstclient spawn %s: %w: %s", program, err, strings.TrimSpace(string(out)))
		}
		return nil
	}

	cmd := r.Command(context.Background(), program, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", program, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			r.logger.Debug("spawned program exited", "program", program, "error", err)
		}
	}()
	return nil
}

// Callback returns a click callback that spawns the command line. Fields
// are split on whitespace.
func (r *Runner) Callback(command string) *click.Callback {
	fields := strings.Fields(command)
	return click.NewCallback(func() {
		if len(fields) == 0 {
			r.logger.Warn("ignoring empty command")
			return
		}
		if err := r.Spawn(fields[0], fields[1:]...); err != nil {
			r.logger.Warn("failed to spawn", "command", command, "error", err)
		}
	}, command)
}
