// Package lemonbar drives the lemonbar render target: it starts the
// process, feeds it lines and dispatches the click ids it reports.
package lemonbar

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "lemonbar"

// Options are the lemonbar command line settings.
type Options struct {
	Binary         string
	Geometry       string
	Fonts          []string
	Background     string
	Foreground     string
	UnderlineWidth int
	Bottom         bool
	// Clickable is the number of clickable areas lemonbar allocates (-a).
	Clickable int
	Name      string
}

// Args returns the lemonbar arguments, without the program name.
func (o Options) Args() []string {
	var args []string
	if o.Geometry != "" {
		args = append(args, "-g", o.Geometry)
	}
	if o.Bottom {
		args = append(args, "-b")
	}
	for _, f := range o.Fonts {
		args = append(args, "-f", f)
	}
	if o.Clickable > 0 {
		args = append(args, "-a", strconv.Itoa(o.Clickable))
	}
	if o.Background != "" {
		args = append(args, "-B", o.Background)
	}
	if o.Foreground != "" {
		args = append(args, "-F", o.Foreground)
	}
	if o.UnderlineWidth > 0 {
		args = append(args, "-u", strconv.Itoa(o.UnderlineWidth))
	}
	if o.Name != "" {
		args = append(args, "-n", o.Name)
	}
	return args
}

// LookPath resolves the lemonbar binary.
func (o Options) LookPath() (string, error) {
	bin := o.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", errors.NewRenderError("lemonbar isn't found", errors.Join(errors.ErrRenderTargetNotFound, err)).
			WithTarget(bin)
	}
	return path, nil
}

// Process is a running lemonbar.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	logger *logging.Logger
}

// Start launches lemonbar. The process is killed when ctx is done.
func Start(ctx context.Context, opts Options, logger *logging.Logger) (*Process, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	path, err := opts.LookPath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, opts.Args()...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.NewRenderError("open stdin", err).WithTarget(path)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.NewRenderError("open stdout", err).WithTarget(path)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.NewRenderError("start", err).WithTarget(path)
	}

	logger = logger.WithComponent("lemonbar")
	logger.Info("lemonbar started", "path", path, "pid", cmd.Process.Pid, "args", opts.Args())
	return &Process{cmd: cmd, stdin: stdin, stdout: stdout, logger: logger}, nil
}

// Stdin is where bar lines are written.
func (p *Process) Stdin() io.WriteCloser { return p.stdin }

// Stdout is where click ids are read from.
func (p *Process) Stdout() io.ReadCloser { return p.stdout }

// Close closes stdin, which makes lemonbar exit, and waits for it.
func (p *Process) Close() error {
	_ = p.stdin.Close()
	err := p.cmd.Wait()
	p.logger.Info("lemonbar exited", "error", err)
	return err
}
