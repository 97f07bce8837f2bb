package lemonbar

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/Jeropeesee-Bashan/pybar/internal/click"
	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

// Session connects a widget tree to a render target: every line of the
// root stream is written to w, every click id read from r is dispatched.
type Session struct {
	root   widget.Widget
	reg    *click.Registry
	logger *logging.Logger
}

// NewSession creates a Session.
func NewSession(root widget.Widget, reg *click.Registry, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Session{root: root, reg: reg, logger: logger.WithComponent("session")}
}

// Run blocks until ctx is done, the target closes its output, writing
// fails, or an unknown click id arrives. Cancellation is not an error.
// If r is an io.Closer it is closed when the session stops, so the click
// loop does not outlive it.
func (s *Session) Run(ctx context.Context, w io.Writer, r io.Reader) error {
	g, ctx := errgroup.WithContext(ctx)

	if c, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}

	g.Go(func() error {
		return s.print(ctx, w)
	})
	g.Go(func() error {
		err := s.reg.Serve(ctx, r)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		return errors.NewRenderError("click stream ended", errors.ErrRenderTargetExited)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) print(ctx context.Context, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := s.root.Subscribe(ctx)
	defer func() {
		cancel()
		for range lines {
		}
	}()

	for line := range lines {
		s.logger.Debug("bar line", "line", line)
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return errors.NewRenderError("write line", err)
		}
	}
	return nil
}
