package lemonbar

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Jeropeesee-Bashan/pybar/internal/click"
	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/testutil"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

func TestOptions_Args(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{name: "empty", opts: Options{}, want: nil},
		{
			name: "full",
			opts: Options{
				Geometry:       "1920x30+0+0",
				Fonts:          []string{"Galmuri7-12", "Font Awesome 6 Free Solid-12"},
				Background:     "#000000",
				Foreground:     "#ffffff",
				UnderlineWidth: 2,
				Bottom:         true,
				Clickable:      20,
				Name:           "pybar",
			},
			want: []string{
				"-g", "1920x30+0+0", "-b",
				"-f", "Galmuri7-12", "-f", "Font Awesome 6 Free Solid-12",
				"-a", "20", "-B", "#000000", "-F", "#ffffff", "-u", "2", "-n", "pybar",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.opts.Args()); diff != "" {
				t.Errorf("Args() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptions_LookPathMissing(t *testing.T) {
	_, err := Options{Binary: filepath.Join(t.TempDir(), "lemonbar")}.LookPath()
	if !errors.Is(err, errors.ErrRenderTargetNotFound) {
		t.Fatalf("LookPath() error = %v, want ErrRenderTargetNotFound", err)
	}
	if !errors.IsUserFacing(err) {
		t.Error("missing binary should be user facing")
	}
}

// target is an in-memory render target: lines written by the session come
// out of lines, click ids go in through clicks.
type target struct {
	lines  chan string
	clicks *io.PipeWriter
	in     *io.PipeReader
	out    *io.PipeWriter
}

func newTarget(t *testing.T) *target {
	t.Helper()
	outR, outW := io.Pipe()
	inR, inW := io.Pipe()
	tg := &target{lines: make(chan string, 16), clicks: inW, in: inR, out: outW}

	go func() {
		defer close(tg.lines)
		scanner := bufio.NewScanner(outR)
		for scanner.Scan() {
			tg.lines <- scanner.Text()
		}
	}()
	t.Cleanup(func() {
		_ = outW.Close()
		_ = inW.Close()
	})
	return tg
}

func (tg *target) click(t *testing.T, line string) {
	t.Helper()
	if _, err := io.WriteString(tg.clicks, line+"\n"); err != nil {
		t.Fatalf("write click: %v", err)
	}
}

func runSession(ctx context.Context, s *Session, tg *target) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, tg.out, tg.in) }()
	return done
}

func TestSession_WritesLinesAndDispatches(t *testing.T) {
	reg := click.NewRegistry(nil)
	clicked := make(chan struct{}, 1)
	root := widget.NewBox([]widget.Widget{
		widget.NewText("A"),
		widget.NewButton(reg, widget.NewText("B"), click.NewCallback(func() { clicked <- struct{}{} })),
	}, widget.WithSeparator("-"))

	ctx, cancel := context.WithCancel(context.Background())
	tg := newTarget(t)
	done := runSession(ctx, NewSession(root, reg, nil), tg)

	if got := testutil.Recv(t, tg.lines); got != "A-%{A1:0:}B%{A}" {
		t.Errorf("line = %q", got)
	}

	tg.click(t, "0")
	testutil.Recv(t, clicked)

	cancel()
	if err := testutil.Recv(t, done); err != nil {
		t.Errorf("Run() after cancel = %v, want nil", err)
	}
}

func TestSession_UnknownClickIsFatal(t *testing.T) {
	reg := click.NewRegistry(nil)
	root := widget.NewBox([]widget.Widget{widget.NewText("x")})

	tg := newTarget(t)
	done := runSession(context.Background(), NewSession(root, reg, nil), tg)
	testutil.Recv(t, tg.lines)

	tg.click(t, "garbage")
	tg.click(t, "7")

	err := testutil.Recv(t, done)
	if !errors.Is(err, errors.ErrUnknownClickID) {
		t.Fatalf("Run() error = %v, want ErrUnknownClickID", err)
	}
	if !errors.IsFatal(err) {
		t.Error("unknown click id should be fatal")
	}
}

func TestSession_TargetExit(t *testing.T) {
	reg := click.NewRegistry(nil)
	root := widget.NewBox([]widget.Widget{widget.NewText("x")})

	tg := newTarget(t)
	done := runSession(context.Background(), NewSession(root, reg, nil), tg)
	testutil.Recv(t, tg.lines)

	_ = tg.clicks.Close()

	err := testutil.Recv(t, done)
	if !errors.Is(err, errors.ErrRenderTargetExited) {
		t.Errorf("Run() error = %v, want ErrRenderTargetExited", err)
	}
}
