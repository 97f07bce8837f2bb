// Package widget is the reactive composition engine of the bar.
//
// A Widget produces an evolving rendered text value over time. Leaves emit
// values on their own schedule, Combinators and Buttons decorate the values
// of a single child, and a Box joins the latest values of an ordered,
// mutable list of children into one line.
//
// Every Subscribe call starts an independent stream. The returned channel is
// closed when the stream ends naturally or ctx is cancelled, and only after
// every goroutine and external resource the stream acquired has been
// released.
package widget

import (
	"context"

	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
)

// Widget is the contract every node of the bar implements.
type Widget interface {
	// Subscribe starts a fresh stream of rendered values. No work happens
	// before the call; the stream is not restartable.
	Subscribe(ctx context.Context) <-chan string
}

// Text is a leaf that emits one constant, escaped value and ends.
type Text struct {
	value string
}

// NewText creates a Text for literal s. Percent signs are escaped so the
// render target shows them verbatim.
func NewText(s string) *Text {
	return &Text{value: markup.Escape(s)}
}

// NewStatic creates a Text whose value is used as-is, for pre-built markup.
func NewStatic(s string) *Text {
	return &Text{value: s}
}

// Value returns the rendered value.
func (t *Text) Value() string { return t.value }

// Subscribe emits the value once and closes.
func (t *Text) Subscribe(ctx context.Context) <-chan string {
	out := make(chan string, 1)
	out <- t.value
	close(out)
	return out
}

// Send delivers v on out unless ctx ends first. It reports whether v was
// delivered.
func Send(ctx context.Context, out chan<- string, v string) bool {
	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// Map subscribes to src and emits f(v) for every value, in order. The
// returned channel closes only after src's channel has closed.
func Map(ctx context.Context, src Widget, f func(string) string) <-chan string {
	in := src.Subscribe(ctx)
	out := make(chan string)
	go func() {
		defer close(out)
		for v := range in {
			if !Send(ctx, out, f(v)) {
				break
			}
		}
		// Wait for src to release its resources.
		for range in {
		}
	}()
	return out
}

// First subscribes to w and returns its first value. ok is false if the
// stream ended or ctx was cancelled before a value arrived.
func First(ctx context.Context, w Widget) (v string, ok bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := w.Subscribe(ctx)
	v, ok = <-ch
	cancel()
	for range ch {
	}
	return v, ok
}
