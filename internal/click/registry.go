// Package click maps click ids reported by the render target back to the
// callbacks that minted them.
//
// A Registry is created once by the composition root and handed to every
// Button. Ids are assigned sequentially in first-registration order and are
// never reused, so an id read back from the render target always refers to
// the callback that produced it.
package click

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

// Callback is a click action. Its identity is the pointer: registering the
// same *Callback twice yields the same id.
type Callback struct {
	name string
	fn   func()
}

// NewCallback wraps fn. The optional name shows up in logs.
func NewCallback(fn func(), name ...string) *Callback {
	cb := &Callback{fn: fn}
	if len(name) > 0 {
		cb.name = name[0]
	}
	return cb
}

// Name returns the label given at construction.
func (c *Callback) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Invoke runs the callback. A nil callback or function is a no-op.
func (c *Callback) Invoke() {
	if c == nil || c.fn == nil {
		return
	}
	c.fn()
}

// Registry is an append-only table of callbacks. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	callbacks []*Callback
	ids       map[*Callback]int
	logger    *logging.Logger
}

// NewRegistry creates an empty Registry. A nil logger disables logging.
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Registry{
		ids:    make(map[*Callback]int),
		logger: logger.WithComponent("click"),
	}
}

// Register returns the id of cb, assigning the next sequential id if cb has
// not been seen before.
func (r *Registry) Register(cb *Callback) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.ids[cb]; ok {
		return id
	}
	id := len(r.callbacks)
	r.callbacks = append(r.callbacks, cb)
	r.ids[cb] = id
	r.logger.Debug("callback registered", "id", id, "name", cb.Name())
	return id
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.callbacks)
}

// Lookup returns the callback registered under id.
func (r *Registry) Lookup(id int) (*Callback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || id >= len(r.callbacks) {
		return nil, false
	}
	return r.callbacks[id], true
}

// Dispatch invokes the callback registered under id synchronously. An id
// that was never minted yields a critical DispatchError.
func (r *Registry) Dispatch(id int) error {
	cb, ok := r.Lookup(id)
	if !ok {
		return errors.NewDispatchError(errors.ErrUnknownClickID).WithClickID(id)
	}
	r.logger.Debug("dispatching click", "id", id, "name", cb.Name())
	cb.Invoke()
	return nil
}

// DispatchLine parses one decimal click id and dispatches it.
func (r *Registry) DispatchLine(line string) error {
	trimmed := strings.TrimSpace(line)
	id, err := strconv.Atoi(trimmed)
	if err != nil {
		return errors.NewDispatchError(errors.Join(errors.ErrMalformedClick, err)).WithLine(trimmed)
	}
	return r.Dispatch(id)
}

// Serve reads newline-terminated click ids from rd and dispatches each one
// until rd is exhausted, ctx is cancelled, or a fatal error occurs.
// Malformed lines are logged and skipped. io.EOF is reported as nil.
func (r *Registry) Serve(ctx context.Context, rd io.Reader) error {
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := r.DispatchLine(line); err != nil {
			if errors.IsFatal(err) {
				return err
			}
			r.logger.Warn("ignoring click line", "error", err.Error())
		}
	}
	return scanner.Err()
}
