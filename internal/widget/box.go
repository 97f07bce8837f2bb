package widget

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

// Box is an ordered, mutable collection of child widgets. Its stream joins
// the latest value of every child with the separator.
//
// Structural mutations (Append, Insert, Remove, Pop, Replace, Clear) are
// safe to call at any time, including while the Box is subscribed. They
// update the child list immediately and append mutation records to the log
// of every live subscription; each subscription applies its pending records
// as one batch before it builds the next line.
//
// Children are compared by identity (==), so widgets must be comparable;
// every widget in this module is a pointer.
type Box struct {
	mu           sync.Mutex
	children     []Widget
	sep          string
	readyTimeout time.Duration
	logger       *logging.Logger
	subs         map[*subscription]struct{}
}

type opKind int

const (
	opInsert opKind = iota
	opRemove
)

// mutation is one entry of a subscription's log. Indices refer to the
// child list as it was when the record was submitted.
type mutation struct {
	kind   opKind
	index  int
	widget Widget
}

// NewBox creates a Box over children. Nil children are skipped.
func NewBox(children []Widget, opts ...BoxOption) *Box {
	cfg := boxConfig{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &Box{
		sep:          cfg.sep,
		readyTimeout: cfg.readyTimeout,
		logger:       cfg.logger.WithWidget("box"),
		subs:         make(map[*subscription]struct{}),
	}
	for _, w := range children {
		if w != nil {
			b.children = append(b.children, w)
		}
	}
	return b
}

// SetSeparator changes the separator; live subscriptions re-emit.
func (b *Box) SetSeparator(sep string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sep = sep
	for s := range b.subs {
		s.signal()
	}
}

// Separator returns the current separator.
func (b *Box) Separator() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sep
}

// Len returns the number of children.
func (b *Box) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.children)
}

// Children returns a copy of the child list.
func (b *Box) Children() []Widget {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.children)
}

// At returns the child at i. Negative indices count from the end.
func (b *Box) At(i int) (Widget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, err := b.normalize("at", i)
	if err != nil {
		return nil, err
	}
	return b.children[idx], nil
}

// Index returns the position of w, or -1.
func (b *Box) Index(w Widget) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexOf(w)
}

// Append adds w after the last child.
func (b *Box) Append(w Widget) error {
	if w == nil {
		return errors.NewWidgetError("append", errors.ErrNilWidget)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.insertLocked(len(b.children), w)
	return nil
}

// Extend appends every widget in order.
func (b *Box) Extend(ws ...Widget) error {
	for _, w := range ws {
		if w == nil {
			return errors.NewWidgetError("extend", errors.ErrNilWidget)
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range ws {
		b.insertLocked(len(b.children), w)
	}
	return nil
}

// Insert places w before index i. Like a list insert, negative indices
// count from the end and out-of-range indices are clamped.
func (b *Box) Insert(i int, w Widget) error {
	if w == nil {
		return errors.NewWidgetError("insert", errors.ErrNilWidget)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.children)
	if i < 0 {
		i += n
	}
	i = max(0, min(i, n))
	b.insertLocked(i, w)
	return nil
}

// Remove removes the first child identical to w.
func (b *Box) Remove(w Widget) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(w)
	if i < 0 {
		return errors.NewWidgetError("remove", errors.ErrWidgetNotFound)
	}
	b.removeLocked(i)
	return nil
}

// Pop removes and returns the child at i. Negative indices count from the
// end; Pop(-1) removes the last child.
func (b *Box) Pop(i int) (Widget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, err := b.normalize("pop", i)
	if err != nil {
		return nil, err
	}
	w := b.children[idx]
	b.removeLocked(idx)
	return w, nil
}

// Replace swaps the child at i for w. The previous child's stream is
// cancelled before w's starts.
func (b *Box) Replace(i int, w Widget) error {
	if w == nil {
		return errors.NewWidgetError("replace", errors.ErrNilWidget)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	idx, err := b.normalize("replace", i)
	if err != nil {
		return err
	}
	b.removeLocked(idx)
	b.insertLocked(idx, w)
	return nil
}

// Clear removes every child, last to first.
func (b *Box) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.children) - 1; i >= 0; i-- {
		b.removeLocked(i)
	}
}

func (b *Box) normalize(op string, i int) (int, error) {
	n := len(b.children)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return 0, errors.NewWidgetError(op, errors.ErrIndexOutOfRange).WithIndex(i).WithLength(n)
	}
	return idx, nil
}

func (b *Box) indexOf(w Widget) int {
	for i, c := range b.children {
		if c == w {
			return i
		}
	}
	return -1
}

func (b *Box) insertLocked(i int, w Widget) {
	b.children = slices.Insert(b.children, i, w)
	b.publish(mutation{kind: opInsert, index: i, widget: w})
}

func (b *Box) removeLocked(i int) {
	b.children = slices.Delete(b.children, i, i+1)
	b.publish(mutation{kind: opRemove, index: i})
}

func (b *Box) publish(m mutation) {
	for s := range b.subs {
		s.enqueue(m)
	}
}

// Subscribe starts a stream of joined lines. The first line is withheld
// until every child has produced a value. A Box that never had a ready
// child never emits.
func (b *Box) Subscribe(ctx context.Context) <-chan string {
	out := make(chan string)

	b.mu.Lock()
	s := newSubscription(b, b.readyTimeout, b.logger)
	for i, w := range b.children {
		s.pending = append(s.pending, mutation{kind: opInsert, index: i, widget: w})
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	s.signal()
	go s.run(ctx, out)
	return out
}

func (b *Box) unsubscribe(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s)
}
