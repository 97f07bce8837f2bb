package widget

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

// slot holds the latest value of one child within one subscription.
type slot struct {
	widget Widget
	value  string
	ready  bool
	absent bool
	cancel context.CancelFunc
	timer  *time.Timer
}

// subscription is one live Subscribe call on a Box. The Box appends
// mutation records to pending; the run goroutine applies them in order.
type subscription struct {
	box          *Box
	readyTimeout time.Duration
	logger       *logging.Logger

	mu      sync.Mutex
	pending []mutation
	slots   []*slot

	// dirty has capacity one: any number of signals between two reads of
	// the aggregator collapse into a single wakeup.
	dirty chan struct{}
	wg    conc.WaitGroup

	// owned by the run goroutine
	emitted bool
	blanked bool
}

func newSubscription(b *Box, readyTimeout time.Duration, logger *logging.Logger) *subscription {
	return &subscription{
		box:          b,
		readyTimeout: readyTimeout,
		logger:       logger,
		dirty:        make(chan struct{}, 1),
	}
}

func (s *subscription) signal() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// enqueue is called by the Box with b.mu held.
func (s *subscription) enqueue(m mutation) {
	s.mu.Lock()
	s.pending = append(s.pending, m)
	s.mu.Unlock()
	s.signal()
}

func (s *subscription) run(ctx context.Context, out chan<- string) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.box.unsubscribe(s)
		s.stopTimers()
		s.wg.Wait()
		close(out)
	}()

	// send is nil while there is nothing to deliver, which disables that
	// select case. A newer line simply overwrites one the consumer has not
	// taken yet.
	var (
		line string
		send chan<- string
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
			next, ok := s.settle(ctx)
			if ok {
				line, send = next, out
			} else {
				send = nil
			}
		case send <- line:
			send = nil
			s.emitted = true
		}
	}
}

// settle applies the pending mutation batch and builds the line. It
// reports false while the readiness barrier holds.
func (s *subscription) settle(ctx context.Context) (string, bool) {
	sep := s.box.Separator()

	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.pending
	s.pending = nil
	for _, m := range pending {
		s.apply(ctx, m)
	}

	if len(s.slots) == 0 {
		if !s.emitted || s.blanked {
			return "", false
		}
		s.blanked = true
		return "", true
	}
	s.blanked = false

	parts := make([]string, 0, len(s.slots))
	for _, sl := range s.slots {
		switch {
		case sl.ready:
			parts = append(parts, sl.value)
		case sl.absent:
		default:
			return "", false
		}
	}
	return strings.Join(parts, sep), true
}

// apply runs with s.mu held.
func (s *subscription) apply(ctx context.Context, m mutation) {
	switch m.kind {
	case opInsert:
		i := max(0, min(m.index, len(s.slots)))
		sl := s.start(ctx, m.widget)
		s.slots = append(s.slots, nil)
		copy(s.slots[i+1:], s.slots[i:])
		s.slots[i] = sl
	case opRemove:
		if m.index < 0 || m.index >= len(s.slots) {
			s.logger.Warn("dropping remove record for missing slot",
				"index", m.index, "slots", len(s.slots))
			return
		}
		sl := s.slots[m.index]
		sl.cancel()
		if sl.timer != nil {
			sl.timer.Stop()
		}
		s.slots = append(s.slots[:m.index], s.slots[m.index+1:]...)
	}
}

// start launches the task feeding one slot. It runs with s.mu held.
func (s *subscription) start(ctx context.Context, w Widget) *slot {
	slotCtx, cancel := context.WithCancel(ctx)
	sl := &slot{widget: w, cancel: cancel}

	if s.readyTimeout > 0 {
		sl.timer = time.AfterFunc(s.readyTimeout, func() { s.expire(sl) })
	}

	s.wg.Go(func() {
		for v := range w.Subscribe(slotCtx) {
			s.mu.Lock()
			sl.value, sl.ready, sl.absent = v, true, false
			s.mu.Unlock()
			s.signal()
		}
	})
	return sl
}

func (s *subscription) expire(sl *slot) {
	s.mu.Lock()
	if sl.ready {
		s.mu.Unlock()
		return
	}
	sl.absent = true
	s.mu.Unlock()

	s.logger.Warn("child not ready, leaving it out of the line",
		"widget", fmt.Sprintf("%T", sl.widget),
		"timeout", s.readyTimeout)
	s.signal()
}

func (s *subscription) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.slots {
		if sl.timer != nil {
			sl.timer.Stop()
		}
	}
}
