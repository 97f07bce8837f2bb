package testutil

import (
	"context"
	"sync"
)

// Feed is a widget whose values are pushed by the test. Every Subscribe
// call gets its own queue; Send appends to all live queues.
type Feed struct {
	mu     sync.Mutex
	subs   map[*feedSub]struct{}
	total  int
	closed bool
}

type feedSub struct {
	queue []string
	wake  chan struct{}
	done  bool
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[*feedSub]struct{})}
}

// Subscribe starts a stream that emits every value sent after the call.
func (f *Feed) Subscribe(ctx context.Context) <-chan string {
	out := make(chan string)
	s := &feedSub{wake: make(chan struct{}, 1)}

	f.mu.Lock()
	f.subs[s] = struct{}{}
	f.total++
	s.done = f.closed
	f.mu.Unlock()

	go func() {
		defer func() {
			f.mu.Lock()
			delete(f.subs, s)
			f.mu.Unlock()
			close(out)
		}()
		for {
			f.mu.Lock()
			if len(s.queue) > 0 {
				v := s.queue[0]
				s.queue = s.queue[1:]
				f.mu.Unlock()
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
				continue
			}
			done := s.done
			f.mu.Unlock()
			if done {
				return
			}
			select {
			case <-s.wake:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Send queues v on every live subscription.
func (f *Feed) Send(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		s.queue = append(s.queue, v)
		s.poke()
	}
}

// Close ends every stream once its queue is drained. Later subscriptions
// end immediately.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for s := range f.subs {
		s.done = true
		s.poke()
	}
}

// Active returns the number of streams whose goroutine is still running.
func (f *Feed) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Subscriptions returns how many times Subscribe was called.
func (f *Feed) Subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

func (s *feedSub) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
