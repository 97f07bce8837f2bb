package clock

import (
	"context"
	"testing"
	"time"

	"github.com/Jeropeesee-Bashan/pybar/internal/testutil"
)

var fixed = time.Date(2024, time.March, 9, 14, 5, 30, 0, time.UTC)

func fixedNow() time.Time { return fixed }

func TestClock_Format(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"default", nil, "09.03.24 14:05"},
		{"seconds", []Option{WithSeconds(true)}, "09.03.24 14:05:30"},
		{"custom layout", []Option{WithFormat("15:04")}, "14:05"},
		{"escaped", []Option{WithFormat("15:04 %")}, "14:05 %%"},
		{"layout digits are fields", []Option{WithFormat("15:04 1")}, "14:05 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(append(tt.opts, WithNow(fixedNow))...)
			got, _ := c.render()
			if got != tt.want {
				t.Errorf("render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClock_ToggleSwitchesFormatImmediately(t *testing.T) {
	c := New(WithNow(fixedNow))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := c.Subscribe(ctx)

	if got := testutil.Recv(t, ch); got != "09.03.24 14:05" {
		t.Fatalf("first value = %q", got)
	}

	c.Toggle()
	if got := testutil.Recv(t, ch); got != "09.03.24 14:05:30" {
		t.Errorf("after Toggle = %q, want seconds shown", got)
	}
	if !c.ShowSeconds() {
		t.Error("ShowSeconds() = false after Toggle")
	}

	c.Toggle()
	if got := testutil.Recv(t, ch); got != "09.03.24 14:05" {
		t.Errorf("after second Toggle = %q, want seconds hidden", got)
	}

	cancel()
	testutil.WaitClosed(t, ch)
}

func TestClock_Delay(t *testing.T) {
	c := New(WithNow(fixedNow))
	if _, d := c.render(); d != 30*time.Second {
		t.Errorf("delay = %v, want 30s to the minute boundary", d)
	}

	c = New(WithNow(fixedNow), WithSeconds(true))
	if _, d := c.render(); d != time.Second {
		t.Errorf("delay = %v, want 1s", d)
	}
}

func TestClock_CancelUnregistersWake(t *testing.T) {
	c := New(WithNow(fixedNow))
	ctx, cancel := context.WithCancel(context.Background())
	ch := c.Subscribe(ctx)
	testutil.Recv(t, ch)

	cancel()
	testutil.WaitClosed(t, ch)

	c.mu.Lock()
	n := len(c.wakes)
	c.mu.Unlock()
	if n != 0 {
		t.Errorf("%d wake channels left after cancel", n)
	}
}
