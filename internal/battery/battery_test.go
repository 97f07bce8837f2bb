package battery

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Jeropeesee-Bashan/pybar/internal/testutil"
	"github.com/Jeropeesee-Bashan/pybar/internal/upower"
)

// fakeDevice serves a fixed snapshot and forwards pushed changes.
type fakeDevice struct {
	path  string
	props upower.Properties
	err   error

	mu      sync.Mutex
	changes []chan upower.Properties
}

func (d *fakeDevice) Path() string { return d.path }

func (d *fakeDevice) Properties(context.Context) (upower.Properties, error) {
	return d.props, d.err
}

func (d *fakeDevice) Changes(ctx context.Context) (<-chan upower.Properties, error) {
	in := make(chan upower.Properties, 4)
	d.mu.Lock()
	d.changes = append(d.changes, in)
	d.mu.Unlock()

	out := make(chan upower.Properties)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case p := <-in:
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (d *fakeDevice) push(p upower.Properties) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.changes {
		ch <- p
	}
}

func (d *fakeDevice) watchers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.changes)
}

func TestLevel(t *testing.T) {
	tests := []struct {
		pct  int
		want int
	}{
		{0, 0}, {5, 0}, {6, 1}, {25, 1}, {26, 2}, {50, 2}, {75, 3}, {76, 4}, {100, 4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.pct), func(t *testing.T) {
			if got := Level(tt.pct); got != tt.want {
				t.Errorf("Level(%v) = %d, want %d", tt.pct, got, tt.want)
			}
		})
	}
}

func TestLevelIcon(t *testing.T) {
	if got := LevelIcon(4); got != "\uf240" {
		t.Errorf("LevelIcon(4) = %U, want U+F240", []rune(got)[0])
	}
	if got := LevelIcon(0); got != "\uf244" {
		t.Errorf("LevelIcon(0) = %U, want U+F244", []rune(got)[0])
	}
}

func TestTypeIcon(t *testing.T) {
	tests := []struct {
		name  string
		props upower.Properties
		want  string
	}{
		{"charging battery", upower.Properties{Type: upower.TypeBattery, State: upower.StateCharging}, "\ue55b"},
		{"full battery", upower.Properties{Type: upower.TypeBattery, State: upower.StateFullyCharged}, "\ue55b"},
		{"discharging battery", upower.Properties{Type: upower.TypeBattery, State: upower.StateDischarging}, "\uf1e6"},
		{"headset", upower.Properties{Type: upower.TypeHeadset}, "\uf025"},
		{"mouse", upower.Properties{Type: upower.TypeMouse}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeIcon(tt.props); got != tt.want {
				t.Errorf("TypeIcon() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBattery_Render(t *testing.T) {
	dev := &fakeDevice{path: "/bat0"}
	props := upower.Properties{Percentage: 57.9, Type: upower.TypeBattery, State: upower.StateDischarging}

	got := New(dev, WithFontIndex(2)).Render(props)
	want := "%{F#a9f700}%{T2}\uf241\uf1e6%{T-} 57%%"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	got = New(dev).Render(props)
	want = "%{F#a9f700}%{T-}\uf241\uf1e6%{T-} 57%%"
	if got != want {
		t.Errorf("Render() without font = %q, want %q", got, want)
	}

	// Fractions are dropped before bucketing: 5.5% is still critical.
	props.Percentage = 5.5
	got = New(dev).Render(props)
	want = "%{F#ff0000}%{T-}\uf244\uf1e6%{T-} 5%%"
	if got != want {
		t.Errorf("Render() at 5.5%% = %q, want %q", got, want)
	}
}

func TestBattery_Subscribe(t *testing.T) {
	dev := &fakeDevice{
		path:  "/bat0",
		props: upower.Properties{Percentage: 80, Type: upower.TypeBattery, State: upower.StateDischarging},
	}
	b := New(dev)

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)

	first := testutil.Recv(t, ch)
	if first != b.Render(dev.props) {
		t.Errorf("first value = %q", first)
	}

	next := upower.Properties{Percentage: 3, Type: upower.TypeBattery, State: upower.StateDischarging}
	testutil.Eventually(t, func() bool { return dev.watchers() == 1 }, "changes subscribed")
	dev.push(next)
	if got := testutil.Recv(t, ch); got != b.Render(next) {
		t.Errorf("after change = %q, want %q", got, b.Render(next))
	}

	cancel()
	testutil.WaitClosed(t, ch)
}

func TestBattery_UnavailableEndsWithoutValue(t *testing.T) {
	dev := &fakeDevice{path: "/bat0", err: fmt.Errorf("no such object")}
	got := testutil.WaitClosed(t, New(dev).Subscribe(context.Background()))
	if len(got) != 0 {
		t.Errorf("got %v, want no values", got)
	}
}
