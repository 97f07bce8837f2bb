package battery

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/testutil"
	"github.com/Jeropeesee-Bashan/pybar/internal/upower"
)

type fakeSource struct {
	devices map[string]*fakeDevice
	paths   []string
	err     error

	mu     sync.Mutex
	events chan upower.DeviceEvent
}

func newFakeSource(devs ...*fakeDevice) *fakeSource {
	s := &fakeSource{devices: make(map[string]*fakeDevice)}
	for _, d := range devs {
		s.devices[d.path] = d
		s.paths = append(s.paths, d.path)
	}
	return s
}

func (s *fakeSource) EnumerateDevices(context.Context) ([]string, error) {
	return s.paths, s.err
}

func (s *fakeSource) DeviceEvents(ctx context.Context) (<-chan upower.DeviceEvent, error) {
	in := make(chan upower.DeviceEvent)
	s.mu.Lock()
	s.events = in
	s.mu.Unlock()

	out := make(chan upower.DeviceEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-in:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *fakeSource) Device(path string) Device {
	if d, ok := s.devices[path]; ok {
		return d
	}
	return &fakeDevice{path: path, err: errors.New("unknown device")}
}

func (s *fakeSource) send(t *testing.T, ev upower.DeviceEvent) {
	t.Helper()
	testutil.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.events != nil
	}, "device events subscribed")
	s.mu.Lock()
	ch := s.events
	s.mu.Unlock()
	ch <- ev
}

func battery(path string, pct float64) *fakeDevice {
	return &fakeDevice{
		path:  path,
		props: upower.Properties{Percentage: pct, Type: upower.TypeBattery, State: upower.StateDischarging},
	}
}

func TestBox_SkipsLinePowerAndIgnored(t *testing.T) {
	ac := &fakeDevice{path: "/org/freedesktop/UPower/devices/line_power_AC", props: upower.Properties{Type: upower.TypeLinePower}}
	bat := battery("/org/freedesktop/UPower/devices/battery_BAT0", 90)
	mouse := battery("/org/freedesktop/UPower/devices/mouse_dev_1", 40)
	mouse.props.Type = upower.TypeMouse

	ignore, err := CompileIgnore([]string{"mouse_*"})
	if err != nil {
		t.Fatalf("CompileIgnore() error = %v", err)
	}
	box := NewBox(newFakeSource(ac, bat, mouse), WithIgnore(ignore...))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := box.Subscribe(ctx)

	got := testutil.Recv(t, ch)
	want := New(bat).Render(bat.props) + "%{F-}"
	if got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestBox_Hotplug(t *testing.T) {
	bat0 := battery("/bat0", 90)
	bat1 := battery("/bat1", 20)
	src := newFakeSource(bat0)
	src.devices[bat1.path] = bat1

	ctx, cancel := context.WithCancel(context.Background())
	ch := NewBox(src).Subscribe(ctx)

	r0, r1 := New(bat0).Render(bat0.props), New(bat1).Render(bat1.props)
	if got := testutil.Recv(t, ch); got != r0+"%{F-}" {
		t.Fatalf("line = %q", got)
	}

	src.send(t, upower.DeviceEvent{Path: bat1.path})
	if got := testutil.Recv(t, ch); got != r0+" "+r1+"%{F-}" {
		t.Errorf("after add = %q", got)
	}

	src.send(t, upower.DeviceEvent{Path: bat0.path, Removed: true})
	if got := testutil.Recv(t, ch); got != r1+"%{F-}" {
		t.Errorf("after remove = %q", got)
	}

	cancel()
	testutil.WaitClosed(t, ch)
}

func TestBox_OnlyLinePowerEmitsBlank(t *testing.T) {
	ac := &fakeDevice{path: "/line_power_AC", props: upower.Properties{Type: upower.TypeLinePower}}
	bat := battery("/bat0", 60)
	src := newFakeSource(ac)
	src.devices[bat.path] = bat

	ctx, cancel := context.WithCancel(context.Background())
	ch := NewBox(src).Subscribe(ctx)

	if got := testutil.Recv(t, ch); got != "" {
		t.Fatalf("first line = %q, want empty", got)
	}

	src.send(t, upower.DeviceEvent{Path: bat.path})
	if got, want := testutil.Recv(t, ch), New(bat).Render(bat.props)+"%{F-}"; got != want {
		t.Errorf("after add = %q, want %q", got, want)
	}

	cancel()
	testutil.WaitClosed(t, ch)
}

func TestBox_NoDevicesEnds(t *testing.T) {
	got := testutil.WaitClosed(t, NewBox(newFakeSource()).Subscribe(context.Background()))
	if len(got) != 0 {
		t.Errorf("got %v, want no values", got)
	}
}

func TestBox_EnumerateFailureEnds(t *testing.T) {
	src := newFakeSource(battery("/bat0", 50))
	src.err = errors.New("bus down")
	got := testutil.WaitClosed(t, NewBox(src).Subscribe(context.Background()))
	if len(got) != 0 {
		t.Errorf("got %v, want no values", got)
	}
}

func TestCompileIgnore_Invalid(t *testing.T) {
	_, err := CompileIgnore([]string{"[unclosed"})
	if err == nil {
		t.Fatal("CompileIgnore() error = nil, want error")
	}
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error %v does not wrap ErrInvalidInput", err)
	}
	if !strings.Contains(err.Error(), "[unclosed") {
		t.Errorf("error %q does not name the pattern", err)
	}
}
