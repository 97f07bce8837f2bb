// Package upower is a small client for the UPower daemon on the system bus.
//
// Only the parts the bar needs are covered: device enumeration, hotplug
// signals, and the Percentage, State and Type properties of a device along
// with their change notifications.
package upower

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

const (
	// Service is the well-known bus name of the daemon.
	Service = "org.freedesktop.UPower"
	// ObjectPath is the path of the daemon's root object.
	ObjectPath = dbus.ObjectPath("/org/freedesktop/UPower")

	deviceInterface     = "org.freedesktop.UPower.Device"
	propertiesInterface = "org.freedesktop.DBus.Properties"

	memberPropertiesChanged = "PropertiesChanged"
	memberDeviceAdded       = "DeviceAdded"
	memberDeviceRemoved     = "DeviceRemoved"
)

// DeviceType is the UPower device kind.
type DeviceType uint32

const (
	TypeUnknown   DeviceType = 0
	TypeLinePower DeviceType = 1
	TypeBattery   DeviceType = 2
	TypeUPS       DeviceType = 3
	TypeMouse     DeviceType = 5
	TypeKeyboard  DeviceType = 6
	TypeHeadset   DeviceType = 17
)

// State is the charge state of a device.
type State uint32

const (
	StateUnknown          State = 0
	StateCharging         State = 1
	StateDischarging      State = 2
	StateEmpty            State = 3
	StateFullyCharged     State = 4
	StatePendingCharge    State = 5
	StatePendingDischarge State = 6
)

// Charging reports whether the device is on external power.
func (s State) Charging() bool {
	return s == StateCharging || s == StateFullyCharged
}

// Properties is a snapshot of the device properties the bar renders.
type Properties struct {
	Percentage float64
	State      State
	Type       DeviceType
	Model      string
	NativePath string
}

// Apply merges changed property values into p. It reports whether
// Percentage or State changed, the only properties that affect rendering.
func (p *Properties) Apply(changed map[string]dbus.Variant) bool {
	updated := false
	for name, v := range changed {
		switch name {
		case "Percentage":
			if f, ok := v.Value().(float64); ok {
				p.Percentage = f
				updated = true
			}
		case "State":
			if s, ok := v.Value().(uint32); ok {
				p.State = State(s)
				updated = true
			}
		case "Type":
			if t, ok := v.Value().(uint32); ok {
				p.Type = DeviceType(t)
			}
		case "Model":
			if s, ok := v.Value().(string); ok {
				p.Model = s
			}
		case "NativePath":
			if s, ok := v.Value().(string); ok {
				p.NativePath = s
			}
		}
	}
	return updated
}

// DeviceEvent reports a device appearing or disappearing.
type DeviceEvent struct {
	Path    string
	Removed bool
}

// Client talks to UPower over one bus connection.
type Client struct {
	conn   *dbus.Conn
	root   dbus.BusObject
	logger *logging.Logger
}

// Connect opens a private system bus connection.
func Connect(logger *logging.Logger) (*Client, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, errors.NewSourceError("upower", "connect to system bus", err)
	}
	return NewClient(conn, logger), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *dbus.Conn, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{
		conn:   conn,
		root:   conn.Object(Service, ObjectPath),
		logger: logger.WithComponent("upower"),
	}
}

// Close closes the bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// EnumerateDevices returns the object paths of every known device.
func (c *Client) EnumerateDevices(ctx context.Context) ([]string, error) {
	var paths []dbus.ObjectPath
	call := c.root.CallWithContext(ctx, Service+".EnumerateDevices", 0)
	if err := call.Store(&paths); err != nil {
		return nil, errors.NewSourceError("upower", "enumerate devices", err)
	}

	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = string(p)
	}
	return out, nil
}

// DeviceEvents streams DeviceAdded and DeviceRemoved signals until ctx is
// done. The channel is closed after the bus subscription is removed.
func (c *Client) DeviceEvents(ctx context.Context) (<-chan DeviceEvent, error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(ObjectPath),
		dbus.WithMatchInterface(Service),
	}
	signals, release, err := c.watch(opts...)
	if err != nil {
		return nil, errors.NewSourceError("upower", "watch devices", err)
	}

	out := make(chan DeviceEvent)
	go func() {
		defer close(out)
		defer release()
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-signals:
				ev, ok := deviceEvent(sig)
				if !ok {
					continue
				}
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

func deviceEvent(sig *dbus.Signal) (DeviceEvent, bool) {
	if sig == nil || sig.Path != ObjectPath || len(sig.Body) == 0 {
		return DeviceEvent{}, false
	}
	path, ok := sig.Body[0].(dbus.ObjectPath)
	if !ok {
		return DeviceEvent{}, false
	}
	switch sig.Name {
	case Service + "." + memberDeviceAdded:
		return DeviceEvent{Path: string(path)}, true
	case Service + "." + memberDeviceRemoved:
		return DeviceEvent{Path: string(path), Removed: true}, true
	}
	return DeviceEvent{}, false
}

// watch adds a match rule and registers a signal channel. release undoes
// both.
func (c *Client) watch(opts ...dbus.MatchOption) (<-chan *dbus.Signal, func(), error) {
	if err := c.conn.AddMatchSignal(opts...); err != nil {
		return nil, nil, err
	}

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)

	release := func() {
		c.conn.RemoveSignal(ch)
		if err := c.conn.RemoveMatchSignal(opts...); err != nil {
			c.logger.Debug("failed to remove match rule", "error", err)
		}
	}
	return ch, release, nil
}

// Device returns a handle for the device at path. No bus traffic happens
// until a method is called.
func (c *Client) Device(path string) *Device {
	op := dbus.ObjectPath(path)
	return &Device{
		client: c,
		path:   op,
		obj:    c.conn.Object(Service, op),
	}
}

// Device is one UPower device object.
type Device struct {
	client *Client
	path   dbus.ObjectPath
	obj    dbus.BusObject
}

// Path returns the object path.
func (d *Device) Path() string { return string(d.path) }

// Properties reads the current property values.
func (d *Device) Properties(ctx context.Context) (Properties, error) {
	var all map[string]dbus.Variant
	call := d.obj.CallWithContext(ctx, propertiesInterface+".GetAll", 0, deviceInterface)
	if err := call.Store(&all); err != nil {
		return Properties{}, errors.NewSourceError("upower", fmt.Sprintf("read properties of %s", d.path), err)
	}

	var p Properties
	p.Apply(all)
	return p, nil
}

// Changes streams a fresh snapshot each time Percentage or State changes.
// The first snapshot is read before the channel is returned and is not
// sent. The channel is closed after the bus subscription is removed.
func (d *Device) Changes(ctx context.Context) (<-chan Properties, error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(d.path),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember(memberPropertiesChanged),
	}
	signals, release, err := d.client.watch(opts...)
	if err != nil {
		return nil, errors.NewSourceError("upower", fmt.Sprintf("watch %s", d.path), err)
	}

	current, err := d.Properties(ctx)
	if err != nil {
		release()
		return nil, err
	}

	out := make(chan Properties)
	go func() {
		defer close(out)
		defer release()
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-signals:
				changed, ok := propertiesChanged(sig, d.path)
				if !ok || !current.Apply(changed) {
					continue
				}
				select {
				case out <- current:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func propertiesChanged(sig *dbus.Signal, path dbus.ObjectPath) (map[string]dbus.Variant, bool) {
	if sig == nil || sig.Path != path || sig.Name != propertiesInterface+"."+memberPropertiesChanged {
		return nil, false
	}
	if len(sig.Body) < 2 {
		return nil, false
	}
	if iface, _ := sig.Body[0].(string); iface != deviceInterface {
		return nil, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	return changed, ok
}
