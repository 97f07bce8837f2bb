package layout

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/Jeropeesee-Bashan/pybar/internal/battery"
	"github.com/Jeropeesee-Bashan/pybar/internal/click"
	"github.com/Jeropeesee-Bashan/pybar/internal/clock"
	"github.com/Jeropeesee-Bashan/pybar/internal/config"
	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
	"github.com/Jeropeesee-Bashan/pybar/internal/netinfo"
	"github.com/Jeropeesee-Bashan/pybar/internal/volume"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

// Node types that are not markup tags.
const (
	TypeBox     = "box"
	TypeText    = "text"
	TypeStatic  = "static"
	TypeButton  = "button"
	TypeClock   = "clock"
	TypeBattery = "battery"
	TypeVolume  = "volume"
	TypeAddress = "address"
)

// ActionToggle toggles the button's child, e.g. the clock's seconds.
const ActionToggle = "toggle"

// Toggler is a widget with a toggle action.
type Toggler interface {
	Toggle()
}

// Spawner turns a command line into a click callback.
type Spawner interface {
	Callback(command string) *click.Callback
}

// Env holds what the builder needs to create leaf widgets. Sources left nil
// make the matching nodes drop out of the tree with a warning.
type Env struct {
	Config   *config.Config
	Registry *click.Registry
	Spawner  Spawner
	Logger   *logging.Logger
	Power    battery.Source
	Volume   volume.Source
	Addrs    netinfo.AddrsFunc
	Now      func() time.Time
}

// Builder creates widget trees from layout nodes.
type Builder struct {
	env    Env
	logger *logging.Logger

	mu       sync.Mutex
	commands map[string]*click.Callback
}

// NewBuilder creates a Builder. A nil Config means config.Default().
func NewBuilder(env Env) *Builder {
	if env.Config == nil {
		env.Config = config.Default()
	}
	if env.Registry == nil {
		env.Registry = click.NewRegistry(env.Logger)
	}
	if env.Logger == nil {
		env.Logger = logging.NopLogger()
	}
	if env.Addrs == nil {
		env.Addrs = netinfo.InterfaceAddrs
	}
	return &Builder{
		env:      env,
		logger:   env.Logger.WithComponent("layout"),
		commands: make(map[string]*click.Callback),
	}
}

// Build creates the widget tree for n. All problems in the tree are
// reported together; the error wraps errors.ErrInvalidLayout. A rejected
// layout registers nothing with the shared registry.
func (b *Builder) Build(n Node) (widget.Widget, error) {
	if err := b.Check(n); err != nil {
		return nil, err
	}
	bc := &build{b: b, reg: b.env.Registry, logger: b.logger}
	w := bc.node(n, "root")
	if len(bc.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidLayout, errors.Join(bc.errs...))
	}
	if w == nil {
		w = b.box(nil, "")
	}
	return w, nil
}

// Check reports the problems Build would report. The tree is built
// against a scratch registry and thrown away.
func (b *Builder) Check(n Node) error {
	bc := &build{b: b, reg: click.NewRegistry(nil), logger: logging.NopLogger()}
	bc.node(n, "root")
	if len(bc.errs) > 0 {
		return fmt.Errorf("%w: %w", errors.ErrInvalidLayout, errors.Join(bc.errs...))
	}
	return nil
}

// command returns the spawn callback for cmd. Callbacks are cached so a
// rebuilt layout keeps the click ids of its commands.
func (b *Builder) command(cmd string) *click.Callback {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.commands[cmd]; ok {
		return cb
	}
	var cb *click.Callback
	if b.env.Spawner != nil {
		cb = b.env.Spawner.Callback(expandHome(cmd))
	} else {
		logger := b.logger
		cb = click.NewCallback(func() {
			logger.Warn("no spawner configured, ignoring click", "command", cmd)
		}, cmd)
	}
	b.commands[cmd] = cb
	return cb
}

func (b *Builder) box(children []widget.Widget, sep string) *widget.Box {
	return widget.NewBox(children,
		widget.WithSeparator(sep),
		widget.WithReadyTimeout(b.env.Config.Engine.ReadyTimeout),
		widget.WithLogger(b.env.Logger))
}

// build carries the state of one pass over a layout.
type build struct {
	b      *Builder
	reg    *click.Registry
	logger *logging.Logger
	errs   []error
}

func (bc *build) fail(path, msg string, value any) {
	err := errors.NewValidationError(msg).WithField(path)
	if value != nil {
		err = err.WithValue(value)
	}
	bc.errs = append(bc.errs, err)
}

func (bc *build) node(n Node, path string) widget.Widget {
	typ := strings.ToLower(strings.TrimSpace(n.Type))
	switch typ {
	case TypeBox:
		return bc.boxNode(n, path)
	case TypeText:
		return widget.NewText(n.Text)
	case TypeStatic:
		return widget.NewStatic(n.Text)
	case TypeButton:
		return bc.button(n, path)
	case TypeClock:
		return bc.clock(n, path)
	case TypeBattery:
		return bc.battery(n, path)
	case TypeVolume:
		return bc.volume(n, path)
	case TypeAddress:
		return bc.address(n, path)
	case "":
		bc.fail(path+".type", "missing node type", nil)
		return nil
	}

	tag, ok := markup.ParseTag(typ)
	if !ok {
		bc.fail(path+".type", "unknown node type", n.Type)
		return nil
	}
	arg, err := cast.ToStringE(n.Arg)
	if err != nil {
		bc.fail(path+".arg", "tag argument must be a string or number", n.Arg)
		return nil
	}
	if arg != "" && !tag.TakesArg() {
		bc.fail(path+".arg", fmt.Sprintf("%s takes no argument", tag), arg)
	}
	var child widget.Widget
	if n.Child != nil {
		child = bc.node(*n.Child, path+".child")
	}
	return widget.NewCombinator(tag, arg, child)
}

func (bc *build) boxNode(n Node, path string) widget.Widget {
	children := make([]widget.Widget, 0, len(n.Children))
	for i, c := range n.Children {
		if w := bc.node(c, fmt.Sprintf("%s.children[%d]", path, i)); w != nil {
			children = append(children, w)
		}
	}
	return bc.b.box(children, n.Sep)
}

var buttonNames = map[string]markup.MouseButton{
	"left":   markup.ButtonLeft,
	"middle": markup.ButtonMiddle,
	"right":  markup.ButtonRight,
	"up":     markup.ButtonScrollUp,
	"down":   markup.ButtonScrollDown,
}

func (bc *build) mouseButton(v any, path string) markup.MouseButton {
	if v == nil {
		return markup.ButtonLeft
	}
	if s, ok := v.(string); ok {
		if mb, ok := buttonNames[strings.ToLower(s)]; ok {
			return mb
		}
	}
	i, err := cast.ToIntE(v)
	if err != nil || !markup.MouseButton(i).Valid() {
		bc.fail(path+".button", "mouse button must be 1-5 or left, middle, right, up, down", v)
		return markup.ButtonLeft
	}
	return markup.MouseButton(i)
}

func (bc *build) button(n Node, path string) widget.Widget {
	mb := bc.mouseButton(n.Button, path)

	var child widget.Widget
	if n.Child != nil {
		child = bc.node(*n.Child, path+".child")
	}

	var cb *click.Callback
	switch {
	case n.Command != "" && n.Action != "":
		bc.fail(path, "button has both command and action", nil)
		return nil
	case n.Command != "":
		cb = bc.b.command(n.Command)
	case strings.EqualFold(n.Action, ActionToggle):
		t, ok := child.(Toggler)
		if !ok {
			bc.fail(path+".action", "child cannot be toggled", n.Action)
			return nil
		}
		cb = click.NewCallback(t.Toggle, "toggle")
	case n.Action != "":
		bc.fail(path+".action", "unknown action", n.Action)
		return nil
	default:
		bc.fail(path, "button needs a command or an action", nil)
		return nil
	}
	return widget.NewButton(bc.reg, child, cb, widget.WithMouseButton(mb))
}

// options reads node options with cast, rejecting keys outside known.
type options struct {
	bc   *build
	path string
	m    map[string]any
}

func (bc *build) options(n Node, path string, known ...string) options {
	for k := range n.Options {
		if !slices.Contains(known, k) {
			bc.fail(path+".options."+k, "unknown option", nil)
		}
	}
	return options{bc: bc, path: path + ".options", m: n.Options}
}

func (o options) str(key, def string) string {
	v, ok := o.m[key]
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		o.bc.fail(o.path+"."+key, "must be a string", v)
		return def
	}
	return s
}

func (o options) integer(key string, def int) int {
	v, ok := o.m[key]
	if !ok {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		o.bc.fail(o.path+"."+key, "must be an integer", v)
		return def
	}
	return i
}

func (o options) boolean(key string, def bool) bool {
	v, ok := o.m[key]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		o.bc.fail(o.path+"."+key, "must be a boolean", v)
		return def
	}
	return b
}

func (o options) list(key string, def []string) []string {
	v, ok := o.m[key]
	if !ok {
		return def
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		o.bc.fail(o.path+"."+key, "must be a list of strings", v)
		return def
	}
	return s
}

func (bc *build) clock(n Node, path string) widget.Widget {
	cfg := bc.b.env.Config.Clock
	o := bc.options(n, path, "show_seconds", "format")
	opts := []clock.Option{
		clock.WithSeconds(o.boolean("show_seconds", cfg.ShowSeconds)),
		clock.WithFormat(o.str("format", cfg.Format)),
	}
	if bc.b.env.Now != nil {
		opts = append(opts, clock.WithNow(bc.b.env.Now))
	}
	return clock.New(opts...)
}

func (bc *build) battery(n Node, path string) widget.Widget {
	cfg := bc.b.env.Config.Battery
	o := bc.options(n, path, "font_index", "ignore")
	fontIndex := o.integer("font_index", cfg.FontIndex)
	patterns := o.list("ignore", cfg.Ignore)

	ignore, err := battery.CompileIgnore(patterns)
	if err != nil {
		bc.errs = append(bc.errs, fmt.Errorf("%s.options.ignore: %w", path, err))
		return nil
	}
	if bc.b.env.Power == nil {
		bc.logger.Warn("power source unavailable, leaving out battery", "node", path)
		return nil
	}
	return battery.NewBox(bc.b.env.Power,
		battery.WithFontIndex(fontIndex),
		battery.WithIgnore(ignore...),
		battery.WithLogger(bc.b.env.Logger))
}

func (bc *build) volume(n Node, path string) widget.Widget {
	cfg := bc.b.env.Config.Volume
	o := bc.options(n, path, "font_index", "color", "step", "command")
	fontIndex := o.integer("font_index", cfg.FontIndex)
	color := o.str("color", cfg.Color)
	step := o.integer("step", cfg.Step)
	command := o.str("command", cfg.Command)

	if step < 1 || step > 100 {
		bc.fail(path+".options.step", "step must be between 1 and 100", step)
		return nil
	}
	if bc.b.env.Volume == nil {
		bc.logger.Warn("volume source unavailable, leaving out volume", "node", path)
		return nil
	}
	opts := []volume.Option{
		volume.WithFontIndex(fontIndex),
		volume.WithColor(color),
		volume.WithStep(step),
		volume.WithLogger(bc.b.env.Logger),
	}
	if command != "" {
		opts = append(opts, volume.WithOnClick(bc.b.command(command)))
	}
	return volume.New(bc.b.env.Volume, bc.reg, opts...)
}

// address renders the interface address in its color, then resets the
// foreground.
func (bc *build) address(n Node, path string) widget.Widget {
	cfg := bc.b.env.Config.Network
	o := bc.options(n, path, "interface", "color")
	iface := o.str("interface", cfg.Interface)
	color := o.str("color", cfg.Color)

	if iface == "" {
		bc.logger.Debug("no interface configured, leaving out address", "node", path)
		return nil
	}
	text, err := netinfo.Address(iface, bc.b.env.Addrs)
	if err != nil {
		bc.logger.Warn("leaving out address", "node", path, "error", err)
		return nil
	}
	return bc.b.box([]widget.Widget{widget.FColor(text, color), widget.FColor(nil, "")}, "")
}

func expandHome(cmd string) string {
	if !strings.HasPrefix(cmd, "~/") {
		return cmd
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return cmd
	}
	return home + cmd[1:]
}
