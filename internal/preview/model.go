package preview

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sourcegraph/conc"

	"github.com/Jeropeesee-Bashan/pybar/internal/click"
	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

type keyMap struct {
	Quit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// lineMsg carries a new bar line.
type lineMsg string

// closedMsg reports that the root stream ended.
type closedMsg struct{}

var statusStyle = lipgloss.NewStyle().Faint(true)

var mouseButtons = map[tea.MouseButton]markup.MouseButton{
	tea.MouseButtonLeft:      markup.ButtonLeft,
	tea.MouseButtonMiddle:    markup.ButtonMiddle,
	tea.MouseButtonRight:     markup.ButtonRight,
	tea.MouseButtonWheelUp:   markup.ButtonScrollUp,
	tea.MouseButtonWheelDown: markup.ButtonScrollDown,
}

// Model is the bubbletea model of the preview.
type Model struct {
	reg    *click.Registry
	theme  Theme
	keys   keyMap
	logger *logging.Logger

	width    int
	line     string
	frame    Frame
	parseErr error
	closed   bool
	err      error
}

// NewModel creates a Model that dispatches clicks to reg.
func NewModel(reg *click.Registry, theme Theme, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return Model{
		reg:    reg,
		theme:  theme,
		keys:   defaultKeys(),
		logger: logger.WithComponent("preview"),
	}
}

// Err returns the fatal error that ended the program, if any.
func (m Model) Err() error { return m.err }

// Frame returns the current layout.
func (m Model) Frame() Frame { return m.frame }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.relayout()
		return m, nil

	case lineMsg:
		m.line = string(msg)
		m.relayout()
		return m, nil

	case closedMsg:
		m.closed = true
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Y != 0 {
		return m, nil
	}
	b, ok := mouseButtons[msg.Button]
	if !ok {
		return m, nil
	}
	id, ok := m.frame.At(msg.X, b)
	if !ok {
		return m, nil
	}
	if err := m.reg.Dispatch(id); err != nil {
		if errors.IsFatal(err) {
			m.err = err
			return m, tea.Quit
		}
		m.logger.Warn("click failed", "id", id, "error", err)
	}
	return m, nil
}

func (m *Model) relayout() {
	frame, err := Layout(m.line, m.width, m.theme)
	if err != nil {
		m.parseErr = err
		return
	}
	m.parseErr = nil
	m.frame = frame
}

func (m Model) View() string {
	status := m.keys.Quit.Help().Key + " " + m.keys.Quit.Help().Desc
	switch {
	case m.parseErr != nil:
		status = "markup error: " + m.parseErr.Error()
	case m.closed:
		status = "stream ended, " + status
	}
	return m.frame.Text + "\n" + statusStyle.Render(status) + "\n"
}

// Run shows root's lines in the terminal until the user quits or ctx is
// cancelled. Extra program options are appended to the defaults.
func Run(parent context.Context, root widget.Widget, m Model, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	p := tea.NewProgram(m, append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithMouseCellMotion(),
	}, opts...)...)

	lines := root.Subscribe(ctx)
	var wg conc.WaitGroup
	wg.Go(func() {
		for v := range lines {
			p.Send(lineMsg(v))
		}
		p.Send(closedMsg{})
	})

	final, err := p.Run()
	cancel()
	wg.Wait()

	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	if errors.Is(err, tea.ErrProgramKilled) && parent.Err() != nil {
		return nil
	}
	return err
}

// Once writes root's first line to w. With styled set the line is laid out
// in width columns with terminal colors; otherwise all tags are stripped.
func Once(ctx context.Context, root widget.Widget, w io.Writer, theme Theme, styled bool, width int) error {
	line, ok := widget.First(ctx, root)
	if !ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		return errors.New("layout produced no output")
	}

	var out string
	if styled {
		frame, err := Layout(line, width, theme)
		if err != nil {
			return err
		}
		out = frame.Text
	} else {
		text, err := markup.Strip(line)
		if err != nil {
			return err
		}
		out = text
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
