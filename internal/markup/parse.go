package markup

import (
	"fmt"
	"strconv"
	"strings"
)

// Align is the horizontal section a span is drawn in.
type Align int

const (
	Left Align = iota
	Center
	Right
)

// Style is the formatting state in effect for a span.
type Style struct {
	Foreground string
	Background string
	Underline  string
	Font       string
	Swapped    bool
	Align      Align
}

// Region is one open click region.
type Region struct {
	Button MouseButton
	ID     int
}

// Span is a run of literal text sharing one style and set of click regions.
// Regions are ordered outermost first.
type Span struct {
	Text    string
	Style   Style
	Offset  int
	Regions []Region
}

// Parse splits a rendered line into styled spans. It understands every tag
// this package generates, plus space-separated commands inside one block.
func Parse(line string) ([]Span, error) {
	p := parser{line: line}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.spans, nil
}

// Strip returns the literal text of line with all tags removed.
func Strip(line string) (string, error) {
	spans, err := Parse(line)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String(), nil
}

type parser struct {
	line    string
	pos     int
	style   Style
	regions []Region
	offset  int
	text    strings.Builder
	spans   []Span
}

func (p *parser) run() error {
	for p.pos < len(p.line) {
		c := p.line[p.pos]
		if c != '%' || p.pos+1 >= len(p.line) {
			p.text.WriteByte(c)
			p.pos++
			continue
		}
		switch p.line[p.pos+1] {
		case '%':
			p.text.WriteByte('%')
			p.pos += 2
		case '{':
			end := strings.IndexByte(p.line[p.pos+2:], '}')
			if end < 0 {
				return fmt.Errorf("unterminated tag at offset %d", p.pos)
			}
			block := p.line[p.pos+2 : p.pos+2+end]
			p.flush()
			if err := p.block(block); err != nil {
				return fmt.Errorf("tag at offset %d: %w", p.pos, err)
			}
			p.pos += end + 3
		default:
			p.text.WriteByte(c)
			p.pos++
		}
	}
	p.flush()
	return nil
}

func (p *parser) flush() {
	if p.text.Len() == 0 && p.offset == 0 {
		return
	}
	regions := make([]Region, len(p.regions))
	copy(regions, p.regions)
	p.spans = append(p.spans, Span{
		Text:    p.text.String(),
		Style:   p.style,
		Offset:  p.offset,
		Regions: regions,
	})
	p.text.Reset()
	p.offset = 0
}

func (p *parser) block(block string) error {
	for len(block) > 0 {
		if block[0] == ' ' {
			block = block[1:]
			continue
		}
		if block[0] == 'A' {
			rest, err := p.click(block[1:])
			if err != nil {
				return err
			}
			block = rest
			continue
		}
		cmd, rest, _ := strings.Cut(block, " ")
		block = rest
		if err := p.command(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) command(cmd string) error {
	letter, arg := cmd[0], cmd[1:]
	switch letter {
	case 'R':
		p.style.Swapped = !p.style.Swapped
	case 'l':
		p.style.Align = Left
	case 'c':
		p.style.Align = Center
	case 'r':
		p.style.Align = Right
	case 'F':
		p.style.Foreground = resetable(arg)
	case 'B':
		p.style.Background = resetable(arg)
	case 'U':
		p.style.Underline = resetable(arg)
	case 'T':
		p.style.Font = resetable(arg)
	case 'O':
		if arg == "" {
			return nil
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("bad offset %q", arg)
		}
		p.offset += n
	case '+', '-', '!':
		// attribute toggles (+u, -o, ...) carry no text
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// click parses the remainder of an A command. "A" alone closes the
// innermost region; "A<b>:<id>:" opens one.
func (p *parser) click(s string) (string, error) {
	if s == "" || s[0] == ' ' {
		if len(p.regions) > 0 {
			p.regions = p.regions[:len(p.regions)-1]
		}
		return s, nil
	}

	button := ButtonLeft
	if s[0] >= '1' && s[0] <= '9' {
		button = MouseButton(s[0] - '0')
		s = s[1:]
	}
	if s == "" || s[0] != ':' {
		return "", fmt.Errorf("malformed click region")
	}
	cmd, rest, ok := strings.Cut(s[1:], ":")
	if !ok {
		return "", fmt.Errorf("unterminated click region")
	}
	id, err := strconv.Atoi(cmd)
	if err != nil {
		return "", fmt.Errorf("click command %q is not an id", cmd)
	}
	p.regions = append(p.regions, Region{Button: button, ID: id})
	return rest, nil
}

func resetable(arg string) string {
	if arg == "-" {
		return ""
	}
	return arg
}
