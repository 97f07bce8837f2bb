// Package preview draws bar lines in a terminal. It stands in for lemonbar
// while a layout is being written: the same markup is laid out into left,
// center and right sections, and mouse clicks are mapped back to click ids.
package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
)

// PixelsPerCell converts offsets, which lemonbar measures in pixels, into
// terminal columns.
const PixelsPerCell = 8

// Theme holds the bar's default colors.
type Theme struct {
	Foreground string
	Background string
}

// Hit is a run of columns covered by the same click regions.
type Hit struct {
	Start, End int
	Regions    []markup.Region
}

// Frame is one laid-out line.
type Frame struct {
	Text  string
	Width int
	Hits  []Hit
}

// At returns the click id under column col for button b. Nested regions
// are searched innermost first.
func (f Frame) At(col int, b markup.MouseButton) (int, bool) {
	for _, h := range f.Hits {
		if col < h.Start || col >= h.End {
			continue
		}
		for i := len(h.Regions) - 1; i >= 0; i-- {
			if h.Regions[i].Button == b {
				return h.Regions[i].ID, true
			}
		}
	}
	return 0, false
}

type piece struct {
	text    string
	width   int
	regions []markup.Region
}

type section struct {
	pieces []piece
	width  int
}

func (s *section) add(p piece) {
	s.pieces = append(s.pieces, p)
	s.width += p.width
}

// Layout parses line and places its sections within width columns. A
// width smaller than the content grows to fit it.
func Layout(line string, width int, theme Theme) (Frame, error) {
	spans, err := markup.Parse(line)
	if err != nil {
		return Frame{}, err
	}

	var sections [3]section
	for _, sp := range spans {
		st := spanStyle(sp.Style, theme)
		sec := &sections[sp.Style.Align]
		if cols := offsetColumns(sp.Offset); cols > 0 {
			sec.add(piece{text: st.Render(strings.Repeat(" ", cols)), width: cols})
		}
		if sp.Text == "" {
			continue
		}
		sec.add(piece{
			text:    st.Render(sp.Text),
			width:   ansi.StringWidth(sp.Text),
			regions: sp.Regions,
		})
	}

	left, center, right := sections[markup.Left], sections[markup.Center], sections[markup.Right]
	width = max(width, left.width+center.width+right.width)
	centerStart := max(left.width, (width-center.width)/2)
	rightStart := max(centerStart+center.width, width-right.width)

	var (
		sb   strings.Builder
		hits []Hit
		col  int
	)
	place := func(sec section, start int) {
		if start > col {
			sb.WriteString(strings.Repeat(" ", start-col))
			col = start
		}
		for _, p := range sec.pieces {
			sb.WriteString(p.text)
			if len(p.regions) > 0 {
				hits = append(hits, Hit{Start: col, End: col + p.width, Regions: p.regions})
			}
			col += p.width
		}
	}
	place(left, 0)
	place(center, centerStart)
	place(right, rightStart)
	if col < width {
		sb.WriteString(strings.Repeat(" ", width-col))
	}

	return Frame{Text: sb.String(), Width: width, Hits: hits}, nil
}

func offsetColumns(px int) int {
	if px <= 0 {
		return 0
	}
	return max(1, (px+PixelsPerCell/2)/PixelsPerCell)
}

func spanStyle(s markup.Style, theme Theme) lipgloss.Style {
	fg, bg := s.Foreground, s.Background
	if fg == "" {
		fg = theme.Foreground
	}
	if bg == "" {
		bg = theme.Background
	}
	if s.Swapped {
		fg, bg = bg, fg
	}

	st := lipgloss.NewStyle()
	if c := terminalColor(fg); c != "" {
		st = st.Foreground(lipgloss.Color(c))
	}
	if c := terminalColor(bg); c != "" {
		st = st.Background(lipgloss.Color(c))
	}
	if s.Underline != "" {
		st = st.Underline(true)
	}
	return st
}

// terminalColor drops the alpha channel of lemonbar's #AARRGGBB colors.
func terminalColor(c string) string {
	if len(c) == 9 && c[0] == '#' {
		return "#" + c[3:]
	}
	return c
}
