// Package markup implements the lemonbar tag vocabulary: formatting tags,
// click regions and escaping of literal text.
package markup

import (
	"fmt"
	"strings"
)

// Tag identifies one formatting tag of the render target.
type Tag int

const (
	SwapColor Tag = iota
	AlignLeft
	AlignCenter
	AlignRight
	Offset
	BackgroundColor
	ForegroundColor
	Font
	UnderlineColor
)

type tagSpec struct {
	letter     byte
	name       string
	hasArg     bool
	defaultArg string
}

// tags maps every Tag to its lemonbar letter and default argument.
var tags = [...]tagSpec{
	SwapColor:       {letter: 'R', name: "swap"},
	AlignLeft:       {letter: 'l', name: "left"},
	AlignCenter:     {letter: 'c', name: "center"},
	AlignRight:      {letter: 'r', name: "right"},
	Offset:          {letter: 'O', name: "offset", hasArg: true, defaultArg: "0"},
	BackgroundColor: {letter: 'B', name: "bg", hasArg: true, defaultArg: "-"},
	ForegroundColor: {letter: 'F', name: "fg", hasArg: true, defaultArg: "-"},
	Font:            {letter: 'T', name: "font", hasArg: true, defaultArg: "-"},
	UnderlineColor:  {letter: 'U', name: "underline", hasArg: true, defaultArg: "-"},
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool {
	return t >= 0 && int(t) < len(tags)
}

// Letter returns the lemonbar command letter of t.
func (t Tag) Letter() byte {
	if !t.Valid() {
		return 0
	}
	return tags[t].letter
}

// TakesArg reports whether the tag carries an argument.
func (t Tag) TakesArg() bool {
	return t.Valid() && tags[t].hasArg
}

// DefaultArg returns the argument used when none is given.
func (t Tag) DefaultArg() string {
	if !t.Valid() {
		return ""
	}
	return tags[t].defaultArg
}

func (t Tag) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tag(%d)", int(t))
	}
	return tags[t].name
}

// ParseTag looks a tag up by its configuration name ("fg", "font", ...).
func ParseTag(name string) (Tag, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, def := range tags {
		if def.name == name {
			return Tag(i), true
		}
	}
	return 0, false
}

// TagNames returns the configuration names of all tags in Tag order.
func TagNames() []string {
	names := make([]string, len(tags))
	for i, def := range tags {
		names[i] = def.name
	}
	return names
}

// Open returns the opening tag, e.g. "%{F#ff0000}". Tags without an
// argument ignore arg.
func Open(t Tag, arg string) string {
	if !t.TakesArg() {
		arg = ""
	}
	return "%{" + string(t.Letter()) + arg + "}"
}

// Format prefixes value with the opening tag of t.
func Format(t Tag, arg, value string) string {
	return Open(t, arg) + value
}

// MouseButton is a lemonbar mouse button code.
type MouseButton int

const (
	ButtonLeft       MouseButton = 1
	ButtonMiddle     MouseButton = 2
	ButtonRight      MouseButton = 3
	ButtonScrollUp   MouseButton = 4
	ButtonScrollDown MouseButton = 5
)

// Valid reports whether b is one of the codes lemonbar understands.
func (b MouseButton) Valid() bool {
	return b >= ButtonLeft && b <= ButtonScrollDown
}

// Click wraps value in a click region that reports id when pressed with b.
func Click(b MouseButton, id int, value string) string {
	return fmt.Sprintf("%%{A%d:%d:}%s%%{A}", int(b), id, value)
}

// Escape doubles every '%' so text is not parsed as a tag.
func Escape(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}
