// Package layout describes a bar as a tree of nodes in a YAML or TOML file
// and builds the matching widget tree.
package layout

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
)

// Node is one widget in a layout file.
type Node struct {
	// Type selects the widget: box, text, static, button, clock, battery,
	// volume, address, or a tag name (left, right, fg, font, ...).
	Type string `yaml:"type" toml:"type"`
	// Text is the value of text and static nodes.
	Text string `yaml:"text,omitempty" toml:"text,omitempty"`
	// Arg is the tag argument, e.g. a color or an offset in pixels.
	Arg any `yaml:"arg,omitempty" toml:"arg,omitempty"`
	// Sep joins the children of a box.
	Sep      string `yaml:"sep,omitempty" toml:"sep,omitempty"`
	Children []Node `yaml:"children,omitempty" toml:"children,omitempty"`
	Child    *Node  `yaml:"child,omitempty" toml:"child,omitempty"`
	// Button is the mouse button of a button node, by number or name.
	Button any `yaml:"button,omitempty" toml:"button,omitempty"`
	// Command is spawned when a button is clicked.
	Command string `yaml:"command,omitempty" toml:"command,omitempty"`
	// Action is a built-in click action; "toggle" toggles the child.
	Action string `yaml:"action,omitempty" toml:"action,omitempty"`
	// Options override the configured defaults of leaf widgets.
	Options map[string]any `yaml:"options,omitempty" toml:"options,omitempty"`
}

// Format is a layout file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension. Anything that is not
// .toml is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Decode parses a layout document.
func Decode(data []byte, format Format) (Node, error) {
	var n Node
	var err error
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&n)
	case FormatYAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&n)
	default:
		return Node{}, errors.NewValidationError("unknown layout format").WithValue(string(format))
	}
	if err != nil {
		return Node{}, fmt.Errorf("%w: %w", errors.ErrInvalidLayout, err)
	}
	if n.Type == "" {
		return Node{}, fmt.Errorf("%w: root node has no type", errors.ErrInvalidLayout)
	}
	return n, nil
}

// Load reads and decodes the layout file at path.
func Load(fs afero.Fs, path string) (Node, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Node{}, err
	}
	n, err := Decode(data, FormatOf(path))
	if err != nil {
		return Node{}, errors.Wrapf(err, "layout %s", path)
	}
	return n, nil
}

// Encode renders n in the given format.
func Encode(n Node, format Format) ([]byte, error) {
	if format == FormatTOML {
		return toml.Marshal(n)
	}
	return yaml.Marshal(n)
}
