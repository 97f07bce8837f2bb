package layout

import (
	_ "embed"
)

//go:embed default.yaml
var defaultLayout []byte

// DefaultYAML returns the built-in layout document.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultLayout))
	copy(out, defaultLayout)
	return out
}

// Default returns the built-in layout.
func Default() Node {
	n, err := Decode(defaultLayout, FormatYAML)
	if err != nil {
		panic("layout: built-in layout does not decode: " + err.Error())
	}
	return n
}
