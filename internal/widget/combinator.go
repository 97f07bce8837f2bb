package widget

import (
	"context"

	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
)

// Combinator prefixes every value of its child with one formatting tag.
type Combinator struct {
	tag   markup.Tag
	arg   string
	child *Box
}

// NewCombinator wraps child with tag. A nil child renders as empty text,
// which turns the combinator into a bare tag (for example a color reset).
// An empty arg selects the tag's default argument.
func NewCombinator(tag markup.Tag, arg string, child Widget) *Combinator {
	if child == nil {
		child = NewText("")
	}
	if arg == "" {
		arg = tag.DefaultArg()
	}
	return &Combinator{
		tag:   tag,
		arg:   arg,
		child: NewBox([]Widget{child}),
	}
}

// Tag returns the formatting tag.
func (c *Combinator) Tag() markup.Tag { return c.tag }

// Arg returns the tag argument.
func (c *Combinator) Arg() string { return c.arg }

// Child returns the wrapped widget.
func (c *Combinator) Child() Widget {
	w, _ := c.child.At(0)
	return w
}

// SetChild swaps the wrapped widget; live subscriptions switch over.
func (c *Combinator) SetChild(w Widget) error {
	return c.child.Replace(0, w)
}

// Subscribe emits the formatted value for every child value.
func (c *Combinator) Subscribe(ctx context.Context) <-chan string {
	return Map(ctx, c.child, func(v string) string {
		return markup.Format(c.tag, c.arg, v)
	})
}

// SwapColor swaps foreground and background for child.
func SwapColor(child Widget) *Combinator {
	return NewCombinator(markup.SwapColor, "", child)
}

// AlignLeft moves child to the left section of the bar.
func AlignLeft(child Widget) *Combinator {
	return NewCombinator(markup.AlignLeft, "", child)
}

// AlignCenter moves child to the center section of the bar.
func AlignCenter(child Widget) *Combinator {
	return NewCombinator(markup.AlignCenter, "", child)
}

// AlignRight moves child to the right section of the bar.
func AlignRight(child Widget) *Combinator {
	return NewCombinator(markup.AlignRight, "", child)
}

// Offset shifts child by px pixels.
func Offset(child Widget, px string) *Combinator {
	return NewCombinator(markup.Offset, px, child)
}

// BColor sets the background color. "-" resets it.
func BColor(child Widget, color string) *Combinator {
	return NewCombinator(markup.BackgroundColor, color, child)
}

// FColor sets the foreground color. "-" resets it.
func FColor(child Widget, color string) *Combinator {
	return NewCombinator(markup.ForegroundColor, color, child)
}

// Font selects a font by its 1-based index. "-" resets it.
func Font(child Widget, index string) *Combinator {
	return NewCombinator(markup.Font, index, child)
}

// UColor sets the underline color. "-" resets it.
func UColor(child Widget, color string) *Combinator {
	return NewCombinator(markup.UnderlineColor, color, child)
}
