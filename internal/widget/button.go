package widget

import (
	"context"

	"github.com/Jeropeesee-Bashan/pybar/internal/click"
	"github.com/Jeropeesee-Bashan/pybar/internal/markup"
)

// Button makes its child clickable. The callback is registered once, at
// construction, so the id embedded in the markup stays stable.
type Button struct {
	id     int
	button markup.MouseButton
	child  *Box
}

// NewButton registers cb with reg and wraps child in a click region.
func NewButton(reg *click.Registry, child Widget, cb *click.Callback, opts ...ButtonOption) *Button {
	cfg := buttonConfig{button: markup.ButtonLeft}
	for _, opt := range opts {
		opt(&cfg)
	}
	if child == nil {
		child = NewText("")
	}
	return &Button{
		id:     reg.Register(cb),
		button: cfg.button,
		child:  NewBox([]Widget{child}),
	}
}

// ID returns the registry id of the callback.
func (b *Button) ID() int { return b.id }

// MouseButton returns the triggering mouse button.
func (b *Button) MouseButton() markup.MouseButton { return b.button }

// Child returns the wrapped widget.
func (b *Button) Child() Widget {
	w, _ := b.child.At(0)
	return w
}

// SetChild swaps the wrapped widget; live subscriptions switch over.
func (b *Button) SetChild(w Widget) error {
	return b.child.Replace(0, w)
}

// Subscribe emits every child value wrapped in a click region.
func (b *Button) Subscribe(ctx context.Context) <-chan string {
	return Map(ctx, b.child, func(v string) string {
		return markup.Click(b.button, b.id, v)
	})
}
