// Package bind keeps UI controls and persisted settings in sync.
//
// A control is attached to a settings key once. Attach pushes the current
// value into the control and subscribes to the control's change
// notifications, writing every change straight back to the store.
//
// Controls are described by capabilities rather than concrete widget types:
//
//   - [Checkable]: a two-state check box
//   - [TextSelectable]: a combo box with predefined texts and free editing
//
// Any toolkit can be bound by implementing one of them in a thin adapter.
package bind

import (
	"context"
	"fmt"

	"github.com/raphi011/settle/internal/log"
	"github.com/raphi011/settle/internal/settings"
)

// Checkable is a control with a boolean check state.
type Checkable interface {
	// Tristate reports whether the control has a third, partial state.
	Tristate() bool
	SetChecked(checked bool)
	OnCheckedChanged(fn func(checked bool))
}

// TextSelectable is a control offering predefined texts and free editing.
type TextSelectable interface {
	// FindText returns the position of text among the predefined texts,
	// or -1.
	FindText(text string) int
	ItemText(index int) string
	SetCurrentIndex(index int)
	SetEditText(text string)
	OnSelectionChanged(fn func(index int))
	OnTextEdited(fn func(text string))
}

// UnsupportedControlError is returned by Attach for controls it cannot bind.
type UnsupportedControlError struct {
	Key    string
	Reason string
}

func (e *UnsupportedControlError) Error() string {
	return fmt.Sprintf("cannot bind control to %q: %s", e.Key, e.Reason)
}

// ErrorHandler receives store write failures raised from control listeners.
type ErrorHandler func(key string, err error)

// SavedHandler is called after a listener stored the value of key.
type SavedHandler func(key string)

// Binder attaches controls to keys of a store.
type Binder struct {
	store   *settings.Store
	onError ErrorHandler
	onSaved SavedHandler
}

// Option configures a Binder.
type Option func(*Binder)

// WithErrorHandler replaces the default handler, which logs a warning.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Binder) {
		b.onError = h
	}
}

// WithSavedHandler registers h for successful listener writes, so that
// callers can clear errors reported earlier for the same key.
func WithSavedHandler(h SavedHandler) Option {
	return func(b *Binder) {
		b.onSaved = h
	}
}

// New creates a binder over store. Listener write failures are logged
// through the logger carried by ctx unless WithErrorHandler is given.
func New(ctx context.Context, store *settings.Store, opts ...Option) *Binder {
	l := log.FromContext(ctx)
	b := &Binder{
		store: store,
		onError: func(key string, err error) {
			l.Warn("could not save setting", "key", key, "err", err)
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach synchronizes control with key and keeps key updated on every
// change notification of control.
func (b *Binder) Attach(control any, key string) error {
	checkable, isCheckable := control.(Checkable)
	selectable, isSelectable := control.(TextSelectable)

	switch {
	case isCheckable && isSelectable:
		return &UnsupportedControlError{Key: key, Reason: fmt.Sprintf("%T is both checkable and text-selectable", control)}
	case isCheckable:
		return b.attachCheckable(checkable, key)
	case isSelectable:
		return b.attachSelectable(selectable, key)
	}
	return &UnsupportedControlError{Key: key, Reason: fmt.Sprintf("%T has no supported capability", control)}
}

func (b *Binder) attachCheckable(c Checkable, key string) error {
	if c.Tristate() {
		return &UnsupportedControlError{Key: key, Reason: "tri-state check boxes are not supported"}
	}

	checked, err := b.store.Bool(key)
	if err != nil {
		return err
	}
	c.SetChecked(checked)

	c.OnCheckedChanged(func(checked bool) {
		b.write(key, checked)
	})
	return nil
}

func (b *Binder) attachSelectable(c TextSelectable, key string) error {
	v, err := b.store.Value(key)
	if err != nil {
		return err
	}
	text := settings.Text(v)

	if i := c.FindText(text); i >= 0 {
		c.SetCurrentIndex(i)
	} else {
		c.SetEditText(text)
	}

	c.OnSelectionChanged(func(index int) {
		b.write(key, c.ItemText(index))
	})
	c.OnTextEdited(func(text string) {
		b.write(key, text)
	})
	return nil
}

func (b *Binder) write(key string, v any) {
	if err := b.store.Set(key, v); err != nil {
		b.onError(key, err)
		return
	}
	if b.onSaved != nil {
		b.onSaved(key)
	}
}
