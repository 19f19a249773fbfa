package controls

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/settle/internal/ui/styles"
)

// Checkbox is a two-state check box toggled with space or x.
type Checkbox struct {
	label     string
	checked   bool
	focused   bool
	listeners []func(bool)
}

// NewCheckbox creates an unchecked check box.
func NewCheckbox(label string) *Checkbox {
	return &Checkbox{label: label}
}

func (c *Checkbox) Label() string  { return c.label }
func (c *Checkbox) Checked() bool  { return c.checked }
func (c *Checkbox) Focused() bool  { return c.focused }
func (c *Checkbox) Tristate() bool { return false }
func (c *Checkbox) Focus()         { c.focused = true }
func (c *Checkbox) Blur()          { c.focused = false }

// SetChecked sets the state without notifying listeners.
func (c *Checkbox) SetChecked(checked bool) {
	c.checked = checked
}

// OnCheckedChanged registers fn to run after every toggle.
func (c *Checkbox) OnCheckedChanged(fn func(checked bool)) {
	c.listeners = append(c.listeners, fn)
}

// Toggle flips the state and notifies listeners.
func (c *Checkbox) Toggle() {
	c.checked = !c.checked
	for _, fn := range c.listeners {
		fn(c.checked)
	}
}

// Update handles key presses while the check box is focused.
func (c *Checkbox) Update(msg tea.Msg) (*Checkbox, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || !c.focused {
		return c, nil
	}
	switch key.String() {
	case "space", "x":
		c.Toggle()
	}
	return c, nil
}

func (c *Checkbox) View() string {
	var b strings.Builder

	box := styles.CheckSymbol(c.checked)
	if c.checked {
		b.WriteString(styles.SuccessStyle.Render(box))
	} else {
		b.WriteString(styles.MutedStyle.Render(box))
	}
	b.WriteString(" ")

	if c.focused {
		b.WriteString(styles.AccentStyle.Render(c.label))
	} else {
		b.WriteString(styles.NormalStyle.Render(c.label))
	}
	return b.String()
}
