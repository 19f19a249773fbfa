package controls

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/sahilm/fuzzy"

	"github.com/raphi011/settle/internal/ui/styles"
)

// maxVisibleItems bounds the expanded option list.
const maxVisibleItems = 5

// ComboBox is an editable text field with a fuzzy-filtered list of
// predefined items. Typing edits the text; down opens the list, enter picks
// the highlighted item.
type ComboBox struct {
	label    string
	items    []string
	input    textinput.Model
	current  int
	expanded bool
	filtered []fuzzy.Match
	cursor   int

	selectionListeners []func(int)
	editListeners      []func(string)
}

// NewComboBox creates a combo box offering items. No item is current.
func NewComboBox(label string, items []string) *ComboBox {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.SetWidth(40)

	c := &ComboBox{
		label:   label,
		items:   items,
		input:   ti,
		current: -1,
	}
	c.applyFilter()
	return c
}

func (c *ComboBox) Label() string     { return c.label }
func (c *ComboBox) Items() []string   { return c.items }
func (c *ComboBox) Text() string      { return c.input.Value() }
func (c *ComboBox) CurrentIndex() int { return c.current }
func (c *ComboBox) Expanded() bool    { return c.expanded }
func (c *ComboBox) Focused() bool     { return c.input.Focused() }
func (c *ComboBox) Focus() tea.Cmd    { return c.input.Focus() }

// Blur removes focus and collapses the item list.
func (c *ComboBox) Blur() {
	c.input.Blur()
	c.expanded = false
}

// FindText returns the index of the item equal to text, or -1.
func (c *ComboBox) FindText(text string) int {
	for i, item := range c.items {
		if item == text {
			return i
		}
	}
	return -1
}

// ItemText returns the item at index, or "" when index is out of range.
func (c *ComboBox) ItemText(index int) string {
	if index < 0 || index >= len(c.items) {
		return ""
	}
	return c.items[index]
}

// SetCurrentIndex makes the item at index current and shows its text.
// An out of range index clears the current item.
func (c *ComboBox) SetCurrentIndex(index int) {
	if index < 0 || index >= len(c.items) {
		c.current = -1
		return
	}
	c.current = index
	c.input.SetValue(c.items[index])
	c.input.CursorEnd()
	c.applyFilter()
}

// SetEditText replaces the edited text.
func (c *ComboBox) SetEditText(text string) {
	c.input.SetValue(text)
	c.input.CursorEnd()
	c.applyFilter()
}

// OnSelectionChanged registers fn to run when the user picks an item.
func (c *ComboBox) OnSelectionChanged(fn func(index int)) {
	c.selectionListeners = append(c.selectionListeners, fn)
}

// OnTextEdited registers fn to run after every edit of the text.
func (c *ComboBox) OnTextEdited(fn func(text string)) {
	c.editListeners = append(c.editListeners, fn)
}

// Update handles key presses while the combo box is focused.
func (c *ComboBox) Update(msg tea.Msg) (*ComboBox, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}
	if !c.input.Focused() {
		return c, nil
	}

	switch key.String() {
	case "down", "ctrl+n":
		if !c.expanded {
			c.expanded = true
			return c, nil
		}
		if c.cursor < len(c.filtered)-1 {
			c.cursor++
		}
		return c, nil
	case "up", "ctrl+p":
		if c.expanded && c.cursor > 0 {
			c.cursor--
		}
		return c, nil
	case "enter":
		if c.expanded && len(c.filtered) > 0 {
			c.pick(c.filtered[c.cursor].Index)
		}
		c.expanded = false
		return c, nil
	case "esc":
		c.expanded = false
		return c, nil
	}

	before := c.input.Value()
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(key)
	if text := c.input.Value(); text != before {
		c.current = c.FindText(text)
		c.expanded = true
		c.applyFilter()
		for _, fn := range c.editListeners {
			fn(text)
		}
	}
	return c, cmd
}

// pick makes the item at index current and notifies selection listeners.
func (c *ComboBox) pick(index int) {
	c.current = index
	c.input.SetValue(c.items[index])
	c.input.CursorEnd()
	c.applyFilter()
	for _, fn := range c.selectionListeners {
		fn(index)
	}
}

func (c *ComboBox) applyFilter() {
	text := c.input.Value()
	if text == "" || c.FindText(text) >= 0 {
		// Show everything while empty or on an exact item
		c.filtered = make([]fuzzy.Match, len(c.items))
		for i, item := range c.items {
			c.filtered[i] = fuzzy.Match{Str: item, Index: i}
		}
	} else {
		// Results are sorted by score (best first)
		c.filtered = fuzzy.Find(text, c.items)
	}

	if c.cursor >= len(c.filtered) {
		c.cursor = max(0, len(c.filtered)-1)
	}
}

// Matches returns the items currently offered, best match first.
func (c *ComboBox) Matches() []string {
	out := make([]string, len(c.filtered))
	for i, m := range c.filtered {
		out[i] = m.Str
	}
	return out
}

func (c *ComboBox) View() string {
	var b strings.Builder

	label := styles.NormalStyle.Render(c.label)
	if c.input.Focused() {
		label = styles.AccentStyle.Render(c.label)
	}
	b.WriteString(label + "\n")
	b.WriteString(c.input.View())
	if len(c.items) > 0 {
		b.WriteString(" " + styles.MutedStyle.Render(styles.CurrentSymbols().Dropdown))
	}

	if !c.expanded {
		return b.String()
	}

	if len(c.filtered) == 0 {
		b.WriteString("\n  " + styles.MutedStyle.Render("no matches"))
		return b.String()
	}

	start := max(0, c.cursor-maxVisibleItems+1)
	end := min(len(c.filtered), start+maxVisibleItems)
	for i := start; i < end; i++ {
		m := c.filtered[i]
		b.WriteString("\n")
		if i == c.cursor {
			b.WriteString(styles.AccentStyle.Render(styles.CurrentSymbols().Cursor) + " ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(highlightMatches(m.Str, m.MatchedIndexes, i == c.cursor))
	}
	return b.String()
}

// highlightMatches renders the item with matched characters highlighted.
func highlightMatches(item string, matchedIndexes []int, isSelected bool) string {
	matchSet := make(map[int]bool, len(matchedIndexes))
	for _, idx := range matchedIndexes {
		matchSet[idx] = true
	}

	var result strings.Builder
	for i, r := range item {
		char := string(r)
		switch {
		case matchSet[i]:
			result.WriteString(styles.HighlightStyle.Render(char))
		case isSelected:
			result.WriteString(styles.AccentStyle.Render(char))
		default:
			result.WriteString(styles.NormalStyle.Render(char))
		}
	}
	return result.String()
}
