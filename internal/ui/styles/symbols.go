package styles

// Symbols holds the glyphs drawn by the terminal controls
type Symbols struct {
	Checked   string
	Unchecked string
	Cursor    string
	Dropdown  string
}

// Default symbols (ASCII-safe)
var defaultSymbols = Symbols{
	Checked:   "[x]",
	Unchecked: "[ ]",
	Cursor:    ">",
	Dropdown:  "v",
}

// Nerd font symbols
var nerdfontSymbols = Symbols{
	Checked:   "\U000f0132", // nf-md-checkbox_marked
	Unchecked: "\U000f0131", // nf-md-checkbox_blank_outline
	Cursor:    "\uf054",     // nf-fa-chevron_right
	Dropdown:  "\uf078",     // nf-fa-chevron_down
}

// useNerdfont tracks whether nerd font symbols are enabled
var useNerdfont bool

// currentSymbols holds the active symbol set
var currentSymbols = defaultSymbols

// SetNerdfont enables or disables nerd font symbols
func SetNerdfont(enabled bool) {
	useNerdfont = enabled
	if enabled {
		currentSymbols = nerdfontSymbols
	} else {
		currentSymbols = defaultSymbols
	}
}

// NerdfontEnabled returns whether nerd font symbols are enabled
func NerdfontEnabled() bool {
	return useNerdfont
}

// CurrentSymbols returns the current symbol set
func CurrentSymbols() Symbols {
	return currentSymbols
}

// CheckSymbol returns the box glyph for a check state.
func CheckSymbol(checked bool) string {
	if checked {
		return currentSymbols.Checked
	}
	return currentSymbols.Unchecked
}
