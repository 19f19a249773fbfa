package styles

import "testing"

func TestSetNerdfont(t *testing.T) {
	SetNerdfont(false)
	if NerdfontEnabled() {
		t.Error("expected nerdfont to be disabled")
	}
	if CheckSymbol(true) != "[x]" || CheckSymbol(false) != "[ ]" {
		t.Errorf("default check symbols = %q / %q", CheckSymbol(true), CheckSymbol(false))
	}

	SetNerdfont(true)
	if !NerdfontEnabled() {
		t.Error("expected nerdfont to be enabled")
	}
	if CheckSymbol(true) != "\U000f0132" {
		t.Errorf("expected nerdfont checked symbol, got %q", CheckSymbol(true))
	}

	// Reset
	SetNerdfont(false)
}

func TestCurrentSymbols(t *testing.T) {
	SetNerdfont(false)
	symbols := CurrentSymbols()
	if symbols.Cursor != ">" || symbols.Dropdown != "v" {
		t.Errorf("CurrentSymbols() = %+v", symbols)
	}
}
