package static

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestTable_Render(t *testing.T) {
	t.Parallel()

	got := ansi.Strip(Table{
		Headers: []string{"NAME", "DESCRIPTION"},
		Rows: [][]string{
			{"recent", "remember install paths"},
			{"notify", "echo done"},
		},
	}.Render())

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and 2 rows:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[0], "NAME") || !strings.Contains(lines[0], "DESCRIPTION") {
		t.Errorf("header = %q", lines[0])
	}
	// Columns are aligned
	if strings.Index(lines[1], "remember") != strings.Index(lines[2], "echo") {
		t.Errorf("description column not aligned:\n%s", got)
	}
}

func TestTable_Highlight(t *testing.T) {
	t.Parallel()

	tbl := Table{
		Headers:   []string{"NAME"},
		Rows:      [][]string{{"plain"}, {"marked"}},
		Highlight: func(row int) bool { return row == 1 },
	}
	out := tbl.Render()

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "plain") && line != ansi.Strip(line) {
			t.Errorf("plain row should not be styled: %q", line)
		}
		if strings.Contains(line, "marked") && line == ansi.Strip(line) {
			t.Errorf("highlighted row should be styled: %q", line)
		}
	}
}

func TestTable_Empty(t *testing.T) {
	t.Parallel()

	if got := (Table{Headers: []string{"NAME"}}).Render(); got != "" {
		t.Errorf("Render() without rows = %q, want empty", got)
	}
}
