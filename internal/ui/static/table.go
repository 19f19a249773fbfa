// Package static renders non-interactive terminal output.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/settle/internal/ui/styles"
)

// Table is a borderless table with a bold header row.
type Table struct {
	Headers []string
	Rows    [][]string

	// Highlight reports rows rendered with the accent style.
	Highlight func(row int) bool
}

// Render returns the table followed by a newline, or "" without rows.
func (t Table) Render() string {
	if len(t.Rows) == 0 {
		return ""
	}

	tbl := table.New().
		Headers(t.Headers...).
		Rows(t.Rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle()
			if col < len(t.Headers)-1 {
				cell = cell.PaddingRight(2)
			}
			switch {
			case row == table.HeaderRow:
				return cell.Bold(true)
			case t.Highlight != nil && t.Highlight(row):
				return cell.Foreground(styles.Accent)
			}
			return cell
		})

	var b strings.Builder
	b.WriteString(tbl.String())
	b.WriteString("\n")
	return b.String()
}
