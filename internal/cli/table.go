package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows as aligned columns.
type Table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, right: map[int]bool{}}
}

// AlignRight right-aligns the given columns, typically amounts.
func (t *Table) AlignRight(columns ...int) *Table {
	for _, c := range columns {
		t.right[c] = true
	}
	return t
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the table as a string.
func (t *Table) Render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i := range widths {
			if i < len(row) {
				widths[i] = max(widths[i], lipgloss.Width(row[i]))
			}
		}
	}

	var b strings.Builder
	header := make([]string, len(t.headers))
	for i, h := range t.headers {
		header[i] = t.cell(i, h, widths[i])
	}
	b.WriteString(TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, header...)))
	b.WriteString("\n")

	for _, row := range t.rows {
		cells := make([]string, len(t.headers))
		for i := range t.headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			cells[i] = t.cell(i, value, widths[i])
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Table) cell(column int, value string, width int) string {
	style := TableCellStyle.Width(width + TableCellStyle.GetPaddingRight())
	if t.right[column] {
		style = style.Align(lipgloss.Right)
	}
	return style.Render(value)
}
