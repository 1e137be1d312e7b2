package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Render(t *testing.T) {
	table := NewTable("ID", "Name", "Balance").AlignRight(2)
	table.AddRow("1", "Checking", "$1,200.00")
	table.AddRow("2", "Pocket", "$4.00")
	table.AddRow("3")

	assert.Equal(t, 3, table.Len())

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Header, its bottom border, then one line per row.
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Balance")
	assert.Contains(t, out, "Checking")

	// Right-aligned amounts end in the same column.
	checking := strings.TrimRight(lines[2], " ")
	pocket := strings.TrimRight(lines[3], " ")
	assert.Equal(t, lipgloss.Width(checking), lipgloss.Width(pocket))
}

func TestTable_Empty(t *testing.T) {
	table := NewTable("ID", "Name")
	assert.Equal(t, 0, table.Len())
	assert.Contains(t, table.Render(), "Name")
}
