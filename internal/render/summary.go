package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// SummaryRow is one line of the migration summary table.
type SummaryRow struct {
	Label string
	Value string
}

// Count formats an integer summary value.
func Count(n int) string {
	return fmt.Sprintf("%d", n)
}

// SummaryTable renders migration counts as a two-column table.
func SummaryTable(title string, rows []SummaryRow) string {
	headerStyle := lipgloss.NewStyle().Bold(true)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, r := range rows {
		tbl.Row(r.Label, r.Value)
	}

	var b strings.Builder
	b.WriteString(StyledText(title, headerStyle))
	b.WriteString("\n")
	b.WriteString(tbl.Render())
	return b.String()
}
