package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

// RenderChart draws one horizontal bar per company, scaled to
// TargetPerCompany, within width columns.
func RenderChart(rows []Completion, width int) string {
	if len(rows) == 0 {
		return theme.Hint.Render(NoChartMessage)
	}

	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(r.Label()))
	}
	countWidth := len(fmt.Sprintf(" %d/%d", TargetPerCompany, TargetPerCompany))
	barWidth := max(width-labelWidth-countWidth-2, 10)

	labelStyle := lipgloss.NewStyle().Foreground(theme.Text).Width(labelWidth)
	filledStyle := lipgloss.NewStyle().Background(theme.Secondary)
	doneStyle := lipgloss.NewStyle().Background(theme.Success)
	emptyStyle := lipgloss.NewStyle().Background(theme.Border)
	countStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Completion by company (target %d)", TargetPerCompany)))
	b.WriteString("\n\n")
	for _, r := range rows {
		filled := int(float64(barWidth) * r.Percent())
		fill := filledStyle
		if r.Count >= TargetPerCompany {
			fill = doneStyle
		}
		b.WriteString(labelStyle.Render(r.Label()))
		b.WriteString("  ")
		b.WriteString(fill.Render(strings.Repeat(" ", filled)))
		b.WriteString(emptyStyle.Render(strings.Repeat(" ", barWidth-filled)))
		b.WriteString(countStyle.Render(fmt.Sprintf(" %d/%d", r.Count, TargetPerCompany)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
