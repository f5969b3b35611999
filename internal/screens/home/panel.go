package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

const titleCompact = "S · A · F · E · T · Y   Q · U · I · Z"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(titleCompact))
}

// renderStatsBar renders the bank and results summary in a bordered box.
func renderStatsBar(st Stats, cw int, compact bool) string {
	qStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	pStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	sStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			qStyle.Render(fmt.Sprintf("Q%d", st.Questions)),
			pStyle.Render(fmt.Sprintf("P%d", st.Participants)),
			sStyle.Render(fmt.Sprintf("≥%d", st.PassingScore)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			qStyle.Render(fmt.Sprintf("%d QUESTIONS", st.Questions)),
			pStyle.Render(fmt.Sprintf("%d PASSED", st.Participants)),
			sStyle.Render(fmt.Sprintf("PASS ≥ %d/10", st.PassingScore)),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Primary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	buttons := make([]string, 0, len(items))
	for i, label := range items {
		if i == selected {
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		} else {
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, buttons...))
}

// renderFrame wraps content in a double border, centered in the given area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
