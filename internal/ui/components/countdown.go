package components

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

// Countdown draws the time left as "m:ss" followed by a shrinking bar.
type Countdown struct {
	Remaining time.Duration
	Total     time.Duration
	Width     int
	// Warn is the remaining time below which the countdown turns red.
	Warn time.Duration
}

func (c Countdown) fraction() float64 {
	if c.Total <= 0 {
		return 0
	}
	f := float64(c.Remaining) / float64(c.Total)
	return min(max(f, 0), 1)
}

func (c Countdown) View() string {
	secs := int(max(c.Remaining, 0).Seconds())
	label := fmt.Sprintf("T %d:%02d", secs/60, secs%60)

	labelStyle := lipgloss.NewStyle().Foreground(theme.Accent)
	fill := lipgloss.NewStyle().Background(theme.Secondary)
	if c.Remaining <= c.Warn {
		labelStyle = theme.Incorrect
		fill = lipgloss.NewStyle().Background(theme.Error)
	}

	barWidth := max(c.Width-lipgloss.Width(label)-1, 0)
	if barWidth < 4 {
		return labelStyle.Render(label)
	}
	filled := int(float64(barWidth)*c.fraction() + 0.5)
	empty := lipgloss.NewStyle().Background(theme.Border)
	return labelStyle.Render(label) + " " +
		fill.Render(strings.Repeat(" ", filled)) +
		empty.Render(strings.Repeat(" ", barWidth-filled))
}
