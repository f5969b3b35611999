package welcome

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/common-nighthawk/go-figure"

	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

const bannerCompact = "S A F E T Y   Q U I Z"

var bannerArt = strings.TrimRight(figure.NewFigure("SAFETY QUIZ", "", true).String(), "\n ")

// RenderBanner returns the SAFETY QUIZ banner styled in the primary color.
// Falls back to spaced letters when the art does not fit.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < lipgloss.Width(bannerArt)+4 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
