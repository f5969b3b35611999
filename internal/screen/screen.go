// Package screen defines the contract between the router and the
// individual terminal screens.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/safetyquiz/internal/ui/layout"
)

// Screen is one page of the app. The router owns the header and footer;
// View draws only the body.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// BackHandler lets a screen intercept Esc. HandleBack returns true when it
// consumed the key (cancelling a prompt, asking to confirm leaving); false
// lets the router pop the screen, and the screen should release anything
// it holds.
type BackHandler interface {
	HandleBack() bool
}
