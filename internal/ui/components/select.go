package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

// Select cycles through a fixed list of options with left/right. The first
// option is usually a placeholder.
type Select struct {
	Label    string
	Options  []string
	Selected int
	Focused  bool
}

// NewSelect creates a select positioned on the first option.
func NewSelect(label string, options []string) Select {
	return Select{Label: label, Options: options}
}

// Update handles left/right (and h/l) when focused.
func (s Select) Update(msg tea.Msg) (Select, tea.Cmd) {
	if !s.Focused || len(s.Options) == 0 {
		return s, nil
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "left", "h":
		s.Selected = (s.Selected - 1 + len(s.Options)) % len(s.Options)
	case "right", "l", "space":
		s.Selected = (s.Selected + 1) % len(s.Options)
	}
	return s, nil
}

// Value returns the selected option.
func (s Select) Value() string {
	if s.Selected < 0 || s.Selected >= len(s.Options) {
		return ""
	}
	return s.Options[s.Selected]
}

// View renders "Label  ‹ value ›".
func (s Select) View() string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(18).Render(s.Label)
	value := "‹ " + s.Value() + " ›"
	if s.Focused {
		return label + theme.Selected.Render(value)
	}
	return label + theme.Unselected.Render(value)
}
