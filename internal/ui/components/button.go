package components

import (
	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

// Button is an action label with the key that triggers it, e.g. "[Enter] Finish".
type Button struct {
	Key    string
	Label  string
	Active bool
}

// NewButton returns an active button.
func NewButton(key, label string) Button {
	return Button{Key: key, Label: label, Active: true}
}

func (b Button) View() string {
	text := " " + b.Label + " "
	if b.Key != "" {
		text = " [" + b.Key + "]" + text
	}
	if b.Active {
		return theme.ButtonActive.Render(text)
	}
	return theme.ButtonInactive.Render(text)
}
