package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

// TextInput is a single-line form field. Number fields drop any key that is
// not a digit. After Mark the field shows a check or a cross next to it.
type TextInput struct {
	Model  textinput.Model
	digits bool
	marked bool
	valid  bool
}

// NewTextInput returns an unfocused field holding at most limit runes.
func NewTextInput(placeholder string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return TextInput{Model: ti}
}

// NewNumberInput returns a field that accepts up to digits decimal digits.
func NewNumberInput(placeholder string, digits int) TextInput {
	t := NewTextInput(placeholder, digits)
	t.digits = true
	return t
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		if t.digits && kmsg.Text != "" && strings.Trim(kmsg.Text, "0123456789") != "" {
			return t, nil
		}
		t.marked = false
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	view := t.Model.View()
	switch {
	case !t.marked:
	case t.valid:
		view += " " + theme.Correct.Render("✓")
	default:
		view += " " + theme.Incorrect.Render("✗")
	}
	return view
}

func (t TextInput) Value() string {
	return t.Model.Value()
}

// Number parses the field as a decimal integer.
func (t TextInput) Number() (int, error) {
	return strconv.Atoi(strings.TrimSpace(t.Model.Value()))
}

// Mark records the outcome of validating the field. Typing clears it.
func (t *TextInput) Mark(valid bool) {
	t.marked = true
	t.valid = valid
}

func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

func (t *TextInput) Blur() {
	t.Model.Blur()
}

func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}
