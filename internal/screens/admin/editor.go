package admin

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/safetyquiz/internal/quizconfig"
	"github.com/abhisek/safetyquiz/internal/router"
	"github.com/abhisek/safetyquiz/internal/screen"
	"github.com/abhisek/safetyquiz/internal/ui/components"
	"github.com/abhisek/safetyquiz/internal/ui/layout"
	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

const (
	editTitle = iota
	editText
	editImage
	editPrompt
	editFieldCount
)

// EditorScreen adds a new question or edits an existing one.
type EditorScreen struct {
	bank     QuestionBank
	original *quizconfig.Question

	title   components.TextInput
	text    textarea.Model
	enabled components.Select
	prompt  textarea.Model
	focus   int
	errMsg  string
}

var _ screen.Screen = (*EditorScreen)(nil)
var _ screen.KeyHintProvider = (*EditorScreen)(nil)

// NewEditor creates an editor for q, or for a new question when q is nil.
func NewEditor(bank QuestionBank, q *quizconfig.Question) *EditorScreen {
	base := quizconfig.NewQuestion()
	if q != nil {
		base = *q
	}
	e := &EditorScreen{
		bank:     bank,
		original: q,
		title:    components.NewTextInput(quizconfig.DefaultScenarioTitle, 80),
		text:     newArea("Describe the scenario...", 5),
		enabled:  components.NewSelect("Image enabled", []string{"Yes", "No"}),
		prompt:   newArea("Blank uses the built-in detailed prompt", 4),
	}
	e.title.SetValue(base.ScenarioTitle)
	e.text.SetValue(base.QuestionText)
	e.prompt.SetValue(base.ImagePrompt)
	if !base.ImageEnabled {
		e.enabled.Selected = 1
	}
	e.setFocus(editTitle)
	return e
}

func newArea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(height)
	return ta
}

func (e *EditorScreen) setFocus(field int) tea.Cmd {
	e.focus = (field + editFieldCount) % editFieldCount
	e.title.Blur()
	e.text.Blur()
	e.prompt.Blur()
	e.enabled.Focused = e.focus == editImage
	switch e.focus {
	case editTitle:
		return e.title.Focus()
	case editText:
		return e.text.Focus()
	case editPrompt:
		return e.prompt.Focus()
	}
	return nil
}

func (e *EditorScreen) Init() tea.Cmd {
	return nil
}

func (e *EditorScreen) Title() string {
	if e.original == nil {
		return "New Question"
	}
	return "Edit " + e.original.ID
}

func (e *EditorScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl+S", Description: "Save"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (e *EditorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return e, nil
	}
	switch kmsg.String() {
	case "tab":
		return e, e.setFocus(e.focus + 1)
	case "shift+tab":
		return e, e.setFocus(e.focus - 1)
	case "ctrl+s":
		return e, e.save()
	}

	var cmd tea.Cmd
	switch e.focus {
	case editTitle:
		e.title, cmd = e.title.Update(msg)
	case editText:
		e.text, cmd = e.text.Update(msg)
	case editImage:
		e.enabled, cmd = e.enabled.Update(msg)
	case editPrompt:
		e.prompt, cmd = e.prompt.Update(msg)
	}
	return e, cmd
}

func (e *EditorScreen) question() quizconfig.Question {
	q := quizconfig.NewQuestion()
	if e.original != nil {
		q = *e.original
	}
	q.ScenarioTitle = strings.TrimSpace(e.title.Value())
	if q.ScenarioTitle == "" {
		q.ScenarioTitle = quizconfig.DefaultScenarioTitle
	}
	q.QuestionText = strings.TrimSpace(e.text.Value())
	q.ImageEnabled = e.enabled.Value() == "Yes"
	q.ImagePrompt = strings.TrimSpace(e.prompt.Value())
	return q
}

// save persists the question, then returns to the admin screen and tells it
// to reload.
func (e *EditorScreen) save() tea.Cmd {
	q := e.question()
	id := q.ID
	var err error
	if e.original == nil {
		id, err = e.bank.AddQuestion(q)
	} else {
		err = e.bank.UpdateQuestion(e.original.ID, q)
	}
	if err != nil {
		e.errMsg = "Could not save question: " + err.Error()
		return nil
	}
	return tea.Sequence(
		func() tea.Msg { return router.PopScreenMsg{} },
		func() tea.Msg { return questionsChangedMsg{id: id} },
	)
}

func (e *EditorScreen) View(width, height int) string {
	w := min(max(width-12, 40), 96)
	e.text.SetWidth(w - 4)
	e.prompt.SetWidth(w - 4)

	label := func(name string, field int) string {
		if e.focus == field {
			return theme.Selected.Render(name)
		}
		return theme.Label.Render(name)
	}

	var b strings.Builder
	b.WriteString(label("Scenario title", editTitle))
	b.WriteString("\n")
	b.WriteString(e.title.View())
	b.WriteString("\n\n")
	b.WriteString(label("Question text", editText))
	b.WriteString("\n")
	b.WriteString(e.text.View())
	b.WriteString("\n\n")
	b.WriteString(e.enabled.View())
	b.WriteString("\n\n")
	b.WriteString(label("Image prompt", editPrompt))
	b.WriteString("\n")
	b.WriteString(e.prompt.View())
	if e.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(e.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, theme.Card.Width(w).Render(b.String()))
}
