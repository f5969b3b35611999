// Package admin is the administrator dashboard: completion chart, raw
// results, question bank, quiz settings and reminders.
package admin

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/notify"
	"github.com/abhisek/safetyquiz/internal/quizconfig"
	"github.com/abhisek/safetyquiz/internal/records"
	"github.com/abhisek/safetyquiz/internal/screen"
	"github.com/abhisek/safetyquiz/internal/ui/layout"
	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

// QuestionBank is the question store as seen by the admin screens.
type QuestionBank interface {
	ListQuestions() ([]quizconfig.Question, error)
	GetQuestion(id string) (quizconfig.Question, error)
	AddQuestion(q quizconfig.Question) (string, error)
	UpdateQuestion(id string, q quizconfig.Question) error
	DeleteQuestion(id string) error
	Settings() (passingScore, timeLimit int)
	UpdateSettings(passingScore, timeLimit int) error
}

// ResultStore is the participant record table.
type ResultStore interface {
	List() ([]records.Record, error)
	DeleteAt(index int) error
}

// ImageStore holds one saved image per question.
type ImageStore interface {
	Save(questionID string, data []byte) (string, error)
	Delete(questionID string) error
	Exists(questionID string) bool
}

// ImageGenerator produces an illustration on demand.
type ImageGenerator interface {
	Generate(ctx context.Context, req imagegen.Request) (*imagegen.Image, error)
}

// Reminders sends the monthly reminder to a list of handles.
type Reminders interface {
	Send(ctx context.Context, handles []string, message string) notify.Summary
}

// Deps are the collaborators of the admin screen. Generator, Images and
// Reminders may be nil; the matching actions then report they are
// unavailable.
type Deps struct {
	Questions    QuestionBank
	Results      ResultStore
	Images       ImageStore
	Generator    ImageGenerator
	Mode         imagegen.Mode
	ImageTimeout time.Duration
	Reminders    Reminders
	QuizLink     string
	ExportDir    string
	Logger       *slog.Logger
	Now          func() time.Time
}

type tab int

const (
	tabDashboard tab = iota
	tabResults
	tabQuestions
	tabSettings
	tabCount
)

var tabNames = [tabCount]string{"Dashboard", "Results", "Questions", "Settings"}

// AdminScreen is the tabbed administrator view.
type AdminScreen struct {
	deps   Deps
	active tab

	records []records.Record
	noData  bool
	results resultsTab

	questions questionsTab
	settings  settingsTab

	status string
}

var _ screen.Screen = (*AdminScreen)(nil)
var _ screen.KeyHintProvider = (*AdminScreen)(nil)

// New creates the admin screen and loads its data.
func New(deps Deps) *AdminScreen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Mode == "" {
		deps.Mode = imagegen.ModeAuto
	}
	a := &AdminScreen{deps: deps}
	a.questions.mode = deps.Mode
	a.reloadResults()
	a.reloadQuestions("")
	a.settings = newSettingsTab(deps.Questions)
	return a
}

func (a *AdminScreen) Init() tea.Cmd {
	return nil
}

func (a *AdminScreen) Title() string {
	return "Admin"
}

func (a *AdminScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Switch tab"}}
	switch a.active {
	case tabDashboard:
		hints = append(hints,
			layout.KeyHint{Key: "A", Description: "Assign Monthly"},
			layout.KeyHint{Key: "X/C/P", Description: "Export xlsx/csv/pdf"},
		)
	case tabResults:
		hints = append(hints, layout.KeyHint{Key: "D", Description: "Delete row"})
	case tabQuestions:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Edit"},
			layout.KeyHint{Key: "N", Description: "New"},
			layout.KeyHint{Key: "D", Description: "Delete"},
			layout.KeyHint{Key: "G", Description: "Generate image"},
			layout.KeyHint{Key: "I", Description: "Delete image"},
			layout.KeyHint{Key: "M", Description: "Image mode"},
		)
	case tabSettings:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Save"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (a *AdminScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsChangedMsg:
		a.reloadQuestions(msg.id)
		a.status = "Question saved."
		return a, nil

	case imageSavedMsg:
		a.handleImageSaved(msg)
		return a, nil

	case remindersSentMsg:
		s := msg.summary
		a.status = reminderStatus(s)
		return a, nil

	case tea.KeyPressMsg:
		if a.confirming() {
			return a, a.handleConfirm(msg)
		}
		switch msg.String() {
		case "tab":
			a.switchTab((a.active + 1) % tabCount)
			return a, nil
		case "shift+tab":
			a.switchTab((a.active + tabCount - 1) % tabCount)
			return a, nil
		}
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *AdminScreen) switchTab(t tab) {
	a.active = t
	a.status = ""
	if t == tabSettings {
		a.settings = newSettingsTab(a.deps.Questions)
	}
}

// HandleBack cancels a pending delete prompt instead of leaving.
func (a *AdminScreen) HandleBack() bool {
	if !a.confirming() {
		return false
	}
	a.results.confirmDelete = false
	a.questions.confirmDelete = false
	a.status = "Delete cancelled."
	return true
}

func (a *AdminScreen) confirming() bool {
	return a.results.confirmDelete || a.questions.confirmDelete
}

func (a *AdminScreen) handleConfirm(msg tea.KeyPressMsg) tea.Cmd {
	yes := msg.String() == "y"
	switch {
	case a.results.confirmDelete:
		a.results.confirmDelete = false
		if yes {
			a.deleteResult()
		}
	case a.questions.confirmDelete:
		a.questions.confirmDelete = false
		if yes {
			a.deleteQuestion()
		}
	}
	return nil
}

func (a *AdminScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch a.active {
	case tabDashboard:
		return a.handleDashboardKey(msg)
	case tabResults:
		return a.handleResultsKey(msg)
	case tabQuestions:
		return a.handleQuestionsKey(msg)
	case tabSettings:
		return a.handleSettingsKey(msg)
	}
	return nil
}

func (a *AdminScreen) View(width, height int) string {
	var body string
	switch a.active {
	case tabDashboard:
		body = a.viewDashboard(width)
	case tabResults:
		body = a.viewResults(width, height)
	case tabQuestions:
		body = a.viewQuestions(width)
	case tabSettings:
		body = a.viewSettings()
	}

	var b strings.Builder
	b.WriteString(renderTabs(a.active))
	b.WriteString("\n\n")
	b.WriteString(body)
	if a.status != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Notice.Render(a.status))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func renderTabs(active tab) string {
	parts := make([]string, 0, tabCount)
	for i, name := range tabNames {
		if tab(i) == active {
			parts = append(parts, theme.TabActive.Render(name))
		} else {
			parts = append(parts, theme.TabInactive.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
