// Package quiz is the participant screen: details form, scenario question,
// feedback after a failed attempt, and completion.
package quiz

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/safetyquiz/internal/flow"
	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/screen"
	"github.com/abhisek/safetyquiz/internal/ui/components"
	"github.com/abhisek/safetyquiz/internal/ui/layout"
)

// ImageSource finds the saved image of a question.
type ImageSource interface {
	Path(questionID string) (string, error)
}

// ImageGenerator produces an illustration on demand.
type ImageGenerator interface {
	Generate(ctx context.Context, req imagegen.Request) (*imagegen.Image, error)
}

// SettingsSource reports the current quiz settings.
type SettingsSource interface {
	Settings() (passingScore, timeLimit int)
}

// Deps are the collaborators of the quiz screen. Images and Generator may be
// nil; the question is then shown without an illustration.
type Deps struct {
	Controller   *flow.Controller
	Settings     SettingsSource
	Images       ImageSource
	Generator    ImageGenerator
	Mode         imagegen.Mode
	ImageTimeout time.Duration
	Logger       *slog.Logger
}

const (
	fieldUnit = iota
	fieldCompany
	fieldPlatoon
	fieldRankName
	fieldHandle
	fieldCount
)

// QuizScreen drives one participant session after another.
type QuizScreen struct {
	deps  Deps
	state flow.State

	selects [3]components.Select
	rank    components.TextInput
	handle  components.TextInput
	focus   int
	formErr string

	answer textarea.Model

	limit     time.Duration
	remaining time.Duration
	timerGen  int
	expired   bool

	mode  imagegen.Mode
	image illustration

	// leaveArmed is set by a first Esc over an unsent answer.
	leaveArmed bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.BackHandler = (*QuizScreen)(nil)

// New creates a QuizScreen at the details form.
func New(deps Deps) *QuizScreen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	mode := deps.Mode
	if mode == "" {
		mode = imagegen.ModeAuto
	}
	s := &QuizScreen{
		deps:  deps,
		state: deps.Controller.Start(),
		mode:  mode,
	}
	s.resetForm()
	return s
}

func (s *QuizScreen) resetForm() {
	s.selects = [3]components.Select{
		components.NewSelect("UNIT", withPlaceholder(flow.Units)),
		components.NewSelect("COY", withPlaceholder(flow.Companies)),
		components.NewSelect("PLATOON", withPlaceholder(flow.Platoons)),
	}
	s.rank = components.NewTextInput("e.g. CPL TAN AH KOW", 60)
	s.handle = components.NewTextInput("e.g. @tanahkow", 40)
	s.formErr = ""
	s.answer = newAnswerArea()
	s.setFocus(fieldUnit)
}

func withPlaceholder(choices []string) []string {
	return append([]string{flow.Placeholder}, choices...)
}

func newAnswerArea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Describe what you would do..."
	ta.ShowLineNumbers = false
	ta.SetHeight(6)
	return ta
}

func (s *QuizScreen) setFocus(field int) tea.Cmd {
	s.focus = (field + fieldCount) % fieldCount
	for i := range s.selects {
		s.selects[i].Focused = s.focus == i
	}
	s.rank.Blur()
	s.handle.Blur()
	switch s.focus {
	case fieldRankName:
		return s.rank.Focus()
	case fieldHandle:
		return s.handle.Focus()
	}
	return nil
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	return "Safety Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.state.Phase == flow.PhaseDetails:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next field"},
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case s.state.ShowingFeedback():
		return []layout.KeyHint{
			{Key: "R/Enter", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	case s.state.Phase == flow.PhaseQuestion:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Submit"},
			{Key: "Ctrl+R", Description: "New image"},
			{Key: "Ctrl+T", Description: "Image mode"},
			{Key: "Esc", Description: "Back"},
		}
	case s.state.Phase == flow.PhaseCompletion:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Finish"},
		}
	}
	return nil
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		return s, s.handleTick(msg)

	case imageReadyMsg:
		s.handleImageReady(msg)
		return s, nil

	case tea.KeyPressMsg:
		return s, s.handleKey(msg)
	}

	if s.state.Phase == flow.PhaseQuestion && !s.state.ShowingFeedback() {
		var cmd tea.Cmd
		s.answer, cmd = s.answer.Update(msg)
		return s, cmd
	}
	return s, nil
}

// HandleBack asks once before discarding a typed answer. When leaving, the
// session image is removed and the countdown stopped.
func (s *QuizScreen) HandleBack() bool {
	answering := s.state.Phase == flow.PhaseQuestion && !s.state.ShowingFeedback()
	if answering && strings.TrimSpace(s.answer.Value()) != "" && !s.leaveArmed {
		s.leaveArmed = true
		return true
	}
	s.discardImage()
	s.timerGen++
	return false
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	s.leaveArmed = false
	switch {
	case s.state.Phase == flow.PhaseDetails:
		return s.handleDetailsKey(msg)
	case s.state.ShowingFeedback():
		switch msg.String() {
		case "r", "enter":
			s.state = s.deps.Controller.Retry(s.state)
			s.answer.SetValue(s.state.Draft)
			return tea.Batch(s.answer.Focus(), s.startTimer())
		}
		return nil
	case s.state.Phase == flow.PhaseQuestion:
		return s.handleQuestionKey(msg)
	case s.state.Phase == flow.PhaseCompletion:
		if msg.String() == "enter" {
			s.discardImage()
			s.state = s.deps.Controller.Finish(s.state)
			s.timerGen++
			s.resetForm()
		}
		return nil
	}
	return nil
}

func (s *QuizScreen) handleDetailsKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return s.setFocus(s.focus + 1)
	case "shift+tab", "up":
		return s.setFocus(s.focus - 1)
	case "ctrl+s":
		return s.submitDetails()
	case "enter":
		if s.focus == fieldHandle {
			return s.submitDetails()
		}
		return s.setFocus(s.focus + 1)
	}

	var cmd tea.Cmd
	switch s.focus {
	case fieldUnit, fieldCompany, fieldPlatoon:
		s.selects[s.focus], cmd = s.selects[s.focus].Update(msg)
	case fieldRankName:
		s.rank, cmd = s.rank.Update(msg)
	case fieldHandle:
		s.handle, cmd = s.handle.Update(msg)
	}
	return cmd
}

func (s *QuizScreen) identity() flow.Identity {
	return flow.Identity{
		Unit:           s.selects[fieldUnit].Value(),
		Company:        s.selects[fieldCompany].Value(),
		Platoon:        s.selects[fieldPlatoon].Value(),
		RankName:       s.rank.Value(),
		TelegramHandle: s.handle.Value(),
	}
}

func (s *QuizScreen) submitDetails() tea.Cmd {
	next, err := s.deps.Controller.SubmitDetails(s.state, s.identity())
	if err != nil {
		var verr *flow.ValidationError
		switch {
		case errors.As(err, &verr):
			s.formErr = verr.Error()
		case errors.Is(err, flow.ErrNoQuestions):
			s.formErr = "No questions are configured. Please contact your administrator."
		default:
			s.formErr = err.Error()
		}
		return nil
	}
	s.formErr = ""
	s.state = next
	s.answer = newAnswerArea()
	return tea.Batch(s.answer.Focus(), s.startTimer(), s.loadImage(s.state.Question))
}

func (s *QuizScreen) handleQuestionKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+s":
		next, err := s.deps.Controller.SubmitAnswer(s.state, s.answer.Value())
		var perr *flow.PersistError
		if err != nil && !errors.As(err, &perr) {
			s.deps.Logger.Error("submit answer", "component", "quiz", "error", err)
			return nil
		}
		s.state = next
		s.timerGen++
		s.answer.Blur()
		return nil
	case "ctrl+r":
		return s.generateImage(s.state.Question)
	case "ctrl+t":
		s.mode = s.mode.Next()
		return s.generateImage(s.state.Question)
	}

	var cmd tea.Cmd
	s.answer, cmd = s.answer.Update(msg)
	return cmd
}

// startTimer begins a fresh countdown from the configured time limit.
func (s *QuizScreen) startTimer() tea.Cmd {
	s.timerGen++
	s.expired = false
	limit := 0
	if s.deps.Settings != nil {
		_, limit = s.deps.Settings.Settings()
	}
	if limit <= 0 {
		s.limit, s.remaining = 0, 0
		return nil
	}
	s.limit = time.Duration(limit) * time.Second
	s.remaining = s.limit
	return tickCmd(s.timerGen)
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{gen: gen}
	})
}

// handleTick counts down. Expiry only shows a notice; answering stays open.
func (s *QuizScreen) handleTick(msg timerTickMsg) tea.Cmd {
	if msg.gen != s.timerGen || s.state.Phase != flow.PhaseQuestion {
		return nil
	}
	s.remaining -= time.Second
	if s.remaining <= 0 {
		s.remaining = 0
		s.expired = true
		return nil
	}
	return tickCmd(s.timerGen)
}
