package quiz

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/safetyquiz/internal/flow"
	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/imagestore"
	"github.com/abhisek/safetyquiz/internal/quizconfig"
	"github.com/abhisek/safetyquiz/internal/records"
)

type fakeBank struct {
	questions []quizconfig.Question
	passing   int
	timeLimit int
}

func (b *fakeBank) ListQuestions() ([]quizconfig.Question, error) { return b.questions, nil }
func (b *fakeBank) PassingScore() int                            { return b.passing }
func (b *fakeBank) Settings() (int, int)                         { return b.passing, b.timeLimit }

type fakeSink struct {
	records []records.Record
	err     error
}

func (s *fakeSink) Append(r records.Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, r)
	return nil
}

type fakeImages map[string]string

func (f fakeImages) Path(id string) (string, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return "", imagestore.ErrNoImage
}

type fakeGenerator struct {
	calls []imagegen.Request
	err   error
}

func (g *fakeGenerator) Generate(_ context.Context, req imagegen.Request) (*imagegen.Image, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return &imagegen.Image{Data: []byte("png"), ContentType: "image/png", Source: "pollinations (" + req.Mode.Label() + ")"}, nil
}

func newTestQuiz(t *testing.T, images ImageSource, gen ImageGenerator) (*QuizScreen, *fakeSink) {
	t.Helper()
	bank := &fakeBank{
		questions: []quizconfig.Question{{ID: "q1", ScenarioTitle: "Route March", QuestionText: "Your buddy falls.", ImageEnabled: true}},
		passing:   9,
		timeLimit: 60,
	}
	sink := &fakeSink{}
	ctrl := flow.NewController(bank, bank, sink, flow.WithRand(func(int) int { return 0 }))
	s := New(Deps{Controller: ctrl, Settings: bank, Images: images, Generator: gen})
	return s, sink
}

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Text: string(code)}
}

func ctrlKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Mod: tea.ModCtrl}
}

func fillDetails(s *QuizScreen) {
	s.selects[fieldUnit].Selected = 1
	s.selects[fieldCompany].Selected = 2
	s.selects[fieldPlatoon].Selected = 3
	s.rank.SetValue("CPL TAN")
	s.handle.SetValue("tan_telegram")
}

func TestDetailsValidation(t *testing.T) {
	s, _ := newTestQuiz(t, fakeImages{}, nil)

	s.Update(ctrlKey('s'))
	assert.Equal(t, flow.PhaseDetails, s.state.Phase)
	assert.Contains(t, s.formErr, "All fields are required")
	assert.Contains(t, s.formErr, "UNIT")
	assert.Contains(t, s.View(120, 40), "All fields are required")
}

func TestDetailsFocusCyclesAndSelects(t *testing.T) {
	s, _ := newTestQuiz(t, fakeImages{}, nil)

	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, "1 SIR", s.selects[fieldUnit].Value())

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, fieldCompany, s.focus)
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, fieldHandle, s.focus, "focus wraps backwards")
}

func TestFullSessionWithRetry(t *testing.T) {
	s, sink := newTestQuiz(t, fakeImages{"q1": "/data/images/q1.png"}, nil)
	fillDetails(s)

	s.Update(ctrlKey('s'))
	require.Equal(t, flow.PhaseQuestion, s.state.Phase)
	assert.Equal(t, imageSaved, s.image.status)
	view := s.View(120, 40)
	assert.Contains(t, view, "Route March")
	assert.Contains(t, view, "/data/images/q1.png")

	s.answer.SetValue("I would keep marching")
	s.Update(ctrlKey('s'))
	require.True(t, s.state.ShowingFeedback())
	assert.Contains(t, s.View(120, 40), "Your score was 0/10. You need a score of 9 or higher to pass.")

	s.Update(key('r'))
	assert.False(t, s.state.ShowingFeedback())
	assert.Equal(t, "I would keep marching", s.answer.Value())

	s.answer.SetValue("Call for help, check if he is conscious and breathing")
	s.Update(ctrlKey('s'))
	require.Equal(t, flow.PhaseCompletion, s.state.Phase)
	require.Len(t, sink.records, 1)
	assert.Equal(t, "CPL TAN", sink.records[0].RankName)
	assert.Equal(t, 10, sink.records[0].Score)
	assert.Contains(t, s.View(120, 40), "Your score: 10/10")

	firstSession := s.state.SessionID
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, flow.PhaseDetails, s.state.Phase)
	assert.NotEqual(t, firstSession, s.state.SessionID)
	assert.Equal(t, flow.Placeholder, s.selects[fieldUnit].Value())
}

func TestPersistFailureStillCompletes(t *testing.T) {
	s, sink := newTestQuiz(t, fakeImages{}, nil)
	sink.err = errors.New("disk full")
	fillDetails(s)
	s.Update(ctrlKey('s'))

	s.answer.SetValue("medic, assess, breathing")
	s.Update(ctrlKey('s'))
	assert.Equal(t, flow.PhaseCompletion, s.state.Phase)
	assert.Contains(t, s.View(120, 40), "could not be saved")
}

func TestImageGenerationAndRegenerate(t *testing.T) {
	gen := &fakeGenerator{}
	s, _ := newTestQuiz(t, fakeImages{}, gen)
	fillDetails(s)
	s.Update(ctrlKey('s'))
	require.Equal(t, imageGenerating, s.image.status)

	cmd := s.generateImage(s.state.Question)
	first := cmd().(imageReadyMsg)
	s.Update(first)
	require.Equal(t, imageGenerated, s.image.status)
	path := s.image.path
	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(s.image.source, "(Auto (Best))"))

	_, cmd = s.Update(ctrlKey('t'))
	require.NotNil(t, cmd)
	assert.Equal(t, imagegen.ModeFlux, s.mode)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "regenerate discards the previous session image")

	s.Update(first)
	assert.Equal(t, imageGenerating, s.image.status, "stale result is ignored")

	s.Update(cmd())
	require.Equal(t, imageGenerated, s.image.status)
	assert.Equal(t, imagegen.ModeFlux, gen.calls[len(gen.calls)-1].Mode)
	s.discardImage()
}

func TestImageFailureNeverBlocksAnswering(t *testing.T) {
	gen := &fakeGenerator{err: imagegen.ErrNoImage}
	s, _ := newTestQuiz(t, fakeImages{}, gen)
	fillDetails(s)
	s.Update(ctrlKey('s'))

	s.Update(s.generateImage(s.state.Question)())
	assert.Equal(t, imageFailed, s.image.status)
	assert.Contains(t, s.View(120, 40), "No image available.")

	s.answer.SetValue("medic check conscious")
	s.Update(ctrlKey('s'))
	assert.Equal(t, flow.PhaseCompletion, s.state.Phase)
}

func TestCountdownExpiryShowsNotice(t *testing.T) {
	s, _ := newTestQuiz(t, fakeImages{}, nil)
	fillDetails(s)
	s.Update(ctrlKey('s'))
	s.remaining = 2 * time.Second

	gen := s.timerGen
	s.Update(timerTickMsg{gen: gen - 1})
	assert.Equal(t, 2*time.Second, s.remaining, "stale tick ignored")

	s.Update(timerTickMsg{gen: gen})
	_, cmd := s.Update(timerTickMsg{gen: gen})
	assert.Nil(t, cmd)
	assert.True(t, s.expired)
	assert.Contains(t, s.View(120, 40), "Time is up")

	s.answer.SetValue("medic check conscious")
	s.Update(ctrlKey('s'))
	assert.Equal(t, flow.PhaseCompletion, s.state.Phase)
}

func TestBackAsksBeforeDroppingAnswer(t *testing.T) {
	gen := &fakeGenerator{}
	s, _ := newTestQuiz(t, fakeImages{}, gen)
	fillDetails(s)
	s.Update(ctrlKey('s'))
	s.Update(s.generateImage(s.state.Question)())
	path := s.image.path

	assert.False(t, s.HandleBack(), "empty answer leaves at once")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "leaving removes the session image")

	s.answer.SetValue("call medic")
	assert.True(t, s.HandleBack())
	assert.Contains(t, s.View(120, 40), "Press Esc again")
	assert.False(t, s.HandleBack())
}
