package admin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/imagestore"
	"github.com/abhisek/safetyquiz/internal/notify"
	"github.com/abhisek/safetyquiz/internal/quizconfig"
	"github.com/abhisek/safetyquiz/internal/records"
	"github.com/abhisek/safetyquiz/internal/router"
)

type recordingNotifier struct {
	mu      sync.Mutex
	handles []string
}

func (n *recordingNotifier) Notify(_ context.Context, handle, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handles = append(n.handles, handle)
	return nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, req imagegen.Request) (*imagegen.Image, error) {
	return &imagegen.Image{Data: []byte("\x89PNG\r\n\x1a\nfake"), ContentType: "image/png", Source: "pollinations (" + req.Mode.Label() + ")"}, nil
}

type fixture struct {
	screen   *AdminScreen
	bank     *quizconfig.Store
	results  *records.Store
	images   *imagestore.Store
	notifier *recordingNotifier
	dir      string
}

func newFixture(t *testing.T, recs ...records.Record) *fixture {
	t.Helper()
	dir := t.TempDir()
	images := imagestore.New(filepath.Join(dir, "images"))
	bank := quizconfig.NewStore(filepath.Join(dir, "quiz_config.json"), images, nil)
	results := records.NewStore(filepath.Join(dir, "participants.csv"))
	for _, r := range recs {
		require.NoError(t, results.Append(r))
	}
	notifier := &recordingNotifier{}
	s := New(Deps{
		Questions: bank,
		Results:   results,
		Images:    images,
		Generator: stubGenerator{},
		Reminders: notify.NewDispatcher(notifier, 1000, nil),
		QuizLink:  "https://quiz.example",
		ExportDir: filepath.Join(dir, "exports"),
		Now:       func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
	return &fixture{screen: s, bank: bank, results: results, images: images, notifier: notifier, dir: dir}
}

func record(unit, coy, handle string) records.Record {
	return records.Record{
		Unit: unit, Company: coy, Platoon: "1", RankName: "PTE LIM", TelegramHandle: handle,
		Answer: "call for help, check breathing", Score: 10, Timestamp: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
}

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Text: string(code)}
}

func tabTo(s *AdminScreen, t tab) {
	for s.active != t {
		s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	}
}

func TestDashboardNoData(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.screen.View(120, 40), "No participant data found.")

	f.screen.Update(key('a'))
	assert.Equal(t, "No participant data found.", f.screen.status)
}

func TestDashboardChart(t *testing.T) {
	f := newFixture(t, record("1 SIR", "Alpha", "a"), record("1 SIR", "Alpha", "b"), record("2 SIR", "Bravo", "c"))
	view := f.screen.View(140, 40)
	assert.Contains(t, view, "1 SIR - Alpha")
	assert.Contains(t, view, "2/60")
	assert.Contains(t, view, "2 SIR - Bravo")
}

func TestAssignMonthlyDeduplicates(t *testing.T) {
	f := newFixture(t, record("1 SIR", "Alpha", "a"), record("1 SIR", "Alpha", "b"), record("2 SIR", "Bravo", "a"))

	_, cmd := f.screen.Update(key('a'))
	require.NotNil(t, cmd)
	f.screen.Update(cmd())

	assert.Equal(t, []string{"a", "b"}, f.notifier.handles)
	assert.Equal(t, "Reminders sent to 2 of 2 participants.", f.screen.status)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t, record("1 SIR", "Alpha", "a"))

	f.screen.Update(key('c'))
	path := filepath.Join(f.dir, "exports", "participants_20260301_090000.csv")
	assert.Equal(t, "Exported to "+path, f.screen.status)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(records.Header, ",")))
}

func TestDeleteResultRowAfterConfirm(t *testing.T) {
	f := newFixture(t, record("1 SIR", "Alpha", "a"), record("2 SIR", "Bravo", "b"))
	tabTo(f.screen, tabResults)

	f.screen.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	f.screen.Update(key('d'))
	assert.Contains(t, f.screen.View(140, 40), "Delete row 2? (y/n)")

	f.screen.Update(key('n'))
	recs, err := f.results.List()
	require.NoError(t, err)
	assert.Len(t, recs, 2, "declined delete keeps the row")

	f.screen.Update(key('d'))
	f.screen.Update(key('y'))
	recs, err = f.results.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].TelegramHandle)
}

func TestResultsShowMatchedRules(t *testing.T) {
	f := newFixture(t, record("1 SIR", "Alpha", "a"))
	tabTo(f.screen, tabResults)
	view := f.screen.View(140, 40)
	assert.Contains(t, view, "Matched:")
	assert.Contains(t, view, "PTE LIM")
}

func TestAddQuestionThroughEditor(t *testing.T) {
	f := newFixture(t)
	tabTo(f.screen, tabQuestions)

	_, cmd := f.screen.Update(key('n'))
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	ed := push.Screen.(*EditorScreen)
	assert.Equal(t, "New Question", ed.Title())

	ed.title.SetValue("Heat Injury")
	ed.text.SetValue("Your section mate stops sweating.")
	_, cmd = ed.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)

	qs, err := f.bank.ListQuestions()
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "q2", qs[1].ID)
	assert.True(t, qs[1].ImageEnabled)

	f.screen.Update(questionsChangedMsg{id: "q2"})
	assert.Equal(t, 1, f.screen.questions.menu.Selected)
	assert.Contains(t, f.screen.View(140, 40), "Heat Injury")
}

func TestEditQuestionKeepsID(t *testing.T) {
	f := newFixture(t)
	q, err := f.bank.GetQuestion("q1")
	require.NoError(t, err)

	ed := NewEditor(f.bank, &q)
	ed.title.SetValue("Renamed")
	ed.enabled.Selected = 1
	ed.save()

	got, err := f.bank.GetQuestion("q1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.ScenarioTitle)
	assert.False(t, got.ImageEnabled)
}

func TestDeleteLastQuestionRefused(t *testing.T) {
	f := newFixture(t)
	tabTo(f.screen, tabQuestions)

	f.screen.Update(key('d'))
	f.screen.Update(key('y'))
	assert.Equal(t, "Cannot delete the last remaining question.", f.screen.status)
	qs, _ := f.bank.ListQuestions()
	assert.Len(t, qs, 1)
}

func TestGenerateAndDeleteImage(t *testing.T) {
	f := newFixture(t)
	tabTo(f.screen, tabQuestions)

	f.screen.Update(key('m'))
	assert.Equal(t, imagegen.ModeFlux, f.screen.questions.mode)

	_, cmd := f.screen.Update(key('g'))
	require.NotNil(t, cmd)
	f.screen.Update(cmd())
	assert.True(t, f.images.Exists("q1"))
	assert.Contains(t, f.screen.status, "Flux (Realistic)")
	assert.Contains(t, f.screen.View(140, 40), "[image saved]")

	f.screen.Update(key('i'))
	assert.False(t, f.images.Exists("q1"))
}

func TestSettingsSave(t *testing.T) {
	f := newFixture(t)
	tabTo(f.screen, tabSettings)

	f.screen.settings.passing.SetValue("7")
	f.screen.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "Settings saved.", f.screen.status)
	passing, limit := f.bank.Settings()
	assert.Equal(t, 7, passing)
	assert.Equal(t, 60, limit)

	f.screen.settings.passing.SetValue("11")
	f.screen.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, f.screen.status, "Passing score must be 1-10")
	passing, _ = f.bank.Settings()
	assert.Equal(t, 7, passing)
}

func TestBackCancelsDeletePrompt(t *testing.T) {
	f := newFixture(t, record("1 SIR", "Alpha", "a"))
	tabTo(f.screen, tabResults)

	assert.False(t, f.screen.HandleBack())
	f.screen.Update(key('d'))
	assert.True(t, f.screen.HandleBack())
	assert.Equal(t, "Delete cancelled.", f.screen.status)

	f.screen.Update(key('y'))
	recs, err := f.results.List()
	require.NoError(t, err)
	assert.Len(t, recs, 1, "y after cancel deletes nothing")
}
