package flow

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/safetyquiz/internal/quizconfig"
	"github.com/abhisek/safetyquiz/internal/records"
)

type stubQuestions struct {
	qs    []quizconfig.Question
	err   error
	calls int
}

func (s *stubQuestions) ListQuestions() ([]quizconfig.Question, error) {
	s.calls++
	return s.qs, s.err
}

type stubSettings struct{ passing int }

func (s *stubSettings) PassingScore() int { return s.passing }

type stubSink struct {
	rows []records.Record
	err  error
}

func (s *stubSink) Append(r records.Record) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, r)
	return nil
}

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

const (
	answer10 = "I would check if he is conscious and call for a medic"
	answer7  = "call for help and assess him"
	answer6  = "check whether he is breathing"
	answer3  = "I would assess the situation"
)

func validIdentity() Identity {
	return Identity{
		Unit:           "1 SIR",
		Company:        "Bravo",
		Platoon:        "3",
		RankName:       "CPL Tan",
		TelegramHandle: "@tan",
	}
}

type fixture struct {
	questions *stubQuestions
	settings  *stubSettings
	sink      *stubSink
	picks     []int
	c         *Controller
}

func newFixture(passing int) *fixture {
	f := &fixture{
		questions: &stubQuestions{qs: []quizconfig.Question{
			{ID: "q1", QuestionText: "one"},
			{ID: "q2", QuestionText: "two"},
			{ID: "q3", QuestionText: "three"},
		}},
		settings: &stubSettings{passing: passing},
		sink:     &stubSink{},
	}
	f.c = NewController(f.questions, f.settings, f.sink,
		WithClock(func() time.Time { return fixedNow }),
		WithRand(func(n int) int {
			f.picks = append(f.picks, n)
			return 1
		}),
	)
	return f
}

func (f *fixture) atQuestion(t *testing.T) State {
	t.Helper()
	s, err := f.c.SubmitDetails(f.c.Start(), validIdentity())
	require.NoError(t, err)
	require.Equal(t, PhaseQuestion, s.Phase)
	return s
}

func TestStart(t *testing.T) {
	f := newFixture(9)
	s := f.c.Start()
	assert.Equal(t, PhaseDetails, s.Phase)
	assert.NotEmpty(t, s.SessionID)
	assert.Equal(t, fixedNow, s.StartedAt)
	assert.Nil(t, s.Question)
}

func TestSubmitDetails_Validation(t *testing.T) {
	f := newFixture(9)
	start := f.c.Start()

	id := validIdentity()
	id.Company = Placeholder
	id.RankName = "   "

	s, err := f.c.SubmitDetails(start, id)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"COY", "Rank Name"}, verr.Missing)
	assert.Contains(t, err.Error(), "All fields are required.")
	assert.Equal(t, start, s)
	assert.Zero(t, f.questions.calls)
}

func TestSubmitDetails_TrimsAndSelects(t *testing.T) {
	f := newFixture(9)
	id := validIdentity()
	id.RankName = "  CPL Tan "

	s, err := f.c.SubmitDetails(f.c.Start(), id)
	require.NoError(t, err)
	assert.Equal(t, "CPL Tan", s.Identity.RankName)
	require.NotNil(t, s.Question)
	assert.Equal(t, "q2", s.Question.ID)
	assert.Equal(t, []int{3}, f.picks)
}

func TestSubmitDetails_NoQuestions(t *testing.T) {
	f := newFixture(9)
	f.questions.qs = nil
	start := f.c.Start()

	s, err := f.c.SubmitDetails(start, validIdentity())
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, PhaseDetails, s.Phase)
}

func TestEnterQuestion_LoadDiagnosticIsNonFatal(t *testing.T) {
	f := newFixture(9)
	f.questions.err = errors.New("corrupt")

	s, err := f.c.SubmitDetails(f.c.Start(), validIdentity())
	require.NoError(t, err)
	assert.NotNil(t, s.Question)
	assert.NotEmpty(t, s.Notice)
}

func TestQuestionStableAcrossRetries(t *testing.T) {
	f := newFixture(9)
	s := f.atQuestion(t)
	chosen := s.Question.ID

	for i := 0; i < 5; i++ {
		var err error
		s, err = f.c.SubmitAnswer(s, answer3)
		require.NoError(t, err)
		require.True(t, s.ShowingFeedback())
		s = f.c.Retry(s)
		s, err = f.c.EnterQuestion(s)
		require.NoError(t, err)
		assert.Equal(t, chosen, s.Question.ID)
	}
	assert.Len(t, f.picks, 1, "question is drawn once per session")
	assert.Equal(t, 1, f.questions.calls)
	assert.Equal(t, 5, s.Attempts)
}

func TestSubmitAnswer_FailKeepsFeedbackAndPreviousAnswer(t *testing.T) {
	f := newFixture(9)
	s := f.atQuestion(t)

	s, err := f.c.SubmitAnswer(s, answer3)
	require.NoError(t, err)
	assert.Equal(t, PhaseQuestion, s.Phase)
	require.NotNil(t, s.Feedback)
	assert.Equal(t, 3, s.Feedback.Score)
	assert.Equal(t, answer3, s.PreviousAnswer)
	assert.Equal(t, 9, s.PassingScore)
	assert.Empty(t, f.sink.rows)

	s = f.c.Retry(s)
	assert.False(t, s.ShowingFeedback())
	assert.Equal(t, answer3, s.Draft)
}

func TestSubmitAnswer_PassBoundary(t *testing.T) {
	tests := []struct {
		name    string
		passing int
		answer  string
		pass    bool
	}{
		{"score equals passing", 7, answer7, true},
		{"score one below passing", 7, answer6, false},
		{"full marks at default", 9, answer10, true},
		{"seven below default", 9, answer7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.passing)
			s := f.atQuestion(t)

			s, err := f.c.SubmitAnswer(s, tt.answer)
			require.NoError(t, err)
			if tt.pass {
				assert.Equal(t, PhaseCompletion, s.Phase)
				require.Len(t, f.sink.rows, 1)
			} else {
				assert.Equal(t, PhaseQuestion, s.Phase)
				assert.Empty(t, f.sink.rows)
			}
		})
	}
}

func TestSubmitAnswer_PassingScoreReadFresh(t *testing.T) {
	f := newFixture(10)
	s := f.atQuestion(t)

	s, err := f.c.SubmitAnswer(s, answer7)
	require.NoError(t, err)
	require.True(t, s.ShowingFeedback())

	f.settings.passing = 7
	s = f.c.Retry(s)
	s, err = f.c.SubmitAnswer(s, answer7)
	require.NoError(t, err)
	assert.Equal(t, PhaseCompletion, s.Phase)
	assert.Equal(t, 7, s.PassingScore)
}

func TestSubmitAnswer_RecordContents(t *testing.T) {
	f := newFixture(9)
	s := f.atQuestion(t)

	s, err := f.c.SubmitAnswer(s, answer10)
	require.NoError(t, err)
	require.NotNil(t, s.Result)
	require.Len(t, f.sink.rows, 1)

	rec := f.sink.rows[0]
	assert.Equal(t, records.Record{
		Unit:           "1 SIR",
		Company:        "Bravo",
		Platoon:        "3",
		RankName:       "CPL Tan",
		TelegramHandle: "@tan",
		Answer:         answer10,
		Score:          10,
		Strength:       s.Result.Strength,
		Weakness:       s.Result.Weakness,
		Improvement:    s.Result.Improvement,
		Timestamp:      fixedNow,
	}, rec)
}

func TestSubmitAnswer_PersistFailureStillCompletes(t *testing.T) {
	f := newFixture(9)
	f.sink.err = errors.New("disk full")
	s := f.atQuestion(t)

	s, err := f.c.SubmitAnswer(s, answer10)
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PhaseCompletion, s.Phase)
	assert.NotNil(t, s.Result)
	assert.NotEmpty(t, s.Notice)
}

func TestSubmitAnswer_EmptyAnswerIsGraded(t *testing.T) {
	f := newFixture(9)
	s := f.atQuestion(t)

	s, err := f.c.SubmitAnswer(s, "")
	require.NoError(t, err)
	require.NotNil(t, s.Feedback)
	assert.Equal(t, 0, s.Feedback.Score)
}

func TestWrongPhase(t *testing.T) {
	f := newFixture(9)
	start := f.c.Start()

	_, err := f.c.SubmitAnswer(start, answer10)
	assert.ErrorIs(t, err, ErrWrongPhase)

	s := f.atQuestion(t)
	_, err = f.c.SubmitDetails(s, validIdentity())
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestFinishStartsNewSession(t *testing.T) {
	f := newFixture(9)
	s := f.atQuestion(t)
	s, err := f.c.SubmitAnswer(s, answer10)
	require.NoError(t, err)

	next := f.c.Finish(s)
	assert.Equal(t, PhaseDetails, next.Phase)
	assert.NotEqual(t, s.SessionID, next.SessionID)
	assert.Equal(t, Identity{}, next.Identity)
	assert.Nil(t, next.Question)
	assert.Nil(t, next.Result)
}
