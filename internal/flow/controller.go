package flow

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/safetyquiz/internal/grading"
	"github.com/abhisek/safetyquiz/internal/quizconfig"
	"github.com/abhisek/safetyquiz/internal/records"
)

// QuestionSource lists the question bank. It may return a usable list
// together with a non-fatal error.
type QuestionSource interface {
	ListQuestions() ([]quizconfig.Question, error)
}

// SettingsSource supplies the current passing score.
type SettingsSource interface {
	PassingScore() int
}

// RecordSink persists passing attempts.
type RecordSink interface {
	Append(records.Record) error
}

// Controller implements the session transitions. It holds collaborators
// only; all session data lives in State.
type Controller struct {
	questions QuestionSource
	settings  SettingsSource
	sink      RecordSink

	intn   func(n int) int
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithRand sets the function used to pick a question index in [0,n).
func WithRand(intn func(n int) int) Option {
	return func(c *Controller) { c.intn = intn }
}

// WithClock sets the time source for session starts and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a Controller.
func NewController(questions QuestionSource, settings SettingsSource, sink RecordSink, opts ...Option) *Controller {
	c := &Controller{
		questions: questions,
		settings:  settings,
		sink:      sink,
		intn:      rand.IntN,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start returns a fresh session at the details form.
func (c *Controller) Start() State {
	return State{
		SessionID: uuid.NewString(),
		Phase:     PhaseDetails,
		StartedAt: c.now(),
	}
}

// SubmitDetails validates id and moves to the question. On a validation
// error the state is returned unchanged. ErrNoQuestions leaves the session
// at the details form.
func (c *Controller) SubmitDetails(s State, id Identity) (State, error) {
	if s.Phase != PhaseDetails {
		return s, fmt.Errorf("%w: submit details in %s", ErrWrongPhase, s.Phase)
	}
	id = id.Normalize()
	if err := id.Validate(); err != nil {
		return s, err
	}

	next := s
	next.Identity = id
	next.Phase = PhaseQuestion
	next, err := c.EnterQuestion(next)
	if err != nil {
		return s, err
	}
	c.logger.Info("session details accepted", "session", s.SessionID, "unit", id.Unit, "coy", id.Company)
	return next, nil
}

// EnterQuestion selects the session question on first entry. Later calls
// keep the question already chosen.
func (c *Controller) EnterQuestion(s State) (State, error) {
	if s.Phase != PhaseQuestion {
		return s, fmt.Errorf("%w: enter question in %s", ErrWrongPhase, s.Phase)
	}
	if s.Question != nil {
		return s, nil
	}

	qs, err := c.questions.ListQuestions()
	if err != nil {
		c.logger.Warn("question bank load", "session", s.SessionID, "error", err)
		s.Notice = "Quiz configuration could not be read; using defaults."
	}
	if len(qs) == 0 {
		return s, ErrNoQuestions
	}
	q := qs[c.intn(len(qs))]
	s.Question = &q
	c.logger.Debug("question selected", "session", s.SessionID, "question", q.ID)
	return s, nil
}

// SubmitAnswer grades answer against the passing score read at this moment.
// A failing grade returns to the question with feedback. A passing grade
// appends a record and moves to completion; if that write fails the state is
// still completed and a *PersistError is returned.
func (c *Controller) SubmitAnswer(s State, answer string) (State, error) {
	if s.Phase != PhaseQuestion || s.Question == nil {
		return s, fmt.Errorf("%w: submit answer in %s", ErrWrongPhase, s.Phase)
	}

	s.Phase = PhaseGrading
	s.Notice = ""
	result := grading.Grade(answer)
	passing := c.settings.PassingScore()
	s.PassingScore = passing
	s.Attempts++

	if !result.Passed(passing) {
		s.Feedback = &result
		s.PreviousAnswer = answer
		s.Draft = answer
		s.Phase = PhaseQuestion
		c.logger.Info("attempt failed", "session", s.SessionID, "score", result.Score, "passing", passing, "attempt", s.Attempts)
		return s, nil
	}

	s.Result = &result
	s.Feedback = nil
	s.Draft = ""
	s.Phase = PhaseCompletion
	c.logger.Info("attempt passed", "session", s.SessionID, "score", result.Score, "passing", passing, "attempt", s.Attempts)

	rec := records.Record{
		Unit:           s.Identity.Unit,
		Company:        s.Identity.Company,
		Platoon:        s.Identity.Platoon,
		RankName:       s.Identity.RankName,
		TelegramHandle: s.Identity.TelegramHandle,
		Answer:         answer,
		Score:          result.Score,
		Strength:       result.Strength,
		Weakness:       result.Weakness,
		Improvement:    result.Improvement,
		Timestamp:      c.now(),
	}
	if err := c.sink.Append(rec); err != nil {
		c.logger.Warn("persist attempt", "session", s.SessionID, "error", err)
		s.Notice = "Your result could not be saved. Please inform your administrator."
		return s, &PersistError{Err: err}
	}
	return s, nil
}

// Retry leaves the failed-attempt view, keeping the question and putting the
// previous answer back in the input.
func (c *Controller) Retry(s State) State {
	if !s.ShowingFeedback() {
		return s
	}
	s.Feedback = nil
	s.Draft = s.PreviousAnswer
	return s
}

// Finish discards the session and starts a new one for the next participant.
func (c *Controller) Finish(s State) State {
	c.logger.Debug("session finished", "session", s.SessionID)
	return c.Start()
}
