// Package flow drives one participant through the quiz: details, question,
// grading, completion. State is an explicit value passed in and returned by
// every transition; nothing is kept between calls on the Controller.
package flow

import (
	"strings"
	"time"

	"github.com/abhisek/safetyquiz/internal/grading"
	"github.com/abhisek/safetyquiz/internal/quizconfig"
)

// Phase is the current step of a session.
type Phase int

const (
	PhaseDetails    Phase = iota // Collecting identity
	PhaseQuestion                // Showing the question, or feedback after a failed grade
	PhaseGrading                 // Transient while an answer is scored
	PhaseCompletion              // Passed; showing final score
)

func (p Phase) String() string {
	switch p {
	case PhaseDetails:
		return "details"
	case PhaseQuestion:
		return "question"
	case PhaseGrading:
		return "grading"
	case PhaseCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// Placeholder is the initial value of every select field. It is never a
// valid choice.
const Placeholder = "-"

// Choices for the select fields on the details form.
var (
	Units     = []string{"1 SIR", "2 SIR", "3 SIR"}
	Companies = []string{"Alpha", "Bravo", "Charlie"}
	Platoons  = []string{"1", "2", "3", "4"}
)

// Identity is who is taking the quiz. It is collected once per session.
type Identity struct {
	Unit           string
	Company        string
	Platoon        string
	RankName       string
	TelegramHandle string
}

// Normalize trims surrounding whitespace from every field.
func (id Identity) Normalize() Identity {
	return Identity{
		Unit:           strings.TrimSpace(id.Unit),
		Company:        strings.TrimSpace(id.Company),
		Platoon:        strings.TrimSpace(id.Platoon),
		RankName:       strings.TrimSpace(id.RankName),
		TelegramHandle: strings.TrimSpace(id.TelegramHandle),
	}
}

// Validate reports every missing or placeholder field.
func (id Identity) Validate() error {
	var missing []string
	check := func(label, v string) {
		if v == "" || v == Placeholder {
			missing = append(missing, label)
		}
	}
	check("UNIT", id.Unit)
	check("COY", id.Company)
	check("PLATOON", id.Platoon)
	check("Rank Name", id.RankName)
	check("Telegram Handle", id.TelegramHandle)
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// State is one participant's session. It is never persisted.
type State struct {
	SessionID string
	Phase     Phase
	StartedAt time.Time

	Identity Identity

	// Question is fixed for the session once chosen. Nil until the first
	// entry into PhaseQuestion.
	Question *quizconfig.Question

	// Draft is the text currently in the answer input.
	Draft string

	// PreviousAnswer is the last graded answer that failed.
	PreviousAnswer string

	// Feedback is set while the failed-attempt view is shown.
	Feedback *grading.Result

	// Result is the passing grade, set on completion.
	Result *grading.Result

	// PassingScore is the threshold the last answer was graded against.
	PassingScore int

	Attempts int

	// Notice is a non-fatal problem to show the participant.
	Notice string
}

// ShowingFeedback reports whether the failed-attempt view is active.
func (s State) ShowingFeedback() bool {
	return s.Phase == PhaseQuestion && s.Feedback != nil
}
