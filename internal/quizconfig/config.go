// Package quizconfig persists the quiz configuration: the passing score, the
// time limit, and the bank of scenario questions.
package quizconfig

import (
	"encoding/json"
	"fmt"
)

const (
	DefaultPassingScore  = 9
	DefaultTimeLimit     = 60
	DefaultScenarioTitle = "Safety Scenario Question"
	DefaultQuestionText  = "Describe the actions when your buddy trips and fall during a march and has difficulty walking but insists to carry on."
	DefaultImagePrompt   = "Photorealistic scene of two NSF soldiers in modern SAF No.4 pixelated camouflage. One soldier is kneeling on a tarmac road, visibly injured, while the other supports/helps him. Distinctive Singapore pixel pattern, field pack with metal frame, black Frontier boots. Background: SAF training area with visible infrastructure during a route march."

	MinPassingScore = 1
	MaxPassingScore = 10
)

// Question is one scenario prompt shown to participants.
type Question struct {
	ID            string
	ScenarioTitle string
	QuestionText  string
	ImageEnabled  bool
	ImagePrompt   string

	// Extra holds keys this version does not know about. They are written
	// back unchanged on save.
	Extra map[string]json.RawMessage
}

// Config is the full persisted configuration.
type Config struct {
	PassingScore int
	TimeLimit    int
	Questions    []Question

	Extra map[string]json.RawMessage
}

// NewQuestion returns a question with every field at its default, except
// ID which the store assigns.
func NewQuestion() Question {
	return Question{
		ScenarioTitle: DefaultScenarioTitle,
		ImageEnabled:  true,
	}
}

// DefaultConfig is used when nothing is persisted yet or the persisted file
// cannot be read.
func DefaultConfig() Config {
	return Config{
		PassingScore: DefaultPassingScore,
		TimeLimit:    DefaultTimeLimit,
		Questions: []Question{{
			ID:            "q1",
			ScenarioTitle: DefaultScenarioTitle,
			QuestionText:  DefaultQuestionText,
			ImageEnabled:  true,
			ImagePrompt:   DefaultImagePrompt,
		}},
	}
}

// Title returns the scenario title, falling back to the default label.
func (q Question) Title() string {
	if q.ScenarioTitle == "" {
		return DefaultScenarioTitle
	}
	return q.ScenarioTitle
}

// Text returns the question body, falling back to the default scenario.
func (q Question) Text() string {
	if q.QuestionText == "" {
		return DefaultQuestionText
	}
	return q.QuestionText
}

// Question returns the question with the given id.
func (c Config) Question(id string) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (c Config) indexOf(id string) int {
	for i, q := range c.Questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// clone copies the question slice so mutations never alias a caller's value.
func (c Config) clone() Config {
	out := c
	out.Questions = append([]Question(nil), c.Questions...)
	return out
}

// ValidatePassingScore checks the passing score range.
func ValidatePassingScore(score int) error {
	if score < MinPassingScore || score > MaxPassingScore {
		return fmt.Errorf("%w: passing score %d outside [%d,%d]", ErrInvalidSetting, score, MinPassingScore, MaxPassingScore)
	}
	return nil
}

// ValidateTimeLimit checks the time limit is positive.
func ValidateTimeLimit(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: time limit must be positive, got %d", ErrInvalidSetting, seconds)
	}
	return nil
}

// MarshalJSON writes the known fields followed by any preserved extras.
func (q Question) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(q.Extra)+5)
	for k, v := range q.Extra {
		out[k] = v
	}
	out[keyID] = q.ID
	out[keyScenarioTitle] = q.ScenarioTitle
	out[keyQuestionText] = q.QuestionText
	out[keyImageEnabled] = q.ImageEnabled
	out[keyImagePrompt] = q.ImagePrompt
	return json.Marshal(out)
}

// UnmarshalJSON reads a question record, applying defaults for missing
// fields and keeping unknown keys in Extra.
func (q *Question) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	parsed, err := questionFromFields(fields, questionKeys)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// MarshalJSON writes the configuration in the current (questions list) shape.
func (c Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		out[k] = v
	}
	questions := c.Questions
	if questions == nil {
		questions = []Question{}
	}
	out[keyPassingScore] = c.PassingScore
	out[keyTimeLimit] = c.TimeLimit
	out[keyQuestions] = questions
	return json.Marshal(out)
}
