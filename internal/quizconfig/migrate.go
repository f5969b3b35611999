package quizconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	keyPassingScore  = "passing_score"
	keyTimeLimit     = "time_limit"
	keyQuestions     = "questions"
	keyID            = "id"
	keyScenarioTitle = "scenario_title"
	keyQuestionText  = "question_text"
	keyImageEnabled  = "image_enabled"
	keyImagePrompt   = "image_prompt"
)

var (
	questionKeys = []string{keyID, keyScenarioTitle, keyQuestionText, keyImageEnabled, keyImagePrompt}
	v2Keys       = []string{keyPassingScore, keyTimeLimit, keyQuestions}
	// legacyKeys are the single-question fields a v1 document carries at the
	// top level. Migration folds them into q1 and drops them.
	legacyKeys = []string{keyScenarioTitle, keyQuestionText, keyImageEnabled, keyImagePrompt}
)

// document is a decoded on-disk configuration of some format version.
type document interface {
	upgrade() (Config, error)
}

// configV1 is the legacy single-question shape: question_text and friends
// live at the top level.
type configV1 struct {
	fields map[string]json.RawMessage
}

// configV2 is the current shape with a questions list.
type configV2 struct {
	fields map[string]json.RawMessage
}

// decodeDocument sniffs the format version of raw bytes.
func decodeDocument(data []byte) (document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("configuration is not a JSON object")
	}
	if _, ok := fields[keyQuestions]; ok {
		return configV2{fields: fields}, nil
	}
	if _, ok := fields[keyQuestionText]; ok {
		return configV1{fields: fields}, nil
	}
	return configV2{fields: fields}, nil
}

func (d configV1) upgrade() (Config, error) {
	cfg, err := settingsFromFields(d.fields)
	if err != nil {
		return Config{}, err
	}

	q, err := questionFromFields(d.fields, legacyKeys)
	if err != nil {
		return Config{}, err
	}
	q.ID = "q1"
	q.Extra = nil
	cfg.Questions = []Question{q}
	cfg.Extra = extras(d.fields, append(append([]string{}, v2Keys...), legacyKeys...))
	return cfg, nil
}

func (d configV2) upgrade() (Config, error) {
	cfg, err := settingsFromFields(d.fields)
	if err != nil {
		return Config{}, err
	}

	if raw, ok := d.fields[keyQuestions]; ok {
		if err := json.Unmarshal(raw, &cfg.Questions); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", keyQuestions, err)
		}
	}
	// The bank is never empty.
	if len(cfg.Questions) == 0 {
		cfg.Questions = DefaultConfig().Questions
	}
	assignMissingIDs(cfg.Questions)
	cfg.Extra = extras(d.fields, v2Keys)
	return cfg, nil
}

// settingsFromFields reads passing_score and time_limit. Values outside their
// valid range are treated as absent.
func settingsFromFields(fields map[string]json.RawMessage) (Config, error) {
	cfg := Config{PassingScore: DefaultPassingScore, TimeLimit: DefaultTimeLimit}

	var passing int
	if ok, err := decodeField(fields, keyPassingScore, &passing); err != nil {
		return Config{}, err
	} else if ok && ValidatePassingScore(passing) == nil {
		cfg.PassingScore = passing
	}

	var limit int
	if ok, err := decodeField(fields, keyTimeLimit, &limit); err != nil {
		return Config{}, err
	} else if ok && ValidateTimeLimit(limit) == nil {
		cfg.TimeLimit = limit
	}
	return cfg, nil
}

// questionFromFields builds a question from fields, treating the keys in
// known as question attributes and everything else as extras.
func questionFromFields(fields map[string]json.RawMessage, known []string) (Question, error) {
	q := NewQuestion()
	if _, err := decodeField(fields, keyID, &q.ID); err != nil {
		return Question{}, err
	}
	if _, err := decodeField(fields, keyScenarioTitle, &q.ScenarioTitle); err != nil {
		return Question{}, err
	}
	if _, err := decodeField(fields, keyQuestionText, &q.QuestionText); err != nil {
		return Question{}, err
	}
	if _, err := decodeField(fields, keyImageEnabled, &q.ImageEnabled); err != nil {
		return Question{}, err
	}
	if _, err := decodeField(fields, keyImagePrompt, &q.ImagePrompt); err != nil {
		return Question{}, err
	}
	q.Extra = extras(fields, known)
	return q, nil
}

// decodeField unmarshals fields[key] into dst. A missing key or JSON null
// leaves dst untouched and reports false.
func decodeField(fields map[string]json.RawMessage, key string, dst any) (bool, error) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func extras(fields map[string]json.RawMessage, known []string) map[string]json.RawMessage {
	skip := make(map[string]bool, len(known))
	for _, k := range known {
		skip[k] = true
	}
	var out map[string]json.RawMessage
	for k, v := range fields {
		if skip[k] {
			continue
		}
		if out == nil {
			out = make(map[string]json.RawMessage)
		}
		out[k] = compact(v)
	}
	return out
}

// compact strips insignificant whitespace so extras round-trip unchanged
// through indented saves.
func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return json.RawMessage(buf.Bytes())
}

// assignMissingIDs gives any question without an id the next free one.
func assignMissingIDs(questions []Question) {
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = nextID(questions)
		}
	}
}
