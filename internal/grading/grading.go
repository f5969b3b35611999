// Package grading scores free-text answers to the safety scenario with a
// fixed keyword rule table and picks canned feedback for the result.
package grading

import "strings"

// Feedback holds the three canned feedback strings shown to a participant.
type Feedback struct {
	Strength    string
	Weakness    string
	Improvement string
}

// Result is the outcome of grading one answer. It is never mutated after
// Grade returns it.
type Result struct {
	Score int
	Feedback
}

// Passed reports whether the result meets the given passing score.
func (r Result) Passed(passingScore int) bool {
	return r.Score >= passingScore
}

// Grade scores answer against the keyword rules. It is deterministic and
// performs no I/O; an empty answer scores 0 with the default feedback.
func Grade(answer string) Result {
	lower := strings.ToLower(answer)

	score := 0
	for _, rule := range scoringRules {
		if rule.Matches(lower) {
			score += rule.Points
		}
	}

	fb := Feedback{
		Strength:    DefaultStrength,
		Weakness:    DefaultWeakness,
		Improvement: DefaultImprovement,
	}
	for _, rule := range feedbackRules {
		if score >= rule.MinScore {
			fb = rule.apply(fb)
		}
	}

	return Result{Score: score, Feedback: fb}
}

// MatchedRules returns the names of the scoring rules the answer triggers,
// in rule order. Used by the admin views to explain a score.
func MatchedRules(answer string) []string {
	lower := strings.ToLower(answer)
	var names []string
	for _, rule := range scoringRules {
		if rule.Matches(lower) {
			names = append(names, rule.Name)
		}
	}
	return names
}
