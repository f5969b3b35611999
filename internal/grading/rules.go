package grading

import "strings"

// MaxScore is the highest score the rule table can award.
const MaxScore = 10

// keywordRule awards Points when the answer contains any of Phrases.
// Phrases are matched case-insensitively as substrings.
type keywordRule struct {
	Name    string
	Phrases []string
	Points  int
}

// Matches reports whether the lowercased answer contains any phrase.
func (r keywordRule) Matches(lower string) bool {
	for _, p := range r.Phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// scoringRules is evaluated in order; each rule fires at most once.
var scoringRules = []keywordRule{
	{Name: "call-for-help", Phrases: []string{"medic", "call for help"}, Points: 4},
	{Name: "assess", Phrases: []string{"check", "assess"}, Points: 3},
	{Name: "vitals", Phrases: []string{"conscious", "breathing"}, Points: 3},
}

// feedbackRule overwrites the non-empty fields of Feedback when the score
// reaches MinScore. Later rules override earlier ones for the fields they set.
type feedbackRule struct {
	MinScore int
	Feedback Feedback
}

// Default feedback, used when no threshold rule applies.
const (
	DefaultStrength    = "No specific strengths identified."
	DefaultWeakness    = "Lacked detail on critical safety procedures."
	DefaultImprovement = "A better answer would include checking for consciousness, calling for a medic, and not moving the injured person."
)

// feedbackRules must stay in this order: the >=4 rule runs after the >=7
// rule and only replaces Improvement.
var feedbackRules = []feedbackRule{
	{
		MinScore: 7,
		Feedback: Feedback{
			Strength: "Good identification of initial response steps.",
			Weakness: "Could be more specific on who to call and what to check.",
		},
	},
	{
		MinScore: 4,
		Feedback: Feedback{
			Improvement: "Specify calling the platoon medic or section commander and checking for breathing and responsiveness.",
		},
	},
}

// apply merges the rule's non-empty fields into f.
func (r feedbackRule) apply(f Feedback) Feedback {
	if r.Feedback.Strength != "" {
		f.Strength = r.Feedback.Strength
	}
	if r.Feedback.Weakness != "" {
		f.Weakness = r.Feedback.Weakness
	}
	if r.Feedback.Improvement != "" {
		f.Improvement = r.Feedback.Improvement
	}
	return f
}
