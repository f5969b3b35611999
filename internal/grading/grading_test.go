package grading

import (
	"testing"
)

const (
	strength7    = "Good identification of initial response steps."
	weakness7    = "Could be more specific on who to call and what to check."
	improvement4 = "Specify calling the platoon medic or section commander and checking for breathing and responsiveness."
)

func TestGrade_Empty(t *testing.T) {
	got := Grade("")
	want := Result{Score: 0, Feedback: Feedback{
		Strength:    DefaultStrength,
		Weakness:    DefaultWeakness,
		Improvement: DefaultImprovement,
	}}
	if got != want {
		t.Fatalf("Grade(\"\") = %+v, want %+v", got, want)
	}
}

func TestGrade_LiteralCases(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		score       int
		strength    string
		weakness    string
		improvement string
	}{
		{
			name:        "all three rules",
			answer:      "I would check if he is conscious and call for a medic",
			score:       10,
			strength:    strength7,
			weakness:    weakness7,
			improvement: improvement4,
		},
		{
			name:        "assess only",
			answer:      "I would assess the situation",
			score:       3,
			strength:    DefaultStrength,
			weakness:    DefaultWeakness,
			improvement: DefaultImprovement,
		},
		{
			name:        "case insensitive",
			answer:      "CALL FOR HELP now, CHECK breathing",
			score:       10,
			strength:    strength7,
			weakness:    weakness7,
			improvement: improvement4,
		},
		{
			name:        "help only hits the >=4 branch",
			answer:      "Get the medic.",
			score:       4,
			strength:    DefaultStrength,
			weakness:    DefaultWeakness,
			improvement: improvement4,
		},
		{
			name:        "seven points",
			answer:      "call for help and assess him",
			score:       7,
			strength:    strength7,
			weakness:    weakness7,
			improvement: improvement4,
		},
		{
			name:        "vitals and assess",
			answer:      "check whether he is breathing",
			score:       6,
			strength:    DefaultStrength,
			weakness:    DefaultWeakness,
			improvement: improvement4,
		},
		{
			name:        "rule fires once despite repeats",
			answer:      "medic medic medic, call for help",
			score:       4,
			strength:    DefaultStrength,
			weakness:    DefaultWeakness,
			improvement: improvement4,
		},
		{
			name:        "substring match inside a longer word",
			answer:      "ask the paramedic team",
			score:       4,
			strength:    DefaultStrength,
			weakness:    DefaultWeakness,
			improvement: improvement4,
		},
		{
			name:        "nothing relevant",
			answer:      "carry on marching",
			score:       0,
			strength:    DefaultStrength,
			weakness:    DefaultWeakness,
			improvement: DefaultImprovement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Grade(tt.answer)
			if got.Score != tt.score {
				t.Errorf("Score = %d, want %d", got.Score, tt.score)
			}
			if got.Strength != tt.strength {
				t.Errorf("Strength = %q, want %q", got.Strength, tt.strength)
			}
			if got.Weakness != tt.weakness {
				t.Errorf("Weakness = %q, want %q", got.Weakness, tt.weakness)
			}
			if got.Improvement != tt.improvement {
				t.Errorf("Improvement = %q, want %q", got.Improvement, tt.improvement)
			}
		})
	}
}

func TestGrade_DeterministicAndBounded(t *testing.T) {
	answers := []string{
		"",
		"x",
		"MEDIC",
		"assess conscious medic check breathing call for help",
		"I'd stop, check on him, see if he's conscious, and call for help from the medic.",
		"完全に無関係",
	}
	for _, a := range answers {
		first := Grade(a)
		second := Grade(a)
		if first != second {
			t.Errorf("Grade(%q) not deterministic: %+v vs %+v", a, first, second)
		}
		if first.Score < 0 || first.Score > MaxScore {
			t.Errorf("Grade(%q).Score = %d, out of [0,%d]", a, first.Score, MaxScore)
		}
	}
}

func TestResult_Passed(t *testing.T) {
	r := Result{Score: 9}
	if !r.Passed(9) {
		t.Error("score equal to passing score should pass")
	}
	if r.Passed(10) {
		t.Error("score below passing score should fail")
	}
}

func TestMatchedRules(t *testing.T) {
	got := MatchedRules("Check breathing")
	if len(got) != 2 || got[0] != "assess" || got[1] != "vitals" {
		t.Fatalf("MatchedRules = %v, want [assess vitals]", got)
	}
	if MatchedRules("") != nil {
		t.Fatal("expected nil for empty answer")
	}
}
