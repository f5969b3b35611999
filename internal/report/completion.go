// Package report summarizes and exports participant records.
package report

import (
	"sort"

	"github.com/abhisek/safetyquiz/internal/records"
)

// TargetPerCompany is the expected number of completions per company and
// the upper bound of the chart axis.
const TargetPerCompany = 60

const (
	NoDataMessage  = "No participant data found."
	NoChartMessage = "Not enough data to generate completion chart."
)

// Completion is the number of passing attempts for one company.
type Completion struct {
	Unit    string
	Company string
	Count   int
}

// Label is "UNIT - COY".
func (c Completion) Label() string {
	return c.Unit + " - " + c.Company
}

// Percent is Count as a fraction of TargetPerCompany, capped at 1.
func (c Completion) Percent() float64 {
	return min(float64(c.Count)/TargetPerCompany, 1)
}

// CompletionByCompany counts records per (UNIT, COY), sorted by label.
func CompletionByCompany(recs []records.Record) []Completion {
	type key struct{ unit, company string }
	counts := make(map[key]int)
	for _, r := range recs {
		counts[key{r.Unit, r.Company}]++
	}
	out := make([]Completion, 0, len(counts))
	for k, n := range counts {
		out = append(out, Completion{Unit: k.unit, Company: k.company, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Label() < out[j].Label()
	})
	return out
}
