package admin

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/safetyquiz/internal/grading"
	"github.com/abhisek/safetyquiz/internal/records"
	"github.com/abhisek/safetyquiz/internal/report"
	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

type resultsTab struct {
	table         table.Model
	confirmDelete bool
}

var resultColumns = []table.Column{
	{Title: records.ColUnit, Width: 7},
	{Title: records.ColCompany, Width: 8},
	{Title: "PLT", Width: 4},
	{Title: records.ColRankName, Width: 18},
	{Title: records.ColTelegramHandle, Width: 18},
	{Title: records.ColScore, Width: 5},
	{Title: records.ColTimestamp, Width: 16},
}

func (r *resultsTab) sync(recs []records.Record) {
	rows := make([]table.Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, table.Row{
			rec.Unit,
			rec.Company,
			rec.Platoon,
			rec.RankName,
			rec.TelegramHandle,
			strconv.Itoa(rec.Score),
			rec.Timestamp.Format("2006-01-02 15:04"),
		})
	}
	cursor := r.table.Cursor()
	r.table = table.New(
		table.WithColumns(resultColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	r.table.SetCursor(max(cursor, 0))
}

func (a *AdminScreen) handleResultsKey(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "d" {
		if len(a.records) > 0 {
			a.results.confirmDelete = true
		}
		return nil
	}
	var cmd tea.Cmd
	a.results.table, cmd = a.results.table.Update(msg)
	return cmd
}

func (a *AdminScreen) deleteResult() {
	idx := a.results.table.Cursor()
	if err := a.deps.Results.DeleteAt(idx); err != nil {
		a.deps.Logger.Warn("delete result", "component", "admin", "row", idx, "error", err)
		a.status = "Delete failed: " + err.Error()
		return
	}
	a.deps.Logger.Info("result deleted", "component", "admin", "row", idx)
	a.reloadResults()
	a.status = fmt.Sprintf("Row %d deleted.", idx+1)
}

func (a *AdminScreen) viewResults(width, height int) string {
	if a.noData || len(a.records) == 0 {
		return theme.Hint.Render(report.NoDataMessage)
	}
	a.results.table.SetHeight(max(min(height-16, len(a.records)+1), 3))

	var b strings.Builder
	b.WriteString(a.results.table.View())
	b.WriteString("\n\n")

	idx := a.results.table.Cursor()
	if idx >= 0 && idx < len(a.records) {
		rec := a.records[idx]
		b.WriteString(theme.Label.Render("Answer: "))
		b.WriteString(theme.Body.Width(max(width-14, 20)).Render(rec.Answer))
		b.WriteString("\n")
		matched := grading.MatchedRules(rec.Answer)
		if len(matched) == 0 {
			matched = []string{"none"}
		}
		b.WriteString(theme.Hint.Render("Matched: " + strings.Join(matched, ", ")))
	}
	if a.results.confirmDelete {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("Delete row %d? (y/n)", idx+1)))
	}
	return b.String()
}
