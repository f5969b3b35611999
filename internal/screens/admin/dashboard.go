package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/safetyquiz/internal/notify"
	"github.com/abhisek/safetyquiz/internal/records"
	"github.com/abhisek/safetyquiz/internal/report"
	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

func (a *AdminScreen) reloadResults() {
	recs, err := a.deps.Results.List()
	a.noData = errors.Is(err, records.ErrNoData)
	if err != nil && !a.noData {
		a.deps.Logger.Warn("load results", "component", "admin", "error", err)
		a.status = "Results could not be read: " + err.Error()
	}
	a.records = recs
	a.results.sync(recs)
}

func (a *AdminScreen) handleDashboardKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "a":
		return a.assignMonthly()
	case "x":
		a.export(report.FormatXLSX)
	case "c":
		a.export(report.FormatCSV)
	case "p":
		a.export(report.FormatPDF)
	}
	return nil
}

func (a *AdminScreen) viewDashboard(width int) string {
	if a.noData {
		return theme.Hint.Render(report.NoDataMessage)
	}
	var b strings.Builder
	b.WriteString(theme.Label.Render(fmt.Sprintf("Passing attempts recorded: %d", len(a.records))))
	b.WriteString("\n\n")
	b.WriteString(report.RenderChart(report.CompletionByCompany(a.records), min(width-8, 100)))
	return b.String()
}

// assignMonthly sends the reminder to every recorded handle in the
// background. The outcome only updates the status line.
func (a *AdminScreen) assignMonthly() tea.Cmd {
	if a.deps.Reminders == nil {
		a.status = "Reminders are not configured."
		return nil
	}
	if len(a.records) == 0 {
		a.status = report.NoDataMessage
		return nil
	}
	handles := make([]string, 0, len(a.records))
	for _, r := range a.records {
		handles = append(handles, r.TelegramHandle)
	}
	reminders := a.deps.Reminders
	message := notify.ReminderMessage(a.deps.QuizLink)
	a.status = fmt.Sprintf("Sending reminders to %d participants...", len(notify.UniqueHandles(handles)))
	return func() tea.Msg {
		return remindersSentMsg{summary: reminders.Send(context.Background(), handles, message)}
	}
}

func reminderStatus(s notify.Summary) string {
	if s.Failed == 0 {
		return fmt.Sprintf("Reminders sent to %d of %d participants.", s.Sent, s.Recipients)
	}
	return fmt.Sprintf("Reminders sent to %d of %d participants, %d failed.", s.Sent, s.Recipients, s.Failed)
}

// export writes the records to a timestamped file in the export directory.
func (a *AdminScreen) export(f report.Format) {
	if a.noData {
		a.status = report.NoDataMessage
		return
	}
	path, err := a.writeExport(f)
	if err != nil {
		a.deps.Logger.Warn("export results", "component", "admin", "format", f, "error", err)
		a.status = "Export failed: " + err.Error()
		return
	}
	a.status = "Exported to " + path
}

func (a *AdminScreen) writeExport(f report.Format) (path string, err error) {
	dir := a.deps.ExportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	now := a.deps.Now()
	path = filepath.Join(dir, fmt.Sprintf("participants_%s.%s", now.Format("20060102_150405"), f))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if err := report.Write(file, f, a.records, now); err != nil {
		return "", err
	}
	return path, nil
}
