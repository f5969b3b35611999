package admin

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/safetyquiz/internal/quizconfig"
	"github.com/abhisek/safetyquiz/internal/ui/components"
	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

type settingsTab struct {
	passing components.TextInput
	limit   components.TextInput
	focus   int
}

func newSettingsTab(bank QuestionBank) settingsTab {
	passing, limit := bank.Settings()
	t := settingsTab{
		passing: components.NewNumberInput("1-10", 2),
		limit:   components.NewNumberInput("seconds", 5),
	}
	t.passing.SetValue(fmt.Sprint(passing))
	t.limit.SetValue(fmt.Sprint(limit))
	t.passing.Focus()
	return t
}

func (a *AdminScreen) handleSettingsKey(msg tea.KeyPressMsg) tea.Cmd {
	t := &a.settings
	switch msg.String() {
	case "up", "down":
		t.focus = 1 - t.focus
		if t.focus == 0 {
			t.limit.Blur()
			return t.passing.Focus()
		}
		t.passing.Blur()
		return t.limit.Focus()
	case "enter":
		a.saveSettings()
		return nil
	}
	var cmd tea.Cmd
	if t.focus == 0 {
		t.passing, cmd = t.passing.Update(msg)
	} else {
		t.limit, cmd = t.limit.Update(msg)
	}
	return cmd
}

func (a *AdminScreen) saveSettings() {
	t := &a.settings
	passing, perr := t.passing.Number()
	if perr == nil {
		perr = quizconfig.ValidatePassingScore(passing)
	}
	limit, lerr := t.limit.Number()
	if lerr == nil {
		lerr = quizconfig.ValidateTimeLimit(limit)
	}
	t.passing.Mark(perr == nil)
	t.limit.Mark(lerr == nil)
	if perr != nil || lerr != nil {
		a.status = "Passing score must be 1-10 and time limit a positive number of seconds."
		return
	}
	if err := a.deps.Questions.UpdateSettings(passing, limit); err != nil {
		a.deps.Logger.Warn("save settings", "component", "admin", "error", err)
		a.status = "Settings could not be saved: " + err.Error()
		return
	}
	a.deps.Logger.Info("settings updated", "component", "admin", "passing_score", passing, "time_limit", limit)
	a.status = "Settings saved."
}

func (a *AdminScreen) viewSettings() string {
	var b strings.Builder
	b.WriteString(theme.Label.Render("Passing score  "))
	b.WriteString(a.settings.passing.View())
	b.WriteString("\n")
	b.WriteString(theme.Label.Render("Time limit (s) "))
	b.WriteString(a.settings.limit.View())
	return b.String()
}
