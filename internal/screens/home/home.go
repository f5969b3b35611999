package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/safetyquiz/internal/router"
	"github.com/abhisek/safetyquiz/internal/screen"
	"github.com/abhisek/safetyquiz/internal/ui/components"
	"github.com/abhisek/safetyquiz/internal/ui/layout"
)

// Stats is the summary line shown above the menu.
type Stats struct {
	Questions    int
	Participants int
	PassingScore int
}

// HomeScreen lets the user pick the participant quiz or the admin dashboard.
type HomeScreen struct {
	menu       components.Menu
	menuLabels []string
	stats      func() Stats
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a HomeScreen. quiz and admin build a fresh screen each time
// they are chosen. stats is read on every render and may be nil.
func New(quiz, admin func() screen.Screen, stats func() Stats) *HomeScreen {
	menuLabels := []string{"TAKE QUIZ", "ADMIN", "EXIT"}
	push := func(factory func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			s := factory()
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}
	items := []components.MenuItem{
		{Label: menuLabels[0], Action: push(quiz)},
		{Label: menuLabels[1], Action: push(admin)},
		{Label: menuLabels[2], Action: func() tea.Cmd { return tea.Quit }},
	}
	return &HomeScreen{
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
		stats:      stats,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := contentWidth(width)
	compact := layout.IsCompactWidth(width)

	sections := []string{renderTitle(cw)}
	if h.stats != nil {
		sections = append(sections, renderStatsBar(h.stats(), cw, compact))
	}
	sections = append(sections, renderMenu(h.menuLabels, h.menu.Selected, cw))

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
