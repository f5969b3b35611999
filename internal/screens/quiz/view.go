package quiz

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/safetyquiz/internal/flow"
	"github.com/abhisek/safetyquiz/internal/grading"
	"github.com/abhisek/safetyquiz/internal/ui/components"
	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	var body string
	switch {
	case s.state.Phase == flow.PhaseDetails:
		body = s.renderDetails(width)
	case s.state.ShowingFeedback():
		body = s.renderFeedback(width)
	case s.state.Phase == flow.PhaseQuestion:
		body = s.renderQuestion(width)
	case s.state.Phase == flow.PhaseCompletion:
		body = s.renderCompletion(width)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, body)
}

func cardWidth(width int) int {
	return min(max(width-8, 40), 96)
}

func (s *QuizScreen) renderDetails(width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Participant Details"))
	b.WriteString("\n\n")
	for _, sel := range s.selects {
		b.WriteString(sel.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(fieldLabel("Rank Name", s.focus == fieldRankName))
	b.WriteString(s.rank.View())
	b.WriteString("\n")
	b.WriteString(fieldLabel("Telegram Handle", s.focus == fieldHandle))
	b.WriteString(s.handle.View())
	b.WriteString("\n")

	if s.formErr != "" {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render(s.formErr))
		b.WriteString("\n")
	}

	return theme.Card.Width(cardWidth(width)).Render(b.String())
}

func fieldLabel(label string, focused bool) string {
	style := lipgloss.NewStyle().Foreground(theme.TextDim).Width(18)
	if focused {
		style = style.Foreground(theme.Primary).Bold(true)
	}
	return style.Render(label)
}

func (s *QuizScreen) renderQuestion(width int) string {
	q := s.state.Question
	cw := cardWidth(width)

	var b strings.Builder
	b.WriteString(theme.Label.Render(q.Title()))
	b.WriteString("\n")
	if timer := s.renderTimer(cw - 6); timer != "" {
		b.WriteString(timer)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.Body.Width(cw - 6).Render(q.Text()))
	b.WriteString("\n\n")
	if img := s.renderImage(); img != "" {
		b.WriteString(img)
		b.WriteString("\n\n")
	}
	if s.state.Notice != "" {
		b.WriteString(theme.Notice.Render(s.state.Notice))
		b.WriteString("\n\n")
	}
	if s.expired {
		b.WriteString(theme.Notice.Render("Time is up. You can still submit your answer."))
		b.WriteString("\n\n")
	}
	if s.leaveArmed {
		b.WriteString(theme.Incorrect.Render("Press Esc again to leave. Your answer will be lost."))
		b.WriteString("\n\n")
	}
	s.answer.SetWidth(cw - 6)
	b.WriteString(s.answer.View())

	return theme.Card.Width(cw).Render(b.String())
}

func (s *QuizScreen) renderTimer(width int) string {
	if s.limit <= 0 {
		return ""
	}
	return components.Countdown{
		Remaining: s.remaining,
		Total:     s.limit,
		Width:     min(width, 48),
		Warn:      10 * time.Second,
	}.View()
}

func (s *QuizScreen) renderImage() string {
	mode := theme.Hint.Render("mode: " + s.mode.Label())
	switch s.image.status {
	case imageSaved:
		return theme.Hint.Render("Illustration: " + s.image.path)
	case imageGenerating:
		return theme.Hint.Render("Generating illustration...") + "  " + mode
	case imageGenerated:
		return theme.Hint.Render(fmt.Sprintf("Illustration: %s\nImage by %s", s.image.path, s.image.source)) + "  " + mode
	case imageFailed:
		return theme.Hint.Render("No image available.") + "  " + mode
	}
	return ""
}

func (s *QuizScreen) renderFeedback(width int) string {
	fb := s.state.Feedback
	var b strings.Builder
	b.WriteString(theme.Label.Render(s.state.Question.Title()))
	b.WriteString("\n\n")
	b.WriteString(theme.Incorrect.Render(fmt.Sprintf(
		"Your score was %d/%d. You need a score of %d or higher to pass.",
		fb.Score, grading.MaxScore, s.state.PassingScore)))
	b.WriteString("\n\n")
	b.WriteString(renderFeedbackFields(fb, cardWidth(width)-6))
	b.WriteString("\n\n")
	b.WriteString(components.NewButton("R", "Retry").View())

	return theme.Card.Width(cardWidth(width)).Render(b.String())
}

func (s *QuizScreen) renderCompletion(width int) string {
	res := s.state.Result
	var b strings.Builder
	b.WriteString(theme.Correct.Render("Quiz completed!"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Your score: %d/%d", res.Score, grading.MaxScore)))
	b.WriteString("\n\n")
	b.WriteString(renderFeedbackFields(res, cardWidth(width)-6))
	b.WriteString("\n\n")
	if s.state.Notice != "" {
		b.WriteString(theme.Notice.Render(s.state.Notice))
		b.WriteString("\n\n")
	}
	b.WriteString(components.NewButton("Enter", "Finish").View())

	return theme.Card.Width(cardWidth(width)).Render(b.String())
}

func renderFeedbackFields(r *grading.Result, width int) string {
	line := func(label, text string) string {
		prefix := theme.Label.Render(label + ": ")
		return prefix + theme.Body.Width(max(width-lipgloss.Width(prefix), 10)).Render(text)
	}
	return strings.Join([]string{
		line("Strength", r.Strength),
		line("Weakness", r.Weakness),
		line("Improvement", r.Improvement),
	}, "\n")
}
