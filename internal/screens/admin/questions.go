package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/quizconfig"
	"github.com/abhisek/safetyquiz/internal/router"
	"github.com/abhisek/safetyquiz/internal/ui/components"
	"github.com/abhisek/safetyquiz/internal/ui/theme"
)

type questionsTab struct {
	list          []quizconfig.Question
	menu          components.Menu
	mode          imagegen.Mode
	generating    string
	confirmDelete bool
}

// reloadQuestions refreshes the list, keeping the cursor on selectID when
// it is given.
func (a *AdminScreen) reloadQuestions(selectID string) {
	qs, err := a.deps.Questions.ListQuestions()
	if err != nil {
		a.deps.Logger.Warn("load questions", "component", "admin", "error", err)
		a.status = "Quiz configuration could not be read; showing defaults."
	}
	prev := a.questions.menu.Selected
	a.questions.list = qs

	items := make([]components.MenuItem, len(qs))
	for i, q := range qs {
		var tag string
		switch {
		case !q.ImageEnabled:
			tag = "[no image]"
		case a.deps.Images != nil && a.deps.Images.Exists(q.ID):
			tag = "[image saved]"
		}
		id := q.ID
		items[i] = components.MenuItem{
			Label:  fmt.Sprintf("%-4s %s", q.ID, q.Title()),
			Tag:    tag,
			Action: func() tea.Cmd { return a.openEditor(id) },
		}
		if id == selectID {
			prev = i
		}
	}
	a.questions.menu = components.NewMenu(items)
	if prev >= 0 && prev < len(items) {
		a.questions.menu.Selected = prev
	}
}

func (a *AdminScreen) selectedQuestion() (quizconfig.Question, bool) {
	i := a.questions.menu.Selected
	if i < 0 || i >= len(a.questions.list) {
		return quizconfig.Question{}, false
	}
	return a.questions.list[i], true
}

func (a *AdminScreen) openEditor(id string) tea.Cmd {
	var ed *EditorScreen
	if id == "" {
		ed = NewEditor(a.deps.Questions, nil)
	} else {
		q, err := a.deps.Questions.GetQuestion(id)
		if err != nil {
			a.status = err.Error()
			return nil
		}
		ed = NewEditor(a.deps.Questions, &q)
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: ed} }
}

func (a *AdminScreen) handleQuestionsKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "n":
		return a.openEditor("")
	case "d":
		if _, ok := a.selectedQuestion(); ok {
			a.questions.confirmDelete = true
		}
		return nil
	case "g":
		return a.generateImage()
	case "i":
		a.deleteImage()
		return nil
	case "m":
		a.questions.mode = a.questions.mode.Next()
		return nil
	}
	var cmd tea.Cmd
	a.questions.menu, cmd = a.questions.menu.Update(msg)
	return cmd
}

func (a *AdminScreen) deleteQuestion() {
	q, ok := a.selectedQuestion()
	if !ok {
		return
	}
	err := a.deps.Questions.DeleteQuestion(q.ID)
	switch {
	case errors.Is(err, quizconfig.ErrLastQuestion):
		a.status = "Cannot delete the last remaining question."
		return
	case err != nil:
		a.deps.Logger.Warn("delete question", "component", "admin", "question", q.ID, "error", err)
		a.status = "Delete failed: " + err.Error()
		return
	}
	a.reloadQuestions("")
	a.status = fmt.Sprintf("Question %s deleted.", q.ID)
}

// generateImage generates an image for the selected question in the
// background and saves it to the image store.
func (a *AdminScreen) generateImage() tea.Cmd {
	q, ok := a.selectedQuestion()
	if !ok {
		return nil
	}
	if a.deps.Generator == nil || a.deps.Images == nil {
		a.status = "Image generation is not configured."
		return nil
	}
	if a.questions.generating != "" {
		a.status = "Already generating an image for " + a.questions.generating + "."
		return nil
	}
	a.questions.generating = q.ID
	a.status = fmt.Sprintf("Generating image for %s (%s)...", q.ID, a.questions.mode.Label())

	gen, images, timeout := a.deps.Generator, a.deps.Images, a.deps.ImageTimeout
	req := imagegen.Request{QuestionID: q.ID, Prompt: q.ImagePrompt, Mode: a.questions.mode}
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		img, err := gen.Generate(ctx, req)
		if err != nil {
			return imageSavedMsg{questionID: req.QuestionID, err: err}
		}
		path, err := images.Save(req.QuestionID, img.Data)
		return imageSavedMsg{questionID: req.QuestionID, image: img, path: path, err: err}
	}
}

func (a *AdminScreen) handleImageSaved(msg imageSavedMsg) {
	a.questions.generating = ""
	if msg.err != nil {
		a.deps.Logger.Warn("generate image", "component", "admin", "question", msg.questionID, "error", msg.err)
		a.status = fmt.Sprintf("No image generated for %s: %v", msg.questionID, msg.err)
		return
	}
	a.deps.Logger.Info("image saved", "component", "admin", "question", msg.questionID, "source", msg.image.Source, "path", msg.path)
	a.reloadQuestions(msg.questionID)
	a.status = fmt.Sprintf("Image for %s saved to %s (by %s).", msg.questionID, msg.path, msg.image.Source)
}

func (a *AdminScreen) deleteImage() {
	q, ok := a.selectedQuestion()
	if !ok || a.deps.Images == nil {
		return
	}
	if err := a.deps.Images.Delete(q.ID); err != nil {
		a.status = "Delete image failed: " + err.Error()
		return
	}
	a.reloadQuestions(q.ID)
	a.status = fmt.Sprintf("Image for %s deleted.", q.ID)
}

func (a *AdminScreen) viewQuestions(width int) string {
	var b strings.Builder
	b.WriteString(a.questions.menu.View())
	b.WriteString("\n")
	if q, ok := a.selectedQuestion(); ok {
		b.WriteString(theme.Body.Width(max(width-8, 20)).Render(q.Text()))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Hint.Render("Image mode: " + a.questions.mode.Label()))
	if a.questions.confirmDelete {
		q, _ := a.selectedQuestion()
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("Delete question %s and its image? (y/n)", q.ID)))
	}
	return b.String()
}
