package admin

import (
	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/notify"
)

// questionsChangedMsg is sent after the editor saves, once the admin screen
// is active again.
type questionsChangedMsg struct {
	id string
}

// imageSavedMsg reports a finished generate-and-save for a question.
type imageSavedMsg struct {
	questionID string
	image      *imagegen.Image
	path       string
	err        error
}

// remindersSentMsg reports the outcome of an "Assign Monthly" run.
type remindersSentMsg struct {
	summary notify.Summary
}
