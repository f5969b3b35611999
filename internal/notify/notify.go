// Package notify delivers short text messages to participants by their
// Telegram handle.
package notify

import (
	"context"
	"log/slog"
)

// DefaultQuizLink is the link used in reminders when none is configured.
const DefaultQuizLink = "[PLACEHOLDER_QUIZ_LINK]"

// Notifier sends message to the participant identified by handle.
type Notifier interface {
	Notify(ctx context.Context, handle, message string) error
}

// ReminderMessage is the monthly reminder text.
func ReminderMessage(link string) string {
	if link == "" {
		link = DefaultQuizLink
	}
	return "Reminder: Please complete your monthly SAF Safety Quiz. Link: " + link
}

// LogNotifier only logs messages. It is used when no delivery channel is
// configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, handle, message string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification", "component", "notify", "handle", handle, "message", message)
	return nil
}
