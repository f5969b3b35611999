package llm

import "context"

type contextKey string

const (
	purposeKey  contextKey = "llm_purpose"
	questionKey contextKey = "llm_question"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithQuestion attaches the question id a call is made for.
func WithQuestion(ctx context.Context, questionID string) context.Context {
	return context.WithValue(ctx, questionKey, questionID)
}

// QuestionFrom extracts the question id, or "".
func QuestionFrom(ctx context.Context) string {
	v, _ := ctx.Value(questionKey).(string)
	return v
}
