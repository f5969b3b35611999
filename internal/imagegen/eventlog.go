package imagegen

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/safetyquiz/internal/llm"
	"github.com/abhisek/safetyquiz/internal/store"
)

// loggingProvider records every call in the generation event log.
type loggingProvider struct {
	inner  Provider
	events store.EventRepo
	logger *slog.Logger
}

// WithEventLog wraps p so each call is appended to events. The mode and
// question id are read from the context the Generator sets.
func WithEventLog(p Provider, events store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingProvider{inner: p, events: events, logger: logger}
}

func (l *loggingProvider) Name() string  { return l.inner.Name() }
func (l *loggingProvider) Model() string { return l.inner.Model() }

func (l *loggingProvider) Generate(ctx context.Context, prompt string) ([]byte, error) {
	start := time.Now()
	data, err := l.inner.Generate(ctx, prompt)

	ev := store.GenerationEventData{
		Kind:       store.KindImage,
		Provider:   l.inner.Name(),
		Model:      l.inner.Model(),
		Purpose:    llm.PurposeFrom(ctx),
		QuestionID: llm.QuestionFrom(ctx),
		Prompt:     prompt,
		LatencyMs:  time.Since(start).Milliseconds(),
		Success:    err == nil,
		Bytes:      len(data),
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	// A cancelled caller context must not drop the record.
	if logErr := l.events.AppendGeneration(context.WithoutCancel(ctx), ev); logErr != nil {
		l.logger.Warn("record image call", "component", "imagegen", "provider", l.inner.Name(), "error", logErr)
	}
	return data, err
}
