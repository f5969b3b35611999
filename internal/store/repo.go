package store

import (
	"context"
	"time"
)

// Event kinds.
const (
	KindImage  = "image"  // an image provider call
	KindPrompt = "prompt" // a text model call that rewrites an image prompt
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit      int       // max results (0 = unlimited)
	After      int64     // sequence > After
	Kind       string    // exact kind, empty for all
	QuestionID string    // exact question id, empty for all
	From       time.Time // timestamp >= From
}

// GenerationEventData captures one external generation call.
type GenerationEventData struct {
	Kind         string
	Provider     string
	Model        string
	Purpose      string // image mode, or the prompt-enhancer purpose
	QuestionID   string
	Prompt       string
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	Bytes        int
	InputTokens  int
	OutputTokens int
}

// GenerationEvent is a stored GenerationEventData.
type GenerationEvent struct {
	Sequence  int64
	Timestamp time.Time
	GenerationEventData
}

// ProviderStats summarizes the calls made to one provider.
type ProviderStats struct {
	Provider     string
	Calls        int
	Successes    int
	AvgLatencyMs float64
}

// EventRepo provides append and query access to generation events.
type EventRepo interface {
	// AppendGeneration records an external generation call.
	AppendGeneration(ctx context.Context, data GenerationEventData) error

	// QueryGenerations returns events newest first.
	QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error)

	// ProviderStats aggregates events of the given kind by provider.
	ProviderStats(ctx context.Context, kind string) ([]ProviderStats, error)
}
