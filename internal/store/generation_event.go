package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// eventRepo implements EventRepo with raw SQL.
type eventRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *eventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// AppendGeneration numbers the event one past the highest stored sequence
// within the insert itself. Timestamps collide when a provider chain fails
// fast, so the sequence is what orders events.
func (r *eventRepo) AppendGeneration(ctx context.Context, data GenerationEventData) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO generation_events
		(sequence, timestamp, kind, provider, model, purpose, question_id, prompt,
		 latency_ms, success, error_message, bytes, input_tokens, output_tokens)
		SELECT COALESCE(MAX(sequence), 0) + 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		FROM generation_events`,
		r.clock().UTC().Format(time.RFC3339Nano),
		data.Kind,
		data.Provider,
		data.Model,
		data.Purpose,
		data.QuestionID,
		data.Prompt,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
		data.Bytes,
		data.InputTokens,
		data.OutputTokens,
	)
	if err != nil {
		return fmt.Errorf("save generation event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, opts.Kind)
	}
	if opts.QuestionID != "" {
		where = append(where, "question_id = ?")
		args = append(args, opts.QuestionID)
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.From.UTC().Format(time.RFC3339Nano))
	}

	q := `SELECT sequence, timestamp, kind, provider, model, purpose, question_id, prompt,
		latency_ms, success, error_message, bytes, input_tokens, output_tokens
		FROM generation_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query generation events: %w", err)
	}
	defer rows.Close()

	var out []GenerationEvent
	for rows.Next() {
		var (
			ev GenerationEvent
			ts string
		)
		if err := rows.Scan(
			&ev.Sequence, &ts, &ev.Kind, &ev.Provider, &ev.Model, &ev.Purpose,
			&ev.QuestionID, &ev.Prompt, &ev.LatencyMs, &ev.Success, &ev.ErrorMessage,
			&ev.Bytes, &ev.InputTokens, &ev.OutputTokens,
		); err != nil {
			return nil, fmt.Errorf("scan generation event: %w", err)
		}
		ev.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse event timestamp %q: %w", ts, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) ProviderStats(ctx context.Context, kind string) ([]ProviderStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT provider, COUNT(*), SUM(success), AVG(latency_ms)
		FROM generation_events WHERE kind = ? GROUP BY provider ORDER BY provider`, kind)
	if err != nil {
		return nil, fmt.Errorf("query provider stats: %w", err)
	}
	defer rows.Close()

	var out []ProviderStats
	for rows.Next() {
		var ps ProviderStats
		if err := rows.Scan(&ps.Provider, &ps.Calls, &ps.Successes, &ps.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan provider stats: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}
