package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestOpen_FileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceContinuesAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()
	ev := GenerationEventData{Kind: KindImage, Provider: "pollinations", Success: true}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.EventRepo().AppendGeneration(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if err := s.EventRepo().AppendGeneration(ctx, ev); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := s.EventRepo().QueryGenerations(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 || got[0].Sequence != 3 || got[2].Sequence != 1 {
		t.Fatalf("sequences = %+v", got)
	}
}

func TestAppendAndQueryGenerations(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []GenerationEventData{
		{Kind: KindImage, Provider: "pollinations", Purpose: "auto", QuestionID: "q1", Prompt: "a", LatencyMs: 120, Success: false, ErrorMessage: "status 500"},
		{Kind: KindImage, Provider: "huggingface", Purpose: "auto", QuestionID: "q1", Prompt: "a", LatencyMs: 80, Success: true, Bytes: 2048},
		{Kind: KindPrompt, Provider: "gemini", Model: "gemini-flash", Purpose: "image-prompt", Prompt: "a", Success: true, InputTokens: 10, OutputTokens: 40},
		{Kind: KindImage, Provider: "pollinations", Purpose: "flux", QuestionID: "q2", Prompt: "b", LatencyMs: 40, Success: true, Bytes: 1024},
	}
	for _, e := range events {
		if err := repo.AppendGeneration(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryGenerations(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d events, want 4", len(all))
	}
	if all[0].Provider != "pollinations" || all[0].Purpose != "flux" {
		t.Errorf("newest event = %+v, want flux pollinations", all[0])
	}
	if time.Since(all[0].Timestamp) > time.Minute {
		t.Errorf("timestamp %v not recent", all[0].Timestamp)
	}

	images, err := repo.QueryGenerations(ctx, QueryOpts{Kind: KindImage, QuestionID: "q1"})
	if err != nil {
		t.Fatalf("query images: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d q1 image events, want 2", len(images))
	}
	if !images[0].Success || images[0].Bytes != 2048 {
		t.Errorf("latest q1 event = %+v", images[0])
	}
	if images[1].ErrorMessage != "status 500" {
		t.Errorf("error message = %q", images[1].ErrorMessage)
	}

	limited, err := repo.QueryGenerations(ctx, QueryOpts{Limit: 1, After: all[3].Sequence})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Sequence != all[0].Sequence {
		t.Errorf("limited = %+v", limited)
	}
}

func TestProviderStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []GenerationEventData{
		{Kind: KindImage, Provider: "pollinations", LatencyMs: 100, Success: true},
		{Kind: KindImage, Provider: "pollinations", LatencyMs: 300, Success: false},
		{Kind: KindImage, Provider: "openai", LatencyMs: 50, Success: true},
		{Kind: KindPrompt, Provider: "gemini", Success: true},
	} {
		if err := repo.AppendGeneration(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	stats, err := repo.ProviderStats(ctx, KindImage)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d providers, want 2", len(stats))
	}
	if stats[0].Provider != "openai" || stats[0].Calls != 1 || stats[0].Successes != 1 {
		t.Errorf("openai stats = %+v", stats[0])
	}
	p := stats[1]
	if p.Provider != "pollinations" || p.Calls != 2 || p.Successes != 1 || p.AvgLatencyMs != 200 {
		t.Errorf("pollinations stats = %+v", p)
	}
}
