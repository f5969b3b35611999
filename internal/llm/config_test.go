package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/safetyquiz/internal/store"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SAFETYQUIZ_LLM_PROVIDER", "SAFETYQUIZ_GEMINI_API_KEY", "SAFETYQUIZ_OPENAI_API_KEY",
		"SAFETYQUIZ_ANTHROPIC_API_KEY", "SAFETYQUIZ_LLM_TIMEOUT",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "openrouter"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("SAFETYQUIZ_LLM_PROVIDER", "openai")
	t.Setenv("SAFETYQUIZ_OPENAI_API_KEY", "sk-1")
	t.Setenv("SAFETYQUIZ_OPENAI_BASE_URL", "http://localhost:1234/v1")
	t.Setenv("SAFETYQUIZ_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-1", cfg.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:1234/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
}

func TestDiscoverConfig(t *testing.T) {
	clearLLMEnv(t)
	_, ok := DiscoverConfig()
	assert.False(t, ok)

	t.Setenv("ANTHROPIC_API_KEY", "a")
	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)

	t.Setenv("GOOGLE_API_KEY", "g")
	cfg, ok = DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "g", cfg.Gemini.APIKey)
}

func TestResolve_PrefersExplicitConfig(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("OPENAI_API_KEY", "discovered")
	t.Setenv("SAFETYQUIZ_LLM_PROVIDER", "anthropic")
	t.Setenv("SAFETYQUIZ_ANTHROPIC_API_KEY", "explicit")

	cfg, ok := Resolve()
	require.True(t, ok)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)

	t.Setenv("SAFETYQUIZ_ANTHROPIC_API_KEY", "")
	cfg, ok = Resolve()
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
}

func TestMockProvider_FIFOAndRecording(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10}},
		MockResponse{Err: &ErrRateLimit{}},
	)

	resp, err := mock.Generate(context.Background(), Request{System: "sys"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp.Content))
	assert.Equal(t, 10, resp.Usage.InputTokens)

	_, err = mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl))

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail), "empty queue")

	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "hello", (&Response{Content: json.RawMessage(`"hello"`)}).Text())
	assert.Equal(t, `{"a":1}`, (&Response{Content: json.RawMessage(` {"a":1} `)}).Text())
}

type recordingRepo struct {
	events []store.GenerationEventData
	err    error
}

func (r *recordingRepo) AppendGeneration(_ context.Context, d store.GenerationEventData) error {
	r.events = append(r.events, d)
	return r.err
}

func (r *recordingRepo) QueryGenerations(context.Context, store.QueryOpts) ([]store.GenerationEvent, error) {
	return nil, nil
}

func (r *recordingRepo) ProviderStats(context.Context, string) ([]store.ProviderStats, error) {
	return nil, nil
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	repo := &recordingRepo{err: errors.New("db locked")}
	mock := NewMockProvider(
		MockResponse{Content: okContent, Usage: Usage{InputTokens: 3, OutputTokens: 4}},
		MockResponse{Err: down},
	)
	p := WithLogging(mock, "gemini", repo)

	ctx := WithQuestion(WithPurpose(context.Background(), PurposeImagePrompt), "q2")
	_, err := p.Generate(ctx, Request{Messages: UserMessage(" soldiers ")})
	require.NoError(t, err, "event log failure must not fail the call")
	_, err = p.Generate(ctx, Request{Messages: UserMessage("x")})
	require.Error(t, err)

	require.Len(t, repo.events, 2)
	first := repo.events[0]
	assert.Equal(t, store.KindPrompt, first.Kind)
	assert.Equal(t, "gemini", first.Provider)
	assert.Equal(t, PurposeImagePrompt, first.Purpose)
	assert.Equal(t, "q2", first.QuestionID)
	assert.Equal(t, "soldiers", first.Prompt)
	assert.True(t, first.Success)
	assert.Equal(t, 4, first.OutputTokens)

	assert.False(t, repo.events[1].Success)
	assert.NotEmpty(t, repo.events[1].ErrorMessage)
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = NewProvider(context.Background(), Config{Provider: "nope"}, nil)
	assert.Error(t, err)
}
