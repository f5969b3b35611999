package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/safetyquiz/internal/llm"
	"github.com/abhisek/safetyquiz/internal/store"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR fake image body")

type fakeProvider struct {
	name    string
	succeed func(prompt string) bool
	prompts []string
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Model() string { return f.name + "-model" }

func (f *fakeProvider) Generate(_ context.Context, prompt string) ([]byte, error) {
	f.prompts = append(f.prompts, prompt)
	if f.succeed != nil && f.succeed(prompt) {
		return pngBytes, nil
	}
	return nil, errors.New(f.name + " failed")
}

func TestPlan(t *testing.T) {
	tests := []struct {
		mode       Mode
		configured string
		want       []string
	}{
		{ModeFlux, "soldiers", []string{"soldiers" + styleSuffix, LastResortPrompt}},
		{ModeTurbo, "soldiers", []string{"soldiers", LastResortPrompt}},
		{ModeSimplified, "soldiers", []string{SimplifiedPrompt, LastResortPrompt}},
		{ModeAuto, "soldiers", []string{"soldiers" + styleSuffix, "soldiers", LastResortPrompt}},
		{ModeEnhanced, "soldiers", []string{"soldiers" + styleSuffix, "soldiers", LastResortPrompt}},
		{ModeTurbo, "   ", []string{DefaultPrompt, LastResortPrompt}},
		{Mode("bogus"), "x", []string{"x" + styleSuffix, "x", LastResortPrompt}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, Plan(tt.mode, tt.configured))
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Flux ")
	require.NoError(t, err)
	assert.Equal(t, ModeFlux, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	_, err = ParseMode("gemini")
	assert.Error(t, err)

	assert.Equal(t, ModeAuto, ModeEnhanced.Next())
	assert.Equal(t, "Turbo (Fast)", ModeTurbo.Label())
}

func TestGenerate_FirstSuccessWins(t *testing.T) {
	a := &fakeProvider{name: "a"}
	b := &fakeProvider{name: "b", succeed: func(p string) bool { return !strings.HasSuffix(p, styleSuffix) }}
	g := NewGenerator([]Provider{a, b})

	img, err := g.Generate(context.Background(), Request{QuestionID: "q1", Prompt: "soldiers", Mode: ModeAuto})
	require.NoError(t, err)
	assert.Equal(t, "soldiers", img.Prompt)
	assert.Equal(t, "b (Auto (Best))", img.Source)
	assert.Equal(t, "image/png", img.ContentType)
	assert.False(t, img.Fallback)

	// prompt-major order: both providers see the styled prompt first
	assert.Equal(t, []string{"soldiers" + styleSuffix, "soldiers"}, a.prompts)
	assert.Equal(t, []string{"soldiers" + styleSuffix, "soldiers"}, b.prompts)
}

func TestGenerate_LastResortMarksFallback(t *testing.T) {
	p := &fakeProvider{name: "a", succeed: func(p string) bool { return p == LastResortPrompt }}
	img, err := NewGenerator([]Provider{p}).Generate(context.Background(), Request{Prompt: "x", Mode: ModeTurbo})
	require.NoError(t, err)
	assert.True(t, img.Fallback)
}

func TestGenerate_AllFail(t *testing.T) {
	g := NewGenerator([]Provider{&fakeProvider{name: "a"}, &fakeProvider{name: "b"}})
	_, err := g.Generate(context.Background(), Request{Mode: ModeFlux})
	require.ErrorIs(t, err, ErrNoImage)
	assert.Contains(t, err.Error(), "b failed")

	_, err = NewGenerator(nil).Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &fakeProvider{name: "a", succeed: func(string) bool { return true }}
	_, err := NewGenerator([]Provider{p}).Generate(ctx, Request{})
	require.ErrorIs(t, err, ErrNoImage)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.prompts)
}

type stubEnhancer struct {
	out string
	err error
}

func (s stubEnhancer) Enhance(context.Context, string, string) (string, error) { return s.out, s.err }

func TestGenerate_Enhanced(t *testing.T) {
	p := &fakeProvider{name: "a", succeed: func(string) bool { return true }}
	g := NewGenerator([]Provider{p}, WithEnhancer(stubEnhancer{out: "cinematic soldiers"}))
	img, err := g.Generate(context.Background(), Request{Prompt: "soldiers", Mode: ModeEnhanced})
	require.NoError(t, err)
	assert.Equal(t, "cinematic soldiers", img.Prompt)
	assert.Equal(t, "a (Enhanced)", img.Source)

	// enhancer failure falls through to the normal plan
	p.prompts = nil
	g = NewGenerator([]Provider{p}, WithEnhancer(stubEnhancer{err: errors.New("quota")}))
	img, err = g.Generate(context.Background(), Request{Prompt: "soldiers", Mode: ModeEnhanced})
	require.NoError(t, err)
	assert.Equal(t, "soldiers"+styleSuffix, img.Prompt)

	// enhancer only applies to enhanced mode
	p.prompts = nil
	g = NewGenerator([]Provider{p}, WithEnhancer(stubEnhancer{out: "cinematic soldiers"}))
	img, err = g.Generate(context.Background(), Request{Prompt: "soldiers", Mode: ModeTurbo})
	require.NoError(t, err)
	assert.Equal(t, "soldiers", img.Prompt)
}

func TestPollinations(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(pngBytes)
	}))
	defer srv.Close()

	p := &Pollinations{BaseURL: srv.URL, Now: func() time.Time { return time.Unix(1700000000, 0) }}
	data, err := p.Generate(context.Background(), "two soldiers")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "/prompt/two soldiers", gotPath)
	assert.Equal(t, "height=400&seed=1700000000&width=800", gotQuery)
	assert.Equal(t, "Mozilla/5.0", gotUA)
}

func TestPollinations_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		ctype   string
		rateErr bool
	}{
		{"server error", http.StatusInternalServerError, "image/png", false},
		{"rate limited", http.StatusTooManyRequests, "text/plain", true},
		{"html body", http.StatusOK, "text/html", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				w.WriteHeader(tt.status)
				w.Write([]byte("nope"))
			}))
			defer srv.Close()

			_, err := (&Pollinations{BaseURL: srv.URL}).Generate(context.Background(), "x")
			require.Error(t, err)
			var rl *llm.ErrRateLimit
			assert.Equal(t, tt.rateErr, errors.As(err, &rl))
		})
	}
}

func TestHuggingFace(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	defer srv.Close()

	h := &HuggingFace{Token: "hf_x", ModelURL: srv.URL + "/models/sd"}
	data, err := h.Generate(context.Background(), `say "hi"`)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "Bearer hf_x", gotAuth)
	assert.Equal(t, `say "hi"`, gotBody["inputs"])

	_, err = (&HuggingFace{}).Generate(context.Background(), "x")
	assert.Error(t, err)
}

func TestHuggingFace_BodyIsValidJSON(t *testing.T) {
	var raw [][]byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = append(raw, b)
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	defer srv.Close()

	h := &HuggingFace{Token: "hf_x", ModelURL: srv.URL}
	prompts := []string{"soldier\x00kneeling", "bell\a", "tab\there", "bad\xffutf8"}
	for _, p := range prompts {
		_, err := h.Generate(context.Background(), p)
		require.NoError(t, err)
	}
	want := []string{"soldier\x00kneeling", "bell\a", "tab\there", "bad\uFFFDutf8"}
	require.Len(t, raw, len(prompts))
	for i, b := range raw {
		var got map[string]string
		require.NoError(t, json.Unmarshal(b, &got), "body %q", b)
		assert.Equal(t, want[i], got["inputs"])
	}
}

func TestDALLE(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]any{{"b64_json": base64.StdEncoding.EncodeToString(pngBytes)}},
		})
	}))
	defer srv.Close()

	d, err := NewDALLE(llm.OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	data, err := d.Generate(context.Background(), "soldiers")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "b64_json", gotReq["response_format"])
	assert.Equal(t, "dall-e-3", gotReq["model"])
}

type memRepo struct {
	mu     sync.Mutex
	events []store.GenerationEventData
}

func (m *memRepo) AppendGeneration(_ context.Context, d store.GenerationEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, d)
	return nil
}

func (m *memRepo) QueryGenerations(context.Context, store.QueryOpts) ([]store.GenerationEvent, error) {
	return nil, nil
}

func (m *memRepo) ProviderStats(context.Context, string) ([]store.ProviderStats, error) {
	return nil, nil
}

func TestEventLog(t *testing.T) {
	repo := &memRepo{}
	a := WithEventLog(&fakeProvider{name: "a"}, repo, nil)
	b := WithEventLog(&fakeProvider{name: "b", succeed: func(string) bool { return true }}, repo, nil)

	_, err := NewGenerator([]Provider{a, b}).Generate(context.Background(), Request{QuestionID: "q3", Prompt: "x", Mode: ModeTurbo})
	require.NoError(t, err)

	require.Len(t, repo.events, 2)
	assert.Equal(t, store.KindImage, repo.events[0].Kind)
	assert.Equal(t, "a", repo.events[0].Provider)
	assert.False(t, repo.events[0].Success)
	assert.Equal(t, "a failed", repo.events[0].ErrorMessage)
	assert.Equal(t, "turbo", repo.events[0].Purpose)
	assert.Equal(t, "q3", repo.events[0].QuestionID)

	assert.True(t, repo.events[1].Success)
	assert.Equal(t, len(pngBytes), repo.events[1].Bytes)
	assert.Equal(t, "b-model", repo.events[1].Model)
}

func TestNewProviders_SkipsMissingCredentials(t *testing.T) {
	ps, err := NewProviders(context.Background(), Config{}, nil, nil)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, ProviderPollinations, ps[0].Name())

	ps, err = NewProviders(context.Background(), Config{
		Providers: []string{"huggingface", "openai"},
		HFToken:   "hf",
		OpenAI:    llm.OpenAIConfig{APIKey: "k"},
	}, &memRepo{}, nil)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "huggingface", ps[0].Name())
	assert.Equal(t, "openai", ps[1].Name())

	_, err = NewProviders(context.Background(), Config{Providers: []string{"midjourney"}}, nil, nil)
	assert.Error(t, err)

	assert.Equal(t, []string{"openai", "imagen"}, ParseProviders(" OpenAI, ,imagen"))
}
