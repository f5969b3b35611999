package imagegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abhisek/safetyquiz/internal/llm"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 60 * time.Second

// Generator walks a prompt plan across providers.
type Generator struct {
	providers []Provider
	enhancer  Enhancer
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithEnhancer sets the prompt enhancer used in enhanced mode.
func WithEnhancer(e Enhancer) Option {
	return func(g *Generator) { g.enhancer = e }
}

// WithTimeout sets the per-call timeout. Zero or less disables it.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator returns a Generator trying providers in the given order.
func NewGenerator(providers []Provider, opts ...Option) *Generator {
	g := &Generator{providers: providers, timeout: DefaultTimeout, logger: slog.Default()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Providers returns the configured provider names in order.
func (g *Generator) Providers() []string {
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate returns the first image any provider produces for the request's
// plan. Prompts are tried in plan order and, for each prompt, providers in
// configured order. When everything fails the error wraps ErrNoImage and
// the last provider error.
func (g *Generator) Generate(ctx context.Context, req Request) (*Image, error) {
	if len(g.providers) == 0 {
		return nil, fmt.Errorf("%w: no image providers configured", ErrNoImage)
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeAuto
	}

	plan := Plan(mode, req.Prompt)
	if mode == ModeEnhanced && g.enhancer != nil {
		enhanced, err := g.enhancer.Enhance(ctx, req.QuestionID, BasePrompt(req.Prompt))
		if err != nil {
			g.logger.Warn("prompt enhancement failed", "component", "imagegen", "question", req.QuestionID, "error", err)
		} else {
			plan = append([]string{enhanced}, plan...)
		}
	}

	ctx = llm.WithQuestion(llm.WithPurpose(ctx, string(mode)), req.QuestionID)
	var lastErr error
	for i, prompt := range plan {
		for _, p := range g.providers {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrNoImage, err)
			}
			data, err := g.call(ctx, p, prompt)
			if err != nil {
				lastErr = err
				g.logger.Debug("image provider failed", "component", "imagegen", "provider", p.Name(), "mode", mode, "error", err)
				continue
			}
			return &Image{
				Data:        data,
				ContentType: http.DetectContentType(data),
				Source:      fmt.Sprintf("%s (%s)", p.Name(), mode.Label()),
				Prompt:      prompt,
				Fallback:    i == len(plan)-1,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrNoImage, lastErr)
}

func (g *Generator) call(ctx context.Context, p Provider, prompt string) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	data, err := p.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New(p.Name() + ": empty image")
	}
	return data, nil
}
