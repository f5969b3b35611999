package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PurposeImagePrompt labels prompt-rewrite calls in the event log.
const PurposeImagePrompt = "image-prompt"

// MaxEnhancedPromptLen caps the rewritten prompt, in runes. Image services
// that take the prompt in the URL reject much longer ones.
const MaxEnhancedPromptLen = 500

const enhancerSystem = `You write prompts for photorealistic image generation.
Rewrite the user's prompt for maximum photorealism. Add specific details about lighting, textures and camera settings.
Keep every subject, uniform and setting detail from the original. At most 150 words.`

var imagePromptSchema = &Schema{
	Name:        "image-prompt",
	Description: "A rewritten image generation prompt",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "The enhanced prompt text only",
			},
		},
		"required":             []any{"prompt"},
		"additionalProperties": false,
	},
}

// PromptEnhancer rewrites image prompts with a text model.
type PromptEnhancer struct {
	provider Provider
	timeout  time.Duration
}

// NewPromptEnhancer returns an enhancer. timeout <= 0 means no extra bound
// beyond the caller's context.
func NewPromptEnhancer(p Provider, timeout time.Duration) *PromptEnhancer {
	return &PromptEnhancer{provider: p, timeout: timeout}
}

// Enhance returns a rewritten prompt of at most MaxEnhancedPromptLen runes.
func (e *PromptEnhancer) Enhance(ctx context.Context, questionID, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("enhance prompt: empty prompt")
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	ctx = WithQuestion(WithPurpose(ctx, PurposeImagePrompt), questionID)

	resp, err := e.provider.Generate(ctx, Request{
		System:      enhancerSystem,
		Messages:    UserMessage(prompt),
		Schema:      imagePromptSchema,
		MaxTokens:   400,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("enhance prompt: %w", err)
	}

	var out struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", &ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	enhanced := strings.TrimSpace(out.Prompt)
	if enhanced == "" {
		return "", &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("empty prompt")}
	}
	return truncateRunes(enhanced, MaxEnhancedPromptLen), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
