// Package imagegen produces scenario illustrations from text prompts by
// walking an ordered list of hosted image services until one returns an
// image.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoImage is returned when every prompt and provider combination failed.
var ErrNoImage = errors.New("no image generated")

// Mode selects how prompts are prepared before generation.
type Mode string

const (
	ModeAuto       Mode = "auto"
	ModeFlux       Mode = "flux"
	ModeTurbo      Mode = "turbo"
	ModeSimplified Mode = "simplified"
	ModeEnhanced   Mode = "enhanced"
)

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeAuto, ModeFlux, ModeTurbo, ModeSimplified, ModeEnhanced}
}

// ParseMode accepts a mode name case-insensitively. Empty means auto.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeAuto, nil
	}
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown image mode %q (want one of auto, flux, turbo, simplified, enhanced)", s)
}

// Label is the human-readable mode name.
func (m Mode) Label() string {
	switch m {
	case ModeFlux:
		return "Flux (Realistic)"
	case ModeTurbo:
		return "Turbo (Fast)"
	case ModeSimplified:
		return "Simplified"
	case ModeEnhanced:
		return "Enhanced"
	default:
		return "Auto (Best)"
	}
}

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode {
	modes := Modes()
	for i, x := range modes {
		if x == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return ModeAuto
}

// Provider is one hosted image service.
type Provider interface {
	// Name identifies the service in attributions and the event log.
	Name() string
	// Model is the service-side model used for generation.
	Model() string
	// Generate returns encoded image bytes for prompt.
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Enhancer rewrites a prompt with a text model.
type Enhancer interface {
	Enhance(ctx context.Context, questionID, prompt string) (string, error)
}

// Request describes one illustration to produce.
type Request struct {
	QuestionID string
	// Prompt is the question's configured image prompt; blank uses DefaultPrompt.
	Prompt string
	Mode   Mode
}

// Image is a generated illustration.
type Image struct {
	Data        []byte
	ContentType string
	// Source is the attribution, "<provider> (<mode label>)".
	Source string
	// Prompt is the prompt that produced the image.
	Prompt string
	// Fallback is set when only the last-resort prompt succeeded.
	Fallback bool
}
