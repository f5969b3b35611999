package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abhisek/safetyquiz/internal/llm"
	"github.com/abhisek/safetyquiz/internal/store"
)

// Provider names accepted in Config.Providers.
const (
	ProviderPollinations = "pollinations"
	ProviderHuggingFace  = "huggingface"
	ProviderOpenAI       = "openai"
	ProviderImagen       = "imagen"
)

// DefaultProviders is the provider order used when none is configured.
var DefaultProviders = []string{ProviderPollinations, ProviderHuggingFace, ProviderOpenAI, ProviderImagen}

// Config selects and configures the image providers.
type Config struct {
	// Providers in try order.
	Providers []string

	PollinationsURL string
	HFToken         string
	HFModelURL      string
	OpenAI          llm.OpenAIConfig
	GeminiAPIKey    string
	ImagenModel     string

	HTTPClient *http.Client
}

// ParseProviders splits a comma-separated provider list.
func ParseProviders(s string) []string {
	var out []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// NewProviders builds the configured providers, skipping any whose
// credential is missing. When events is non-nil every provider records its
// calls there.
func NewProviders(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) ([]Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	names := cfg.Providers
	if len(names) == 0 {
		names = DefaultProviders
	}

	var out []Provider
	for _, name := range names {
		var p Provider
		switch name {
		case ProviderPollinations:
			p = &Pollinations{BaseURL: cfg.PollinationsURL, Client: cfg.HTTPClient}
		case ProviderHuggingFace:
			if cfg.HFToken == "" {
				logger.Debug("image provider skipped", "component", "imagegen", "provider", name, "reason", "no token")
				continue
			}
			p = &HuggingFace{Token: cfg.HFToken, ModelURL: cfg.HFModelURL, Client: cfg.HTTPClient}
		case ProviderOpenAI:
			if cfg.OpenAI.APIKey == "" {
				logger.Debug("image provider skipped", "component", "imagegen", "provider", name, "reason", "no key")
				continue
			}
			d, err := NewDALLE(cfg.OpenAI)
			if err != nil {
				return nil, err
			}
			p = d
		case ProviderImagen:
			if cfg.GeminiAPIKey == "" {
				logger.Debug("image provider skipped", "component", "imagegen", "provider", name, "reason", "no key")
				continue
			}
			client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
			if err != nil {
				return nil, err
			}
			p = NewImagen(client, cfg.ImagenModel)
		default:
			return nil, fmt.Errorf("unknown image provider %q", name)
		}
		if events != nil {
			p = WithEventLog(p, events, logger)
		}
		out = append(out, p)
	}
	return out, nil
}
