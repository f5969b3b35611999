package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/safetyquiz/internal/llm"
)

// maxImageBytes caps a provider response body.
const maxImageBytes = 20 << 20

const (
	DefaultPollinationsURL = "https://image.pollinations.ai"
	DefaultHuggingFaceURL  = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-2"
)

// Pollinations is the free prompt-in-URL image service. It needs no key.
type Pollinations struct {
	BaseURL string
	Client  *http.Client
	// Now seeds each request. Defaults to time.Now.
	Now func() time.Time
}

func (p *Pollinations) Name() string  { return "pollinations" }
func (p *Pollinations) Model() string { return "default" }

// Generate fetches an 800x400 image for prompt.
func (p *Pollinations) Generate(ctx context.Context, prompt string) ([]byte, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultPollinationsURL
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	q := url.Values{}
	q.Set("width", "800")
	q.Set("height", "400")
	q.Set("seed", strconv.FormatInt(now().Unix(), 10))
	u := strings.TrimRight(base, "/") + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("pollinations: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	return readImage(httpClient(p.Client), req, p.Name())
}

// HuggingFace calls a Stable Diffusion model on the Hugging Face inference API.
type HuggingFace struct {
	Token    string
	ModelURL string
	Client   *http.Client
}

func (h *HuggingFace) Name() string { return "huggingface" }

func (h *HuggingFace) Model() string {
	return strings.TrimPrefix(h.modelURL(), "https://api-inference.huggingface.co/models/")
}

func (h *HuggingFace) modelURL() string {
	if h.ModelURL != "" {
		return h.ModelURL
	}
	return DefaultHuggingFaceURL
}

// Generate posts {"inputs": prompt} and returns the image body.
func (h *HuggingFace) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if h.Token == "" {
		return nil, fmt.Errorf("huggingface: missing access token")
	}
	body, err := json.Marshal(map[string]any{"inputs": prompt})
	if err != nil {
		return nil, fmt.Errorf("huggingface: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.modelURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("huggingface: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.Token)
	req.Header.Set("Content-Type", "application/json")
	return readImage(httpClient(h.Client), req, h.Name())
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}

// readImage performs req and returns the body when the response is a 200
// with an image content type.
func readImage(client *http.Client, req *http.Request, name string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &llm.ErrProviderUnavailable{Err: fmt.Errorf("%s: %w", name, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, llm.ClassifyStatus(resp.StatusCode, fmt.Errorf("%s: status %d", name, resp.StatusCode))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%s: non-image response (%s)", name, ct)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", name, err)
	}
	return data, nil
}
