package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/abhisek/safetyquiz/internal/llm"
)

// DALLE generates images with the OpenAI images API.
type DALLE struct {
	client *openai.Client
	model  string
}

// NewDALLE returns a DALL-E provider sharing the text provider's OpenAI config.
func NewDALLE(cfg llm.OpenAIConfig) (*DALLE, error) {
	client, err := llm.NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &DALLE{client: client, model: openai.CreateImageModelDallE3}, nil
}

func (d *DALLE) Name() string  { return "openai" }
func (d *DALLE) Model() string { return d.model }

func (d *DALLE) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := d.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          d.model,
		N:              1,
		Size:           openai.CreateImageSize1792x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, llm.MapOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai: no image data in response")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai: decode image: %w", err)
	}
	return data, nil
}

// DefaultImagenModel is the Imagen model used when none is configured.
const DefaultImagenModel = "imagen-3.0-generate-002"

// Imagen generates images with Google's Imagen models through the Gemini API.
type Imagen struct {
	client *genai.Client
	model  string
}

// NewImagen returns an Imagen provider. An empty model uses DefaultImagenModel.
func NewImagen(client *genai.Client, model string) *Imagen {
	if model == "" {
		model = DefaultImagenModel
	}
	return &Imagen{client: client, model: model}
}

func (i *Imagen) Name() string  { return "imagen" }
func (i *Imagen) Model() string { return i.model }

func (i *Imagen) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := i.client.Models.GenerateImages(ctx, i.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "16:9",
	})
	if err != nil {
		return nil, llm.MapGeminiError(err)
	}
	for _, img := range resp.GeneratedImages {
		if img != nil && img.Image != nil && len(img.Image.ImageBytes) > 0 {
			return img.Image.ImageBytes, nil
		}
	}
	return nil, fmt.Errorf("imagen: no image in response")
}
