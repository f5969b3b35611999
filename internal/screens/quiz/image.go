package quiz

import (
	"context"
	"fmt"
	"mime"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/safetyquiz/internal/imagegen"
	"github.com/abhisek/safetyquiz/internal/quizconfig"
)

type imageStatus int

const (
	imageNone       imageStatus = iota // Disabled for the question
	imageSaved                         // A saved image exists on disk
	imageGenerating                    // Async generation in flight
	imageGenerated                     // Session image written to a temp file
	imageFailed                        // Every provider failed
)

// illustration is the session's image state. Session images are never
// saved to the image store; they live in a temp file until the session ends.
type illustration struct {
	status imageStatus
	path   string
	source string
	err    error
	gen    int
	temp   bool
}

// loadImage resolves the illustration for q and starts generation when no
// saved image exists.
func (s *QuizScreen) loadImage(q *quizconfig.Question) tea.Cmd {
	s.discardImage()
	if q == nil || !q.ImageEnabled {
		s.image = illustration{status: imageNone, gen: s.image.gen}
		return nil
	}
	if s.deps.Images != nil {
		if path, err := s.deps.Images.Path(q.ID); err == nil {
			s.image = illustration{status: imageSaved, path: path, source: "saved", gen: s.image.gen}
			return nil
		}
	}
	return s.generateImage(q)
}

// generateImage starts an async generation for q with the current mode.
func (s *QuizScreen) generateImage(q *quizconfig.Question) tea.Cmd {
	s.discardImage()
	s.image.gen++
	gen := s.image.gen
	if s.deps.Generator == nil {
		s.image = illustration{status: imageFailed, err: imagegen.ErrNoImage, gen: gen}
		return nil
	}
	s.image = illustration{status: imageGenerating, gen: gen}

	generator := s.deps.Generator
	timeout := s.deps.ImageTimeout
	req := imagegen.Request{QuestionID: q.ID, Prompt: q.ImagePrompt, Mode: s.mode}
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		img, err := generator.Generate(ctx, req)
		return imageReadyMsg{gen: gen, image: img, err: err}
	}
}

func (s *QuizScreen) handleImageReady(msg imageReadyMsg) {
	if msg.gen != s.image.gen {
		return
	}
	if msg.err != nil {
		s.deps.Logger.Warn("image generation", "component", "quiz", "session", s.state.SessionID, "error", msg.err)
		s.image = illustration{status: imageFailed, err: msg.err, gen: msg.gen}
		return
	}
	path, err := writeTemp(msg.image)
	if err != nil {
		s.deps.Logger.Warn("write session image", "component", "quiz", "error", err)
		s.image = illustration{status: imageFailed, err: err, gen: msg.gen}
		return
	}
	s.image = illustration{status: imageGenerated, path: path, source: msg.image.Source, gen: msg.gen, temp: true}
}

// discardImage removes the temp file of a generated session image.
func (s *QuizScreen) discardImage() {
	if s.image.temp && s.image.path != "" {
		_ = os.Remove(s.image.path)
	}
	s.image.temp = false
	s.image.path = ""
}

func writeTemp(img *imagegen.Image) (string, error) {
	ext := ".img"
	if exts, _ := mime.ExtensionsByType(img.ContentType); len(exts) > 0 {
		ext = exts[0]
	}
	f, err := os.CreateTemp("", "safetyquiz-session-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(img.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close session image: %w", err)
	}
	return f.Name(), nil
}
