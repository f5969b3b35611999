// Package imagestore keeps one generated illustration per question on disk.
package imagestore

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
)

// ErrNoImage means no image is saved for the question. It is distinct from
// a failed generation.
var ErrNoImage = errors.New("no image saved")

// ErrInvalidID is returned for ids that cannot be used as file names.
var ErrInvalidID = errors.New("invalid question id")

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// extensions in lookup order.
var extensions = []string{".png", ".jpg", ".webp", ".gif"}

// Store saves images under dir as <question id><ext>.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// Save writes data for questionID, replacing any existing image. The file
// extension follows the sniffed content type. Returns the written path.
func (s *Store) Save(questionID string, data []byte) (string, error) {
	if !validID.MatchString(questionID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, questionID)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("save image %s: empty data", questionID)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	if err := s.Delete(questionID); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, questionID+extensionFor(data))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image %s: %w", questionID, err)
	}
	return path, nil
}

// Load returns the image bytes and path for questionID, or ErrNoImage.
func (s *Store) Load(questionID string) ([]byte, string, error) {
	path, err := s.Path(questionID)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read image %s: %w", questionID, err)
	}
	return data, path, nil
}

// Path returns the file path of the saved image, or ErrNoImage.
func (s *Store) Path(questionID string) (string, error) {
	if !validID.MatchString(questionID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, questionID)
	}
	for _, ext := range extensions {
		p := filepath.Join(s.dir, questionID+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNoImage
}

// Exists reports whether an image is saved for questionID.
func (s *Store) Exists(questionID string) bool {
	_, err := s.Path(questionID)
	return err == nil
}

// Delete removes the saved image. Deleting a missing image is not an error.
func (s *Store) Delete(questionID string) error {
	if !validID.MatchString(questionID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, questionID)
	}
	for _, ext := range extensions {
		err := os.Remove(filepath.Join(s.dir, questionID+ext))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete image %s: %w", questionID, err)
		}
	}
	return nil
}

// ContentType sniffs the MIME type of image data.
func ContentType(data []byte) string {
	return http.DetectContentType(data)
}

func extensionFor(data []byte) string {
	switch ContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
