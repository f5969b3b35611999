package quizconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ImageRemover deletes the generated image stored for a question.
type ImageRemover interface {
	Delete(questionID string) error
}

// Store reads and writes the configuration file. Every mutation is a full
// load-modify-save cycle.
type Store struct {
	path   string
	images ImageRemover
	logger *slog.Logger

	mu sync.Mutex
}

// NewStore returns a Store for the JSON file at path. images may be nil.
func NewStore(path string, images ImageRemover, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, images: images, logger: logger}
}

// Path returns the configuration file path.
func (s *Store) Path() string { return s.path }

// Load returns the persisted configuration upgraded to the current shape.
// A missing file yields DefaultConfig and a nil error. A file that cannot be
// read or decoded yields DefaultConfig together with a *LoadError, so callers
// always get a usable configuration.
func (s *Store) Load() (Config, error) {
	cfg, err := s.read()
	if err != nil {
		s.logger.Warn("quiz config unreadable, using defaults", "path", s.path, "error", err)
		return DefaultConfig(), err
	}
	return cfg, nil
}

func (s *Store) read() (Config, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, &LoadError{Path: s.path, Err: err}
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return Config{}, &LoadError{Path: s.path, Err: err}
	}
	cfg, err := doc.upgrade()
	if err != nil {
		return Config{}, &LoadError{Path: s.path, Err: err}
	}
	return cfg, nil
}

// Save writes cfg in the current shape, creating the parent directory if
// needed. The file is replaced atomically.
func (s *Store) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(cfg)
}

func (s *Store) write(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quiz config: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".quiz_config-*.json")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// mutate loads the configuration, applies fn, and saves the result. A file
// that exists but cannot be decoded is never overwritten.
func (s *Store) mutate(fn func(*Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.read()
	if err != nil {
		return err
	}
	next := cfg.clone()
	if err := fn(&next); err != nil {
		return err
	}
	return s.write(next)
}

// Migrate rewrites a legacy configuration file in the current shape. It is
// a no-op when the file is missing or already current.
func (s *Store) Migrate() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &LoadError{Path: s.path, Err: err}
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return false, &LoadError{Path: s.path, Err: err}
	}
	if _, legacy := doc.(configV1); !legacy {
		return false, nil
	}
	cfg, err := doc.upgrade()
	if err != nil {
		return false, &LoadError{Path: s.path, Err: err}
	}
	if err := s.write(cfg); err != nil {
		return false, err
	}
	s.logger.Info("migrated legacy quiz config", "path", s.path)
	return true, nil
}

// ListQuestions returns the question bank in stored order. On a load
// diagnostic it returns the default bank together with the *LoadError.
func (s *Store) ListQuestions() ([]Question, error) {
	cfg, err := s.Load()
	return cfg.Questions, err
}

// GetQuestion returns the question with the given id, or ErrNotFound.
func (s *Store) GetQuestion(id string) (Question, error) {
	cfg, err := s.Load()
	var loadErr *LoadError
	if err != nil && !errors.As(err, &loadErr) {
		return Question{}, err
	}
	q, ok := cfg.Question(id)
	if !ok {
		return Question{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return q, nil
}

// Settings returns the passing score and time limit, read fresh from disk.
func (s *Store) Settings() (passingScore, timeLimit int) {
	cfg, _ := s.Load()
	return cfg.PassingScore, cfg.TimeLimit
}

// PassingScore returns the current passing score.
func (s *Store) PassingScore() int {
	p, _ := s.Settings()
	return p
}

// AddQuestion appends q with a freshly assigned id and returns that id. Any
// id already set on q is ignored. An empty scenario title gets the default.
func (s *Store) AddQuestion(q Question) (string, error) {
	var id string
	err := s.mutate(func(cfg *Config) error {
		id = nextID(cfg.Questions)
		q.ID = id
		if q.ScenarioTitle == "" {
			q.ScenarioTitle = DefaultScenarioTitle
		}
		cfg.Questions = append(cfg.Questions, q)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("question added", "id", id)
	return id, nil
}

// UpdateQuestion replaces the question with the given id, keeping its id and
// its position. Unknown keys already stored on the question are preserved
// unless q carries its own Extra.
func (s *Store) UpdateQuestion(id string, q Question) error {
	err := s.mutate(func(cfg *Config) error {
		i := cfg.indexOf(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		q.ID = id
		if q.Extra == nil {
			q.Extra = cfg.Questions[i].Extra
		}
		cfg.Questions[i] = q
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("question updated", "id", id)
	return nil
}

// DeleteQuestion removes the question and its stored image. The last
// remaining question cannot be deleted. A failure to remove the image is
// logged and does not undo the deletion.
func (s *Store) DeleteQuestion(id string) error {
	err := s.mutate(func(cfg *Config) error {
		i := cfg.indexOf(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if len(cfg.Questions) <= 1 {
			return ErrLastQuestion
		}
		cfg.Questions = append(cfg.Questions[:i], cfg.Questions[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("question deleted", "id", id)

	if s.images != nil {
		if err := s.images.Delete(id); err != nil {
			s.logger.Warn("remove question image", "id", id, "error", err)
		}
	}
	return nil
}

// UpdateSettings sets the passing score and time limit.
func (s *Store) UpdateSettings(passingScore, timeLimit int) error {
	if err := ValidatePassingScore(passingScore); err != nil {
		return err
	}
	if err := ValidateTimeLimit(timeLimit); err != nil {
		return err
	}
	err := s.mutate(func(cfg *Config) error {
		cfg.PassingScore = passingScore
		cfg.TimeLimit = timeLimit
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("settings updated", "passing_score", passingScore, "time_limit", timeLimit)
	return nil
}
