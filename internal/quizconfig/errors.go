package quizconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no question has the requested id.
	ErrNotFound = errors.New("question not found")

	// ErrLastQuestion is returned when deleting would leave the bank empty.
	ErrLastQuestion = errors.New("cannot delete the last question")

	// ErrInvalidSetting is returned for an out-of-range passing score or time limit.
	ErrInvalidSetting = errors.New("invalid setting")
)

// LoadError reports a configuration file that exists but could not be read
// or decoded. Load returns it alongside the default configuration.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load quiz config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
