package flow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoQuestions means the question bank is empty; the session cannot
	// proceed past the details form.
	ErrNoQuestions = errors.New("no questions configured")

	// ErrWrongPhase is returned when a transition is requested from a phase
	// that does not allow it.
	ErrWrongPhase = errors.New("transition not allowed in current phase")
)

// ValidationError lists the details fields that are missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "All fields are required. Missing: " + strings.Join(e.Missing, ", ")
}

// PersistError is returned alongside a completed state when the passing
// attempt could not be written. The participant still sees completion.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save attempt: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
