package notify

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRateLimited matches a SendError for a 429 reply.
var ErrRateLimited = errors.New("rate limited")

// SendError is a failed delivery to one handle. Status is 0 when no reply
// was received. The message never contains the bot token.
type SendError struct {
	Handle string
	Status int
	Err    error
}

func (e *SendError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("telegram: send to %s: %v", e.Handle, e.Err)
	}
	return fmt.Sprintf("telegram: send to %s: status %d: %v", e.Handle, e.Status, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

func (e *SendError) Is(target error) bool {
	return target == ErrRateLimited && e.Status == http.StatusTooManyRequests
}
