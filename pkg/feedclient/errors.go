package feedclient

import (
	"errors"
	"fmt"
)

// ValidationReason identifies which local check a submission failed.
type ValidationReason string

const (
	ReasonEmpty   ValidationReason = "empty"
	ReasonTooLong ValidationReason = "tooLong"
)

// ValidationError reports a submission rejected before any network call.
// Always recoverable by editing the input.
type ValidationError struct {
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid comment: %s", e.Reason)
}

var (
	// ErrLimitExceeded means the guest has exhausted their comment quota.
	// Terminal for the session; retrying will not succeed.
	ErrLimitExceeded = errors.New("comment limit exceeded")

	// ErrSubmitInFlight guards against double-posting: a second Submit while
	// one is pending is rejected instead of firing a duplicate request.
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

// FetchError wraps a transient page-load failure. Safe to retry via an
// explicit user action; the store never auto-retries.
type FetchError struct {
	Cause error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch page: %v", e.Cause) }
func (e *FetchError) Unwrap() error { return e.Cause }

// SubmitError wraps a transient submission failure (network, 5xx, malformed
// response). Safe to retry; the retry reuses the attempt's idempotency key,
// so a response that was lost after a successful server-side write replays
// the original comment instead of duplicating it.
type SubmitError struct {
	Cause error
}

func (e *SubmitError) Error() string { return fmt.Sprintf("submit comment: %v", e.Cause) }
func (e *SubmitError) Unwrap() error { return e.Cause }

// APIError is a non-2xx response decoded from the server's error envelope.
// Produced by the HTTP transport; the submission gate classifies it.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
}
