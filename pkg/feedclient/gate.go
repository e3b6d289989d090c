package feedclient

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MaxContentLength mirrors the server's per-comment cap. Checked locally so
// an over-long comment never leaves the client.
const MaxContentLength = 500

// limitErrorCode is the stable machine code the server attaches to a
// quota rejection.
const limitErrorCode = "COMMENT_LIMIT_EXCEEDED"

// Gate validates and submits one comment at a time. Submissions are
// serialized per gate: a second Submit while one is pending is rejected with
// ErrSubmitInFlight, which keeps a rapid double-click from double-posting.
//
// Each distinct submission attempt carries a generated idempotency key. A
// retry after a transient failure reuses the key, so a response lost after a
// successful server-side write replays the original comment instead of
// creating a duplicate.
type Gate struct {
	transport Transport

	mu         sync.Mutex
	inFlight   bool
	attemptKey string
	attempt    string // trimmed content the current key belongs to
}

// NewGate creates a gate submitting through transport.
func NewGate(transport Transport) *Gate {
	return &Gate{transport: transport}
}

// Submit validates text and posts it. On success it returns the created
// comment with its server-assigned id and timestamp; the caller is
// responsible for inserting it into the store.
//
// Error taxonomy:
//   - *ValidationError: rejected locally, no network call was made.
//   - ErrSubmitInFlight: another submission is pending; ignore and disable
//     resubmission rather than surfacing an alarming message.
//   - ErrLimitExceeded: the guest's quota is exhausted. Not retryable.
//   - *SubmitError: transient failure, safe to retry.
func (g *Gate) Submit(ctx context.Context, text string) (*Comment, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 {
		return nil, &ValidationError{Reason: ReasonEmpty}
	}
	if len([]rune(trimmed)) > MaxContentLength {
		return nil, &ValidationError{Reason: ReasonTooLong}
	}

	g.mu.Lock()
	if g.inFlight {
		g.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	g.inFlight = true
	if g.attempt != trimmed || g.attemptKey == "" {
		// New attempt, new key. A retry of the same text keeps the key.
		g.attemptKey = uuid.NewString()
		g.attempt = trimmed
	}
	key := g.attemptKey
	g.mu.Unlock()

	comment, err := g.transport.CreateComment(ctx, trimmed, key)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight = false

	if err != nil {
		if isLimitRejection(err) {
			g.attemptKey = ""
			g.attempt = ""
			return nil, ErrLimitExceeded
		}
		// Keep the attempt key for a retry of this same submission.
		return nil, &SubmitError{Cause: err}
	}

	g.attemptKey = ""
	g.attempt = ""
	return comment, nil
}

// isLimitRejection classifies a transport error as the per-guest quota
// rejection. The stable error code is authoritative; the message substring
// match keeps older servers working, which only emit human-readable text.
func isLimitRejection(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == limitErrorCode {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "maximum") && strings.Contains(msg, "comments")
}
