package feedclient

import "context"

// Transport performs the two network operations the feed needs. It is a pure
// I/O boundary: no caching, no state beyond connection plumbing.
type Transport interface {
	// FetchPage retrieves one page of the feed. A nil cursor means the first
	// page. The cursor is an opaque server token; the client never
	// interprets or constructs one.
	FetchPage(ctx context.Context, cursor *string, limit int) (*FeedPage, error)

	// CreateComment posts a new comment. The server assigns the id,
	// timestamp, and author name. idempotencyKey identifies this submission
	// attempt so a retried request replays rather than duplicates.
	CreateComment(ctx context.Context, content string, idempotencyKey string) (*Comment, error)
}
