// Package feedclient implements the guest-side view of the comment wall: a
// cursor-paginated, newest-first feed with background page loads, optimistic
// head-insertion of freshly posted comments, and a submission gate that
// surfaces the server's per-guest comment cap as a distinct error.
package feedclient

import "time"

// Comment is one entry on the wall as the client sees it. Immutable once
// created; ID is the dedup key across pages and local insertions.
type Comment struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	AuthorName string    `json:"guest_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName returns the author name, or "Anonymous" when the server did
// not resolve one.
func (c Comment) DisplayName() string {
	if c.AuthorName == "" {
		return "Anonymous"
	}
	return c.AuthorName
}

// FeedPage is one transport-level page of the feed. NextCursor is nil once
// the final page has been served.
type FeedPage struct {
	Comments   []Comment `json:"comments"`
	NextCursor *string   `json:"next_cursor"`
	TotalCount int       `json:"total_count"`
}

// Phase describes where the store is in its load lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingFirst
	PhaseLoadingMore
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoadingFirst:
		return "loading-first"
	case PhaseLoadingMore:
		return "loading-more"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultPageSize is the page size requested when none is configured.
const DefaultPageSize = 10
