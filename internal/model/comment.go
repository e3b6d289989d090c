package model

import (
	"errors"
	"time"
)

// Comment represents a message a guest left on the comment wall.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	GuestID   int64     `db:"guest_id" json:"-"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	GuestName string    `db:"guest_name" json:"guest_name,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for posting a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentListResponse is the paginated comment wall response.
// NextCursor is nil on the final page.
type CommentListResponse struct {
	Comments   []Comment `json:"comments"`
	NextCursor *string   `json:"next_cursor"`
	TotalCount int       `json:"total_count"`
}

// Comment constraints
const (
	// MaxCommentLength caps a single comment at 500 characters after trimming.
	MaxCommentLength = 500

	// MaxCommentsPerGuest is the hard per-guest quota enforced on submission.
	MaxCommentsPerGuest = 2

	// DefaultPageSize is the page size used when the client omits ?limit.
	DefaultPageSize = 10

	// MaxPageSize caps ?limit to keep a single query bounded.
	MaxPageSize = 100
)

// Comment errors
var (
	ErrContentRequired     = errors.New("comment content is required")
	ErrContentTooLong      = errors.New("comment content too long")
	ErrCommentLimitReached = errors.New("comment limit reached for guest")
	ErrInvalidCursor       = errors.New("invalid pagination cursor")
)
