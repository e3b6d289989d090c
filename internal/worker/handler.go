package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"wedding-invitation-backend/internal/queue"
)

// FeedRebuilder refreshes the cached first page of the comment wall.
// Implemented by the comment service; abstracted so the worker doesn't
// depend on the service package directly.
type FeedRebuilder interface {
	RebuildFirstPage(ctx context.Context) error
}

// Handler processes events from the wedding stream.
type Handler struct {
	feed FeedRebuilder
}

// NewHandler creates a new event handler.
func NewHandler(feed FeedRebuilder) *Handler {
	return &Handler{feed: feed}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.Event) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventCommentCreated:
		err = h.handleCommentCreated(ctx, event)
	case queue.EventInvitationOpened:
		err = h.handleInvitationOpened(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleCommentCreated rewarms the first-page cache so the next reader gets
// a hit instead of paying for the rebuild inline.
func (h *Handler) handleCommentCreated(ctx context.Context, event queue.Event) error {
	log.Printf("[Worker] CommentCreated: comment=%d guest=%d", event.CommentID, event.GuestID)

	if err := h.feed.RebuildFirstPage(ctx); err != nil {
		return fmt.Errorf("rebuild first page: %w", err)
	}
	return nil
}

// handleInvitationOpened records the open for the couple's audit trail.
// The latch itself was already set in the database on the request path.
func (h *Handler) handleInvitationOpened(ctx context.Context, event queue.Event) error {
	openedAt := time.Unix(event.Timestamp, 0).Format(time.RFC3339)
	log.Printf("[Worker] InvitationOpened: guest=%d at=%s", event.GuestID, openedAt)
	return nil
}
