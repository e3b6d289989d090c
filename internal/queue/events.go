package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the wedding stream
const (
	EventCommentCreated   = "comment_created"
	EventInvitationOpened = "invitation_opened"
)

// Stream names
const (
	StreamWedding = "stream:wedding"
)

// Consumer group name for background workers
const (
	ConsumerGroupWedding = "wedding_workers"
)

// Event represents an event published to the wedding stream.
// All event types share this structure.
type Event struct {
	Type      string `json:"type"`      // EventCommentCreated, EventInvitationOpened
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Comment event
	CommentID int64 `json:"comment_id,omitempty"`

	// Both events carry the guest who acted
	GuestID int64 `json:"guest_id,omitempty"`
}

// NewCommentCreatedEvent creates an event for a newly posted comment.
// The worker rewarms the cached first page of the wall.
func NewCommentCreatedEvent(commentID, guestID int64) Event {
	return Event{
		Type:      EventCommentCreated,
		Timestamp: time.Now().Unix(),
		CommentID: commentID,
		GuestID:   guestID,
	}
}

// NewInvitationOpenedEvent creates an event for a guest opening their
// invitation for the first time. Recorded off the request path.
func NewInvitationOpenedEvent(guestID int64) Event {
	return Event{
		Type:      EventInvitationOpened,
		Timestamp: time.Now().Unix(),
		GuestID:   guestID,
	}
}

// ToMap serializes the event as a flat map for XADD.
func (e Event) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{"data": string(data)}, nil
}

// EventFromMap parses an event from the XREADGROUP value map.
func EventFromMap(values map[string]interface{}) (Event, error) {
	raw, ok := values["data"].(string)
	if !ok {
		return Event{}, fmt.Errorf("event missing data field")
	}
	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}
