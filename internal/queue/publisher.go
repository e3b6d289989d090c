package queue

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event Event) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event to the stream using XADD.
// Uses "*" so Redis assigns the message ID (timestamp-sequence).
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event Event) (string, error) {
	values, err := event.ToMap()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Publisher] Publish OK: stream=%s type=%s msgID=%s guest=%d",
		stream, event.Type, messageID, event.GuestID)
	return messageID, nil
}

// PublishCommentCreated is a convenience method for comment created events.
func (p *RedisPublisher) PublishCommentCreated(ctx context.Context, commentID, guestID int64) (string, error) {
	return p.Publish(ctx, StreamWedding, NewCommentCreatedEvent(commentID, guestID))
}

// PublishInvitationOpened is a convenience method for invitation opened events.
func (p *RedisPublisher) PublishInvitationOpened(ctx context.Context, guestID int64) (string, error) {
	return p.Publish(ctx, StreamWedding, NewInvitationOpenedEvent(guestID))
}
