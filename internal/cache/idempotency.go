package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"wedding-invitation-backend/internal/model"
)

const (
	// idempotencyPrefix keys stored submission results by (guest, client key).
	idempotencyPrefix = "comments:idem:"

	// IdempotencyTTL is how long a recorded submission result is replayable.
	// Long enough to cover any realistic client retry window.
	IdempotencyTTL = 24 * time.Hour
)

// IdempotencyStore records the result of a comment submission keyed by the
// client-generated idempotency key, so a retry after a dropped response
// replays the original comment instead of creating a duplicate.
type IdempotencyStore interface {
	// Get returns the previously recorded comment for the key, or found=false.
	Get(ctx context.Context, guestID int64, key string) (comment *model.Comment, found bool, err error)

	// Put records the created comment under the key.
	Put(ctx context.Context, guestID int64, key string, comment *model.Comment) error
}

// RedisIdempotencyStore implements IdempotencyStore on a shared Redis client.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore backed by Redis.
func NewIdempotencyStore(client *redis.Client) IdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func idemKey(guestID int64, key string) string {
	return fmt.Sprintf("%s%d:%s", idempotencyPrefix, guestID, key)
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, guestID int64, key string) (*model.Comment, bool, error) {
	raw, err := s.client.Get(ctx, idemKey(guestID, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		log.Printf("[Idempotency] Get FAILED: guest=%d key=%s err=%v", guestID, key, err)
		return nil, false, fmt.Errorf("get idempotency record: %w", err)
	}

	var comment model.Comment
	if err := json.Unmarshal(raw, &comment); err != nil {
		return nil, false, fmt.Errorf("parse idempotency record: %w", err)
	}
	return &comment, true, nil
}

func (s *RedisIdempotencyStore) Put(ctx context.Context, guestID int64, key string, comment *model.Comment) error {
	raw, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("serialize idempotency record: %w", err)
	}

	// NX keeps the first recorded result authoritative if two requests with
	// the same key ever race.
	if err := s.client.SetNX(ctx, idemKey(guestID, key), raw, IdempotencyTTL).Err(); err != nil {
		log.Printf("[Idempotency] Put FAILED: guest=%d key=%s err=%v", guestID, key, err)
		return fmt.Errorf("store idempotency record: %w", err)
	}
	return nil
}
