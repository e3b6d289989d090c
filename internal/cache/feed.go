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
	// feedFirstPageKey caches the serialized first page of the comment wall.
	// Only the un-cursored page is cached: it is the page every guest loads,
	// while deeper pages are rare enough to go straight to the database.
	feedFirstPageKey = "comments:firstpage"

	// FeedCacheTTL bounds staleness if invalidation is ever missed.
	FeedCacheTTL = 2 * time.Minute
)

// FeedCache caches the first page of the comment wall.
// Deeper (cursored) pages always hit the database.
type FeedCache interface {
	// GetFirstPage returns the cached first page, or found=false on a miss.
	GetFirstPage(ctx context.Context) (page *model.CommentListResponse, found bool, err error)

	// SetFirstPage stores the first page with the cache TTL.
	SetFirstPage(ctx context.Context, page *model.CommentListResponse) error

	// Invalidate drops the cached first page. Called when a comment is created.
	Invalidate(ctx context.Context) error
}

// RedisFeedCache implements FeedCache on a shared Redis client.
type RedisFeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a FeedCache backed by Redis.
func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

func (c *RedisFeedCache) GetFirstPage(ctx context.Context) (*model.CommentListResponse, bool, error) {
	raw, err := c.client.Get(ctx, feedFirstPageKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		log.Printf("[FeedCache] GetFirstPage FAILED: err=%v", err)
		return nil, false, fmt.Errorf("get first page: %w", err)
	}

	var page model.CommentListResponse
	if err := json.Unmarshal(raw, &page); err != nil {
		// A corrupt entry is treated as a miss; drop it so it gets rebuilt.
		log.Printf("[FeedCache] GetFirstPage corrupt entry, dropping: err=%v", err)
		_ = c.client.Del(ctx, feedFirstPageKey).Err()
		return nil, false, nil
	}

	return &page, true, nil
}

func (c *RedisFeedCache) SetFirstPage(ctx context.Context, page *model.CommentListResponse) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("serialize first page: %w", err)
	}

	if err := c.client.Set(ctx, feedFirstPageKey, raw, FeedCacheTTL).Err(); err != nil {
		log.Printf("[FeedCache] SetFirstPage FAILED: err=%v", err)
		return fmt.Errorf("set first page: %w", err)
	}

	log.Printf("[FeedCache] SetFirstPage OK: comments=%d total=%d", len(page.Comments), page.TotalCount)
	return nil
}

func (c *RedisFeedCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, feedFirstPageKey).Err(); err != nil {
		log.Printf("[FeedCache] Invalidate FAILED: err=%v", err)
		return fmt.Errorf("invalidate first page: %w", err)
	}
	log.Printf("[FeedCache] Invalidate OK")
	return nil
}
