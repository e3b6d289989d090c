package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"wedding-invitation-backend/internal/cache"
	"wedding-invitation-backend/internal/model"
	"wedding-invitation-backend/internal/queue"
	"wedding-invitation-backend/internal/repository"
)

// CommentService owns the comment wall: capped submission and the
// cursor-paginated newest-first feed.
type CommentService struct {
	commentRepo repository.CommentRepository
	guestRepo   repository.GuestRepository
	db          *sqlx.DB
	feedCache   cache.FeedCache        // nil disables caching
	idemStore   cache.IdempotencyStore // nil disables replay protection
	publisher   queue.Publisher        // nil disables events
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	guestRepo repository.GuestRepository,
	db *sqlx.DB,
	feedCache cache.FeedCache,
	idemStore cache.IdempotencyStore,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		guestRepo:   guestRepo,
		db:          db,
		feedCache:   feedCache,
		idemStore:   idemStore,
		publisher:   publisher,
	}
}

// Create validates and stores one comment for the guest.
//
// The per-guest quota check and the insert run in one transaction that
// holds a lock on the guest row, so two concurrent submissions cannot both
// slip under the cap. When idemKey is non-empty and was seen before, the
// originally created comment is returned instead of inserting a duplicate.
func (s *CommentService) Create(ctx context.Context, guestID int64, content, idemKey string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if len(content) == 0 {
		return nil, model.ErrContentRequired
	}
	if len([]rune(content)) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	guest, err := s.guestRepo.GetByID(ctx, guestID)
	if err != nil {
		return nil, err // ErrGuestNotFound or wrapped error
	}

	// Replay of an already-recorded submission
	if idemKey != "" && s.idemStore != nil {
		if prior, found, err := s.idemStore.Get(ctx, guestID, idemKey); err == nil && found {
			log.Printf("[CommentService] Replayed submission: guest=%d key=%s comment=%d",
				guestID, idemKey, prior.ID)
			return prior, nil
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The guest row lock serializes concurrent submissions by the same
	// guest; without it the COUNT below takes no lock and two racing
	// transactions could both slip under the cap.
	if err := s.commentRepo.LockGuest(ctx, tx, guestID); err != nil {
		return nil, err
	}

	count, err := s.commentRepo.CountByGuestID(ctx, tx, guestID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxCommentsPerGuest {
		return nil, model.ErrCommentLimitReached
	}

	comment, err := s.commentRepo.Create(ctx, tx, guestID, content)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	comment.GuestName = guest.Name

	log.Printf("[CommentService] Guest %d posted comment %d (%d/%d)",
		guestID, comment.ID, count+1, model.MaxCommentsPerGuest)

	// Record the result for replay before anything else can fail
	if idemKey != "" && s.idemStore != nil {
		if err := s.idemStore.Put(ctx, guestID, idemKey, comment); err != nil {
			log.Printf("[CommentService] Failed to record idempotency key: %v", err)
		}
	}

	// The worker rewarms the first-page cache; dropping it here keeps reads
	// fresh even if the event is delayed.
	if s.feedCache != nil {
		if err := s.feedCache.Invalidate(ctx); err != nil {
			log.Printf("[CommentService] Failed to invalidate feed cache: %v", err)
		}
	}

	// Publish after commit, best-effort
	if s.publisher != nil {
		event := queue.NewCommentCreatedEvent(comment.ID, guestID)
		if _, err := s.publisher.Publish(ctx, queue.StreamWedding, event); err != nil {
			log.Printf("[CommentService] Failed to publish CommentCreated event: %v", err)
		}
	}

	return comment, nil
}

// ListPage returns one newest-first page of the wall. The un-cursored first
// page with the default limit is served from cache when warm.
func (s *CommentService) ListPage(ctx context.Context, cursor *string, limit int) (*model.CommentListResponse, error) {
	if limit <= 0 {
		limit = model.DefaultPageSize
	}
	if limit > model.MaxPageSize {
		limit = model.MaxPageSize
	}

	cacheable := cursor == nil && limit == model.DefaultPageSize && s.feedCache != nil

	if cacheable {
		if page, found, err := s.feedCache.GetFirstPage(ctx); err == nil && found {
			return page, nil
		}
	}

	comments, nextCursor, err := s.commentRepo.ListPage(ctx, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	total, err := s.commentRepo.TotalCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	if comments == nil {
		comments = []model.Comment{}
	}

	page := &model.CommentListResponse{
		Comments:   comments,
		NextCursor: nextCursor,
		TotalCount: total,
	}

	if cacheable {
		if err := s.feedCache.SetFirstPage(ctx, page); err != nil {
			log.Printf("[CommentService] Failed to cache first page: %v", err)
		}
	}

	return page, nil
}

// GetByGuest returns every comment the guest has posted, newest first.
func (s *CommentService) GetByGuest(ctx context.Context, guestID int64) ([]model.Comment, error) {
	comments, err := s.commentRepo.GetByGuestID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("get guest comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

// RebuildFirstPage refreshes the cached first page from the database.
// Called by the worker on comment_created events.
func (s *CommentService) RebuildFirstPage(ctx context.Context) error {
	if s.feedCache == nil {
		return nil
	}

	comments, nextCursor, err := s.commentRepo.ListPage(ctx, nil, model.DefaultPageSize)
	if err != nil {
		return fmt.Errorf("list first page: %w", err)
	}
	total, err := s.commentRepo.TotalCount(ctx)
	if err != nil {
		return fmt.Errorf("count comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	return s.feedCache.SetFirstPage(ctx, &model.CommentListResponse{
		Comments:   comments,
		NextCursor: nextCursor,
		TotalCount: total,
	})
}
