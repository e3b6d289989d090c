package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"wedding-invitation-backend/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// LockGuest locks the guest row until the transaction ends. Under READ
// COMMITTED a bare COUNT takes no lock, so without this two concurrent
// submissions would both count the same total and both commit past the cap.
func (r *commentRepository) LockGuest(ctx context.Context, tx *sqlx.Tx, guestID int64) error {
	var id int64
	err := tx.GetContext(ctx, &id, `SELECT id FROM guests WHERE id = $1 FOR UPDATE`, guestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrGuestNotFound
		}
		return fmt.Errorf("lock guest: %w", err)
	}
	return nil
}

// Create inserts a new comment inside the caller's transaction so the quota
// check and the insert commit atomically.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, guestID int64, content string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (guest_id, content)
		VALUES ($1, $2)
		RETURNING id, guest_id, content, created_at
	`
	var comment model.Comment
	err := tx.GetContext(ctx, &comment, query, guestID, content)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// CountByGuestID counts a guest's comments. Only sound for quota enforcement
// after LockGuest has serialized the transaction on the guest row.
func (r *commentRepository) CountByGuestID(ctx context.Context, tx *sqlx.Tx, guestID int64) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM comments WHERE guest_id = $1
	`, guestID)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

func (r *commentRepository) GetByGuestID(ctx context.Context, guestID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.guest_id, c.content, c.created_at, g.name AS guest_name
		FROM comments c
		JOIN guests g ON g.id = c.guest_id
		WHERE c.guest_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, query, guestID); err != nil {
		return nil, fmt.Errorf("get comments by guest: %w", err)
	}
	return comments, nil
}

// ListPage returns one page of the comment wall, newest first. Pagination is
// keyset on (created_at, id) so inserts between page loads never shift rows
// into an already-served page. Fetches limit+1 rows to detect whether a next
// page exists.
func (r *commentRepository) ListPage(ctx context.Context, cursor *string, limit int) ([]model.Comment, *string, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT c.id, c.guest_id, c.content, c.created_at, g.name AS guest_name
			FROM comments c
			JOIN guests g ON g.id = c.guest_id
			ORDER BY c.created_at DESC, c.id DESC
			LIMIT $1
		`
		args = []interface{}{limit + 1}
	} else {
		ts, id, err := parseCommentCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", model.ErrInvalidCursor, err)
		}
		query = `
			SELECT c.id, c.guest_id, c.content, c.created_at, g.name AS guest_name
			FROM comments c
			JOIN guests g ON g.id = c.guest_id
			WHERE (c.created_at, c.id) < ($1, $2)
			ORDER BY c.created_at DESC, c.id DESC
			LIMIT $3
		`
		args = []interface{}{ts, id, limit + 1}
	}

	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list comments: %w", err)
	}

	var nextCursor *string
	if len(comments) > limit {
		comments = comments[:limit]
		last := comments[len(comments)-1]
		c := formatCommentCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return comments, nextCursor, nil
}

func (r *commentRepository) TotalCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM comments`); err != nil {
		return 0, fmt.Errorf("count all comments: %w", err)
	}
	return count, nil
}

// The cursor encodes "id:unixNano" of the last row on a page. It is opaque to
// callers; only this file interprets it.

func parseCommentCursor(cursor string) (time.Time, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid cursor id")
	}
	ns, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid cursor timestamp")
	}
	return time.Unix(0, ns), id, nil
}

func formatCommentCursor(t time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", id, t.UnixNano())
}
