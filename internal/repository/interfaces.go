package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"wedding-invitation-backend/internal/model"
)

type GuestRepository interface {
	Create(ctx context.Context, guest *model.Guest) error
	GetByID(ctx context.Context, id int64) (*model.Guest, error)
	GetByName(ctx context.Context, name string) (*model.Guest, error)
	List(ctx context.Context) ([]model.Guest, error)
	Update(ctx context.Context, guest *model.Guest) error
	Delete(ctx context.Context, id int64) error
	SetAttending(ctx context.Context, guestID int64, attending bool) error
	// MarkOpened records the first time a guest opens the invitation.
	// Subsequent calls are no-ops; returns true when this call set the timestamp.
	MarkOpened(ctx context.Context, guestID int64) (bool, error)
}

type CommentRepository interface {
	// LockGuest takes a row lock on the guest for the rest of the
	// transaction. Must be called before CountByGuestID, otherwise two
	// concurrent submissions can both pass the quota check.
	LockGuest(ctx context.Context, tx *sqlx.Tx, guestID int64) error
	Create(ctx context.Context, tx *sqlx.Tx, guestID int64, content string) (*model.Comment, error)
	CountByGuestID(ctx context.Context, tx *sqlx.Tx, guestID int64) (int, error)
	GetByGuestID(ctx context.Context, guestID int64) ([]model.Comment, error)
	// ListPage returns one newest-first page of the comment wall.
	// A nil cursor means the first page; the returned cursor is nil on the
	// final page.
	ListPage(ctx context.Context, cursor *string, limit int) ([]model.Comment, *string, error)
	TotalCount(ctx context.Context) (int, error)
}
