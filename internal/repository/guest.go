package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"wedding-invitation-backend/internal/model"
)

type guestRepository struct {
	db *sqlx.DB
}

func NewGuestRepository(db *sqlx.DB) GuestRepository {
	return &guestRepository{db: db}
}

// Create inserts a new guest. Names are unique; a duplicate maps to
// model.ErrGuestExists.
func (r *guestRepository) Create(ctx context.Context, guest *model.Guest) error {
	query := `
		INSERT INTO guests (name, plus_ones, dietary_restrictions)
		VALUES ($1, $2, $3)
		RETURNING id, name, attending, plus_ones, dietary_restrictions, created_at, updated_at, first_opened_at
	`
	err := r.db.GetContext(ctx, guest, query, guest.Name, guest.PlusOnes, guest.DietaryRestrictions)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.ErrGuestExists
		}
		return fmt.Errorf("insert guest: %w", err)
	}
	return nil
}

func (r *guestRepository) GetByID(ctx context.Context, id int64) (*model.Guest, error) {
	query := `
		SELECT id, name, attending, plus_ones, dietary_restrictions, created_at, updated_at, first_opened_at
		FROM guests
		WHERE id = $1
	`
	var guest model.Guest
	err := r.db.GetContext(ctx, &guest, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return &guest, nil
}

// GetByName does a case-insensitive lookup so guests don't get locked out by
// capitalization on the login form.
func (r *guestRepository) GetByName(ctx context.Context, name string) (*model.Guest, error) {
	query := `
		SELECT id, name, attending, plus_ones, dietary_restrictions, created_at, updated_at, first_opened_at
		FROM guests
		WHERE LOWER(name) = LOWER($1)
	`
	var guest model.Guest
	err := r.db.GetContext(ctx, &guest, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get guest by name: %w", err)
	}
	return &guest, nil
}

func (r *guestRepository) List(ctx context.Context) ([]model.Guest, error) {
	query := `
		SELECT id, name, attending, plus_ones, dietary_restrictions, created_at, updated_at, first_opened_at
		FROM guests
		ORDER BY name ASC
	`
	var guests []model.Guest
	if err := r.db.SelectContext(ctx, &guests, query); err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	return guests, nil
}

func (r *guestRepository) Update(ctx context.Context, guest *model.Guest) error {
	query := `
		UPDATE guests
		SET name = $1, plus_ones = $2, dietary_restrictions = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.db.GetContext(ctx, &guest.UpdatedAt, query,
		guest.Name, guest.PlusOnes, guest.DietaryRestrictions, guest.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrGuestNotFound
	}
	if err != nil {
		return fmt.Errorf("update guest: %w", err)
	}
	return nil
}

func (r *guestRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete guest rows affected: %w", err)
	}
	if affected == 0 {
		return model.ErrGuestNotFound
	}
	return nil
}

func (r *guestRepository) SetAttending(ctx context.Context, guestID int64, attending bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE guests SET attending = $1, updated_at = NOW() WHERE id = $2
	`, attending, guestID)
	if err != nil {
		return fmt.Errorf("set attending: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set attending rows affected: %w", err)
	}
	if affected == 0 {
		return model.ErrGuestNotFound
	}
	return nil
}

// MarkOpened sets first_opened_at only when it is still NULL, so the first
// open wins and replays are no-ops.
func (r *guestRepository) MarkOpened(ctx context.Context, guestID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE guests SET first_opened_at = NOW()
		WHERE id = $1 AND first_opened_at IS NULL
	`, guestID)
	if err != nil {
		return false, fmt.Errorf("mark opened: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark opened rows affected: %w", err)
	}
	return affected == 1, nil
}
