package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"

	"wedding-invitation-backend/internal/model"
	"wedding-invitation-backend/internal/service"
)

// stubCommentRepository drives the comment service for handler tests.
// Only ListPage carries per-test behavior; the write paths are unused here.
type stubCommentRepository struct {
	listPageFn func(ctx context.Context, cursor *string, limit int) ([]model.Comment, *string, error)
}

func (s *stubCommentRepository) LockGuest(ctx context.Context, tx *sqlx.Tx, guestID int64) error {
	return nil
}

func (s *stubCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, guestID int64, content string) (*model.Comment, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubCommentRepository) CountByGuestID(ctx context.Context, tx *sqlx.Tx, guestID int64) (int, error) {
	return 0, nil
}

func (s *stubCommentRepository) GetByGuestID(ctx context.Context, guestID int64) ([]model.Comment, error) {
	return nil, nil
}

func (s *stubCommentRepository) ListPage(ctx context.Context, cursor *string, limit int) ([]model.Comment, *string, error) {
	if s.listPageFn != nil {
		return s.listPageFn(ctx, cursor, limit)
	}
	return nil, nil, nil
}

func (s *stubCommentRepository) TotalCount(ctx context.Context) (int, error) {
	return 0, nil
}

func TestCommentHandler_List_InvalidCursorIsBadRequest(t *testing.T) {
	repo := &stubCommentRepository{
		listPageFn: func(ctx context.Context, cursor *string, limit int) ([]model.Comment, *string, error) {
			return nil, nil, fmt.Errorf("%w: bad format", model.ErrInvalidCursor)
		},
	}
	h := NewCommentHandler(service.NewCommentService(repo, nil, nil, nil, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/comments?cursor=bogus", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Error.Code != "BAD_REQUEST" {
		t.Errorf("code = %q, want BAD_REQUEST", env.Error.Code)
	}
}

func TestCommentHandler_List_InvalidLimitIsBadRequest(t *testing.T) {
	h := NewCommentHandler(service.NewCommentService(&stubCommentRepository{}, nil, nil, nil, nil, nil))

	for _, limit := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/comments?limit="+limit, nil)
		rr := httptest.NewRecorder()
		h.List(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("limit=%q status = %d, want 400", limit, rr.Code)
		}
	}
}
