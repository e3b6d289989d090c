package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"wedding-invitation-backend/internal/httputil"
	"wedding-invitation-backend/internal/model"
	"wedding-invitation-backend/internal/service"
	"wedding-invitation-backend/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create handles POST /comments
// Posts a comment for the authenticated guest. An optional Idempotency-Key
// header makes retries of the same submission replay-safe.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	guestID, ok := middleware.GetGuestIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")

	comment, err := h.commentService.Create(r.Context(), guestID, req.Content, idemKey)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Comment content is required")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, fmt.Sprintf("Comment content exceeds %d characters", model.MaxCommentLength))
		case errors.Is(err, model.ErrCommentLimitReached):
			// Keep the legacy human message; clients switch on the code.
			httputil.WriteForbiddenWithCode(w, httputil.ErrCodeCommentLimit,
				fmt.Sprintf("Maximum of %d comments allowed per guest", model.MaxCommentsPerGuest))
		case errors.Is(err, model.ErrGuestNotFound):
			httputil.WriteNotFound(w, "Guest not found")
		default:
			log.Printf("[ERROR] Create comment handler: guest=%d err=%v", guestID, err)
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// List handles GET /comments
// Returns one newest-first page of the comment wall.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	limit := model.DefaultPageSize
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			httputil.WriteBadRequest(w, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	page, err := h.commentService.ListPage(r.Context(), cursor, limit)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCursor) {
			httputil.WriteBadRequest(w, "Invalid cursor parameter")
			return
		}
		log.Printf("[ERROR] List comments handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to get comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// ListMine handles GET /comments/me
// Returns the authenticated guest's own comments.
func (h *CommentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	guestID, ok := middleware.GetGuestIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	comments, err := h.commentService.GetByGuest(r.Context(), guestID)
	if err != nil {
		log.Printf("[ERROR] ListMine handler: guest=%d err=%v", guestID, err)
		httputil.WriteInternalError(w, "Failed to get comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(comments),
		"comments": comments,
	})
}
