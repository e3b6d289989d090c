package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"wedding-invitation-backend/internal/httputil"
	"wedding-invitation-backend/internal/model"
	"wedding-invitation-backend/internal/service"
	"wedding-invitation-backend/internal/transport/http/middleware"
)

type GuestHandler struct {
	guestService *service.GuestService
}

func NewGuestHandler(guestService *service.GuestService) *GuestHandler {
	return &GuestHandler{
		guestService: guestService,
	}
}

// RSVP handles POST /rsvp
// Public, as the invitation links guests straight to the RSVP form.
func (h *GuestHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	var req model.RSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		httputil.WriteBadRequest(w, "Name is required")
		return
	}

	guest, err := h.guestService.RSVP(r.Context(), name, req.Attending)
	if err != nil {
		if errors.Is(err, model.ErrGuestNotFound) {
			httputil.WriteNotFound(w, "Guest not found")
			return
		}
		log.Printf("[ERROR] RSVP handler: name=%q err=%v", name, err)
		httputil.WriteInternalError(w, "Failed to record RSVP")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "RSVP recorded successfully",
		"guest":   guest,
	})
}

// GetByName handles GET /guests?name=
// Lets a signed-in guest look up their own entry (RSVP state, plus-ones).
func (h *GuestHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httputil.WriteBadRequest(w, "Name parameter is required")
		return
	}

	guest, err := h.guestService.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, model.ErrGuestNotFound) {
			httputil.WriteNotFound(w, "Guest not found")
			return
		}
		log.Printf("[ERROR] GetByName handler: name=%q err=%v", name, err)
		httputil.WriteInternalError(w, "Failed to fetch guest")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, guest)
}

// MarkOpened handles POST /mark-opened
// Records the first time the authenticated guest opens the invitation.
func (h *GuestHandler) MarkOpened(w http.ResponseWriter, r *http.Request) {
	guestID, ok := middleware.GetGuestIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.guestService.MarkOpened(r.Context(), guestID); err != nil {
		log.Printf("[ERROR] MarkOpened handler: guest=%d err=%v", guestID, err)
		httputil.WriteInternalError(w, "Failed to track opening")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "Invitation opening recorded",
	})
}

// Admin endpoints below are mounted behind the API-key middleware.

// AdminList handles GET /admin/guests
func (h *GuestHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	guests, err := h.guestService.List(r.Context())
	if err != nil {
		log.Printf("[ERROR] AdminList handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to fetch guests")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(guests),
		"guests": guests,
	})
}

// AdminListRSVPs handles GET /admin/rsvps
// Same data as the guest list; kept as a separate route so the couple's
// spreadsheet export keeps working.
func (h *GuestHandler) AdminListRSVPs(w http.ResponseWriter, r *http.Request) {
	guests, err := h.guestService.List(r.Context())
	if err != nil {
		log.Printf("[ERROR] AdminListRSVPs handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to fetch RSVPs")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(guests),
		"rsvps": guests,
	})
}

// AdminCreate handles POST /admin/guests
func (h *GuestHandler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req model.UpsertGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	guest, err := h.guestService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNameRequired):
			httputil.WriteBadRequest(w, "Guest name is required")
		case errors.Is(err, model.ErrGuestExists):
			httputil.WriteConflict(w, "A guest with that name already exists")
		default:
			log.Printf("[ERROR] AdminCreate handler: err=%v", err)
			httputil.WriteInternalError(w, "Failed to create guest")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, guest)
}

// AdminUpdate handles PUT /admin/guests/{id}
func (h *GuestHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid guest ID")
		return
	}

	var req model.UpsertGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	guest, err := h.guestService.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, model.ErrGuestNotFound) {
			httputil.WriteNotFound(w, "Guest not found")
			return
		}
		log.Printf("[ERROR] AdminUpdate handler: id=%d err=%v", id, err)
		httputil.WriteInternalError(w, "Failed to update guest")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, guest)
}

// AdminDelete handles DELETE /admin/guests/{id}
func (h *GuestHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid guest ID")
		return
	}

	if err := h.guestService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrGuestNotFound) {
			httputil.WriteNotFound(w, "Guest not found")
			return
		}
		log.Printf("[ERROR] AdminDelete handler: id=%d err=%v", id, err)
		httputil.WriteInternalError(w, "Failed to delete guest")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Guest deleted successfully",
	})
}
