package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"wedding-invitation-backend/internal/httputil"
	"wedding-invitation-backend/internal/model"
	"wedding-invitation-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles POST /login
// Name-lookup authentication: the name must be on the guest list.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		httputil.WriteBadRequest(w, "Name is required")
		return
	}

	_, token, err := h.authService.Login(r.Context(), name)
	if err != nil {
		if errors.Is(err, model.ErrNotOnGuestList) {
			httputil.WriteError(w, http.StatusForbidden, httputil.ErrCodeNotOnGuestList,
				"You are not on the guest list")
			return
		}
		log.Printf("[ERROR] Login handler: name=%q err=%v", name, err)
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.LoginResponse{Token: token})
}
