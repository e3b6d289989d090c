package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wedding-invitation-backend/internal/handler"
	"wedding-invitation-backend/internal/httputil"
	authmw "wedding-invitation-backend/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	GuestHandler   *handler.GuestHandler
	CommentHandler *handler.CommentHandler
	JWTSecret      string
	AdminAPIKey    string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Post("/login", cfg.AuthHandler.Login)
	r.Post("/rsvp", cfg.GuestHandler.RSVP)

	// Protected routes - require a guest token
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/guests", cfg.GuestHandler.GetByName)
		r.Post("/mark-opened", cfg.GuestHandler.MarkOpened)

		// Comment wall
		r.Get("/comments", cfg.CommentHandler.List)
		r.Post("/comments", cfg.CommentHandler.Create)
		r.Get("/comments/me", cfg.CommentHandler.ListMine)
	})

	// Admin routes - API key authentication
	r.Route("/admin", func(r chi.Router) {
		r.Use(authmw.APIKeyMiddleware(cfg.AdminAPIKey))

		r.Get("/guests", cfg.GuestHandler.AdminList)
		r.Post("/guests", cfg.GuestHandler.AdminCreate)
		r.Put("/guests/{id}", cfg.GuestHandler.AdminUpdate)
		r.Delete("/guests/{id}", cfg.GuestHandler.AdminDelete)
		r.Get("/rsvps", cfg.GuestHandler.AdminListRSVPs)
	})

	return r
}
