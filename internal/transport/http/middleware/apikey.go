package middleware

import (
	"crypto/subtle"
	"net/http"

	"wedding-invitation-backend/internal/httputil"
)

// APIKeyMiddleware guards the admin routes with a shared API key carried in
// the X-API-Key header. Comparison is constant-time.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				// Admin surface disabled when no key is configured
				httputil.WriteForbidden(w, "Admin API is disabled")
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				httputil.WriteUnauthorized(w, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
