package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"wedding-invitation-backend/internal/httputil"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// GuestIDKey is the context key for the authenticated guest's ID
	GuestIDKey contextKey = "guest_id"

	// GuestNameKey is the context key for the authenticated guest's name
	GuestNameKey contextKey = "guest_name"
)

// AuthMiddleware creates a middleware that validates Bearer JWT tokens issued
// at login and puts the guest's id and name on the request context.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				// Expected format: "Bearer <token>"
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}

			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				httputil.WriteUnauthorized(w, "Invalid authentication token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				httputil.WriteUnauthorized(w, "Invalid authentication token")
				return
			}

			guestIDFloat, ok := claims["guest_id"].(float64)
			if !ok {
				httputil.WriteUnauthorized(w, "Invalid token claims")
				return
			}
			guestName, _ := claims["guest_name"].(string)

			ctx := context.WithValue(r.Context(), GuestIDKey, int64(guestIDFloat))
			ctx = context.WithValue(ctx, GuestNameKey, guestName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetGuestIDFromContext extracts the guest ID from the request context.
// Returns the guest ID and true if found, or 0 and false if not found.
func GetGuestIDFromContext(ctx context.Context) (int64, bool) {
	guestID, ok := ctx.Value(GuestIDKey).(int64)
	return guestID, ok
}

// GetGuestNameFromContext extracts the guest name from the request context.
func GetGuestNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(GuestNameKey).(string)
	return name, ok
}
