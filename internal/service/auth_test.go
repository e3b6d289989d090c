package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"wedding-invitation-backend/internal/config"
	"wedding-invitation-backend/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret",
		TokenMaxAge: 3600,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	guestRepo := &mockGuestRepository{
		getByNameFn: func(ctx context.Context, name string) (*model.Guest, error) {
			return &model.Guest{ID: 7, Name: "Alice Nguyen"}, nil
		},
	}
	svc := NewAuthService(guestRepo, testConfig())

	guest, token, err := svc.Login(context.Background(), "Alice Nguyen")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if guest.ID != 7 {
		t.Errorf("guest.ID = %d, want 7", guest.ID)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	// The token must verify with the configured secret and carry the guest
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type = %T", parsed.Claims)
	}
	if got := claims["guest_name"]; got != "Alice Nguyen" {
		t.Errorf("guest_name claim = %v, want Alice Nguyen", got)
	}
	if got, _ := claims["guest_id"].(float64); int64(got) != 7 {
		t.Errorf("guest_id claim = %v, want 7", claims["guest_id"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Error("expected an exp claim")
	}
}

func TestAuthService_Login_NotOnGuestList(t *testing.T) {
	svc := NewAuthService(&mockGuestRepository{}, testConfig())

	_, _, err := svc.Login(context.Background(), "Mallory")
	if !errors.Is(err, model.ErrNotOnGuestList) {
		t.Fatalf("error = %v, want ErrNotOnGuestList", err)
	}
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	guestRepo := &mockGuestRepository{
		getByNameFn: func(ctx context.Context, name string) (*model.Guest, error) {
			return nil, errors.New("connection lost")
		},
	}
	svc := NewAuthService(guestRepo, testConfig())

	_, _, err := svc.Login(context.Background(), "Alice")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, model.ErrNotOnGuestList) {
		t.Error("an infrastructure failure must not read as a guest-list rejection")
	}
}
