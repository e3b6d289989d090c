package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wedding-invitation-backend/internal/config"
	"wedding-invitation-backend/internal/model"
	"wedding-invitation-backend/internal/repository"
)

// AuthService handles guest login. There are no passwords: a guest signs in
// with their name, which must match an entry on the guest list.
type AuthService struct {
	guestRepo repository.GuestRepository
	config    *config.Config
}

func NewAuthService(guestRepo repository.GuestRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		guestRepo: guestRepo,
		config:    cfg,
	}
}

// Login looks the name up on the guest list and issues an access token.
// Returns model.ErrNotOnGuestList for unknown names.
func (s *AuthService) Login(ctx context.Context, name string) (*model.Guest, string, error) {
	guest, err := s.guestRepo.GetByName(ctx, name)
	if errors.Is(err, model.ErrGuestNotFound) {
		return nil, "", model.ErrNotOnGuestList
	}
	if err != nil {
		return nil, "", fmt.Errorf("look up guest: %w", err)
	}

	token, err := s.generateToken(guest)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	log.Printf("[AuthService] Guest %q logged in (id=%d)", guest.Name, guest.ID)
	return guest, token, nil
}

// generateToken issues an HMAC-signed JWT carrying the guest's id and name.
func (s *AuthService) generateToken(guest *model.Guest) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"guest_id":   guest.ID,
		"guest_name": guest.Name,
		"iat":        now.Unix(),
		"exp":        now.Add(time.Duration(s.config.TokenMaxAge) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
