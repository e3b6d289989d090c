package model

import (
	"errors"
	"time"
)

// Guest represents an invitee on the guest list. Attending is nil until the
// guest has responded to the RSVP; FirstOpenedAt is nil until the guest opens
// the invitation for the first time.
type Guest struct {
	ID                  int64      `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	Attending           *bool      `db:"attending" json:"attending"`
	PlusOnes            int        `db:"plus_ones" json:"plus_ones"`
	DietaryRestrictions *string    `db:"dietary_restrictions" json:"dietary_restrictions,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
	FirstOpenedAt       *time.Time `db:"first_opened_at" json:"first_opened_at,omitempty"`
}

// LoginRequest is the request body for name-lookup login.
type LoginRequest struct {
	Name string `json:"name"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token string `json:"token"`
}

// RSVPRequest is the request body for recording an RSVP.
type RSVPRequest struct {
	Name      string `json:"name"`
	Attending bool   `json:"attending"`
}

// UpsertGuestRequest is the admin request body for creating or updating a guest.
type UpsertGuestRequest struct {
	Name                string  `json:"name"`
	PlusOnes            int     `json:"plus_ones"`
	DietaryRestrictions *string `json:"dietary_restrictions,omitempty"`
}

// Guest errors
var (
	// ErrGuestNotFound is returned when a named guest cannot be found.
	ErrGuestNotFound = errors.New("guest not found")

	// ErrNotOnGuestList is returned when a login name is not on the guest list.
	ErrNotOnGuestList = errors.New("not on the guest list")

	// ErrGuestExists is returned when creating a guest whose name is taken.
	ErrGuestExists = errors.New("guest already exists")

	// ErrNameRequired is returned when a guest name is empty.
	ErrNameRequired = errors.New("guest name is required")
)
