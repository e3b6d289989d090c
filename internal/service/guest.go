package service

import (
	"context"
	"log"
	"strings"

	"wedding-invitation-backend/internal/model"
	"wedding-invitation-backend/internal/queue"
	"wedding-invitation-backend/internal/repository"
)

// GuestService handles the guest list, RSVP state, and invitation
// open-tracking.
type GuestService struct {
	guestRepo repository.GuestRepository
	publisher queue.Publisher // nil disables events
}

func NewGuestService(guestRepo repository.GuestRepository, publisher queue.Publisher) *GuestService {
	return &GuestService{
		guestRepo: guestRepo,
		publisher: publisher,
	}
}

// GetByName returns the guest with the given name.
func (s *GuestService) GetByName(ctx context.Context, name string) (*model.Guest, error) {
	return s.guestRepo.GetByName(ctx, name)
}

// List returns the full guest list (admin).
func (s *GuestService) List(ctx context.Context) ([]model.Guest, error) {
	guests, err := s.guestRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if guests == nil {
		guests = []model.Guest{}
	}
	return guests, nil
}

// Create adds a guest to the list (admin).
func (s *GuestService) Create(ctx context.Context, req model.UpsertGuestRequest) (*model.Guest, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrNameRequired
	}

	guest := &model.Guest{
		Name:                name,
		PlusOnes:            req.PlusOnes,
		DietaryRestrictions: req.DietaryRestrictions,
	}
	if err := s.guestRepo.Create(ctx, guest); err != nil {
		return nil, err
	}

	log.Printf("[GuestService] Created guest %q (id=%d)", guest.Name, guest.ID)
	return guest, nil
}

// Update modifies a guest entry (admin).
func (s *GuestService) Update(ctx context.Context, id int64, req model.UpsertGuestRequest) (*model.Guest, error) {
	guest, err := s.guestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		guest.Name = name
	}
	guest.PlusOnes = req.PlusOnes
	if req.DietaryRestrictions != nil {
		guest.DietaryRestrictions = req.DietaryRestrictions
	}

	if err := s.guestRepo.Update(ctx, guest); err != nil {
		return nil, err
	}

	log.Printf("[GuestService] Updated guest %d", id)
	return guest, nil
}

// Delete removes a guest from the list (admin).
func (s *GuestService) Delete(ctx context.Context, id int64) error {
	if err := s.guestRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[GuestService] Deleted guest %d", id)
	return nil
}

// RSVP records whether the named guest is attending. Only the attending flag
// changes; the rest of the guest entry is admin-owned.
func (s *GuestService) RSVP(ctx context.Context, name string, attending bool) (*model.Guest, error) {
	guest, err := s.guestRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.guestRepo.SetAttending(ctx, guest.ID, attending); err != nil {
		return nil, err
	}
	guest.Attending = &attending

	log.Printf("[GuestService] RSVP recorded: guest=%q attending=%t", guest.Name, attending)
	return guest, nil
}

// MarkOpened records the first time a guest opens their invitation. The
// latch lives in the database row, so replays and concurrent calls are
// harmless; only the winning call publishes an event.
func (s *GuestService) MarkOpened(ctx context.Context, guestID int64) error {
	first, err := s.guestRepo.MarkOpened(ctx, guestID)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	log.Printf("[GuestService] Invitation opened for the first time: guest=%d", guestID)

	if s.publisher != nil {
		event := queue.NewInvitationOpenedEvent(guestID)
		if _, err := s.publisher.Publish(ctx, queue.StreamWedding, event); err != nil {
			log.Printf("[GuestService] Failed to publish InvitationOpened event: %v", err)
		}
	}
	return nil
}
