package service

import (
	"context"
	"errors"
	"testing"

	"wedding-invitation-backend/internal/model"
	"wedding-invitation-backend/internal/queue"
)

func TestGuestService_RSVP(t *testing.T) {
	var setID int64
	var setAttending bool
	guestRepo := &mockGuestRepository{
		getByNameFn: func(ctx context.Context, name string) (*model.Guest, error) {
			return &model.Guest{ID: 3, Name: name}, nil
		},
		setAttendingFn: func(ctx context.Context, guestID int64, attending bool) error {
			setID = guestID
			setAttending = attending
			return nil
		},
	}
	svc := NewGuestService(guestRepo, nil)

	guest, err := svc.RSVP(context.Background(), "Alice", true)
	if err != nil {
		t.Fatalf("RSVP: %v", err)
	}
	if setID != 3 || !setAttending {
		t.Errorf("SetAttending(%d, %t), want (3, true)", setID, setAttending)
	}
	if guest.Attending == nil || !*guest.Attending {
		t.Error("expected the returned guest to carry attending=true")
	}
}

func TestGuestService_RSVP_UnknownGuest(t *testing.T) {
	svc := NewGuestService(&mockGuestRepository{}, nil)

	_, err := svc.RSVP(context.Background(), "Mallory", true)
	if !errors.Is(err, model.ErrGuestNotFound) {
		t.Fatalf("error = %v, want ErrGuestNotFound", err)
	}
}

func TestGuestService_Create_RequiresName(t *testing.T) {
	svc := NewGuestService(&mockGuestRepository{}, nil)

	_, err := svc.Create(context.Background(), model.UpsertGuestRequest{Name: "   "})
	if !errors.Is(err, model.ErrNameRequired) {
		t.Fatalf("error = %v, want ErrNameRequired", err)
	}
}

func TestGuestService_MarkOpened_FirstOpenPublishes(t *testing.T) {
	guestRepo := &mockGuestRepository{
		markOpenedFn: func(ctx context.Context, guestID int64) (bool, error) {
			return true, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewGuestService(guestRepo, pub)

	if err := svc.MarkOpened(context.Background(), 5); err != nil {
		t.Fatalf("MarkOpened: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(pub.events))
	}
	if pub.events[0].Type != queue.EventInvitationOpened {
		t.Errorf("event type = %q, want %q", pub.events[0].Type, queue.EventInvitationOpened)
	}
	if pub.events[0].GuestID != 5 {
		t.Errorf("event guest = %d, want 5", pub.events[0].GuestID)
	}
}

func TestGuestService_MarkOpened_ReplayIsSilent(t *testing.T) {
	guestRepo := &mockGuestRepository{
		markOpenedFn: func(ctx context.Context, guestID int64) (bool, error) {
			return false, nil // the latch was already set
		},
	}
	pub := &mockPublisher{}
	svc := NewGuestService(guestRepo, pub)

	if err := svc.MarkOpened(context.Background(), 5); err != nil {
		t.Fatalf("MarkOpened: %v", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("published events = %d, want 0 (not the first open)", len(pub.events))
	}
}

func TestGuestService_List_NilBecomesEmpty(t *testing.T) {
	svc := NewGuestService(&mockGuestRepository{}, nil)

	guests, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if guests == nil {
		t.Error("expected an empty slice, got nil")
	}
}
