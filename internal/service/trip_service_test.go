package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkrv/tripledger/internal/models"
)

func TestCreateTripValidation(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	tests := []struct {
		name string
		trip *models.Trip
	}{
		{name: "missing name", trip: &models.Trip{BaseCurrency: "EUR"}},
		{name: "bad currency", trip: &models.Trip{Name: "Trip", BaseCurrency: "EURO"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Trips.CreateTrip(ctx, env.owner.ID, tt.trip)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateTripMakesCreatorOwner(t *testing.T) {
	env := newTestEnv(t, 0)

	member, err := env.store.GetMember(context.Background(), env.trip.ID, env.owner.ID)
	if err != nil {
		t.Fatalf("failed to get creator membership: %v", err)
	}
	if member.Role != models.RoleOwner {
		t.Errorf("expected creator to be OWNER, got %s", member.Role)
	}
	if member.RSVP != models.RSVPAccepted {
		t.Errorf("expected creator RSVP ACCEPTED, got %s", member.RSVP)
	}
	if env.trip.SpendStatus != models.SpendOpen {
		t.Errorf("expected new trip OPEN, got %s", env.trip.SpendStatus)
	}
}

func TestInviteAndRSVP(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	invitee := models.NewUser("invitee@example.com", "Invitee", "hash")
	if err := env.store.CreateUser(ctx, invitee); err != nil {
		t.Fatalf("failed to create invitee: %v", err)
	}

	member, err := env.services.Trips.InviteMember(ctx, env.owner.ID, env.trip.ID, "Invitee@Example.com")
	if err != nil {
		t.Fatalf("failed to invite: %v", err)
	}
	if member.UserID != invitee.ID {
		t.Errorf("expected member %s, got %s", invitee.ID, member.UserID)
	}
	if member.RSVP != models.RSVPPending {
		t.Errorf("expected PENDING RSVP, got %s", member.RSVP)
	}
	if member.Role != models.RoleMember {
		t.Errorf("expected MEMBER role, got %s", member.Role)
	}

	// Double invite is rejected.
	if _, err := env.services.Trips.InviteMember(ctx, env.owner.ID, env.trip.ID, invitee.Email); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput on double invite, got %v", err)
	}

	// Unknown email.
	if _, err := env.services.Trips.InviteMember(ctx, env.owner.ID, env.trip.ID, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown email, got %v", err)
	}

	if err := env.services.Trips.RSVP(ctx, invitee.ID, env.trip.ID, models.RSVPAccepted); err != nil {
		t.Fatalf("failed to RSVP: %v", err)
	}
	updated, err := env.store.GetMember(ctx, env.trip.ID, invitee.ID)
	if err != nil {
		t.Fatalf("failed to get member: %v", err)
	}
	if updated.RSVP != models.RSVPAccepted {
		t.Errorf("expected ACCEPTED, got %s", updated.RSVP)
	}

	if err := env.services.Trips.RSVP(ctx, invitee.ID, env.trip.ID, "WHENEVER"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for bad RSVP, got %v", err)
	}
}

func TestInviteRequiresOrganizer(t *testing.T) {
	env := newTestEnv(t, 1)
	ctx := context.Background()

	invitee := models.NewUser("invitee@example.com", "Invitee", "hash")
	if err := env.store.CreateUser(ctx, invitee); err != nil {
		t.Fatalf("failed to create invitee: %v", err)
	}

	_, err := env.services.Trips.InviteMember(ctx, env.members[0].ID, env.trip.ID, invitee.Email)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestSetMemberRole(t *testing.T) {
	env := newTestEnv(t, 2)
	ctx := context.Background()
	u1, u2 := env.members[0], env.members[1]

	// Only the owner may change roles.
	err := env.services.Trips.SetMemberRole(ctx, u1.ID, env.trip.ID, u2.ID, models.RoleAdmin)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	if err := env.services.Trips.SetMemberRole(ctx, env.owner.ID, env.trip.ID, u1.ID, models.RoleAdmin); err != nil {
		t.Fatalf("failed to promote: %v", err)
	}
	member, err := env.store.GetMember(ctx, env.trip.ID, u1.ID)
	if err != nil {
		t.Fatalf("failed to get member: %v", err)
	}
	if member.Role != models.RoleAdmin {
		t.Errorf("expected ADMIN, got %s", member.Role)
	}

	// A promoted admin can close the spend window.
	if err := env.services.Settlements.CloseSpending(ctx, u1.ID, env.trip.ID); err != nil {
		t.Errorf("admin close should succeed, got %v", err)
	}

	// The owner role cannot be granted or revoked here.
	if err := env.services.Trips.SetMemberRole(ctx, env.owner.ID, env.trip.ID, u2.ID, models.RoleOwner); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput granting OWNER, got %v", err)
	}
	if err := env.services.Trips.SetMemberRole(ctx, env.owner.ID, env.trip.ID, env.owner.ID, models.RoleMember); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden demoting owner, got %v", err)
	}
}

func TestUpdateTripBaseCurrencyLocked(t *testing.T) {
	env := newTestEnv(t, 1)
	ctx := context.Background()

	// Before any expense, the base currency may change.
	updated, err := env.services.Trips.UpdateTrip(ctx, env.owner.ID, &models.Trip{ID: env.trip.ID, BaseCurrency: "USD"})
	if err != nil {
		t.Fatalf("failed to update trip: %v", err)
	}
	if updated.BaseCurrency != "USD" {
		t.Errorf("expected USD, got %s", updated.BaseCurrency)
	}

	env.addExpense(t, env.owner.ID, 10, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), map[string]float64{
		env.owner.ID: 10,
	})

	_, err = env.services.Trips.UpdateTrip(ctx, env.owner.ID, &models.Trip{ID: env.trip.ID, BaseCurrency: "GBP"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput once expenses exist, got %v", err)
	}
}

func TestDeleteTripOwnerOnly(t *testing.T) {
	env := newTestEnv(t, 1)
	ctx := context.Background()

	if err := env.services.Trips.DeleteTrip(ctx, env.members[0].ID, env.trip.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := env.services.Trips.DeleteTrip(ctx, env.owner.ID, env.trip.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := env.services.Trips.GetTrip(ctx, env.owner.ID, env.trip.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
