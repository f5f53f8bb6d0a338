package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mkrv/tripledger/internal/models"
	"github.com/mkrv/tripledger/internal/money"
	"github.com/mkrv/tripledger/internal/storage"
)

// TripService manages trips, memberships, invitations and milestones.
type TripService struct {
	store       storage.Store
	settlements *SettlementService
}

// NewTripService creates a new TripService. The settlement service is
// needed because completing a spend-close milestone triggers the same
// close path as the explicit toggle.
func NewTripService(store storage.Store, settlements *SettlementService) *TripService {
	return &TripService{store: store, settlements: settlements}
}

// CreateTrip creates a trip owned by userID.
func (s *TripService) CreateTrip(ctx context.Context, userID string, trip *models.Trip) (*models.Trip, error) {
	if strings.TrimSpace(trip.Name) == "" {
		return nil, fmt.Errorf("%w: trip name required", ErrInvalidInput)
	}
	currency, err := money.ValidateCurrency(trip.BaseCurrency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	trip.BaseCurrency = currency
	trip.CreatedBy = userID
	trip.SpendStatus = models.SpendOpen

	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	slog.Info("Trip created", "trip_id", trip.ID, "user_id", userID, "base_currency", trip.BaseCurrency)
	return trip, nil
}

// GetTrip returns a trip the user is a member of.
func (s *TripService) GetTrip(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return trip, nil
}

// ListTrips returns all trips the user belongs to.
func (s *TripService) ListTrips(ctx context.Context, userID string) ([]*models.Trip, error) {
	return s.store.ListTripsByUser(ctx, userID)
}

// UpdateTrip updates trip details. Organizer only. The base currency may
// not change once expenses exist in it; this keeps normalized amounts
// meaningful.
func (s *TripService) UpdateTrip(ctx context.Context, userID string, trip *models.Trip) (*models.Trip, error) {
	existing, err := s.store.GetTrip(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireOrganizer(ctx, trip.ID, userID); err != nil {
		return nil, err
	}

	if trip.BaseCurrency != "" && trip.BaseCurrency != existing.BaseCurrency {
		expenses, err := s.store.ListExpensesByTrip(ctx, trip.ID)
		if err != nil {
			return nil, err
		}
		if len(expenses) > 0 {
			return nil, fmt.Errorf("%w: base currency cannot change once expenses exist", ErrInvalidInput)
		}
		currency, err := money.ValidateCurrency(trip.BaseCurrency)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		existing.BaseCurrency = currency
	}
	if trip.Name != "" {
		existing.Name = trip.Name
	}
	existing.Destination = trip.Destination
	existing.StartDate = trip.StartDate
	existing.EndDate = trip.EndDate

	if err := s.store.UpdateTrip(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}
	return existing, nil
}

// DeleteTrip soft-deletes a trip. Owner only.
func (s *TripService) DeleteTrip(ctx context.Context, userID, tripID string) error {
	member, err := s.requireMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if member.Role != models.RoleOwner {
		return fmt.Errorf("%w: only the owner can delete a trip", ErrForbidden)
	}
	if err := s.store.DeleteTrip(ctx, tripID); err != nil {
		return err
	}
	slog.Info("Trip deleted", "trip_id", tripID, "user_id", userID)
	return nil
}

// InviteMember adds a user to the trip with a PENDING RSVP. Delivering
// the invitation (email, push) is an external collaborator's concern; the
// membership row is the system of record.
func (s *TripService) InviteMember(ctx context.Context, inviterID, tripID, email string) (*models.TripMember, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	if _, err := s.requireOrganizer(ctx, tripID, inviterID); err != nil {
		return nil, err
	}

	invitee, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invitee: %w", err)
	}
	if invitee == nil {
		return nil, fmt.Errorf("no account for %s: %w", email, ErrNotFound)
	}
	if _, err := s.store.GetMember(ctx, tripID, invitee.ID); err == nil {
		return nil, fmt.Errorf("%w: already a member", ErrInvalidInput)
	}

	member := &models.TripMember{
		TripID:    tripID,
		UserID:    invitee.ID,
		Role:      models.RoleMember,
		RSVP:      models.RSVPPending,
		InvitedBy: inviterID,
	}
	if err := s.store.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	slog.Info("Member invited", "trip_id", tripID, "user_id", invitee.ID, "invited_by", inviterID)
	return member, nil
}

// RSVP records the user's own RSVP response.
func (s *TripService) RSVP(ctx context.Context, userID, tripID string, rsvp models.RSVPStatus) error {
	if !models.ValidRSVP(rsvp) {
		return fmt.Errorf("%w: unknown RSVP state %q", ErrInvalidInput, rsvp)
	}
	if _, err := s.requireMember(ctx, tripID, userID); err != nil {
		return err
	}
	return s.store.SetMemberRSVP(ctx, tripID, userID, rsvp)
}

// SetMemberRole changes a member's role. Owner only; the owner role
// itself cannot be granted or revoked here.
func (s *TripService) SetMemberRole(ctx context.Context, actorID, tripID, userID string, role models.MemberRole) error {
	actor, err := s.requireMember(ctx, tripID, actorID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleOwner {
		return fmt.Errorf("%w: only the owner can change roles", ErrForbidden)
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		return fmt.Errorf("%w: role must be ADMIN or MEMBER", ErrInvalidInput)
	}
	target, err := s.store.GetMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner {
		return fmt.Errorf("%w: cannot change the owner's role", ErrForbidden)
	}
	return s.store.SetMemberRole(ctx, tripID, userID, role)
}

// ListMembers returns a trip's membership, visible to any member.
func (s *TripService) ListMembers(ctx context.Context, userID, tripID string) ([]*models.TripMember, error) {
	if _, err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, tripID)
}

// CreateMilestone adds a milestone to the trip. Organizer only.
func (s *TripService) CreateMilestone(ctx context.Context, userID string, milestone *models.Milestone) (*models.Milestone, error) {
	if _, err := s.store.GetTrip(ctx, milestone.TripID); err != nil {
		return nil, err
	}
	if _, err := s.requireOrganizer(ctx, milestone.TripID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(milestone.Title) == "" {
		return nil, fmt.Errorf("%w: milestone title required", ErrInvalidInput)
	}
	if err := s.store.CreateMilestone(ctx, milestone); err != nil {
		return nil, err
	}
	return milestone, nil
}

// ListMilestones returns a trip's milestones, visible to any member.
func (s *TripService) ListMilestones(ctx context.Context, userID, tripID string) ([]*models.Milestone, error) {
	if _, err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.store.ListMilestones(ctx, tripID)
}

// CompleteMilestone marks a milestone done. Completing a SPEND_CLOSE
// milestone closes the spend window through the same path as the explicit
// toggle, so the two triggers can never diverge.
func (s *TripService) CompleteMilestone(ctx context.Context, userID, milestoneID string) (*models.Milestone, error) {
	milestone, err := s.store.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireOrganizer(ctx, milestone.TripID, userID); err != nil {
		return nil, err
	}
	if milestone.CompletedAt != 0 {
		return milestone, nil // already done
	}

	if milestone.Kind == models.MilestoneSpendClose {
		// The close and the completion write below are two store calls,
		// not one transaction. A crash in between leaves the trip closed
		// with the milestone still pending; retrying the completion
		// converges because an already-closed trip is tolerated here.
		if err := s.settlements.CloseSpending(ctx, userID, milestone.TripID); err != nil {
			// Any failure other than an already-closed trip aborts the
			// completion so the milestone and the spend status cannot
			// disagree.
			if !errors.Is(err, ErrSpendClosed) {
				return nil, err
			}
		}
	}

	milestone.CompletedAt = time.Now().Unix()
	if err := s.store.CompleteMilestone(ctx, milestoneID, milestone.CompletedAt); err != nil {
		return nil, err
	}

	slog.Info("Milestone completed", "milestone_id", milestoneID, "trip_id", milestone.TripID, "kind", milestone.Kind)
	return milestone, nil
}

func (s *TripService) requireMember(ctx context.Context, tripID, userID string) (*models.TripMember, error) {
	member, err := s.store.GetMember(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: not a member of this trip", ErrForbidden)
		}
		return nil, err
	}
	return member, nil
}

func (s *TripService) requireOrganizer(ctx context.Context, tripID, userID string) (*models.TripMember, error) {
	member, err := s.requireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanManageSpend() {
		return nil, fmt.Errorf("%w: requires OWNER or ADMIN role", ErrForbidden)
	}
	return member, nil
}
