package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkrv/tripledger/internal/models"
	"github.com/mkrv/tripledger/internal/storage"
)

// ChoiceService manages group selections. Organizers pose choices; every
// member gets one vote per choice and may change it.
type ChoiceService struct {
	store storage.Store
}

// NewChoiceService creates a new ChoiceService.
func NewChoiceService(store storage.Store) *ChoiceService {
	return &ChoiceService{store: store}
}

// CreateChoice adds a choice with its options. Organizer only.
func (s *ChoiceService) CreateChoice(ctx context.Context, userID string, choice *models.Choice) (*models.Choice, error) {
	if _, err := s.store.GetTrip(ctx, choice.TripID); err != nil {
		return nil, err
	}
	member, err := s.store.GetMember(ctx, choice.TripID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: not a member of this trip", ErrForbidden)
	}
	if !member.Role.CanManageSpend() {
		return nil, fmt.Errorf("%w: requires OWNER or ADMIN role", ErrForbidden)
	}
	if strings.TrimSpace(choice.Title) == "" {
		return nil, fmt.Errorf("%w: choice title required", ErrInvalidInput)
	}
	if len(choice.Options) < 2 {
		return nil, fmt.Errorf("%w: a choice needs at least two options", ErrInvalidInput)
	}
	if err := s.store.CreateChoice(ctx, choice); err != nil {
		return nil, fmt.Errorf("failed to create choice: %w", err)
	}
	return choice, nil
}

// ListChoices returns a trip's choices with per-option selections.
func (s *ChoiceService) ListChoices(ctx context.Context, userID, tripID string) ([]*models.Choice, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(ctx, tripID, userID); err != nil {
		return nil, fmt.Errorf("%w: not a member of this trip", ErrForbidden)
	}
	return s.store.ListChoicesByTrip(ctx, tripID)
}

// Select records the user's pick for a choice, replacing any earlier pick.
func (s *ChoiceService) Select(ctx context.Context, userID, choiceID, optionID string) error {
	choice, err := s.store.GetChoice(ctx, choiceID)
	if err != nil {
		return err
	}
	if _, err := s.store.GetMember(ctx, choice.TripID, userID); err != nil {
		return fmt.Errorf("%w: not a member of this trip", ErrForbidden)
	}
	return s.store.RecordSelection(ctx, choiceID, optionID, userID)
}
