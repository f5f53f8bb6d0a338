package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkrv/tripledger/internal/models"
	"github.com/mkrv/tripledger/internal/storage"
)

// ChecklistService manages shared trip checklists. Any member can read and
// write them; there is no per-item ownership beyond the optional assignee.
type ChecklistService struct {
	store storage.Store
}

// NewChecklistService creates a new ChecklistService.
func NewChecklistService(store storage.Store) *ChecklistService {
	return &ChecklistService{store: store}
}

// CreateChecklist adds a checklist to a trip.
func (s *ChecklistService) CreateChecklist(ctx context.Context, userID string, checklist *models.Checklist) (*models.Checklist, error) {
	if err := s.requireMember(ctx, checklist.TripID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(checklist.Name) == "" {
		return nil, fmt.Errorf("%w: checklist name required", ErrInvalidInput)
	}
	if err := s.store.CreateChecklist(ctx, checklist); err != nil {
		return nil, fmt.Errorf("failed to create checklist: %w", err)
	}
	return checklist, nil
}

// ListChecklists returns a trip's checklists with their items.
func (s *ChecklistService) ListChecklists(ctx context.Context, userID, tripID string) ([]*models.Checklist, error) {
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.store.ListChecklistsByTrip(ctx, tripID)
}

// AddItem appends an item to a checklist.
func (s *ChecklistService) AddItem(ctx context.Context, userID string, item *models.ChecklistItem) (*models.ChecklistItem, error) {
	checklist, err := s.store.GetChecklist(ctx, item.ChecklistID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, checklist.TripID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Text) == "" {
		return nil, fmt.Errorf("%w: item text required", ErrInvalidInput)
	}
	if err := s.store.AddChecklistItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add checklist item: %w", err)
	}
	return item, nil
}

// SetItemDone toggles an item's done flag.
func (s *ChecklistService) SetItemDone(ctx context.Context, userID, checklistID, itemID string, done bool) error {
	checklist, err := s.store.GetChecklist(ctx, checklistID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, checklist.TripID, userID); err != nil {
		return err
	}
	return s.store.SetChecklistItemDone(ctx, checklist.ID, itemID, done)
}

// DeleteChecklist removes a checklist and its items.
func (s *ChecklistService) DeleteChecklist(ctx context.Context, userID, checklistID string) error {
	checklist, err := s.store.GetChecklist(ctx, checklistID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, checklist.TripID, userID); err != nil {
		return err
	}
	return s.store.DeleteChecklist(ctx, checklistID)
}

func (s *ChecklistService) requireMember(ctx context.Context, tripID, userID string) error {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return err
	}
	if _, err := s.store.GetMember(ctx, tripID, userID); err != nil {
		return fmt.Errorf("%w: not a member of this trip", ErrForbidden)
	}
	return nil
}
