package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/mkrv/tripledger/internal/models"
	"github.com/mkrv/tripledger/internal/money"
	"github.com/mkrv/tripledger/internal/storage"
)

// ExpenseService manages expenses and their cost assignments. All writes
// take the trip lock shared with the settlement service so an expense edit
// can never interleave with a spend-window transition on the same trip.
type ExpenseService struct {
	store storage.Store
	locks *tripLocks
}

// NewExpenseService creates a new ExpenseService sharing locks with the
// settlement service.
func NewExpenseService(store storage.Store, locks *tripLocks) *ExpenseService {
	return &ExpenseService{store: store, locks: locks}
}

// AddExpense validates and persists a new expense on an open trip.
func (s *ExpenseService) AddExpense(ctx context.Context, userID string, expense *models.Expense) (*models.Expense, error) {
	unlock := s.locks.Lock(expense.TripID)
	defer unlock()

	trip, err := s.requireOpenTrip(ctx, expense.TripID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.validateExpense(expense, trip); err != nil {
		return nil, err
	}

	expense.Status = models.ExpenseOpen
	expense.Normalize()

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"trip_id", expense.TripID,
		"amount", expense.Amount,
		"currency", expense.Currency,
		"normalized", expense.NormalizedAmount,
		"assignments", len(expense.Assignments),
	)
	return expense, nil
}

// UpdateExpense replaces an expense's fields and assignments, recomputing
// the normalized amounts so the derived values never drift.
func (s *ExpenseService) UpdateExpense(ctx context.Context, userID string, expense *models.Expense) (*models.Expense, error) {
	existing, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	expense.TripID = existing.TripID

	unlock := s.locks.Lock(expense.TripID)
	defer unlock()

	// Re-read under the lock; a finalize may have landed between the
	// first fetch and acquiring the lock.
	existing, err = s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, err
	}

	trip, err := s.requireOpenTrip(ctx, expense.TripID, userID)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.ExpenseClosed {
		return nil, fmt.Errorf("%w: expense is finalized", ErrInvalidInput)
	}
	if err := s.validateExpense(expense, trip); err != nil {
		return nil, err
	}

	expense.Status = existing.Status
	expense.CreatedAt = existing.CreatedAt
	expense.Normalize()

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return expense, nil
}

// DeleteExpense soft-deletes an expense on an open trip. Allowed for the
// payer or an organizer.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(expense.TripID)
	defer unlock()

	if _, err := s.requireOpenTrip(ctx, expense.TripID, userID); err != nil {
		return err
	}
	member, err := s.store.GetMember(ctx, expense.TripID, userID)
	if err != nil {
		return fmt.Errorf("%w: not a member of this trip", ErrForbidden)
	}
	if expense.PaidByID != userID && !member.Role.CanManageSpend() {
		return fmt.Errorf("%w: only the payer or an organizer can delete an expense", ErrForbidden)
	}

	return s.store.DeleteExpense(ctx, expenseID)
}

// ListExpenses returns all of a trip's live expenses, any status.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID, tripID string) ([]*models.Expense, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(ctx, tripID, userID); err != nil {
		return nil, fmt.Errorf("%w: not a member of this trip", ErrForbidden)
	}
	return s.store.ListExpensesByTrip(ctx, tripID)
}

// FinalizeExpense closes an expense. The share-sum invariant is soft while
// the expense is OPEN and only checked here: the assignment total must
// match the amount within tolerance unless force is set.
func (s *ExpenseService) FinalizeExpense(ctx context.Context, userID, expenseID string, force bool) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(expense.TripID)
	defer unlock()

	// Re-read under the lock so the status check sees any concurrent
	// finalize or edit that won the lock first.
	expense, err = s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requireOpenTrip(ctx, expense.TripID, userID); err != nil {
		return nil, err
	}
	if expense.Status == models.ExpenseClosed {
		return expense, nil // already finalized
	}

	if diff := math.Abs(expense.AssignedTotal() - expense.Amount); diff > 0.01 && !force {
		return nil, fmt.Errorf("%w: assigned %.2f of %.2f %s",
			ErrShareMismatch, expense.AssignedTotal(), expense.Amount, expense.Currency)
	}

	if err := s.store.SetExpenseStatus(ctx, expenseID, models.ExpenseClosed); err != nil {
		return nil, err
	}
	expense.Status = models.ExpenseClosed

	slog.Info("Expense finalized", "expense_id", expenseID, "trip_id", expense.TripID, "force", force)
	return expense, nil
}

// validateExpense checks domain constraints on a new or updated expense.
// It does not require assignments to cover the amount; that is only
// checked at finalize-time.
func (s *ExpenseService) validateExpense(expense *models.Expense, trip *models.Trip) error {
	if expense.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if expense.FxRate <= 0 {
		return fmt.Errorf("%w: fx rate must be positive", ErrInvalidInput)
	}
	currency, err := money.ValidateCurrency(expense.Currency)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	expense.Currency = currency
	if currency == trip.BaseCurrency && expense.FxRate != 1 {
		return fmt.Errorf("%w: fx rate must be 1 for base-currency expenses", ErrInvalidInput)
	}
	if expense.PaidByID == "" {
		return fmt.Errorf("%w: payer required", ErrInvalidInput)
	}
	for _, a := range expense.Assignments {
		if a.UserID == "" {
			return fmt.Errorf("%w: assignment user required", ErrInvalidInput)
		}
		if a.ShareAmount < 0 {
			return fmt.Errorf("%w: share amounts cannot be negative", ErrInvalidInput)
		}
	}
	return nil
}

// requireOpenTrip loads the trip, checks the caller's membership and that
// the spend window is open.
func (s *ExpenseService) requireOpenTrip(ctx context.Context, tripID, userID string) (*models.Trip, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(ctx, tripID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: not a member of this trip", ErrForbidden)
		}
		return nil, err
	}
	if trip.SpendStatus == models.SpendClosed {
		return nil, ErrSpendClosed
	}
	return trip, nil
}
