package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mkrv/tripledger/internal/ledger"
	"github.com/mkrv/tripledger/internal/models"
	"github.com/mkrv/tripledger/internal/money"
	"github.com/mkrv/tripledger/internal/storage"
)

// BalanceService computes the live balance view for a trip. Nothing here
// is persisted; every request aggregates the current expense snapshot, so
// the summary is always consistent with the expenses it was derived from.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// GetBalanceSummary returns per-member balances and the suggested transfer
// plan for a trip, amounts rounded to the base currency's minor unit at
// this presentation boundary only.
func (s *BalanceService) GetBalanceSummary(ctx context.Context, userID, tripID string) (*models.BalanceSummary, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(ctx, tripID, userID); err != nil {
		return nil, fmt.Errorf("%w: not a member of this trip", ErrForbidden)
	}

	expenses, err := s.store.ListExpensesByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	snapshot := toLedgerExpenses(expenses)
	balances, totalSpent := ledger.AggregateBalances(snapshot)
	transfers := ledger.PlanTransfers(balances)
	ledger.AnnotateDebtAges(transfers, snapshot)

	users, err := s.lookupUsers(ctx, balances)
	if err != nil {
		return nil, err
	}

	summary := &models.BalanceSummary{
		TripID:       tripID,
		BaseCurrency: trip.BaseCurrency,
		TotalSpent:   money.Round(totalSpent, trip.BaseCurrency),
		Balances:     make([]models.UserBalance, 0, len(balances)),
		Settlements:  make([]models.PlannedSettlement, 0, len(transfers)),
		CalculatedAt: time.Now().UTC(),
	}

	for _, b := range balances {
		ub := models.UserBalance{
			UserID:     b.UserID,
			TotalPaid:  money.Round(b.TotalPaid, trip.BaseCurrency),
			TotalOwed:  money.Round(b.TotalOwed, trip.BaseCurrency),
			NetBalance: money.Round(b.NetBalance, trip.BaseCurrency),
		}
		if u := users[b.UserID]; u != nil {
			ub.UserName = u.DisplayName
			ub.UserEmail = u.Email
			ub.UserPhotoURL = u.PhotoURL
		}
		summary.Balances = append(summary.Balances, ub)
	}

	for _, t := range transfers {
		ps := models.PlannedSettlement{
			FromUserID: t.FromUserID,
			ToUserID:   t.ToUserID,
			Amount:     money.Round(t.Amount, trip.BaseCurrency),
		}
		if u := users[t.FromUserID]; u != nil {
			ps.FromUserName = u.DisplayName
		}
		if u := users[t.ToUserID]; u != nil {
			ps.ToUserName = u.DisplayName
		}
		if !t.OldestDebtDate.IsZero() {
			date := t.OldestDebtDate
			ps.OldestDebtDate = &date
		}
		summary.Settlements = append(summary.Settlements, ps)
	}

	return summary, nil
}

// lookupUsers batch-loads display fields for everyone with a balance.
// Users who have since been deleted simply come back without names; the
// balance math does not depend on the lookup.
func (s *BalanceService) lookupUsers(ctx context.Context, balances []ledger.MemberBalance) (map[string]*models.User, error) {
	ids := make([]string, 0, len(balances))
	for _, b := range balances {
		ids = append(ids, b.UserID)
	}
	if len(ids) == 0 {
		return map[string]*models.User{}, nil
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}
