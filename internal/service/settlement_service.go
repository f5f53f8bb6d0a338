package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mkrv/tripledger/internal/ledger"
	"github.com/mkrv/tripledger/internal/models"
	"github.com/mkrv/tripledger/internal/money"
	"github.com/mkrv/tripledger/internal/storage"
)

var (
	spendCloses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_spend_closes_total",
		Help: "Number of spend windows closed.",
	})
	spendReopens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_spend_reopens_total",
		Help: "Number of spend windows reopened.",
	})
	settlementsPlanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_settlements_planned_total",
		Help: "Number of settlement records materialized at close-time.",
	})
)

// SettlementService drives the spend-window lifecycle. Closing a trip's
// spend window computes balances from the live expense snapshot, plans
// transfers, and materializes them as PENDING settlement records in the
// same transaction that flips the trip's status; reopening wipes the
// records and flips back. Both directions recompute from scratch, so a
// close/reopen/close cycle with unchanged expenses lands in an identical
// state.
type SettlementService struct {
	store storage.Store
	locks *tripLocks
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store, locks *tripLocks) *SettlementService {
	return &SettlementService{store: store, locks: locks}
}

// ToggleSpendStatus closes an open spend window or reopens a closed one.
// Organizer only.
func (s *SettlementService) ToggleSpendStatus(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.SpendStatus == models.SpendClosed {
		err = s.ReopenSpending(ctx, userID, tripID)
	} else {
		err = s.CloseSpending(ctx, userID, tripID)
	}
	if err != nil {
		return nil, err
	}
	return s.store.GetTrip(ctx, tripID)
}

// CloseSpending transitions the trip's spend window from OPEN to CLOSED,
// materializing the settlement plan. Returns ErrSpendClosed if the window
// is already closed.
func (s *SettlementService) CloseSpending(ctx context.Context, userID, tripID string) error {
	unlock := s.locks.Lock(tripID)
	defer unlock()

	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if err := s.requireOrganizer(ctx, tripID, userID); err != nil {
		return err
	}
	if trip.SpendStatus == models.SpendClosed {
		return ErrSpendClosed
	}

	expenses, err := s.store.ListExpensesByTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}

	snapshot := toLedgerExpenses(expenses)
	balances, _ := ledger.AggregateBalances(snapshot)
	transfers := ledger.PlanTransfers(balances)
	ledger.AnnotateDebtAges(transfers, snapshot)

	settlements := make([]*models.Settlement, 0, len(transfers))
	for _, t := range transfers {
		rec := &models.Settlement{
			TripID:     tripID,
			FromUserID: t.FromUserID,
			ToUserID:   t.ToUserID,
			Amount:     money.Round(t.Amount, trip.BaseCurrency),
			Status:     models.SettlementPending,
		}
		if !t.OldestDebtDate.IsZero() {
			rec.Notes = fmt.Sprintf("oldest debt from %s", t.OldestDebtDate.Format("2006-01-02"))
		}
		settlements = append(settlements, rec)
	}

	if err := s.store.CloseSpendWindow(ctx, tripID, settlements); err != nil {
		return fmt.Errorf("failed to close spend window: %w", err)
	}

	spendCloses.Inc()
	settlementsPlanned.Add(float64(len(settlements)))
	slog.Info("Spend window closed",
		"trip_id", tripID,
		"user_id", userID,
		"settlements", len(settlements),
	)
	return nil
}

// ReopenSpending transitions the trip's spend window from CLOSED back to
// OPEN, deleting every settlement record. Reopening an already-open trip
// is a no-op.
func (s *SettlementService) ReopenSpending(ctx context.Context, userID, tripID string) error {
	unlock := s.locks.Lock(tripID)
	defer unlock()

	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if err := s.requireOrganizer(ctx, tripID, userID); err != nil {
		return err
	}
	if trip.SpendStatus == models.SpendOpen {
		return nil
	}

	if err := s.store.ReopenSpendWindow(ctx, tripID); err != nil {
		return fmt.Errorf("failed to reopen spend window: %w", err)
	}

	spendReopens.Inc()
	slog.Info("Spend window reopened", "trip_id", tripID, "user_id", userID)
	return nil
}

// ListSettlements returns the materialized settlement records for a trip,
// visible to any member. Empty while the spend window is open.
func (s *SettlementService) ListSettlements(ctx context.Context, userID, tripID string) ([]*models.Settlement, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(ctx, tripID, userID); err != nil {
		return nil, fmt.Errorf("%w: not a member of this trip", ErrForbidden)
	}
	return s.store.ListSettlementsByTrip(ctx, tripID)
}

func (s *SettlementService) requireOrganizer(ctx context.Context, tripID, userID string) error {
	member, err := s.store.GetMember(ctx, tripID, userID)
	if err != nil {
		return fmt.Errorf("%w: not a member of this trip", ErrForbidden)
	}
	if !member.Role.CanManageSpend() {
		return fmt.Errorf("%w: requires OWNER or ADMIN role", ErrForbidden)
	}
	return nil
}

// toLedgerExpenses projects stored expenses onto the engine's input type.
func toLedgerExpenses(expenses []*models.Expense) []ledger.ExpenseForBalance {
	out := make([]ledger.ExpenseForBalance, 0, len(expenses))
	for _, exp := range expenses {
		shares := make([]ledger.Share, 0, len(exp.Assignments))
		for _, a := range exp.Assignments {
			shares = append(shares, ledger.Share{
				UserID:           a.UserID,
				NormalizedAmount: a.NormalizedShareAmount,
			})
		}
		out = append(out, ledger.ExpenseForBalance{
			ID:               exp.ID,
			PayerID:          exp.PaidByID,
			NormalizedAmount: exp.NormalizedAmount,
			Date:             exp.Date,
			Shares:           shares,
		})
	}
	return out
}
