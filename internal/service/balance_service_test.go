package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestGetBalanceSummary(t *testing.T) {
	env := newTestEnv(t, 2)
	ctx := context.Background()
	u1, u2 := env.members[0], env.members[1]

	// Owner fronts 90 split three ways, u1 fronts 30 split three ways.
	// Net: owner +50, u1 -10, u2 -40.
	env.addExpense(t, env.owner.ID, 90, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), map[string]float64{
		env.owner.ID: 30, u1.ID: 30, u2.ID: 30,
	})
	env.addExpense(t, u1.ID, 30, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), map[string]float64{
		env.owner.ID: 10, u1.ID: 10, u2.ID: 10,
	})

	summary, err := env.services.Balances.GetBalanceSummary(ctx, u2.ID, env.trip.ID)
	if err != nil {
		t.Fatalf("failed to get balance summary: %v", err)
	}

	if summary.TripID != env.trip.ID {
		t.Errorf("expected trip %s, got %s", env.trip.ID, summary.TripID)
	}
	if summary.BaseCurrency != "EUR" {
		t.Errorf("expected base currency EUR, got %s", summary.BaseCurrency)
	}
	if summary.TotalSpent != 120 {
		t.Errorf("expected total spent 120, got %v", summary.TotalSpent)
	}
	if summary.CalculatedAt.IsZero() {
		t.Error("expected CalculatedAt to be set")
	}
	if len(summary.Balances) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(summary.Balances))
	}

	var zeroSum float64
	byUser := make(map[string]float64)
	for _, b := range summary.Balances {
		zeroSum += b.NetBalance
		byUser[b.UserID] = b.NetBalance
		if b.UserName == "" || b.UserEmail == "" {
			t.Errorf("expected display fields for %s", b.UserID)
		}
	}
	if math.Abs(zeroSum) > 1e-9 {
		t.Errorf("net balances should sum to zero, got %v", zeroSum)
	}
	if byUser[env.owner.ID] != 50 || byUser[u1.ID] != -10 || byUser[u2.ID] != -40 {
		t.Errorf("unexpected net balances: %v", byUser)
	}

	if len(summary.Settlements) != 2 {
		t.Fatalf("expected 2 suggested transfers, got %d", len(summary.Settlements))
	}
	for _, s := range summary.Settlements {
		if s.ToUserID != env.owner.ID {
			t.Errorf("all transfers should flow to the sole creditor, got to=%s", s.ToUserID)
		}
		if s.FromUserName == "" || s.ToUserName == "" {
			t.Error("expected transfer display names to be filled")
		}
		if s.OldestDebtDate == nil {
			t.Error("expected oldest debt date to be annotated")
		}
	}
}

func TestGetBalanceSummaryEmptyTrip(t *testing.T) {
	env := newTestEnv(t, 0)

	summary, err := env.services.Balances.GetBalanceSummary(context.Background(), env.owner.ID, env.trip.ID)
	if err != nil {
		t.Fatalf("failed to get balance summary: %v", err)
	}
	if summary.TotalSpent != 0 {
		t.Errorf("expected zero total spent, got %v", summary.TotalSpent)
	}
	if len(summary.Balances) != 0 || len(summary.Settlements) != 0 {
		t.Errorf("expected empty summary, got %d balances, %d settlements",
			len(summary.Balances), len(summary.Settlements))
	}
}

func TestGetBalanceSummaryRequiresMembership(t *testing.T) {
	env := newTestEnv(t, 0)

	stranger := newTestEnv(t, 0) // separate stack just for a foreign user ID
	_, err := env.services.Balances.GetBalanceSummary(context.Background(), stranger.owner.ID, env.trip.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
