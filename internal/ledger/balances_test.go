package ledger

import (
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2026, time.March, n, 0, 0, 0, 0, time.UTC)
}

func TestAggregateBalances(t *testing.T) {
	tests := []struct {
		name         string
		expenses     []ExpenseForBalance
		wantSpent    float64
		validateFunc func(t *testing.T, balances []MemberBalance)
	}{
		{
			name: "single expense split between payer and one other",
			expenses: []ExpenseForBalance{
				{
					ID: "e1", PayerID: "u1", NormalizedAmount: 100, Date: day(1),
					Shares: []Share{{UserID: "u1", NormalizedAmount: 50}, {UserID: "u2", NormalizedAmount: 50}},
				},
			},
			wantSpent: 100,
			validateFunc: func(t *testing.T, balances []MemberBalance) {
				u1 := findBalance(t, balances, "u1")
				if u1.TotalPaid != 100 || u1.TotalOwed != 50 || u1.NetBalance != 50 {
					t.Errorf("u1 = %+v, want paid=100 owed=50 net=50", u1)
				}
				u2 := findBalance(t, balances, "u2")
				if u2.TotalPaid != 0 || u2.TotalOwed != 50 || u2.NetBalance != -50 {
					t.Errorf("u2 = %+v, want paid=0 owed=50 net=-50", u2)
				}
			},
		},
		{
			name: "two expenses three users split equally",
			expenses: []ExpenseForBalance{
				{
					ID: "e1", PayerID: "u1", NormalizedAmount: 90, Date: day(1),
					Shares: []Share{
						{UserID: "u1", NormalizedAmount: 30},
						{UserID: "u2", NormalizedAmount: 30},
						{UserID: "u3", NormalizedAmount: 30},
					},
				},
				{
					ID: "e2", PayerID: "u2", NormalizedAmount: 30, Date: day(2),
					Shares: []Share{
						{UserID: "u1", NormalizedAmount: 10},
						{UserID: "u2", NormalizedAmount: 10},
						{UserID: "u3", NormalizedAmount: 10},
					},
				},
			},
			wantSpent: 120,
			validateFunc: func(t *testing.T, balances []MemberBalance) {
				// u1: paid 90, owes 40 -> +50
				// u2: paid 30, owes 40 -> -10
				// u3: paid 0, owes 40 -> -40
				wantNet := map[string]float64{"u1": 50, "u2": -10, "u3": -40}
				for userID, want := range wantNet {
					got := findBalance(t, balances, userID)
					if math.Abs(got.NetBalance-want) > 1e-6 {
						t.Errorf("%s net = %v, want %v", userID, got.NetBalance, want)
					}
				}
			},
		},
		{
			name: "under-assigned expense leaves balances diverging from zero",
			expenses: []ExpenseForBalance{
				{
					ID: "e1", PayerID: "u1", NormalizedAmount: 100, Date: day(1),
					Shares: []Share{{UserID: "u2", NormalizedAmount: 40}, {UserID: "u3", NormalizedAmount: 20}},
				},
			},
			wantSpent: 100,
			validateFunc: func(t *testing.T, balances []MemberBalance) {
				var sum float64
				for _, b := range balances {
					sum += b.NetBalance
				}
				// 100 paid, only 60 assigned: the 40 remainder never
				// appears as anyone's owed amount and must not be
				// silently corrected.
				if math.Abs(sum-40) > 1e-6 {
					t.Errorf("sum of net balances = %v, want 40 (unassigned remainder)", sum)
				}
			},
		},
		{
			name:      "no expenses",
			expenses:  nil,
			wantSpent: 0,
			validateFunc: func(t *testing.T, balances []MemberBalance) {
				if len(balances) != 0 {
					t.Errorf("expected no balances, got %d", len(balances))
				}
			},
		},
		{
			name: "assignment for user outside the trip is taken at face value",
			expenses: []ExpenseForBalance{
				{
					ID: "e1", PayerID: "u1", NormalizedAmount: 10, Date: day(1),
					Shares: []Share{{UserID: "stranger", NormalizedAmount: 10}},
				},
			},
			wantSpent: 10,
			validateFunc: func(t *testing.T, balances []MemberBalance) {
				got := findBalance(t, balances, "stranger")
				if got.TotalOwed != 10 {
					t.Errorf("stranger owed = %v, want 10", got.TotalOwed)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, totalSpent := AggregateBalances(tt.expenses)
			if math.Abs(totalSpent-tt.wantSpent) > 1e-6 {
				t.Errorf("totalSpent = %v, want %v", totalSpent, tt.wantSpent)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, balances)
			}
		})
	}
}

func TestAggregateBalancesZeroSum(t *testing.T) {
	// When assignments exactly cover each expense, net balances sum to
	// zero within floating-point tolerance.
	expenses := []ExpenseForBalance{
		{ID: "e1", PayerID: "a", NormalizedAmount: 33.33, Date: day(1), Shares: []Share{
			{UserID: "a", NormalizedAmount: 11.11}, {UserID: "b", NormalizedAmount: 11.11}, {UserID: "c", NormalizedAmount: 11.11},
		}},
		{ID: "e2", PayerID: "b", NormalizedAmount: 47.5, Date: day(2), Shares: []Share{
			{UserID: "a", NormalizedAmount: 23.75}, {UserID: "c", NormalizedAmount: 23.75},
		}},
		{ID: "e3", PayerID: "c", NormalizedAmount: 0.03, Date: day(3), Shares: []Share{
			{UserID: "a", NormalizedAmount: 0.01}, {UserID: "b", NormalizedAmount: 0.01}, {UserID: "c", NormalizedAmount: 0.01},
		}},
	}

	balances, _ := AggregateBalances(expenses)
	var sum float64
	for _, b := range balances {
		sum += b.NetBalance
	}
	if math.Abs(sum) > 1e-6 {
		t.Errorf("sum of net balances = %v, want ~0", sum)
	}
}

func TestAggregateBalancesDeterministicOrder(t *testing.T) {
	expenses := []ExpenseForBalance{
		{ID: "e1", PayerID: "zed", NormalizedAmount: 10, Shares: []Share{{UserID: "amy", NormalizedAmount: 10}}},
		{ID: "e2", PayerID: "amy", NormalizedAmount: 5, Shares: []Share{{UserID: "mia", NormalizedAmount: 5}}},
	}

	first, _ := AggregateBalances(expenses)
	for i := 0; i < 10; i++ {
		again, _ := AggregateBalances(expenses)
		for j := range first {
			if again[j].UserID != first[j].UserID {
				t.Fatalf("run %d: order changed at %d: %s vs %s", i, j, again[j].UserID, first[j].UserID)
			}
		}
	}
}

func findBalance(t *testing.T, balances []MemberBalance, userID string) MemberBalance {
	t.Helper()
	for _, b := range balances {
		if b.UserID == userID {
			return b
		}
	}
	t.Fatalf("no balance for user %s", userID)
	return MemberBalance{}
}
