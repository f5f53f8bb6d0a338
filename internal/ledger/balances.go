// Package ledger implements the settlement engine: it turns a trip's
// expenses and cost assignments into per-member net balances and a minimal
// set of transfers that zero those balances out.
//
// Both halves are pure, synchronous computation over an in-memory snapshot.
// They perform no validation: assignments referencing unknown users are
// accepted at face value, and under-assigned expenses simply leave spend
// that never appears in anyone's TotalOwed.
package ledger

import (
	"sort"
	"time"
)

// Share is one user's normalized (base-currency) portion of an expense.
type Share struct {
	UserID           string
	NormalizedAmount float64
}

// ExpenseForBalance carries the minimal expense information the engine
// needs: the normalized total, who fronted it, when, and how it was split.
type ExpenseForBalance struct {
	ID               string
	PayerID          string
	NormalizedAmount float64
	Date             time.Time
	Shares           []Share
}

// MemberBalance is one user's aggregated position in the trip's base
// currency. Positive NetBalance means the user is owed money.
type MemberBalance struct {
	UserID     string
	TotalPaid  float64
	TotalOwed  float64
	NetBalance float64
}

// AggregateBalances computes one balance per user who appears as a payer
// or an assignee, plus the trip's total normalized spend.
//
// Expenses are included regardless of their lifecycle status, and members
// are included regardless of RSVP state: whoever has recorded financial
// activity shows up. Balances sum to ~0 only when assignments fully cover
// each expense; an under-assigned expense leaves the payer's TotalPaid
// uncovered, which is expected, not corrected.
func AggregateBalances(expenses []ExpenseForBalance) ([]MemberBalance, float64) {
	balances := make(map[string]*MemberBalance)
	ensure := func(userID string) *MemberBalance {
		if b, ok := balances[userID]; ok {
			return b
		}
		b := &MemberBalance{UserID: userID}
		balances[userID] = b
		return b
	}

	var totalSpent float64
	for _, exp := range expenses {
		totalSpent += exp.NormalizedAmount

		// An expense without a payer cannot credit anyone but its
		// shares still count as owed.
		if exp.PayerID != "" {
			ensure(exp.PayerID).TotalPaid += exp.NormalizedAmount
		}
		for _, share := range exp.Shares {
			ensure(share.UserID).TotalOwed += share.NormalizedAmount
		}
	}

	out := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.TotalPaid - b.TotalOwed
		out = append(out, *b)
	}

	// Map iteration order is random; sort for stable output so repeated
	// runs over the same expenses produce identical results.
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, totalSpent
}
