package ledger

import (
	"math"
	"sort"
	"time"
)

// Tolerance is the epsilon below which a balance counts as settled. It
// absorbs floating-point noise from repeated additions; amounts are not
// rounded inside the matching loop.
const Tolerance = 0.01

// Transfer is one planned payment from a debtor to a creditor.
type Transfer struct {
	FromUserID string
	ToUserID   string
	Amount     float64

	// OldestDebtDate is the date of the oldest expense contributing to
	// this debt, zero when unknown. Display-only; the matching algorithm
	// never reads it.
	OldestDebtDate time.Time
}

type party struct {
	userID    string
	remaining float64
}

// PlanTransfers converts net balances into a minimal transfer list using
// greedy largest-creditor/largest-debtor matching. For N unsettled parties
// with a sum-zero balance set it produces at most N-1 transfers, since
// every transfer fully settles at least one party.
func PlanTransfers(balances []MemberBalance) []Transfer {
	var creditors, debtors []*party
	for _, b := range balances {
		switch {
		case b.NetBalance > Tolerance:
			creditors = append(creditors, &party{userID: b.UserID, remaining: b.NetBalance})
		case b.NetBalance < -Tolerance:
			debtors = append(debtors, &party{userID: b.UserID, remaining: -b.NetBalance})
		}
		// Anyone within tolerance of zero is already settled.
	}

	sortParties(creditors)
	sortParties(debtors)

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		creditor, debtor := creditors[0], debtors[0]

		amount := math.Min(creditor.remaining, debtor.remaining)
		transfers = append(transfers, Transfer{
			FromUserID: debtor.userID,
			ToUserID:   creditor.userID,
			Amount:     amount,
		})

		creditor.remaining -= amount
		debtor.remaining -= amount

		if creditor.remaining <= Tolerance {
			creditors = creditors[1:]
		}
		if debtor.remaining <= Tolerance {
			debtors = debtors[1:]
		}

		// Pools are small (trip-sized), so re-sorting each round is
		// cheaper than maintaining a heap.
		sortParties(creditors)
		sortParties(debtors)
	}

	return transfers
}

// sortParties orders by remaining balance descending, breaking ties by
// user ID so planning is deterministic across runs.
func sortParties(parties []*party) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].remaining != parties[j].remaining {
			return parties[i].remaining > parties[j].remaining
		}
		return parties[i].userID < parties[j].userID
	})
}

// AnnotateDebtAges fills each transfer's OldestDebtDate from the expense
// history. A transfer is first matched against expenses where the debtor
// holds a share paid by the creditor; when netting produced a pair with no
// direct expense between them, the debtor's oldest shared expense is used
// instead.
func AnnotateDebtAges(transfers []Transfer, expenses []ExpenseForBalance) {
	pairOldest := make(map[string]map[string]time.Time) // debtor -> payer -> date
	debtorOldest := make(map[string]time.Time)

	for _, exp := range expenses {
		if exp.Date.IsZero() {
			continue
		}
		for _, share := range exp.Shares {
			if share.UserID == exp.PayerID {
				continue
			}
			if cur, ok := debtorOldest[share.UserID]; !ok || exp.Date.Before(cur) {
				debtorOldest[share.UserID] = exp.Date
			}
			if exp.PayerID == "" {
				continue
			}
			byPayer := pairOldest[share.UserID]
			if byPayer == nil {
				byPayer = make(map[string]time.Time)
				pairOldest[share.UserID] = byPayer
			}
			if cur, ok := byPayer[exp.PayerID]; !ok || exp.Date.Before(cur) {
				byPayer[exp.PayerID] = exp.Date
			}
		}
	}

	for i := range transfers {
		t := &transfers[i]
		if date, ok := pairOldest[t.FromUserID][t.ToUserID]; ok {
			t.OldestDebtDate = date
			continue
		}
		if date, ok := debtorOldest[t.FromUserID]; ok {
			t.OldestDebtDate = date
		}
	}
}
