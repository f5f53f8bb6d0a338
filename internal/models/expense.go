package models

import "time"

// ExpenseStatus is the lifecycle state of an expense.
type ExpenseStatus string

const (
	// ExpenseOpen expenses may still be edited; share sums are not yet
	// checked against the expense amount.
	ExpenseOpen ExpenseStatus = "OPEN"
	// ExpenseClosed expenses have been finalized.
	ExpenseClosed ExpenseStatus = "CLOSED"
)

// SplitType records how a cost assignment's share was derived. It is
// informational for clients; balance math reads only the amounts.
type SplitType string

const (
	SplitEqual   SplitType = "EQUAL"
	SplitExact   SplitType = "EXACT"
	SplitPercent SplitType = "PERCENT"
)

// Expense is a monetary event on a trip, fronted by one member and split
// across participants via cost assignments.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// TripID is the trip this expense belongs to.
	TripID string `json:"tripId"`

	// Description is a short human-readable label.
	Description string `json:"description,omitempty"`

	// CategoryID is an optional client-defined category.
	CategoryID string `json:"categoryId,omitempty"`

	// Amount is the expense total in its original currency.
	Amount float64 `json:"amount"`

	// Currency is the 3-letter ISO code the expense was paid in.
	Currency string `json:"currency"`

	// FxRate converts Amount into the trip's base currency.
	FxRate float64 `json:"fxRate"`

	// NormalizedAmount is Amount * FxRate in the trip's base currency.
	// Derived; recomputed on every write via Normalize.
	NormalizedAmount float64 `json:"normalizedAmount"`

	// Date is when the expense occurred.
	Date time.Time `json:"date"`

	// Status is OPEN until the expense is finalized.
	Status ExpenseStatus `json:"status"`

	// PaidByID is the user who fronted the money.
	PaidByID string `json:"paidById"`

	// PaidBy carries the payer's display fields when the storage layer
	// joined them in; nil otherwise.
	PaidBy *User `json:"paidBy,omitempty"`

	// Assignments are the per-user shares of this expense.
	Assignments []CostAssignment `json:"assignments"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`

	// DeletedAt is the soft-delete Unix timestamp (0 = live).
	DeletedAt int64 `json:"-"`
}

// CostAssignment links one expense to one participating user with that
// user's share of the cost.
type CostAssignment struct {
	ExpenseID string `json:"expenseId,omitempty"`

	// UserID is the assignee. Assignments are taken at face value: the
	// balance aggregator does not check trip membership or RSVP state.
	UserID string `json:"userId"`

	// ShareAmount is the share in the expense's original currency.
	ShareAmount float64 `json:"shareAmount"`

	// NormalizedShareAmount is ShareAmount * FxRate. Derived; kept in
	// sync by Normalize.
	NormalizedShareAmount float64 `json:"normalizedShareAmount"`

	SplitType SplitType `json:"splitType"`
}

// Normalize recomputes the derived base-currency fields from the original
// amounts and the FX rate. Every create and update path must call this so
// the normalized values never drift from amount * fxRate.
func (e *Expense) Normalize() {
	e.NormalizedAmount = e.Amount * e.FxRate
	for i := range e.Assignments {
		e.Assignments[i].NormalizedShareAmount = e.Assignments[i].ShareAmount * e.FxRate
	}
}

// AssignedTotal sums the shares in the expense's original currency. While
// the expense is OPEN this may deviate from Amount; the mismatch is only
// checked at finalize-time.
func (e *Expense) AssignedTotal() float64 {
	var total float64
	for _, a := range e.Assignments {
		total += a.ShareAmount
	}
	return total
}
