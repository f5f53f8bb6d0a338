package models

import "time"

// SettlementStatus tracks whether a planned transfer has been paid.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "PENDING"
	SettlementPaid    SettlementStatus = "PAID"
)

// Settlement is a persisted transfer from a debtor to a creditor. Records
// exist only while the trip's spend window is CLOSED and are always a full
// recomputation from the expense state at close-time, never patched in
// place.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// TripID is the trip this settlement belongs to.
	TripID string `json:"tripId"`

	// FromUserID is the debtor.
	FromUserID string `json:"fromUserId"`

	// ToUserID is the creditor.
	ToUserID string `json:"toUserId"`

	// Amount is the transfer amount in the trip's base currency.
	Amount float64 `json:"amount"`

	// Status is PENDING when materialized at close-time.
	Status SettlementStatus `json:"status"`

	// Notes optionally carries the oldest-debt date annotation.
	Notes string `json:"notes,omitempty"`

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64 `json:"createdAt"`
}

// UserBalance is one user's derived position in a trip's base currency.
// Never persisted; computed fresh on every balance request.
type UserBalance struct {
	UserID       string  `json:"userId"`
	UserName     string  `json:"userName"`
	UserEmail    string  `json:"userEmail"`
	UserPhotoURL string  `json:"userPhotoURL,omitempty"`
	TotalPaid    float64 `json:"totalPaid"`
	TotalOwed    float64 `json:"totalOwed"`
	NetBalance   float64 `json:"netBalance"`
}

// PlannedSettlement is a planner transfer enriched with display names for
// the balance summary response.
type PlannedSettlement struct {
	FromUserID     string     `json:"fromUserId"`
	FromUserName   string     `json:"fromUserName"`
	ToUserID       string     `json:"toUserId"`
	ToUserName     string     `json:"toUserName"`
	Amount         float64    `json:"amount"`
	OldestDebtDate *time.Time `json:"oldestDebtDate,omitempty"`
}

// BalanceSummary is the full balance view for a trip.
type BalanceSummary struct {
	TripID       string              `json:"tripId"`
	BaseCurrency string              `json:"baseCurrency"`
	TotalSpent   float64             `json:"totalSpent"`
	Balances     []UserBalance       `json:"balances"`
	Settlements  []PlannedSettlement `json:"settlements"`
	CalculatedAt time.Time           `json:"calculatedAt"`
}
