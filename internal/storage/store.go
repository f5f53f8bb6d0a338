// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mkrv/tripledger/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist or is
// soft-deleted. Soft-delete filtering lives inside the store's queries;
// callers never need to re-check deletion flags.
var ErrNotFound = errors.New("not found")

// Store defines the interface for trip storage operations. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer, and keeps the settlement engine free
// of any module-level database client.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// Trips and membership
	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
	UpdateTrip(ctx context.Context, trip *models.Trip) error
	DeleteTrip(ctx context.Context, tripID string) error
	ListTripsByUser(ctx context.Context, userID string) ([]*models.Trip, error)
	AddMember(ctx context.Context, member *models.TripMember) error
	GetMember(ctx context.Context, tripID, userID string) (*models.TripMember, error)
	ListMembers(ctx context.Context, tripID string) ([]*models.TripMember, error)
	SetMemberRSVP(ctx context.Context, tripID, userID string, rsvp models.RSVPStatus) error
	SetMemberRole(ctx context.Context, tripID, userID string, role models.MemberRole) error

	// Milestones
	CreateMilestone(ctx context.Context, milestone *models.Milestone) error
	ListMilestones(ctx context.Context, tripID string) ([]*models.Milestone, error)
	GetMilestone(ctx context.Context, milestoneID string) (*models.Milestone, error)
	CompleteMilestone(ctx context.Context, milestoneID string, completedAt int64) error

	// Expenses
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	// ListExpensesByTrip returns all live expenses with assignments and
	// payer display fields joined in, regardless of expense status.
	ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error)
	SetExpenseStatus(ctx context.Context, expenseID string, status models.ExpenseStatus) error

	// Settlements. Close and reopen are transactional: the settlement
	// rows and the trip's spend status change together or not at all.
	ListSettlementsByTrip(ctx context.Context, tripID string) ([]*models.Settlement, error)
	CloseSpendWindow(ctx context.Context, tripID string, settlements []*models.Settlement) error
	ReopenSpendWindow(ctx context.Context, tripID string) error

	// Checklists
	CreateChecklist(ctx context.Context, checklist *models.Checklist) error
	GetChecklist(ctx context.Context, checklistID string) (*models.Checklist, error)
	ListChecklistsByTrip(ctx context.Context, tripID string) ([]*models.Checklist, error)
	AddChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	// SetChecklistItemDone updates an item scoped to its checklist;
	// an item ID paired with the wrong checklist is ErrNotFound.
	SetChecklistItemDone(ctx context.Context, checklistID, itemID string, done bool) error
	DeleteChecklist(ctx context.Context, checklistID string) error

	// Choices
	CreateChoice(ctx context.Context, choice *models.Choice) error
	GetChoice(ctx context.Context, choiceID string) (*models.Choice, error)
	ListChoicesByTrip(ctx context.Context, tripID string) ([]*models.Choice, error)
	// RecordSelection registers userID's pick; a later pick for the same
	// choice replaces the earlier one.
	RecordSelection(ctx context.Context, choiceID, optionID, userID string) error

	// Close releases any resources held by the store.
	Close() error
}
