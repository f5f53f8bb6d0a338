package service

import "github.com/mkrv/tripledger/internal/storage"

// Services bundles the application services over a single store. All
// services that touch a trip's spend state share one lock set, so expense
// writes, explicit spend toggles and milestone-triggered closes serialize
// against each other per trip.
type Services struct {
	Trips       *TripService
	Expenses    *ExpenseService
	Balances    *BalanceService
	Settlements *SettlementService
	Checklists  *ChecklistService
	Choices     *ChoiceService
}

// New wires up all services over the given store.
func New(store storage.Store) *Services {
	locks := newTripLocks()
	settlements := NewSettlementService(store, locks)
	return &Services{
		Trips:       NewTripService(store, settlements),
		Expenses:    NewExpenseService(store, locks),
		Balances:    NewBalanceService(store),
		Settlements: settlements,
		Checklists:  NewChecklistService(store),
		Choices:     NewChoiceService(store),
	}
}
