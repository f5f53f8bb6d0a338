package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrv/tripledger/internal/models"
)

func (a *API) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var expense models.Expense
	if err := decodeJSON(r, &expense); err != nil {
		writeError(w, err)
		return
	}
	expense.TripID = mux.Vars(r)["trip_id"]

	created, err := a.services.Expenses.AddExpense(r.Context(), userID(r), &expense)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.services.Expenses.ListExpenses(r.Context(), userID(r), mux.Vars(r)["trip_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (a *API) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var expense models.Expense
	if err := decodeJSON(r, &expense); err != nil {
		writeError(w, err)
		return
	}
	expense.ID = mux.Vars(r)["expense_id"]

	updated, err := a.services.Expenses.UpdateExpense(r.Context(), userID(r), &expense)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := a.services.Expenses.DeleteExpense(r.Context(), userID(r), mux.Vars(r)["expense_id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleFinalizeExpense(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	expense, err := a.services.Expenses.FinalizeExpense(r.Context(), userID(r), mux.Vars(r)["expense_id"], force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}
