package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (a *API) handleBalanceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.services.Balances.GetBalanceSummary(r.Context(), userID(r), mux.Vars(r)["trip_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := a.services.Settlements.ListSettlements(r.Context(), userID(r), mux.Vars(r)["trip_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlements)
}

func (a *API) handleToggleSpendStatus(w http.ResponseWriter, r *http.Request) {
	trip, err := a.services.Settlements.ToggleSpendStatus(r.Context(), userID(r), mux.Vars(r)["trip_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}
