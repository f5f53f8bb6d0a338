package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrv/tripledger/internal/models"
)

func (a *API) handleCreateChecklist(w http.ResponseWriter, r *http.Request) {
	var checklist models.Checklist
	if err := decodeJSON(r, &checklist); err != nil {
		writeError(w, err)
		return
	}
	checklist.TripID = mux.Vars(r)["trip_id"]

	created, err := a.services.Checklists.CreateChecklist(r.Context(), userID(r), &checklist)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleListChecklists(w http.ResponseWriter, r *http.Request) {
	checklists, err := a.services.Checklists.ListChecklists(r.Context(), userID(r), mux.Vars(r)["trip_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checklists)
}

func (a *API) handleDeleteChecklist(w http.ResponseWriter, r *http.Request) {
	if err := a.services.Checklists.DeleteChecklist(r.Context(), userID(r), mux.Vars(r)["checklist_id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleAddChecklistItem(w http.ResponseWriter, r *http.Request) {
	var item models.ChecklistItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, err)
		return
	}
	item.ChecklistID = mux.Vars(r)["checklist_id"]

	created, err := a.services.Checklists.AddItem(r.Context(), userID(r), &item)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleSetChecklistItemDone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Done bool `json:"done"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	vars := mux.Vars(r)
	if err := a.services.Checklists.SetItemDone(r.Context(), userID(r), vars["checklist_id"], vars["item_id"], req.Done); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleCreateChoice(w http.ResponseWriter, r *http.Request) {
	var choice models.Choice
	if err := decodeJSON(r, &choice); err != nil {
		writeError(w, err)
		return
	}
	choice.TripID = mux.Vars(r)["trip_id"]

	created, err := a.services.Choices.CreateChoice(r.Context(), userID(r), &choice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleListChoices(w http.ResponseWriter, r *http.Request) {
	choices, err := a.services.Choices.ListChoices(r.Context(), userID(r), mux.Vars(r)["trip_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, choices)
}

func (a *API) handleSelectChoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OptionID string `json:"optionId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := a.services.Choices.Select(r.Context(), userID(r), mux.Vars(r)["choice_id"], req.OptionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
