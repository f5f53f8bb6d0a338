package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrv/tripledger/internal/models"
)

func (a *API) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var trip models.Trip
	if err := decodeJSON(r, &trip); err != nil {
		writeError(w, err)
		return
	}

	created, err := a.services.Trips.CreateTrip(r.Context(), userID(r), &trip)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := a.services.Trips.ListTrips(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (a *API) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := a.services.Trips.GetTrip(r.Context(), userID(r), mux.Vars(r)["trip_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (a *API) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	var trip models.Trip
	if err := decodeJSON(r, &trip); err != nil {
		writeError(w, err)
		return
	}
	trip.ID = mux.Vars(r)["trip_id"]

	updated, err := a.services.Trips.UpdateTrip(r.Context(), userID(r), &trip)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := a.services.Trips.DeleteTrip(r.Context(), userID(r), mux.Vars(r)["trip_id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.services.Trips.ListMembers(r.Context(), userID(r), mux.Vars(r)["trip_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (a *API) handleInviteMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	member, err := a.services.Trips.InviteMember(r.Context(), userID(r), mux.Vars(r)["trip_id"], req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (a *API) handleSetMemberRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role models.MemberRole `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	vars := mux.Vars(r)
	if err := a.services.Trips.SetMemberRole(r.Context(), userID(r), vars["trip_id"], vars["user_id"], req.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleRSVP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RSVP models.RSVPStatus `json:"rsvp"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := a.services.Trips.RSVP(r.Context(), userID(r), mux.Vars(r)["trip_id"], req.RSVP); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleCreateMilestone(w http.ResponseWriter, r *http.Request) {
	var milestone models.Milestone
	if err := decodeJSON(r, &milestone); err != nil {
		writeError(w, err)
		return
	}
	milestone.TripID = mux.Vars(r)["trip_id"]

	created, err := a.services.Trips.CreateMilestone(r.Context(), userID(r), &milestone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleListMilestones(w http.ResponseWriter, r *http.Request) {
	milestones, err := a.services.Trips.ListMilestones(r.Context(), userID(r), mux.Vars(r)["trip_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, milestones)
}

func (a *API) handleCompleteMilestone(w http.ResponseWriter, r *http.Request) {
	milestone, err := a.services.Trips.CompleteMilestone(r.Context(), userID(r), mux.Vars(r)["milestone_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, milestone)
}
