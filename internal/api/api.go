// Package api exposes the application over a JSON HTTP interface.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/mkrv/tripledger/internal/auth"
	"github.com/mkrv/tripledger/internal/config"
	"github.com/mkrv/tripledger/internal/service"
)

type API struct {
	router   *mux.Router
	services *service.Services
	auth     *auth.PasswordAuthenticator
	jwt      *auth.JWTManager
	cfg      *config.Config
	limiter  *ipLimiter
}

// New builds the router with all routes registered.
func New(cfg *config.Config, services *service.Services, authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager) *API {
	a := &API{
		router:   mux.NewRouter(),
		services: services,
		auth:     authenticator,
		jwt:      jwtManager,
		cfg:      cfg,
		limiter:  newIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	a.setupRoutes()
	return a
}

func (a *API) setupRoutes() {
	a.router.Use(loggingMiddleware, metricsMiddleware, a.rateLimitMiddleware)

	a.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")

	// Auth endpoints
	a.router.HandleFunc("/api/auth/register", a.handleRegister).Methods("POST")
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("POST")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/me", a.handleMe).Methods("GET")

	protected.HandleFunc("/trips", a.handleCreateTrip).Methods("POST")
	protected.HandleFunc("/trips", a.handleListTrips).Methods("GET")
	protected.HandleFunc("/trips/{trip_id}", a.handleGetTrip).Methods("GET")
	protected.HandleFunc("/trips/{trip_id}", a.handleUpdateTrip).Methods("PUT")
	protected.HandleFunc("/trips/{trip_id}", a.handleDeleteTrip).Methods("DELETE")

	protected.HandleFunc("/trips/{trip_id}/members", a.handleListMembers).Methods("GET")
	protected.HandleFunc("/trips/{trip_id}/members", a.handleInviteMember).Methods("POST")
	protected.HandleFunc("/trips/{trip_id}/members/{user_id}/role", a.handleSetMemberRole).Methods("PUT")
	protected.HandleFunc("/trips/{trip_id}/rsvp", a.handleRSVP).Methods("POST")

	protected.HandleFunc("/trips/{trip_id}/milestones", a.handleCreateMilestone).Methods("POST")
	protected.HandleFunc("/trips/{trip_id}/milestones", a.handleListMilestones).Methods("GET")
	protected.HandleFunc("/milestones/{milestone_id}/complete", a.handleCompleteMilestone).Methods("POST")

	protected.HandleFunc("/trips/{trip_id}/expenses", a.handleAddExpense).Methods("POST")
	protected.HandleFunc("/trips/{trip_id}/expenses", a.handleListExpenses).Methods("GET")
	protected.HandleFunc("/expenses/{expense_id}", a.handleUpdateExpense).Methods("PUT")
	protected.HandleFunc("/expenses/{expense_id}", a.handleDeleteExpense).Methods("DELETE")
	protected.HandleFunc("/expenses/{expense_id}/finalize", a.handleFinalizeExpense).Methods("POST")

	protected.HandleFunc("/trips/{trip_id}/balances", a.handleBalanceSummary).Methods("GET")
	protected.HandleFunc("/trips/{trip_id}/settlements", a.handleListSettlements).Methods("GET")
	protected.HandleFunc("/trips/{trip_id}/spend-status/toggle", a.handleToggleSpendStatus).Methods("POST")

	protected.HandleFunc("/trips/{trip_id}/checklists", a.handleCreateChecklist).Methods("POST")
	protected.HandleFunc("/trips/{trip_id}/checklists", a.handleListChecklists).Methods("GET")
	protected.HandleFunc("/checklists/{checklist_id}", a.handleDeleteChecklist).Methods("DELETE")
	protected.HandleFunc("/checklists/{checklist_id}/items", a.handleAddChecklistItem).Methods("POST")
	protected.HandleFunc("/checklists/{checklist_id}/items/{item_id}/done", a.handleSetChecklistItemDone).Methods("PUT")

	protected.HandleFunc("/trips/{trip_id}/choices", a.handleCreateChoice).Methods("POST")
	protected.HandleFunc("/trips/{trip_id}/choices", a.handleListChoices).Methods("GET")
	protected.HandleFunc("/choices/{choice_id}/select", a.handleSelectChoice).Methods("POST")
}

// Handler wraps the router with CORS.
func (a *API) Handler() http.Handler {
	corsOptions := cors.Options{
		AllowedOrigins: a.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}
	return cors.New(corsOptions).Handler(a.router)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
