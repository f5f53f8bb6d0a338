package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkrv/tripledger/internal/auth"
	"github.com/mkrv/tripledger/internal/config"
	"github.com/mkrv/tripledger/internal/models"
	"github.com/mkrv/tripledger/internal/service"
	"github.com/mkrv/tripledger/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		AllowedOrigins: []string{"*"},
		JWTSecret:      "test-secret-key-32-bytes-long!!!",
		TokenTTL:       time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}

	api := New(cfg,
		service.New(store),
		auth.NewPasswordAuthenticator(store),
		auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
	)
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func registerUser(t *testing.T, server *httptest.Server, email, name string) (string, *models.User) {
	t.Helper()
	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	status := doJSON(t, server, "POST", "/api/auth/register", "", map[string]string{
		"email": email, "name": name, "password": "password123",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("Register returned %d", status)
	}
	return resp.Token, resp.User
}

func TestAPIFullTripFlow(t *testing.T) {
	server := newTestServer(t)

	ownerToken, _ := registerUser(t, server, "owner@example.com", "Owner")
	friendToken, friend := registerUser(t, server, "friend@example.com", "Friend")

	// Create a trip.
	var trip models.Trip
	status := doJSON(t, server, "POST", "/api/trips", ownerToken, map[string]string{
		"name": "Lisbon 2026", "baseCurrency": "EUR",
	}, &trip)
	if status != http.StatusCreated {
		t.Fatalf("Create trip returned %d", status)
	}

	// Invite the friend; friend accepts.
	status = doJSON(t, server, "POST", "/api/trips/"+trip.ID+"/members", ownerToken, map[string]string{
		"email": "friend@example.com",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("Invite returned %d", status)
	}
	status = doJSON(t, server, "POST", "/api/trips/"+trip.ID+"/rsvp", friendToken, map[string]string{
		"rsvp": "ACCEPTED",
	}, nil)
	if status != http.StatusNoContent {
		t.Fatalf("RSVP returned %d", status)
	}

	// Owner records an expense split evenly with the friend.
	var expense models.Expense
	status = doJSON(t, server, "POST", "/api/trips/"+trip.ID+"/expenses", ownerToken, map[string]any{
		"description": "Dinner",
		"amount":      100,
		"currency":    "EUR",
		"fxRate":      1,
		"date":        time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
		"paidById":    trip.CreatedBy,
		"assignments": []map[string]any{
			{"userId": trip.CreatedBy, "shareAmount": 50, "splitType": "EQUAL"},
			{"userId": friend.ID, "shareAmount": 50, "splitType": "EQUAL"},
		},
	}, &expense)
	if status != http.StatusCreated {
		t.Fatalf("Add expense returned %d", status)
	}

	// Balance summary is visible to the friend.
	var summary models.BalanceSummary
	status = doJSON(t, server, "GET", "/api/trips/"+trip.ID+"/balances", friendToken, nil, &summary)
	if status != http.StatusOK {
		t.Fatalf("Balances returned %d", status)
	}
	if summary.TotalSpent != 100 {
		t.Errorf("Expected total spent 100, got %v", summary.TotalSpent)
	}
	if len(summary.Settlements) != 1 || summary.Settlements[0].Amount != 50 {
		t.Errorf("Unexpected settlements: %+v", summary.Settlements)
	}

	// A plain member may not close the spend window.
	status = doJSON(t, server, "POST", "/api/trips/"+trip.ID+"/spend-status/toggle", friendToken, nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("Member toggle returned %d, want 403", status)
	}

	// The owner closes it; settlements materialize.
	var closed models.Trip
	status = doJSON(t, server, "POST", "/api/trips/"+trip.ID+"/spend-status/toggle", ownerToken, nil, &closed)
	if status != http.StatusOK {
		t.Fatalf("Owner toggle returned %d", status)
	}
	if closed.SpendStatus != models.SpendClosed {
		t.Errorf("Expected CLOSED, got %s", closed.SpendStatus)
	}

	var settlements []models.Settlement
	status = doJSON(t, server, "GET", "/api/trips/"+trip.ID+"/settlements", friendToken, nil, &settlements)
	if status != http.StatusOK {
		t.Fatalf("Settlements returned %d", status)
	}
	if len(settlements) != 1 || settlements[0].Status != models.SettlementPending {
		t.Errorf("Unexpected settlements: %+v", settlements)
	}

	// Expense writes are rejected while closed.
	status = doJSON(t, server, "POST", "/api/trips/"+trip.ID+"/expenses", ownerToken, map[string]any{
		"amount": 10, "currency": "EUR", "fxRate": 1, "paidById": trip.CreatedBy,
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("Expense on closed trip returned %d, want 409", status)
	}
}

func TestAPIAuthRequired(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/trips"},
		{"POST", "/api/trips"},
		{"GET", "/api/me"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			status := doJSON(t, server, tt.method, tt.path, "", nil, nil)
			if status != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", status)
			}
		})
	}
}

func TestAPILoginRejectsBadPassword(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "alice@example.com", "Alice")

	status := doJSON(t, server, "POST", "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong password",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", status)
	}
}

func TestAPIHealthAndMetrics(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /healthz, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("Metrics request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /metrics, got %d", resp.StatusCode)
	}
}
