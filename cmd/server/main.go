package main

import (
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mkrv/tripledger/internal/api"
	"github.com/mkrv/tripledger/internal/auth"
	"github.com/mkrv/tripledger/internal/config"
	"github.com/mkrv/tripledger/internal/service"
	"github.com/mkrv/tripledger/internal/storage/sqlite"
	"github.com/mkrv/tripledger/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	services := service.New(store)
	authenticator := auth.NewPasswordAuthenticator(store)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	server := api.New(cfg, services, authenticator, jwtManager)

	// h2c allows HTTP/2 without TLS when running behind a terminating proxy.
	handler := h2c.NewHandler(server.Handler(), &http2.Server{})

	slog.Info("Server starting", "address", cfg.Bind)
	if err := http.ListenAndServe(cfg.Bind, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
