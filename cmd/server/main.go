package main

import (
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billmap/internal/aggregation"
	"github.com/mmynk/billmap/internal/auth"
	"github.com/mmynk/billmap/internal/config"
	"github.com/mmynk/billmap/internal/server"
	"github.com/mmynk/billmap/internal/service"
	"github.com/mmynk/billmap/internal/storage/sqlite"
	"github.com/mmynk/billmap/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	// The aggregation gateway is optional; without credentials the Plaid
	// routes answer 503 and everything else runs normally.
	var gateway aggregation.Gateway
	if cfg.Plaid.Enabled() {
		gateway = aggregation.NewPlaidGateway(cfg.Plaid.ClientID, cfg.Plaid.Secret, cfg.Plaid.Environment)
		slog.Info("Aggregation gateway enabled", "environment", cfg.Plaid.Environment)
	}

	hasher := auth.NewBcryptHasher()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	users := service.NewUserService(store, hasher)
	bills := service.NewBillService(store, gateway)
	reminders := service.NewReminderService(store)

	srv := server.New(users, bills, reminders, gateway, jwtManager)

	// Wrap with h2c for HTTP/2 without TLS
	handler := h2c.NewHandler(srv.Router(), &http2.Server{})

	slog.Info("Server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
