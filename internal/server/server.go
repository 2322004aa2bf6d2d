// Package server exposes the BillMap services over a JSON HTTP API.
// Routing, serialization, and token verification live here; all domain
// rules stay in the service layer.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/billmap/internal/aggregation"
	"github.com/mmynk/billmap/internal/auth"
	"github.com/mmynk/billmap/internal/middleware"
	"github.com/mmynk/billmap/internal/service"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	users     *service.UserService
	bills     *service.BillService
	reminders *service.ReminderService
	gateway   aggregation.Gateway
	jwt       *auth.JWTManager
}

// New creates a Server. gateway may be nil; the Plaid routes then answer
// 503 while everything else works normally.
func New(
	users *service.UserService,
	bills *service.BillService,
	reminders *service.ReminderService,
	gateway aggregation.Gateway,
	jwt *auth.JWTManager,
) *Server {
	return &Server{
		users:     users,
		bills:     bills,
		reminders: reminders,
		gateway:   gateway,
		jwt:       jwt,
	}
}

// Router builds the route tree with logging and metrics applied to every
// request and JWT auth applied to everything under /api except auth.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt))

			r.Get("/auth/me", s.handleMe)
			r.Patch("/users/me", s.handleUpdateMe)
			r.Delete("/users/me", s.handleDeleteMe)

			r.Post("/bills", s.handleCreateBill)
			r.Get("/bills", s.handleListBills)
			r.Get("/bills/{id}", s.handleGetBill)
			r.Patch("/bills/{id}", s.handleUpdateBill)
			r.Delete("/bills/{id}", s.handleDeleteBill)
			r.Post("/bills/{id}/pay", s.handleMarkBillPaid)

			r.Post("/reminders", s.handleScheduleReminder)
			r.Get("/reminders", s.handleListReminders)
			r.Get("/reminders/{id}", s.handleGetReminder)
			r.Patch("/reminders/{id}", s.handleUpdateReminder)
			r.Delete("/reminders/{id}", s.handleDeleteReminder)
			r.Post("/reminders/dispatch", s.handleDispatchReminders)

			r.Get("/plaid/link_token", s.handleCreateLinkToken)
			r.Post("/plaid/exchange", s.handleExchangeToken)
			r.Get("/plaid/liabilities", s.handleGetLiabilities)
			r.Get("/plaid/transactions", s.handleGetTransactions)
			r.Post("/plaid/import", s.handleImportLiabilities)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
