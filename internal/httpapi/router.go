// Package httpapi wires the HTTP surface of the planner. Handlers stay
// thin, delegating business rules to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/service/account"
	"github.com/pwielgus/cashplan/internal/service/commitment"
	"github.com/pwielgus/cashplan/internal/service/forecast"
	"github.com/pwielgus/cashplan/internal/service/funding"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	accounts    account.Service
	commitments commitment.Service
	funding     funding.Service
	forecast    forecast.Service
	store       budget.TxStore
	log         *slog.Logger
	rt          *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(store budget.TxStore, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		accounts:    account.New(store),
		commitments: commitment.New(store),
		funding:     funding.New(store),
		forecast:    forecast.New(store),
		store:       store,
		log:         logger,
		rt:          r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
	// Accounts (v1)
	s.rt.Post("/v1/accounts", s.postAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/{id}", s.getAccount)
	s.rt.Patch("/v1/accounts/{id}", s.updateAccount)
	s.rt.Delete("/v1/accounts/{id}", s.deleteAccount)
	s.rt.Post("/v1/accounts/{id}/reconcile", s.reconcileAccount)
	// Commitments (v1)
	s.rt.Post("/v1/commitments", s.postCommitment)
	s.rt.Get("/v1/commitments", s.listCommitments)
	s.rt.Get("/v1/commitments/{id}", s.getCommitment)
	s.rt.Patch("/v1/commitments/{id}", s.updateCommitment)
	s.rt.Delete("/v1/commitments/{id}", s.deleteCommitment)
	s.rt.Get("/v1/commitments/{id}/payments", s.listPayments)
	s.rt.Post("/v1/commitments/{id}/pay", s.payCommitment)
	s.rt.Post("/v1/commitments/{id}/rollover", s.rolloverCommitment)
	s.rt.Post("/v1/commitments/{id}/release", s.releaseCommitment)
	// Instances (v1)
	s.rt.Get("/v1/instances", s.listInstances)
	s.rt.Put("/v1/instances/planned", s.setPlanned)
	// Ledger (v1)
	s.rt.Post("/v1/ledger", s.postEntry)
	s.rt.Get("/v1/ledger", s.listEntries)
	s.rt.Patch("/v1/ledger/{id}", s.updateEntry)
	s.rt.Delete("/v1/ledger/{id}", s.deleteEntry)
	// Projections and alerts (v1)
	s.rt.Get("/v1/projections", s.getProjections)
	s.rt.Get("/v1/alerts", s.getAlerts)
	// Demo data (v1)
	s.rt.Post("/v1/seed", s.postSeed)
	s.rt.Post("/v1/reset", s.postReset)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
