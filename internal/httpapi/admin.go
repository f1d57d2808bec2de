package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/seed"
)

func (s *Server) postSeed(w http.ResponseWriter, r *http.Request) {
	req := seedRequest{CheckingBalance: decimal.Zero}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "invalid JSON: "+err.Error())
			return
		}
	}
	if err := seed.Load(r.Context(), s.store, req.CheckingBalance); err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, statusResponse{Status: "seeded"})
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	if err := seed.Reset(r.Context(), s.store); err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, statusResponse{Status: "reset"})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	// Stores that can lose their backend implement Ready.
	type readyIf interface{ Ready(context.Context) error }
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	if rc, ok := any(s.store).(readyIf); ok {
		if err := rc.Ready(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
