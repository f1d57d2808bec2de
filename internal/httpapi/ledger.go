package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pwielgus/cashplan/internal/service/funding"
)

func (s *Server) postEntry(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	e, err := s.funding.RecordEntry(r.Context(), funding.EntryInput{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		AccountID:   req.AccountID,
		Date:        req.Date,
		Allocations: toAllocationInputs(req.Allocations),
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toEntryResponse(funding.EntryView{Entry: e}))
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	views, err := s.funding.ListEntries(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toEntryResponse(v))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var req patchEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	patch := funding.EntryPatch{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		AccountID:   req.AccountID,
		Allocations: toAllocationInputs(req.Allocations),
	}
	if err := s.funding.UpdateEntry(r.Context(), id, patch); err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := s.funding.DeleteEntry(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
