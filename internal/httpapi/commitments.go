package httpapi

import (
	"context"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/service/commitment"
	"github.com/pwielgus/cashplan/internal/service/funding"
)

func (s *Server) postCommitment(w http.ResponseWriter, r *http.Request) {
	var req postCommitmentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	c, err := s.commitments.Create(r.Context(), commitment.CreateInput{
		Name:       req.Name,
		Direction:  req.Direction,
		Amount:     req.Amount,
		DueDate:    req.DueDate,
		Recurrence: req.Recurrence,
		Priority:   req.Priority,
		Autopay:    req.Autopay,
		AccountID:  req.AccountID,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toCommitmentResponse(c))
}

func (s *Server) listCommitments(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	commitments, err := s.commitments.List(r.Context(), activeOnly)
	if err != nil {
		serviceError(w, err)
		return
	}
	out := make([]commitmentResponse, 0, len(commitments))
	for _, c := range commitments {
		out = append(out, toCommitmentResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getCommitment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	c, err := s.commitments.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCommitmentResponse(c))
}

func (s *Server) updateCommitment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var req patchCommitmentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	c, err := s.commitments.Update(r.Context(), id, commitment.UpdateInput{
		Name:       req.Name,
		Direction:  req.Direction,
		Amount:     req.Amount,
		DueDate:    req.DueDate,
		Recurrence: req.Recurrence,
		Priority:   req.Priority,
		Autopay:    req.Autopay,
		AccountID:  req.AccountID,
		Active:     req.Active,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCommitmentResponse(c))
}

func (s *Server) deleteCommitment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := s.commitments.Delete(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	payments, err := s.commitments.Payments(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentResponse{
			ID:           p.ID,
			CommitmentID: p.CommitmentID,
			Amount:       p.Amount,
			ActualAmount: p.ActualAmount,
			PaidDate:     p.PaidDate,
			DueDate:      p.DueDate,
		})
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) payCommitment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var req payRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	err = s.funding.MarkPaid(r.Context(), funding.MarkPaidInput{
		CommitmentID: id,
		ActualAmount: req.ActualAmount,
		DueDate:      req.DueDate,
		Note:         req.Note,
		AccountID:    req.AccountID,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	c, err := s.commitments.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCommitmentResponse(c))
}

func (s *Server) rolloverCommitment(w http.ResponseWriter, r *http.Request) {
	s.closeInstance(w, r, s.funding.Rollover)
}

func (s *Server) releaseCommitment(w http.ResponseWriter, r *http.Request) {
	s.closeInstance(w, r, s.funding.Release)
}

func (s *Server) closeInstance(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID, due *budget.Date) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var req closeInstanceRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "invalid JSON: "+err.Error())
			return
		}
	}
	if err := op(r.Context(), id, req.DueDate); err != nil {
		serviceError(w, err)
		return
	}
	c, err := s.commitments.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCommitmentResponse(c))
}
