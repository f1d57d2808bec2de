package httpapi

import (
	"net/http"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/service/funding"
)

// listInstances returns open envelopes in the standard 28-day window, or
// everything up to ?until=yyyy-MM-dd when given.
func (s *Server) listInstances(w http.ResponseWriter, r *http.Request) {
	var (
		views []funding.InstanceView
		err   error
	)
	if raw := r.URL.Query().Get("until"); raw != "" {
		until, perr := budget.ParseDate(raw)
		if perr != nil {
			badRequest(w, "invalid until date")
			return
		}
		views, err = s.funding.InstancesForWindow(r.Context(), until)
	} else {
		views, err = s.funding.EligibleInstances(r.Context())
	}
	if err != nil {
		serviceError(w, err)
		return
	}
	out := make([]instanceResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toInstanceResponse(v))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) setPlanned(w http.ResponseWriter, r *http.Request) {
	var req setPlannedRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.funding.SetPlannedAmount(r.Context(), req.CommitmentID, req.DueDate, req.Planned); err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
