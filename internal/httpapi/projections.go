package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pwielgus/cashplan/internal/service/forecast"
)

// getProjections returns the day-by-day balance forecast. ?days= bounds the
// horizon (default 28, max 90); ?simulate_early= is a comma-separated list
// of one-time commitment IDs to pull forward to today.
func (s *Server) getProjections(w http.ResponseWriter, r *http.Request) {
	days := forecast.DefaultHorizonDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 90 {
			badRequest(w, "days must be between 1 and 90")
			return
		}
		days = n
	}
	var simulateEarly []uuid.UUID
	if raw := r.URL.Query().Get("simulate_early"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				badRequest(w, "invalid simulate_early id")
				return
			}
			simulateEarly = append(simulateEarly, id)
		}
	}
	projection, err := s.forecast.Project(r.Context(), days, simulateEarly)
	if err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, projection)
}

func (s *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.forecast.Alerts(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, alerts)
}
