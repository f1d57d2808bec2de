// Package forecast is the read-only half of the engine: the day-by-day
// balance projection and the risk alerts derived from it. It never mutates
// the store; reads run inside a transaction only to get a consistent
// snapshot.
package forecast

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pwielgus/cashplan/internal/budget"
)

const (
	// DefaultHorizonDays is the projection window when the caller does not ask
	// for a specific one.
	DefaultHorizonDays = 28
	// alertHorizonDays is the projection window alerts are derived from.
	alertHorizonDays = 14
	// dueSoonHours is the heads-up window for unfunded bills not on autopay.
	dueSoonHours = 48
)

// bufferThreshold is the minimum comfortable balance; dipping under it (while
// still positive) raises a warning.
var bufferThreshold = decimalFromInt(500)

// Service produces projections and alerts.
type Service interface {
	Project(ctx context.Context, days int, simulateEarly []uuid.UUID) ([]budget.ProjectionDay, error)
	Alerts(ctx context.Context) ([]budget.Alert, error)
}

type service struct {
	store budget.TxStore
	now   func() time.Time
}

// Option tweaks service construction.
type Option func(*service)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// New constructs the forecast service over a transactional store.
func New(store budget.TxStore, opts ...Option) Service {
	s := &service{store: store, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) today() budget.Date { return budget.DateOf(s.now()) }
