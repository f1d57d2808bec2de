// Package funding implements the envelope engine: lazy materialization of
// commitment instances, allocation of ledger transactions against them under
// a non-overexpenditure rule, and advancement of recurring commitments once
// an occurrence is funded.
package funding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
)

// ForwardWindowDays is the standard materialization window: occurrences are
// ensured from today through today+28 days.
const ForwardWindowDays = 28

// InstanceView is an instance decorated with its commitment's name and
// direction plus the derived remaining amount, for callers rendering lists.
type InstanceView struct {
	budget.Instance
	CommitmentName string
	Direction      budget.Direction
	Remaining      decimal.Decimal
}

// AllocationInput is one requested split of a ledger entry onto an envelope.
type AllocationInput struct {
	CommitmentID uuid.UUID
	DueDate      budget.Date
	Amount       decimal.Decimal
	Note         string
}

// EntryInput is a new ledger transaction with optional allocations.
type EntryInput struct {
	Description string
	Amount      decimal.Decimal
	Type        budget.EntryType
	AccountID   uuid.UUID
	Date        budget.Date // zero means today
	Allocations []AllocationInput
}

// EntryPatch carries edited ledger entry fields. Nil pointers leave the
// field unchanged; Allocations always replaces the full allocation set (an
// empty or nil slice clears it).
type EntryPatch struct {
	Description *string
	Amount      *decimal.Decimal
	Type        *budget.EntryType
	AccountID   *uuid.UUID
	Allocations []AllocationInput
}

// EntryView is a ledger entry decorated with its allocations.
type EntryView struct {
	budget.Entry
	Allocations []AllocationView
}

// AllocationView names the commitment an allocation funds.
type AllocationView struct {
	budget.Allocation
	CommitmentName string
}

// MarkPaidInput records an actual payment against a commitment occurrence.
type MarkPaidInput struct {
	CommitmentID uuid.UUID
	ActualAmount decimal.Decimal
	DueDate      *budget.Date // defaults to the commitment's anchor due date
	Note         string
	AccountID    *uuid.UUID // overrides the commitment's linked account
}

// Service is the mutating half of the engine.
type Service interface {
	EnsureInstance(ctx context.Context, commitmentID uuid.UUID, due budget.Date, planned decimal.Decimal) (budget.Instance, error)
	EligibleInstances(ctx context.Context) ([]InstanceView, error)
	InstancesForWindow(ctx context.Context, windowEnd budget.Date) ([]InstanceView, error)
	SetPlannedAmount(ctx context.Context, commitmentID uuid.UUID, due budget.Date, planned decimal.Decimal) error

	RecordEntry(ctx context.Context, in EntryInput) (budget.Entry, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, patch EntryPatch) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	ListEntries(ctx context.Context) ([]EntryView, error)

	MarkPaid(ctx context.Context, in MarkPaidInput) error
	Rollover(ctx context.Context, commitmentID uuid.UUID, due *budget.Date) error
	Release(ctx context.Context, commitmentID uuid.UUID, due *budget.Date) error
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

// New constructs the funding service over a transactional store.
func New(store budget.TxStore, opts ...Option) Service {
	s := &service{store: store, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) today() budget.Date { return budget.DateOf(s.now()) }
