package funding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/errs"
)

// EnsureInstance materializes the envelope for (commitment, due date),
// creating it with the given planned amount if it does not exist yet. The
// call is idempotent: an existing instance is returned untouched, so an
// edited planned amount survives re-materialization.
func (s *service) EnsureInstance(ctx context.Context, commitmentID uuid.UUID, due budget.Date, planned decimal.Decimal) (budget.Instance, error) {
	if commitmentID == uuid.Nil || due.IsZero() {
		return budget.Instance{}, errs.ErrInvalid
	}
	return s.ensure(ctx, s.store, commitmentID, due, planned)
}

// ensure is the tx-aware core of EnsureInstance; st may be a transaction.
func (s *service) ensure(ctx context.Context, st budget.Store, commitmentID uuid.UUID, due budget.Date, planned decimal.Decimal) (budget.Instance, error) {
	return st.UpsertInstance(ctx, budget.Instance{
		ID:           uuid.New(),
		CommitmentID: commitmentID,
		DueDate:      due,
		Planned:      planned,
		Allocated:    decimal.Zero,
		Status:       budget.StatusOpen,
		CreatedAt:    s.now(),
	})
}

// EligibleInstances expands every active, unpaid commitment into the
// standard forward window, materializes the instances, and returns the ones
// still open and due on or before the window end. An unfunded occurrence
// strictly before today is always carried forward.
func (s *service) EligibleInstances(ctx context.Context) ([]InstanceView, error) {
	today := s.today()
	windowEnd := today.AddDays(ForwardWindowDays)

	var views []InstanceView
	err := s.store.InTx(ctx, func(st budget.Store) error {
		active, err := st.ListCommitments(ctx, budget.CommitmentFilter{ActiveOnly: true})
		if err != nil {
			return err
		}
		for _, c := range active {
			if c.Paid {
				continue
			}
			if err := s.materialize(ctx, st, c, today, windowEnd); err != nil {
				return err
			}
		}
		views, err = s.collect(ctx, st, active, budget.StatusOpen, windowEnd)
		return err
	})
	return views, err
}

// InstancesForWindow is the broader enrichment query: it covers funded
// instances too and every active commitment except one-time ones already
// paid, through the given window end.
func (s *service) InstancesForWindow(ctx context.Context, windowEnd budget.Date) ([]InstanceView, error) {
	today := s.today()

	var views []InstanceView
	err := s.store.InTx(ctx, func(st budget.Store) error {
		active, err := st.ListCommitments(ctx, budget.CommitmentFilter{ActiveOnly: true})
		if err != nil {
			return err
		}
		for _, c := range active {
			if c.Paid && c.Recurrence.IsNone() {
				continue
			}
			if err := s.materialize(ctx, st, c, today, windowEnd); err != nil {
				return err
			}
		}
		views, err = s.collect(ctx, st, active, "", windowEnd)
		return err
	})
	return views, err
}

// materialize ensures an instance for the commitment's overdue anchor (if
// any) and for every occurrence inside [today, windowEnd].
func (s *service) materialize(ctx context.Context, st budget.Store, c budget.Commitment, today, windowEnd budget.Date) error {
	if c.DueDate.Before(today) {
		if _, err := s.ensure(ctx, st, c.ID, c.DueDate, c.Amount); err != nil {
			return err
		}
	}
	for _, occ := range c.Recurrence.Expand(c.DueDate, today, windowEnd) {
		if _, err := s.ensure(ctx, st, c.ID, occ, c.Amount); err != nil {
			return err
		}
	}
	return nil
}

// collect lists instances due on or before windowEnd for the given
// commitments, decorated with name/direction and the derived remaining
// amount. status narrows to a single status when non-empty.
func (s *service) collect(ctx context.Context, st budget.Store, commitments []budget.Commitment, status budget.InstanceStatus, windowEnd budget.Date) ([]InstanceView, error) {
	byID := make(map[uuid.UUID]budget.Commitment, len(commitments))
	for _, c := range commitments {
		byID[c.ID] = c
	}
	instances, err := st.ListInstances(ctx, budget.InstanceFilter{Status: status, DueOnOrBefore: &windowEnd})
	if err != nil {
		return nil, err
	}
	views := make([]InstanceView, 0, len(instances))
	for _, inst := range instances {
		c, ok := byID[inst.CommitmentID]
		if !ok {
			continue // inactive owner
		}
		views = append(views, InstanceView{
			Instance:       inst,
			CommitmentName: c.Name,
			Direction:      c.Direction,
			Remaining:      inst.Remaining(),
		})
	}
	return views, nil
}

// SetPlannedAmount edits one envelope's planned amount and re-derives its
// funded status from the allocations already applied.
func (s *service) SetPlannedAmount(ctx context.Context, commitmentID uuid.UUID, due budget.Date, planned decimal.Decimal) error {
	if planned.IsNegative() {
		return fmt.Errorf("%w: planned amount must not be negative", errs.ErrInvalid)
	}
	return s.store.InTx(ctx, func(st budget.Store) error {
		c, err := st.GetCommitment(ctx, commitmentID)
		if err != nil {
			return err
		}
		inst, err := s.ensure(ctx, st, c.ID, due, c.Amount)
		if err != nil {
			return err
		}
		inst.Planned = planned
		inst.Status = fundedStatus(inst.Allocated, inst.Planned)
		return st.UpdateInstance(ctx, inst)
	})
}

// fundedStatus applies the single funding rule: funded iff
// allocated >= planned - epsilon.
func fundedStatus(allocated, planned decimal.Decimal) budget.InstanceStatus {
	if budget.AtLeast(allocated, planned) {
		return budget.StatusFunded
	}
	return budget.StatusOpen
}
