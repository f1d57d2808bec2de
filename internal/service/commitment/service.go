// Package commitment manages recurring and one-time expected cash flows:
// the bills and paychecks the planner tracks envelopes and projections for.
package commitment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/errs"
)

type CreateInput struct {
	Name       string
	Direction  budget.Direction
	Amount     decimal.Decimal
	DueDate    budget.Date
	Recurrence string
	Priority   budget.Priority
	Autopay    bool
	AccountID  *uuid.UUID
}

type UpdateInput struct {
	Name       *string
	Direction  *budget.Direction
	Amount     *decimal.Decimal
	DueDate    *budget.Date
	Recurrence *string
	Priority   *budget.Priority
	Autopay    *bool
	AccountID  *uuid.UUID
	Active     *bool
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (budget.Commitment, error)
	Get(ctx context.Context, id uuid.UUID) (budget.Commitment, error)
	List(ctx context.Context, activeOnly bool) ([]budget.Commitment, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (budget.Commitment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Payments(ctx context.Context, id uuid.UUID) ([]budget.PaymentRecord, error)
}

type service struct {
	store budget.TxStore
}

func New(store budget.TxStore) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, in CreateInput) (budget.Commitment, error) {
	if in.Name == "" {
		return budget.Commitment{}, fmt.Errorf("%w: name is required", errs.ErrInvalid)
	}
	if in.Direction != budget.DirectionIncome && in.Direction != budget.DirectionBill {
		return budget.Commitment{}, fmt.Errorf("%w: direction must be income or bill", errs.ErrInvalid)
	}
	if !in.Amount.IsPositive() {
		return budget.Commitment{}, fmt.Errorf("%w: amount must be positive", errs.ErrInvalid)
	}
	if in.DueDate.IsZero() {
		return budget.Commitment{}, fmt.Errorf("%w: due date is required", errs.ErrInvalid)
	}
	priority := in.Priority
	if priority == "" {
		priority = budget.PriorityNormal
	}
	if !validPriority(priority) {
		return budget.Commitment{}, fmt.Errorf("%w: unknown priority %q", errs.ErrInvalid, priority)
	}
	var c budget.Commitment
	err := s.store.InTx(ctx, func(st budget.Store) error {
		if in.AccountID != nil {
			if _, err := st.GetAccount(ctx, *in.AccountID); err != nil {
				return err
			}
		}
		c = budget.Commitment{
			ID:         uuid.New(),
			Name:       in.Name,
			Direction:  in.Direction,
			Amount:     in.Amount,
			DueDate:    in.DueDate,
			Recurrence: budget.ParseRecurrence(in.Recurrence),
			Priority:   priority,
			Autopay:    in.Autopay,
			AccountID:  in.AccountID,
			Active:     true,
			CreatedAt:  time.Now().UTC(),
		}
		return st.CreateCommitment(ctx, c)
	})
	if err != nil {
		return budget.Commitment{}, err
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (budget.Commitment, error) {
	return s.store.GetCommitment(ctx, id)
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]budget.Commitment, error) {
	return s.store.ListCommitments(ctx, budget.CommitmentFilter{ActiveOnly: activeOnly})
}

func (s *service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (budget.Commitment, error) {
	var out budget.Commitment
	err := s.store.InTx(ctx, func(st budget.Store) error {
		c, err := st.GetCommitment(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			if *in.Name == "" {
				return fmt.Errorf("%w: name cannot be empty", errs.ErrInvalid)
			}
			c.Name = *in.Name
		}
		if in.Direction != nil {
			if *in.Direction != budget.DirectionIncome && *in.Direction != budget.DirectionBill {
				return fmt.Errorf("%w: direction must be income or bill", errs.ErrInvalid)
			}
			c.Direction = *in.Direction
		}
		if in.Amount != nil {
			if !in.Amount.IsPositive() {
				return fmt.Errorf("%w: amount must be positive", errs.ErrInvalid)
			}
			c.Amount = *in.Amount
		}
		if in.DueDate != nil {
			c.DueDate = *in.DueDate
		}
		if in.Recurrence != nil {
			c.Recurrence = budget.ParseRecurrence(*in.Recurrence)
		}
		if in.Priority != nil {
			if !validPriority(*in.Priority) {
				return fmt.Errorf("%w: unknown priority %q", errs.ErrInvalid, *in.Priority)
			}
			c.Priority = *in.Priority
		}
		if in.Autopay != nil {
			c.Autopay = *in.Autopay
		}
		if in.AccountID != nil {
			if _, err := st.GetAccount(ctx, *in.AccountID); err != nil {
				return err
			}
			c.AccountID = in.AccountID
		}
		if in.Active != nil {
			c.Active = *in.Active
		}
		if err := st.UpdateCommitment(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// Delete removes the commitment along with its envelopes, allocations, and
// payment history. Ledger entries that pointed at it are kept with the
// reference cleared.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.InTx(ctx, func(st budget.Store) error {
		if _, err := st.GetCommitment(ctx, id); err != nil {
			return err
		}
		if err := st.DeleteAllocationsByCommitment(ctx, id); err != nil {
			return err
		}
		if err := st.DeleteInstancesByCommitment(ctx, id); err != nil {
			return err
		}
		if err := st.DeletePaymentsByCommitment(ctx, id); err != nil {
			return err
		}
		entries, err := st.ListEntries(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.CommitmentID == nil || *e.CommitmentID != id {
				continue
			}
			e.CommitmentID = nil
			if err := st.UpdateEntry(ctx, e); err != nil {
				return err
			}
		}
		return st.DeleteCommitment(ctx, id)
	})
}

func (s *service) Payments(ctx context.Context, id uuid.UUID) ([]budget.PaymentRecord, error) {
	if _, err := s.store.GetCommitment(ctx, id); err != nil {
		return nil, err
	}
	return s.store.PaymentsByCommitment(ctx, id)
}

func validPriority(p budget.Priority) bool {
	switch p {
	case budget.PriorityCritical, budget.PriorityNormal, budget.PriorityFlexible:
		return true
	}
	return false
}
