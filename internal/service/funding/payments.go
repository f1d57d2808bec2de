package funding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/errs"
)

// MarkPaid records an actual payment against one occurrence of a
// commitment: account impact, payment history row, ledger entry with a line
// item, and an allocation onto the occurrence's envelope. If that brings the
// envelope to funded, a recurring commitment advances to its next occurrence
// and a one-time commitment becomes terminally paid.
func (s *service) MarkPaid(ctx context.Context, in MarkPaidInput) error {
	if in.CommitmentID == uuid.Nil || !in.ActualAmount.IsPositive() {
		return fmt.Errorf("%w: commitment_id and a positive actual_amount required", errs.ErrInvalid)
	}
	today := s.today()

	return s.store.InTx(ctx, func(st budget.Store) error {
		c, err := st.GetCommitment(ctx, in.CommitmentID)
		if err != nil {
			return err
		}
		accountID := c.AccountID
		if in.AccountID != nil {
			accountID = in.AccountID
		}
		if accountID == nil {
			return fmt.Errorf("%w: no account linked; select an account for this payment", errs.ErrNoAccount)
		}
		target := c.DueDate
		if in.DueDate != nil {
			target = *in.DueDate
		}

		entryType := budget.EntryExpense
		if c.Direction == budget.DirectionIncome {
			entryType = budget.EntryIncome
		}
		if err := s.applyImpact(ctx, st, *accountID, impact(entryType, in.ActualAmount)); err != nil {
			return err
		}

		if err := st.CreatePaymentRecord(ctx, budget.PaymentRecord{
			ID:           uuid.New(),
			CommitmentID: c.ID,
			Amount:       c.Amount,
			ActualAmount: in.ActualAmount,
			PaidDate:     today,
			DueDate:      target,
		}); err != nil {
			return err
		}

		desc := c.Name
		if in.Note != "" {
			desc = c.Name + ": " + in.Note
		}
		entry := budget.Entry{
			ID:           uuid.New(),
			Date:         today,
			Description:  desc,
			Amount:       in.ActualAmount,
			Type:         entryType,
			AccountID:    accountID,
			CommitmentID: &c.ID,
			CreatedAt:    s.now(),
		}
		if err := st.CreateEntry(ctx, entry); err != nil {
			return err
		}
		liDesc := in.Note
		if liDesc == "" {
			liDesc = c.Name
		}
		if err := st.CreateLineItem(ctx, budget.LineItem{
			ID:           uuid.New(),
			EntryID:      entry.ID,
			Description:  liDesc,
			Amount:       in.ActualAmount,
			CommitmentID: &c.ID,
			DueDate:      &target,
		}); err != nil {
			return err
		}

		inst, err := s.ensure(ctx, st, c.ID, target, c.Amount)
		if err != nil {
			return err
		}
		if err := st.CreateAllocation(ctx, budget.Allocation{
			ID:           uuid.New(),
			EntryID:      entry.ID,
			InstanceID:   inst.ID,
			CommitmentID: c.ID,
			Amount:       in.ActualAmount,
			Note:         in.Note,
			CreatedAt:    s.now(),
		}); err != nil {
			return err
		}
		inst.Allocated = inst.Allocated.Add(in.ActualAmount)
		inst.Status = fundedStatus(inst.Allocated, inst.Planned)
		if err := st.UpdateInstance(ctx, inst); err != nil {
			return err
		}
		if inst.Status != budget.StatusFunded {
			return nil // partial payment, nothing advances
		}

		if c.Recurrence.IsNone() {
			c.Paid = true
			actual := in.ActualAmount
			c.ActualAmount = &actual
			paidDate := today
			c.PaidDate = &paidDate
			return st.UpdateCommitment(ctx, c)
		}
		return s.advance(ctx, st, c)
	})
}

// Rollover closes an occurrence's envelope regardless of funding level and
// carries its leftover into the next occurrence's plan as extra budget, then
// advances the commitment. Only recurring commitments roll over.
func (s *service) Rollover(ctx context.Context, commitmentID uuid.UUID, due *budget.Date) error {
	return s.closeInstance(ctx, commitmentID, due, true)
}

// Release closes an occurrence's envelope like Rollover but discards the
// leftover: the money was never spent, so it simply stays in general cash.
func (s *service) Release(ctx context.Context, commitmentID uuid.UUID, due *budget.Date) error {
	return s.closeInstance(ctx, commitmentID, due, false)
}

func (s *service) closeInstance(ctx context.Context, commitmentID uuid.UUID, due *budget.Date, carryLeftover bool) error {
	if commitmentID == uuid.Nil {
		return errs.ErrInvalid
	}
	return s.store.InTx(ctx, func(st budget.Store) error {
		c, err := st.GetCommitment(ctx, commitmentID)
		if err != nil {
			return err
		}
		if c.Recurrence.IsNone() {
			return fmt.Errorf("%w: leftover handling only applies to recurring commitments", errs.ErrNotRecurring)
		}
		target := c.DueDate
		if due != nil {
			target = *due
		}

		inst, err := s.ensure(ctx, st, c.ID, target, c.Amount)
		if err != nil {
			return err
		}
		leftover := inst.Remaining()
		inst.Status = budget.StatusFunded
		if err := st.UpdateInstance(ctx, inst); err != nil {
			return err
		}

		next := c.Recurrence.Advance(c.DueDate)
		if carryLeftover && budget.Exceeds(leftover, decimal.Zero) {
			nextInst, err := s.ensure(ctx, st, c.ID, next, c.Amount)
			if err != nil {
				return err
			}
			nextInst.Planned = nextInst.Planned.Add(leftover)
			nextInst.Status = fundedStatus(nextInst.Allocated, nextInst.Planned)
			if err := st.UpdateInstance(ctx, nextInst); err != nil {
				return err
			}
		}
		return s.advance(ctx, st, c)
	})
}

// advance moves a recurring commitment's anchor due date to the next
// occurrence and clears the vestigial one-time paid markers.
func (s *service) advance(ctx context.Context, st budget.Store, c budget.Commitment) error {
	c.DueDate = c.Recurrence.Advance(c.DueDate)
	c.Paid = false
	c.ActualAmount = nil
	c.PaidDate = nil
	return st.UpdateCommitment(ctx, c)
}
