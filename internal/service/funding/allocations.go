package funding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/errs"
)

// RecordEntry posts a ledger transaction, applies its account balance
// impact, and applies any requested allocations. The whole step is one
// transaction: an allocation exceeding its envelope's remaining amount rolls
// everything back.
func (s *service) RecordEntry(ctx context.Context, in EntryInput) (budget.Entry, error) {
	if in.Description == "" || in.AccountID == uuid.Nil {
		return budget.Entry{}, fmt.Errorf("%w: description and account_id required", errs.ErrInvalid)
	}
	if in.Type != budget.EntryIncome && in.Type != budget.EntryExpense {
		return budget.Entry{}, fmt.Errorf("%w: type must be income or expense", errs.ErrInvalid)
	}
	if err := validateAllocations(in.Allocations, in.Amount); err != nil {
		return budget.Entry{}, err
	}

	date := in.Date
	if date.IsZero() {
		date = s.today()
	}
	entry := budget.Entry{
		ID:          uuid.New(),
		Date:        date,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		AccountID:   &in.AccountID,
		CreatedAt:   s.now(),
	}

	err := s.store.InTx(ctx, func(st budget.Store) error {
		if err := st.CreateEntry(ctx, entry); err != nil {
			return err
		}
		if err := s.applyImpact(ctx, st, in.AccountID, impact(in.Type, in.Amount)); err != nil {
			return err
		}
		return s.applyAllocations(ctx, st, entry.ID, in.Allocations)
	})
	if err != nil {
		return budget.Entry{}, err
	}
	return entry, nil
}

// UpdateEntry edits a posted transaction using the reverse-then-reapply
// protocol: undo the old account impact and allocations, persist the new
// field values, apply the new impact, then re-apply the new allocation set.
// All of it commits or rolls back together.
func (s *service) UpdateEntry(ctx context.Context, id uuid.UUID, patch EntryPatch) error {
	return s.store.InTx(ctx, func(st budget.Store) error {
		existing, err := st.GetEntry(ctx, id)
		if err != nil {
			return err
		}

		next := existing
		if patch.Description != nil {
			next.Description = *patch.Description
		}
		if patch.Amount != nil {
			next.Amount = *patch.Amount
		}
		if patch.Type != nil {
			next.Type = *patch.Type
		}
		if patch.AccountID != nil {
			next.AccountID = patch.AccountID
		}
		if err := validateAllocations(patch.Allocations, next.Amount); err != nil {
			return err
		}

		if existing.AccountID != nil {
			if err := s.applyImpact(ctx, st, *existing.AccountID, impact(existing.Type, existing.Amount).Neg()); err != nil {
				return err
			}
		}
		if err := s.reverseAllocations(ctx, st, id); err != nil {
			return err
		}
		if err := st.UpdateEntry(ctx, next); err != nil {
			return err
		}
		if next.AccountID != nil {
			if err := s.applyImpact(ctx, st, *next.AccountID, impact(next.Type, next.Amount)); err != nil {
				return err
			}
		}
		return s.applyAllocations(ctx, st, id, patch.Allocations)
	})
}

// DeleteEntry reverses the transaction's allocations and account impact and
// removes it, atomically.
func (s *service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return s.store.InTx(ctx, func(st budget.Store) error {
		existing, err := st.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		if err := s.reverseAllocations(ctx, st, id); err != nil {
			return err
		}
		if existing.AccountID != nil {
			if err := s.applyImpact(ctx, st, *existing.AccountID, impact(existing.Type, existing.Amount).Neg()); err != nil {
				return err
			}
		}
		return st.DeleteEntry(ctx, id)
	})
}

// ListEntries returns the ledger newest first, each entry decorated with its
// allocations and the names of the commitments they fund.
func (s *service) ListEntries(ctx context.Context) ([]EntryView, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	allocs, err := s.store.ListAllocations(ctx)
	if err != nil {
		return nil, err
	}
	commitments, err := s.store.ListCommitments(ctx, budget.CommitmentFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(commitments))
	for _, c := range commitments {
		names[c.ID] = c.Name
	}
	byEntry := make(map[uuid.UUID][]AllocationView)
	for _, a := range allocs {
		byEntry[a.EntryID] = append(byEntry[a.EntryID], AllocationView{Allocation: a, CommitmentName: names[a.CommitmentID]})
	}
	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, EntryView{Entry: e, Allocations: byEntry[e.ID]})
	}
	return views, nil
}

// validateAllocations enforces the request-shape rules: every amount
// positive, and the sum equal to the entry total within epsilon. An empty
// set is a valid unallocated transaction.
func validateAllocations(allocs []AllocationInput, total decimal.Decimal) error {
	if len(allocs) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, a := range allocs {
		if a.CommitmentID == uuid.Nil || a.DueDate.IsZero() {
			return fmt.Errorf("%w: allocation commitment_id and due_date required", errs.ErrInvalid)
		}
		if !a.Amount.IsPositive() {
			return fmt.Errorf("%w: each allocation amount must be greater than 0", errs.ErrInvalid)
		}
		sum = sum.Add(a.Amount)
	}
	if !budget.ApproxEqual(sum, total) {
		return fmt.Errorf("%w: allocation total (%s) must equal transaction amount (%s)",
			errs.ErrInvalid, sum.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

// applyAllocations resolves each target envelope, rejects any request that
// exceeds the envelope's remaining amount, records the allocation rows, and
// recomputes funded status. Must run inside a transaction.
func (s *service) applyAllocations(ctx context.Context, st budget.Store, entryID uuid.UUID, allocs []AllocationInput) error {
	for _, in := range allocs {
		c, err := st.GetCommitment(ctx, in.CommitmentID)
		if err != nil {
			return fmt.Errorf("commitment %s: %w", in.CommitmentID, err)
		}
		inst, err := s.ensure(ctx, st, c.ID, in.DueDate, c.Amount)
		if err != nil {
			return err
		}
		remaining := inst.Remaining()
		if budget.Exceeds(in.Amount, remaining) {
			return fmt.Errorf("%w: allocation of %s exceeds remaining %s for %s",
				errs.ErrUnprocessable, in.Amount.StringFixed(2), remaining.StringFixed(2), c.Name)
		}
		if err := st.CreateAllocation(ctx, budget.Allocation{
			ID:           uuid.New(),
			EntryID:      entryID,
			InstanceID:   inst.ID,
			CommitmentID: c.ID,
			Amount:       in.Amount,
			Note:         in.Note,
			CreatedAt:    s.now(),
		}); err != nil {
			return err
		}
		inst.Allocated = inst.Allocated.Add(in.Amount)
		inst.Status = fundedStatus(inst.Allocated, inst.Planned)
		if err := st.UpdateInstance(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

// reverseAllocations undoes every allocation of a ledger entry: each
// touched instance loses the allocated amount (floored at zero) and is
// forced back to open. Reversal always reopens; re-application, if any,
// re-derives fundedness afterwards. Must run inside a transaction.
func (s *service) reverseAllocations(ctx context.Context, st budget.Store, entryID uuid.UUID) error {
	allocs, err := st.AllocationsByEntry(ctx, entryID)
	if err != nil {
		return err
	}
	for _, a := range allocs {
		inst, err := st.InstanceByID(ctx, a.InstanceID)
		if err != nil {
			return err
		}
		inst.Allocated = inst.Allocated.Sub(a.Amount)
		if inst.Allocated.IsNegative() {
			inst.Allocated = decimal.Zero
		}
		inst.Status = budget.StatusOpen
		if err := st.UpdateInstance(ctx, inst); err != nil {
			return err
		}
	}
	return st.DeleteAllocationsByEntry(ctx, entryID)
}

// applyImpact shifts an account balance by delta.
func (s *service) applyImpact(ctx context.Context, st budget.Store, accountID uuid.UUID, delta decimal.Decimal) error {
	acc, err := st.GetAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("account %s: %w", accountID, err)
	}
	acc.Balance = acc.Balance.Add(delta)
	acc.UpdatedAt = s.now()
	return st.UpdateAccount(ctx, acc)
}

// impact is the signed effect of an entry on its account.
func impact(t budget.EntryType, amount decimal.Decimal) decimal.Decimal {
	if t == budget.EntryIncome {
		return amount
	}
	return amount.Neg()
}
