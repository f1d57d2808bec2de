package forecast

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
)

func decimalFromInt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// snapshot is one consistent read of everything the simulator needs.
type snapshot struct {
	accounts    []budget.Account
	commitments []budget.Commitment
	instances   map[instanceKey]budget.Instance
}

type instanceKey struct {
	commitmentID uuid.UUID
	due          string
}

// Project walks day by day from today through today+days, starting from the
// sum of non-reserve account balances and applying the net effect of every
// occurrence on its due date and every later date. simulateEarly pulls the
// listed one-time commitments to today as a what-if; recurring commitments
// ignore it.
func (s *service) Project(ctx context.Context, days int, simulateEarly []uuid.UUID) ([]budget.ProjectionDay, error) {
	var out []budget.ProjectionDay
	err := s.store.InTx(ctx, func(st budget.Store) error {
		snap, err := s.load(ctx, st)
		if err != nil {
			return err
		}
		out = s.project(snap, days, simulateEarly)
		return nil
	})
	return out, err
}

func (s *service) load(ctx context.Context, st budget.Store) (snapshot, error) {
	accounts, err := st.ListAccounts(ctx)
	if err != nil {
		return snapshot{}, err
	}
	commitments, err := st.ListCommitments(ctx, budget.CommitmentFilter{ActiveOnly: true})
	if err != nil {
		return snapshot{}, err
	}
	instances, err := st.ListInstances(ctx, budget.InstanceFilter{})
	if err != nil {
		return snapshot{}, err
	}
	byKey := make(map[instanceKey]budget.Instance, len(instances))
	for _, inst := range instances {
		byKey[instanceKey{inst.CommitmentID, inst.DueDate.String()}] = inst
	}
	return snapshot{accounts: accounts, commitments: commitments, instances: byKey}, nil
}

func (s *service) project(snap snapshot, days int, simulateEarly []uuid.UUID) []budget.ProjectionDay {
	today := s.today()
	end := today.AddDays(days)

	simulated := make(map[uuid.UUID]struct{}, len(simulateEarly))
	for _, id := range simulateEarly {
		simulated[id] = struct{}{}
	}

	seed := decimal.Zero
	for _, a := range snap.accounts {
		if !a.Reserve {
			seed = seed.Add(a.Balance)
		}
	}

	out := make([]budget.ProjectionDay, days+1)
	for i := range out {
		out[i] = budget.ProjectionDay{Date: today.AddDays(i), Balance: seed, Occurrences: []budget.Occurrence{}}
	}

	for _, c := range snap.commitments {
		if c.Paid && c.Recurrence.IsNone() {
			continue
		}
		_, isSimulated := simulated[c.ID]
		isSimulated = isSimulated && c.Recurrence.IsNone()

		var occurrences []budget.Date
		var overdue *budget.Date
		if isSimulated {
			occurrences = []budget.Date{today}
		} else {
			occurrences = c.Recurrence.Expand(c.DueDate, today, end)
			// An unfunded past-due anchor shows up immediately, pinned to
			// today, not on its stale historical date.
			if c.DueDate.Before(today) {
				inst, ok := snap.instances[instanceKey{c.ID, c.DueDate.String()}]
				if !ok || inst.Status != budget.StatusFunded {
					anchor := c.DueDate
					overdue = &anchor
					occurrences = append([]budget.Date{today}, occurrences...)
				}
			}
		}

		for _, occ := range occurrences {
			idx := today.DaysUntil(occ)
			if idx < 0 || idx > days {
				continue
			}
			// The pinned overdue occurrence funds its original envelope.
			lookup := occ
			if overdue != nil && occ.Equal(today) {
				lookup = *overdue
			}
			effective := c.Amount
			if inst, ok := snap.instances[instanceKey{c.ID, lookup.String()}]; ok {
				if inst.Status == budget.StatusFunded {
					continue
				}
				effective = inst.Remaining()
				if !budget.Exceeds(effective, decimal.Zero) {
					continue
				}
			}

			name := c.Name
			if isSimulated {
				name += " (simulated)"
			}
			out[idx].Occurrences = append(out[idx].Occurrences, budget.Occurrence{
				Name:      name,
				Amount:    effective,
				Direction: c.Direction,
				Priority:  c.Priority,
			})

			delta := effective
			if c.Direction == budget.DirectionBill {
				delta = delta.Neg()
			}
			for i := idx; i <= days; i++ {
				out[i].Balance = out[i].Balance.Add(delta)
			}
		}
	}
	return out
}
