// Package seed loads a demo household dataset: one checking account, a
// stack of recurring bills, and a biweekly paycheck. Useful for trying the
// planner out without entering everything by hand.
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
)

type demoBill struct {
	name       string
	amount     int64
	dueDay     int
	recurrence budget.RecurrenceKind
	priority   budget.Priority
	autopay    bool
}

var demoBills = []demoBill{
	{"Rent + Utilities Bundle", 2500, 3, budget.RecurMonthly, budget.PriorityCritical, false},
	{"Electricity", 350, 2, budget.RecurMonthly, budget.PriorityCritical, false},
	{"Internet", 100, 23, budget.RecurMonthly, budget.PriorityNormal, true},
	{"Car Note (VW)", 370, 14, budget.RecurMonthly, budget.PriorityCritical, true},
	{"T-Mobile (Nela)", 120, 21, budget.RecurMonthly, budget.PriorityNormal, true},
	{"Apple One", 38, 25, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"YouTube Premium", 36, 28, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"ChatGPT (Tony)", 20, 8, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"ChatGPT (Nela)", 20, 22, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"Disney + Hulu", 20, 13, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"Discord", 6, 9, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"Furbo", 7, 17, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"Ring", 10, 2, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"Nintendo", 5, 12, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"Luca iPad Game", 7, 9, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"Lucy Roblox", 8, 27, budget.RecurMonthly, budget.PriorityFlexible, true},
	{"Luca's Groceries", 60, 22, budget.RecurWeekly, budget.PriorityNormal, false},
	{"Groceries", 100, 22, budget.RecurWeekly, budget.PriorityNormal, false},
	{"Niko's Food", 55, 22, budget.RecurBiweekly, budget.PriorityNormal, false},
	{"Artemis' Food", 25, 27, budget.RecurBiweekly, budget.PriorityNormal, false},
	{"Gas", 30, 28, budget.RecurBiweekly, budget.PriorityNormal, false},
}

// Load wipes the store and fills it with the demo dataset. The checking
// account starts at the given balance.
func Load(ctx context.Context, store budget.TxStore, checkingBalance decimal.Decimal) error {
	return store.InTx(ctx, func(st budget.Store) error {
		if err := reset(ctx, st); err != nil {
			return err
		}
		now := time.Now().UTC()
		today := budget.Today()

		checking := budget.Account{
			ID:        uuid.New(),
			Name:      "Main Checking",
			Type:      budget.AccountChecking,
			Balance:   checkingBalance,
			Reserve:   false,
			UpdatedAt: now,
		}
		if err := st.CreateAccount(ctx, checking); err != nil {
			return err
		}

		for _, b := range demoBills {
			c := budget.Commitment{
				ID:         uuid.New(),
				Name:       b.name,
				Direction:  budget.DirectionBill,
				Amount:     decimal.NewFromInt(b.amount),
				DueDate:    nextDueDate(today, b.dueDay),
				Recurrence: budget.Recurrence{Kind: b.recurrence},
				Priority:   b.priority,
				Autopay:    b.autopay,
				AccountID:  &checking.ID,
				Active:     true,
				CreatedAt:  now,
			}
			if err := st.CreateCommitment(ctx, c); err != nil {
				return err
			}
		}

		paycheck := budget.Commitment{
			ID:         uuid.New(),
			Name:       "Paycheck",
			Direction:  budget.DirectionIncome,
			Amount:     decimal.NewFromInt(2000),
			DueDate:    nextDueDate(today, 6),
			Recurrence: budget.Recurrence{Kind: budget.RecurBiweekly},
			Priority:   budget.PriorityCritical,
			AccountID:  &checking.ID,
			Active:     true,
			CreatedAt:  now,
		}
		return st.CreateCommitment(ctx, paycheck)
	})
}

// Reset wipes all data without loading anything.
func Reset(ctx context.Context, store budget.TxStore) error {
	return store.InTx(ctx, func(st budget.Store) error {
		return reset(ctx, st)
	})
}

func reset(ctx context.Context, st budget.Store) error {
	entries, err := st.ListEntries(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := st.DeleteAllocationsByEntry(ctx, e.ID); err != nil {
			return err
		}
		if err := st.DeleteEntry(ctx, e.ID); err != nil {
			return err
		}
	}
	commitments, err := st.ListCommitments(ctx, budget.CommitmentFilter{})
	if err != nil {
		return err
	}
	for _, c := range commitments {
		if err := st.DeleteAllocationsByCommitment(ctx, c.ID); err != nil {
			return err
		}
		if err := st.DeleteInstancesByCommitment(ctx, c.ID); err != nil {
			return err
		}
		if err := st.DeletePaymentsByCommitment(ctx, c.ID); err != nil {
			return err
		}
		if err := st.DeleteCommitment(ctx, c.ID); err != nil {
			return err
		}
	}
	accounts, err := st.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if err := st.DeleteAccount(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

// nextDueDate finds the next occurrence of a day-of-month on or after today,
// clamping to short months.
func nextDueDate(today budget.Date, day int) budget.Date {
	y, m, _ := today.Time().Date()
	d := clampedDate(y, m, day)
	if d.Before(today) {
		next := today.AddMonths(1)
		ny, nm, _ := next.Time().Date()
		d = clampedDate(ny, nm, day)
	}
	return d
}

func clampedDate(y int, m time.Month, day int) budget.Date {
	if last := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		day = last
	}
	return budget.NewDate(y, m, day)
}
