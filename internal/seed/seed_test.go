package seed

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/storage/memory"
)

func TestLoadAndReset(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	if err := Load(ctx, st, decimal.NewFromInt(2500)); err != nil {
		t.Fatalf("load: %v", err)
	}

	accounts, err := st.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(accounts) != 1 || !accounts[0].Balance.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("accounts %+v, want one checking at 2500", accounts)
	}

	commitments, err := st.ListCommitments(ctx, budget.CommitmentFilter{})
	if err != nil {
		t.Fatalf("commitments: %v", err)
	}
	if len(commitments) != len(demoBills)+1 {
		t.Fatalf("got %d commitments, want %d bills plus a paycheck", len(commitments), len(demoBills))
	}
	today := budget.Today()
	incomes := 0
	for _, c := range commitments {
		if !c.Active {
			t.Fatalf("%s seeded inactive", c.Name)
		}
		if c.DueDate.Before(today) {
			t.Fatalf("%s seeded already overdue (%s)", c.Name, c.DueDate)
		}
		if c.Direction == budget.DirectionIncome {
			incomes++
			if c.Recurrence.Kind != budget.RecurBiweekly {
				t.Fatalf("paycheck recurrence %+v", c.Recurrence)
			}
		}
	}
	if incomes != 1 {
		t.Fatalf("got %d income commitments, want 1", incomes)
	}

	// Loading again replaces rather than appends.
	if err := Load(ctx, st, decimal.Zero); err != nil {
		t.Fatalf("reload: %v", err)
	}
	commitments, err = st.ListCommitments(ctx, budget.CommitmentFilter{})
	if err != nil {
		t.Fatalf("commitments: %v", err)
	}
	if len(commitments) != len(demoBills)+1 {
		t.Fatalf("reload duplicated data: %d commitments", len(commitments))
	}

	if err := Reset(ctx, st); err != nil {
		t.Fatalf("reset: %v", err)
	}
	accounts, err = st.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	commitments, err = st.ListCommitments(ctx, budget.CommitmentFilter{})
	if err != nil {
		t.Fatalf("commitments: %v", err)
	}
	if len(accounts) != 0 || len(commitments) != 0 {
		t.Fatalf("reset left %d accounts, %d commitments", len(accounts), len(commitments))
	}
}

func TestNextDueDateClamps(t *testing.T) {
	// Day already past this month rolls to next month.
	got := nextDueDate(budget.NewDate(2024, time.March, 20), 3)
	if !got.Equal(budget.NewDate(2024, time.April, 3)) {
		t.Fatalf("got %s, want 2024-04-03", got)
	}
	// Day still ahead stays in the current month.
	got = nextDueDate(budget.NewDate(2024, time.March, 2), 3)
	if !got.Equal(budget.NewDate(2024, time.March, 3)) {
		t.Fatalf("got %s, want 2024-03-03", got)
	}
	// A day the next month doesn't have clamps to its last day.
	got = nextDueDate(budget.NewDate(2024, time.January, 31), 31)
	if !got.Equal(budget.NewDate(2024, time.January, 31)) {
		t.Fatalf("got %s, want 2024-01-31", got)
	}
	got = nextDueDate(budget.NewDate(2024, time.February, 1), 31)
	if !got.Equal(budget.NewDate(2024, time.February, 29)) {
		t.Fatalf("got %s, want 2024-02-29", got)
	}
}
