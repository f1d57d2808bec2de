package forecast

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/storage/memory"
)

var testNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*memory.Store, Service) {
	t.Helper()
	st := memory.New()
	svc := New(st, WithClock(func() time.Time { return testNow }))
	return st, svc
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func mkAccount(t *testing.T, st *memory.Store, balance string, reserve bool) budget.Account {
	t.Helper()
	acc := budget.Account{
		ID:        uuid.New(),
		Name:      "Checking",
		Type:      budget.AccountChecking,
		Balance:   dec(t, balance),
		Reserve:   reserve,
		UpdatedAt: testNow,
	}
	if err := st.CreateAccount(context.Background(), acc); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acc
}

func mkCommitment(t *testing.T, st *memory.Store, c budget.Commitment) budget.Commitment {
	t.Helper()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Priority == "" {
		c.Priority = budget.PriorityNormal
	}
	c.Active = true
	c.CreatedAt = testNow
	if err := st.CreateCommitment(context.Background(), c); err != nil {
		t.Fatalf("create commitment: %v", err)
	}
	return c
}

func day(offset int) budget.Date {
	return budget.DateOf(testNow).AddDays(offset)
}

func TestProjectOneTimeBill(t *testing.T) {
	st, svc := setup(t)
	mkAccount(t, st, "5000", false)
	mkCommitment(t, st, budget.Commitment{
		Name:      "Rent",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "1850"),
		DueDate:   day(5),
	})

	days, err := svc.Project(context.Background(), 14, nil)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(days) != 15 {
		t.Fatalf("got %d days, want 15", len(days))
	}
	for i := 0; i < 5; i++ {
		if !days[i].Balance.Equal(dec(t, "5000")) {
			t.Fatalf("day %d balance %s, want untouched 5000", i, days[i].Balance)
		}
	}
	for i := 5; i <= 14; i++ {
		if !days[i].Balance.Equal(dec(t, "3150")) {
			t.Fatalf("day %d balance %s, want 3150", i, days[i].Balance)
		}
	}
	if len(days[5].Occurrences) != 1 || days[5].Occurrences[0].Name != "Rent" {
		t.Fatalf("day 5 occurrences %+v, want Rent", days[5].Occurrences)
	}
}

func TestProjectOverduePinnedToToday(t *testing.T) {
	st, svc := setup(t)
	mkAccount(t, st, "3420.50", false)
	mkCommitment(t, st, budget.Commitment{
		Name:      "Car Insurance",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "350"),
		DueDate:   day(-12),
		Priority:  budget.PriorityCritical,
	})

	days, err := svc.Project(context.Background(), 14, nil)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if !days[0].Balance.Equal(dec(t, "3070.50")) {
		t.Fatalf("day 0 balance %s, want overdue debit applied today (3070.50)", days[0].Balance)
	}
	if len(days[0].Occurrences) != 1 || days[0].Occurrences[0].Name != "Car Insurance" {
		t.Fatalf("day 0 occurrences %+v", days[0].Occurrences)
	}
}

func TestProjectSkipsFundedAndUsesRemaining(t *testing.T) {
	st, svc := setup(t)
	ctx := context.Background()
	mkAccount(t, st, "1000", false)
	funded := mkCommitment(t, st, budget.Commitment{
		Name:      "Internet",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "80"),
		DueDate:   day(3),
	})
	partial := mkCommitment(t, st, budget.Commitment{
		Name:      "Electricity",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "100"),
		DueDate:   day(6),
	})
	if _, err := st.UpsertInstance(ctx, budget.Instance{
		ID: uuid.New(), CommitmentID: funded.ID, DueDate: funded.DueDate,
		Planned: dec(t, "80"), Allocated: dec(t, "80"), Status: budget.StatusFunded, CreatedAt: testNow,
	}); err != nil {
		t.Fatalf("upsert funded: %v", err)
	}
	if _, err := st.UpsertInstance(ctx, budget.Instance{
		ID: uuid.New(), CommitmentID: partial.ID, DueDate: partial.DueDate,
		Planned: dec(t, "100"), Allocated: dec(t, "40"), Status: budget.StatusOpen, CreatedAt: testNow,
	}); err != nil {
		t.Fatalf("upsert partial: %v", err)
	}

	days, err := svc.Project(ctx, 14, nil)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(days[3].Occurrences) != 0 {
		t.Fatalf("funded bill still projected: %+v", days[3].Occurrences)
	}
	// Only the unfunded remainder of the partial envelope hits the balance.
	if !days[14].Balance.Equal(dec(t, "940")) {
		t.Fatalf("final balance %s, want 940 (only 60 remaining debited)", days[14].Balance)
	}
	if len(days[6].Occurrences) != 1 || !days[6].Occurrences[0].Amount.Equal(dec(t, "60")) {
		t.Fatalf("day 6 occurrences %+v, want Electricity 60", days[6].Occurrences)
	}
}

func TestProjectIncomeAndReserveAccounts(t *testing.T) {
	st, svc := setup(t)
	mkAccount(t, st, "200", false)
	mkAccount(t, st, "9000", true) // reserve savings never seeds the projection
	mkCommitment(t, st, budget.Commitment{
		Name:       "Paycheck",
		Direction:  budget.DirectionIncome,
		Amount:     dec(t, "2000"),
		DueDate:    day(4),
		Recurrence: budget.Recurrence{Kind: budget.RecurBiweekly},
	})

	days, err := svc.Project(context.Background(), 14, nil)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if !days[0].Balance.Equal(dec(t, "200")) {
		t.Fatalf("day 0 balance %s, want 200 without reserve funds", days[0].Balance)
	}
	if !days[4].Balance.Equal(dec(t, "2200")) {
		t.Fatalf("day 4 balance %s, want 2200 after paycheck", days[4].Balance)
	}
	if !days[14].Balance.Equal(dec(t, "2200")) {
		t.Fatalf("day 14 balance %s, want 2200 (next paycheck outside window)", days[14].Balance)
	}
}

func TestProjectSimulateEarly(t *testing.T) {
	st, svc := setup(t)
	ctx := context.Background()
	mkAccount(t, st, "3000", false)
	oneTime := mkCommitment(t, st, budget.Commitment{
		Name:      "Deposit",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "500"),
		DueDate:   day(10),
	})
	recurring := mkCommitment(t, st, budget.Commitment{
		Name:       "Rent",
		Direction:  budget.DirectionBill,
		Amount:     dec(t, "1000"),
		DueDate:    day(10),
		Recurrence: budget.Recurrence{Kind: budget.RecurMonthly},
	})

	days, err := svc.Project(ctx, 14, []uuid.UUID{oneTime.ID, recurring.ID})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	var names []string
	for _, occ := range days[0].Occurrences {
		names = append(names, occ.Name)
	}
	if len(names) != 1 || names[0] != "Deposit (simulated)" {
		t.Fatalf("day 0 occurrences %v, want only the simulated one-time", names)
	}
	// The recurring bill stays on its real date.
	if len(days[10].Occurrences) != 1 || days[10].Occurrences[0].Name != "Rent" {
		t.Fatalf("day 10 occurrences %+v, want Rent", days[10].Occurrences)
	}
	if !days[0].Balance.Equal(dec(t, "2500")) {
		t.Fatalf("day 0 balance %s, want 2500", days[0].Balance)
	}
}

func TestAlertsOverdueCritical(t *testing.T) {
	st, svc := setup(t)
	mkAccount(t, st, "3420.50", false)
	mkCommitment(t, st, budget.Commitment{
		Name:      "Car Insurance",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "350"),
		DueDate:   day(-12),
		Priority:  budget.PriorityCritical,
	})

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	want := "Overdue critical bill: Car Insurance ($350.00 remaining)"
	if !hasAlert(alerts, budget.SeverityCritical, want) {
		t.Fatalf("missing %q in %+v", want, alerts)
	}
}

func TestAlertsNegativeProjection(t *testing.T) {
	st, svc := setup(t)
	mkAccount(t, st, "100", false)
	mkCommitment(t, st, budget.Commitment{
		Name:      "Rent",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "900"),
		DueDate:   day(3),
		Priority:  budget.PriorityCritical,
	})

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) == 0 {
		t.Fatal("no alerts")
	}
	first := alerts[0]
	if first.Severity != budget.SeverityCritical || !strings.Contains(first.Message, "goes negative ($-800.00)") {
		t.Fatalf("first alert %+v, want negative-balance critical", first)
	}
	if !strings.Contains(first.Message, day(3).String()) {
		t.Fatalf("alert %q does not name the first negative day %s", first.Message, day(3))
	}
}

func TestAlertsDueSoonRespectsAutopay(t *testing.T) {
	st, svc := setup(t)
	mkAccount(t, st, "5000", false)
	mkCommitment(t, st, budget.Commitment{
		Name:      "Water",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "60"),
		DueDate:   day(1),
	})
	mkCommitment(t, st, budget.Commitment{
		Name:      "Streaming",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "15"),
		DueDate:   day(1),
		Autopay:   true,
	})

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if !hasAlert(alerts, budget.SeverityCritical, "Water ($60.00 remaining) due within 48 hours") {
		t.Fatalf("missing due-soon alert in %+v", alerts)
	}
	for _, a := range alerts {
		if strings.Contains(a.Message, "Streaming") && strings.Contains(a.Message, "due within") {
			t.Fatalf("autopay bill raised a due-soon alert: %+v", a)
		}
	}
}

func TestAlertsBufferWarning(t *testing.T) {
	st, svc := setup(t)
	mkAccount(t, st, "600", false)
	mkCommitment(t, st, budget.Commitment{
		Name:      "Groceries",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "200"),
		DueDate:   day(3),
		Autopay:   true,
	})

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	found := false
	for _, a := range alerts {
		if a.Severity == budget.SeverityWarning && strings.Contains(a.Message, "below $500 buffer") {
			found = true
			if !strings.Contains(a.Message, day(3).String()) {
				t.Fatalf("buffer alert %q does not name the breach day %s", a.Message, day(3))
			}
		}
	}
	if !found {
		t.Fatalf("missing buffer warning in %+v", alerts)
	}
}

func TestAlertsUpcomingDigest(t *testing.T) {
	st, svc := setup(t)
	mkAccount(t, st, "5000", false)
	mkCommitment(t, st, budget.Commitment{
		Name:      "Internet",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "80"),
		DueDate:   day(2),
		Autopay:   true,
	})
	mkCommitment(t, st, budget.Commitment{
		Name:      "Gym",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "40"),
		DueDate:   day(6), // beyond the 4-day digest
		Autopay:   true,
	})

	alerts, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	wantMsg := day(2).String() + ": Internet ($80.00)"
	if !hasAlert(alerts, budget.SeverityInfo, wantMsg) {
		t.Fatalf("missing digest %q in %+v", wantMsg, alerts)
	}
	for _, a := range alerts {
		if strings.Contains(a.Message, "Gym") {
			t.Fatalf("day-6 bill leaked into the 4-day digest: %+v", a)
		}
	}
}

func TestAlertsSkipFundedInstances(t *testing.T) {
	st, svc := setup(t)
	ctx := context.Background()
	mkAccount(t, st, "5000", false)
	c := mkCommitment(t, st, budget.Commitment{
		Name:      "Electricity",
		Direction: budget.DirectionBill,
		Amount:    dec(t, "350"),
		DueDate:   day(1),
		Priority:  budget.PriorityCritical,
	})
	if _, err := st.UpsertInstance(ctx, budget.Instance{
		ID: uuid.New(), CommitmentID: c.ID, DueDate: c.DueDate,
		Planned: dec(t, "350"), Allocated: dec(t, "350"), Status: budget.StatusFunded, CreatedAt: testNow,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	alerts, err := svc.Alerts(ctx)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	for _, a := range alerts {
		if strings.Contains(a.Message, "due within") || strings.Contains(a.Message, "Overdue") {
			t.Fatalf("funded bill still alerted: %+v", a)
		}
	}
}

func hasAlert(alerts []budget.Alert, sev budget.AlertSeverity, msg string) bool {
	for _, a := range alerts {
		if a.Severity == sev && a.Message == msg {
			return true
		}
	}
	return false
}
