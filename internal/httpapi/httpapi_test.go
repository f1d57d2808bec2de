package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type acctResp struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
	Reserve bool   `json:"is_reserve"`
}

type commitmentResp struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Direction  string `json:"direction"`
	Amount     string `json:"amount"`
	DueDate    string `json:"due_date"`
	Recurrence string `json:"recurrence"`
	Active     bool   `json:"active"`
	Paid       bool   `json:"paid"`
}

type instResp struct {
	ID             string `json:"id"`
	CommitmentID   string `json:"commitment_id"`
	CommitmentName string `json:"commitment_name"`
	DueDate        string `json:"due_date"`
	Planned        string `json:"planned_amount"`
	Allocated      string `json:"allocated_amount"`
	Remaining      string `json:"remaining"`
	Status         string `json:"status"`
}

type entryResp struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Allocations []struct {
		CommitmentID   string `json:"commitment_id"`
		CommitmentName string `json:"commitment_name"`
		Amount         string `json:"amount"`
	} `json:"allocations"`
}

type errResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func setup(t *testing.T) (*memory.Store, http.Handler) {
	t.Helper()
	store := memory.New()
	return store, New(store, testLogger()).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func createAccount(t *testing.T, h http.Handler, balance string) acctResp {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/v1/accounts", map[string]any{
		"name": "Main Checking", "type": "checking", "balance": balance,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: %d: %s", rec.Code, rec.Body.String())
	}
	return decode[acctResp](t, rec)
}

func createCommitment(t *testing.T, h http.Handler, body map[string]any) commitmentResp {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/v1/commitments", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create commitment: %d: %s", rec.Code, rec.Body.String())
	}
	return decode[commitmentResp](t, rec)
}

func TestAccounts_CRUD(t *testing.T) {
	_, h := setup(t)

	acc := createAccount(t, h, "1200.50")
	if acc.Type != "checking" || acc.Balance != "1200.50" {
		t.Fatalf("unexpected account: %+v", acc)
	}

	rec := do(t, h, http.MethodGet, "/v1/accounts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	if got := decode[[]acctResp](t, rec); len(got) != 1 {
		t.Fatalf("got %d accounts, want 1", len(got))
	}

	rec = do(t, h, http.MethodPatch, "/v1/accounts/"+acc.ID, map[string]any{"name": "Joint Checking"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[acctResp](t, rec); got.Name != "Joint Checking" {
		t.Fatalf("rename not applied: %+v", got)
	}

	rec = do(t, h, http.MethodPost, "/v1/accounts/"+acc.ID+"/reconcile", map[string]any{"actual_balance": "1187.22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reconcile: %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[acctResp](t, rec); got.Balance != "1187.22" {
		t.Fatalf("reconcile balance %s, want 1187.22", got.Balance)
	}

	rec = do(t, h, http.MethodDelete, "/v1/accounts/"+acc.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/accounts/"+acc.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", rec.Code)
	}
	if er := decode[errResp](t, rec); er.Code != "not_found" {
		t.Fatalf("error code %q, want not_found", er.Code)
	}
}

func TestCommitments_Validation(t *testing.T) {
	_, h := setup(t)

	rec := do(t, h, http.MethodPost, "/v1/commitments", map[string]any{
		"name": "Rent", "direction": "sideways", "amount": "100", "due_date": "2030-01-01",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad direction: %d: %s", rec.Code, rec.Body.String())
	}
	if er := decode[errResp](t, rec); er.Code != "invalid" {
		t.Fatalf("error code %q, want invalid", er.Code)
	}

	// Unknown fields are rejected at the decoder.
	rec = do(t, h, http.MethodPost, "/v1/accounts", map[string]any{"name": "x", "type": "checking", "bogus": true})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: %d", rec.Code)
	}
}

func TestCommitments_PayAdvancesDueDate(t *testing.T) {
	_, h := setup(t)
	acc := createAccount(t, h, "3000")

	due := budget.Today().AddDays(3)
	c := createCommitment(t, h, map[string]any{
		"name": "Rent", "direction": "bill", "amount": "1200",
		"due_date": due.String(), "recurrence": "monthly", "priority": "critical",
		"account_id": acc.ID,
	})
	if c.Recurrence != "monthly" || !c.Active {
		t.Fatalf("unexpected commitment: %+v", c)
	}

	rec := do(t, h, http.MethodPost, "/v1/commitments/"+c.ID+"/pay", map[string]any{"actual_amount": "1200"})
	if rec.Code != http.StatusOK {
		t.Fatalf("pay: %d: %s", rec.Code, rec.Body.String())
	}
	paid := decode[commitmentResp](t, rec)
	if paid.DueDate != due.AddMonths(1).String() {
		t.Fatalf("due date %s, want advanced %s", paid.DueDate, due.AddMonths(1))
	}
	if paid.Paid {
		t.Fatal("recurring commitment reported terminally paid")
	}

	rec = do(t, h, http.MethodGet, "/v1/commitments/"+c.ID+"/payments", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("payments: %d", rec.Code)
	}
	payments := decode[[]map[string]any](t, rec)
	if len(payments) != 1 {
		t.Fatalf("got %d payments, want 1", len(payments))
	}

	// The ledger got the payment entry too.
	rec = do(t, h, http.MethodGet, "/v1/ledger", nil)
	entries := decode[[]entryResp](t, rec)
	if len(entries) != 1 || entries[0].Description != "Rent" {
		t.Fatalf("ledger %+v, want the Rent payment", entries)
	}
}

func TestLedger_AllocationFlow(t *testing.T) {
	_, h := setup(t)
	acc := createAccount(t, h, "2000")
	due := budget.Today().AddDays(5)
	c := createCommitment(t, h, map[string]any{
		"name": "Electricity", "direction": "bill", "amount": "100",
		"due_date": due.String(), "recurrence": "monthly", "account_id": acc.ID,
	})

	rec := do(t, h, http.MethodGet, "/v1/instances", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("instances: %d", rec.Code)
	}
	instances := decode[[]instResp](t, rec)
	if len(instances) != 1 || instances[0].Status != "open" || instances[0].Remaining != "100" {
		t.Fatalf("instances %+v", instances)
	}

	rec = do(t, h, http.MethodPost, "/v1/ledger", map[string]any{
		"description": "set aside for power", "amount": "60", "type": "expense",
		"account_id": acc.ID, "allocations": []map[string]any{
			{"commitment_id": c.ID, "due_date": due.String(), "amount": "60"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post entry: %d: %s", rec.Code, rec.Body.String())
	}

	// 50 > the 40 remaining: the whole entry is refused.
	rec = do(t, h, http.MethodPost, "/v1/ledger", map[string]any{
		"description": "too much", "amount": "50", "type": "expense",
		"account_id": acc.ID, "allocations": []map[string]any{
			{"commitment_id": c.ID, "due_date": due.String(), "amount": "50"},
		},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overallocation: %d: %s", rec.Code, rec.Body.String())
	}
	if er := decode[errResp](t, rec); er.Code != "unprocessable" {
		t.Fatalf("error code %q, want unprocessable", er.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/ledger", nil)
	entries := decode[[]entryResp](t, rec)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want only the accepted one", len(entries))
	}
	if len(entries[0].Allocations) != 1 || entries[0].Allocations[0].CommitmentName != "Electricity" {
		t.Fatalf("allocations %+v", entries[0].Allocations)
	}

	// Exact fill flips the envelope to funded.
	rec = do(t, h, http.MethodPost, "/v1/ledger", map[string]any{
		"description": "top up", "amount": "40", "type": "expense",
		"account_id": acc.ID, "allocations": []map[string]any{
			{"commitment_id": c.ID, "due_date": due.String(), "amount": "40"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("top up: %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/v1/instances?until="+due.String(), nil)
	instances = decode[[]instResp](t, rec)
	if len(instances) != 1 || instances[0].Status != "funded" {
		t.Fatalf("instances after fill %+v, want funded", instances)
	}
}

func TestInstances_SetPlanned(t *testing.T) {
	_, h := setup(t)
	acc := createAccount(t, h, "500")
	due := budget.Today().AddDays(2)
	c := createCommitment(t, h, map[string]any{
		"name": "Groceries", "direction": "bill", "amount": "120",
		"due_date": due.String(), "recurrence": "weekly", "account_id": acc.ID,
	})

	rec := do(t, h, http.MethodPut, "/v1/instances/planned", map[string]any{
		"commitment_id": c.ID, "due_date": due.String(), "planned_amount": "90",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("set planned: %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/instances", nil)
	instances := decode[[]instResp](t, rec)
	if len(instances) == 0 || instances[0].Planned != "90" {
		t.Fatalf("instances %+v, want edited planned 90", instances)
	}
}

func TestProjectionsAndAlerts(t *testing.T) {
	_, h := setup(t)
	acc := createAccount(t, h, "300")
	createCommitment(t, h, map[string]any{
		"name": "Rent", "direction": "bill", "amount": "900",
		"due_date": budget.Today().AddDays(3).String(), "recurrence": "monthly",
		"priority": "critical", "account_id": acc.ID,
	})

	rec := do(t, h, http.MethodGet, "/v1/projections?days=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("projections: %d: %s", rec.Code, rec.Body.String())
	}
	days := decode[[]map[string]any](t, rec)
	if len(days) != 8 {
		t.Fatalf("got %d days, want 8 (today inclusive)", len(days))
	}

	rec = do(t, h, http.MethodGet, "/v1/projections?days=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("days=0: %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/alerts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("alerts: %d", rec.Code)
	}
	alerts := decode[[]map[string]any](t, rec)
	found := false
	for _, a := range alerts {
		if a["severity"] == "critical" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no critical alert for a projected negative balance: %+v", alerts)
	}
}

func TestSeedAndReset(t *testing.T) {
	_, h := setup(t)

	rec := do(t, h, http.MethodPost, "/v1/seed", map[string]any{"checking_balance": "2500"})
	if rec.Code != http.StatusOK {
		t.Fatalf("seed: %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/commitments", nil)
	commitments := decode[[]commitmentResp](t, rec)
	if len(commitments) == 0 {
		t.Fatal("seed created no commitments")
	}
	haveIncome := false
	for _, c := range commitments {
		if c.Direction == "income" {
			haveIncome = true
		}
	}
	if !haveIncome {
		t.Fatal("seed data has no paycheck")
	}

	rec = do(t, h, http.MethodGet, "/v1/accounts", nil)
	accounts := decode[[]acctResp](t, rec)
	if len(accounts) != 1 || accounts[0].Balance != "2500" {
		t.Fatalf("accounts after seed %+v", accounts)
	}

	rec = do(t, h, http.MethodPost, "/v1/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/commitments", nil)
	if got := decode[[]commitmentResp](t, rec); len(got) != 0 {
		t.Fatalf("%d commitments survived reset", len(got))
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, h := setup(t)
	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
}
