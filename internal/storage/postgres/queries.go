package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/errs"
)

// queries implements budget.Store over either the pool or an open transaction.
type queries struct {
	db querier
}

// Accounts

const accountCols = "id, name, type, balance::text, is_reserve, updated_at"

func scanAccount(row pgx.Row) (budget.Account, error) {
	var (
		a       budget.Account
		balance string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &balance, &a.Reserve, &a.UpdatedAt); err != nil {
		return budget.Account{}, mapErr(err)
	}
	var err error
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return budget.Account{}, err
	}
	return a, nil
}

func (q *queries) ListAccounts(ctx context.Context) ([]budget.Account, error) {
	rows, err := q.db.Query(ctx, "select "+accountCols+" from accounts order by name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []budget.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (q *queries) GetAccount(ctx context.Context, id uuid.UUID) (budget.Account, error) {
	return scanAccount(q.db.QueryRow(ctx, "select "+accountCols+" from accounts where id = $1", id))
}

func (q *queries) CreateAccount(ctx context.Context, a budget.Account) error {
	_, err := q.db.Exec(ctx, `
		insert into accounts (id, name, type, balance, is_reserve, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, a.ID, a.Name, string(a.Type), a.Balance.String(), a.Reserve, a.UpdatedAt.UTC())
	return err
}

func (q *queries) UpdateAccount(ctx context.Context, a budget.Account) error {
	tag, err := q.db.Exec(ctx, `
		update accounts set name = $2, type = $3, balance = $4, is_reserve = $5, updated_at = $6
		where id = $1
	`, a.ID, a.Name, string(a.Type), a.Balance.String(), a.Reserve, a.UpdatedAt.UTC())
	return affected(tag, err)
}

func (q *queries) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, "delete from accounts where id = $1", id)
	return affected(tag, err)
}

// Commitments

const commitmentCols = "id, name, direction, amount::text, actual_amount::text, due_date, recurrence, priority, autopay, account_id, active, paid, paid_date, created_at"

func scanCommitment(row pgx.Row) (budget.Commitment, error) {
	var (
		c          budget.Commitment
		amount     string
		actual     *string
		due        time.Time
		recurrence string
		paidDate   *time.Time
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Direction, &amount, &actual, &due, &recurrence, &c.Priority, &c.Autopay, &c.AccountID, &c.Active, &c.Paid, &paidDate, &c.CreatedAt); err != nil {
		return budget.Commitment{}, mapErr(err)
	}
	var err error
	if c.Amount, err = decimal.NewFromString(amount); err != nil {
		return budget.Commitment{}, err
	}
	if actual != nil {
		d, err := decimal.NewFromString(*actual)
		if err != nil {
			return budget.Commitment{}, err
		}
		c.ActualAmount = &d
	}
	c.DueDate = budget.DateOf(due)
	c.Recurrence = budget.ParseRecurrence(recurrence)
	if paidDate != nil {
		pd := budget.DateOf(*paidDate)
		c.PaidDate = &pd
	}
	return c, nil
}

func (q *queries) ListCommitments(ctx context.Context, f budget.CommitmentFilter) ([]budget.Commitment, error) {
	query := "select " + commitmentCols + " from commitments"
	if f.ActiveOnly {
		query += " where active"
	}
	query += " order by due_date, name"
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []budget.Commitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *queries) GetCommitment(ctx context.Context, id uuid.UUID) (budget.Commitment, error) {
	return scanCommitment(q.db.QueryRow(ctx, "select "+commitmentCols+" from commitments where id = $1", id))
}

func (q *queries) CreateCommitment(ctx context.Context, c budget.Commitment) error {
	_, err := q.db.Exec(ctx, `
		insert into commitments (id, name, direction, amount, actual_amount, due_date, recurrence, priority, autopay, account_id, active, paid, paid_date, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, c.ID, c.Name, string(c.Direction), c.Amount.String(), decimalArg(c.ActualAmount), c.DueDate.Time(),
		c.Recurrence.String(), string(c.Priority), c.Autopay, c.AccountID, c.Active, c.Paid,
		dateArg(c.PaidDate), c.CreatedAt.UTC())
	return err
}

func (q *queries) UpdateCommitment(ctx context.Context, c budget.Commitment) error {
	tag, err := q.db.Exec(ctx, `
		update commitments set name = $2, direction = $3, amount = $4, actual_amount = $5, due_date = $6,
			recurrence = $7, priority = $8, autopay = $9, account_id = $10, active = $11, paid = $12, paid_date = $13
		where id = $1
	`, c.ID, c.Name, string(c.Direction), c.Amount.String(), decimalArg(c.ActualAmount), c.DueDate.Time(),
		c.Recurrence.String(), string(c.Priority), c.Autopay, c.AccountID, c.Active, c.Paid, dateArg(c.PaidDate))
	return affected(tag, err)
}

func (q *queries) DeleteCommitment(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, "delete from commitments where id = $1", id)
	return affected(tag, err)
}

// Instances

const instanceCols = "id, commitment_id, due_date, planned::text, allocated::text, status, created_at"

func scanInstance(row pgx.Row) (budget.Instance, error) {
	var (
		i                  budget.Instance
		due                time.Time
		planned, allocated string
	)
	if err := row.Scan(&i.ID, &i.CommitmentID, &due, &planned, &allocated, &i.Status, &i.CreatedAt); err != nil {
		return budget.Instance{}, mapErr(err)
	}
	i.DueDate = budget.DateOf(due)
	var err error
	if i.Planned, err = decimal.NewFromString(planned); err != nil {
		return budget.Instance{}, err
	}
	if i.Allocated, err = decimal.NewFromString(allocated); err != nil {
		return budget.Instance{}, err
	}
	return i, nil
}

func (q *queries) UpsertInstance(ctx context.Context, inst budget.Instance) (budget.Instance, error) {
	existing, err := q.InstanceByKey(ctx, inst.CommitmentID, inst.DueDate)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return budget.Instance{}, err
	}
	if _, err := q.GetCommitment(ctx, inst.CommitmentID); err != nil {
		return budget.Instance{}, err
	}
	_, err = q.db.Exec(ctx, `
		insert into instances (id, commitment_id, due_date, planned, allocated, status, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, inst.ID, inst.CommitmentID, inst.DueDate.Time(), inst.Planned.String(), inst.Allocated.String(),
		string(inst.Status), inst.CreatedAt.UTC())
	if err != nil {
		return budget.Instance{}, err
	}
	return inst, nil
}

func (q *queries) InstanceByID(ctx context.Context, id uuid.UUID) (budget.Instance, error) {
	return scanInstance(q.db.QueryRow(ctx, "select "+instanceCols+" from instances where id = $1", id))
}

func (q *queries) InstanceByKey(ctx context.Context, commitmentID uuid.UUID, due budget.Date) (budget.Instance, error) {
	return scanInstance(q.db.QueryRow(ctx,
		"select "+instanceCols+" from instances where commitment_id = $1 and due_date = $2",
		commitmentID, due.Time()))
}

func (q *queries) UpdateInstance(ctx context.Context, inst budget.Instance) error {
	tag, err := q.db.Exec(ctx, `
		update instances set due_date = $2, planned = $3, allocated = $4, status = $5 where id = $1
	`, inst.ID, inst.DueDate.Time(), inst.Planned.String(), inst.Allocated.String(), string(inst.Status))
	return affected(tag, err)
}

func (q *queries) ListInstances(ctx context.Context, f budget.InstanceFilter) ([]budget.Instance, error) {
	query := "select " + instanceCols + " from instances where true"
	var args []any
	if f.CommitmentID != uuid.Nil {
		args = append(args, f.CommitmentID)
		query += " and commitment_id = $" + itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		query += " and status = $" + itoa(len(args))
	}
	if f.DueOnOrBefore != nil {
		args = append(args, f.DueOnOrBefore.Time())
		query += " and due_date <= $" + itoa(len(args))
	}
	query += " order by due_date"
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []budget.Instance
	for rows.Next() {
		i, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (q *queries) DeleteInstancesByCommitment(ctx context.Context, commitmentID uuid.UUID) error {
	_, err := q.db.Exec(ctx, "delete from instances where commitment_id = $1", commitmentID)
	return err
}

// Entries

const entryCols = "id, date, description, amount::text, type, account_id, commitment_id, created_at"

func scanEntry(row pgx.Row) (budget.Entry, error) {
	var (
		e      budget.Entry
		date   time.Time
		amount string
	)
	if err := row.Scan(&e.ID, &date, &e.Description, &amount, &e.Type, &e.AccountID, &e.CommitmentID, &e.CreatedAt); err != nil {
		return budget.Entry{}, mapErr(err)
	}
	e.Date = budget.DateOf(date)
	var err error
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return budget.Entry{}, err
	}
	return e, nil
}

func (q *queries) ListEntries(ctx context.Context) ([]budget.Entry, error) {
	rows, err := q.db.Query(ctx, "select "+entryCols+" from entries order by date desc, created_at desc")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []budget.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *queries) GetEntry(ctx context.Context, id uuid.UUID) (budget.Entry, error) {
	return scanEntry(q.db.QueryRow(ctx, "select "+entryCols+" from entries where id = $1", id))
}

func (q *queries) CreateEntry(ctx context.Context, e budget.Entry) error {
	_, err := q.db.Exec(ctx, `
		insert into entries (id, date, description, amount, type, account_id, commitment_id, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, e.ID, e.Date.Time(), e.Description, e.Amount.String(), string(e.Type), e.AccountID, e.CommitmentID, e.CreatedAt.UTC())
	return err
}

func (q *queries) UpdateEntry(ctx context.Context, e budget.Entry) error {
	tag, err := q.db.Exec(ctx, `
		update entries set date = $2, description = $3, amount = $4, type = $5, account_id = $6, commitment_id = $7
		where id = $1
	`, e.ID, e.Date.Time(), e.Description, e.Amount.String(), string(e.Type), e.AccountID, e.CommitmentID)
	return affected(tag, err)
}

func (q *queries) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if _, err := q.db.Exec(ctx, "delete from line_items where entry_id = $1", id); err != nil {
		return err
	}
	tag, err := q.db.Exec(ctx, "delete from entries where id = $1", id)
	return affected(tag, err)
}

// Allocations

const allocationCols = "id, entry_id, instance_id, commitment_id, amount::text, note, created_at"

func scanAllocation(row pgx.Row) (budget.Allocation, error) {
	var (
		a      budget.Allocation
		amount string
	)
	if err := row.Scan(&a.ID, &a.EntryID, &a.InstanceID, &a.CommitmentID, &amount, &a.Note, &a.CreatedAt); err != nil {
		return budget.Allocation{}, mapErr(err)
	}
	var err error
	if a.Amount, err = decimal.NewFromString(amount); err != nil {
		return budget.Allocation{}, err
	}
	return a, nil
}

func (q *queries) listAllocations(ctx context.Context, where string, args ...any) ([]budget.Allocation, error) {
	rows, err := q.db.Query(ctx, "select "+allocationCols+" from allocations"+where+" order by created_at", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []budget.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (q *queries) ListAllocations(ctx context.Context) ([]budget.Allocation, error) {
	return q.listAllocations(ctx, "")
}

func (q *queries) AllocationsByEntry(ctx context.Context, entryID uuid.UUID) ([]budget.Allocation, error) {
	return q.listAllocations(ctx, " where entry_id = $1", entryID)
}

func (q *queries) AllocationsByInstance(ctx context.Context, instanceID uuid.UUID) ([]budget.Allocation, error) {
	return q.listAllocations(ctx, " where instance_id = $1", instanceID)
}

func (q *queries) CreateAllocation(ctx context.Context, a budget.Allocation) error {
	_, err := q.db.Exec(ctx, `
		insert into allocations (id, entry_id, instance_id, commitment_id, amount, note, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, a.ID, a.EntryID, a.InstanceID, a.CommitmentID, a.Amount.String(), a.Note, a.CreatedAt.UTC())
	return err
}

func (q *queries) DeleteAllocationsByEntry(ctx context.Context, entryID uuid.UUID) error {
	_, err := q.db.Exec(ctx, "delete from allocations where entry_id = $1", entryID)
	return err
}

func (q *queries) DeleteAllocationsByCommitment(ctx context.Context, commitmentID uuid.UUID) error {
	_, err := q.db.Exec(ctx, "delete from allocations where commitment_id = $1", commitmentID)
	return err
}

// Line items

func (q *queries) CreateLineItem(ctx context.Context, li budget.LineItem) error {
	_, err := q.db.Exec(ctx, `
		insert into line_items (id, entry_id, description, amount, commitment_id, due_date)
		values ($1,$2,$3,$4,$5,$6)
	`, li.ID, li.EntryID, li.Description, li.Amount.String(), li.CommitmentID, dateArg(li.DueDate))
	return err
}

func (q *queries) LineItemsByEntry(ctx context.Context, entryID uuid.UUID) ([]budget.LineItem, error) {
	rows, err := q.db.Query(ctx,
		"select id, entry_id, description, amount::text, commitment_id, due_date from line_items where entry_id = $1",
		entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []budget.LineItem
	for rows.Next() {
		var (
			li     budget.LineItem
			amount string
			due    *time.Time
		)
		if err := rows.Scan(&li.ID, &li.EntryID, &li.Description, &amount, &li.CommitmentID, &due); err != nil {
			return nil, err
		}
		if li.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if due != nil {
			d := budget.DateOf(*due)
			li.DueDate = &d
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

// Payments

func (q *queries) CreatePaymentRecord(ctx context.Context, p budget.PaymentRecord) error {
	_, err := q.db.Exec(ctx, `
		insert into payments (id, commitment_id, amount, actual_amount, paid_date, due_date)
		values ($1,$2,$3,$4,$5,$6)
	`, p.ID, p.CommitmentID, p.Amount.String(), p.ActualAmount.String(), p.PaidDate.Time(), p.DueDate.Time())
	return err
}

func (q *queries) PaymentsByCommitment(ctx context.Context, commitmentID uuid.UUID) ([]budget.PaymentRecord, error) {
	rows, err := q.db.Query(ctx,
		"select id, commitment_id, amount::text, actual_amount::text, paid_date, due_date from payments where commitment_id = $1 order by paid_date desc",
		commitmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []budget.PaymentRecord
	for rows.Next() {
		var (
			p           budget.PaymentRecord
			amount, act string
			paid, due   time.Time
		)
		if err := rows.Scan(&p.ID, &p.CommitmentID, &amount, &act, &paid, &due); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if p.ActualAmount, err = decimal.NewFromString(act); err != nil {
			return nil, err
		}
		p.PaidDate = budget.DateOf(paid)
		p.DueDate = budget.DateOf(due)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *queries) DeletePaymentsByCommitment(ctx context.Context, commitmentID uuid.UUID) error {
	_, err := q.db.Exec(ctx, "delete from payments where commitment_id = $1", commitmentID)
	return err
}

// Helpers

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func decimalArg(p *decimal.Decimal) any {
	if p == nil {
		return nil
	}
	return p.String()
}

func dateArg(p *budget.Date) any {
	if p == nil {
		return nil
	}
	return p.Time()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
