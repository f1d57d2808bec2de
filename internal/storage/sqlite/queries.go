package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/errs"
)

// queries implements budget.Store over either the raw connection or an open
// transaction.
type queries struct {
	db dbtx
}

type scanner interface {
	Scan(dest ...any) error
}

// Accounts

const accountCols = "id, name, type, balance, is_reserve, updated_at"

func scanAccount(row scanner) (budget.Account, error) {
	var (
		a               budget.Account
		id, balance, ts string
	)
	if err := row.Scan(&id, &a.Name, &a.Type, &balance, &a.Reserve, &ts); err != nil {
		return budget.Account{}, mapErr(err)
	}
	err := func() (err error) {
		if a.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return err
		}
		a.UpdatedAt, err = time.Parse(time.RFC3339Nano, ts)
		return err
	}()
	if err != nil {
		return budget.Account{}, err
	}
	return a, nil
}

func (q *queries) ListAccounts(ctx context.Context) ([]budget.Account, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+accountCols+" FROM accounts ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
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
	row := q.db.QueryRowContext(ctx, "SELECT "+accountCols+" FROM accounts WHERE id = ?", id.String())
	return scanAccount(row)
}

func (q *queries) CreateAccount(ctx context.Context, a budget.Account) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO accounts ("+accountCols+") VALUES (?,?,?,?,?,?)",
		a.ID.String(), a.Name, string(a.Type), a.Balance.String(), a.Reserve, a.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (q *queries) UpdateAccount(ctx context.Context, a budget.Account) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE accounts SET name = ?, type = ?, balance = ?, is_reserve = ?, updated_at = ? WHERE id = ?",
		a.Name, string(a.Type), a.Balance.String(), a.Reserve, a.UpdatedAt.UTC().Format(time.RFC3339Nano), a.ID.String())
	return affected(res, err)
}

func (q *queries) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id.String())
	return affected(res, err)
}

// Commitments

const commitmentCols = "id, name, direction, amount, actual_amount, due_date, recurrence, priority, autopay, account_id, active, paid, paid_date, created_at"

func scanCommitment(row scanner) (budget.Commitment, error) {
	var (
		c                   budget.Commitment
		id, amount, due, ts string
		recurrence          string
		actual, account, pd sql.NullString
	)
	if err := row.Scan(&id, &c.Name, &c.Direction, &amount, &actual, &due, &recurrence, &c.Priority, &c.Autopay, &account, &c.Active, &c.Paid, &pd, &ts); err != nil {
		return budget.Commitment{}, mapErr(err)
	}
	err := func() (err error) {
		if c.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		if c.Amount, err = decimal.NewFromString(amount); err != nil {
			return err
		}
		if c.ActualAmount, err = nullDecimal(actual); err != nil {
			return err
		}
		if c.DueDate, err = budget.ParseDate(due); err != nil {
			return err
		}
		c.Recurrence = budget.ParseRecurrence(recurrence)
		if c.AccountID, err = nullUUID(account); err != nil {
			return err
		}
		if c.PaidDate, err = nullDate(pd); err != nil {
			return err
		}
		c.CreatedAt, err = time.Parse(time.RFC3339Nano, ts)
		return err
	}()
	if err != nil {
		return budget.Commitment{}, err
	}
	return c, nil
}

func (q *queries) ListCommitments(ctx context.Context, f budget.CommitmentFilter) ([]budget.Commitment, error) {
	query := "SELECT " + commitmentCols + " FROM commitments"
	if f.ActiveOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY due_date, name"
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
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
	row := q.db.QueryRowContext(ctx, "SELECT "+commitmentCols+" FROM commitments WHERE id = ?", id.String())
	return scanCommitment(row)
}

func (q *queries) CreateCommitment(ctx context.Context, c budget.Commitment) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO commitments ("+commitmentCols+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		c.ID.String(), c.Name, string(c.Direction), c.Amount.String(), decimalArg(c.ActualAmount),
		c.DueDate.String(), c.Recurrence.String(), string(c.Priority), c.Autopay, uuidArg(c.AccountID),
		c.Active, c.Paid, dateArg(c.PaidDate), c.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (q *queries) UpdateCommitment(ctx context.Context, c budget.Commitment) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE commitments SET name = ?, direction = ?, amount = ?, actual_amount = ?, due_date = ?,
		 recurrence = ?, priority = ?, autopay = ?, account_id = ?, active = ?, paid = ?, paid_date = ?
		 WHERE id = ?`,
		c.Name, string(c.Direction), c.Amount.String(), decimalArg(c.ActualAmount), c.DueDate.String(),
		c.Recurrence.String(), string(c.Priority), c.Autopay, uuidArg(c.AccountID), c.Active, c.Paid,
		dateArg(c.PaidDate), c.ID.String())
	return affected(res, err)
}

func (q *queries) DeleteCommitment(ctx context.Context, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM commitments WHERE id = ?", id.String())
	return affected(res, err)
}

// Instances

const instanceCols = "id, commitment_id, due_date, planned, allocated, status, created_at"

func scanInstance(row scanner) (budget.Instance, error) {
	var (
		i                                    budget.Instance
		id, cid, due, planned, allocated, ts string
	)
	if err := row.Scan(&id, &cid, &due, &planned, &allocated, &i.Status, &ts); err != nil {
		return budget.Instance{}, mapErr(err)
	}
	err := func() (err error) {
		if i.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		if i.CommitmentID, err = uuid.Parse(cid); err != nil {
			return err
		}
		if i.DueDate, err = budget.ParseDate(due); err != nil {
			return err
		}
		if i.Planned, err = decimal.NewFromString(planned); err != nil {
			return err
		}
		if i.Allocated, err = decimal.NewFromString(allocated); err != nil {
			return err
		}
		i.CreatedAt, err = time.Parse(time.RFC3339Nano, ts)
		return err
	}()
	if err != nil {
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
	_, err = q.db.ExecContext(ctx,
		"INSERT INTO instances ("+instanceCols+") VALUES (?,?,?,?,?,?,?)",
		inst.ID.String(), inst.CommitmentID.String(), inst.DueDate.String(),
		inst.Planned.String(), inst.Allocated.String(), string(inst.Status),
		inst.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return budget.Instance{}, err
	}
	return inst, nil
}

func (q *queries) InstanceByID(ctx context.Context, id uuid.UUID) (budget.Instance, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+instanceCols+" FROM instances WHERE id = ?", id.String())
	return scanInstance(row)
}

func (q *queries) InstanceByKey(ctx context.Context, commitmentID uuid.UUID, due budget.Date) (budget.Instance, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+instanceCols+" FROM instances WHERE commitment_id = ? AND due_date = ?",
		commitmentID.String(), due.String())
	return scanInstance(row)
}

func (q *queries) UpdateInstance(ctx context.Context, inst budget.Instance) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE instances SET due_date = ?, planned = ?, allocated = ?, status = ? WHERE id = ?",
		inst.DueDate.String(), inst.Planned.String(), inst.Allocated.String(), string(inst.Status), inst.ID.String())
	return affected(res, err)
}

func (q *queries) ListInstances(ctx context.Context, f budget.InstanceFilter) ([]budget.Instance, error) {
	query := "SELECT " + instanceCols + " FROM instances WHERE 1=1"
	var args []any
	if f.CommitmentID != uuid.Nil {
		query += " AND commitment_id = ?"
		args = append(args, f.CommitmentID.String())
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, string(f.Status))
	}
	if f.DueOnOrBefore != nil {
		query += " AND due_date <= ?"
		args = append(args, f.DueOnOrBefore.String())
	}
	query += " ORDER BY due_date"
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
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
	_, err := q.db.ExecContext(ctx, "DELETE FROM instances WHERE commitment_id = ?", commitmentID.String())
	return err
}

// Entries

const entryCols = "id, date, description, amount, type, account_id, commitment_id, created_at"

func scanEntry(row scanner) (budget.Entry, error) {
	var (
		e                    budget.Entry
		id, date, amount, ts string
		account, commitment  sql.NullString
	)
	if err := row.Scan(&id, &date, &e.Description, &amount, &e.Type, &account, &commitment, &ts); err != nil {
		return budget.Entry{}, mapErr(err)
	}
	err := func() (err error) {
		if e.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		if e.Date, err = budget.ParseDate(date); err != nil {
			return err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return err
		}
		if e.AccountID, err = nullUUID(account); err != nil {
			return err
		}
		if e.CommitmentID, err = nullUUID(commitment); err != nil {
			return err
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, ts)
		return err
	}()
	if err != nil {
		return budget.Entry{}, err
	}
	return e, nil
}

func (q *queries) ListEntries(ctx context.Context) ([]budget.Entry, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+entryCols+" FROM entries ORDER BY date DESC, created_at DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
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
	row := q.db.QueryRowContext(ctx, "SELECT "+entryCols+" FROM entries WHERE id = ?", id.String())
	return scanEntry(row)
}

func (q *queries) CreateEntry(ctx context.Context, e budget.Entry) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO entries ("+entryCols+") VALUES (?,?,?,?,?,?,?,?)",
		e.ID.String(), e.Date.String(), e.Description, e.Amount.String(), string(e.Type),
		uuidArg(e.AccountID), uuidArg(e.CommitmentID), e.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (q *queries) UpdateEntry(ctx context.Context, e budget.Entry) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE entries SET date = ?, description = ?, amount = ?, type = ?, account_id = ?, commitment_id = ? WHERE id = ?",
		e.Date.String(), e.Description, e.Amount.String(), string(e.Type),
		uuidArg(e.AccountID), uuidArg(e.CommitmentID), e.ID.String())
	return affected(res, err)
}

func (q *queries) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if _, err := q.db.ExecContext(ctx, "DELETE FROM line_items WHERE entry_id = ?", id.String()); err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id.String())
	return affected(res, err)
}

// Allocations

const allocationCols = "id, entry_id, instance_id, commitment_id, amount, note, created_at"

func scanAllocation(row scanner) (budget.Allocation, error) {
	var (
		a                          budget.Allocation
		id, eid, iid, cid, amt, ts string
	)
	if err := row.Scan(&id, &eid, &iid, &cid, &amt, &a.Note, &ts); err != nil {
		return budget.Allocation{}, mapErr(err)
	}
	err := func() (err error) {
		if a.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		if a.EntryID, err = uuid.Parse(eid); err != nil {
			return err
		}
		if a.InstanceID, err = uuid.Parse(iid); err != nil {
			return err
		}
		if a.CommitmentID, err = uuid.Parse(cid); err != nil {
			return err
		}
		if a.Amount, err = decimal.NewFromString(amt); err != nil {
			return err
		}
		a.CreatedAt, err = time.Parse(time.RFC3339Nano, ts)
		return err
	}()
	if err != nil {
		return budget.Allocation{}, err
	}
	return a, nil
}

func (q *queries) listAllocations(ctx context.Context, where string, args ...any) ([]budget.Allocation, error) {
	query := "SELECT " + allocationCols + " FROM allocations" + where + " ORDER BY created_at"
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
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
	return q.listAllocations(ctx, " WHERE entry_id = ?", entryID.String())
}

func (q *queries) AllocationsByInstance(ctx context.Context, instanceID uuid.UUID) ([]budget.Allocation, error) {
	return q.listAllocations(ctx, " WHERE instance_id = ?", instanceID.String())
}

func (q *queries) CreateAllocation(ctx context.Context, a budget.Allocation) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO allocations ("+allocationCols+") VALUES (?,?,?,?,?,?,?)",
		a.ID.String(), a.EntryID.String(), a.InstanceID.String(), a.CommitmentID.String(),
		a.Amount.String(), a.Note, a.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (q *queries) DeleteAllocationsByEntry(ctx context.Context, entryID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM allocations WHERE entry_id = ?", entryID.String())
	return err
}

func (q *queries) DeleteAllocationsByCommitment(ctx context.Context, commitmentID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM allocations WHERE commitment_id = ?", commitmentID.String())
	return err
}

// Line items

func (q *queries) CreateLineItem(ctx context.Context, li budget.LineItem) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO line_items (id, entry_id, description, amount, commitment_id, due_date) VALUES (?,?,?,?,?,?)",
		li.ID.String(), li.EntryID.String(), li.Description, li.Amount.String(),
		uuidArg(li.CommitmentID), dateArg(li.DueDate))
	return err
}

func (q *queries) LineItemsByEntry(ctx context.Context, entryID uuid.UUID) ([]budget.LineItem, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, entry_id, description, amount, commitment_id, due_date FROM line_items WHERE entry_id = ?",
		entryID.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []budget.LineItem
	for rows.Next() {
		var (
			li              budget.LineItem
			id, eid, amt    string
			commitment, due sql.NullString
		)
		if err := rows.Scan(&id, &eid, &li.Description, &amt, &commitment, &due); err != nil {
			return nil, err
		}
		if err := func() (err error) {
			if li.ID, err = uuid.Parse(id); err != nil {
				return err
			}
			if li.EntryID, err = uuid.Parse(eid); err != nil {
				return err
			}
			if li.Amount, err = decimal.NewFromString(amt); err != nil {
				return err
			}
			if li.CommitmentID, err = nullUUID(commitment); err != nil {
				return err
			}
			li.DueDate, err = nullDate(due)
			return err
		}(); err != nil {
			return nil, err
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

// Payments

func (q *queries) CreatePaymentRecord(ctx context.Context, p budget.PaymentRecord) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO payments (id, commitment_id, amount, actual_amount, paid_date, due_date) VALUES (?,?,?,?,?,?)",
		p.ID.String(), p.CommitmentID.String(), p.Amount.String(), p.ActualAmount.String(),
		p.PaidDate.String(), p.DueDate.String())
	return err
}

func (q *queries) PaymentsByCommitment(ctx context.Context, commitmentID uuid.UUID) ([]budget.PaymentRecord, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, commitment_id, amount, actual_amount, paid_date, due_date FROM payments WHERE commitment_id = ? ORDER BY paid_date DESC",
		commitmentID.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []budget.PaymentRecord
	for rows.Next() {
		var (
			p                         budget.PaymentRecord
			id, cid, amt, act, pd, dd string
		)
		if err := rows.Scan(&id, &cid, &amt, &act, &pd, &dd); err != nil {
			return nil, err
		}
		if err := func() (err error) {
			if p.ID, err = uuid.Parse(id); err != nil {
				return err
			}
			if p.CommitmentID, err = uuid.Parse(cid); err != nil {
				return err
			}
			if p.Amount, err = decimal.NewFromString(amt); err != nil {
				return err
			}
			if p.ActualAmount, err = decimal.NewFromString(act); err != nil {
				return err
			}
			if p.PaidDate, err = budget.ParseDate(pd); err != nil {
				return err
			}
			p.DueDate, err = budget.ParseDate(dd)
			return err
		}(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *queries) DeletePaymentsByCommitment(ctx context.Context, commitmentID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM payments WHERE commitment_id = ?", commitmentID.String())
	return err
}

// Helpers

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

// affected turns a zero-row UPDATE or DELETE into ErrNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func uuidArg(p *uuid.UUID) any {
	if p == nil {
		return nil
	}
	return p.String()
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
	return p.String()
}

func nullUUID(s sql.NullString) (*uuid.UUID, error) {
	if !s.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(s.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func nullDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullDate(s sql.NullString) (*budget.Date, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := budget.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
