// Package sqlite is a file-backed budget.TxStore for single-host deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pwielgus/cashplan/internal/budget"

	_ "modernc.org/sqlite" // register sqlite driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    type       TEXT NOT NULL,
    balance    TEXT NOT NULL,
    is_reserve INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS commitments (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    direction     TEXT NOT NULL,
    amount        TEXT NOT NULL,
    actual_amount TEXT,
    due_date      TEXT NOT NULL,
    recurrence    TEXT NOT NULL DEFAULT '',
    priority      TEXT NOT NULL,
    autopay       INTEGER NOT NULL DEFAULT 0,
    account_id    TEXT REFERENCES accounts(id),
    active        INTEGER NOT NULL DEFAULT 1,
    paid          INTEGER NOT NULL DEFAULT 0,
    paid_date     TEXT,
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS instances (
    id            TEXT PRIMARY KEY,
    commitment_id TEXT NOT NULL REFERENCES commitments(id),
    due_date      TEXT NOT NULL,
    planned       TEXT NOT NULL,
    allocated     TEXT NOT NULL,
    status        TEXT NOT NULL,
    created_at    TEXT NOT NULL,
    UNIQUE (commitment_id, due_date)
);

CREATE TABLE IF NOT EXISTS entries (
    id            TEXT PRIMARY KEY,
    date          TEXT NOT NULL,
    description   TEXT NOT NULL,
    amount        TEXT NOT NULL,
    type          TEXT NOT NULL,
    account_id    TEXT REFERENCES accounts(id),
    commitment_id TEXT REFERENCES commitments(id),
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
    id            TEXT PRIMARY KEY,
    entry_id      TEXT NOT NULL REFERENCES entries(id),
    instance_id   TEXT NOT NULL REFERENCES instances(id),
    commitment_id TEXT NOT NULL REFERENCES commitments(id),
    amount        TEXT NOT NULL,
    note          TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS line_items (
    id            TEXT PRIMARY KEY,
    entry_id      TEXT NOT NULL REFERENCES entries(id),
    description   TEXT NOT NULL,
    amount        TEXT NOT NULL,
    commitment_id TEXT,
    due_date      TEXT
);

CREATE TABLE IF NOT EXISTS payments (
    id            TEXT PRIMARY KEY,
    commitment_id TEXT NOT NULL REFERENCES commitments(id),
    amount        TEXT NOT NULL,
    actual_amount TEXT NOT NULL,
    paid_date     TEXT NOT NULL,
    due_date      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_instances_commitment ON instances(commitment_id);
CREATE INDEX IF NOT EXISTS idx_allocations_entry ON allocations(entry_id);
CREATE INDEX IF NOT EXISTS idx_allocations_instance ON allocations(instance_id);
CREATE INDEX IF NOT EXISTS idx_payments_commitment ON payments(commitment_id);
`

// dbtx is the common surface of *sql.DB and *sql.Tx the queries run on.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements budget.TxStore over a SQLite file.
type Store struct {
	db *sql.DB
	queries
}

var _ budget.TxStore = (*Store)(nil)

// Open opens or creates the database at the given path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, queries: queries{db: db}}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Ready reports whether the database is reachable.
func (s *Store) Ready(ctx context.Context) error { return s.db.PingContext(ctx) }

// InTx runs fn inside a transaction, committing on nil and rolling back
// otherwise.
func (s *Store) InTx(ctx context.Context, fn func(budget.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	return tx.Commit()
}
