/*
Package sqlite provides a SQLite-backed accounting.Repository.

PURPOSE:
  Persists accountings, their accounts, the stored half of the period
  buckets and the posting lines. Everything the engine derives (monthly
  balances, posted amounts, line snapshots) is recomputed on load by
  Calculate and never written.

KEY TABLES:
  accountings:           one row per set of books
  account_groups:        balance sheet groups (Assets / Liabilities)
  budget_account_groups: budget groups
  accounts:              balance sheet accounts
  budget_accounts:       income/expense accounts with a budget
  contact_accounts:      debtors and creditors
  credit_infos:          credit limit per account and month
  budget_infos:          income and expenses per budget account and month
  posting_lines:         the ledger, append-only

APPEND-ONLY ENFORCEMENT:
  posting_lines is only ever inserted into. Corrections are new lines.

INDEXES:
  - idx_posting_lines_account:         account ledger loads (hot path)
  - idx_posting_lines_budget_account:  budget ledger loads
  - idx_posting_lines_contact_account: contact ledger loads
  - idx_posting_lines_sort_order:      unique sort order per accounting

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Journals are applied inside one
  database transaction.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/accounting.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - accounting/repository.go: Interface definitions
  - store/memory:             In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/accounting-engine/accounting"
	"github.com/warp/accounting-engine/generic"
)

// Store implements accounting.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	// NewID returns posting line identifiers. uuid.NewString when nil.
	NewID func() string
}

var _ accounting.Repository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" is its own database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accountings (
		number INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		back_dating INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS account_groups (
		accounting_number INTEGER NOT NULL REFERENCES accountings(number),
		number INTEGER NOT NULL,
		name TEXT NOT NULL,
		group_type TEXT NOT NULL,
		PRIMARY KEY (accounting_number, number)
	);

	CREATE TABLE IF NOT EXISTS budget_account_groups (
		accounting_number INTEGER NOT NULL REFERENCES accountings(number),
		number INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (accounting_number, number)
	);

	CREATE TABLE IF NOT EXISTS accounts (
		accounting_number INTEGER NOT NULL REFERENCES accountings(number),
		account_number TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		group_number INTEGER NOT NULL,
		deletable BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (accounting_number, account_number),
		FOREIGN KEY (accounting_number, group_number) REFERENCES account_groups(accounting_number, number)
	);

	CREATE TABLE IF NOT EXISTS budget_accounts (
		accounting_number INTEGER NOT NULL REFERENCES accountings(number),
		account_number TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		group_number INTEGER NOT NULL,
		deletable BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (accounting_number, account_number),
		FOREIGN KEY (accounting_number, group_number) REFERENCES budget_account_groups(accounting_number, number)
	);

	CREATE TABLE IF NOT EXISTS contact_accounts (
		accounting_number INTEGER NOT NULL REFERENCES accountings(number),
		account_number TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		mail_address TEXT NOT NULL DEFAULT '',
		primary_phone TEXT NOT NULL DEFAULT '',
		secondary_phone TEXT NOT NULL DEFAULT '',
		deletable BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (accounting_number, account_number)
	);

	CREATE TABLE IF NOT EXISTS credit_infos (
		accounting_number INTEGER NOT NULL,
		account_number TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		credit TEXT NOT NULL,
		PRIMARY KEY (accounting_number, account_number, year, month),
		FOREIGN KEY (accounting_number, account_number) REFERENCES accounts(accounting_number, account_number)
	);

	CREATE TABLE IF NOT EXISTS budget_infos (
		accounting_number INTEGER NOT NULL,
		account_number TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		income TEXT NOT NULL,
		expenses TEXT NOT NULL,
		PRIMARY KEY (accounting_number, account_number, year, month),
		FOREIGN KEY (accounting_number, account_number) REFERENCES budget_accounts(accounting_number, account_number)
	);

	-- Posting lines (append-only ledger)
	CREATE TABLE IF NOT EXISTS posting_lines (
		id TEXT PRIMARY KEY,
		accounting_number INTEGER NOT NULL REFERENCES accountings(number),
		posting_date TEXT NOT NULL,
		sort_order INTEGER NOT NULL,
		reference TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '',
		account_number TEXT NOT NULL,
		budget_account_number TEXT,
		contact_account_number TEXT,
		debit TEXT NOT NULL,
		credit TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posting_lines_account
		ON posting_lines(accounting_number, account_number, posting_date);
	CREATE INDEX IF NOT EXISTS idx_posting_lines_budget_account
		ON posting_lines(accounting_number, budget_account_number, posting_date)
		WHERE budget_account_number IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_posting_lines_contact_account
		ON posting_lines(accounting_number, contact_account_number, posting_date)
		WHERE contact_account_number IS NOT NULL;
	CREATE UNIQUE INDEX IF NOT EXISTS idx_posting_lines_sort_order
		ON posting_lines(accounting_number, sort_order);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"posting_lines", "credit_infos", "budget_infos",
		"accounts", "budget_accounts", "contact_accounts",
		"account_groups", "budget_account_groups", "accountings",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatDate(tp generic.TimePoint) string { return tp.String() }

func parseDate(s string) (generic.TimePoint, error) {
	tp, err := generic.ParseTimePoint(s)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("stored date %q: %w", s, err)
	}
	return tp, nil
}

func parseDecimal(column, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stored %s %q: %w", column, value, err)
	}
	return d, nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
