// Package storage persists the household ledger in SQLite and exposes the
// query contracts the budget core relies on. Monetary columns hold
// canonical two-decimal strings and dates are stored as "YYYY-MM-DD" text;
// both are converted at the scan boundary so nothing above this package
// touches raw column values.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Store is the SQLite-backed ledger store.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed, runs migrations and returns a
// ready store. Foreign keys are enabled so cascade deletes apply.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RunInTransaction executes fn inside a single database transaction. Any
// error rolls everything back so partial application is never observable.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// querier abstracts *sql.DB and *sql.Tx so query helpers can run either
// standalone or inside RunInTransaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func parseAmountColumn(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// nullMonth converts an optional month column into a core.Month.
func nullMonth(ns sql.NullString) (core.Month, error) {
	if !ns.Valid || ns.String == "" {
		return core.Month{}, nil
	}
	return core.ParseMonth(ns.String)
}

// monthParam renders a month for an optional TEXT column, NULL when unset.
func monthParam(m core.Month) any {
	if m.IsZero() {
		return nil
	}
	return m.String()
}

// categoryColumns splits a category into its kind/target column values.
func categoryColumns(c core.Category) (kind, target any) {
	if !c.IsAssigned() {
		return nil, nil
	}
	if c.TargetID == "" {
		return string(c.Kind), nil
	}
	return string(c.Kind), c.TargetID
}

func scanCategory(kind, target sql.NullString) core.Category {
	if !kind.Valid || kind.String == "" {
		return core.Category{}
	}
	return core.Category{Kind: core.CategoryKind(kind.String), TargetID: target.String}
}
