package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hearth/internal/core"
)

// ErrNotFound is returned when a lookup by id matches nothing.
var ErrNotFound = errors.New("not found")

const connectionColumns = `id, name, display_name, current_balance, is_on_budget, account_type, last_synced_at`

func scanConnection(row interface{ Scan(...any) error }) (core.Connection, error) {
	var (
		c           core.Connection
		displayName sql.NullString
		balance     string
		accountType sql.NullString
		lastSynced  sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &displayName, &balance, &c.OnBudget, &accountType, &lastSynced); err != nil {
		return core.Connection{}, err
	}
	c.DisplayName = displayName.String
	c.AccountType = accountType.String

	var err error
	if c.CurrentBalance, err = parseAmountColumn(balance); err != nil {
		return core.Connection{}, err
	}
	if lastSynced.Valid && lastSynced.String != "" {
		t, err := time.Parse(time.RFC3339, lastSynced.String)
		if err != nil {
			return core.Connection{}, fmt.Errorf("parse last_synced_at: %w", err)
		}
		c.LastSyncedAt = t
	}
	return c, nil
}

// Connections returns every connection ordered by name.
func (s *Store) Connections(ctx context.Context) ([]core.Connection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+connectionColumns+` FROM connections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	var conns []core.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// Connection fetches a single connection by id.
func (s *Store) Connection(ctx context.Context, id string) (core.Connection, error) {
	c, err := scanConnection(s.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Connection{}, ErrNotFound
	}
	if err != nil {
		return core.Connection{}, fmt.Errorf("query connection %s: %w", id, err)
	}
	return c, nil
}

// CreateConnection inserts a new connection row.
func (s *Store) CreateConnection(ctx context.Context, c core.Connection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.insertConnection(ctx, s.db, c)
}

func (s *Store) insertConnection(ctx context.Context, q querier, c core.Connection) error {
	var lastSynced any
	if !c.LastSyncedAt.IsZero() {
		lastSynced = c.LastSyncedAt.UTC().Format(time.RFC3339)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO connections (id, name, display_name, current_balance, is_on_budget, account_type, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.DisplayName, core.FormatAmount(c.CurrentBalance), c.OnBudget, c.AccountType, lastSynced)
	if err != nil {
		return fmt.Errorf("insert connection %s: %w", c.ID, err)
	}
	return nil
}

// UpsertConnection inserts the connection or, when the id already exists,
// refreshes the bank-owned fields. The on-budget flag and display name are
// user preferences and survive re-syncs untouched.
func (s *Store) UpsertConnection(ctx context.Context, tx *sql.Tx, c core.Connection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var q querier = s.db
	if tx != nil {
		q = tx
	}
	var lastSynced any
	if !c.LastSyncedAt.IsZero() {
		lastSynced = c.LastSyncedAt.UTC().Format(time.RFC3339)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO connections (id, name, display_name, current_balance, is_on_budget, account_type, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name            = excluded.name,
			current_balance = excluded.current_balance,
			last_synced_at  = excluded.last_synced_at`,
		c.ID, c.Name, c.DisplayName, core.FormatAmount(c.CurrentBalance), c.OnBudget, c.AccountType, lastSynced)
	if err != nil {
		return fmt.Errorf("upsert connection %s: %w", c.ID, err)
	}
	return nil
}

// UpdateConnectionOnBudget flips whether the connection's transactions count
// toward the monthly budget.
func (s *Store) UpdateConnectionOnBudget(ctx context.Context, id string, onBudget bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE connections SET is_on_budget = ? WHERE id = ?`, onBudget, id)
	if err != nil {
		return fmt.Errorf("update connection %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// UpdateConnectionDisplayName sets the user-facing name override.
func (s *Store) UpdateConnectionDisplayName(ctx context.Context, id, displayName string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE connections SET display_name = ? WHERE id = ?`, displayName, id)
	if err != nil {
		return fmt.Errorf("update connection %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// DeleteConnection removes the connection and, through the cascade, every
// transaction imported from it.
func (s *Store) DeleteConnection(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete connection %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// EnsureManualConnection creates the synthetic manual-entry connection on
// first use. Repeat calls are no-ops.
func (s *Store) EnsureManualConnection(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO connections (id, name, is_on_budget)
		VALUES (?, 'Manual', 1)
		ON CONFLICT(id) DO NOTHING`,
		core.ManualConnectionID)
	if err != nil {
		return fmt.Errorf("ensure manual connection: %w", err)
	}
	return nil
}

func requireRowAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
