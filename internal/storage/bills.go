package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hearth/internal/core"
)

// BillsForMonth returns the raw bill rows for a month, paid state not yet
// derived, ordered by name.
func (s *Store) BillsForMonth(ctx context.Context, m core.Month) ([]core.Bill, error) {
	return billsForMonth(ctx, s.db, m)
}

func billsForMonth(ctx context.Context, q querier, m core.Month) ([]core.Bill, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, expected_amount, month FROM bills
		WHERE month = ? ORDER BY name`, m.String())
	if err != nil {
		return nil, fmt.Errorf("query bills for %s: %w", m, err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func scanBill(row interface{ Scan(...any) error }) (core.Bill, error) {
	var (
		b             core.Bill
		amount, month string
	)
	if err := row.Scan(&b.ID, &b.Name, &amount, &month); err != nil {
		return core.Bill{}, fmt.Errorf("scan bill: %w", err)
	}
	var err error
	if b.ExpectedAmount, err = parseAmountColumn(amount); err != nil {
		return core.Bill{}, err
	}
	if b.Month, err = core.ParseMonth(month); err != nil {
		return core.Bill{}, err
	}
	return b, nil
}

// Bill fetches a single bill row by id.
func (s *Store) Bill(ctx context.Context, id string) (core.Bill, error) {
	b, err := scanBill(s.db.QueryRowContext(ctx,
		`SELECT id, name, expected_amount, month FROM bills WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, ErrNotFound
	}
	if err != nil {
		return core.Bill{}, err
	}
	return b, nil
}

// CreateBill inserts a bill for a month and returns its generated id.
func (s *Store) CreateBill(ctx context.Context, b core.Bill) (string, error) {
	b.ID = uuid.NewString()
	if err := b.Validate(); err != nil {
		return "", err
	}
	if err := insertBill(ctx, s.db, b); err != nil {
		return "", err
	}
	return b.ID, nil
}

func insertBill(ctx context.Context, q querier, b core.Bill) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO bills (id, name, expected_amount, month)
		VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, core.FormatAmount(b.ExpectedAmount), b.Month.String())
	if err != nil {
		return fmt.Errorf("insert bill %s: %w", b.Name, err)
	}
	return nil
}

// UpdateBill rewrites a bill's name and expected amount in place, keeping
// its id stable so categorized transactions stay attached.
func (s *Store) UpdateBill(ctx context.Context, id, name string, expected string) error {
	amount, err := core.ParseAmount(expected)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET name = ?, expected_amount = ? WHERE id = ?`,
		name, core.FormatAmount(amount), id)
	if err != nil {
		return fmt.Errorf("update bill %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// DeleteBill removes a bill row. Transactions categorized to it keep their
// dangling target id and simply match no bill afterwards.
func (s *Store) DeleteBill(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// ApplyBillPlan executes a roll-forward plan for the target month in a
// single transaction: updates keep their ids, inserts get fresh ids, and
// leftover target-month bills named in deletes are removed.
func (s *Store) ApplyBillPlan(ctx context.Context, updates, inserts []core.Bill, deleteIDs []string) error {
	return s.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, b := range updates {
			if _, err := tx.ExecContext(ctx,
				`UPDATE bills SET name = ?, expected_amount = ? WHERE id = ?`,
				b.Name, core.FormatAmount(b.ExpectedAmount), b.ID); err != nil {
				return fmt.Errorf("update bill %s: %w", b.ID, err)
			}
		}
		for _, b := range inserts {
			b.ID = uuid.NewString()
			if err := insertBill(ctx, tx, b); err != nil {
				return err
			}
		}
		for _, id := range deleteIDs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id); err != nil {
				return fmt.Errorf("delete bill %s: %w", id, err)
			}
		}
		return nil
	})
}
