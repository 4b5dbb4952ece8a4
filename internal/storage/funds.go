package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hearth/internal/core"
)

// ErrMonthSealed is returned when a seal is attempted on an already sealed
// month.
var ErrMonthSealed = errors.New("month is already sealed")

// Funds returns every fund ordered by name.
func (s *Store) Funds(ctx context.Context) ([]core.Fund, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM funds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query funds: %w", err)
	}
	defer rows.Close()

	var funds []core.Fund
	for rows.Next() {
		var f core.Fund
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("scan fund: %w", err)
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

// CreateFund inserts a fund and returns its generated id.
func (s *Store) CreateFund(ctx context.Context, name string) (string, error) {
	f := core.Fund{ID: uuid.NewString(), Name: name}
	if name == "" {
		return "", core.ErrEmptyName
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO funds (id, name) VALUES (?, ?)`, f.ID, f.Name); err != nil {
		return "", fmt.Errorf("insert fund %s: %w", name, err)
	}
	return f.ID, nil
}

// DeleteFund removes a fund, its settings and its allocation history.
func (s *Store) DeleteFund(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM funds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete fund %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// FundSettingsAll returns the settings row for every fund that has one,
// keyed by fund id.
func (s *Store) FundSettingsAll(ctx context.Context) (map[string]core.FundSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fund_id, display_name, position, is_visible, override_amount
		FROM fund_settings`)
	if err != nil {
		return nil, fmt.Errorf("query fund settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]core.FundSettings)
	for rows.Next() {
		var (
			fs       core.FundSettings
			override sql.NullString
		)
		if err := rows.Scan(&fs.FundID, &fs.DisplayName, &fs.Position, &fs.Visible, &override); err != nil {
			return nil, fmt.Errorf("scan fund settings: %w", err)
		}
		if override.Valid && override.String != "" {
			amount, err := parseAmountColumn(override.String)
			if err != nil {
				return nil, err
			}
			fs.OverrideAmount = &amount
		}
		settings[fs.FundID] = fs
	}
	return settings, rows.Err()
}

// UpsertFundSettings writes the per-fund display configuration, replacing
// any existing row for the fund.
func (s *Store) UpsertFundSettings(ctx context.Context, fs core.FundSettings) error {
	if fs.Position != core.PositionLeft && fs.Position != core.PositionRight {
		return fmt.Errorf("%q: %w", fs.Position, core.ErrInvalidFundPosition)
	}
	var override any
	if fs.OverrideAmount != nil {
		override = core.FormatAmount(*fs.OverrideAmount)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fund_settings (id, fund_id, display_name, position, is_visible, override_amount)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fund_id) DO UPDATE SET
			display_name    = excluded.display_name,
			position        = excluded.position,
			is_visible      = excluded.is_visible,
			override_amount = excluded.override_amount`,
		uuid.NewString(), fs.FundID, fs.DisplayName, fs.Position, fs.Visible, override)
	if err != nil {
		return fmt.Errorf("upsert fund settings for %s: %w", fs.FundID, err)
	}
	return nil
}

// FundAllocations returns the full allocation history, oldest month first.
func (s *Store) FundAllocations(ctx context.Context) ([]core.FundAllocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fund_id, month, amount FROM fund_allocations ORDER BY month, fund_id`)
	if err != nil {
		return nil, fmt.Errorf("query fund allocations: %w", err)
	}
	defer rows.Close()

	var allocs []core.FundAllocation
	for rows.Next() {
		var (
			a             core.FundAllocation
			month, amount string
		)
		if err := rows.Scan(&a.ID, &a.FundID, &month, &amount); err != nil {
			return nil, fmt.Errorf("scan fund allocation: %w", err)
		}
		var err error
		if a.Month, err = core.ParseMonth(month); err != nil {
			return nil, err
		}
		if a.Amount, err = parseAmountColumn(amount); err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// IsMonthSealed reports whether the month's books are closed.
func (s *Store) IsMonthSealed(ctx context.Context, m core.Month) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sealed_months WHERE month = ?`, m.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query sealed month %s: %w", m, err)
	}
	return n > 0, nil
}

// SealedMonths returns every sealed month, most recent first.
func (s *Store) SealedMonths(ctx context.Context) ([]core.SealedMonth, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, month, sealed_at FROM sealed_months ORDER BY month DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sealed months: %w", err)
	}
	defer rows.Close()

	var sealed []core.SealedMonth
	for rows.Next() {
		var (
			sm            core.SealedMonth
			month, sealedAt string
		)
		if err := rows.Scan(&sm.ID, &month, &sealedAt); err != nil {
			return nil, fmt.Errorf("scan sealed month: %w", err)
		}
		var err error
		if sm.Month, err = core.ParseMonth(month); err != nil {
			return nil, err
		}
		if sm.SealedAt, err = time.Parse(time.RFC3339, sealedAt); err != nil {
			return nil, fmt.Errorf("parse sealed_at: %w", err)
		}
		sealed = append(sealed, sm)
	}
	return sealed, rows.Err()
}

// SealMonth commits the seal atomically: the non-zero fund allocations and
// the sealed marker land in one transaction, or not at all. A concurrent
// seal of the same month loses on the unique month constraint.
func (s *Store) SealMonth(ctx context.Context, m core.Month, allocations map[string]decimal.Decimal) error {
	return s.RunInTransaction(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sealed_months WHERE month = ?`, m.String()).Scan(&n); err != nil {
			return fmt.Errorf("check sealed month: %w", err)
		}
		if n > 0 {
			return ErrMonthSealed
		}

		for fundID, amount := range allocations {
			if amount.IsZero() {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO fund_allocations (id, fund_id, month, amount)
				VALUES (?, ?, ?, ?)`,
				uuid.NewString(), fundID, m.String(), core.FormatAmount(amount)); err != nil {
				return fmt.Errorf("insert allocation for fund %s: %w", fundID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sealed_months (id, month, sealed_at)
			VALUES (?, ?, ?)`,
			uuid.NewString(), m.String(), time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert sealed month %s: %w", m, err)
		}
		return nil
	})
}
