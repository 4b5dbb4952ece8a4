package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Application setting keys.
const (
	settingSimpleFinAccessURL = "simplefin_access_url"
	settingSavingsTarget      = "savings_target"
)

// DefaultSavingsTarget applies when no savings target has been configured.
var DefaultSavingsTarget = decimal.NewFromInt(300)

// AppSetting returns the value stored under key, or "" when unset.
func (s *Store) AppSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query setting %s: %w", key, err)
	}
	return value, nil
}

// SetAppSetting writes a key/value pair, replacing any existing value.
func (s *Store) SetAppSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		uuid.NewString(), key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// DeleteAppSetting removes a key. Deleting an absent key is a no-op.
func (s *Store) DeleteAppSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM app_settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

// SimpleFinAccessURL returns the stored aggregator access URL, or "" when
// no bank link has been set up.
func (s *Store) SimpleFinAccessURL(ctx context.Context) (string, error) {
	return s.AppSetting(ctx, settingSimpleFinAccessURL)
}

func (s *Store) SetSimpleFinAccessURL(ctx context.Context, url string) error {
	return s.SetAppSetting(ctx, settingSimpleFinAccessURL, url)
}

func (s *Store) ClearSimpleFinAccessURL(ctx context.Context) error {
	return s.DeleteAppSetting(ctx, settingSimpleFinAccessURL)
}

// SavingsTarget returns the configured monthly savings target, falling
// back to the default when unset or unparsable input was never stored.
func (s *Store) SavingsTarget(ctx context.Context) (decimal.Decimal, error) {
	raw, err := s.AppSetting(ctx, settingSavingsTarget)
	if err != nil {
		return decimal.Zero, err
	}
	if raw == "" {
		return DefaultSavingsTarget, nil
	}
	target, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse savings target %q: %w", raw, err)
	}
	return target, nil
}

// SetSavingsTarget stores the monthly savings target.
func (s *Store) SetSavingsTarget(ctx context.Context, target decimal.Decimal) error {
	return s.SetAppSetting(ctx, settingSavingsTarget, target.StringFixed(2))
}
