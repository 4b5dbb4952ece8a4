// Package budget implements the monthly aggregation, sealing, bill
// roll-forward and bank-sync logic on top of the storage layer. All money
// math happens here, in Go, over an immutable snapshot of the ledger;
// nothing is aggregated in SQL.
package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
	"hearth/internal/storage"
)

// Service exposes the budgeting operations. The clock is injectable so
// month-ended checks are testable.
type Service struct {
	store *storage.Store
	now   func() time.Time

	allocate AllocationStrategy
}

func NewService(store *storage.Store) *Service {
	return &Service{
		store:    store,
		now:      time.Now,
		allocate: DefaultAllocationStrategy,
	}
}

// Ledger is a point-in-time snapshot of everything a month's numbers
// derive from. Once loaded it is never mutated, so every figure computed
// from it is consistent with every other.
type Ledger struct {
	Month         core.Month
	Transactions  []core.Transaction // on-budget connections only, splits attached
	Bills         []core.Bill        // raw rows for the month
	Funds         []core.Fund
	FundSettings  map[string]core.FundSettings
	Allocations   []core.FundAllocation
	SavingsTarget decimal.Decimal
	Sealed        bool
}

// LoadLedger reads the snapshot for a month.
func (s *Service) LoadLedger(ctx context.Context, m core.Month) (*Ledger, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	txns, err := s.store.OnBudgetTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	bills, err := s.store.BillsForMonth(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}
	funds, err := s.store.Funds(ctx)
	if err != nil {
		return nil, fmt.Errorf("load funds: %w", err)
	}
	settings, err := s.store.FundSettingsAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fund settings: %w", err)
	}
	allocs, err := s.store.FundAllocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load allocations: %w", err)
	}
	target, err := s.store.SavingsTarget(ctx)
	if err != nil {
		return nil, fmt.Errorf("load savings target: %w", err)
	}
	sealed, err := s.store.IsMonthSealed(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("load sealed state: %w", err)
	}

	return &Ledger{
		Month:         m,
		Transactions:  txns,
		Bills:         bills,
		Funds:         funds,
		FundSettings:  settings,
		Allocations:   allocs,
		SavingsTarget: target,
		Sealed:        sealed,
	}, nil
}
