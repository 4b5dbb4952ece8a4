package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hearth/internal/core"
	"hearth/internal/simplefin"
)

// ErrNotLinked is returned when a sync is requested before a bank link has
// been set up.
var ErrNotLinked = errors.New("no bank link configured")

// ErrUpstream wraps failures of the aggregator itself, as opposed to local
// problems importing its data.
var ErrUpstream = errors.New("aggregator unavailable")

// AccountSource fetches account data from the bank aggregator.
type AccountSource interface {
	FetchAccounts(ctx context.Context, accessURL string, since time.Time) (*simplefin.AccountSet, error)
}

// SyncResult reports what one sync run did.
type SyncResult struct {
	Accounts int `json:"accounts"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // duplicates and pending transactions
}

// Syncer imports accounts and transactions from the aggregator into the
// ledger. Imports are idempotent: the composite transaction id (account id
// plus external id) makes re-running a sync over the same window a no-op.
type Syncer struct {
	store    syncStore
	source   AccountSource
	lookback time.Duration
	now      func() time.Time
}

type syncStore interface {
	SimpleFinAccessURL(ctx context.Context) (string, error)
	RunInTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error
	UpsertConnection(ctx context.Context, tx *sql.Tx, c core.Connection) error
	InsertTransactionIfAbsent(ctx context.Context, tx *sql.Tx, t core.Transaction) (bool, error)
}

// NewSyncer builds a syncer with the given lookback window for transaction
// history.
func NewSyncer(store syncStore, source AccountSource, lookback time.Duration) *Syncer {
	return &Syncer{
		store:    store,
		source:   source,
		lookback: lookback,
		now:      time.Now,
	}
}

// Sync pulls the aggregator's view of every linked account and folds it
// into the ledger. Connection balances are refreshed, new settled
// transactions land uncategorized, pending transactions are skipped
// until they settle, and already-imported transactions are left exactly
// as the user categorized them.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	accessURL, err := s.store.SimpleFinAccessURL(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	if accessURL == "" {
		return SyncResult{}, ErrNotLinked
	}

	since := s.now().Add(-s.lookback)
	set, err := s.source.FetchAccounts(ctx, accessURL, since)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(set.Errors) > 0 {
		return SyncResult{}, fmt.Errorf("%w: %s", ErrUpstream, set.Errors[0])
	}

	var result SyncResult
	err = s.store.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, acct := range set.Accounts {
			if err := s.importAccount(ctx, tx, acct, &result); err != nil {
				return fmt.Errorf("import account %s: %w", acct.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}
	return result, nil
}

func (s *Syncer) importAccount(ctx context.Context, tx *sql.Tx, acct simplefin.Account, result *SyncResult) error {
	balance, err := core.ParseAmount(acct.Balance)
	if err != nil {
		return fmt.Errorf("account balance: %w", err)
	}

	name := acct.Name
	if acct.Org.Name != "" {
		name = acct.Org.Name + " " + acct.Name
	}
	conn := core.Connection{
		ID:             acct.ID,
		Name:           name,
		CurrentBalance: balance,
		OnBudget:       true,
		LastSyncedAt:   s.now(),
	}
	if err := s.store.UpsertConnection(ctx, tx, conn); err != nil {
		return err
	}
	result.Accounts++

	for _, t := range acct.Transactions {
		if t.Pending {
			result.Skipped++
			continue
		}
		amount, err := core.ParseAmount(t.Amount)
		if err != nil {
			return fmt.Errorf("transaction %s amount: %w", t.ID, err)
		}
		inserted, err := s.store.InsertTransactionIfAbsent(ctx, tx, core.Transaction{
			ID:           acct.ID + "-" + t.ID,
			ConnectionID: acct.ID,
			Date:         t.PostedAt(),
			Name:         t.Description,
			Amount:       amount,
			Category:     core.Uncategorized(),
		})
		if err != nil {
			return err
		}
		if inserted {
			result.Imported++
		} else {
			result.Skipped++
		}
	}
	return nil
}
