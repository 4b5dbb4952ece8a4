package budget

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
)

// PreconditionError reports a seal attempt rejected by one of the ordered
// precondition checks. The message is user-facing.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// SealMonth closes a month's books: it verifies the ordered preconditions,
// then commits the requested fund allocations and the seal marker in one
// atomic transaction. Sealing is terminal — there is no unseal.
//
// Preconditions, first failure wins: the month must have ended, must not
// already be sealed, and must have zero uncategorized transactions.
func (s *Service) SealMonth(ctx context.Context, m core.Month, allocations map[string]decimal.Decimal) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if !m.HasEnded(s.now()) {
		return &PreconditionError{Reason: "cannot seal a month that hasn't ended"}
	}

	sealed, err := s.store.IsMonthSealed(ctx, m)
	if err != nil {
		return fmt.Errorf("check sealed state: %w", err)
	}
	if sealed {
		return &PreconditionError{Reason: "month is already sealed"}
	}

	ledger, err := s.LoadLedger(ctx, m)
	if err != nil {
		return err
	}
	if n := uncategorizedCount(ledger); n > 0 {
		return &PreconditionError{Reason: fmt.Sprintf("%d uncategorized transactions remain", n)}
	}

	if err := s.store.SealMonth(ctx, m, allocations); err != nil {
		return fmt.Errorf("seal %s: %w", m, err)
	}
	return nil
}
