package budget

import (
	"context"
	"fmt"
	"strings"

	"hearth/internal/core"
)

// billPlan is the computed reconciliation between two months' bill sets.
type billPlan struct {
	Updates   []core.Bill // current-month rows rewritten in place, ids kept
	Inserts   []core.Bill // previous-month bills with no current counterpart
	DeleteIDs []string    // current-month strays and duplicates
}

func normalizeBillName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// planRollForward reconciles the target month's bills against the previous
// month's, matching by normalized name. Matches are updated in place so
// their ids — and therefore their paid-amount linkage — survive; unmatched
// previous bills are inserted; unmatched current bills and duplicate names
// are removed. The result mirrors the previous month exactly, one row per
// distinct name.
func planRollForward(previous, current []core.Bill, target core.Month) billPlan {
	var plan billPlan

	// First occurrence of each name wins; later duplicates are strays.
	currByName := make(map[string]core.Bill, len(current))
	for _, b := range current {
		key := normalizeBillName(b.Name)
		if _, seen := currByName[key]; seen {
			plan.DeleteIDs = append(plan.DeleteIDs, b.ID)
			continue
		}
		currByName[key] = b
	}

	matched := make(map[string]bool, len(previous))
	for _, prev := range previous {
		key := normalizeBillName(prev.Name)
		if matched[key] {
			continue
		}
		matched[key] = true

		if curr, ok := currByName[key]; ok {
			plan.Updates = append(plan.Updates, core.Bill{
				ID:             curr.ID,
				Name:           prev.Name,
				ExpectedAmount: prev.ExpectedAmount,
				Month:          target,
			})
			continue
		}
		plan.Inserts = append(plan.Inserts, core.Bill{
			Name:           prev.Name,
			ExpectedAmount: prev.ExpectedAmount,
			Month:          target,
		})
	}

	for key, b := range currByName {
		if !matched[key] {
			plan.DeleteIDs = append(plan.DeleteIDs, b.ID)
		}
	}
	return plan
}

// RollForwardBills copies the previous month's bill set into the given
// month, applies the reconciliation atomically, and returns the refreshed
// bill list with paid amounts derived.
func (s *Service) RollForwardBills(ctx context.Context, m core.Month) ([]core.Bill, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	previous, err := s.store.BillsForMonth(ctx, m.Prev())
	if err != nil {
		return nil, fmt.Errorf("load previous month bills: %w", err)
	}
	current, err := s.store.BillsForMonth(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("load current month bills: %w", err)
	}

	plan := planRollForward(previous, current, m)
	if err := s.store.ApplyBillPlan(ctx, plan.Updates, plan.Inserts, plan.DeleteIDs); err != nil {
		return nil, fmt.Errorf("apply roll-forward: %w", err)
	}

	ledger, err := s.LoadLedger(ctx, m)
	if err != nil {
		return nil, err
	}
	return BillsWithPayments(ledger), nil
}
