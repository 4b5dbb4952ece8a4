package budget

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
)

// AllocationStrategy proposes how a month's surplus should be distributed
// across funds. It is a suggestion only — the caller may edit the amounts
// before sealing. The strategy is swappable; the default encodes household
// policy, not architecture.
type AllocationStrategy func(surplus decimal.Decimal, funds []core.Fund) map[string]decimal.Decimal

var (
	houseCap  = decimal.NewFromInt(200)
	travelCap = decimal.NewFromInt(100)
)

// DefaultAllocationStrategy fills the House fund up to 200, then Travel up
// to 100, and splits whatever is left evenly across the remaining funds
// with any odd cent landing on the last of them. A non-positive surplus
// proposes nothing.
func DefaultAllocationStrategy(surplus decimal.Decimal, funds []core.Fund) map[string]decimal.Decimal {
	proposal := make(map[string]decimal.Decimal, len(funds))
	if !surplus.IsPositive() {
		return proposal
	}

	remaining := surplus
	var rest []core.Fund
	take := func(limit decimal.Decimal) decimal.Decimal {
		amount := decimal.Min(limit, remaining)
		remaining = remaining.Sub(amount)
		return amount
	}

	for _, f := range funds {
		switch strings.ToLower(strings.TrimSpace(f.Name)) {
		case "house":
			proposal[f.ID] = take(houseCap)
		case "travel":
			proposal[f.ID] = take(travelCap)
		default:
			rest = append(rest, f)
		}
	}

	if len(rest) == 0 || !remaining.IsPositive() {
		return proposal
	}
	if len(rest) == 2 {
		first, second := core.SplitEven(remaining)
		proposal[rest[0].ID] = first
		proposal[rest[1].ID] = second
		return proposal
	}

	cents := remaining.Mul(decimal.NewFromInt(100)).IntPart()
	each := cents / int64(len(rest))
	for i, f := range rest {
		share := each
		if i == len(rest)-1 {
			share = cents - each*int64(len(rest)-1)
		}
		proposal[f.ID] = decimal.New(share, -2)
	}
	return proposal
}

// ProposeAllocations computes the month's surplus and runs the allocation
// strategy over it.
func (s *Service) ProposeAllocations(ctx context.Context, m core.Month) (map[string]decimal.Decimal, error) {
	ledger, err := s.LoadLedger(ctx, m)
	if err != nil {
		return nil, err
	}
	summary := Summarize(ledger)
	return s.allocate(summary.TotalRemainingCash, ledger.Funds), nil
}
