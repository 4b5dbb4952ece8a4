package budget

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
)

// entry is a single categorized line of the ledger: a non-split
// transaction, or one split of a split parent with the sign already derived
// from the parent. All aggregation walks entries.
type entry struct {
	Date        time.Time
	Amount      decimal.Decimal // signed
	Category    core.Category
	IncomeMonth core.Month
	FromSplit   bool
}

func entries(txns []core.Transaction) []entry {
	var out []entry
	for _, t := range txns {
		if !t.IsSplit {
			out = append(out, entry{
				Date:        t.Date,
				Amount:      t.Amount,
				Category:    t.Category,
				IncomeMonth: t.IncomeMonth,
			})
			continue
		}
		for _, sp := range t.Splits {
			out = append(out, entry{
				Date:        sp.Date,
				Amount:      core.SignedSplitAmount(sp.Amount, t.Amount),
				Category:    sp.Category,
				IncomeMonth: sp.IncomeMonth,
				FromSplit:   true,
			})
		}
	}
	return out
}

// incomeForMonth sums income entries attributed to the month. Attribution
// is by income-month, never by entry date, so a paycheck dated late in one
// month can count toward the next.
func incomeForMonth(ledger *Ledger) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries(ledger.Transactions) {
		if e.Category.Kind == core.KindIncome && e.IncomeMonth == ledger.Month {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// everythingElseForMonth sums the magnitudes of discretionary spending
// dated inside the month interval.
func everythingElseForMonth(ledger *Ledger) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries(ledger.Transactions) {
		if e.Category.Kind == core.KindEverythingElse && ledger.Month.Contains(e.Date) {
			total = total.Add(e.Amount.Abs())
		}
	}
	return total
}

// uncategorizedCount counts the month's lines still awaiting a category:
// non-split uncategorized transactions, plus splits whose category is
// uncategorized or was never assigned.
func uncategorizedCount(ledger *Ledger) int {
	n := 0
	for _, e := range entries(ledger.Transactions) {
		if !ledger.Month.Contains(e.Date) {
			continue
		}
		switch {
		case !e.FromSplit && e.Category.Kind == core.KindUncategorized:
			n++
		case e.FromSplit && (e.Category.Kind == core.KindUncategorized || !e.Category.IsAssigned()):
			n++
		}
	}
	return n
}

// BillsWithPayments derives paid amounts for the month's bills. A payment
// is any entry whose category targets the bill's id, with no date filter —
// bill ids are month-scoped, so the target alone identifies the month.
func BillsWithPayments(ledger *Ledger) []core.Bill {
	type payment struct {
		total decimal.Decimal
		last  time.Time
	}
	paid := make(map[string]payment)
	for _, e := range entries(ledger.Transactions) {
		if e.Category.Kind != core.KindBill {
			continue
		}
		p := paid[e.Category.TargetID]
		p.total = p.total.Add(e.Amount.Abs())
		if e.Date.After(p.last) {
			p.last = e.Date
		}
		paid[e.Category.TargetID] = p
	}

	bills := make([]core.Bill, len(ledger.Bills))
	copy(bills, ledger.Bills)
	for i := range bills {
		if p, ok := paid[bills[i].ID]; ok {
			bills[i].PaidAmount = p.total
			bills[i].PaidDate = p.last
		}
	}
	return bills
}

// fundBalances derives the running balance of every fund: the settings
// override (or, absent one, the full allocation history) plus the signed
// sum of everything ever categorized to the fund. No date restriction —
// balances are cumulative.
func fundBalances(ledger *Ledger) []core.FundBalance {
	allocated := make(map[string]decimal.Decimal)
	for _, a := range ledger.Allocations {
		allocated[a.FundID] = allocated[a.FundID].Add(a.Amount)
	}
	spent := make(map[string]decimal.Decimal)
	for _, e := range entries(ledger.Transactions) {
		if e.Category.Kind == core.KindFund {
			spent[e.Category.TargetID] = spent[e.Category.TargetID].Add(e.Amount)
		}
	}

	balances := make([]core.FundBalance, 0, len(ledger.Funds))
	for _, f := range ledger.Funds {
		fb := core.FundBalance{
			FundID:   f.ID,
			Name:     f.Name,
			Position: core.PositionLeft,
			Visible:  true,
		}
		base := allocated[f.ID]
		if fs, ok := ledger.FundSettings[f.ID]; ok {
			if fs.DisplayName != "" {
				fb.Name = fs.DisplayName
			}
			fb.Position = fs.Position
			fb.Visible = fs.Visible
			if fs.OverrideAmount != nil {
				base = *fs.OverrideAmount
			}
		}
		fb.Balance = base.Add(spent[f.ID])
		balances = append(balances, fb)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Name < balances[j].Name })
	return balances
}

// Summarize computes the full monthly summary from a ledger snapshot. It
// is a pure function: two calls over the same snapshot always agree.
func Summarize(ledger *Ledger) core.MonthSummary {
	bills := BillsWithPayments(ledger)

	expectedTotal := decimal.Zero
	paidTotal := decimal.Zero
	paidCount := 0
	for _, b := range bills {
		expectedTotal = expectedTotal.Add(b.ExpectedAmount)
		paidTotal = paidTotal.Add(b.PaidAmount)
		if b.Paid() {
			paidCount++
		}
	}

	income := incomeForMonth(ledger)
	everythingElse := everythingElseForMonth(ledger)
	preSavings := income.Sub(expectedTotal).Sub(everythingElse)

	return core.MonthSummary{
		Month:              ledger.Month,
		Income:             income,
		BillsExpectedTotal: expectedTotal,
		BillsPaidTotal:     paidTotal,
		BillsPaidCount:     paidCount,
		BillsTotalCount:    len(bills),
		EverythingElse:     everythingElse,
		SavingsTarget:      ledger.SavingsTarget,
		RemainingCash:      preSavings.Sub(ledger.SavingsTarget),
		TotalRemainingCash: preSavings,
		UncategorizedCount: uncategorizedCount(ledger),
		Sealed:             ledger.Sealed,
		Bills:              bills,
		Funds:              fundBalances(ledger),
	}
}

// MonthSummary loads the ledger and summarizes it in one call.
func (s *Service) MonthSummary(ctx context.Context, m core.Month) (core.MonthSummary, error) {
	ledger, err := s.LoadLedger(ctx, m)
	if err != nil {
		return core.MonthSummary{}, err
	}
	return Summarize(ledger), nil
}
