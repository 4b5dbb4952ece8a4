package core

import "github.com/shopspring/decimal"

// MonthSummary is the derived monthly cash-flow picture. Every figure is
// recomputed from the ledger on read; nothing here is stored.
type MonthSummary struct {
	Month Month

	Income             decimal.Decimal
	BillsExpectedTotal decimal.Decimal
	BillsPaidTotal     decimal.Decimal
	BillsPaidCount     int
	BillsTotalCount    int
	EverythingElse     decimal.Decimal
	SavingsTarget      decimal.Decimal

	// RemainingCash = income - bills expected - everything else - savings
	// target. TotalRemainingCash omits the savings target.
	RemainingCash      decimal.Decimal
	TotalRemainingCash decimal.Decimal

	UncategorizedCount int
	Sealed             bool

	Bills []Bill
	Funds []FundBalance
}
