package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account types recognized for a connection. Off-budget types such as
// investment and retirement are tracked for net worth only.
const (
	AccountChecking   = "checking"
	AccountSavings    = "savings"
	AccountCredit     = "credit"
	AccountInvestment = "investment"
	AccountRetirement = "retirement"
)

// ManualConnectionID is the synthetic connection that owns transactions
// entered by hand rather than imported from a bank.
const ManualConnectionID = "manual"

var (
	ErrEmptyName          = errors.New("name is required")
	ErrEmptyID            = errors.New("id is required")
	ErrZeroDate           = errors.New("date is required")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrMissingIncomeMonth = errors.New("income category requires an income month")
	ErrSplitOverAllocated = errors.New("split amounts exceed the transaction amount")
	ErrInvalidFundPosition = errors.New("fund position must be left or right")
)

// Connection is a financial account, either imported from the bank
// aggregator or created by hand.
type Connection struct {
	ID             string
	Name           string
	DisplayName    string
	CurrentBalance decimal.Decimal
	OnBudget       bool
	AccountType    string
	LastSyncedAt   time.Time // zero when never synced
}

func (c Connection) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.AccountType != "" {
		switch c.AccountType {
		case AccountChecking, AccountSavings, AccountCredit, AccountInvestment, AccountRetirement:
		default:
			return ErrInvalidAccountType
		}
	}
	return nil
}

// Transaction is a ledger entry. When IsSplit is set the parent carries no
// category of its own and its amount is apportioned across Splits.
type Transaction struct {
	ID           string
	ConnectionID string
	Date         time.Time
	Name         string
	Amount       decimal.Decimal
	Category     Category
	IncomeMonth  Month // set only when Category.Kind is KindIncome
	IsSplit      bool
	Splits       []TransactionSplit
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if t.Category.Kind == KindIncome && t.IncomeMonth.IsZero() {
		return ErrMissingIncomeMonth
	}
	return nil
}

// ValidateSplits checks the apportioning invariant: the sum of split
// magnitudes never exceeds the parent's absolute amount.
func (t Transaction) ValidateSplits(splits []TransactionSplit) error {
	total := decimal.Zero
	for _, s := range splits {
		if s.Date.IsZero() {
			return ErrZeroDate
		}
		if s.Category.Kind == KindIncome && s.IncomeMonth.IsZero() {
			return ErrMissingIncomeMonth
		}
		total = total.Add(s.Amount.Abs())
	}
	if total.GreaterThan(t.Amount.Abs()) {
		return ErrSplitOverAllocated
	}
	return nil
}

// TransactionSplit is a sub-allocation of a parent transaction. Amount is
// an unsigned magnitude; the sign is inherited from the parent. The date
// may diverge from the parent's to attribute spending to another month.
type TransactionSplit struct {
	ID            string
	TransactionID string
	Label         string
	Amount        decimal.Decimal
	Date          time.Time
	Category      Category
	IncomeMonth   Month
}

// Bill is an expected monthly obligation. Paid state is derived from the
// transactions categorized to the bill's id, never stored.
type Bill struct {
	ID             string
	Name           string
	ExpectedAmount decimal.Decimal
	Month          Month

	// Derived on read.
	PaidAmount decimal.Decimal
	PaidDate   time.Time // zero when no payment matched
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	return b.Month.Validate()
}

// Paid reports whether any positive payment has been matched to the bill.
func (b Bill) Paid() bool {
	return b.PaidAmount.IsPositive()
}

// HasPayment reports whether any transaction matched the bill at all.
func (b Bill) HasPayment() bool {
	return !b.PaidDate.IsZero()
}

// Fund is a named savings bucket.
type Fund struct {
	ID   string
	Name string
}

// Fund display positions.
const (
	PositionLeft  = "left"
	PositionRight = "right"
)

// FundSettings holds the per-fund display configuration, one row per fund.
// OverrideAmount, when set, replaces the allocation history as the fund's
// starting balance.
type FundSettings struct {
	FundID         string
	DisplayName    string
	Position       string
	Visible        bool
	OverrideAmount *decimal.Decimal
}

// FundAllocation records money moved into a fund when a month was sealed.
// Allocations are immutable; a negative amount represents a pull.
type FundAllocation struct {
	ID     string
	FundID string
	Month  Month
	Amount decimal.Decimal
}

// FundBalance is the derived view of a fund as surfaced to callers.
type FundBalance struct {
	FundID   string
	Name     string
	Position string
	Visible  bool
	Balance  decimal.Decimal
}

// SealedMonth marks a month whose books are closed. Its presence is the
// terminal state of the sealing state machine.
type SealedMonth struct {
	ID       string
	Month    Month
	SealedAt time.Time
}
