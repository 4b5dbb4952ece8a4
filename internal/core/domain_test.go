package core

import (
	"errors"
	"testing"
	"time"
)

func TestConnectionValidate(t *testing.T) {
	good := Connection{ID: "acc-1", Name: "Chase Checking", AccountType: AccountChecking}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		c    Connection
		want error
	}{
		{Connection{Name: "x"}, ErrEmptyID},
		{Connection{ID: "acc-1"}, ErrEmptyName},
		{Connection{ID: "acc-1", Name: "x", AccountType: "offshore"}, ErrInvalidAccountType},
	}
	for i, tc := range cases {
		if err := tc.c.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	good := Transaction{Name: "Paycheck", Date: date, Amount: dec("2500.00"),
		Category: Category{Kind: KindIncome}, IncomeMonth: Month{2026, time.March}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	noMonth := good
	noMonth.IncomeMonth = Month{}
	if err := noMonth.Validate(); !errors.Is(err, ErrMissingIncomeMonth) {
		t.Fatalf("income without month: got %v", err)
	}

	noDate := good
	noDate.Date = time.Time{}
	if err := noDate.Validate(); !errors.Is(err, ErrZeroDate) {
		t.Fatalf("zero date: got %v", err)
	}
}

func TestValidateSplits(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	parent := Transaction{Name: "Costco", Date: date, Amount: dec("-180.00")}

	ok := []TransactionSplit{
		{Amount: dec("120.00"), Date: date, Category: Category{Kind: KindEverythingElse}},
		{Amount: dec("60.00"), Date: date, Category: Category{Kind: KindFund, TargetID: "fund-x"}},
	}
	if err := parent.ValidateSplits(ok); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	over := []TransactionSplit{
		{Amount: dec("120.00"), Date: date},
		{Amount: dec("60.01"), Date: date},
	}
	if err := parent.ValidateSplits(over); !errors.Is(err, ErrSplitOverAllocated) {
		t.Fatalf("over-allocation: got %v", err)
	}

	// Under-allocation is allowed; only exceeding the parent is an error.
	under := []TransactionSplit{{Amount: dec("50.00"), Date: date}}
	if err := parent.ValidateSplits(under); err != nil {
		t.Fatalf("under-allocation should be fine, got %v", err)
	}
}

func TestBillPaid(t *testing.T) {
	b := Bill{ID: "b1", Name: "Rent", ExpectedAmount: dec("150.00"), Month: Month{2026, time.March}}
	if b.Paid() || b.HasPayment() {
		t.Fatal("fresh bill must be unpaid")
	}
	b.PaidAmount = dec("150.00")
	b.PaidDate = time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if !b.Paid() || !b.HasPayment() {
		t.Fatal("bill with matched payment must be paid")
	}
}
