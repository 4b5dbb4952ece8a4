package budget

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
	"hearth/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "hearth.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestSealMonthRejectsMonthInProgress(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.SealMonth(context.Background(), core.NewMonth(2025, time.June), nil)
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	if pre.Reason != "cannot seal a month that hasn't ended" {
		t.Errorf("reason = %q", pre.Reason)
	}
}

func TestSealMonthRejectsUncategorized(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := store.CreateManualTransaction(ctx, core.Transaction{
			Date:   time.Date(2025, 5, 10+i, 0, 0, 0, 0, time.UTC),
			Name:   "Mystery",
			Amount: decimal.NewFromInt(-10),
		}); err != nil {
			t.Fatalf("CreateManualTransaction: %v", err)
		}
	}

	err := svc.SealMonth(ctx, core.NewMonth(2025, time.May), nil)
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	if pre.Reason != "2 uncategorized transactions remain" {
		t.Errorf("reason = %q", pre.Reason)
	}
}

func TestSealMonthCommitsAndIsTerminal(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	houseID, err := store.CreateFund(ctx, "House")
	if err != nil {
		t.Fatalf("CreateFund: %v", err)
	}
	travelID, err := store.CreateFund(ctx, "Travel")
	if err != nil {
		t.Fatalf("CreateFund: %v", err)
	}

	may := core.NewMonth(2025, time.May)
	allocs := map[string]decimal.Decimal{
		houseID:  decimal.NewFromInt(100),
		travelID: decimal.Zero, // omitted from the history
	}
	if err := svc.SealMonth(ctx, may, allocs); err != nil {
		t.Fatalf("SealMonth: %v", err)
	}

	history, err := store.FundAllocations(ctx)
	if err != nil {
		t.Fatalf("FundAllocations: %v", err)
	}
	if len(history) != 1 || history[0].FundID != houseID {
		t.Fatalf("allocations = %+v, want one house row", history)
	}

	err = svc.SealMonth(ctx, may, nil)
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("second seal err = %v, want PreconditionError", err)
	}
	if pre.Reason != "month is already sealed" {
		t.Errorf("reason = %q", pre.Reason)
	}

	summary, err := svc.MonthSummary(ctx, may)
	if err != nil {
		t.Fatalf("MonthSummary: %v", err)
	}
	if !summary.Sealed {
		t.Error("summary does not report the month sealed")
	}
}
