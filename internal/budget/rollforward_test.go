package budget

import (
	"context"
	"testing"
	"time"

	"hearth/internal/core"
)

func TestPlanRollForward(t *testing.T) {
	april := core.NewMonth(2025, time.April)
	previous := []core.Bill{
		{ID: "p-rent", Name: "Rent", ExpectedAmount: dec(t, "1200.00")},
		{ID: "p-net", Name: "Internet", ExpectedAmount: dec(t, "80.00")},
	}
	current := []core.Bill{
		{ID: "c-net", Name: "internet ", ExpectedAmount: dec(t, "85.00")}, // edited, matches by normalized name
		{ID: "c-flix", Name: "Netflix", ExpectedAmount: dec(t, "15.00")},  // no previous counterpart
	}

	plan := planRollForward(previous, current, april)

	if len(plan.Updates) != 1 {
		t.Fatalf("updates = %+v, want one", plan.Updates)
	}
	up := plan.Updates[0]
	if up.ID != "c-net" || up.Name != "Internet" || !up.ExpectedAmount.Equal(dec(t, "80.00")) {
		t.Errorf("update = %+v, want id kept and amount reset to 80.00", up)
	}

	if len(plan.Inserts) != 1 || plan.Inserts[0].Name != "Rent" {
		t.Fatalf("inserts = %+v, want Rent", plan.Inserts)
	}
	if plan.Inserts[0].Month != april {
		t.Errorf("insert month = %v, want %v", plan.Inserts[0].Month, april)
	}

	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != "c-flix" {
		t.Errorf("deletes = %v, want Netflix removed", plan.DeleteIDs)
	}
}

func TestPlanRollForwardDropsDuplicates(t *testing.T) {
	april := core.NewMonth(2025, time.April)
	previous := []core.Bill{
		{ID: "p-rent", Name: "Rent", ExpectedAmount: dec(t, "1200.00")},
	}
	current := []core.Bill{
		{ID: "c-rent-1", Name: "Rent", ExpectedAmount: dec(t, "1200.00")},
		{ID: "c-rent-2", Name: "RENT", ExpectedAmount: dec(t, "1300.00")}, // duplicate by normalized name
	}

	plan := planRollForward(previous, current, april)

	if len(plan.Updates) != 1 || plan.Updates[0].ID != "c-rent-1" {
		t.Fatalf("updates = %+v, want first occurrence kept", plan.Updates)
	}
	if len(plan.DeleteIDs) != 1 || plan.DeleteIDs[0] != "c-rent-2" {
		t.Errorf("deletes = %v, want duplicate removed", plan.DeleteIDs)
	}
	if len(plan.Inserts) != 0 {
		t.Errorf("inserts = %+v, want none", plan.Inserts)
	}
}

func TestRollForwardBills(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	march := core.NewMonth(2025, time.March)
	april := core.NewMonth(2025, time.April)

	for _, b := range []core.Bill{
		{Name: "Rent", ExpectedAmount: dec(t, "1200.00"), Month: march},
		{Name: "Internet", ExpectedAmount: dec(t, "80.00"), Month: march},
	} {
		if _, err := store.CreateBill(ctx, b); err != nil {
			t.Fatalf("CreateBill: %v", err)
		}
	}
	if _, err := store.CreateBill(ctx, core.Bill{Name: "Netflix", ExpectedAmount: dec(t, "15.00"), Month: april}); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	bills, err := svc.RollForwardBills(ctx, april)
	if err != nil {
		t.Fatalf("RollForwardBills: %v", err)
	}

	names := map[string]core.Bill{}
	for _, b := range bills {
		names[b.Name] = b
	}
	if len(bills) != 2 {
		t.Fatalf("bills = %+v, want exactly Rent and Internet", bills)
	}
	if _, ok := names["Netflix"]; ok {
		t.Error("Netflix survived roll-forward")
	}
	if b := names["Rent"]; !b.ExpectedAmount.Equal(dec(t, "1200.00")) {
		t.Errorf("Rent = %+v", b)
	}
	if b := names["Internet"]; b.Month != april {
		t.Errorf("Internet month = %v, want %v", b.Month, april)
	}

	// The March set is untouched.
	marchBills, err := store.BillsForMonth(ctx, march)
	if err != nil {
		t.Fatalf("BillsForMonth: %v", err)
	}
	if len(marchBills) != 2 {
		t.Errorf("march bills = %d, want 2", len(marchBills))
	}
}
