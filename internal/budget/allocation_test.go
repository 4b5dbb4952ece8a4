package budget

import (
	"testing"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
)

func TestDefaultAllocationStrategy(t *testing.T) {
	funds := []core.Fund{
		{ID: "f-house", Name: "House"},
		{ID: "f-travel", Name: "Travel"},
		{ID: "f-madison", Name: "Madison"},
		{ID: "f-josh", Name: "Josh"},
	}

	tests := []struct {
		name    string
		surplus string
		want    map[string]string
	}{
		{
			name:    "plenty for everyone",
			surplus: "700.00",
			want:    map[string]string{"f-house": "200", "f-travel": "100", "f-madison": "200", "f-josh": "200"},
		},
		{
			name:    "odd cent goes to the second personal fund",
			surplus: "300.01",
			want:    map[string]string{"f-house": "200", "f-travel": "100", "f-madison": "0.00", "f-josh": "0.01"},
		},
		{
			name:    "house only partially funded",
			surplus: "150.00",
			want:    map[string]string{"f-house": "150", "f-travel": "0"},
		},
		{
			name:    "nothing to give",
			surplus: "0.00",
			want:    map[string]string{},
		},
		{
			name:    "deficit proposes nothing",
			surplus: "-50.00",
			want:    map[string]string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DefaultAllocationStrategy(dec(t, tc.surplus), funds)
			for fundID, wantStr := range tc.want {
				want := dec(t, wantStr)
				if !got[fundID].Equal(want) {
					t.Errorf("%s = %s, want %s", fundID, got[fundID], want)
				}
			}
			// No proposal for funds outside the expectation set.
			for fundID, amount := range got {
				if _, ok := tc.want[fundID]; !ok && !amount.IsZero() {
					t.Errorf("unexpected allocation %s = %s", fundID, amount)
				}
			}
		})
	}
}

func TestDefaultAllocationStrategyUnevenRest(t *testing.T) {
	funds := []core.Fund{
		{ID: "f-a", Name: "A"},
		{ID: "f-b", Name: "B"},
		{ID: "f-c", Name: "C"},
	}
	got := DefaultAllocationStrategy(dec(t, "100.00"), funds)

	total := decimal.Zero
	for _, amount := range got {
		total = total.Add(amount)
	}
	if !total.Equal(dec(t, "100.00")) {
		t.Errorf("total distributed = %s, want 100.00", total)
	}
	if !got["f-a"].Equal(got["f-b"]) {
		t.Errorf("first two shares differ: %s vs %s", got["f-a"], got["f-b"])
	}
}
