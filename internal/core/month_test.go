package core

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in   string
		want Month
		ok   bool
	}{
		{"01/2025", Month{2025, time.January}, true},
		{"12/2025", Month{2025, time.December}, true},
		{"03/2026", Month{2026, time.March}, true},
		{"13/2025", Month{}, false},
		{"00/2025", Month{}, false},
		{"1/2025", Month{}, false},   // not zero-padded
		{"01-2025", Month{}, false},  // wrong separator
		{"01/20251", Month{}, false}, // too long
		{"0a/2025", Month{}, false},
		{"", Month{}, false},
	}
	for _, tc := range cases {
		got, err := ParseMonth(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseMonth(%q) unexpected error: %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseMonth(%q) expected error", tc.in)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("ParseMonth(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMonthStringRoundTrip(t *testing.T) {
	for _, s := range []string{"01/2025", "09/2026", "12/1999"} {
		m, err := ParseMonth(s)
		if err != nil {
			t.Fatalf("ParseMonth(%q): %v", s, err)
		}
		if m.String() != s {
			t.Fatalf("round trip %q -> %q", s, m.String())
		}
	}
}

func TestMonthPrevNextRollover(t *testing.T) {
	jan := Month{2026, time.January}
	if got := jan.Prev(); got != (Month{2025, time.December}) {
		t.Fatalf("Prev of January = %v", got)
	}
	dec := Month{2025, time.December}
	if got := dec.Next(); got != (Month{2026, time.January}) {
		t.Fatalf("Next of December = %v", got)
	}
}

func TestMonthRange(t *testing.T) {
	m := Month{2025, time.December}
	if got := m.Start(); !got.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Start = %v", got)
	}
	if got := m.End(); !got.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("End = %v", got)
	}

	// Half-open: the first day of the next month is excluded.
	if m.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("2026-01-01 must not be in 12/2025")
	}
	if !m.Contains(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("2025-12-01 must be in 12/2025")
	}
	if !m.Contains(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("2025-12-31 must be in 12/2025")
	}
}

func TestMonthHasEnded(t *testing.T) {
	m := Month{2026, time.March}
	inProgress := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	if m.HasEnded(inProgress) {
		t.Fatal("month in progress reported as ended")
	}
	ended := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if !m.HasEnded(ended) {
		t.Fatal("month should be ended on the first of the next month")
	}
}
