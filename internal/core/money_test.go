package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"-180.00", "-180.00", true},
		{"12.345", "12.35", true}, // rounds half away from zero
		{"12.344", "12.34", true},
		{"0", "0.00", true},
		{" 8.50 ", "8.50", true},
		{"", "", false},
		{"abc", "", false},
		{"12,34", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseAmount(%q) unexpected error: %v", tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("ParseAmount(%q) expected error", tc.in)
			}
			continue
		}
		if FormatAmount(got) != tc.want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, FormatAmount(got), tc.want)
		}
	}
}

func TestSignedSplitAmount(t *testing.T) {
	// A withdrawal split into a fund contributes a decrease, not an increase.
	got := SignedSplitAmount(dec("60.00"), dec("-180.00"))
	if !got.Equal(dec("-60.00")) {
		t.Fatalf("withdrawal split = %s, want -60.00", got)
	}
	got = SignedSplitAmount(dec("60.00"), dec("180.00"))
	if !got.Equal(dec("60.00")) {
		t.Fatalf("deposit split = %s, want 60.00", got)
	}
	// Magnitude is normalized even if the stored value carried a sign.
	got = SignedSplitAmount(dec("-60.00"), dec("-180.00"))
	if !got.Equal(dec("-60.00")) {
		t.Fatalf("signed stored split = %s, want -60.00", got)
	}
}

func TestSplitEven(t *testing.T) {
	cases := []struct {
		total, first, second string
	}{
		{"100.00", "50.00", "50.00"},
		{"100.01", "50.00", "50.01"}, // odd cent goes to the second share
		{"0.01", "0.00", "0.01"},
		{"0.00", "0.00", "0.00"},
	}
	for _, tc := range cases {
		first, second := SplitEven(dec(tc.total))
		if FormatAmount(first) != tc.first || FormatAmount(second) != tc.second {
			t.Fatalf("SplitEven(%s) = %s/%s, want %s/%s",
				tc.total, FormatAmount(first), FormatAmount(second), tc.first, tc.second)
		}
		if !first.Add(second).Equal(dec(tc.total)) {
			t.Fatalf("SplitEven(%s) shares do not sum back", tc.total)
		}
	}
}
