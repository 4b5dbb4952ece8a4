package core

import "testing"

func TestParseCategoryToken(t *testing.T) {
	cases := []struct {
		token string
		want  Category
	}{
		{"income", Category{Kind: KindIncome}},
		{"everything_else", Category{Kind: KindEverythingElse}},
		{"ignore", Category{Kind: KindIgnore}},
		{"uncategorized", Category{Kind: KindUncategorized}},
		{"fund:fund-travel", Category{Kind: KindFund, TargetID: "fund-travel"}},
		// Anything else is a bill id, no existence check at this layer.
		{"bill-rent-03-2026", Category{Kind: KindBill, TargetID: "bill-rent-03-2026"}},
		{"Fund:fund-travel", Category{Kind: KindBill, TargetID: "Fund:fund-travel"}}, // prefix is case-sensitive
	}
	for _, tc := range cases {
		if got := ParseCategoryToken(tc.token); got != tc.want {
			t.Fatalf("ParseCategoryToken(%q) = %+v, want %+v", tc.token, got, tc.want)
		}
	}
}

func TestCategoryTokenRoundTrip(t *testing.T) {
	tokens := []string{
		"income",
		"everything_else",
		"ignore",
		"uncategorized",
		"fund:fund-travel",
		"bill-internet",
	}
	for _, token := range tokens {
		if got := ParseCategoryToken(token).Token(); got != token {
			t.Fatalf("round trip %q -> %q", token, got)
		}
	}
}

func TestCategoryZeroValue(t *testing.T) {
	var c Category
	if c.IsAssigned() {
		t.Fatal("zero category must not be assigned")
	}
	if c.Token() != "" {
		t.Fatalf("zero category token = %q", c.Token())
	}
}

func TestCategoryKindValid(t *testing.T) {
	for _, k := range []CategoryKind{KindBill, KindIncome, KindEverythingElse, KindIgnore, KindUncategorized, KindFund} {
		if !k.Valid() {
			t.Fatalf("%q should be valid", k)
		}
	}
	if CategoryKind("savings").Valid() {
		t.Fatal("unknown kind reported valid")
	}
}
