package core

import "strings"

// CategoryKind enumerates the closed set of transaction categories.
type CategoryKind string

const (
	KindBill           CategoryKind = "bill"
	KindIncome         CategoryKind = "income"
	KindEverythingElse CategoryKind = "everything_else"
	KindIgnore         CategoryKind = "ignore"
	KindUncategorized  CategoryKind = "uncategorized"
	KindFund           CategoryKind = "fund"
)

// Valid reports whether k is one of the known kinds.
func (k CategoryKind) Valid() bool {
	switch k {
	case KindBill, KindIncome, KindEverythingElse, KindIgnore, KindUncategorized, KindFund:
		return true
	}
	return false
}

const fundTokenPrefix = "fund:"

// Category is the structured form of a category token: a kind plus the
// target entity it points at. TargetID is the bill id for KindBill and the
// fund id for KindFund; it is empty for every other kind. The zero value
// means no category has been assigned (a split parent).
type Category struct {
	Kind     CategoryKind
	TargetID string
}

// Uncategorized is the category of a freshly imported transaction.
func Uncategorized() Category {
	return Category{Kind: KindUncategorized}
}

// ParseCategoryToken decodes a free-form category token. The grammar:
// the reserved keywords "income", "everything_else", "ignore" and
// "uncategorized" map to their kinds; a "fund:<id>" prefix maps to a fund;
// any other token is taken to be a bill id. The function is total — a
// dangling bill id simply matches no bill at read time.
func ParseCategoryToken(token string) Category {
	switch token {
	case string(KindIncome), string(KindEverythingElse), string(KindIgnore), string(KindUncategorized):
		return Category{Kind: CategoryKind(token)}
	}
	if fundID, ok := strings.CutPrefix(token, fundTokenPrefix); ok {
		return Category{Kind: KindFund, TargetID: fundID}
	}
	return Category{Kind: KindBill, TargetID: token}
}

// Token is the inverse of ParseCategoryToken. An unassigned category
// renders as the empty token.
func (c Category) Token() string {
	switch c.Kind {
	case KindBill:
		return c.TargetID
	case KindFund:
		return fundTokenPrefix + c.TargetID
	case "":
		return ""
	default:
		return string(c.Kind)
	}
}

// IsAssigned reports whether any category has been set.
func (c Category) IsAssigned() bool {
	return c.Kind != ""
}
