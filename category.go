package finance

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Category of a transaction.
//
// Categories are a closed list: the ledger refuses unknown ones so that
// budgets, rules and reports always agree on the spelling.
type Category string

// Expense categories.
const (
	Housing       Category = "housing"
	Groceries     Category = "groceries"
	Utilities     Category = "utilities"
	Transport     Category = "transport"
	Healthcare    Category = "healthcare"
	Insurance     Category = "insurance"
	Education     Category = "education"
	Debt          Category = "debt"
	Dining        Category = "dining"
	Shopping      Category = "shopping"
	Entertainment Category = "entertainment"
	Travel        Category = "travel"
	PersonalCare  Category = "personal-care"
	Subscriptions Category = "subscriptions"
	Gifts         Category = "gifts"
	Investments   Category = "investments"
	Savings       Category = "savings"
	OtherExpense  Category = "other"
)

// Income categories.
const (
	Salary      Category = "salary"
	Freelance   Category = "freelance"
	Business    Category = "business"
	Interest    Category = "interest"
	Dividends   Category = "dividends"
	Refund      Category = "refund"
	OtherIncome Category = "other-income"
)

// ErrUnknownCategory is returned when a category is not in the closed list.
var ErrUnknownCategory = errors.New("unknown category")

type categoryInfo struct {
	label  string
	income bool
}

var categories = map[Category]categoryInfo{
	Housing:       {"Rent & Housing", false},
	Groceries:     {"Groceries", false},
	Utilities:     {"Bills & Utilities", false},
	Transport:     {"Transportation", false},
	Healthcare:    {"Healthcare", false},
	Insurance:     {"Insurance", false},
	Education:     {"Education", false},
	Debt:          {"Loans & EMI", false},
	Dining:        {"Food & Dining", false},
	Shopping:      {"Shopping", false},
	Entertainment: {"Entertainment", false},
	Travel:        {"Travel", false},
	PersonalCare:  {"Personal Care", false},
	Subscriptions: {"Subscriptions", false},
	Gifts:         {"Gifts & Donations", false},
	Investments:   {"Investments", false},
	Savings:       {"Savings", false},
	OtherExpense:  {"Other", false},
	Salary:        {"Salary", true},
	Freelance:     {"Freelance", true},
	Business:      {"Business", true},
	Interest:      {"Interest", true},
	Dividends:     {"Dividends", true},
	Refund:        {"Refunds", true},
	OtherIncome:   {"Other Income", true},
}

// Label returns the human name of the category.
func (c Category) Label() string {
	if info, ok := categories[c]; ok {
		return info.label
	}
	return string(c)
}

// IsIncome reports whether c is an income category.
func (c Category) IsIncome() bool { return categories[c].income }

// Valid reports whether c belongs to the closed list.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// ParseCategory accepts either the identifier ("dining") or the label
// ("Food & Dining"), case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if c := Category(strings.ToLower(s)); c.Valid() {
		return c, nil
	}
	for c, info := range categories {
		if strings.EqualFold(info.label, s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownCategory, s)
}

// Categories returns all categories, expenses first, sorted by identifier.
func Categories() []Category {
	all := make([]Category, 0, len(categories))
	for c := range categories {
		all = append(all, c)
	}
	slices.SortFunc(all, func(a, b Category) int {
		if a.IsIncome() != b.IsIncome() {
			if a.IsIncome() {
				return 1
			}
			return -1
		}
		return strings.Compare(string(a), string(b))
	})
	return all
}
