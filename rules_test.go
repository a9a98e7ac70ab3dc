package finance

import (
	"strings"
	"testing"
)

const testRules = `
rules:
  - name: swiggy
    pattern: swiggy
    category: dining
  - name: swiggy genie
    pattern: swiggy genie
    category: transport
  - name: instamart
    match: prefix
    pattern: swiggy instamart
    category: groceries
  - name: zomato
    pattern: zomato
    category: dining
  - name: zomato shop
    pattern: zomato
    category: shopping
  - name: uber
    match: regex
    pattern: ^uber( trip)?$
    category: transport
  - name: amazon
    pattern: amazon
    category: shopping
  - name: amazon gifts
    match: exact
    pattern: amazon
    category: Gifts & Donations
    min_amount: 5000
  - name: rent
    pattern: rent
    category: housing
    priority: 10
  - name: rent a car
    pattern: rent a car
    category: transport
  - name: decathlon
    field: merchant
    pattern: decathlon
    category: shopping
  - name: employer
    pattern: acme
    category: salary
`

func TestRules_Categorize(t *testing.T) {
	rules, err := LoadRules(strings.NewReader(testRules))
	if err != nil {
		t.Fatalf("LoadRules() unexpected error: %v", err)
	}

	withMerchant := expense("2025-01-01", 2500, OtherExpense, "sports gear")
	withMerchant.Merchant = "Decathlon Whitefield"

	testCases := []struct {
		name     string
		tx       Transaction
		wantRule string
		wantCat  Category
	}{
		{"contains, case insensitive", expense("2025-01-01", 300, OtherExpense, "SWIGGY order 123"), "swiggy", Dining},
		{"prefix beats contains", expense("2025-01-01", 300, OtherExpense, "Swiggy Instamart delivery"), "instamart", Groceries},
		{"longer pattern wins", expense("2025-01-01", 300, OtherExpense, "swiggy genie pickup"), "swiggy genie", Transport},
		{"declaration order breaks ties", expense("2025-01-01", 300, OtherExpense, "zomato"), "zomato", Dining},
		{"regex", expense("2025-01-01", 300, OtherExpense, "Uber Trip"), "uber", Transport},
		{"regex anchored", expense("2025-01-01", 300, OtherExpense, "uber eats"), "", ""},
		{"amount below minimum", expense("2025-01-01", 100, OtherExpense, "Amazon"), "amazon", Shopping},
		{"exact beats contains", expense("2025-01-01", 6000, OtherExpense, "Amazon"), "amazon gifts", Gifts},
		{"priority beats specificity", expense("2025-01-01", 3000, OtherExpense, "rent a car"), "rent", Housing},
		{"merchant field", withMerchant, "decathlon", Shopping},
		{"income rules for income only", income("2025-01-01", 90000, OtherIncome, "ACME payroll"), "employer", Salary},
		{"no expense rule for income", income("2025-01-01", 300, OtherIncome, "swiggy refund"), "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rule, ok := rules.Categorize(tc.tx)
			if ok != (tc.wantRule != "") {
				t.Fatalf("Categorize() ok = %v, want rule %q", ok, tc.wantRule)
			}
			if rule.Name != tc.wantRule || rule.Category != tc.wantCat {
				t.Errorf("Categorize() = %s (%s), want %s (%s)", rule.Name, rule.Category, tc.wantRule, tc.wantCat)
			}
		})
	}
}

func TestLoadRules_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
		want string
	}{
		{"bad regex", "rules:\n  - name: r\n    match: regex\n    pattern: \"(\"\n    category: dining\n", "invalid regex"},
		{"unknown category", "rules:\n  - pattern: x\n    category: pets\n", "unknown category"},
		{"unknown match", "rules:\n  - pattern: x\n    match: fuzzy\n    category: dining\n", "unknown match"},
		{"missing pattern", "rules:\n  - name: empty\n    category: dining\n", "rule empty: pattern is missing"},
		{"unknown field", "rules:\n  - pattern: x\n    field: memo\n    category: dining\n", "unknown field"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRules(strings.NewReader(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("LoadRules() error = %v, want it to contain %q", err, tc.want)
			}
		})
	}
}
