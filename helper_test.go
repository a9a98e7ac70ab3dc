package finance

import (
	"strings"
	"testing"

	"github.com/etnz/finance/date"
)

// INR is a helper for test to create rupees from const
func INR(v float64) Money { return M(v, "INR") }

// d is a helper for test to parse a date
func d(s string) date.Date { return date.MustParse(s) }

// ledgerOf decodes a ledger in INR from JSONL lines.
func ledgerOf(t *testing.T, lines ...string) *Ledger {
	t.Helper()
	l, err := DecodeLedger(strings.NewReader(strings.Join(lines, "\n")), "INR")
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	return l
}

// expense is a helper to create an expense in INR.
func expense(on string, amount float64, c Category, description string) Transaction {
	return NewExpense(d(on), INR(amount), c, description)
}

// income is a helper to create an income in INR.
func income(on string, amount float64, c Category, description string) Transaction {
	return NewIncome(d(on), INR(amount), c, description)
}
