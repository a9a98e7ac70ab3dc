package finance

import (
	"strings"
	"testing"

	"github.com/etnz/finance/date"
)

func TestClassify(t *testing.T) {
	override := expense("2025-01-01", 500, Dining, "team lunch")
	override.NWI = Needs
	badOverride := expense("2025-01-01", 500, Dining, "dinner")
	badOverride.NWI = Bucket("luxury")

	testCases := []struct {
		name   string
		tx     Transaction
		want   Bucket
		wantOK bool
	}{
		{"override wins", override, Needs, true},
		{"invalid override is ignored", badOverride, Wants, true},
		{"income is not classified", income("2025-01-01", 1000, Salary, "pay"), "", false},
		{"needs category", expense("2025-01-01", 1, Groceries, ""), Needs, true},
		{"investments category", expense("2025-01-01", 1, Investments, ""), InvestmentsBucket, true},
		{"savings category", expense("2025-01-01", 1, Savings, ""), SavingsBucket, true},
		{"unknown category falls into wants", expense("2025-01-01", 1, Category("pets"), ""), Wants, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Classify(tc.tx, DefaultNWITable)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("Classify() = %q, %v, want %q, %v", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestLoadNWITable(t *testing.T) {
	table, err := LoadNWITable(strings.NewReader("needs: [dining, \"Personal Care\"]\n"))
	if err != nil {
		t.Fatalf("LoadNWITable() unexpected error: %v", err)
	}
	if table[Dining] != Needs || table[PersonalCare] != Needs {
		t.Errorf("LoadNWITable() did not override dining and personal care: %v", table)
	}
	if table[Groceries] != Needs || table[Shopping] != Wants {
		t.Errorf("LoadNWITable() should keep the default for other categories")
	}
	if DefaultNWITable[Dining] != Wants {
		t.Errorf("LoadNWITable() modified the default table")
	}

	for _, doc := range []string{"luxury: [dining]", "needs: [salary]", "needs: [pets]"} {
		if _, err := LoadNWITable(strings.NewReader(doc)); err == nil {
			t.Errorf("LoadNWITable(%q) expected an error", doc)
		}
	}
}

func TestNWIBreakdown(t *testing.T) {
	ledger := NewLedger("INR")
	ledger.Append(
		income("2025-03-01", 100000, Salary, "pay"),
		expense("2025-03-02", 30000, Housing, "rent"),
		expense("2025-03-05", 20000, Dining, "restaurants"),
		expense("2025-03-10", 10000, Investments, "SIP"),
		expense("2025-04-01", 99999, Dining, "out of range"),
	)
	report := NWIBreakdown(ledger, date.Monthly.Range(d("2025-03-15")), DefaultNWITable)

	if !report.Income.Equal(INR(100000)) || !report.Outflow.Equal(INR(60000)) {
		t.Fatalf("NWIBreakdown() income/outflow = %v/%v, want 100000/60000", report.Income, report.Outflow)
	}
	needs := report.Bucket(Needs)
	if !needs.Amount.Equal(INR(30000)) || !needs.Share.Equal(50) || !needs.OfIncome.Equal(30) {
		t.Errorf("needs = %+v, want 30000, 50%% of outflow, 30%% of income", needs)
	}
	if !needs.Target.Equal(50) || !needs.Deviation.Equal(0) {
		t.Errorf("needs target/deviation = %v/%v, want 50/0", needs.Target, needs.Deviation)
	}
	inv := report.Bucket(InvestmentsBucket)
	if !inv.Deviation.Equal(Percent(100.0/6 - 20)) {
		t.Errorf("investments deviation = %v, want %v", inv.Deviation, Percent(100.0/6-20))
	}
	if savings := report.Bucket(SavingsBucket); !savings.Amount.IsZero() || savings.Share != 0 {
		t.Errorf("savings = %+v, want zero", savings)
	}
}
