package finance

import (
	"cmp"
	"slices"

	"github.com/etnz/finance/date"
)

// CategoryTotal is the spend or income of one category.
type CategoryTotal struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
	Share    Percent  `json:"share"` // of the total expense (or income for income categories)
	Count    int      `json:"count"`
}

// Totals are the cash flows of a range.
type Totals struct {
	Range   date.Range `json:"range"`
	Income  Money      `json:"income"`
	Expense Money      `json:"expense"`
}

// Net returns income minus expense.
func (t Totals) Net() Money { return t.Income.Sub(t.Expense) }

// SavingsRate returns the share of income that was not spent.
func (t Totals) SavingsRate() Percent { return ratio(t.Net(), t.Income) }

// Analysis is the report of a range: totals, categories, a series of
// sub-periods and the comparison with the previous range.
type Analysis struct {
	Totals
	Previous      Totals          `json:"previous"`
	IncomeChange  Percent         `json:"income_change"` // vs the previous range
	ExpenseChange Percent         `json:"expense_change"`
	Expenses      []CategoryTotal `json:"expenses"` // sorted by amount, largest first
	Incomes       []CategoryTotal `json:"incomes"`
	Series        []Totals        `json:"series"`
}

func (l *Ledger) totals(r date.Range) Totals {
	t := Totals{Range: r, Income: l.Zero(), Expense: l.Zero()}
	for _, tx := range l.Transactions(r) {
		if tx.Type == Income {
			t.Income = t.Income.Add(tx.Amount)
		} else {
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	return t
}

// change returns the relative change from prev to cur, 0 when prev is zero.
func change(cur, prev Money) Percent { return ratio(cur.Sub(prev), prev) }

// seriesPeriod returns the granularity of the series of r.
func seriesPeriod(r date.Range) date.Period {
	if p, ok := r.Period(); ok {
		return p.Sub()
	}
	if r.Days() > 62 {
		return date.Monthly
	}
	return date.Daily
}

// Analyze reports the cash flows of r.
func Analyze(ledger *Ledger, r date.Range) Analysis {
	a := Analysis{
		Totals:   ledger.totals(r),
		Previous: ledger.totals(r.Prev()),
	}
	a.IncomeChange = change(a.Income, a.Previous.Income)
	a.ExpenseChange = change(a.Expense, a.Previous.Expense)

	expenses := make(map[Category]*CategoryTotal)
	incomes := make(map[Category]*CategoryTotal)
	for _, tx := range ledger.Transactions(r) {
		m := expenses
		if tx.Type == Income {
			m = incomes
		}
		ct, ok := m[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category, Amount: ledger.Zero()}
			m[tx.Category] = ct
		}
		ct.Amount = ct.Amount.Add(tx.Amount)
		ct.Count++
	}
	a.Expenses = sortedTotals(expenses, a.Expense)
	a.Incomes = sortedTotals(incomes, a.Income)

	for sub := range r.Split(seriesPeriod(r)) {
		a.Series = append(a.Series, ledger.totals(sub))
	}
	return a
}

func sortedTotals(m map[Category]*CategoryTotal, total Money) []CategoryTotal {
	list := make([]CategoryTotal, 0, len(m))
	for _, ct := range m {
		ct.Share = ratio(ct.Amount, total)
		list = append(list, *ct)
	}
	slices.SortFunc(list, func(a, b CategoryTotal) int {
		if c := b.Amount.Decimal().Cmp(a.Amount.Decimal()); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return list
}

// Weekly analyzes the week (Monday to Sunday) of day.
func Weekly(ledger *Ledger, day date.Date) Analysis { return Analyze(ledger, date.Weekly.Range(day)) }

// Monthly analyzes the month of day.
func Monthly(ledger *Ledger, day date.Date) Analysis { return Analyze(ledger, date.Monthly.Range(day)) }

// Yearly analyzes the year of day.
func Yearly(ledger *Ledger, day date.Date) Analysis { return Analyze(ledger, date.Yearly.Range(day)) }
