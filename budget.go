package finance

import (
	"github.com/etnz/finance/date"
)

// BudgetState summarizes how a budget is doing.
type BudgetState string

const (
	BudgetOK            BudgetState = "ok"
	BudgetWarn          BudgetState = "warning"
	BudgetExceeded      BudgetState = "over"
	BudgetProjectedOver BudgetState = "projected-over"
)

// warningThreshold is the used percentage from which a budget is in warning.
const warningThreshold Percent = 80

// BudgetUsage is the state of a category budget for one month, as of a day.
type BudgetUsage struct {
	Category    Category    `json:"category"`
	Month       date.Range  `json:"month"`
	AsOf        date.Date   `json:"as_of"`
	Limit       Money       `json:"limit"`     // declared monthly amount
	Rollover    Money       `json:"rollover"`  // unspent amount carried from previous months
	Effective   Money       `json:"effective"` // Limit + Rollover
	Spent       Money       `json:"spent"`
	Remaining   Money       `json:"remaining"` // Effective - Spent, negative when over
	Used        Percent     `json:"used"`
	DaysElapsed int         `json:"days_elapsed"`
	DaysInMonth int         `json:"days_in_month"`
	Projected   Money       `json:"projected"`  // spend at the end of the month at the current pace
	DailyLeft   Money       `json:"daily_left"` // what can still be spent per remaining day
	State       BudgetState `json:"state"`
}

// spent returns the expenses of category within r.
func (l *Ledger) spent(category Category, r date.Range) Money {
	total := l.Zero()
	for _, tx := range l.Transactions(r) {
		if tx.Type == Expense && tx.Category == category {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// rolloverInto returns the unspent amount carried into month.
//
// Each month of the uninterrupted budget run carries its unspent effective
// limit to the next one when its budget has rollover. Overspending resets the
// carry to zero, it is never a debt on the next month.
func (l *Ledger) rolloverInto(category Category, month date.Date) Money {
	carry := l.Zero()
	start := l.budgetStart(category, month)
	if start.IsZero() {
		return carry
	}
	for m := start; m.Before(month); m = m.AddMonth(1) {
		b, ok := l.Budget(category, m)
		if !ok || !b.Rollover {
			carry = l.Zero()
			continue
		}
		left := b.Amount.Add(carry).Sub(l.spent(category, date.Monthly.Range(m)))
		carry = left.Max(l.Zero())
	}
	return carry
}

// BudgetStatus returns the usage of the category budget during the month of
// month, as known on asOf. It returns false when the category has no budget
// that month.
func BudgetStatus(ledger *Ledger, category Category, month, asOf date.Date) (BudgetUsage, bool) {
	b, ok := ledger.Budget(category, month)
	if !ok {
		return BudgetUsage{}, false
	}
	r := date.Monthly.Range(month)
	u := BudgetUsage{
		Category:    category,
		Month:       r,
		AsOf:        asOf,
		Limit:       b.Amount,
		Rollover:    ledger.Zero(),
		DaysInMonth: r.Days(),
		Projected:   ledger.Zero(),
		DailyLeft:   ledger.Zero(),
		Spent:       ledger.Zero(),
	}
	if b.Rollover {
		u.Rollover = ledger.rolloverInto(category, r.From)
	}
	u.Effective = u.Limit.Add(u.Rollover)

	switch {
	case asOf.Before(r.From):
		u.DaysElapsed = 0
	case asOf.After(r.To):
		u.DaysElapsed = u.DaysInMonth
	default:
		u.DaysElapsed = asOf.Sub(r.From) + 1
	}
	if u.DaysElapsed > 0 {
		u.Spent = ledger.spent(category, date.NewRange(r.From, r.From.Add(u.DaysElapsed-1)))
		u.Projected = u.Spent.MulN(u.DaysInMonth).DivN(u.DaysElapsed).Round()
	}
	u.Remaining = u.Effective.Sub(u.Spent)
	u.Used = ratio(u.Spent, u.Effective)
	if left := u.DaysInMonth - u.DaysElapsed; left > 0 && u.Remaining.IsPositive() {
		u.DailyLeft = u.Remaining.DivN(left).Round()
	}

	switch {
	case u.Used > 100:
		u.State = BudgetExceeded
	case u.Used >= warningThreshold:
		u.State = BudgetWarn
	case u.Projected.GreaterThan(u.Effective):
		u.State = BudgetProjectedOver
	default:
		u.State = BudgetOK
	}
	return u, true
}

// AllBudgetStatus returns the usage of every budget in effect during the
// month of month, sorted by category.
func AllBudgetStatus(ledger *Ledger, month, asOf date.Date) []BudgetUsage {
	var all []BudgetUsage
	for _, b := range ledger.Budgets(month) {
		if u, ok := BudgetStatus(ledger, b.Category, month, asOf); ok {
			all = append(all, u)
		}
	}
	return all
}
