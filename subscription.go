package finance

import (
	"iter"
	"slices"

	"github.com/etnz/finance/date"
)

// billing returns the n-th billing date of s, n=0 being Start.
// Monthly dates keep the day of Start, clamped to the end of shorter months.
func (s Subscription) billing(n int) date.Date {
	switch s.Cycle {
	case CycleWeekly:
		return s.Start.Add(7 * n)
	case CycleQuarterly:
		return s.Start.AddMonth(3 * n)
	case CycleYearly:
		return s.Start.AddYear(n)
	default:
		return s.Start.AddMonth(n)
	}
}

// billings iterates over the billing dates of s within r.
func (s Subscription) billings(r date.Range) iter.Seq[date.Date] {
	return func(yield func(date.Date) bool) {
		for n := 0; ; n++ {
			d := s.billing(n)
			if d.After(r.To) {
				return
			}
			if d.Before(r.From) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// NextBilling returns the first billing date of s strictly after day.
func NextBilling(s Subscription, after date.Date) date.Date {
	for n := 0; ; n++ {
		if d := s.billing(n); d.After(after) {
			return d
		}
	}
}

// MonthlyCost returns the average monthly cost of s.
func MonthlyCost(s Subscription) Money {
	switch s.Cycle {
	case CycleWeekly:
		return s.Amount.MulN(52).DivN(12).Round()
	case CycleQuarterly:
		return s.Amount.DivN(3).Round()
	case CycleYearly:
		return s.Amount.DivN(12).Round()
	default:
		return s.Amount
	}
}

// charged reports whether a transaction of subscription id exists on day.
func (l *Ledger) charged(id string, day date.Date) bool {
	for _, tx := range l.Transactions(date.NewRange(day, day)) {
		if tx.Subscription == id {
			return true
		}
	}
	return false
}

// Billing is a billing date together with the subscription version in effect.
type Billing struct {
	Subscription Subscription `json:"subscription"`
	Date         date.Date    `json:"date"`
}

// Due returns the billing dates of subscription id, on or before asOf, that
// have no matching transaction yet.
//
// Each declaration of the subscription governs the billing dates from its
// record date until the next declaration; paused or cancelled declarations
// bill nothing.
func Due(ledger *Ledger, id string, asOf date.Date) []Billing {
	versions := ledger.SubscriptionVersions(id)
	var due []Billing
	for i, v := range versions {
		if v.Status != Active {
			continue
		}
		r := date.NewRange(v.Date, asOf)
		if i+1 < len(versions) {
			if end := versions[i+1].Date.Add(-1); end.Before(r.To) {
				r.To = end
			}
		}
		if r.From.Before(v.Start) {
			r.From = v.Start
		}
		for d := range v.billings(r) {
			if !ledger.charged(id, d) {
				due = append(due, Billing{Subscription: v, Date: d})
			}
		}
	}
	return due
}

// Charges returns the expense transactions for every due billing of every
// subscription, chronologically.
func Charges(ledger *Ledger, asOf date.Date) []Transaction {
	var txs []Transaction
	for _, s := range ledger.Subscriptions() {
		for _, b := range Due(ledger, s.ID, asOf) {
			tx := NewExpense(b.Date, b.Subscription.Amount, b.Subscription.Category, b.Subscription.Name)
			tx.Merchant = b.Subscription.Name
			tx.Subscription = s.ID
			txs = append(txs, tx)
		}
	}
	slices.SortStableFunc(txs, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
	return txs
}

// Upcoming returns the renewals of active subscriptions from asOf to asOf+days
// included, chronologically.
func Upcoming(ledger *Ledger, asOf date.Date, days int) []Billing {
	var renewals []Billing
	for _, s := range ledger.Subscriptions() {
		if s.Status != Active {
			continue
		}
		next := NextBilling(s, asOf.Add(-1))
		if next.Sub(asOf) <= days {
			renewals = append(renewals, Billing{Subscription: s, Date: next})
		}
	}
	slices.SortStableFunc(renewals, func(a, b Billing) int { return a.Date.Compare(b.Date) })
	return renewals
}

// MonthlySubscriptions returns the total monthly cost of active subscriptions.
func MonthlySubscriptions(ledger *Ledger) Money {
	total := ledger.Zero()
	for _, s := range ledger.Subscriptions() {
		if s.Status == Active {
			total = total.Add(MonthlyCost(s))
		}
	}
	return total
}
