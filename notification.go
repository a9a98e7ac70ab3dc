package finance

import (
	"fmt"

	"github.com/etnz/finance/date"
)

// RenewalNotice is how many days ahead subscription renewals are announced.
const RenewalNotice = 3

// anomalyLookback is the number of months category spend is compared with.
const anomalyLookback = 6

// Notify returns the notifications that should be raised on asOf and were not
// raised yet: budgets in warning or over their limit, renewals in the next
// RenewalNotice days and category spending anomalies.
//
// Notifications are deduplicated by their key, so calling Notify again after
// appending its result returns nothing new.
func Notify(ledger *Ledger, asOf date.Date) []Notification {
	seen := make(map[string]bool)
	for _, n := range ledger.Notifications() {
		seen[n.Key] = true
	}
	var out []Notification
	add := func(kind NotificationKind, key, format string, args ...any) {
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, NewNotification(asOf, kind, key, fmt.Sprintf(format, args...)))
	}

	month := asOf.Format("2006-01")
	for _, u := range AllBudgetStatus(ledger, asOf, asOf) {
		switch u.State {
		case BudgetExceeded:
			add(BudgetOver, fmt.Sprintf("budget-over:%s:%s", u.Category, month),
				"%s budget exceeded: %s spent of %s (%v)", u.Category.Label(), u.Spent, u.Effective, u.Used)
		case BudgetWarn:
			add(BudgetWarning, fmt.Sprintf("budget-warning:%s:%s", u.Category, month),
				"%s budget at %v: %s left for %d days", u.Category.Label(), u.Used, u.Remaining, u.DaysInMonth-u.DaysElapsed)
		}
	}
	for _, b := range Upcoming(ledger, asOf, RenewalNotice) {
		add(Renewal, fmt.Sprintf("renewal:%s:%s", b.Subscription.ID, b.Date),
			"%s renews on %s for %s", b.Subscription.Name, b.Date, b.Subscription.Amount)
	}
	for _, a := range CategoryAnomalies(ledger, asOf, anomalyLookback) {
		add(AnomalyAlert, fmt.Sprintf("anomaly:%s:%s", a.Category, month),
			"%s spending is unusually high: %s against %s on average", a.Category.Label(), a.Spent, a.Mean)
	}
	return out
}
