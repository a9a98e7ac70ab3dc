// Package insight derives short observations from the ledger and keeps a
// cached, optionally narrated, summary of them.
package insight

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
)

// Severity of an insight.
type Severity string

const (
	Info    Severity = "info"
	Warning Severity = "warning"
	Alert   Severity = "alert"
)

func (s Severity) rank() int {
	switch s {
	case Alert:
		return 2
	case Warning:
		return 1
	}
	return 0
}

// Kind of an insight.
type Kind string

const (
	BudgetKind  Kind = "budget"
	AnomalyKind Kind = "anomaly"
	NWIKind     Kind = "nwi"
	RenewalKind Kind = "renewal"
	SavingsKind Kind = "savings"
)

// Insight is a single observation about the finances.
type Insight struct {
	Kind     Kind             `json:"kind"`
	Severity Severity         `json:"severity"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	Category finance.Category `json:"category,omitempty"`
	Amount   *finance.Money   `json:"amount,omitempty"`
}

// Thresholds used by Generate.
const (
	NWIDriftPoints    finance.Percent = 5  // bucket share away from its target
	SavingsDropPoints finance.Percent = 10 // savings rate change between months
	RenewalWindowDays                 = 7
	anomalyLookback                   = 6
)

func amount(m finance.Money) *finance.Money { return &m }

// Generate computes the insights of the month of asOf, most severe first.
func Generate(ledger *finance.Ledger, asOf date.Date, table finance.NWITable) []Insight {
	if table == nil {
		table = finance.DefaultNWITable
	}
	var insights []Insight

	for _, u := range finance.AllBudgetStatus(ledger, asOf, asOf) {
		label := u.Category.Label()
		switch u.State {
		case finance.BudgetExceeded:
			insights = append(insights, Insight{BudgetKind, Alert, label + " budget exceeded",
				fmt.Sprintf("%s spent against a limit of %s (%v).", u.Spent, u.Effective, u.Used), u.Category, amount(u.Remaining.Neg())})
		case finance.BudgetWarn:
			insights = append(insights, Insight{BudgetKind, Warning, label + " budget almost used",
				fmt.Sprintf("%v of the budget is used, %s left for %d days.", u.Used, u.Remaining, u.DaysInMonth-u.DaysElapsed), u.Category, amount(u.Remaining)})
		case finance.BudgetProjectedOver:
			insights = append(insights, Insight{BudgetKind, Warning, label + " budget on track to overrun",
				fmt.Sprintf("At the current pace %s will be spent against %s. Keep to %s a day.", u.Projected, u.Effective, u.DailyLeft), u.Category, amount(u.Projected)})
		}
	}

	for _, a := range finance.CategoryAnomalies(ledger, asOf, anomalyLookback) {
		insights = append(insights, Insight{AnomalyKind, Warning, a.Category.Label() + " spending is unusual",
			fmt.Sprintf("%s this month against %s on average (z-score %.1f).", a.Spent, a.Mean, a.Z), a.Category, amount(a.Spent)})
	}

	month := date.NewRange(asOf.StartOf(date.Monthly), asOf)
	nwi := finance.NWIBreakdown(ledger, month, table)
	if nwi.Outflow.IsPositive() {
		for _, b := range nwi.Buckets {
			if b.Deviation > -NWIDriftPoints && b.Deviation < NWIDriftPoints {
				continue
			}
			severity := Info
			if b.Deviation > 0 && (b.Bucket == finance.Needs || b.Bucket == finance.Wants) {
				severity = Warning
			}
			insights = append(insights, Insight{NWIKind, severity, b.Bucket.Label() + " off target",
				fmt.Sprintf("%s is %v of outflows against a %v target (%s points).", b.Bucket.Label(), b.Share, b.Target, b.Deviation.SignedString()), "", amount(b.Amount)})
		}
	}

	for _, r := range finance.Upcoming(ledger, asOf, RenewalWindowDays) {
		insights = append(insights, Insight{RenewalKind, Info, r.Subscription.Name + " renews soon",
			fmt.Sprintf("%s will be charged on %s.", r.Subscription.Amount, r.Date), r.Subscription.Category, amount(r.Subscription.Amount)})
	}

	cur := finance.Analyze(ledger, month).Totals
	prev := finance.Analyze(ledger, date.Monthly.Range(month.From.Add(-1))).Totals
	if cur.Income.IsPositive() && prev.Income.IsPositive() {
		change := cur.SavingsRate() - prev.SavingsRate()
		switch {
		case change <= -SavingsDropPoints:
			insights = append(insights, Insight{SavingsKind, Warning, "Savings rate dropped",
				fmt.Sprintf("You saved %v of your income against %v last month.", cur.SavingsRate(), prev.SavingsRate()), "", amount(cur.Net())})
		case change >= SavingsDropPoints:
			insights = append(insights, Insight{SavingsKind, Info, "Savings rate improved",
				fmt.Sprintf("You saved %v of your income against %v last month.", cur.SavingsRate(), prev.SavingsRate()), "", amount(cur.Net())})
		}
	}

	slices.SortStableFunc(insights, func(a, b Insight) int { return cmp.Compare(b.Severity.rank(), a.Severity.rank()) })
	return insights
}
