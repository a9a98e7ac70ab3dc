package finance

import (
	"cmp"
	"math"
	"slices"

	"github.com/etnz/finance/date"
)

// Anomaly thresholds.
const (
	CategoryZThreshold    = 2.0
	TransactionZThreshold = 3.0
	minHistory            = 3
)

// meanStdDev returns the mean and the population standard deviation of xs.
func meanStdDev(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		std += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(std / float64(len(xs)))
}

// CategoryAnomaly is a category whose spend in a month is unusually high.
type CategoryAnomaly struct {
	Category Category
	Month    date.Range
	Spent    Money
	Mean     Money // average of the previous months
	StdDev   float64
	Z        float64
}

// CategoryAnomalies compares the spend of each category during the month of
// month with the previous lookback months. A category is flagged when its
// z-score is at least CategoryZThreshold, with at least three months of
// history that do not all have the same spend.
func CategoryAnomalies(ledger *Ledger, month date.Date, lookback int) []CategoryAnomaly {
	first, ok := ledger.FirstDate()
	if !ok {
		return nil
	}
	current := date.Monthly.Range(month)
	spent := make(map[Category]Money)
	for _, tx := range ledger.Transactions(current) {
		if tx.Type == Expense {
			spent[tx.Category] = spent[tx.Category].Add(tx.Amount)
		}
	}

	var months []date.Range
	for i := 1; i <= lookback; i++ {
		m := date.Monthly.Range(current.From.AddMonth(-i))
		if m.To.Before(first.StartOf(date.Monthly)) {
			break
		}
		months = append(months, m)
	}
	if len(months) < minHistory {
		return nil
	}

	var anomalies []CategoryAnomaly
	for c, amount := range spent {
		history := make([]float64, len(months))
		for i, m := range months {
			history[i] = ledger.spent(c, m).Float()
		}
		mean, std := meanStdDev(history)
		if std == 0 {
			continue
		}
		z := (amount.Float() - mean) / std
		if z >= CategoryZThreshold {
			anomalies = append(anomalies, CategoryAnomaly{
				Category: c,
				Month:    current,
				Spent:    amount,
				Mean:     M(mean, ledger.Currency()).Round(),
				StdDev:   std,
				Z:        z,
			})
		}
	}
	slices.SortFunc(anomalies, func(a, b CategoryAnomaly) int { return cmp.Compare(b.Z, a.Z) })
	return anomalies
}

// TransactionAnomaly is a single expense unusually large for its category.
type TransactionAnomaly struct {
	Transaction Transaction
	Mean        Money
	StdDev      float64
	Z           float64
}

// TransactionAnomalies flags the expenses of r whose amount has a z-score of
// at least TransactionZThreshold among the expenses of the same category
// during the year before them.
func TransactionAnomalies(ledger *Ledger, r date.Range) []TransactionAnomaly {
	var anomalies []TransactionAnomaly
	for _, tx := range ledger.Transactions(r) {
		if tx.Type != Expense {
			continue
		}
		var amounts []float64
		for _, past := range ledger.Transactions(date.NewRange(tx.Date.AddYear(-1), tx.Date.Add(-1))) {
			if past.Type == Expense && past.Category == tx.Category {
				amounts = append(amounts, past.Amount.Float())
			}
		}
		if len(amounts) < minHistory {
			continue
		}
		mean, std := meanStdDev(amounts)
		if std == 0 {
			continue
		}
		if z := (tx.Amount.Float() - mean) / std; z >= TransactionZThreshold {
			anomalies = append(anomalies, TransactionAnomaly{
				Transaction: tx,
				Mean:        M(mean, ledger.Currency()).Round(),
				StdDev:      std,
				Z:           z,
			})
		}
	}
	return anomalies
}
