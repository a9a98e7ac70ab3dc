package finance

import (
	"math"
	"testing"

	"github.com/etnz/finance/date"
)

func anomalyLedger() *Ledger {
	ledger := NewLedger("INR")
	dining := []float64{1000, 1200, 800, 1000, 1000}
	for i, amount := range dining {
		month := d("2025-01-10").AddMonth(i)
		ledger.Append(
			NewExpense(month, INR(amount), Dining, "restaurants"),
			NewExpense(month, INR(3000), Groceries, "groceries"),
		)
	}
	ledger.Append(
		expense("2025-06-10", 5000, Dining, "birthday party"),
		expense("2025-06-10", 3000, Groceries, "groceries"),
		expense("2025-06-12", 700, Transport, "cab"),
	)
	return ledger
}

func TestMeanStdDev(t *testing.T) {
	mean, std := meanStdDev([]float64{1000, 1200, 800, 1000, 1000})
	if mean != 1000 || math.Abs(std-math.Sqrt(16000)) > 1e-9 {
		t.Errorf("meanStdDev() = %v, %v, want 1000, %v", mean, std, math.Sqrt(16000))
	}
	if mean, std := meanStdDev(nil); mean != 0 || std != 0 {
		t.Errorf("meanStdDev(nil) = %v, %v, want 0, 0", mean, std)
	}
}

func TestCategoryAnomalies(t *testing.T) {
	ledger := anomalyLedger()

	anomalies := CategoryAnomalies(ledger, d("2025-06-30"), 6)
	if len(anomalies) != 1 {
		t.Fatalf("CategoryAnomalies() = %+v, want only dining", anomalies)
	}
	a := anomalies[0]
	if a.Category != Dining || !a.Spent.Equal(INR(5000)) || !a.Mean.Equal(INR(1000)) {
		t.Errorf("CategoryAnomalies()[0] = %+v, want dining 5000 against 1000", a)
	}
	if want := 4000 / math.Sqrt(16000); math.Abs(a.Z-want) > 1e-9 {
		t.Errorf("CategoryAnomalies()[0].Z = %v, want %v", a.Z, want)
	}

	if got := CategoryAnomalies(ledger, d("2025-03-15"), 6); got != nil {
		t.Errorf("CategoryAnomalies() with two months of history = %+v, want none", got)
	}
	if got := CategoryAnomalies(ledger, d("2025-05-15"), 6); len(got) != 0 {
		t.Errorf("CategoryAnomalies() for a usual month = %+v, want none", got)
	}
}

func TestTransactionAnomalies(t *testing.T) {
	ledger := anomalyLedger()

	anomalies := TransactionAnomalies(ledger, date.Monthly.Range(d("2025-06-01")))
	if len(anomalies) != 1 {
		t.Fatalf("TransactionAnomalies() = %+v, want the birthday party", anomalies)
	}
	if tx := anomalies[0].Transaction; tx.Description != "birthday party" || anomalies[0].Z < TransactionZThreshold {
		t.Errorf("TransactionAnomalies()[0] = %+v", anomalies[0])
	}
}
