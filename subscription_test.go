package finance

import (
	"testing"
)

func TestNextBilling(t *testing.T) {
	monthly := NewSubscription(d("2025-01-31"), "Rent", INR(20000), CycleMonthly)
	weekly := NewSubscription(d("2025-01-06"), "Milk", INR(300), CycleWeekly)
	yearly := NewSubscription(d("2024-02-29"), "Prime", INR(1499), CycleYearly)
	quarterly := NewSubscription(d("2025-01-15"), "Insurance", INR(3000), CycleQuarterly)

	testCases := []struct {
		name  string
		sub   Subscription
		after string
		want  string
	}{
		{"first billing", monthly, "2025-01-01", "2025-01-31"},
		{"clamped to february end", monthly, "2025-01-31", "2025-02-28"},
		{"back to the anchor day", monthly, "2025-02-28", "2025-03-31"},
		{"thirty days month", monthly, "2025-04-01", "2025-04-30"},
		{"weekly", weekly, "2025-01-06", "2025-01-13"},
		{"yearly leap day", yearly, "2024-02-29", "2025-02-28"},
		{"quarterly", quarterly, "2025-01-15", "2025-04-15"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextBilling(tc.sub, d(tc.after)); got != d(tc.want) {
				t.Errorf("NextBilling(%s) = %v, want %s", tc.after, got, tc.want)
			}
		})
	}
}

func TestMonthlyCost(t *testing.T) {
	testCases := []struct {
		cycle  Cycle
		amount float64
		want   Money
	}{
		{CycleWeekly, 100, INR(433.33)},
		{CycleMonthly, 499, INR(499)},
		{CycleQuarterly, 300, INR(100)},
		{CycleYearly, 1200, INR(100)},
	}
	for _, tc := range testCases {
		t.Run(string(tc.cycle), func(t *testing.T) {
			s := NewSubscription(d("2025-01-01"), "x", INR(tc.amount), tc.cycle)
			if got := MonthlyCost(s); !got.Equal(tc.want) {
				t.Errorf("MonthlyCost() = %v, want %v", got, tc.want)
			}
		})
	}
}

// subscriptionLedger holds a monthly subscription paused from mid March and
// resumed in May at a higher price.
func subscriptionLedger() (*Ledger, Subscription) {
	sub := NewSubscription(d("2025-01-31"), "Gym", INR(499), CycleMonthly)
	paused := sub
	paused.Date = d("2025-03-15")
	paused.Status = Paused
	resumed := sub
	resumed.Date = d("2025-05-01")
	resumed.Amount = INR(599)

	charge := expense("2025-01-31", 499, Subscriptions, "Gym")
	charge.Subscription = sub.ID

	ledger := NewLedger("INR")
	ledger.Append(sub, charge, paused, resumed)
	return ledger, sub
}

func TestDue(t *testing.T) {
	ledger, sub := subscriptionLedger()

	due := Due(ledger, sub.ID, d("2025-06-30"))
	want := []struct {
		on     string
		amount Money
	}{
		{"2025-02-28", INR(499)},
		{"2025-05-31", INR(599)},
		{"2025-06-30", INR(599)},
	}
	if len(due) != len(want) {
		t.Fatalf("Due() returned %d billings, want %d: %+v", len(due), len(want), due)
	}
	for i, w := range want {
		if due[i].Date != d(w.on) || !due[i].Subscription.Amount.Equal(w.amount) {
			t.Errorf("Due()[%d] = %v %v, want %s %v", i, due[i].Date, due[i].Subscription.Amount, w.on, w.amount)
		}
	}
}

func TestCharges(t *testing.T) {
	ledger, sub := subscriptionLedger()

	charges := Charges(ledger, d("2025-06-30"))
	if len(charges) != 3 {
		t.Fatalf("Charges() returned %d transactions, want 3", len(charges))
	}
	for _, tx := range charges {
		if tx.Subscription != sub.ID || tx.Type != Expense || tx.Category != Subscriptions {
			t.Errorf("Charges() returned an unexpected transaction %+v", tx)
		}
		if err := ledger.ValidateRecord(tx); err != nil {
			t.Errorf("Charges() returned an invalid transaction: %v", err)
		}
	}

	// once recorded, nothing is due anymore.
	for _, tx := range charges {
		ledger.Append(tx)
	}
	if again := Charges(ledger, d("2025-06-30")); len(again) != 0 {
		t.Errorf("Charges() after recording = %d transactions, want 0", len(again))
	}
}

func TestUpcoming(t *testing.T) {
	ledger, sub := subscriptionLedger()
	cancelled := NewSubscription(d("2025-01-29"), "Magazine", INR(99), CycleMonthly)
	cancelled.Status = Cancelled
	ledger.Append(cancelled)

	renewals := Upcoming(ledger, d("2025-06-28"), 3)
	if len(renewals) != 1 {
		t.Fatalf("Upcoming() returned %d renewals, want 1: %+v", len(renewals), renewals)
	}
	if renewals[0].Subscription.ID != sub.ID || renewals[0].Date != d("2025-06-30") {
		t.Errorf("Upcoming() = %+v, want Gym on 2025-06-30", renewals[0])
	}
	if got := Upcoming(ledger, d("2025-06-01"), 3); len(got) != 0 {
		t.Errorf("Upcoming() far from renewal = %+v, want none", got)
	}
	if got := MonthlySubscriptions(ledger); !got.Equal(INR(599)) {
		t.Errorf("MonthlySubscriptions() = %v, want %v", got, INR(599))
	}
}
