package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/insight"
	"github.com/etnz/finance/learn"
	"github.com/etnz/finance/mfapi"
)

func d(s string) date.Date { return date.MustParse(s) }

func inr(v float64) finance.Money { return finance.M(v, "INR") }

func testLedger() *finance.Ledger {
	ledger := finance.NewLedger("INR")
	ledger.Append(
		finance.NewIncome(d("2025-03-01"), inr(50000), finance.Salary, "salary"),
		finance.NewBudget(d("2025-03-01"), finance.Dining, inr(2000), false),
		finance.NewExpense(d("2025-03-03"), inr(2500), finance.Dining, "party"),
		finance.NewExpense(d("2025-03-05"), inr(1500), finance.Groceries, "market"),
		finance.NewSubscription(d("2025-01-16"), "Music", inr(119), finance.CycleMonthly),
	)
	return ledger
}

// assertContains checks that every want appears in got.
func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	if strings.Contains(got, "error ") {
		t.Fatalf("rendering failed: %s", got)
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func TestAnalysis(t *testing.T) {
	got := Analysis(finance.Monthly(testLedger(), d("2025-03-10")))
	assertContains(t, got,
		"# 2025-03 report (2025-03-01 to 2025-03-31)",
		"| Dining |",
		"| Groceries |",
		"## Income by category",
		"| Savings rate |",
	)
}

func TestBudgets(t *testing.T) {
	ledger := testLedger()
	got := Budgets(d("2025-03-10"), finance.AllBudgetStatus(ledger, d("2025-03-10"), d("2025-03-10")))
	assertContains(t, got, "# Budgets as of 2025-03-10", "| Dining |", "🔴 over")

	empty := Budgets(d("2025-03-10"), nil)
	assertContains(t, empty, "No budget is set")
}

func TestNWI(t *testing.T) {
	got := NWI(finance.NWIBreakdown(testLedger(), date.Monthly.Range(d("2025-03-01")), finance.DefaultNWITable))
	assertContains(t, got, "| Needs |", "| Wants |", "| Investments |")
}

func TestSubscriptions(t *testing.T) {
	got := Subscriptions(testLedger(), d("2025-03-14"))
	assertContains(t, got, "| Music |", "2025-03-16", "## Renewing soon")

	assertContains(t, Subscriptions(finance.NewLedger("INR"), d("2025-03-14")), "No subscription")
}

func TestPortfolio(t *testing.T) {
	ledger := finance.NewLedger("INR")
	ledger.Append(
		finance.NewHolding(d("2025-01-02"), "122639", finance.Fund, finance.Q(100), inr(8000)),
		finance.NewPrice(d("2025-03-03"), "122639", finance.M(85, "INR").Decimal()),
	)
	got := Portfolio(finance.Portfolio(ledger, d("2025-03-10")))
	assertContains(t, got, "| 122639 |", "**Total**")

	ledger.Append(finance.NewHolding(d("2025-03-05"), "TCS.NS", finance.Stock, finance.Q(2), inr(7000)))
	got = Portfolio(finance.Portfolio(ledger, d("2025-03-10")))
	assertContains(t, got, "| TCS.NS | stock | 2 | ₹7,000.00 | - | - | - | - |", "1 position(s) without a price")

	assertContains(t, Portfolio(finance.Portfolio(finance.NewLedger("INR"), d("2025-03-10"))), "No investment yet")
}

func TestFund(t *testing.T) {
	nav := new(date.History[float64])
	nav.Append(d("2025-02-14"), 70)
	nav.Append(d("2025-03-14"), 72)
	s := mfapi.Scheme{Meta: mfapi.Meta{SchemeName: "Flexi Cap", FundHouse: "PPFAS", SchemeCategory: "Equity"}, NAV: nav}
	got := Fund(s, d("2025-03-14"))
	assertContains(t, got, "# Flexi Cap", "72.0000 on 2025-03-14", "| 1M |", "| 5Y | n/a |")
}

func TestInsights(t *testing.T) {
	r := insight.Report{
		Generated: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		AsOf:      d("2025-03-10"),
		Insights:  []insight.Insight{{Kind: insight.BudgetKind, Severity: insight.Alert, Title: "Dining budget exceeded", Message: "2500 spent."}},
		Summary:   "Slow down on dining.",
		Stale:     true,
	}
	assertContains(t, Insights(r), "Slow down on dining.", "could not be refreshed", "🔴 **Dining budget exceeded**")
	assertContains(t, Insights(insight.Report{AsOf: d("2025-03-10")}), "Nothing to report")
}

func TestNotifications(t *testing.T) {
	n := finance.NewNotification(d("2025-03-02"), finance.BudgetOver, "k", "Dining budget exceeded")
	got := Notifications([]finance.NotificationState{{Notification: n}})
	assertContains(t, got, "● 2025-03-02 Dining budget exceeded", n.ID)
	assertContains(t, Notifications(nil), "No notification.")
}

func TestLearnAndQuiz(t *testing.T) {
	assertContains(t, Learn(learn.Progress(finance.NewLedger("INR"))), "Budgeting basics", "`budgeting`")

	m, err := learn.Find("budgeting")
	if err != nil {
		t.Fatal(err)
	}
	r, err := learn.Grade(m, []int{1, 2, 0})
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, Quiz(r), "2/3", "Not passed yet", "✗ the answer is 6000")
}

func TestFundSearch(t *testing.T) {
	got := FundSearch("parag", []mfapi.SearchResult{{SchemeCode: 122639, SchemeName: "Parag Parikh Flexi Cap Fund"}})
	assertContains(t, got, `# Schemes matching "parag"`, "122639", "Parag Parikh Flexi Cap Fund")
	assertContains(t, FundSearch("nothing", nil), "No scheme found.")
}

func TestModule(t *testing.T) {
	m, err := learn.Find("budgeting")
	if err != nil {
		t.Fatal(err)
	}
	got := Module(m)
	assertContains(t, got, "# "+m.Title, "## Lessons", "## Quiz", m.Lessons[0].Title, m.Quiz[0].Options[0])
	assertContains(t, Lesson(m.Lessons[0]), "# "+m.Lessons[0].Title)
}
