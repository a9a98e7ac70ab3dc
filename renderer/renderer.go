// Package renderer formats the ledger reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/insight"
	"github.com/etnz/finance/learn"
	"github.com/etnz/finance/mfapi"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates, _ = fs.Sub(templatesFS, "templates")

var funcs = template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"pass": func() finance.Percent { return learn.PassScore },
	"state": func(s finance.BudgetState) string {
		switch s {
		case finance.BudgetExceeded:
			return "🔴 over"
		case finance.BudgetWarn:
			return "🟠 warning"
		case finance.BudgetProjectedOver:
			return "🟡 on pace to exceed"
		}
		return "🟢 ok"
	},
	"icon": func(s insight.Severity) string {
		switch s {
		case insight.Alert:
			return "🔴"
		case insight.Warning:
			return "🟠"
		}
		return "🔵"
	},
}

// renderTemplate renders mainFile with the named partials available to it.
func renderTemplate(mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}
	tmpl, err := template.New(mainFile).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}
	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, mainFile, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", mainFile, err)
	}
	return b.String()
}

// Analysis renders a weekly, monthly, yearly or custom period report.
func Analysis(a finance.Analysis) string {
	return renderTemplate("analysis.md", map[string]string{"totals": "totals.md"}, a)
}

// Budgets renders the state of every budget.
func Budgets(asOf date.Date, usage []finance.BudgetUsage) string {
	return renderTemplate("budgets.md", nil, struct {
		AsOf  date.Date
		Usage []finance.BudgetUsage
	}{asOf, usage})
}

// NWI renders a needs, wants, investments breakdown.
func NWI(r finance.NWIReport) string { return renderTemplate("nwi.md", nil, r) }

type subscriptionRow struct {
	finance.Subscription
	Next    date.Date
	Monthly finance.Money
}

// Subscriptions renders the subscriptions and their renewals from asOf on.
func Subscriptions(ledger *finance.Ledger, asOf date.Date) string {
	var rows []subscriptionRow
	for _, s := range ledger.Subscriptions() {
		row := subscriptionRow{Subscription: s, Monthly: finance.MonthlyCost(s)}
		if s.Status == finance.Active {
			row.Next = finance.NextBilling(s, asOf.Add(-1))
		}
		rows = append(rows, row)
	}
	return renderTemplate("subscriptions.md", nil, struct {
		Subscriptions []subscriptionRow
		MonthlyTotal  finance.Money
		Upcoming      []finance.Billing
	}{rows, finance.MonthlySubscriptions(ledger), finance.Upcoming(ledger, asOf, finance.RenewalNotice)})
}

// Portfolio renders the investments.
func Portfolio(r finance.PortfolioReport) string { return renderTemplate("portfolio.md", nil, r) }

// Fund renders the trailing returns of a mutual fund as of asOf.
func Fund(s mfapi.Scheme, asOf date.Date) string {
	data := struct {
		Name, House, Category string
		NAV                   float64
		NAVDate               date.Date
		Returns               []finance.PeriodReturn
	}{
		Name:     s.Meta.SchemeName,
		House:    s.Meta.FundHouse,
		Category: s.Meta.SchemeCategory,
		Returns:  finance.TrailingReturns(s.NAV, asOf),
	}
	data.NAVDate, data.NAV, _ = s.NAV.ValueAsOf(asOf)
	return renderTemplate("fund.md", nil, data)
}

// Insights renders an insight report.
func Insights(r insight.Report) string { return renderTemplate("insights.md", nil, r) }

// Notifications renders notifications, unread ones marked.
func Notifications(states []finance.NotificationState) string {
	return renderTemplate("notifications.md", nil, states)
}

// Learn renders the progress in every module.
func Learn(progress []learn.ModuleProgress) string { return renderTemplate("learn.md", nil, progress) }

// Quiz renders the result of a quiz attempt.
func Quiz(r learn.Result) string { return renderTemplate("quiz.md", nil, r) }
