package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

// reportCmd is shared by the periodic reports.
type reportCmd struct {
	period date.Period
	date   string
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "A day of the reported "+c.period.Name()+", today by default")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ledger, err := loadLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Analysis(finance.Analyze(ledger, c.period.Range(day))))
	return subcommands.ExitSuccess
}

type weeklyCmd struct{ reportCmd }

func (*weeklyCmd) Name() string     { return "weekly" }
func (*weeklyCmd) Synopsis() string { return "display the cash flows of a week" }
func (*weeklyCmd) Usage() string {
	return `fin weekly [-d <date>]

  Displays income, expenses and savings rate of the week (Monday to Sunday)
  of -d, compared with the previous week.
`
}

func (c *weeklyCmd) SetFlags(f *flag.FlagSet) {
	c.period = date.Weekly
	c.reportCmd.SetFlags(f)
}

type monthlyCmd struct{ reportCmd }

func (*monthlyCmd) Name() string     { return "monthly" }
func (*monthlyCmd) Synopsis() string { return "display the cash flows of a month" }
func (*monthlyCmd) Usage() string {
	return `fin monthly [-d <date>]

  Displays income, expenses per category and savings rate of the month of
  -d, compared with the previous month, with a daily series.
`
}

func (c *monthlyCmd) SetFlags(f *flag.FlagSet) {
	c.period = date.Monthly
	c.reportCmd.SetFlags(f)
}

type yearlyCmd struct{ reportCmd }

func (*yearlyCmd) Name() string     { return "yearly" }
func (*yearlyCmd) Synopsis() string { return "display the cash flows of a year" }
func (*yearlyCmd) Usage() string {
	return `fin yearly [-d <date>]

  Displays income, expenses per category and savings rate of the year of
  -d, compared with the previous year, with a monthly series.
`
}

func (c *yearlyCmd) SetFlags(f *flag.FlagSet) {
	c.period = date.Yearly
	c.reportCmd.SetFlags(f)
}
