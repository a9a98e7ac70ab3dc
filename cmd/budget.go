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

type budgetCmd struct {
	set      bool
	category string
	amount   float64
	rollover bool
	month    string
}

func (*budgetCmd) Name() string     { return "budget" }
func (*budgetCmd) Synopsis() string { return "set category budgets or show their usage" }
func (*budgetCmd) Usage() string {
	return `fin budget [-m <date>]
fin budget -set -c <category> -a <amount> [-rollover] [-m <date>]

  Without -set, shows the usage of every budget of the month of -m (this
  month by default). With -set, declares the monthly budget of a category
  from the month of -m on. With -rollover the unspent part of a month is
  carried into the next one.
`
}

func (c *budgetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.set, "set", false, "Declare a budget")
	f.StringVar(&c.category, "c", "", "Category of the budget")
	f.Float64Var(&c.amount, "a", 0, "Monthly amount")
	f.BoolVar(&c.rollover, "rollover", false, "Carry unspent amounts into the next month")
	f.StringVar(&c.month, "m", "", "A day of the month, today by default")
}

func (c *budgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, err := parseDate(c.month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.set {
		return c.declare(ctx, month)
	}

	ledger, err := loadLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	asOf := date.Today()
	if r := date.Monthly.Range(month); !r.Contains(asOf) {
		asOf = r.To
	}
	printMarkdown(renderer.Budgets(asOf, finance.AllBudgetStatus(ledger, month, asOf)))
	return subcommands.ExitSuccess
}

func (c *budgetCmd) declare(ctx context.Context, month date.Date) subcommands.ExitStatus {
	cat, err := finance.ParseCategory(c.category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	b := finance.NewBudget(month, cat, finance.M(c.amount, cfg.Store.Currency), c.rollover)
	if err := appendRecords(ctx, b); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Budget of %s set to %s from %s\n", cat.Label(), b.Amount, b.Effective())
	return subcommands.ExitSuccess
}
