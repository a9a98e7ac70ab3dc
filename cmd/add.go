package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/finance"
	"github.com/google/subcommands"
)

type addCmd struct {
	income   bool
	amount   float64
	category string
	date     string
	desc     string
	merchant string
	nwi      string
	tags     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an expense or an income" }
func (*addCmd) Usage() string {
	return `fin add -a <amount> [-income] [-c <category>] [-d <date>] [-desc <text>] [-merchant <name>] [-nwi <bucket>] [-tags a,b]

  Appends a transaction to the ledger. Without -c the category comes from the
  categorization rules, or "other" ("other-income" for incomes).

Usage Examples:
$ fin add -a 450 -desc "Swiggy dinner"
$ fin add -income -a 85000 -c salary -d 2025-03-01
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.income, "income", false, "Record an income instead of an expense")
	f.Float64Var(&c.amount, "a", 0, "Amount, positive")
	f.StringVar(&c.category, "c", "", "Category")
	f.StringVar(&c.date, "d", "", "Date, today by default")
	f.StringVar(&c.desc, "desc", "", "Description")
	f.StringVar(&c.merchant, "merchant", "", "Merchant")
	f.StringVar(&c.nwi, "nwi", "", "Force the bucket (needs, wants, investments, savings)")
	f.StringVar(&c.tags, "tags", "", "Comma separated tags")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tx, err := c.transaction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := appendRecords(ctx, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s of %s in %s (%s)\n", tx.Type, tx.Amount, tx.Category.Label(), tx.ID)
	return subcommands.ExitSuccess
}

// transaction builds the transaction from the flags.
func (c *addCmd) transaction() (finance.Transaction, error) {
	on, err := parseDate(c.date)
	if err != nil {
		return finance.Transaction{}, err
	}
	if c.amount <= 0 {
		return finance.Transaction{}, fmt.Errorf("amount must be positive, got %v", c.amount)
	}
	cfg, err := loadConfig()
	if err != nil {
		return finance.Transaction{}, err
	}
	amount := finance.M(c.amount, cfg.Store.Currency)

	tx := finance.NewExpense(on, amount, finance.OtherExpense, c.desc)
	if c.income {
		tx = finance.NewIncome(on, amount, finance.OtherIncome, c.desc)
	}
	tx.Merchant = c.merchant
	tx.NWI = finance.Bucket(c.nwi)
	if c.tags != "" {
		tx.Tags = strings.Split(c.tags, ",")
	}

	if c.category != "" {
		cat, err := finance.ParseCategory(c.category)
		if err != nil {
			return finance.Transaction{}, err
		}
		tx.Category = cat
		return tx, nil
	}
	rules, err := loadRules()
	if err != nil {
		return finance.Transaction{}, err
	}
	if rule, ok := rules.Categorize(tx); ok {
		tx.Category = rule.Category
	}
	return tx, nil
}
