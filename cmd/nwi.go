package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type nwiCmd struct {
	set   string
	month string
}

func (*nwiCmd) Name() string     { return "nwi" }
func (*nwiCmd) Synopsis() string { return "needs, wants, investments breakdown and targets" }
func (*nwiCmd) Usage() string {
	return `fin nwi [-m <date>]
fin nwi -set <needs>,<wants>,<investments>[,<savings>] [-m <date>]

  Shows how the outflows of a month split between needs, wants, investments
  and savings against the targets, or declares new targets effective from -m
  (today by default). Targets must add up to 100.
`
}

func (c *nwiCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.set, "set", "", "Comma separated target percentages")
	f.StringVar(&c.month, "m", "", "A day of the month, today by default")
}

func (c *nwiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDate(c.month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.set != "" {
		targets, err := parseTargets(day, c.set)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		if err := appendRecords(ctx, targets); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Targets set to %s needs, %s wants, %s investments, %s savings from %s\n",
			targets.Needs, targets.Wants, targets.Investments, targets.Savings, day)
		return subcommands.ExitSuccess
	}

	table, err := loadNWITable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := loadLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.NWI(finance.NWIBreakdown(ledger, date.Monthly.Range(day), table)))
	return subcommands.ExitSuccess
}

// parseTargets parses "55,25,15,5", savings being optional.
func parseTargets(on date.Date, s string) (finance.NWITargets, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 3 || len(parts) > 4 {
		return finance.NWITargets{}, fmt.Errorf("want 3 or 4 percentages, got %q", s)
	}
	var p [4]finance.Percent
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(part, "%")), 64)
		if err != nil {
			return finance.NWITargets{}, fmt.Errorf("invalid percentage %q: %w", part, err)
		}
		p[i] = finance.Percent(v)
	}
	return finance.NewNWITargets(on, p[0], p[1], p[2], p[3]), nil
}
