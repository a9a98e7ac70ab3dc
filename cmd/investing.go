package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/jobs"
	"github.com/etnz/finance/mfapi"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type investCmd struct {
	symbol string
	kind   string
	units  float64
	amount float64
	date   string
}

func (*investCmd) Name() string     { return "invest" }
func (*investCmd) Synopsis() string { return "record a purchase or a redemption of units" }
func (*investCmd) Usage() string {
	return `fin invest -symbol <symbol> -kind fund|stock -units <units> -a <amount> [-d <date>]

  Records units bought (positive) or redeemed (negative) for the cash amount
  paid or received. Funds use their mfapi.in scheme code as symbol.
`
}

func (c *investCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Scheme code or ticker")
	f.StringVar(&c.kind, "kind", string(finance.Fund), "fund or stock")
	f.Float64Var(&c.units, "units", 0, "Units, negative for a redemption")
	f.Float64Var(&c.amount, "a", 0, "Cash amount")
	f.StringVar(&c.date, "d", "", "Date, today by default")
}

func (c *investCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	h := finance.NewHolding(on, c.symbol, finance.AssetKind(c.kind), finance.Q(c.units), finance.M(c.amount, cfg.Store.Currency))
	if err := appendRecords(ctx, h); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s units of %s for %s\n", h.Units, h.Symbol, h.Amount)
	return subcommands.ExitSuccess
}

type fundCmd struct {
	search  string
	returns string
	date    string
}

func (*fundCmd) Name() string     { return "fund" }
func (*fundCmd) Synopsis() string { return "search mutual funds and show their returns" }
func (*fundCmd) Usage() string {
	return `fin fund -search <name>
fin fund -returns <scheme code> [-d <date>]

  Searches api.mfapi.in for schemes, or displays the trailing returns of a
  scheme as of -d.
`
}

func (c *fundCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "Words of the scheme name")
	f.StringVar(&c.returns, "returns", "", "Scheme code")
	f.StringVar(&c.date, "d", "", "Date of the returns, today by default")
}

func (c *fundCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client := mfapi.New()
	switch {
	case c.search != "":
		results, err := client.Search(ctx, c.search)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.FundSearch(c.search, results))
	case c.returns != "":
		asOf, err := parseDate(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		s, err := client.Fetch(ctx, c.returns)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.Fund(s, asOf))
	default:
		fmt.Fprintln(os.Stderr, "Error: one of -search or -returns is required")
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "append the latest prices of held funds and stocks" }
func (*refreshCmd) Usage() string {
	return `fin refresh

  Fetches the prices published since the last refresh of every held symbol
  and appends them to the ledger. Prices that could be fetched are kept even
  when other symbols fail.
`
}

func (*refreshCmd) SetFlags(f *flag.FlagSet) {}

func (*refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()
	n, err := jobs.RefreshPrices(ctx, s, providers(cfg.Providers), date.Today())
	fmt.Printf("%d prices appended\n", n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type portfolioCmd struct {
	date string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display positions, gains and XIRR" }
func (*portfolioCmd) Usage() string {
	return `fin portfolio [-d <date>]

  Displays every position valued at its last known price, with its gain and
  the XIRR of the whole portfolio.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Valuation date, today by default")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ledger, err := loadLedger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Portfolio(finance.Portfolio(ledger, asOf)))
	return subcommands.ExitSuccess
}
