// Package cmd implements the fin command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/eodhd"
	"github.com/etnz/finance/internal/config"
	"github.com/etnz/finance/internal/logging"
	"github.com/etnz/finance/market"
	"github.com/etnz/finance/mfapi"
	"github.com/etnz/finance/store"
	"github.com/etnz/finance/yahoo"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range Commands {
		for _, cmd := range g.Commands {
			c.Register(cmd, g.Name)
		}
	}
}

// Commands lists the subcommands by group.
var Commands = []struct {
	Name     string
	Commands []subcommands.Command
}{
	{"ledger", []subcommands.Command{&addCmd{}, &budgetCmd{}, &subsCmd{}, &nwiCmd{}, &fmtCmd{}, &recategorizeCmd{}}},
	{"reports", []subcommands.Command{&weeklyCmd{}, &monthlyCmd{}, &yearlyCmd{}, &insightsCmd{}, &notifyCmd{}}},
	{"investing", []subcommands.Command{&investCmd{}, &fundCmd{}, &refreshCmd{}, &portfolioCmd{}}},
	{"learning", []subcommands.Command{&learnCmd{}, &topicCmd{}}},
	{"service", []subcommands.Command{&serveCmd{}, &jobsCmd{}}},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	ledgerFile    = flag.String("ledger-file", "", "Ledger file (JSONL) or postgres:// URL. Defaults to $"+EnvStore+", $"+EnvLedgerFile+" or fin.jsonl")
	currency      = flag.String("currency", "", "Ledger currency. Defaults to $"+EnvCurrency+" or INR")
	rulesFile     = flag.String("rules-file", os.Getenv(EnvRulesFile), "YAML file of categorization rules")
	nwiFile       = flag.String("nwi-file", os.Getenv(EnvNWIFile), "YAML file mapping buckets to categories")
	insightsCache = flag.String("insights-cache", "", "Insights cache file. Defaults to $"+EnvInsightsCache)
	verbose       = flag.Bool("verbose", false, "Log debug messages")
)

const (
	EnvStore         = "FIN_STORE"
	EnvLedgerFile    = "FIN_LEDGER_FILE"
	EnvCurrency      = "FIN_CURRENCY"
	EnvRulesFile     = "FIN_RULES_FILE"
	EnvNWIFile       = "FIN_NWI_FILE"
	EnvInsightsCache = "FIN_INSIGHTS_CACHE"
)

// loadConfig reads the environment, then applies the global flags over it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if *ledgerFile != "" {
		cfg.Store.DSN = *ledgerFile
	}
	if *currency != "" {
		cfg.Store.Currency = *currency
	}
	if *insightsCache != "" {
		cfg.Insights.CachePath = *insightsCache
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger { return logging.New(cfg.Logging) }

// openStore opens the configured ledger store.
func openStore(ctx context.Context) (store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, cfg.Store)
}

// loadLedger reads the whole ledger.
func loadLedger(ctx context.Context) (*finance.Ledger, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load(ctx)
}

// appendRecords validates and appends records to the ledger.
func appendRecords(ctx context.Context, records ...finance.Record) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Append(ctx, records...)
}

// parseDate parses a date flag, empty is today.
func parseDate(s string) (date.Date, error) {
	d, err := date.Parse(s)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// loadRules reads the rules file, no file means no rules.
func loadRules() (finance.Rules, error) {
	if *rulesFile == "" {
		return nil, nil
	}
	f, err := os.Open(*rulesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return finance.LoadRules(f)
}

// loadNWITable reads the bucket table, the default one without a file.
func loadNWITable() (finance.NWITable, error) {
	if *nwiFile == "" {
		return finance.DefaultNWITable, nil
	}
	f, err := os.Open(*nwiFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return finance.LoadNWITable(f)
}

// providers returns the price providers of each asset kind.
func providers(cfg config.ProvidersConfig) market.Providers {
	client := market.NewCachingClient(cfg.CacheDir, date.Daily)
	funds := mfapi.New()
	funds.HTTP = client
	p := market.Providers{finance.Fund: funds}
	if cfg.StockKind == "eodhd" {
		stocks := eodhd.New(cfg.EODHDKey)
		stocks.HTTP = client
		p[finance.Stock] = stocks
	} else {
		stocks := yahoo.New()
		stocks.HTTP = client
		p[finance.Stock] = stocks
	}
	return p
}

// printMarkdown renders md for the terminal, raw when it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
