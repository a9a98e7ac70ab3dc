package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/insight"
	"github.com/etnz/finance/internal/config"
	"github.com/etnz/finance/jobs"
	"github.com/etnz/finance/renderer"
	"github.com/etnz/finance/store"
	"github.com/google/subcommands"
)

// newInsightService wires the insight service, with a Gemini narrator when
// an API key is available.
func newInsightService(ctx context.Context, cfg config.Config, s store.Store, logger *slog.Logger) *insight.Service {
	svc := &insight.Service{
		Source: s,
		Cache:  insight.Cache{Path: cfg.Insights.CachePath},
		TTL:    cfg.Insights.TTL,
		Logger: logger,
	}
	table, err := loadNWITable()
	if err != nil {
		logger.Warn("nwi insights with the default table", "error", err)
	} else {
		svc.Table = table
	}
	if cfg.Insights.Narrate {
		n, err := insight.NewGeminiNarrator(ctx, cfg.Insights.Model)
		if err != nil {
			logger.Warn("insights without summary", "error", err)
		} else {
			svc.Narrator = n
		}
	}
	return svc
}

type insightsCmd struct {
	refresh bool
}

func (*insightsCmd) Name() string     { return "insights" }
func (*insightsCmd) Synopsis() string { return "display insights on budgets, spending and savings" }
func (*insightsCmd) Usage() string {
	return `fin insights [-refresh]

  Displays the insights of the ledger with a short summary written by Gemini
  when GEMINI_API_KEY is set. Insights are cached; -refresh recomputes them.
  When the summary cannot be written the previous one is shown, marked stale.
`
}

func (c *insightsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "Ignore the cache")
}

func (c *insightsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	report, err := newInsightService(ctx, cfg, s, newLogger(cfg)).Get(ctx, c.refresh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Insights(report))
	return subcommands.ExitSuccess
}

type notifyCmd struct {
	all  bool
	read string
}

func (*notifyCmd) Name() string     { return "notify" }
func (*notifyCmd) Synopsis() string { return "raise and list notifications" }
func (*notifyCmd) Usage() string {
	return `fin notify [-all]
fin notify -read <id>

  Raises the notifications due today (budget thresholds, renewals, unusual
  spending), each at most once, then lists the unread ones, or all of them
  with -all. -read marks a notification as read.
`
}

func (c *notifyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "List read notifications too")
	f.StringVar(&c.read, "read", "", "Mark a notification as read")
}

func (c *notifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	if c.read != "" {
		if err := s.Append(ctx, finance.NewRead(date.Today(), c.read)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if _, err := jobs.RaiseNotifications(ctx, s, date.Today()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := s.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	states := ledger.Unread()
	if c.all {
		states = ledger.Notifications()
	}
	printMarkdown(renderer.Notifications(states))
	return subcommands.ExitSuccess
}
