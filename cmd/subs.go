package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/jobs"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type subsCmd struct {
	add      bool
	sync     bool
	id       string
	name     string
	amount   float64
	cycle    string
	start    string
	category string
	status   string
}

func (*subsCmd) Name() string     { return "subs" }
func (*subsCmd) Synopsis() string { return "manage recurring subscriptions" }
func (*subsCmd) Usage() string {
	return `fin subs
fin subs -add -name <name> -a <amount> [-cycle monthly] [-start <date>] [-c <category>]
fin subs -id <id> [-status active|paused|cancelled] [-a <amount>] [-cycle <cycle>]
fin subs -sync

  Lists subscriptions with their next renewal, declares a new one, updates
  an existing one from today on, or appends the charges that fell due.
`
}

func (c *subsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.add, "add", false, "Declare a new subscription")
	f.BoolVar(&c.sync, "sync", false, "Append the charges due up to today")
	f.StringVar(&c.id, "id", "", "Subscription to update")
	f.StringVar(&c.name, "name", "", "Name of the service")
	f.Float64Var(&c.amount, "a", 0, "Amount billed each cycle")
	f.StringVar(&c.cycle, "cycle", "", "Billing cycle: weekly, monthly, quarterly, yearly")
	f.StringVar(&c.start, "start", "", "First billing date, today by default")
	f.StringVar(&c.category, "c", "", "Category, subscriptions by default")
	f.StringVar(&c.status, "status", "", "New status: active, paused, cancelled")
}

func (c *subsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var err error
	switch {
	case c.add:
		err = c.declare(ctx)
	case c.id != "":
		err = c.update(ctx)
	case c.sync:
		err = c.charge(ctx)
	default:
		var ledger *finance.Ledger
		if ledger, err = loadLedger(ctx); err == nil {
			printMarkdown(renderer.Subscriptions(ledger, date.Today()))
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *subsCmd) declare(ctx context.Context) error {
	start, err := parseDate(c.start)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cycle := finance.CycleMonthly
	if c.cycle != "" {
		cycle = finance.Cycle(c.cycle)
	}
	s := finance.NewSubscription(start, c.name, finance.M(c.amount, cfg.Store.Currency), cycle)
	if c.category != "" {
		if s.Category, err = finance.ParseCategory(c.category); err != nil {
			return err
		}
	}
	if err := appendRecords(ctx, s); err != nil {
		return err
	}
	fmt.Printf("Subscription %q declared (%s), next billing on %s\n", s.Name, s.ID, s.Start)
	return nil
}

func (c *subsCmd) update(ctx context.Context) error {
	ledger, err := loadLedger(ctx)
	if err != nil {
		return err
	}
	s, ok := ledger.Subscription(c.id)
	if !ok {
		return fmt.Errorf("subscription %q: %w", c.id, finance.ErrNotFound)
	}
	s.Date = date.Today()
	if c.status != "" {
		s.Status = finance.Status(c.status)
	}
	if c.amount > 0 {
		s.Amount = finance.M(c.amount, ledger.Currency())
	}
	if c.cycle != "" {
		s.Cycle = finance.Cycle(c.cycle)
	}
	if c.name != "" {
		s.Name = c.name
	}
	if err := appendRecords(ctx, s); err != nil {
		return err
	}
	fmt.Printf("Subscription %q is %s at %s %s\n", s.Name, s.Status, s.Amount, s.Cycle)
	return nil
}

func (c *subsCmd) charge(ctx context.Context) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	n, err := jobs.SyncSubscriptions(ctx, s, date.Today())
	if err != nil {
		return err
	}
	fmt.Printf("%d subscription charges appended\n", n)
	return nil
}
