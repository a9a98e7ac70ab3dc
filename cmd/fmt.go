package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/store"
	"github.com/google/subcommands"
)

// fileStore opens the ledger and requires it to be a file.
func fileStore(ctx context.Context) (*store.File, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	f, ok := s.(*store.File)
	if !ok {
		s.Close()
		return nil, errors.New("only a ledger file can be rewritten")
	}
	return f, nil
}

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `fin fmt

  Validates every record of the ledger file, sorts them by date and writes
  them back in a canonical JSONL form.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (*fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	file, err := fileStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := file.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := ledger.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid ledger:\n%v\n", err)
		return subcommands.ExitFailure
	}
	if err := file.Rewrite(ctx, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving ledger %q: %v\n", file.Path, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "✅ Ledger %q formatted, %d records.\n", file.Path, ledger.Len())
	return subcommands.ExitSuccess
}

type recategorizeCmd struct {
	all    bool
	dryRun bool
}

func (*recategorizeCmd) Name() string { return "recategorize" }
func (*recategorizeCmd) Synopsis() string {
	return "apply the categorization rules to past transactions"
}
func (*recategorizeCmd) Usage() string {
	return `fin recategorize [-all] [-n]

  Applies the rules of -rules-file to the transactions categorized "other"
  (or "other-income"), or to every transaction with -all, and rewrites the
  ledger file. -n only lists the changes.
`
}

func (c *recategorizeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "Recategorize every transaction")
	f.BoolVar(&c.dryRun, "n", false, "List the changes without writing them")
}

func (c *recategorizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rules, err := loadRules()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(rules) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no rules, set -rules-file")
		return subcommands.ExitUsageError
	}
	file, err := fileStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := file.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	updated, changes := recategorize(ledger, rules, c.all)
	for _, tx := range changes {
		fmt.Printf("%s %-30q %s\n", tx.Date, tx.Description, tx.Category)
	}
	if c.dryRun || len(changes) == 0 {
		fmt.Printf("%d transactions to recategorize\n", len(changes))
		return subcommands.ExitSuccess
	}
	if err := file.Rewrite(ctx, updated); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d transactions recategorized\n", len(changes))
	return subcommands.ExitSuccess
}

// recategorize returns a copy of ledger with the rules applied, and the
// transactions that changed.
func recategorize(ledger *finance.Ledger, rules finance.Rules, all bool) (*finance.Ledger, []finance.Transaction) {
	updated := finance.NewLedger(ledger.Currency())
	var changes []finance.Transaction
	for _, rec := range ledger.Records() {
		tx, ok := rec.(finance.Transaction)
		if ok && (all || tx.Category == finance.OtherExpense || tx.Category == finance.OtherIncome) {
			if rule, found := rules.Categorize(tx); found && rule.Category != tx.Category {
				tx.Category = rule.Category
				changes = append(changes, tx)
				rec = tx
			}
		}
		updated.Append(rec)
	}
	return updated, changes
}
