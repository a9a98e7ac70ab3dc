package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/docs"
	"github.com/etnz/finance/jobs"
	"github.com/etnz/finance/learn"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors complete flag values that come from a closed list.
var flagPredictors = map[string]complete.Predictor{
	"ledger-file":    predict.Files("*.jsonl"),
	"rules-file":     predict.Files("*.yaml"),
	"nwi-file":       predict.Files("*.yaml"),
	"insights-cache": predict.Files("*.json"),
	"c":              complete.PredictFunc(predictCategories),
	"cycle":          predict.Set{string(finance.CycleWeekly), string(finance.CycleMonthly), string(finance.CycleQuarterly), string(finance.CycleYearly)},
	"status":         predict.Set{string(finance.Active), string(finance.Paused), string(finance.Cancelled)},
	"kind":           predict.Set{string(finance.Fund), string(finance.Stock)},
	"nwi":            predict.Set{string(finance.Needs), string(finance.Wants), string(finance.InvestmentsBucket), string(finance.SavingsBucket)},
	"run":            predict.Set{jobs.SubscriptionsSync, jobs.PriceRefresh, jobs.Insights, jobs.Notifications},
	"module":         complete.PredictFunc(predictModules),
}

func predictCategories(prefix string) []string {
	var names []string
	for _, c := range finance.Categories() {
		if strings.HasPrefix(string(c), prefix) {
			names = append(names, string(c))
		}
	}
	return names
}

func predictModules(prefix string) []string {
	var ids []string
	for _, m := range learn.Catalog() {
		if strings.HasPrefix(m.ID, prefix) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// flagsOf returns the predictors of every flag in f.
func flagsOf(f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if p, ok := flagPredictors[fl.Name]; ok {
			flags[fl.Name] = p
			return
		}
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[fl.Name] = predict.Nothing
			return
		}
		flags[fl.Name] = predict.Something
	})
	return flags
}

// Completion describes the command line of fin for shell completion.
func Completion(global *flag.FlagSet) *complete.Command {
	c := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagsOf(global),
	}
	for _, g := range Commands {
		for _, cmd := range g.Commands {
			f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
			cmd.SetFlags(f)
			c.Sub[cmd.Name()] = &complete.Command{Flags: flagsOf(f)}
		}
	}
	if topics, err := docs.List(); err == nil {
		c.Sub["topic"].Args = predict.Set(topics)
	}
	return c
}
