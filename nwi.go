package finance

import (
	"fmt"
	"io"
	"maps"

	"github.com/etnz/finance/date"
	"gopkg.in/yaml.v3"
)

// Bucket is one of the Needs / Wants / Investments / Savings groups outflows
// are classified into.
type Bucket string

const (
	Needs             Bucket = "needs"
	Wants             Bucket = "wants"
	InvestmentsBucket Bucket = "investments"
	SavingsBucket     Bucket = "savings"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{Needs, Wants, InvestmentsBucket, SavingsBucket}

// Valid reports whether b is a known bucket.
func (b Bucket) Valid() bool {
	switch b {
	case Needs, Wants, InvestmentsBucket, SavingsBucket:
		return true
	}
	return false
}

// Label returns the capitalized name of the bucket.
func (b Bucket) Label() string {
	switch b {
	case Needs:
		return "Needs"
	case Wants:
		return "Wants"
	case InvestmentsBucket:
		return "Investments"
	case SavingsBucket:
		return "Savings"
	}
	return string(b)
}

// NWITable maps expense categories to their bucket.
type NWITable map[Category]Bucket

// DefaultNWITable is the static classification of expense categories.
var DefaultNWITable = NWITable{
	Housing:       Needs,
	Groceries:     Needs,
	Utilities:     Needs,
	Transport:     Needs,
	Healthcare:    Needs,
	Insurance:     Needs,
	Education:     Needs,
	Debt:          Needs,
	Dining:        Wants,
	Shopping:      Wants,
	Entertainment: Wants,
	Travel:        Wants,
	PersonalCare:  Wants,
	Subscriptions: Wants,
	Gifts:         Wants,
	OtherExpense:  Wants,
	Investments:   InvestmentsBucket,
	Savings:       SavingsBucket,
}

// Classify returns the bucket of tx.
//
// A valid override on the transaction wins. Income is never classified.
// Expense categories missing from the table fall into Wants.
func Classify(tx Transaction, table NWITable) (Bucket, bool) {
	if tx.Type == Income {
		return "", false
	}
	if tx.NWI.Valid() {
		return tx.NWI, true
	}
	if b, ok := table[tx.Category]; ok {
		return b, true
	}
	return Wants, true
}

// LoadNWITable reads a YAML document listing categories per bucket:
//
//	needs: [housing, groceries]
//	wants: [dining]
//
// Listed categories override the default table, the others keep their default bucket.
func LoadNWITable(r io.Reader) (NWITable, error) {
	var doc map[Bucket][]string
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not decode nwi table: %w", err)
	}
	table := maps.Clone(DefaultNWITable)
	for b, cats := range doc {
		if !b.Valid() {
			return nil, fmt.Errorf("unknown nwi bucket %q", b)
		}
		for _, name := range cats {
			c, err := ParseCategory(name)
			if err != nil {
				return nil, err
			}
			if c.IsIncome() {
				return nil, fmt.Errorf("income category %q cannot be classified", c)
			}
			table[c] = b
		}
	}
	return table, nil
}

// BucketShare is the spend of one bucket over a range.
type BucketShare struct {
	Bucket    Bucket  `json:"bucket"`
	Amount    Money   `json:"amount"`
	Share     Percent `json:"share"`     // of total outflow
	OfIncome  Percent `json:"of_income"` // of income
	Target    Percent `json:"target"`
	Deviation Percent `json:"deviation"` // Share - Target, in points
}

// NWIReport is the NWI breakdown of a range.
type NWIReport struct {
	Range   date.Range    `json:"range"`
	Income  Money         `json:"income"`
	Outflow Money         `json:"outflow"`
	Buckets []BucketShare `json:"buckets"`
}

// Bucket returns the share of bucket b.
func (r NWIReport) Bucket(b Bucket) BucketShare {
	for _, s := range r.Buckets {
		if s.Bucket == b {
			return s
		}
	}
	return BucketShare{Bucket: b}
}

// NWIBreakdown classifies every expense of r and compares each bucket with the
// targets in effect at the end of r.
func NWIBreakdown(ledger *Ledger, r date.Range, table NWITable) NWIReport {
	amounts := make(map[Bucket]Money)
	income, outflow := ledger.Zero(), ledger.Zero()
	for _, tx := range ledger.Transactions(r) {
		if tx.Type == Income {
			income = income.Add(tx.Amount)
			continue
		}
		b, _ := Classify(tx, table)
		amounts[b] = amounts[b].Add(tx.Amount)
		outflow = outflow.Add(tx.Amount)
	}

	targets := ledger.NWITargets(r.To)
	report := NWIReport{Range: r, Income: income, Outflow: outflow}
	for _, b := range Buckets {
		amount := ledger.Zero().Add(amounts[b])
		share := ratio(amount, outflow)
		report.Buckets = append(report.Buckets, BucketShare{
			Bucket:    b,
			Amount:    amount,
			Share:     share,
			OfIncome:  ratio(amount, income),
			Target:    targets.Target(b),
			Deviation: share - targets.Target(b),
		})
	}
	return report
}
