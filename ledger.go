package finance

import (
	"iter"
	"maps"
	"slices"

	"github.com/etnz/finance/date"
)

// Ledger is the chronological list of every record.
//
// Records are immutable, later declarations (a budget for the same category,
// a subscription with the same ID) supersede earlier ones from their date on.
type Ledger struct {
	currency string
	records  []Record
}

// NewLedger creates an empty ledger whose amounts are in currency.
func NewLedger(currency string) *Ledger {
	return &Ledger{currency: currency, records: make([]Record, 0)}
}

// Currency returns the ledger currency.
func (l *Ledger) Currency() string { return l.currency }

// Zero returns zero in the ledger currency.
func (l *Ledger) Zero() Money { return M(0, l.currency) }

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// Append inserts records keeping the ledger sorted by date. Records on the
// same day keep their insertion order.
func (l *Ledger) Append(records ...Record) {
	for _, rec := range records {
		// insert after the last record on or before rec's date.
		i := len(l.records)
		for i > 0 && l.records[i-1].When().After(rec.When()) {
			i--
		}
		l.records = slices.Insert(l.records, i, rec)
	}
}

// Records iterates over all records in chronological order.
func (l *Ledger) Records() iter.Seq2[int, Record] { return slices.All(l.records) }

// recordsOf iterates over the records of type T.
func recordsOf[T Record](l *Ledger) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, rec := range l.records {
			if v, ok := rec.(T); ok {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Transactions returns the transactions within r, chronologically.
func (l *Ledger) Transactions(r date.Range) []Transaction {
	var txs []Transaction
	for tx := range recordsOf[Transaction](l) {
		if r.Contains(tx.Date) {
			txs = append(txs, tx)
		}
	}
	return txs
}

// AllTransactions returns every transaction.
func (l *Ledger) AllTransactions() []Transaction {
	return slices.Collect(recordsOf[Transaction](l))
}

// Transaction returns the transaction with that id.
func (l *Ledger) Transaction(id string) (Transaction, bool) {
	for tx := range recordsOf[Transaction](l) {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// FirstDate returns the date of the first record.
func (l *Ledger) FirstDate() (date.Date, bool) {
	if len(l.records) == 0 {
		return date.Date{}, false
	}
	return l.records[0].When(), true
}

// Budget returns the budget of category in effect during the month of day.
func (l *Ledger) Budget(category Category, day date.Date) (Budget, bool) {
	month := day.StartOf(date.Monthly)
	var found Budget
	var ok bool
	for b := range recordsOf[Budget](l) {
		if b.Category != category || b.Effective().After(month) {
			continue
		}
		found, ok = b, true
	}
	if ok && found.Amount.IsZero() {
		return Budget{}, false
	}
	return found, ok
}

// Budgets returns the budgets in effect during the month of day, sorted by category.
func (l *Ledger) Budgets(day date.Date) []Budget {
	cats := make(map[Category]bool)
	for b := range recordsOf[Budget](l) {
		cats[b.Category] = true
	}
	var budgets []Budget
	for _, c := range slices.Sorted(maps.Keys(cats)) {
		if b, ok := l.Budget(c, day); ok {
			budgets = append(budgets, b)
		}
	}
	return budgets
}

// budgetStart returns the first month a category has had a budget without
// interruption up to the month of day.
func (l *Ledger) budgetStart(category Category, day date.Date) date.Date {
	month := day.StartOf(date.Monthly)
	var start date.Date
	for b := range recordsOf[Budget](l) {
		if b.Category != category || b.Effective().After(month) {
			continue
		}
		switch {
		case b.Amount.IsZero():
			start = date.Date{}
		case start.IsZero():
			start = b.Effective()
		}
	}
	return start
}

// SubscriptionVersions returns every declaration of subscription id, chronologically.
func (l *Ledger) SubscriptionVersions(id string) []Subscription {
	var versions []Subscription
	for s := range recordsOf[Subscription](l) {
		if s.ID == id {
			versions = append(versions, s)
		}
	}
	return versions
}

// Subscriptions returns the latest declaration of every subscription, in
// order of first declaration.
func (l *Ledger) Subscriptions() []Subscription {
	index := make(map[string]int)
	var subs []Subscription
	for s := range recordsOf[Subscription](l) {
		if i, ok := index[s.ID]; ok {
			subs[i] = s
			continue
		}
		index[s.ID] = len(subs)
		subs = append(subs, s)
	}
	return subs
}

// Subscription returns the latest declaration of subscription id.
func (l *Ledger) Subscription(id string) (Subscription, bool) {
	versions := l.SubscriptionVersions(id)
	if len(versions) == 0 {
		return Subscription{}, false
	}
	return versions[len(versions)-1], true
}

// Holdings returns the holding records, chronologically.
func (l *Ledger) Holdings() []Holding { return slices.Collect(recordsOf[Holding](l)) }

// Symbols returns every symbol ever held with its kind.
func (l *Ledger) Symbols() map[string]AssetKind {
	symbols := make(map[string]AssetKind)
	for h := range recordsOf[Holding](l) {
		symbols[h.Symbol] = h.Kind
	}
	return symbols
}

// Prices returns the price history of symbol.
func (l *Ledger) Prices(symbol string) *date.History[float64] {
	h := new(date.History[float64])
	for p := range recordsOf[Price](l) {
		if p.Symbol == symbol {
			h.Append(p.Date, p.Price.InexactFloat64())
		}
	}
	return h
}

// NWITargets returns the targets in effect on day.
func (l *Ledger) NWITargets(day date.Date) NWITargets {
	targets := DefaultNWITargets
	for n := range recordsOf[NWITargets](l) {
		if n.Date.After(day) {
			break
		}
		targets = n
	}
	return targets
}

// LearnRecords returns the learning progress records.
func (l *Ledger) LearnRecords() []Learn { return slices.Collect(recordsOf[Learn](l)) }

// NotificationState is a notification with its read flag.
type NotificationState struct {
	Notification
	Read bool
}

// Notifications returns all notifications, most recent first.
func (l *Ledger) Notifications() []NotificationState {
	read := make(map[string]bool)
	for r := range recordsOf[Read](l) {
		read[r.ID] = true
	}
	var states []NotificationState
	for n := range recordsOf[Notification](l) {
		states = append(states, NotificationState{Notification: n, Read: read[n.ID]})
	}
	slices.SortStableFunc(states, func(a, b NotificationState) int { return b.Date.Compare(a.Date) })
	return states
}

// Unread returns unread notifications, most recent first.
func (l *Ledger) Unread() []NotificationState {
	var unread []NotificationState
	for _, n := range l.Notifications() {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread
}
