package finance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/finance/date"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports an invalid record.
type ValidationError struct {
	Index int // position in the ledger, -1 for a record not yet appended
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Msg
	}
	return fmt.Sprintf("record %d: %s", e.Index+1, e.Msg)
}

// ValidationErrors gathers every validation failure of a ledger.
type ValidationErrors []*ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, err := range ve {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid records: %s", len(ve), strings.Join(msgs, "; "))
}

// IsValidationError reports whether err is, or wraps, a validation failure.
func IsValidationError(err error) bool {
	var single *ValidationError
	var many ValidationErrors
	return errors.As(err, &single) || errors.As(err, &many)
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Index: -1, Msg: fmt.Sprintf(format, args...)}
}

// ValidateRecord checks rec against the ledger it is about to be appended to.
// References are only resolved against records dated on or before rec, the
// same records Validate checks it against once appended.
func (l *Ledger) ValidateRecord(rec Record) error {
	if rec.When().IsZero() {
		return invalid("%s: date is missing", rec.What())
	}
	l = l.until(rec.When())
	switch v := rec.(type) {
	case Transaction:
		return l.validateTransaction(v)
	case Budget:
		if !v.Category.Valid() || v.Category.IsIncome() {
			return invalid("budget: %v %q", ErrUnknownCategory, v.Category)
		}
		if v.Amount.IsNegative() {
			return invalid("budget: amount must not be negative, got %s", v.Amount)
		}
		return l.validateCurrency("budget", v.Amount)
	case Subscription:
		return l.validateSubscription(v)
	case Holding:
		if v.Symbol == "" {
			return invalid("holding: symbol is missing")
		}
		if v.Kind != Stock && v.Kind != Fund {
			return invalid("holding: kind must be %q or %q, got %q", Stock, Fund, v.Kind)
		}
		if v.Units.IsZero() {
			return invalid("holding: units must not be zero")
		}
		if !v.Amount.IsPositive() {
			return invalid("holding: amount must be greater than zero")
		}
		return l.validateCurrency("holding", v.Amount)
	case Price:
		if v.Symbol == "" {
			return invalid("price: symbol is missing")
		}
		if !v.Price.IsPositive() {
			return invalid("price: price must be greater than zero")
		}
	case NWITargets:
		for _, p := range []Percent{v.Needs, v.Wants, v.Investments, v.Savings} {
			if p < 0 {
				return invalid("nwi: percentages must not be negative")
			}
		}
		if sum := v.Needs + v.Wants + v.Investments + v.Savings; !sum.Equal(100) {
			return invalid("nwi: percentages must sum to 100, got %v", sum)
		}
	case Learn:
		if v.Module == "" {
			return invalid("learn: module is missing")
		}
		if v.IsQuiz() && (v.Score < 0 || v.Score > 100) {
			return invalid("learn: score must be within 0 and 100, got %v", v.Score)
		}
	case Notification:
		if v.ID == "" || v.Message == "" {
			return invalid("notification: id and message are required")
		}
	case Read:
		for _, n := range l.Notifications() {
			if n.ID == v.ID {
				return nil
			}
		}
		return invalid("read: notification %q: %v", v.ID, ErrNotFound)
	}
	return nil
}

// until returns a view of the records dated on or before day.
func (l *Ledger) until(day date.Date) *Ledger {
	i := len(l.records)
	for i > 0 && l.records[i-1].When().After(day) {
		i--
	}
	return &Ledger{currency: l.currency, records: l.records[:i:i]}
}

func (l *Ledger) validateCurrency(what string, m Money) error {
	if m.Currency() != l.currency {
		return invalid("%s: currency %q differs from the ledger currency %q", what, m.Currency(), l.currency)
	}
	return nil
}

func (l *Ledger) validateTransaction(tx Transaction) error {
	if tx.ID == "" {
		return invalid("tx: id is missing")
	}
	if tx.Type != Income && tx.Type != Expense {
		return invalid("tx: type must be %q or %q, got %q", Income, Expense, tx.Type)
	}
	if !tx.Amount.IsPositive() {
		return invalid("tx: amount must be greater than zero")
	}
	if !tx.Category.Valid() {
		return invalid("tx: %v %q", ErrUnknownCategory, tx.Category)
	}
	if tx.Category.IsIncome() != (tx.Type == Income) {
		return invalid("tx: category %q cannot be used for %s", tx.Category, tx.Type)
	}
	if tx.NWI != "" && !tx.NWI.Valid() {
		return invalid("tx: unknown nwi bucket %q", tx.NWI)
	}
	if tx.Subscription != "" {
		if _, ok := l.Subscription(tx.Subscription); !ok {
			return invalid("tx: subscription %q: %v", tx.Subscription, ErrNotFound)
		}
	}
	return l.validateCurrency("tx", tx.Amount)
}

func (l *Ledger) validateSubscription(s Subscription) error {
	if s.ID == "" || s.Name == "" {
		return invalid("subscription: id and name are required")
	}
	if !s.Amount.IsPositive() {
		return invalid("subscription: amount must be greater than zero")
	}
	switch s.Cycle {
	case CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly:
	default:
		return invalid("subscription: unknown cycle %q", s.Cycle)
	}
	switch s.Status {
	case Active, Paused, Cancelled:
	default:
		return invalid("subscription: unknown status %q", s.Status)
	}
	if !s.Category.Valid() || s.Category.IsIncome() {
		return invalid("subscription: %v %q", ErrUnknownCategory, s.Category)
	}
	if s.Start.IsZero() {
		return invalid("subscription: start date is missing")
	}
	return l.validateCurrency("subscription", s.Amount)
}

// Validate checks every record of the ledger in order, each against the
// records before it, and returns all failures as ValidationErrors.
func (l *Ledger) Validate() error {
	prefix := NewLedger(l.currency)
	var errs ValidationErrors
	for i, rec := range l.records {
		if err := prefix.ValidateRecord(rec); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				errs = append(errs, &ValidationError{Index: i, Msg: ve.Msg})
			}
		}
		prefix.records = append(prefix.records, rec)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
