package date

import (
	"fmt"
	"iter"
	"time"
)

// Range represents a range of dates, both bounds included.
type Range struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days in the range.
func (r Range) Days() int { return r.To.Sub(r.From) + 1 }

// Prev returns the previous range of the same kind.
//
// The previous range of a standard period is that period (the previous month
// for a month, even when months have different lengths), otherwise it is the
// range of the same number of days just before r.
func (r Range) Prev() Range {
	if p, ok := r.Period(); ok {
		return p.Range(r.From.Add(-1))
	}
	n := r.Days()
	return Range{From: r.From.Add(-n), To: r.From.Add(-1)}
}

// Split iterates over the consecutive sub-ranges of period p covering r.
// The first and last sub-ranges are clipped to r.
func (r Range) Split(p Period) iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for on := r.From; !on.After(r.To); {
			sub := p.Range(on)
			if sub.From.Before(r.From) {
				sub.From = r.From
			}
			if sub.To.After(r.To) {
				sub.To = r.To
			}
			if !yield(sub) {
				return
			}
			on = sub.To.Add(1)
		}
	}
}

// Period returns the period of this range if it's a standard one.
func (r Range) Period() (p Period, ok bool) {
	switch {
	case r.From == r.To:
		return Daily, true
	case r.From.Weekday() == time.Monday && r.From.EndOf(Weekly) == r.To:
		return Weekly, true
	case r.From.Day() == 1 && r.From.EndOf(Monthly) == r.To:
		return Monthly, true
	case r.From.StartOf(Quarterly) == r.From && r.From.EndOf(Quarterly) == r.To:
		return Quarterly, true
	case r.From.StartOf(Yearly) == r.From && r.From.EndOf(Yearly) == r.To:
		return Yearly, true
	default:
		return Daily, false
	}
}

// Name the period range
func (r Range) Name() string {
	p, ok := r.Period()
	if ok {
		return p.String()
	}
	return "custom"
}

// Identifier compute a unique identifier for the Range.
// If the period is defined, use a short insighful name
func (r Range) Identifier() string {
	p, ok := r.Period()
	if !ok {
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}

	switch p {
	case Daily:
		return r.From.String()
	case Weekly:
		year, week := r.From.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case Monthly:
		return r.From.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case Yearly:
		return r.From.Format("2006")
	default:
		panic("unknown period")
	}
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
