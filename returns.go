package finance

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/etnz/finance/date"
)

// ErrNoData is returned when there are not enough points to compute a return.
var ErrNoData = errors.New("not enough data")

// NAVTolerance is the maximum distance in days between a requested date and
// the price point used for it.
const NAVTolerance = 30

// CAGR returns the compound annual growth rate from start to end over years.
func CAGR(start, end, years float64) (Percent, error) {
	if start <= 0 || end < 0 || years <= 0 {
		return 0, fmt.Errorf("cannot compute cagr from %v to %v over %v years", start, end, years)
	}
	return Percent(100 * (math.Pow(end/start, 1/years) - 1)), nil
}

// CashFlow is a dated amount, negative for money invested, positive for money
// received.
type CashFlow struct {
	Date   date.Date
	Amount float64
}

// xnpv returns the net present value of flows at rate, and its derivative.
func xnpv(flows []CashFlow, rate float64) (npv, dnpv float64) {
	t0 := flows[0].Date
	for _, f := range flows {
		t := float64(f.Date.Sub(t0)) / 365
		d := math.Pow(1+rate, t)
		npv += f.Amount / d
		dnpv -= t * f.Amount / (d * (1 + rate))
	}
	return npv, dnpv
}

// XIRR returns the annualized internal rate of return of irregular flows.
//
// It uses Newton-Raphson from 10% and falls back to bisection when Newton does
// not converge. Flows must contain at least one negative and one positive amount.
func XIRR(flows []CashFlow) (Percent, error) {
	var neg, pos bool
	for _, f := range flows {
		neg = neg || f.Amount < 0
		pos = pos || f.Amount > 0
	}
	if !neg || !pos {
		return 0, errors.New("xirr: cash flows must change sign")
	}
	flows = slices.Clone(flows)
	slices.SortStableFunc(flows, func(a, b CashFlow) int { return a.Date.Compare(b.Date) })

	const (
		tolerance  = 1e-7
		iterations = 100
	)
	rate := 0.1
	for range iterations {
		npv, dnpv := xnpv(flows, rate)
		if math.Abs(npv) < tolerance {
			return Percent(100 * rate), nil
		}
		if dnpv == 0 || math.IsNaN(dnpv) {
			break
		}
		next := rate - npv/dnpv
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-rate) < tolerance {
			return Percent(100 * next), nil
		}
		rate = next
	}

	lo, hi := -0.9999, 10.0
	flo, _ := xnpv(flows, lo)
	fhi, _ := xnpv(flows, hi)
	for flo*fhi > 0 && hi < 1e6 {
		hi *= 10
		fhi, _ = xnpv(flows, hi)
	}
	if flo*fhi > 0 {
		return 0, errors.New("xirr: no solution")
	}
	for range 1000 {
		mid := (lo + hi) / 2
		fmid, _ := xnpv(flows, mid)
		if math.Abs(fmid) < tolerance || (hi-lo)/2 < tolerance {
			return Percent(100 * mid), nil
		}
		if fmid*flo < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return 0, errors.New("xirr: did not converge")
}

// TrailingReturn returns the return of a price series over the months before
// asOf.
//
// The end point is the latest price on or before asOf, the start point is the
// price nearest to asOf minus months, both within NAVTolerance days. Periods of
// a year or less return the absolute change, longer periods are annualized.
func TrailingReturn(h *date.History[float64], asOf date.Date, months int) (Percent, error) {
	endDay, end, ok := h.ValueAsOf(asOf)
	if !ok || asOf.Sub(endDay) > NAVTolerance {
		return 0, ErrNoData
	}
	startDay, start, ok := h.Nearest(asOf.AddMonth(-months), NAVTolerance)
	if !ok || !startDay.Before(endDay) || start <= 0 {
		return 0, ErrNoData
	}
	if months <= 12 {
		return Percent(100 * (end/start - 1)), nil
	}
	return CAGR(start, end, float64(months)/12)
}

// Tenor is a trailing period.
type Tenor struct {
	Label  string `json:"label"`
	Months int    `json:"months"`
}

// Tenors are the trailing periods reported for funds.
var Tenors = []Tenor{{"1M", 1}, {"3M", 3}, {"6M", 6}, {"1Y", 12}, {"3Y", 36}, {"5Y", 60}}

// PeriodReturn is the trailing return over a tenor. Available is false when
// the history is too short.
type PeriodReturn struct {
	Tenor
	Return    Percent `json:"return"`
	Available bool    `json:"available"`
}

// TrailingReturns computes the return for every tenor.
func TrailingReturns(h *date.History[float64], asOf date.Date) []PeriodReturn {
	returns := make([]PeriodReturn, 0, len(Tenors))
	for _, t := range Tenors {
		r, err := TrailingReturn(h, asOf, t.Months)
		returns = append(returns, PeriodReturn{Tenor: t, Return: r, Available: err == nil})
	}
	return returns
}

// Position is a holding valued at a date. An unpriced position has no value,
// gain or XIRR.
type Position struct {
	Symbol    string    `json:"symbol"`
	Kind      AssetKind `json:"kind"`
	Units     Quantity  `json:"units"`
	Invested  Money     `json:"invested"` // cash paid minus cash received
	Price     Money     `json:"price"`
	PriceDate date.Date `json:"price_date,omitzero"`
	Priced    bool      `json:"priced"`
	Value     Money     `json:"value"`
	Gain      Money     `json:"gain"`
	XIRR      Percent   `json:"xirr"`
	HasXIRR   bool      `json:"has_xirr"`
	flows     []CashFlow
}

// PortfolioReport values every holding. Totals and the XIRR only cover priced
// positions, Unpriced counts the others.
type PortfolioReport struct {
	AsOf      date.Date  `json:"as_of"`
	Positions []Position `json:"positions"`
	Invested  Money      `json:"invested"`
	Value     Money      `json:"value"`
	Gain      Money      `json:"gain"`
	XIRR      Percent    `json:"xirr"`
	HasXIRR   bool       `json:"has_xirr"`
	Unpriced  int        `json:"unpriced"`
}

// Portfolio values the holdings on asOf with the latest known prices, and
// computes the XIRR of purchase and redemption flows plus the current value.
func Portfolio(ledger *Ledger, asOf date.Date) PortfolioReport {
	index := make(map[string]int)
	var positions []Position
	for _, h := range ledger.Holdings() {
		if h.Date.After(asOf) {
			continue
		}
		i, ok := index[h.Symbol]
		if !ok {
			i = len(positions)
			index[h.Symbol] = i
			positions = append(positions, Position{Symbol: h.Symbol, Kind: h.Kind, Invested: ledger.Zero()})
		}
		p := &positions[i]
		p.Units = p.Units.Add(h.Units)
		cash := h.Amount.Float()
		if h.Units.IsPositive() {
			p.Invested = p.Invested.Add(h.Amount)
			cash = -cash
		} else {
			p.Invested = p.Invested.Sub(h.Amount)
		}
		p.flows = append(p.flows, CashFlow{Date: h.Date, Amount: cash})
	}

	report := PortfolioReport{AsOf: asOf, Invested: ledger.Zero(), Value: ledger.Zero()}
	var all []CashFlow
	for i := range positions {
		p := &positions[i]
		p.Price, p.Value, p.Gain = ledger.Zero(), ledger.Zero(), ledger.Zero()
		day, price, ok := ledger.Prices(p.Symbol).ValueAsOf(asOf)
		if !ok {
			report.Unpriced++
			continue
		}
		p.Priced, p.PriceDate = true, day
		p.Price = M(price, ledger.Currency())
		p.Value = p.Units.Value(p.Price).Round()
		p.Gain = p.Value.Sub(p.Invested)
		flows := append(slices.Clone(p.flows), CashFlow{Date: asOf, Amount: p.Value.Float()})
		if r, err := XIRR(flows); err == nil {
			p.XIRR, p.HasXIRR = r, true
		}
		all = append(all, flows...)
		report.Invested = report.Invested.Add(p.Invested)
		report.Value = report.Value.Add(p.Value)
	}
	report.Positions = positions
	report.Gain = report.Value.Sub(report.Invested)
	if r, err := XIRR(all); err == nil {
		report.XIRR, report.HasXIRR = r, true
	}
	return report
}
