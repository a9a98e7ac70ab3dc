// Package market retrieves prices of funds and stocks from public providers
// and turns them into ledger price records.
package market

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/shopspring/decimal"
)

// PriceProvider returns the daily prices of a symbol between two dates, bounds
// included.
type PriceProvider interface {
	Prices(ctx context.Context, symbol string, from, to date.Date) (map[date.Date]float64, error)
}

// Providers selects the provider of each kind of asset.
type Providers map[finance.AssetKind]PriceProvider

// Refresh fetches the prices of every held symbol since its last known price
// (or its first purchase) up to asOf, and returns the new price records,
// sorted by date then symbol. Failures are collected, the other symbols are
// still refreshed.
func Refresh(ctx context.Context, ledger *finance.Ledger, providers Providers, asOf date.Date) ([]finance.Price, error) {
	symbols := ledger.Symbols()
	first := make(map[string]date.Date)
	for _, h := range ledger.Holdings() {
		if _, ok := first[h.Symbol]; !ok {
			first[h.Symbol] = h.Date
		}
	}

	var prices []finance.Price
	var errs []error
	for _, symbol := range slices.Sorted(maps.Keys(symbols)) {
		kind := symbols[symbol]
		provider, ok := providers[kind]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: no price provider for %s", symbol, kind))
			continue
		}
		from := first[symbol]
		if h := ledger.Prices(symbol); h.Len() > 0 {
			last, _ := h.Latest()
			from = last.Add(1)
		}
		if from.After(asOf) {
			continue
		}
		points, err := provider.Prices(ctx, symbol, from, asOf)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}
		for _, day := range slices.SortedFunc(maps.Keys(points), date.Date.Compare) {
			if day.Before(from) || day.After(asOf) || points[day] <= 0 {
				continue
			}
			prices = append(prices, finance.NewPrice(day, symbol, decimal.NewFromFloat(points[day])))
		}
	}
	slices.SortStableFunc(prices, func(a, b finance.Price) int { return a.Date.Compare(b.Date) })
	return prices, errors.Join(errs...)
}
