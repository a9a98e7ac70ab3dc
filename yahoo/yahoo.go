// Package yahoo reads stock prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/market"
)

// DefaultBaseURL is the address of the chart API.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// JSONPath expressions into the chart response.
const (
	latestPath     = "$.chart.result[0].meta.regularMarketPrice"
	timestampsPath = "$.chart.result[0].timestamp"
	closePath      = "$.chart.result[0].indicators.quote[0].close"
	errorPath      = "$.chart.error.description"
)

// Client talks to the chart API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client of the public API with a daily disk cache.
func New() *Client {
	return &Client{BaseURL: DefaultBaseURL, HTTP: market.DailyClient()}
}

func (c *Client) chart(ctx context.Context, symbol string, query url.Values) (any, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?%s", strings.TrimSuffix(c.BaseURL, "/"), url.PathEscape(symbol), query.Encode())
	var jobj any
	if err := market.GetJSON(ctx, c.HTTP, addr, &jobj); err != nil {
		return nil, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	if desc, err := jsonpath.Get(errorPath, jobj); err == nil {
		if s, ok := desc.(string); ok && s != "" {
			return nil, fmt.Errorf("error retrieving %q: %s", symbol, s)
		}
	}
	return jobj, nil
}

// first unwraps the single answer jsonpath may return as a list.
func first(jval any) any {
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		return jlist[0]
	}
	return jval
}

// Latest returns the latest market price of symbol.
func (c *Client) Latest(ctx context.Context, symbol string) (float64, error) {
	jobj, err := c.chart(ctx, symbol, url.Values{"range": {"1d"}, "interval": {"1d"}})
	if err != nil {
		return 0, err
	}
	jval, err := jsonpath.Get(latestPath, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %q %w", symbol, latestPath, err)
	}
	val, ok := first(jval).(float64)
	if !ok || val <= 0 {
		return 0, fmt.Errorf("error parsing %q: %q not a price: %v", symbol, latestPath, jval)
	}
	return val, nil
}

// Prices implements market.PriceProvider with daily closes.
func (c *Client) Prices(ctx context.Context, symbol string, from, to date.Date) (map[date.Date]float64, error) {
	query := url.Values{
		"period1":  {fmt.Sprint(from.Time().Unix())},
		"period2":  {fmt.Sprint(to.Add(1).Time().Unix())},
		"interval": {"1d"},
	}
	jobj, err := c.chart(ctx, symbol, query)
	if err != nil {
		return nil, err
	}
	jts, err := jsonpath.Get(timestampsPath, jobj)
	if err != nil {
		// no trading in the range
		return map[date.Date]float64{}, nil
	}
	jcloses, err := jsonpath.Get(closePath, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %q %w", symbol, closePath, err)
	}
	timestamps, _ := jts.([]any)
	closes, _ := jcloses.([]any)
	if len(timestamps) != len(closes) {
		return nil, fmt.Errorf("error parsing %q: %d timestamps for %d closes", symbol, len(timestamps), len(closes))
	}

	prices := make(map[date.Date]float64)
	for i, jt := range timestamps {
		ts, ok := jt.(float64)
		if !ok {
			continue
		}
		price, ok := closes[i].(float64) // null on days without trades
		if !ok || price <= 0 {
			continue
		}
		day := date.FromTime(time.Unix(int64(ts), 0).UTC())
		if !day.Before(from) && !day.After(to) {
			prices[day] = price
		}
	}
	return prices, nil
}
