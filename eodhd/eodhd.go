// Package eodhd reads end-of-day stock prices from EOD Historical Data.
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/finance/date"
	"github.com/etnz/finance/market"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the address of the EODHD API.
const DefaultBaseURL = "https://eodhd.com"

// APIKeyEnv is the environment variable holding the API key.
const APIKeyEnv = "EODHD_API_KEY"

// ErrNoKey is returned when no API key is configured.
var ErrNoKey = errors.New("eodhd api key is missing, set " + APIKeyEnv)

// Client talks to the EODHD API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New returns a client of the public API with a daily disk cache.
func New(apiKey string) *Client {
	return &Client{BaseURL: DefaultBaseURL, APIKey: apiKey, HTTP: market.DailyClient()}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, data any) error {
	if c.APIKey == "" {
		return ErrNoKey
	}
	query.Set("fmt", "json")
	query.Set("api_token", c.APIKey)
	addr := strings.TrimSuffix(c.BaseURL, "/") + path + "?" + query.Encode()
	return market.GetJSON(ctx, c.HTTP, addr, data)
}

// Prices implements market.PriceProvider with daily closes. The symbol is an
// EODHD ticker like "INFY.NSE" or "MCD.US".
func (c *Client) Prices(ctx context.Context, symbol string, from, to date.Date) (map[date.Date]float64, error) {
	// bounds are included in the response.
	var content []struct {
		Date  date.Date       `json:"date"`
		Close decimal.Decimal `json:"close"`
	}
	query := url.Values{"from": {from.String()}, "to": {to.String()}}
	if err := c.get(ctx, "/api/eod/"+url.PathEscape(symbol), query, &content); err != nil {
		return nil, err
	}
	prices := make(map[date.Date]float64, len(content))
	for _, info := range content {
		prices[info.Date] = info.Close.InexactFloat64()
	}
	return prices, nil
}

// SearchResult matches a single item of the search API response.
type SearchResult struct {
	Code              string    `json:"Code"`
	Exchange          string    `json:"Exchange"`
	Name              string    `json:"Name"`
	Type              string    `json:"Type"`
	Country           string    `json:"Country"`
	Currency          string    `json:"Currency"`
	ISIN              string    `json:"ISIN"`
	PreviousClose     float64   `json:"previousClose"`
	PreviousCloseDate date.Date `json:"previousCloseDate"`
}

// Ticker returns the symbol to use with Prices.
func (r SearchResult) Ticker() string { return fmt.Sprintf("%s.%s", r.Code, r.Exchange) }

// Search searches for stocks by name, ticker or ISIN.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	var results []SearchResult
	if err := c.get(ctx, "/api/search/"+url.PathEscape(term), url.Values{}, &results); err != nil {
		return nil, err
	}
	return results, nil
}
