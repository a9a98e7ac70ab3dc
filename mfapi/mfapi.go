// Package mfapi reads Indian mutual fund NAVs from the public api.mfapi.in
// service.
package mfapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/finance/date"
	"github.com/etnz/finance/market"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the address of the public service.
const DefaultBaseURL = "https://api.mfapi.in"

// Meta describes a scheme.
type Meta struct {
	FundHouse      string `json:"fund_house"`
	SchemeType     string `json:"scheme_type"`
	SchemeCategory string `json:"scheme_category"`
	SchemeCode     int    `json:"scheme_code"`
	SchemeName     string `json:"scheme_name"`
	ISINGrowth     string `json:"isin_growth"`
}

// Scheme is a fund with its NAV history.
type Scheme struct {
	Meta Meta
	NAV  *date.History[float64]
}

// SearchResult is a scheme matching a search.
type SearchResult struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
}

// Client talks to the NAV service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client of the public service with a daily disk cache.
func New() *Client {
	return &Client{BaseURL: DefaultBaseURL, HTTP: market.DailyClient()}
}

// payload is the response of the scheme endpoints, NAVs are strings and
// dates are "dd-mm-yyyy".
type payload struct {
	Meta Meta `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		NAV  string `json:"nav"`
	} `json:"data"`
	Status string `json:"status"`
}

func (c *Client) scheme(ctx context.Context, path string) (Scheme, error) {
	var p payload
	if err := market.GetJSON(ctx, c.HTTP, strings.TrimSuffix(c.BaseURL, "/")+path, &p); err != nil {
		return Scheme{}, err
	}
	if p.Status != "" && !strings.EqualFold(p.Status, "success") {
		return Scheme{}, fmt.Errorf("mfapi %s: status %q", path, p.Status)
	}
	s := Scheme{Meta: p.Meta, NAV: new(date.History[float64])}
	for _, point := range p.Data {
		day, err := date.ParseDMY(point.Date)
		if err != nil {
			return Scheme{}, fmt.Errorf("mfapi %s: %w", path, err)
		}
		nav, err := decimal.NewFromString(strings.TrimSpace(point.NAV))
		if err != nil {
			return Scheme{}, fmt.Errorf("mfapi %s: invalid nav %q on %s: %w", path, point.NAV, day, err)
		}
		s.NAV.Append(day, nav.InexactFloat64())
	}
	return s, nil
}

// Fetch returns the scheme metadata and its full NAV history.
func (c *Client) Fetch(ctx context.Context, code string) (Scheme, error) {
	return c.scheme(ctx, "/mf/"+url.PathEscape(code))
}

// Latest returns the latest published NAV of a scheme.
func (c *Client) Latest(ctx context.Context, code string) (date.Date, float64, error) {
	s, err := c.scheme(ctx, "/mf/"+url.PathEscape(code)+"/latest")
	if err != nil {
		return date.Date{}, 0, err
	}
	if s.NAV.Len() == 0 {
		return date.Date{}, 0, fmt.Errorf("mfapi: no nav for scheme %s", code)
	}
	day, nav := s.NAV.Latest()
	return day, nav, nil
}

// Search returns the schemes whose name matches q.
func (c *Client) Search(ctx context.Context, q string) ([]SearchResult, error) {
	var results []SearchResult
	addr := strings.TrimSuffix(c.BaseURL, "/") + "/mf/search?q=" + url.QueryEscape(q)
	if err := market.GetJSON(ctx, c.HTTP, addr, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Prices implements market.PriceProvider, the symbol is the scheme code.
func (c *Client) Prices(ctx context.Context, symbol string, from, to date.Date) (map[date.Date]float64, error) {
	s, err := c.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	prices := make(map[date.Date]float64)
	for day, nav := range s.NAV.Values() {
		if !day.Before(from) && !day.After(to) {
			prices[day] = nav
		}
	}
	return prices, nil
}
