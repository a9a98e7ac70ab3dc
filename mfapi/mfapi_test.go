package mfapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/finance/date"
)

const schemeJSON = `{
  "meta": {
    "fund_house": "Parag Parikh Mutual Fund",
    "scheme_type": "Open Ended Schemes",
    "scheme_category": "Equity Scheme - Flexi Cap Fund",
    "scheme_code": 122639,
    "scheme_name": "Parag Parikh Flexi Cap Fund - Direct Plan - Growth"
  },
  "data": [
    {"date": "03-01-2025", "nav": "85.12340"},
    {"date": "02-01-2025", "nav": "84.50000"},
    {"date": "31-12-2024", "nav": "83.90000"}
  ],
  "status": "SUCCESS"
}`

func testClient(t *testing.T) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /mf/122639", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(schemeJSON))
	})
	mux.HandleFunc("GET /mf/122639/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"scheme_code":122639},"data":[{"date":"03-01-2025","nav":"85.12340"}],"status":"SUCCESS"}`))
	})
	mux.HandleFunc("GET /mf/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "parag parikh" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"schemeCode":122639,"schemeName":"Parag Parikh Flexi Cap Fund - Direct Plan - Growth"}]`))
	})
	mux.HandleFunc("GET /mf/999", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{},"data":[{"date":"2025-01-03","nav":"1"}],"status":"SUCCESS"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &Client{BaseURL: server.URL, HTTP: server.Client()}
}

func TestClient_Fetch(t *testing.T) {
	c := testClient(t)
	s, err := c.Fetch(context.Background(), "122639")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if s.Meta.SchemeCode != 122639 || s.Meta.FundHouse != "Parag Parikh Mutual Fund" {
		t.Errorf("Fetch() meta = %+v", s.Meta)
	}
	if s.NAV.Len() != 3 {
		t.Fatalf("Fetch() returned %d navs, want 3", s.NAV.Len())
	}
	first, nav := s.NAV.First()
	if first != date.MustParse("2024-12-31") || nav != 83.9 {
		t.Errorf("Fetch() first nav = %v %v, want 2024-12-31 83.9", first, nav)
	}

	if _, err := c.Fetch(context.Background(), "999"); err == nil {
		t.Error("Fetch() with iso dates expected an error")
	}
	if _, err := c.Fetch(context.Background(), "404"); err == nil {
		t.Error("Fetch() of an unknown scheme expected an error")
	}
}

func TestClient_Latest(t *testing.T) {
	day, nav, err := testClient(t).Latest(context.Background(), "122639")
	if err != nil {
		t.Fatalf("Latest() unexpected error: %v", err)
	}
	if day != date.MustParse("2025-01-03") || nav != 85.1234 {
		t.Errorf("Latest() = %v %v, want 2025-01-03 85.1234", day, nav)
	}
}

func TestClient_Search(t *testing.T) {
	results, err := testClient(t).Search(context.Background(), "parag parikh")
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].SchemeCode != 122639 {
		t.Errorf("Search() = %+v", results)
	}
}

func TestClient_Prices(t *testing.T) {
	prices, err := testClient(t).Prices(context.Background(), "122639", date.MustParse("2025-01-01"), date.MustParse("2025-01-02"))
	if err != nil {
		t.Fatalf("Prices() unexpected error: %v", err)
	}
	if len(prices) != 1 || prices[date.MustParse("2025-01-02")] != 84.5 {
		t.Errorf("Prices() = %v, want only 2025-01-02", prices)
	}
}
