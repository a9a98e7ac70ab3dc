package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/finance/date"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/eod/MCD.US", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_token") != "secret" || q.Get("from") != "2025-01-02" || q.Get("to") != "2025-01-03" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`[
			{"date":"2025-01-02","open":290.1,"close":291.25,"adjusted_close":291.25,"volume":1},
			{"date":"2025-01-03","open":291.0,"close":289.5,"adjusted_close":289.5,"volume":1}
		]`))
	})
	mux.HandleFunc("GET /api/search/mcdonald", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Code":"MCD","Exchange":"US","Name":"McDonalds Corp","Type":"Common Stock","ISIN":"US5801351017","previousClose":289.5,"previousCloseDate":"2025-01-03"}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &Client{BaseURL: server.URL, APIKey: "secret", HTTP: server.Client()}
}

func TestClient_Prices(t *testing.T) {
	prices, err := testClient(t).Prices(context.Background(), "MCD.US", date.MustParse("2025-01-02"), date.MustParse("2025-01-03"))
	if err != nil {
		t.Fatalf("Prices() unexpected error: %v", err)
	}
	if len(prices) != 2 || prices[date.MustParse("2025-01-02")] != 291.25 {
		t.Errorf("Prices() = %v", prices)
	}
}

func TestClient_Search(t *testing.T) {
	results, err := testClient(t).Search(context.Background(), "mcdonald")
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Ticker() != "MCD.US" || results[0].PreviousCloseDate != date.MustParse("2025-01-03") {
		t.Errorf("Search() = %+v", results)
	}
}

func TestClient_NoKey(t *testing.T) {
	c := testClient(t)
	c.APIKey = ""
	if _, err := c.Prices(context.Background(), "MCD.US", date.Today(), date.Today()); !errors.Is(err, ErrNoKey) {
		t.Errorf("Prices() error = %v, want ErrNoKey", err)
	}
}
