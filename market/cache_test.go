package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/finance/date"
)

func TestDiskCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"hits":%d}`, hits)
	}))
	defer server.Close()

	today := date.MustParse("2025-01-10")
	cache := &diskCache{base: http.DefaultTransport, dir: t.TempDir(), period: date.Daily, today: func() date.Date { return today }}
	client := &http.Client{Transport: cache}

	get := func() int {
		t.Helper()
		var v struct{ Hits int }
		if err := GetJSON(context.Background(), client, server.URL+"/nav", &v); err != nil {
			t.Fatalf("GetJSON() unexpected error: %v", err)
		}
		return v.Hits
	}

	if got := get(); got != 1 {
		t.Errorf("first GetJSON() = %d, want 1", got)
	}
	if got := get(); got != 1 {
		t.Errorf("second GetJSON() = %d, want the cached 1", got)
	}
	today = today.Add(1)
	if got := get(); got != 2 {
		t.Errorf("GetJSON() the next day = %d, want 2", got)
	}
}

func TestGetJSON_Status(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	var v any
	if err := GetJSON(context.Background(), server.Client(), server.URL+"/missing", &v); err == nil {
		t.Error("GetJSON() expected an error on 404")
	}
}
