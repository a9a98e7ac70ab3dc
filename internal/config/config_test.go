package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"FIN_HTTP_PORT", "FIN_STORE", "FIN_LEDGER_FILE", "FIN_CURRENCY", "FIN_AUTH_SECRET", "FIN_STOCK_PROVIDER"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.HTTP.Addr() != "127.0.0.1:8080" {
		t.Errorf("Load() addr = %q, want 127.0.0.1:8080", cfg.HTTP.Addr())
	}
	if cfg.Store.DSN != "fin.jsonl" || cfg.Store.Currency != "INR" {
		t.Errorf("Load() store = %+v", cfg.Store)
	}
	if cfg.Insights.TTL != 6*time.Hour {
		t.Errorf("Load() insights ttl = %v, want 6h", cfg.Insights.TTL)
	}
	if cfg.Auth.Secret != "" {
		t.Errorf("Load() auth secret = %q, want none", cfg.Auth.Secret)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FIN_HTTP_PORT", "9090")
	t.Setenv("FIN_LEDGER_FILE", "/data/ledger.jsonl")
	t.Setenv("FIN_STORE", "")
	t.Setenv("FIN_CURRENCY", "eur")
	t.Setenv("FIN_INSIGHTS_TTL", "30m")
	t.Setenv("FIN_STOCK_PROVIDER", "eodhd")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.Store.DSN != "/data/ledger.jsonl" || cfg.Store.Currency != "EUR" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Insights.TTL != 30*time.Minute || cfg.Providers.StockKind != "eodhd" {
		t.Errorf("Load() insights = %+v, providers = %+v", cfg.Insights, cfg.Providers)
	}
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		key, value string
	}{
		{"FIN_HTTP_PORT", "http"},
		{"FIN_HTTP_PORT", "70000"},
		{"FIN_HTTP_READ_TIMEOUT", "soon"},
		{"FIN_STOCK_PROVIDER", "bloomberg"},
	}
	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected an error", tc.key, tc.value)
			}
		})
	}
}
