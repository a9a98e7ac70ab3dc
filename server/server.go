// Package server exposes the ledger reports as a read-only JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/insight"
	"github.com/etnz/finance/mfapi"
	"github.com/etnz/finance/store"
)

// FundSource returns a mutual fund scheme with its NAV history.
type FundSource interface {
	Fetch(ctx context.Context, code string) (mfapi.Scheme, error)
}

// Server serves the API.
type Server struct {
	Store    store.Store
	Funds    FundSource       // optional
	Insights *insight.Service // optional
	Table    finance.NWITable
	Logger   *slog.Logger
	// AuthSecret enables HS256 bearer authentication on /api routes.
	AuthSecret string
	Today      func() date.Date
}

func (s *Server) today() date.Date {
	if s.Today != nil {
		return s.Today()
	}
	return date.Today()
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Handler returns the routes wrapped in request logging and authentication.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/transactions", s.handleTransactions)
	api.HandleFunc("GET /api/analytics/{period}", s.handleAnalytics)
	api.HandleFunc("GET /api/budgets", s.handleBudgets)
	api.HandleFunc("GET /api/nwi", s.handleNWI)
	api.HandleFunc("GET /api/subscriptions", s.handleSubscriptions)
	api.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	api.HandleFunc("GET /api/funds/{code}/returns", s.handleFundReturns)
	api.HandleFunc("GET /api/insights", s.handleInsights)
	api.HandleFunc("GET /api/notifications", s.handleNotifications)
	api.HandleFunc("GET /api/learn", s.handleLearn)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("/api/", s.authMiddleware(api))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "path not found")
	})
	return s.loggingMiddleware(mux)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger().Info("server starting", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger().Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

// fail maps err to a status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, finance.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, finance.ErrNoData), finance.IsValidationError(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger().Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// dateParam parses the query parameter key, fallback when absent.
func dateParam(r *http.Request, key string, fallback date.Date) (date.Date, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	d, err := date.Parse(v)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*finance.Ledger, bool) {
	ledger, err := s.Store.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return ledger, true
}
