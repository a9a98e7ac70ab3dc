package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/insight"
	"github.com/etnz/finance/mfapi"
	"github.com/etnz/finance/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) date.Date { return date.MustParse(s) }

func inr(v float64) finance.Money { return finance.M(v, "INR") }

type fakeFunds struct{}

func (fakeFunds) Fetch(_ context.Context, code string) (mfapi.Scheme, error) {
	if code != "122639" {
		return mfapi.Scheme{}, errors.New("scheme not found")
	}
	nav := new(date.History[float64])
	nav.Append(d("2024-03-15"), 60)
	nav.Append(d("2025-02-14"), 70)
	nav.Append(d("2025-03-14"), 72)
	return mfapi.Scheme{Meta: mfapi.Meta{SchemeCode: 122639, SchemeName: "Flexi Cap"}, NAV: nav}, nil
}

func testServer(t *testing.T, secret string) *Server {
	t.Helper()
	s := &store.File{Path: filepath.Join(t.TempDir(), "fin.jsonl"), Currency: "INR"}
	note := finance.NewNotification(d("2025-03-02"), finance.BudgetWarning, "budget-warning:dining:2025-03", "Dining budget at 85%")
	err := s.Append(context.Background(),
		finance.NewIncome(d("2025-03-01"), inr(50000), finance.Salary, "salary"),
		finance.NewBudget(d("2025-03-01"), finance.Dining, inr(2000), false),
		finance.NewExpense(d("2025-03-03"), inr(2500), finance.Dining, "party"),
		finance.NewExpense(d("2025-02-20"), inr(900), finance.Groceries, "february"),
		finance.NewSubscription(d("2025-01-16"), "Music", inr(119), finance.CycleMonthly),
		note,
		finance.NewRead(d("2025-03-03"), note.ID),
		finance.NewNotification(d("2025-03-04"), finance.BudgetOver, "budget-over:dining:2025-03", "Dining budget exceeded"),
	)
	require.NoError(t, err)
	today := func() date.Date { return d("2025-03-14") }
	return &Server{
		Store:      s,
		Funds:      fakeFunds{},
		Insights:   &insight.Service{Source: s, Now: func() time.Time { return today().Time() }},
		AuthSecret: secret,
		Today:      today,
	}
}

func get(t *testing.T, h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v), "body: %s", w.Body.String())
}

func TestHealth(t *testing.T) {
	w := get(t, testServer(t, "").Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestNotFound(t *testing.T) {
	w := get(t, testServer(t, "").Handler(), "/nowhere")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, float64(404), body["code"])
}

func TestTransactions(t *testing.T) {
	h := testServer(t, "").Handler()

	w := get(t, h, "/api/transactions")
	require.Equal(t, http.StatusOK, w.Code)
	var txs []map[string]any
	decode(t, w, &txs)
	assert.Len(t, txs, 2, "defaults to the current month")

	w = get(t, h, "/api/transactions?from=2025-02-01&to=2025-03-31")
	decode(t, w, &txs)
	assert.Len(t, txs, 3)

	w = get(t, h, "/api/transactions?from=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, h, "/api/transactions?from=2025-03-10&to=2025-03-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalytics(t *testing.T) {
	h := testServer(t, "").Handler()

	w := get(t, h, "/api/analytics/monthly?date=2025-03-10")
	require.Equal(t, http.StatusOK, w.Code)
	var a map[string]any
	decode(t, w, &a)
	for _, key := range []string{"range", "income", "expense", "previous", "income_change", "expense_change", "expenses", "series"} {
		assert.Contains(t, a, key)
	}
	assert.Equal(t, float64(50000), a["income"].(map[string]any)["amount"])
	assert.Equal(t, float64(2500), a["expense"].(map[string]any)["amount"])
	assert.Len(t, a["expenses"], 1)
	assert.Equal(t, "2025-03-01", a["range"].(map[string]any)["from"])

	w = get(t, h, "/api/analytics/daily")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBudgetsAndNWI(t *testing.T) {
	h := testServer(t, "").Handler()

	w := get(t, h, "/api/budgets")
	require.Equal(t, http.StatusOK, w.Code)
	var usage []map[string]any
	decode(t, w, &usage)
	require.Len(t, usage, 1)
	assert.Equal(t, "over", usage[0]["state"])
	assert.Equal(t, "dining", usage[0]["category"])
	assert.Contains(t, usage[0], "days_in_month")

	w = get(t, h, "/api/nwi?month=2025-03-01")
	require.Equal(t, http.StatusOK, w.Code)
	var nwi struct {
		Outflow map[string]any   `json:"outflow"`
		Buckets []map[string]any `json:"buckets"`
	}
	decode(t, w, &nwi)
	require.Len(t, nwi.Buckets, len(finance.Buckets))
	assert.Contains(t, nwi.Buckets[0], "of_income")
	assert.Equal(t, float64(2500), nwi.Outflow["amount"])
}

func TestPortfolio(t *testing.T) {
	w := get(t, testServer(t, "").Handler(), "/api/portfolio?date=2025-03-10")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	decode(t, w, &body)
	for _, key := range []string{"as_of", "positions", "invested", "value", "gain", "has_xirr", "unpriced"} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, "2025-03-10", body["as_of"])
	assert.Equal(t, float64(0), body["unpriced"])
}

func TestSubscriptions(t *testing.T) {
	w := get(t, testServer(t, "").Handler(), "/api/subscriptions")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Subscriptions []map[string]any `json:"subscriptions"`
		Upcoming      []map[string]any `json:"upcoming"`
	}
	decode(t, w, &body)
	require.Len(t, body.Subscriptions, 1)
	assert.Equal(t, "Music", body.Subscriptions[0]["name"])
	assert.Equal(t, "2025-03-16", body.Subscriptions[0]["next_billing"])
	assert.Len(t, body.Upcoming, 1)
}

func TestFundReturns(t *testing.T) {
	h := testServer(t, "").Handler()

	w := get(t, h, "/api/funds/122639/returns")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Returns []struct {
			Label     string  `json:"label"`
			Return    float64 `json:"return"`
			Available bool    `json:"available"`
		} `json:"returns"`
	}
	decode(t, w, &body)
	require.Len(t, body.Returns, len(finance.Tenors))
	assert.Equal(t, "1M", body.Returns[0].Label)
	assert.True(t, body.Returns[0].Available)
	assert.InDelta(t, 2.857, body.Returns[0].Return, 0.001)
	assert.False(t, body.Returns[4].Available, "no 3Y history")

	w = get(t, h, "/api/funds/1/returns")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestNotifications(t *testing.T) {
	h := testServer(t, "").Handler()

	w := get(t, h, "/api/notifications")
	require.Equal(t, http.StatusOK, w.Code)
	var all []notificationView
	decode(t, w, &all)
	require.Len(t, all, 2)
	assert.Equal(t, finance.BudgetOver, all[0].Kind, "most recent first")
	assert.False(t, all[0].Read)
	assert.True(t, all[1].Read)

	w = get(t, h, "/api/notifications?unread=true")
	var unread []notificationView
	decode(t, w, &unread)
	assert.Len(t, unread, 1)
}

func TestInsightsAndLearn(t *testing.T) {
	h := testServer(t, "").Handler()

	w := get(t, h, "/api/insights")
	require.Equal(t, http.StatusOK, w.Code)
	var report insight.Report
	decode(t, w, &report)
	require.NotEmpty(t, report.Insights)
	assert.Equal(t, insight.Alert, report.Insights[0].Severity)

	w = get(t, h, "/api/learn")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Modules  []map[string]any `json:"modules"`
		Progress []map[string]any `json:"progress"`
	}
	decode(t, w, &body)
	assert.NotEmpty(t, body.Modules)
	assert.Len(t, body.Progress, len(body.Modules))
}

func TestAuth(t *testing.T) {
	const secret = "s3cret"
	h := testServer(t, secret).Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code, "health is public")
	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/api/subscriptions").Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/api/subscriptions", "Authorization", "Bearer garbage").Code)

	token, err := IssueToken(secret, "me", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/subscriptions", "Authorization", "Bearer "+token).Code)

	other, err := IssueToken("other", "me", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/api/subscriptions", "Authorization", "Bearer "+other).Code)

	expired, err := IssueToken(secret, "me", -time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(secret, expired)
	assert.EqualError(t, err, "token is expired")
}
