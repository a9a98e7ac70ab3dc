package server

import (
	"net/http"
	"strconv"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/learn"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	month := date.Monthly.Range(s.today())
	from, err := dateParam(r, "from", month.From)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := dateParam(r, "to", month.To)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "to is before from")
		return
	}
	ledger, ok := s.load(w, r)
	if !ok {
		return
	}
	txs := ledger.Transactions(date.NewRange(from, to))
	if txs == nil {
		txs = []finance.Transaction{}
	}
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var analyze func(*finance.Ledger, date.Date) finance.Analysis
	switch r.PathValue("period") {
	case "weekly":
		analyze = finance.Weekly
	case "monthly":
		analyze = finance.Monthly
	case "yearly":
		analyze = finance.Yearly
	default:
		respondError(w, http.StatusBadRequest, "period must be weekly, monthly or yearly")
		return
	}
	day, err := dateParam(r, "date", s.today())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ledger, ok := s.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, analyze(ledger, day))
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := dateParam(r, "month", s.today())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ledger, ok := s.load(w, r)
	if !ok {
		return
	}
	usage := finance.AllBudgetStatus(ledger, month, s.today())
	if usage == nil {
		usage = []finance.BudgetUsage{}
	}
	respondJSON(w, http.StatusOK, usage)
}

func (s *Server) handleNWI(w http.ResponseWriter, r *http.Request) {
	month, err := dateParam(r, "month", s.today())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ledger, ok := s.load(w, r)
	if !ok {
		return
	}
	table := s.Table
	if table == nil {
		table = finance.DefaultNWITable
	}
	respondJSON(w, http.StatusOK, finance.NWIBreakdown(ledger, date.Monthly.Range(month), table))
}

type subscriptionView struct {
	finance.Subscription
	MonthlyCost finance.Money `json:"monthly_cost"`
	NextBilling *date.Date    `json:"next_billing,omitempty"`
}

func (v subscriptionView) MarshalJSON() ([]byte, error) {
	sub, err := v.Subscription.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return mergeJSON(sub, map[string]any{"monthly_cost": v.MonthlyCost, "next_billing": v.NextBilling})
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	ledger, ok := s.load(w, r)
	if !ok {
		return
	}
	today := s.today()
	views := []subscriptionView{}
	for _, sub := range ledger.Subscriptions() {
		v := subscriptionView{Subscription: sub, MonthlyCost: finance.MonthlyCost(sub)}
		if sub.Status == finance.Active {
			next := finance.NextBilling(sub, today.Add(-1))
			v.NextBilling = &next
		}
		views = append(views, v)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"subscriptions": views,
		"monthly_total": finance.MonthlySubscriptions(ledger),
		"upcoming":      finance.Upcoming(ledger, today, finance.RenewalNotice),
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r, "date", s.today())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ledger, ok := s.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, finance.Portfolio(ledger, day))
}

func (s *Server) handleFundReturns(w http.ResponseWriter, r *http.Request) {
	if s.Funds == nil {
		respondError(w, http.StatusServiceUnavailable, "fund data not configured")
		return
	}
	day, err := dateParam(r, "date", s.today())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	scheme, err := s.Funds.Fetch(r.Context(), r.PathValue("code"))
	if err != nil {
		s.logger().Warn("fund retrieval failed", "code", r.PathValue("code"), "error", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"scheme":  scheme.Meta,
		"as_of":   day,
		"returns": finance.TrailingReturns(scheme.NAV, day),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if s.Insights == nil {
		respondError(w, http.StatusServiceUnavailable, "insights not configured")
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	report, err := s.Insights.Get(r.Context(), force)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type notificationView struct {
	ID      string                   `json:"id"`
	Date    date.Date                `json:"date"`
	Kind    finance.NotificationKind `json:"kind"`
	Key     string                   `json:"key"`
	Message string                   `json:"message"`
	Read    bool                     `json:"read"`
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	ledger, ok := s.load(w, r)
	if !ok {
		return
	}
	states := ledger.Notifications()
	if unread, _ := strconv.ParseBool(r.URL.Query().Get("unread")); unread {
		states = ledger.Unread()
	}
	views := make([]notificationView, len(states))
	for i, n := range states {
		views[i] = notificationView{ID: n.ID, Date: n.Date, Kind: n.Kind, Key: n.Key, Message: n.Message, Read: n.Read}
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	ledger, ok := s.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"modules":  learn.Catalog(),
		"progress": learn.Progress(ledger),
	})
}
