package finance

import (
	"github.com/etnz/finance/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying ledger records.
type CommandType string

// Command types used for identifying records.
const (
	CmdTx           CommandType = "tx"
	CmdBudget       CommandType = "budget"
	CmdSubscription CommandType = "subscription"
	CmdHolding      CommandType = "holding"
	CmdPrice        CommandType = "price"
	CmdNWI          CommandType = "nwi"
	CmdLearn        CommandType = "learn"
	CmdNotification CommandType = "notification"
	CmdRead         CommandType = "read"
)

// Record is a single line of the ledger.
type Record interface {
	What() CommandType // What returns the command type of the record (e.g., "tx", "budget").
	When() date.Date   // When returns the date on which the record applies.
}

type baseCmd struct {
	Command CommandType `json:"command"`
	Date    date.Date   `json:"date"`
	Memo    string      `json:"memo,omitempty"`
}

func (t baseCmd) What() CommandType { return t.Command }
func (t baseCmd) When() date.Date   { return t.Date }

// write appends the base fields to w.
func (t baseCmd) write(w *jsonObjectWriter) {
	w.Append("command", t.Command)
	w.Append("date", t.Date)
	w.Optional("memo", t.Memo)
}

// writeMoney flattens m into "amount" and "currency" fields.
func writeMoney(w *jsonObjectWriter, key string, m Money) {
	w.Append(key, m.Round().value)
	w.Optional("currency", m.cur)
}

// TxType tells income from expense.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// Transaction is money coming in or going out.
type Transaction struct {
	baseCmd
	ID           string
	Type         TxType
	Amount       Money // always positive, the direction is given by Type
	Category     Category
	Description  string
	Merchant     string
	NWI          Bucket // overrides the category bucket when set
	Subscription string // id of the subscription that generated this charge
	Tags         []string
}

// NewExpense creates an expense transaction with a fresh ID.
func NewExpense(on date.Date, amount Money, category Category, description string) Transaction {
	return Transaction{
		baseCmd:     baseCmd{Command: CmdTx, Date: on},
		ID:          uuid.NewString(),
		Type:        Expense,
		Amount:      amount,
		Category:    category,
		Description: description,
	}
}

// NewIncome creates an income transaction with a fresh ID.
func NewIncome(on date.Date, amount Money, category Category, description string) Transaction {
	tx := NewExpense(on, amount, category, description)
	tx.Type = Income
	return tx
}

// Signed returns the amount, negative for expenses.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	t.baseCmd.write(&w)
	w.Append("id", t.ID)
	w.Append("type", t.Type)
	writeMoney(&w, "amount", t.Amount)
	w.Append("category", t.Category)
	w.Optional("description", t.Description)
	w.Optional("merchant", t.Merchant)
	w.Optional("nwi", t.NWI)
	w.Optional("subscription", t.Subscription)
	w.Optional("tags", t.Tags)
	return w.MarshalJSON()
}

// Budget sets the monthly limit of a category from the month of its date on.
// A zero amount removes the budget.
type Budget struct {
	baseCmd
	Category Category
	Amount   Money
	Rollover bool // carry unspent amounts to the next month
}

// NewBudget declares a monthly budget effective from the month of on.
func NewBudget(on date.Date, category Category, amount Money, rollover bool) Budget {
	return Budget{
		baseCmd:  baseCmd{Command: CmdBudget, Date: on},
		Category: category,
		Amount:   amount,
		Rollover: rollover,
	}
}

// Effective returns the first day of the month the budget applies to.
func (b Budget) Effective() date.Date { return b.Date.StartOf(date.Monthly) }

func (b Budget) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	b.baseCmd.write(&w)
	w.Append("category", b.Category)
	writeMoney(&w, "amount", b.Amount)
	w.Optional("rollover", b.Rollover)
	return w.MarshalJSON()
}

// Cycle is the billing frequency of a subscription.
type Cycle string

const (
	CycleWeekly    Cycle = "weekly"
	CycleMonthly   Cycle = "monthly"
	CycleQuarterly Cycle = "quarterly"
	CycleYearly    Cycle = "yearly"
)

// Status of a subscription.
type Status string

const (
	Active    Status = "active"
	Paused    Status = "paused"
	Cancelled Status = "cancelled"
)

// Subscription declares (or updates, when the ID already exists) a recurring charge.
//
// The record date is when the declaration takes effect, Start is the first
// billing date and anchors every following one.
type Subscription struct {
	baseCmd
	ID       string
	Name     string
	Amount   Money
	Cycle    Cycle
	Start    date.Date
	Category Category
	Status   Status
}

// NewSubscription declares an active subscription billed from start.
func NewSubscription(start date.Date, name string, amount Money, cycle Cycle) Subscription {
	return Subscription{
		baseCmd:  baseCmd{Command: CmdSubscription, Date: start},
		ID:       uuid.NewString(),
		Name:     name,
		Amount:   amount,
		Cycle:    cycle,
		Start:    start,
		Category: Subscriptions,
		Status:   Active,
	}
}

func (s Subscription) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	s.baseCmd.write(&w)
	w.Append("id", s.ID)
	w.Append("name", s.Name)
	writeMoney(&w, "amount", s.Amount)
	w.Append("cycle", s.Cycle)
	w.Append("start", s.Start)
	w.Append("category", s.Category)
	w.Append("status", s.Status)
	return w.MarshalJSON()
}

// AssetKind tells how a holding is priced.
type AssetKind string

const (
	Stock AssetKind = "stock"
	Fund  AssetKind = "fund"
)

// Holding records a purchase (positive units) or a redemption (negative
// units) of an investment. Amount is the cash paid or received, always positive.
type Holding struct {
	baseCmd
	Symbol string
	Kind   AssetKind
	Units  Quantity
	Amount Money
}

// NewHolding records a purchase or redemption of units.
func NewHolding(on date.Date, symbol string, kind AssetKind, units Quantity, amount Money) Holding {
	return Holding{
		baseCmd: baseCmd{Command: CmdHolding, Date: on},
		Symbol:  symbol,
		Kind:    kind,
		Units:   units,
		Amount:  amount,
	}
}

func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	h.baseCmd.write(&w)
	w.Append("symbol", h.Symbol)
	w.Append("kind", h.Kind)
	w.Append("units", h.Units)
	writeMoney(&w, "amount", h.Amount)
	return w.MarshalJSON()
}

// Price is a market price (or NAV) of a symbol on a day, in the ledger currency.
// It is kept with full precision.
type Price struct {
	baseCmd
	Symbol string
	Price  decimal.Decimal
}

// NewPrice records the price of symbol on a day.
func NewPrice(on date.Date, symbol string, price decimal.Decimal) Price {
	return Price{
		baseCmd: baseCmd{Command: CmdPrice, Date: on},
		Symbol:  symbol,
		Price:   price,
	}
}

func (p Price) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	p.baseCmd.write(&w)
	w.Append("symbol", p.Symbol)
	w.Append("price", p.Price)
	return w.MarshalJSON()
}

// NWITargets is the desired split of outflows between the buckets, from its date on.
type NWITargets struct {
	baseCmd
	Needs       Percent
	Wants       Percent
	Investments Percent
	Savings     Percent
}

// DefaultNWITargets is the 50/30/20 split used until targets are declared.
var DefaultNWITargets = NWITargets{
	baseCmd:     baseCmd{Command: CmdNWI},
	Needs:       50,
	Wants:       30,
	Investments: 20,
}

// NewNWITargets declares the split effective from on.
func NewNWITargets(on date.Date, needs, wants, investments, savings Percent) NWITargets {
	return NWITargets{
		baseCmd:     baseCmd{Command: CmdNWI, Date: on},
		Needs:       needs,
		Wants:       wants,
		Investments: investments,
		Savings:     savings,
	}
}

// Target returns the target percentage of bucket b.
func (n NWITargets) Target(b Bucket) Percent {
	switch b {
	case Needs:
		return n.Needs
	case Wants:
		return n.Wants
	case InvestmentsBucket:
		return n.Investments
	case SavingsBucket:
		return n.Savings
	}
	return 0
}

func (n NWITargets) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	n.baseCmd.write(&w)
	w.Append("needs", float64(n.Needs))
	w.Append("wants", float64(n.Wants))
	w.Append("investments", float64(n.Investments))
	w.Append("savings", float64(n.Savings))
	return w.MarshalJSON()
}

// Learn records progress in the learning modules: either a completed lesson
// or a quiz attempt with its score.
type Learn struct {
	baseCmd
	Module string
	Lesson string  // completed lesson, empty for a quiz attempt
	Score  Percent // quiz score
}

// NewLessonCompleted records that a lesson was read.
func NewLessonCompleted(on date.Date, module, lesson string) Learn {
	return Learn{baseCmd: baseCmd{Command: CmdLearn, Date: on}, Module: module, Lesson: lesson}
}

// NewQuizAttempt records a quiz score.
func NewQuizAttempt(on date.Date, module string, score Percent) Learn {
	return Learn{baseCmd: baseCmd{Command: CmdLearn, Date: on}, Module: module, Score: score}
}

// IsQuiz reports whether the record is a quiz attempt.
func (l Learn) IsQuiz() bool { return l.Lesson == "" }

func (l Learn) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	l.baseCmd.write(&w)
	w.Append("module", l.Module)
	if l.IsQuiz() {
		w.Append("score", float64(l.Score))
	} else {
		w.Append("lesson", l.Lesson)
	}
	return w.MarshalJSON()
}

// NotificationKind classifies notifications.
type NotificationKind string

const (
	BudgetWarning NotificationKind = "budget-warning"
	BudgetOver    NotificationKind = "budget-over"
	Renewal       NotificationKind = "renewal"
	AnomalyAlert  NotificationKind = "anomaly"
)

// Notification is a message for the user. Key deduplicates notifications
// about the same event.
type Notification struct {
	baseCmd
	ID      string
	Kind    NotificationKind
	Key     string
	Message string
}

// NewNotification creates a notification with a fresh ID.
func NewNotification(on date.Date, kind NotificationKind, key, message string) Notification {
	return Notification{
		baseCmd: baseCmd{Command: CmdNotification, Date: on},
		ID:      uuid.NewString(),
		Kind:    kind,
		Key:     key,
		Message: message,
	}
}

func (n Notification) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	n.baseCmd.write(&w)
	w.Append("id", n.ID)
	w.Append("kind", n.Kind)
	w.Append("key", n.Key)
	w.Append("message", n.Message)
	return w.MarshalJSON()
}

// Read marks a notification as read.
type Read struct {
	baseCmd
	ID string
}

// NewRead marks notification id as read on a day.
func NewRead(on date.Date, id string) Read {
	return Read{baseCmd: baseCmd{Command: CmdRead, Date: on}, ID: id}
}

func (r Read) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	r.baseCmd.write(&w)
	w.Append("id", r.ID)
	return w.MarshalJSON()
}
