package finance

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/finance/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// amountCmd reads the flattened "amount" and "currency" fields of a line.
type amountCmd struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountCmd) money(fallback string) Money {
	if a.Currency == "" {
		return M(a.Amount, fallback)
	}
	return M(a.Amount, a.Currency)
}

// DecodeLedger decodes records from a stream of JSONL data, one record per
// line, and returns a chronologically sorted Ledger in currency.
// Amounts without a currency are in the ledger currency.
func DecodeLedger(r io.Reader, currency string) (*Ledger, error) {
	ledger := NewLedger(currency)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		rec, err := DecodeRecord(lineBytes, currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ledger.Append(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read ledger: %w", err)
	}
	return ledger, nil
}

// DecodeRecord decodes a single JSON line.
func DecodeRecord(lineBytes []byte, currency string) (Record, error) {
	var identifier struct {
		Command CommandType `json:"command"`
	}
	if err := json.Unmarshal(lineBytes, &identifier); err != nil {
		return nil, fmt.Errorf("could not identify command in line %q: %w", string(lineBytes), err)
	}

	switch identifier.Command {
	case CmdTx:
		var temp struct {
			baseCmd
			amountCmd
			ID           string   `json:"id"`
			Type         TxType   `json:"type"`
			Category     Category `json:"category"`
			Description  string   `json:"description"`
			Merchant     string   `json:"merchant"`
			NWI          Bucket   `json:"nwi"`
			Subscription string   `json:"subscription"`
			Tags         []string `json:"tags"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		return Transaction{
			baseCmd:      temp.baseCmd,
			ID:           temp.ID,
			Type:         temp.Type,
			Amount:       temp.money(currency),
			Category:     temp.Category,
			Description:  temp.Description,
			Merchant:     temp.Merchant,
			NWI:          temp.NWI,
			Subscription: temp.Subscription,
			Tags:         temp.Tags,
		}, nil

	case CmdBudget:
		var temp struct {
			baseCmd
			amountCmd
			Category Category `json:"category"`
			Rollover bool     `json:"rollover"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		return Budget{
			baseCmd:  temp.baseCmd,
			Category: temp.Category,
			Amount:   temp.money(currency),
			Rollover: temp.Rollover,
		}, nil

	case CmdSubscription:
		var temp struct {
			baseCmd
			amountCmd
			ID       string    `json:"id"`
			Name     string    `json:"name"`
			Cycle    Cycle     `json:"cycle"`
			Start    date.Date `json:"start"`
			Category Category  `json:"category"`
			Status   Status    `json:"status"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		s := Subscription{
			baseCmd:  temp.baseCmd,
			ID:       temp.ID,
			Name:     temp.Name,
			Amount:   temp.money(currency),
			Cycle:    temp.Cycle,
			Start:    temp.Start,
			Category: temp.Category,
			Status:   temp.Status,
		}
		if s.Start.IsZero() {
			s.Start = s.Date
		}
		if s.Category == "" {
			s.Category = Subscriptions
		}
		if s.Status == "" {
			s.Status = Active
		}
		return s, nil

	case CmdHolding:
		var temp struct {
			baseCmd
			amountCmd
			Symbol string    `json:"symbol"`
			Kind   AssetKind `json:"kind"`
			Units  Quantity  `json:"units"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		return Holding{
			baseCmd: temp.baseCmd,
			Symbol:  temp.Symbol,
			Kind:    temp.Kind,
			Units:   temp.Units,
			Amount:  temp.money(currency),
		}, nil

	case CmdPrice:
		var temp struct {
			baseCmd
			Symbol string          `json:"symbol"`
			Price  decimal.Decimal `json:"price"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		return Price{baseCmd: temp.baseCmd, Symbol: temp.Symbol, Price: temp.Price}, nil

	case CmdNWI:
		var temp struct {
			baseCmd
			Needs       float64 `json:"needs"`
			Wants       float64 `json:"wants"`
			Investments float64 `json:"investments"`
			Savings     float64 `json:"savings"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		return NWITargets{
			baseCmd:     temp.baseCmd,
			Needs:       Percent(temp.Needs),
			Wants:       Percent(temp.Wants),
			Investments: Percent(temp.Investments),
			Savings:     Percent(temp.Savings),
		}, nil

	case CmdLearn:
		var temp struct {
			baseCmd
			Module string  `json:"module"`
			Lesson string  `json:"lesson"`
			Score  float64 `json:"score"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		return Learn{baseCmd: temp.baseCmd, Module: temp.Module, Lesson: temp.Lesson, Score: Percent(temp.Score)}, nil

	case CmdNotification:
		var temp struct {
			baseCmd
			ID      string           `json:"id"`
			Kind    NotificationKind `json:"kind"`
			Key     string           `json:"key"`
			Message string           `json:"message"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		return Notification{baseCmd: temp.baseCmd, ID: temp.ID, Kind: temp.Kind, Key: temp.Key, Message: temp.Message}, nil

	case CmdRead:
		var temp struct {
			baseCmd
			ID string `json:"id"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, err
		}
		return Read{baseCmd: temp.baseCmd, ID: temp.ID}, nil

	default:
		return nil, fmt.Errorf("unknown command %q", identifier.Command)
	}
}

// EncodeRecord writes a single record as one JSON line.
func EncodeRecord(w io.Writer, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("could not encode %s record: %w", rec.What(), err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// EncodeLedger writes all records of the ledger in chronological order.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for _, rec := range ledger.records {
		if err := EncodeRecord(w, rec); err != nil {
			return err
		}
	}
	return nil
}
