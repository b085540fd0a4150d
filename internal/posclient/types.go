package posclient

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// amountDivisor converts the API's minor-unit cash amounts to major units.
var amountDivisor = decimal.NewFromInt(100)

// CashShift is one register session as reported by finance.getCashShifts.
// Date fields keep the API's string form; an open shift carries the
// all-zeros sentinel in DateEnd. Amounts are converted to major units.
type CashShift struct {
	ID        int64
	DateStart string
	DateEnd   string
	SellCash  decimal.Decimal
	SellCard  decimal.Decimal
}

// ReportedTotal is the register-reported revenue of the shift.
func (s CashShift) ReportedTotal() decimal.Decimal {
	return s.SellCash.Add(s.SellCard)
}

// Transaction is one closed check from dash.getTransactions. TimeMillis is
// the first populated epoch-milliseconds field the API offers, zero when
// none parse.
type Transaction struct {
	ID         int64
	TimeMillis int64
}

// TransactionProduct is one sold line item from dash.getTransactionsProducts.
// Monetary fields stay in the API's units: ProductSum and PaidSum are major
// units, ProfitMinor is minor units.
type TransactionProduct struct {
	TransactionID int64
	ProductID     int64
	ProductName   string
	Workshop      string
	TimeMillis    int64
	Num           decimal.Decimal
	ProductSum    decimal.Decimal
	PaidSum       decimal.Decimal
	ProfitMinor   decimal.Decimal
}

// HistoryEvent is one entry from dash.getTransactionHistory. ValueText is
// left raw: the API serves it as either a JSON object or a JSON-encoded
// string, depending on the event type.
type HistoryEvent struct {
	Type      string          `json:"type_history"`
	ValueText json.RawMessage `json:"value_text"`
}

// Wire shapes. The API is loose with scalar types (numbers arrive as
// strings or numbers interchangeably, and some fields come back empty),
// so scalars decode through flexScalar and convert with zero fallbacks.

// flexScalar accepts a JSON string, number, or null and keeps the textual
// value.
type flexScalar string

func (s *flexScalar) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexScalar(v)
		return nil
	}
	*s = flexScalar(b)
	return nil
}

func (s flexScalar) int64() int64 {
	v, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (s flexScalar) decimal() decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(string(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    json.RawMessage `json:"error"`
	Message  string          `json:"message"`
}

type wireCashShift struct {
	CashShiftID    flexScalar `json:"cash_shift_id"`
	DateStart      string     `json:"date_start"`
	DateEnd        string     `json:"date_end"`
	AmountSellCash flexScalar `json:"amount_sell_cash"`
	AmountSellCard flexScalar `json:"amount_sell_card"`
}

type wireTransaction struct {
	TransactionID flexScalar `json:"transaction_id"`
	Time          flexScalar `json:"time"`
	Date          flexScalar `json:"date"`
	CreatedAt     flexScalar `json:"created_at"`
}

type wireTransactionProduct struct {
	TransactionID flexScalar `json:"transaction_id"`
	ProductID     flexScalar `json:"product_id"`
	ProductName   string     `json:"product_name"`
	Workshop      flexScalar `json:"workshop"`
	Time          flexScalar `json:"time"`
	Num           flexScalar `json:"num"`
	ProductSum    flexScalar `json:"product_sum"`
	PayedSum      flexScalar `json:"payed_sum"`
	ProductProfit flexScalar `json:"product_profit"`
}

// firstMillis picks the first field that parses to a positive epoch-millis
// value.
func firstMillis(candidates ...flexScalar) int64 {
	for _, c := range candidates {
		if v := c.int64(); v > 0 {
			return v
		}
	}
	return 0
}
