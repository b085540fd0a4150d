package posclient

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// closeValue is the payload of a "close" history event.
type closeValue struct {
	PaymentMethodID *flexScalar `json:"payment_method_id"`
	TipSum          *flexScalar `json:"tip_sum"`
	Tip             *flexScalar `json:"tip"`
}

// ParseCloseEvents scans a transaction's history for close events and
// returns the payment method and the tip total. The last close event's
// payment method wins; tips accumulate across all close events, preferring
// tip_sum and falling back to tip when tip_sum is absent or zero. Events
// that fail to parse are skipped.
func ParseCloseEvents(events []HistoryEvent) (*int64, decimal.Decimal) {
	var methodID *int64
	tip := decimal.Zero

	for _, e := range events {
		if e.Type != "close" || len(e.ValueText) == 0 || string(e.ValueText) == "null" {
			continue
		}

		raw := e.ValueText
		// Some event types double-encode the payload as a JSON string.
		if raw[0] == '"' {
			var inner string
			if err := json.Unmarshal(raw, &inner); err != nil {
				continue
			}
			raw = json.RawMessage(inner)
		}

		var v closeValue
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}

		if v.PaymentMethodID != nil {
			if id, err := strconv.ParseInt(string(*v.PaymentMethodID), 10, 64); err == nil {
				methodID = &id
			}
		}

		amount := decimal.Zero
		if v.TipSum != nil {
			amount = v.TipSum.decimal()
		}
		if amount.IsZero() && v.Tip != nil {
			amount = v.Tip.decimal()
		}
		tip = tip.Add(amount)
	}

	return methodID, tip
}
