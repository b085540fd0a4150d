// Package ledger defines the reconciled per-shift sales ledger: aggregated
// product rows split by regular vs. delivery channel, tip attribution by
// delivery service, and the cash/transaction discrepancy signal.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// minorUnitsDivisor converts upstream profit figures (minor currency units)
// into major units.
var minorUnitsDivisor = decimal.NewFromInt(100)

// Line is a single transaction line item as fetched from the POS: one
// product sold within one transaction. Lines are read-only inputs to the
// ledger builder.
type Line struct {
	TransactionID int64
	ProductID     int64
	ProductName   string
	Workshop      string
	Count         decimal.Decimal
	ProductSum    decimal.Decimal
	PaidSum       decimal.Decimal
	ProfitMinor   decimal.Decimal // upstream reports profit in minor units
	Time          time.Time
}

// Profit returns the line's profit in major currency units.
func (l Line) Profit() decimal.Decimal {
	return l.ProfitMinor.Div(minorUnitsDivisor)
}

// PaymentInfo is what the transaction-history scan yields per transaction:
// the resolved payment method (nil when no close event carried one) and the
// accumulated tip across all close events.
type PaymentInfo struct {
	PaymentMethodID *int64
	Tip             decimal.Decimal
}

// Entry is one aggregated ledger row: all sales of a product within a shift,
// keyed by product id for regular sales and by (product id, delivery service)
// for delivery sales. Identity fields are set on the first contribution and
// never change; only the numeric fields accumulate afterwards.
type Entry struct {
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Workshop        string          `json:"workshop"`
	Count           decimal.Decimal `json:"count"`
	ProductSum      decimal.Decimal `json:"product_sum"`
	PaidSum         decimal.Decimal `json:"paid_sum"`
	Profit          decimal.Decimal `json:"profit"`
	DeliveryService string          `json:"delivery_service,omitempty"` // delivery entries only
	Tips            decimal.Decimal `json:"tips"`                       // delivery entries only
}

// Absorb folds a line into the entry. The first line establishes the entry's
// identity; every line increments the running sums.
func (e *Entry) Absorb(l Line) {
	if e.ProductID == 0 && e.ProductName == "" {
		e.ProductID = l.ProductID
		e.ProductName = l.ProductName
		e.Workshop = l.Workshop
	}
	e.Count = e.Count.Add(l.Count)
	e.ProductSum = e.ProductSum.Add(l.ProductSum)
	e.PaidSum = e.PaidSum.Add(l.PaidSum)
	e.Profit = e.Profit.Add(l.Profit())
}

// ShiftLedger is the reconciled sales picture of one shift. Difference,
// Tips and TipsByService are derived from the entry lists by
// RecomputeDerived and are never mutated independently.
type ShiftLedger struct {
	ShiftID       int64                      `json:"shift_id"`
	Date          string                     `json:"date"` // business date the reconciliation ran for (YYYY-MM-DD)
	Regular       []*Entry                   `json:"regular"`
	Delivery      []*Entry                   `json:"delivery"`
	Difference    decimal.Decimal            `json:"difference"`
	Tips          decimal.Decimal            `json:"tips"`
	TipsByService map[string]decimal.Decimal `json:"tips_by_service"`
}

// PaidTotal sums the paid amounts across both channels.
func (s *ShiftLedger) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Regular {
		total = total.Add(e.PaidSum)
	}
	for _, e := range s.Delivery {
		total = total.Add(e.PaidSum)
	}
	return total
}

// RecomputeDerived recalculates the difference against the shift-reported
// total and rebuilds tip totals from the delivery entries. Calling it twice
// over the same entry lists yields the same values.
func (s *ShiftLedger) RecomputeDerived(reportedTotal decimal.Decimal) {
	s.Difference = reportedTotal.Sub(s.PaidTotal()).Round(2)

	tips := decimal.Zero
	byService := make(map[string]decimal.Decimal)
	for _, e := range s.Delivery {
		tips = tips.Add(e.Tips)
		byService[e.DeliveryService] = byService[e.DeliveryService].Add(e.Tips)
	}
	s.Tips = tips.Round(2)
	s.TipsByService = byService
}

// SortEntries orders both entry lists by product name. Placeholder rows
// with an empty name sort first; ties break on product id and service so
// the order is total and reproducible.
func (s *ShiftLedger) SortEntries() {
	byName := func(entries []*Entry) {
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].ProductName != entries[j].ProductName {
				return entries[i].ProductName < entries[j].ProductName
			}
			if entries[i].ProductID != entries[j].ProductID {
				return entries[i].ProductID < entries[j].ProductID
			}
			return entries[i].DeliveryService < entries[j].DeliveryService
		})
	}
	byName(s.Regular)
	byName(s.Delivery)
}

// Summary holds the shift-level totals derived from the entry lists; the
// persistence layer stores these alongside the rows for fast reporting.
type Summary struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
	DeliveryRevenue  decimal.Decimal `json:"delivery_revenue"`
	DeliveryProfit   decimal.Decimal `json:"delivery_profit"`
	Tips             decimal.Decimal `json:"tips"`
}

// Summarize computes the shift-level totals.
func (s *ShiftLedger) Summarize() Summary {
	var regRevenue, regProfit, delRevenue, delProfit decimal.Decimal
	for _, e := range s.Regular {
		regRevenue = regRevenue.Add(e.PaidSum)
		regProfit = regProfit.Add(e.Profit)
	}
	for _, e := range s.Delivery {
		delRevenue = delRevenue.Add(e.PaidSum)
		delProfit = delProfit.Add(e.Profit)
	}

	totalRevenue := regRevenue.Add(delRevenue)
	totalProfit := regProfit.Add(delProfit)
	percentage := decimal.Zero
	if !totalRevenue.IsZero() {
		percentage = totalProfit.Div(totalRevenue).Mul(minorUnitsDivisor).Round(2)
	}

	return Summary{
		TotalRevenue:     totalRevenue.Round(2),
		TotalProfit:      totalProfit.Round(2),
		ProfitPercentage: percentage,
		DeliveryRevenue:  delRevenue.Round(2),
		DeliveryProfit:   delProfit.Round(2),
		Tips:             s.Tips,
	}
}
