package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
)

// Document shapes. Decimal amounts are stored as strings: the driver
// cannot marshal decimal.Decimal directly, and strings keep the exact
// scale for auditing.

type entryDoc struct {
	ProductID       int64  `bson:"product_id"`
	ProductName     string `bson:"product_name"`
	Workshop        string `bson:"workshop"`
	Count           string `bson:"count"`
	ProductSum      string `bson:"product_sum"`
	PaidSum         string `bson:"paid_sum"`
	Profit          string `bson:"profit"`
	DeliveryService string `bson:"delivery_service,omitempty"`
	Tips            string `bson:"tips"`
}

type summaryDoc struct {
	TotalRevenue     string `bson:"total_revenue"`
	TotalProfit      string `bson:"total_profit"`
	ProfitPercentage string `bson:"profit_percentage"`
	DeliveryRevenue  string `bson:"delivery_revenue"`
	DeliveryProfit   string `bson:"delivery_profit"`
	Tips             string `bson:"tips"`
}

type shiftLedgerDoc struct {
	ShiftID       int64             `bson:"shift_id"`
	Date          string            `bson:"date"`
	Regular       []entryDoc        `bson:"regular"`
	Delivery      []entryDoc        `bson:"delivery"`
	Difference    string            `bson:"difference"`
	Tips          string            `bson:"tips"`
	TipsByService map[string]string `bson:"tips_by_service"`
	Summary       summaryDoc        `bson:"summary"`
	UpdatedAt     time.Time         `bson:"updated_at"`
}

func toEntryDoc(e *ledger.Entry) entryDoc {
	return entryDoc{
		ProductID:       e.ProductID,
		ProductName:     e.ProductName,
		Workshop:        e.Workshop,
		Count:           e.Count.String(),
		ProductSum:      e.ProductSum.String(),
		PaidSum:         e.PaidSum.String(),
		Profit:          e.Profit.String(),
		DeliveryService: e.DeliveryService,
		Tips:            e.Tips.String(),
	}
}

func toDoc(l *ledger.ShiftLedger) *shiftLedgerDoc {
	doc := &shiftLedgerDoc{
		ShiftID:       l.ShiftID,
		Date:          l.Date,
		Regular:       make([]entryDoc, 0, len(l.Regular)),
		Delivery:      make([]entryDoc, 0, len(l.Delivery)),
		Difference:    l.Difference.String(),
		Tips:          l.Tips.String(),
		TipsByService: make(map[string]string, len(l.TipsByService)),
	}
	for _, e := range l.Regular {
		doc.Regular = append(doc.Regular, toEntryDoc(e))
	}
	for _, e := range l.Delivery {
		doc.Delivery = append(doc.Delivery, toEntryDoc(e))
	}
	for service, tips := range l.TipsByService {
		doc.TipsByService[service] = tips.String()
	}

	summary := l.Summarize()
	doc.Summary = summaryDoc{
		TotalRevenue:     summary.TotalRevenue.String(),
		TotalProfit:      summary.TotalProfit.String(),
		ProfitPercentage: summary.ProfitPercentage.String(),
		DeliveryRevenue:  summary.DeliveryRevenue.String(),
		DeliveryProfit:   summary.DeliveryProfit.String(),
		Tips:             summary.Tips.String(),
	}

	return doc
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s amount %q: %w", field, value, err)
	}
	return d, nil
}

func fromEntryDoc(doc *entryDoc) (*ledger.Entry, error) {
	count, err := parseAmount("count", doc.Count)
	if err != nil {
		return nil, err
	}
	productSum, err := parseAmount("product_sum", doc.ProductSum)
	if err != nil {
		return nil, err
	}
	paidSum, err := parseAmount("paid_sum", doc.PaidSum)
	if err != nil {
		return nil, err
	}
	profit, err := parseAmount("profit", doc.Profit)
	if err != nil {
		return nil, err
	}
	tips, err := parseAmount("tips", doc.Tips)
	if err != nil {
		return nil, err
	}

	return &ledger.Entry{
		ProductID:       doc.ProductID,
		ProductName:     doc.ProductName,
		Workshop:        doc.Workshop,
		Count:           count,
		ProductSum:      productSum,
		PaidSum:         paidSum,
		Profit:          profit,
		DeliveryService: doc.DeliveryService,
		Tips:            tips,
	}, nil
}

func fromDoc(doc *shiftLedgerDoc) (*ledger.ShiftLedger, error) {
	l := &ledger.ShiftLedger{
		ShiftID:       doc.ShiftID,
		Date:          doc.Date,
		TipsByService: make(map[string]decimal.Decimal, len(doc.TipsByService)),
	}

	for i := range doc.Regular {
		e, err := fromEntryDoc(&doc.Regular[i])
		if err != nil {
			return nil, err
		}
		l.Regular = append(l.Regular, e)
	}
	for i := range doc.Delivery {
		e, err := fromEntryDoc(&doc.Delivery[i])
		if err != nil {
			return nil, err
		}
		l.Delivery = append(l.Delivery, e)
	}

	difference, err := parseAmount("difference", doc.Difference)
	if err != nil {
		return nil, err
	}
	l.Difference = difference

	tips, err := parseAmount("tips", doc.Tips)
	if err != nil {
		return nil, err
	}
	l.Tips = tips

	for service, value := range doc.TipsByService {
		amount, err := parseAmount("tips_by_service", value)
		if err != nil {
			return nil, err
		}
		l.TipsByService[service] = amount
	}

	return l, nil
}
