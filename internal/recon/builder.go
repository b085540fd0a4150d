// Package recon builds reconciled shift ledgers from the upstream POS:
// it fetches the day's cash shifts, transactions, line items and payment
// histories, assigns every sale to a shift window, splits regular from
// delivery revenue, and attributes tips per delivery service.
package recon

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
	"github.com/shiftpay/pos-ledger/internal/domain/payment"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
	"github.com/shiftpay/pos-ledger/internal/domain/shift"
	"github.com/shiftpay/pos-ledger/internal/posclient"
)

// POSClient is the slice of the POS API the builder needs.
type POSClient interface {
	GetCashShifts(ctx context.Context, date string, spotID int64) ([]posclient.CashShift, error)
	GetTransactions(ctx context.Context, dateFrom, dateTo string, spotID int64) ([]posclient.Transaction, error)
	GetTransactionsProducts(ctx context.Context, transactionIDs []int64) ([]posclient.TransactionProduct, error)
	GetTransactionHistory(ctx context.Context, transactionID int64) ([]posclient.HistoryEvent, error)
}

// Builder assembles shift ledgers for one business day. History fetches
// fan out over a bounded worker pool; one pool serves all Build calls.
type Builder struct {
	client POSClient
	pool   *ants.Pool
	logger *slog.Logger
	now    func() time.Time
}

// NewBuilder creates a Builder whose history fan-out is capped at
// historyConcurrency in-flight requests.
func NewBuilder(client POSClient, historyConcurrency int, logger *slog.Logger) (*Builder, error) {
	pool, err := ants.NewPool(historyConcurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create history worker pool: %w", err)
	}

	return &Builder{
		client: client,
		pool:   pool,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Shutdown releases the history worker pool.
func (b *Builder) Shutdown() {
	b.logger.Info("Shutting down history worker pool", "running_workers", b.pool.Running())
	b.pool.Release()
}

// shiftAccumulator collects a single shift's entries. Maps hold the
// aggregation keys, slices preserve first-seen order so tip attribution
// stays deterministic before the final sort.
type shiftAccumulator struct {
	window        shift.Window
	regular       map[int64]*ledger.Entry
	regularOrder  []int64
	delivery      map[string]*ledger.Entry
	deliveryOrder []string
	tips          map[string]decimal.Decimal
	tipsOrder     []string
}

func newShiftAccumulator(w shift.Window) *shiftAccumulator {
	return &shiftAccumulator{
		window:   w,
		regular:  make(map[int64]*ledger.Entry),
		delivery: make(map[string]*ledger.Entry),
		tips:     make(map[string]decimal.Decimal),
	}
}

func (a *shiftAccumulator) absorbRegular(line ledger.Line) {
	e, ok := a.regular[line.ProductID]
	if !ok {
		e = &ledger.Entry{}
		a.regular[line.ProductID] = e
		a.regularOrder = append(a.regularOrder, line.ProductID)
	}
	e.Absorb(line)
}

func (a *shiftAccumulator) absorbDelivery(line ledger.Line, service string) {
	key := strconv.FormatInt(line.ProductID, 10) + "_" + service
	e, ok := a.delivery[key]
	if !ok {
		e = &ledger.Entry{DeliveryService: service}
		a.delivery[key] = e
		a.deliveryOrder = append(a.deliveryOrder, key)
	}
	e.Absorb(line)
}

func (a *shiftAccumulator) addTip(service string, amount decimal.Decimal) {
	if _, ok := a.tips[service]; !ok {
		a.tipsOrder = append(a.tipsOrder, service)
	}
	a.tips[service] = a.tips[service].Add(amount)
}

// Build reconciles one business date for one spot. It returns one ledger
// per cash shift, or nil when the upstream reports no shifts or no
// transactions for the date.
func (b *Builder) Build(ctx context.Context, date string, spotID int64) ([]*ledger.ShiftLedger, error) {
	dayStart, err := time.ParseInLocation(shared.DateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid business date %q: %w", date, err)
	}

	cashShifts, err := b.client.GetCashShifts(ctx, date, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cash shifts: %w", err)
	}
	if len(cashShifts) == 0 {
		b.logger.Warn("No shifts found", "date", date, "spot_id", spotID)
		return nil, nil
	}

	now := b.now()
	windows := make([]shift.Window, 0, len(cashShifts))
	for _, cs := range cashShifts {
		w, err := shift.NewWindow(cs.ID, cs.DateStart, cs.DateEnd, cs.ReportedTotal(), now)
		if err != nil {
			return nil, fmt.Errorf("shift %d: %w", cs.ID, err)
		}
		windows = append(windows, w)
	}

	dateTo := dayStart.AddDate(0, 0, 1).Format(shared.DateLayout)
	transactions, err := b.client.GetTransactions(ctx, date, dateTo, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	if len(transactions) == 0 {
		b.logger.Warn("No transactions found", "date", date, "spot_id", spotID)
		return nil, nil
	}

	payments := b.fetchPayments(ctx, transactions)

	transactionIDs := make([]int64, 0, len(transactions))
	for _, tx := range transactions {
		transactionIDs = append(transactionIDs, tx.ID)
	}
	products, err := b.client.GetTransactionsProducts(ctx, transactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction products: %w", err)
	}
	if len(products) == 0 {
		b.logger.Warn("No products found", "date", date, "spot_id", spotID)
	}

	accumulators := make(map[int64]*shiftAccumulator, len(windows))
	for _, w := range windows {
		accumulators[w.ID] = newShiftAccumulator(w)
	}

	// A transaction's own time field is often empty; its first line item's
	// timestamp stands in for tip attribution.
	txTimes := make(map[int64]int64, len(transactions))
	for _, p := range products {
		if _, ok := txTimes[p.TransactionID]; !ok && p.TimeMillis > 0 {
			txTimes[p.TransactionID] = p.TimeMillis
		}
	}

	for _, p := range products {
		if p.TimeMillis <= 0 {
			b.logger.Error("Product line has no usable timestamp, skipping",
				"transaction_id", p.TransactionID, "product_id", p.ProductID)
			continue
		}
		ts := time.UnixMilli(p.TimeMillis).UTC()

		shiftID, ok := shift.Resolve(ts, windows)
		if !ok {
			continue
		}
		acc := accumulators[shiftID]

		line := ledger.Line{
			TransactionID: p.TransactionID,
			ProductID:     p.ProductID,
			ProductName:   p.ProductName,
			Workshop:      p.Workshop,
			Count:         p.Num,
			ProductSum:    p.ProductSum,
			PaidSum:       p.PaidSum,
			ProfitMinor:   p.ProfitMinor,
			Time:          ts,
		}

		info := payments[p.TransactionID]
		channel := payment.Classify(info.PaymentMethodID)
		if channel.Delivery {
			acc.absorbDelivery(line, channel.Service)
		} else {
			acc.absorbRegular(line)
		}
	}

	for _, tx := range transactions {
		info := payments[tx.ID]
		if !info.Tip.IsPositive() {
			continue
		}

		millis := txTimes[tx.ID]
		if millis == 0 {
			millis = tx.TimeMillis
		}
		if millis <= 0 {
			b.logger.Warn("Tip has no attributable timestamp, dropping",
				"transaction_id", tx.ID, "tip", info.Tip)
			continue
		}

		shiftID, ok := shift.Resolve(time.UnixMilli(millis).UTC(), windows)
		if !ok {
			continue
		}
		accumulators[shiftID].addTip(payment.ServiceName(info.PaymentMethodID), info.Tip)
	}

	ledgers := make([]*ledger.ShiftLedger, 0, len(windows))
	for _, w := range windows {
		acc := accumulators[w.ID]

		l := &ledger.ShiftLedger{ShiftID: w.ID, Date: date}
		for _, id := range acc.regularOrder {
			l.Regular = append(l.Regular, acc.regular[id])
		}
		for _, key := range acc.deliveryOrder {
			l.Delivery = append(l.Delivery, acc.delivery[key])
		}

		// Each service's tips go to its first delivery entry; services
		// without sales get a placeholder row so the money stays visible.
		for _, service := range acc.tipsOrder {
			amount := acc.tips[service].Round(2)
			assigned := false
			for _, e := range l.Delivery {
				if e.DeliveryService == service {
					e.Tips = e.Tips.Add(amount)
					assigned = true
					break
				}
			}
			if !assigned {
				l.Delivery = append(l.Delivery, &ledger.Entry{
					DeliveryService: service,
					Tips:            amount,
				})
			}
		}

		l.RecomputeDerived(w.ReportedTotal)
		l.SortEntries()
		ledgers = append(ledgers, l)
	}

	return ledgers, nil
}

// fetchPayments resolves each transaction's payment method and tip from its
// history, fanning out over the bounded pool. A failed fetch degrades to an
// unknown payment method and a zero tip for that transaction only.
func (b *Builder) fetchPayments(ctx context.Context, transactions []posclient.Transaction) map[int64]ledger.PaymentInfo {
	results := make([]ledger.PaymentInfo, len(transactions))
	var wg sync.WaitGroup

	for i, tx := range transactions {
		i, tx := i, tx
		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()

			events, err := b.client.GetTransactionHistory(ctx, tx.ID)
			if err != nil {
				b.logger.Warn("Failed to fetch transaction history",
					"transaction_id", tx.ID, "error", err)
				return
			}
			methodID, tip := posclient.ParseCloseEvents(events)
			results[i] = ledger.PaymentInfo{PaymentMethodID: methodID, Tip: tip}
		})
		if err != nil {
			wg.Done()
			b.logger.Error("Failed to submit history fetch to worker pool",
				"transaction_id", tx.ID, "error", err)
		}
	}
	wg.Wait()

	payments := make(map[int64]ledger.PaymentInfo, len(transactions))
	for i, tx := range transactions {
		payments[tx.ID] = results[i]
	}
	return payments
}
