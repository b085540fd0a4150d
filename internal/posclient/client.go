// Package posclient is a thin typed client for the upstream POS HTTP API.
// It handles token auth, the response envelope, the API's loosely typed
// scalars, and a client-side rate limit.
package posclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shiftpay/pos-ledger/internal/config"
)

const dateParamLayout = "20060102"

// Client calls the POS API. All methods append the account token and
// block on the shared rate limiter before issuing the request.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter <-chan time.Time
	logger  *slog.Logger
}

// NewClient builds a client from the validated POS configuration.
func NewClient(cfg *config.POSConfig, logger *slog.Logger) *Client {
	interval := time.Minute / time.Duration(cfg.RateLimitPerMin)

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: time.Tick(interval),
		logger:  logger,
	}
}

// formatDate converts a YYYY-MM-DD business date into the API's compact
// YYYYMMDD form. Already-compact input passes through.
func formatDate(date string) (string, error) {
	if len(date) == len(dateParamLayout) {
		if _, err := time.Parse(dateParamLayout, date); err == nil {
			return date, nil
		}
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.Format(dateParamLayout), nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	select {
	case <-c.limiter:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.token)

	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pos api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pos api read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pos api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("pos api decode failed: %w", err)
	}
	if len(env.Error) > 0 && string(env.Error) != "null" {
		c.logger.Error("POS API returned error", "endpoint", endpoint, "error", string(env.Error), "message", env.Message)
		return nil, fmt.Errorf("pos api error %s: %s", string(env.Error), env.Message)
	}

	return env.Response, nil
}

// GetCashShifts fetches the register sessions for one business date.
func (c *Client) GetCashShifts(ctx context.Context, date string, spotID int64) ([]CashShift, error) {
	compact, err := formatDate(date)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("dateFrom", compact)
	params.Set("dateTo", compact)
	if spotID > 0 {
		params.Set("spot_id", strconv.FormatInt(spotID, 10))
	}

	raw, err := c.get(ctx, "finance.getCashShifts", params)
	if err != nil {
		return nil, err
	}

	var wire []wireCashShift
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode cash shifts: %w", err)
	}

	shifts := make([]CashShift, 0, len(wire))
	for _, w := range wire {
		shifts = append(shifts, CashShift{
			ID:        w.CashShiftID.int64(),
			DateStart: w.DateStart,
			DateEnd:   w.DateEnd,
			SellCash:  w.AmountSellCash.decimal().Div(amountDivisor),
			SellCard:  w.AmountSellCard.decimal().Div(amountDivisor),
		})
	}
	return shifts, nil
}

// GetTransactions fetches the closed checks between two business dates,
// delivery checks included.
func (c *Client) GetTransactions(ctx context.Context, dateFrom, dateTo string, spotID int64) ([]Transaction, error) {
	from, err := formatDate(dateFrom)
	if err != nil {
		return nil, err
	}
	to, err := formatDate(dateTo)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("dateFrom", from)
	params.Set("dateTo", to)
	params.Set("status", "2") // closed checks only
	params.Set("include_products", "true")
	params.Set("include_delivery", "true")
	params.Set("type", "spots")
	if spotID > 0 {
		params.Set("id", strconv.FormatInt(spotID, 10))
	}

	raw, err := c.get(ctx, "dash.getTransactions", params)
	if err != nil {
		return nil, err
	}

	var wire []wireTransaction
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	txs := make([]Transaction, 0, len(wire))
	for _, w := range wire {
		txs = append(txs, Transaction{
			ID:         w.TransactionID.int64(),
			TimeMillis: firstMillis(w.Time, w.Date, w.CreatedAt),
		})
	}
	return txs, nil
}

// GetTransactionsProducts fetches the line items of the given transactions
// in one call.
func (c *Client) GetTransactionsProducts(ctx context.Context, transactionIDs []int64) ([]TransactionProduct, error) {
	if len(transactionIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(transactionIDs))
	for _, id := range transactionIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	params := url.Values{}
	params.Set("transactions_id", strings.Join(ids, ","))

	raw, err := c.get(ctx, "dash.getTransactionsProducts", params)
	if err != nil {
		return nil, err
	}

	var wire []wireTransactionProduct
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode transaction products: %w", err)
	}

	products := make([]TransactionProduct, 0, len(wire))
	for _, w := range wire {
		products = append(products, TransactionProduct{
			TransactionID: w.TransactionID.int64(),
			ProductID:     w.ProductID.int64(),
			ProductName:   w.ProductName,
			Workshop:      string(w.Workshop),
			TimeMillis:    w.Time.int64(),
			Num:           w.Num.decimal(),
			ProductSum:    w.ProductSum.decimal(),
			PaidSum:       w.PayedSum.decimal(),
			ProfitMinor:   w.ProductProfit.decimal(),
		})
	}
	return products, nil
}

// GetTransactionHistory fetches one transaction's event log.
func (c *Client) GetTransactionHistory(ctx context.Context, transactionID int64) ([]HistoryEvent, error) {
	params := url.Values{}
	params.Set("transaction_id", strconv.FormatInt(transactionID, 10))

	raw, err := c.get(ctx, "dash.getTransactionHistory", params)
	if err != nil {
		return nil, err
	}

	var events []HistoryEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decode transaction history: %w", err)
	}
	return events, nil
}
