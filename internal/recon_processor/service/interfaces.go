package service

import (
	"context"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// ReconJobService defines the interface for processing reconciliation requests.
type ReconJobService interface {
	ProcessReconciliation(ctx context.Context, request *shared.ReconciliationRequest) error
}

// LedgerBuilder builds reconciled shift ledgers from upstream POS data for
// one business day and spot
type LedgerBuilder interface {
	Build(ctx context.Context, date string, spotID int64) ([]*ledger.ShiftLedger, error)
}
