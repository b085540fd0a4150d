package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// LedgerServiceImpl implements the LedgerService interface
type LedgerServiceImpl struct {
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(logger *slog.Logger, ledgerRepo ledger.Repository) LedgerService {
	return &LedgerServiceImpl{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// GetLedgerByShiftID retrieves a reconciled ledger by shift ID. Returns nil if
// the shift has not been reconciled yet
func (s *LedgerServiceImpl) GetLedgerByShiftID(ctx context.Context, shiftID int64) (*ledger.ShiftLedger, error) {
	res, err := s.ledgerRepo.GetByShiftID(ctx, shiftID)
	if err != nil {
		var errLedgerNotFound ledger.ErrLedgerNotFound
		if errors.As(err, &errLedgerNotFound) {
			s.logger.Info("Shift ledger not found", "shift_id", shiftID)
			return nil, nil
		}
		s.logger.Error("Failed to get shift ledger", "shift_id", shiftID, "error", err)
		return nil, err
	}
	return res, nil
}

// GetLedgersByDate retrieves all reconciled ledgers for a business day
func (s *LedgerServiceImpl) GetLedgersByDate(ctx context.Context, date string) ([]*ledger.ShiftLedger, error) {
	if _, err := time.Parse(shared.DateLayout, date); err != nil {
		return nil, shared.ErrInvalidDate
	}

	ledgers, err := s.ledgerRepo.GetByDate(ctx, date)
	if err != nil {
		s.logger.Error("Failed to get ledgers by date", "date", date, "error", err)
		return nil, err
	}
	return ledgers, nil
}
