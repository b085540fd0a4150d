package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
	"github.com/shiftpay/pos-ledger/internal/domain/outbox"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// LedgerDocPublisher moves staged shift ledgers from the outbox into the
// document store
type LedgerDocPublisher interface {
	PublishLedgerDoc(ctx context.Context, message *outbox.Message) error
}

// LedgerDocPublisherImpl implements LedgerDocPublisher
type LedgerDocPublisherImpl struct {
	outboxRepo outbox.Repository
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

// NewLedgerDocPublisher creates a new publisher
func NewLedgerDocPublisher(
	outboxRepo outbox.Repository,
	ledgerRepo ledger.Repository,
	logger *slog.Logger,
) LedgerDocPublisher {
	return &LedgerDocPublisherImpl{
		outboxRepo: outboxRepo,
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// PublishLedgerDoc writes the staged ledger to the document store and marks
// the outbox message processed. Upserts make redelivery safe: the reconciled
// ledger for a shift and date is always the latest build.
func (p *LedgerDocPublisherImpl) PublishLedgerDoc(ctx context.Context, message *outbox.Message) error {
	shiftLedger, err := message.GetShiftLedger()
	if err != nil {
		p.logger.Error("Failed to unmarshal shift ledger from outbox payload",
			"outbox_id", message.ID, "shift_id", message.ShiftID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	p.logger.Info("Attempting to publish shift ledger to document store",
		"outbox_id", message.ID, "shift_id", shiftLedger.ShiftID, "date", shiftLedger.Date,
	)

	if err := p.ledgerRepo.Upsert(ctx, shiftLedger); err != nil {
		p.logger.Error("Failed to upsert shift ledger in MongoDB", "shift_id", shiftLedger.ShiftID, "error", err)
		return fmt.Errorf("failed to upsert shift ledger %d: %w", shiftLedger.ShiftID, err)
	}

	// Mark outbox message as processed
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		p.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "shift_id", message.ShiftID, "error", err,
		)
		return fmt.Errorf("ledger write for shift %d OK, but failed to mark outbox %d as PROCESSED: %w", message.ShiftID, message.ID, err)
	}

	p.logger.Info("Outbox message successfully processed and marked as PROCESSED", "outbox_id", message.ID, "shift_id", message.ShiftID)
	return nil
}
