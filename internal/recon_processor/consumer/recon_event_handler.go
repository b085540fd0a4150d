package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shiftpay/pos-ledger/internal/domain/shared"
	"github.com/shiftpay/pos-ledger/internal/platform/messaging/producers"
	"github.com/shiftpay/pos-ledger/internal/recon_processor/service"
)

// ReconEventHandler handles incoming reconciliation request messages from Kafka
type ReconEventHandler struct {
	reconJobService service.ReconJobService
	producer        producers.DeadLetterPublisher
	logger          *slog.Logger
}

// NewReconEventHandler creates a new handler
func NewReconEventHandler(
	logger *slog.Logger,
	reconJobService service.ReconJobService,
	producer producers.DeadLetterPublisher,
) *ReconEventHandler {
	return &ReconEventHandler{
		reconJobService: reconJobService,
		producer:        producer,
		logger:          logger,
	}
}

// HandleMessage processes Kafka messages
func (h *ReconEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.ReconciliationRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal reconciliation request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received reconciliation request for processing",
		"date", request.Date,
		"spot_id", request.SpotID,
	)

	if err := h.reconJobService.ProcessReconciliation(ctx, &request); err != nil {
		logger.Error("Failed to process reconciliation",
			"date", request.Date,
			"spot_id", request.SpotID,
			"error", err,
		)
		return fmt.Errorf("processing reconciliation %s failed: %w", request.Key(), err)
	}

	logger.Info("Successfully processed reconciliation", "date", request.Date, "spot_id", request.SpotID)
	return nil // Success, commit offset
}
