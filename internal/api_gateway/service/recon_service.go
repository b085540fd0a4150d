package service

import (
	"context"
	"log/slog"

	"github.com/shiftpay/pos-ledger/internal/domain/shared"
	"github.com/shiftpay/pos-ledger/internal/platform/messaging/producers"
)

// ReconServiceImpl implements the ReconService interface
type ReconServiceImpl struct {
	producer producers.MessagePublisher
	logger   *slog.Logger
}

// NewReconService creates a new reconciliation service
func NewReconService(logger *slog.Logger, producer producers.MessagePublisher) ReconService {
	return &ReconServiceImpl{
		producer: producer,
		logger:   logger,
	}
}

// RequestReconciliation validates the request and publishes it for the
// processor. The message key is date:spot so re-requests for the same day
// land on the same partition.
func (s *ReconServiceImpl) RequestReconciliation(ctx context.Context, date string, spotID int64, correlationID string) (*shared.ReconciliationRequest, error) {
	request, err := shared.NewReconciliationRequest(date, spotID)
	if err != nil {
		return nil, err
	}
	if correlationID != "" {
		request.CorrelationID = correlationID
	}

	key := request.Key()
	if err := s.producer.Publish(ctx, key, request); err != nil {
		s.logger.Error("Failed to publish reconciliation request",
			"date", request.Date,
			"spot_id", request.SpotID,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Reconciliation request published",
		"date", request.Date,
		"spot_id", request.SpotID,
		"correlation_id", request.CorrelationID,
	)

	return request, nil
}
