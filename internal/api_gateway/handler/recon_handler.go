package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/shiftpay/pos-ledger/internal/api_gateway/middleware"
	"github.com/shiftpay/pos-ledger/internal/api_gateway/service"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// ReconHandler handles HTTP requests for reconciliation operations
type ReconHandler struct {
	reconService service.ReconService
	logger       *slog.Logger
}

// NewReconHandler creates a new reconciliation handler
func NewReconHandler(logger *slog.Logger, reconService service.ReconService) *ReconHandler {
	return &ReconHandler{
		reconService: reconService,
		logger:       logger,
	}
}

// Create accepts a reconciliation request and queues it for the processor
func (h *ReconHandler) Create(c *gin.Context) {
	var req CreateReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	request, err := h.reconService.RequestReconciliation(
		c.Request.Context(),
		req.Date,
		req.SpotID,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidDate) || errors.Is(err, shared.ErrInvalidSpotID) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to request reconciliation",
			"date", req.Date,
			"spot_id", req.SpotID,
			"error", err,
		)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, ReconciliationResponse{
		Date:          request.Date,
		SpotID:        request.SpotID,
		CorrelationID: request.CorrelationID,
		Status:        string(shared.ReconStatusAccepted),
	})
}
