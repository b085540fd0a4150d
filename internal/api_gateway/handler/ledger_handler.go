package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shiftpay/pos-ledger/internal/api_gateway/service"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// LedgerHandler handles HTTP requests for reconciled shift ledgers
type LedgerHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// GetByShiftID retrieves a reconciled ledger by shift ID, returns 404 if the
// shift has not been reconciled
func (h *LedgerHandler) GetByShiftID(c *gin.Context) {
	idParam := c.Param("shift_id")
	shiftID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || shiftID <= 0 {
		h.logger.Error("Invalid shift ID", "shift_id", idParam, "error", err)
		RespondBadRequest(c, "Invalid shift ID")
		return
	}

	l, err := h.ledgerService.GetLedgerByShiftID(c.Request.Context(), shiftID)
	if err != nil {
		h.logger.Error("Failed to get shift ledger", "shift_id", shiftID, "error", err)
		RespondInternalError(c)
		return
	}
	if l == nil {
		RespondNotFound(c, "Shift ledger not found")
		return
	}

	RespondOK(c, l)
}

// GetByDate retrieves all reconciled ledgers for a business day
func (h *LedgerHandler) GetByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		RespondBadRequest(c, "Missing required query parameter: date")
		return
	}

	ledgers, err := h.ledgerService.GetLedgersByDate(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidDate) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to get ledgers", "date", date, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, ledgers)
}
