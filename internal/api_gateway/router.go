package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shiftpay/pos-ledger/internal/api_gateway/handler"
	"github.com/shiftpay/pos-ledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	reconHandler *handler.ReconHandler,
	ledgerHandler *handler.LedgerHandler,
	payrollHandler *handler.PayrollHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Reconciliation requests
		v1.POST("/reconciliations", reconHandler.Create)

		// Reconciled shift ledgers
		ledgers := v1.Group("/ledgers")
		{
			ledgers.GET("", ledgerHandler.GetByDate)
			ledgers.GET("/:shift_id", ledgerHandler.GetByShiftID)
		}

		// Salary rule management
		rules := v1.Group("/salary-rules")
		{
			rules.POST("", payrollHandler.CreateRule)
			rules.GET("", payrollHandler.ListRules)
			rules.GET("/:id", payrollHandler.GetRuleByID)
			rules.PUT("/:id", payrollHandler.UpdateRule)
			rules.DELETE("/:id", payrollHandler.DeleteRule)
		}

		// Shift rosters and per-shift salaries
		shifts := v1.Group("/shifts/:shift_id")
		{
			shifts.GET("/roster", payrollHandler.ListRoster)
			shifts.POST("/roster", payrollHandler.AssignRoster)
			shifts.DELETE("/roster/:employee_id", payrollHandler.RemoveRoster)
			shifts.GET("/salaries", payrollHandler.GetSalariesByShift)
		}

		// Salary records across shifts
		salaries := v1.Group("/salaries")
		{
			salaries.GET("", payrollHandler.GetSalariesByDate)
			salaries.PATCH("/:id/write-off", payrollHandler.SetWriteOff)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
