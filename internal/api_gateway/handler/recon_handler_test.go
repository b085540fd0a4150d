package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReconService struct {
	mock.Mock
}

func (m *MockReconService) RequestReconciliation(ctx context.Context, date string, spotID int64, correlationID string) (*shared.ReconciliationRequest, error) {
	args := m.Called(ctx, date, spotID, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.ReconciliationRequest), args.Error(1)
}

func TestReconHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockReconService)
		handler := NewReconHandler(logger, mockService)

		mockService.On("RequestReconciliation", mock.Anything, "2026-08-01", int64(7), mock.Anything).
			Return(&shared.ReconciliationRequest{
				Date:          "2026-08-01",
				SpotID:        7,
				CorrelationID: "corr-123",
			}, nil)

		router := gin.New()
		router.POST("/reconciliations", handler.Create)

		jsonBody, _ := json.Marshal(CreateReconciliationRequest{Date: "2026-08-01", SpotID: 7})
		req, _ := http.NewRequest(http.MethodPost, "/reconciliations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)

		var response struct {
			Data ReconciliationResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "2026-08-01", response.Data.Date)
		assert.Equal(t, int64(7), response.Data.SpotID)
		assert.Equal(t, "corr-123", response.Data.CorrelationID)
		assert.Equal(t, "ACCEPTED", response.Data.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockReconService)
		handler := NewReconHandler(logger, mockService)
		router := gin.New()
		router.POST("/reconciliations", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/reconciliations", bytes.NewBufferString(`{"invalid`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "RequestReconciliation")
	})

	t.Run("MissingSpotID", func(t *testing.T) {
		mockService := new(MockReconService)
		handler := NewReconHandler(logger, mockService)
		router := gin.New()
		router.POST("/reconciliations", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/reconciliations", bytes.NewBufferString(`{"date":"2026-08-01"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "RequestReconciliation")
	})

	t.Run("InvalidDate", func(t *testing.T) {
		mockService := new(MockReconService)
		handler := NewReconHandler(logger, mockService)

		mockService.On("RequestReconciliation", mock.Anything, "01/08/2026", int64(7), mock.Anything).
			Return(nil, shared.ErrInvalidDate)

		router := gin.New()
		router.POST("/reconciliations", handler.Create)

		jsonBody, _ := json.Marshal(CreateReconciliationRequest{Date: "01/08/2026", SpotID: 7})
		req, _ := http.NewRequest(http.MethodPost, "/reconciliations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("PublishFailure", func(t *testing.T) {
		mockService := new(MockReconService)
		handler := NewReconHandler(logger, mockService)

		mockService.On("RequestReconciliation", mock.Anything, "2026-08-01", int64(7), mock.Anything).
			Return(nil, errors.New("kafka unavailable"))

		router := gin.New()
		router.POST("/reconciliations", handler.Create)

		jsonBody, _ := json.Marshal(CreateReconciliationRequest{Date: "2026-08-01", SpotID: 7})
		req, _ := http.NewRequest(http.MethodPost, "/reconciliations", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
