package outbox_poller

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shiftpay/pos-ledger/internal/config"
	"github.com/shiftpay/pos-ledger/internal/domain/outbox"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// MockLedgerDocPublisher for testing
type MockLedgerDocPublisher struct {
	mock.Mock
}

func (m *MockLedgerDocPublisher) PublishLedgerDoc(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func pollerConfig() *config.OutboxConfig {
	return &config.OutboxConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("PublishesAllPending", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockPublisher := &MockLedgerDocPublisher{}
		poller := NewPoller(pollerConfig(), mockOutboxRepo, mockPublisher, logger)

		msg1 := pendingMessage(t, 41)
		msg2 := pendingMessage(t, 42)
		msg2.ID = 2
		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{msg1, msg2}, nil)
		mockPublisher.On("PublishLedgerDoc", mock.Anything, msg1).Return(nil)
		mockPublisher.On("PublishLedgerDoc", mock.Anything, msg2).Return(nil)

		err := poller.processPendingMessages(ctx)

		assert.NoError(t, err)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("NoPendingMessages", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockPublisher := &MockLedgerDocPublisher{}
		poller := NewPoller(pollerConfig(), mockOutboxRepo, mockPublisher, logger)

		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil)

		err := poller.processPendingMessages(ctx)

		assert.NoError(t, err)
		mockPublisher.AssertNotCalled(t, "PublishLedgerDoc")
	})

	t.Run("GetPendingError", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockPublisher := &MockLedgerDocPublisher{}
		poller := NewPoller(pollerConfig(), mockOutboxRepo, mockPublisher, logger)

		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db error"))

		err := poller.processPendingMessages(ctx)

		assert.Error(t, err)
	})

	t.Run("PublishFailureIncrementsAttempts", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockPublisher := &MockLedgerDocPublisher{}
		poller := NewPoller(pollerConfig(), mockOutboxRepo, mockPublisher, logger)

		msg := pendingMessage(t, 41)
		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{msg}, nil)
		mockPublisher.On("PublishLedgerDoc", mock.Anything, msg).Return(errors.New("mongo down"))
		mockOutboxRepo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil)

		err := poller.processPendingMessages(ctx)

		assert.NoError(t, err)
		mockOutboxRepo.AssertCalled(t, "IncrementAttempts", mock.Anything, int64(1))
		mockOutboxRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("MaxAttemptsMarksFailed", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockPublisher := &MockLedgerDocPublisher{}
		poller := NewPoller(pollerConfig(), mockOutboxRepo, mockPublisher, logger)

		msg := pendingMessage(t, 41)
		msg.Attempts = 2 // third failure hits the limit
		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{msg}, nil)
		mockPublisher.On("PublishLedgerDoc", mock.Anything, msg).Return(errors.New("mongo down"))
		mockOutboxRepo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil)
		mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusFailedToPublish).Return(nil)

		err := poller.processPendingMessages(ctx)

		assert.NoError(t, err)
		mockOutboxRepo.AssertExpectations(t)
	})

	t.Run("StopsOnContextCancel", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockPublisher := &MockLedgerDocPublisher{}
		cfg := pollerConfig()
		cfg.PollingInterval = 10 * time.Millisecond
		poller := NewPoller(cfg, mockOutboxRepo, mockPublisher, logger)

		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Maybe()

		runCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			poller.Start(runCtx)
			close(done)
		}()

		time.Sleep(35 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("poller did not stop after context cancellation")
		}
	})
}
