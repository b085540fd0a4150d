package outbox_poller

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
	"github.com/shiftpay/pos-ledger/internal/domain/outbox"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// MockOutboxRepo for testing
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Upsert(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetByShift(ctx context.Context, shiftID int64, date string) (*outbox.Message, error) {
	args := m.Called(ctx, shiftID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	m.Called(tx)
	return m
}

// MockLedgerRepo for testing
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) Upsert(ctx context.Context, l *ledger.ShiftLedger) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLedgerRepo) GetByShiftID(ctx context.Context, shiftID int64) (*ledger.ShiftLedger, error) {
	args := m.Called(ctx, shiftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ShiftLedger), args.Error(1)
}

func (m *MockLedgerRepo) GetByDate(ctx context.Context, date string) ([]*ledger.ShiftLedger, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.ShiftLedger), args.Error(1)
}

func pendingMessage(t *testing.T, shiftID int64) *outbox.Message {
	t.Helper()
	msg, err := outbox.NewMessage(&ledger.ShiftLedger{ShiftID: shiftID, Date: "2026-08-01"})
	assert.NoError(t, err)
	msg.ID = 1
	return msg
}

func TestLedgerDocPublisher_PublishLedgerDoc(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockLedgerRepo := &MockLedgerRepo{}
		publisher := NewLedgerDocPublisher(mockOutboxRepo, mockLedgerRepo, logger)

		msg := pendingMessage(t, 41)
		mockLedgerRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(l *ledger.ShiftLedger) bool {
			return l.ShiftID == 41 && l.Date == "2026-08-01"
		})).Return(nil)
		mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(nil)

		err := publisher.PublishLedgerDoc(ctx, msg)

		assert.NoError(t, err)
		mockLedgerRepo.AssertExpectations(t)
		mockOutboxRepo.AssertExpectations(t)
	})

	t.Run("CorruptPayloadMarksFailed", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockLedgerRepo := &MockLedgerRepo{}
		publisher := NewLedgerDocPublisher(mockOutboxRepo, mockLedgerRepo, logger)

		msg := pendingMessage(t, 41)
		msg.Payload = []byte(`{"shift_id":`)
		mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusFailedToPublish).Return(nil)

		err := publisher.PublishLedgerDoc(ctx, msg)

		assert.Error(t, err)
		mockLedgerRepo.AssertNotCalled(t, "Upsert")
		mockOutboxRepo.AssertExpectations(t)
	})

	t.Run("UpsertError", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockLedgerRepo := &MockLedgerRepo{}
		publisher := NewLedgerDocPublisher(mockOutboxRepo, mockLedgerRepo, logger)

		msg := pendingMessage(t, 41)
		mockLedgerRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("mongo down"))

		err := publisher.PublishLedgerDoc(ctx, msg)

		assert.Error(t, err)
		mockOutboxRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("MarkProcessedError", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockLedgerRepo := &MockLedgerRepo{}
		publisher := NewLedgerDocPublisher(mockOutboxRepo, mockLedgerRepo, logger)

		msg := pendingMessage(t, 41)
		mockLedgerRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).
			Return(errors.New("db error"))

		err := publisher.PublishLedgerDoc(ctx, msg)

		assert.Error(t, err)
	})
}
