package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shiftpay/pos-ledger/internal/domain/payroll"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *payroll.SalaryRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id int64) (*payroll.SalaryRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalaryRule), args.Error(1)
}

func (m *MockRuleRepository) List(ctx context.Context) ([]payroll.SalaryRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.SalaryRule), args.Error(1)
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *payroll.SalaryRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRosterRepository struct {
	mock.Mock
}

func (m *MockRosterRepository) Assign(ctx context.Context, shiftID int64, entry *payroll.RosterEntry) error {
	args := m.Called(ctx, shiftID, entry)
	return args.Error(0)
}

func (m *MockRosterRepository) Remove(ctx context.Context, shiftID, employeeID int64) error {
	args := m.Called(ctx, shiftID, employeeID)
	return args.Error(0)
}

func (m *MockRosterRepository) ListByShift(ctx context.Context, shiftID int64) ([]payroll.RosterEntry, error) {
	args := m.Called(ctx, shiftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.RosterEntry), args.Error(1)
}

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Upsert(ctx context.Context, record *payroll.SalaryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) GetByShiftID(ctx context.Context, shiftID int64) ([]payroll.SalaryRecord, error) {
	args := m.Called(ctx, shiftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.SalaryRecord), args.Error(1)
}

func (m *MockRecordRepository) GetByDate(ctx context.Context, date string) ([]payroll.SalaryRecord, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.SalaryRecord), args.Error(1)
}

func (m *MockRecordRepository) SetWriteOff(ctx context.Context, id int64, writeOff decimal.Decimal, comment string) error {
	args := m.Called(ctx, id, writeOff, comment)
	return args.Error(0)
}

func (m *MockRecordRepository) WithTx(tx pgx.Tx) payroll.RecordRepository {
	m.Called(tx)
	return m
}

func newPayrollService(ruleRepo *MockRuleRepository, rosterRepo *MockRosterRepository, recordRepo *MockRecordRepository) PayrollService {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return NewPayrollService(logger, ruleRepo, rosterRepo, recordRepo)
}

func TestPayrollServiceImpl_Rules(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateSuccess", func(t *testing.T) {
		ruleRepo := new(MockRuleRepository)
		svc := newPayrollService(ruleRepo, new(MockRosterRepository), new(MockRecordRepository))

		rule := &payroll.SalaryRule{RoleID: 3, Percent: decimal.NewFromInt(5)}
		ruleRepo.On("Create", mock.Anything, rule).Return(nil)

		require.NoError(t, svc.CreateRule(ctx, rule))
		ruleRepo.AssertExpectations(t)
	})

	t.Run("CreateError", func(t *testing.T) {
		ruleRepo := new(MockRuleRepository)
		svc := newPayrollService(ruleRepo, new(MockRosterRepository), new(MockRecordRepository))

		expectedErr := errors.New("db down")
		ruleRepo.On("Create", mock.Anything, mock.Anything).Return(expectedErr)

		err := svc.CreateRule(ctx, &payroll.SalaryRule{RoleID: 3})
		assert.ErrorIs(t, err, expectedErr)
	})

	t.Run("GetNotFoundPassesThrough", func(t *testing.T) {
		ruleRepo := new(MockRuleRepository)
		svc := newPayrollService(ruleRepo, new(MockRosterRepository), new(MockRecordRepository))

		ruleRepo.On("GetByID", mock.Anything, int64(9)).
			Return(nil, payroll.ErrRuleNotFound{RuleID: 9})

		_, err := svc.GetRuleByID(ctx, 9)
		assert.ErrorIs(t, err, payroll.ErrRuleNotFound{})
	})
}

func TestPayrollServiceImpl_Roster(t *testing.T) {
	ctx := context.Background()

	t.Run("AssignSuccess", func(t *testing.T) {
		rosterRepo := new(MockRosterRepository)
		svc := newPayrollService(new(MockRuleRepository), rosterRepo, new(MockRecordRepository))

		entry := &payroll.RosterEntry{EmployeeID: 11, EmployeeName: "Dana", RoleID: 3}
		rosterRepo.On("Assign", mock.Anything, int64(41), entry).Return(nil)

		require.NoError(t, svc.AssignRosterEntry(ctx, 41, entry))
		rosterRepo.AssertExpectations(t)
	})

	t.Run("ListByShift", func(t *testing.T) {
		rosterRepo := new(MockRosterRepository)
		svc := newPayrollService(new(MockRuleRepository), rosterRepo, new(MockRecordRepository))

		expected := []payroll.RosterEntry{{EmployeeID: 11, RoleID: 3}}
		rosterRepo.On("ListByShift", mock.Anything, int64(41)).Return(expected, nil)

		roster, err := svc.ListRoster(ctx, 41)
		require.NoError(t, err)
		assert.Equal(t, expected, roster)
	})
}

func TestPayrollServiceImpl_Salaries(t *testing.T) {
	ctx := context.Background()

	t.Run("GetByDateInvalid", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		svc := newPayrollService(new(MockRuleRepository), new(MockRosterRepository), recordRepo)

		_, err := svc.GetSalariesByDate(ctx, "not-a-date")

		assert.ErrorIs(t, err, shared.ErrInvalidDate)
		recordRepo.AssertNotCalled(t, "GetByDate")
	})

	t.Run("SetWriteOff", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		svc := newPayrollService(new(MockRuleRepository), new(MockRosterRepository), recordRepo)

		writeOff := decimal.NewFromInt(25)
		recordRepo.On("SetWriteOff", mock.Anything, int64(5), writeOff, "till shortage").Return(nil)

		require.NoError(t, svc.SetWriteOff(ctx, 5, writeOff, "till shortage"))
		recordRepo.AssertExpectations(t)
	})

	t.Run("SetWriteOffNotFound", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		svc := newPayrollService(new(MockRuleRepository), new(MockRosterRepository), recordRepo)

		recordRepo.On("SetWriteOff", mock.Anything, int64(5), mock.Anything, mock.Anything).
			Return(payroll.ErrRecordNotFound{RecordID: 5})

		err := svc.SetWriteOff(ctx, 5, decimal.Zero, "")
		assert.ErrorIs(t, err, payroll.ErrRecordNotFound{})
	})
}
