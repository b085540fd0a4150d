package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shiftpay/pos-ledger/internal/domain/payroll"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// PayrollServiceImpl implements the PayrollService interface
type PayrollServiceImpl struct {
	ruleRepo   payroll.RuleRepository
	rosterRepo payroll.RosterRepository
	recordRepo payroll.RecordRepository
	logger     *slog.Logger
}

// NewPayrollService creates a new payroll service
func NewPayrollService(
	logger *slog.Logger,
	ruleRepo payroll.RuleRepository,
	rosterRepo payroll.RosterRepository,
	recordRepo payroll.RecordRepository,
) PayrollService {
	return &PayrollServiceImpl{
		ruleRepo:   ruleRepo,
		rosterRepo: rosterRepo,
		recordRepo: recordRepo,
		logger:     logger,
	}
}

// CreateRule persists a new salary rule with its workshop and bonus associations
func (s *PayrollServiceImpl) CreateRule(ctx context.Context, rule *payroll.SalaryRule) error {
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		s.logger.Error("Failed to create salary rule", "role_id", rule.RoleID, "error", err)
		return err
	}
	return nil
}

// GetRuleByID retrieves a salary rule, returns ErrRuleNotFound if missing
func (s *PayrollServiceImpl) GetRuleByID(ctx context.Context, id int64) (*payroll.SalaryRule, error) {
	return s.ruleRepo.GetByID(ctx, id)
}

// ListRules retrieves all salary rules
func (s *PayrollServiceImpl) ListRules(ctx context.Context) ([]payroll.SalaryRule, error) {
	return s.ruleRepo.List(ctx)
}

// UpdateRule replaces a salary rule and its associations
func (s *PayrollServiceImpl) UpdateRule(ctx context.Context, rule *payroll.SalaryRule) error {
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		s.logger.Error("Failed to update salary rule", "rule_id", rule.ID, "error", err)
		return err
	}
	return nil
}

// DeleteRule removes a salary rule
func (s *PayrollServiceImpl) DeleteRule(ctx context.Context, id int64) error {
	return s.ruleRepo.Delete(ctx, id)
}

// AssignRosterEntry adds or updates an employee on a shift's roster. Salaries
// are re-evaluated the next time the shift's day is reconciled.
func (s *PayrollServiceImpl) AssignRosterEntry(ctx context.Context, shiftID int64, entry *payroll.RosterEntry) error {
	if err := s.rosterRepo.Assign(ctx, shiftID, entry); err != nil {
		s.logger.Error("Failed to assign roster entry",
			"shift_id", shiftID,
			"employee_id", entry.EmployeeID,
			"error", err,
		)
		return err
	}
	return nil
}

// RemoveRosterEntry takes an employee off a shift's roster
func (s *PayrollServiceImpl) RemoveRosterEntry(ctx context.Context, shiftID, employeeID int64) error {
	return s.rosterRepo.Remove(ctx, shiftID, employeeID)
}

// ListRoster retrieves the roster for a shift
func (s *PayrollServiceImpl) ListRoster(ctx context.Context, shiftID int64) ([]payroll.RosterEntry, error) {
	return s.rosterRepo.ListByShift(ctx, shiftID)
}

// GetSalariesByShift retrieves evaluated salary records for a shift
func (s *PayrollServiceImpl) GetSalariesByShift(ctx context.Context, shiftID int64) ([]payroll.SalaryRecord, error) {
	return s.recordRepo.GetByShiftID(ctx, shiftID)
}

// GetSalariesByDate retrieves evaluated salary records for a business day
func (s *PayrollServiceImpl) GetSalariesByDate(ctx context.Context, date string) ([]payroll.SalaryRecord, error) {
	if _, err := time.Parse(shared.DateLayout, date); err != nil {
		return nil, shared.ErrInvalidDate
	}
	return s.recordRepo.GetByDate(ctx, date)
}

// SetWriteOff records a manual write-off and comment on a salary record
func (s *PayrollServiceImpl) SetWriteOff(ctx context.Context, recordID int64, writeOff decimal.Decimal, comment string) error {
	if err := s.recordRepo.SetWriteOff(ctx, recordID, writeOff, comment); err != nil {
		s.logger.Error("Failed to set write-off", "record_id", recordID, "error", err)
		return err
	}
	return nil
}
