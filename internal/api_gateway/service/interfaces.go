package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
	"github.com/shiftpay/pos-ledger/internal/domain/payroll"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// ReconService defines the interface for triggering shift reconciliation
type ReconService interface {
	// RequestReconciliation validates and publishes a reconciliation request
	// for one business day and POS spot. The actual work happens
	// asynchronously in the processor.
	RequestReconciliation(ctx context.Context, date string, spotID int64, correlationID string) (*shared.ReconciliationRequest, error)
}

// LedgerService defines the interface for reading reconciled shift ledgers
type LedgerService interface {
	// GetLedgerByShiftID retrieves a reconciled ledger by its shift ID
	// Returns nil if no ledger has been built for the shift yet
	GetLedgerByShiftID(ctx context.Context, shiftID int64) (*ledger.ShiftLedger, error)

	// GetLedgersByDate retrieves all reconciled ledgers for a business day
	GetLedgersByDate(ctx context.Context, date string) ([]*ledger.ShiftLedger, error)
}

// PayrollService defines the interface for salary rules, shift rosters and
// evaluated salary records
type PayrollService interface {
	// CreateRule persists a new salary rule
	CreateRule(ctx context.Context, rule *payroll.SalaryRule) error

	// GetRuleByID retrieves a salary rule by its ID
	// Returns ErrRuleNotFound if the rule doesn't exist
	GetRuleByID(ctx context.Context, id int64) (*payroll.SalaryRule, error)

	// ListRules retrieves all salary rules
	ListRules(ctx context.Context) ([]payroll.SalaryRule, error)

	// UpdateRule replaces a salary rule and its associations
	// Returns ErrRuleNotFound if the rule doesn't exist
	UpdateRule(ctx context.Context, rule *payroll.SalaryRule) error

	// DeleteRule removes a salary rule
	// Returns ErrRuleNotFound if the rule doesn't exist
	DeleteRule(ctx context.Context, id int64) error

	// AssignRosterEntry adds or updates an employee on a shift's roster
	AssignRosterEntry(ctx context.Context, shiftID int64, entry *payroll.RosterEntry) error

	// RemoveRosterEntry takes an employee off a shift's roster
	RemoveRosterEntry(ctx context.Context, shiftID, employeeID int64) error

	// ListRoster retrieves the roster for a shift
	ListRoster(ctx context.Context, shiftID int64) ([]payroll.RosterEntry, error)

	// GetSalariesByShift retrieves evaluated salary records for a shift
	GetSalariesByShift(ctx context.Context, shiftID int64) ([]payroll.SalaryRecord, error)

	// GetSalariesByDate retrieves evaluated salary records for a business day
	GetSalariesByDate(ctx context.Context, date string) ([]payroll.SalaryRecord, error)

	// SetWriteOff records a manual write-off and comment on a salary record
	// Returns ErrRecordNotFound if the record doesn't exist
	SetWriteOff(ctx context.Context, recordID int64, writeOff decimal.Decimal, comment string) error
}
