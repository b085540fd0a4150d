package payroll

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SalaryRecord is one employee's evaluated salary for one shift as stored.
// WriteOff and Comment are entered by managers after evaluation and survive
// re-runs of the reconciliation.
type SalaryRecord struct {
	ID             int64
	ShiftID        int64
	Date           string
	EmployeeID     int64
	EmployeeName   string
	Fixed          decimal.Decimal
	Percent        decimal.Decimal
	Bonus          decimal.Decimal
	Total          decimal.Decimal
	BonusBreakdown []BonusLine
	WriteOff       decimal.Decimal
	Comment        string
}

// RuleRepository manages salary-rule persistence, including each rule's
// workshop set and per-product bonuses.
type RuleRepository interface {
	Create(ctx context.Context, rule *SalaryRule) error
	GetByID(ctx context.Context, id int64) (*SalaryRule, error)
	List(ctx context.Context) ([]SalaryRule, error)
	Update(ctx context.Context, rule *SalaryRule) error
	Delete(ctx context.Context, id int64) error
}

// RosterRepository manages who worked which shift under which role.
type RosterRepository interface {
	Assign(ctx context.Context, shiftID int64, entry *RosterEntry) error
	Remove(ctx context.Context, shiftID, employeeID int64) error
	ListByShift(ctx context.Context, shiftID int64) ([]RosterEntry, error)
}

// RecordRepository manages evaluated salary records. Upserts replace the
// computed figures but keep manually entered WriteOff and Comment intact.
type RecordRepository interface {
	Upsert(ctx context.Context, record *SalaryRecord) error
	GetByShiftID(ctx context.Context, shiftID int64) ([]SalaryRecord, error)
	GetByDate(ctx context.Context, date string) ([]SalaryRecord, error)
	SetWriteOff(ctx context.Context, id int64, writeOff decimal.Decimal, comment string) error
	WithTx(tx pgx.Tx) RecordRepository
}

// ErrRuleNotFound indicates a missing salary rule
type ErrRuleNotFound struct {
	RuleID int64
}

func (e ErrRuleNotFound) Error() string {
	return "salary rule not found: " + strconv.FormatInt(e.RuleID, 10)
}

// Is implements the errors.Is interface for ErrRuleNotFound
func (e ErrRuleNotFound) Is(target error) bool {
	t, ok := target.(ErrRuleNotFound)
	if !ok {
		return false
	}
	if t.RuleID == 0 {
		return true
	}
	return e.RuleID == t.RuleID
}

// ErrRecordNotFound indicates a missing salary record
type ErrRecordNotFound struct {
	RecordID int64
}

func (e ErrRecordNotFound) Error() string {
	return "salary record not found: " + strconv.FormatInt(e.RecordID, 10)
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.RecordID == 0 {
		return true
	}
	return e.RecordID == t.RecordID
}
