package handler

import "github.com/shopspring/decimal"

// CreateReconciliationRequest represents a request to reconcile one business
// day for one POS spot
type CreateReconciliationRequest struct {
	Date   string `json:"date" binding:"required"`
	SpotID int64  `json:"spot_id" binding:"required,gt=0"`
}

// ReconciliationResponse represents an accepted reconciliation request
type ReconciliationResponse struct {
	Date          string `json:"date"`
	SpotID        int64  `json:"spot_id"`
	CorrelationID string `json:"correlation_id"`
	Status        string `json:"status"`
}

// SalaryRuleRequest represents a request to create or update a salary rule.
// Amounts accept JSON numbers or strings; Workshops is a POS workshop ID
// allow-list (empty means every workshop qualifies for the percent cut)
type SalaryRuleRequest struct {
	RoleID         int64                      `json:"role_id" binding:"required,gt=0"`
	Percent        decimal.Decimal            `json:"percent"`
	FixedPerShift  decimal.Decimal            `json:"fixed_per_shift"`
	Workshops      []int64                    `json:"workshops"`
	ProductBonuses map[string]decimal.Decimal `json:"product_bonuses"`
}

// SalaryRuleResponse represents a salary rule in API responses
type SalaryRuleResponse struct {
	ID             int64                      `json:"id"`
	RoleID         int64                      `json:"role_id"`
	Percent        decimal.Decimal            `json:"percent"`
	FixedPerShift  decimal.Decimal            `json:"fixed_per_shift"`
	Workshops      []int64                    `json:"workshops"`
	ProductBonuses map[string]decimal.Decimal `json:"product_bonuses"`
}

// AssignRosterRequest represents a request to put an employee on a shift's
// roster
type AssignRosterRequest struct {
	EmployeeID   int64  `json:"employee_id" binding:"required,gt=0"`
	EmployeeName string `json:"employee_name" binding:"required"`
	RoleID       int64  `json:"role_id" binding:"required,gt=0"`
	PayGroupID   *int64 `json:"pay_group_id,omitempty"`
}

// RosterEntryResponse represents a roster entry in API responses
type RosterEntryResponse struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	RoleID       int64  `json:"role_id"`
	PayGroupID   *int64 `json:"pay_group_id,omitempty"`
	PayGroupName string `json:"pay_group_name,omitempty"`
}

// SalaryRecordResponse represents an evaluated salary record in API responses
type SalaryRecordResponse struct {
	ID             int64           `json:"id"`
	ShiftID        int64           `json:"shift_id"`
	Date           string          `json:"date"`
	EmployeeID     int64           `json:"employee_id"`
	EmployeeName   string          `json:"employee_name"`
	Fixed          decimal.Decimal `json:"fixed"`
	Percent        decimal.Decimal `json:"percent"`
	Bonus          decimal.Decimal `json:"bonus"`
	Total          decimal.Decimal `json:"total"`
	BonusBreakdown []BonusLineDTO  `json:"bonus_breakdown"`
	WriteOff       decimal.Decimal `json:"write_off"`
	Comment        string          `json:"comment,omitempty"`
}

// BonusLineDTO represents one product's bonus contribution
type BonusLineDTO struct {
	ProductName string          `json:"product_name"`
	Count       decimal.Decimal `json:"count"`
	Total       decimal.Decimal `json:"total"`
}

// WriteOffRequest represents a manual write-off entry on a salary record
type WriteOffRequest struct {
	WriteOff decimal.Decimal `json:"write_off"`
	Comment  string          `json:"comment"`
}
