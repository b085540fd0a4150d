// Package payroll evaluates per-shift salaries from the reconciled ledger:
// fixed rates per role, revenue percentages per workshop, and per-unit
// product bonuses pooled and split across pay groups.
package payroll

import (
	"github.com/shopspring/decimal"
)

// SalaryRule ties a role to its compensation terms. Percent and product
// bonuses only apply to sales from the rule's workshops; the fixed rate is
// unconditional once an employee works the shift under the role.
type SalaryRule struct {
	ID            int64
	RoleID        int64
	Percent       decimal.Decimal // revenue share, 0-100
	FixedPerShift decimal.Decimal
	Workshops     map[int64]struct{}
	// ProductBonuses maps a trimmed product name to the bonus paid per unit
	// sold from one of the rule's workshops.
	ProductBonuses map[string]decimal.Decimal
}

// RosterEntry records one employee working one shift under one role.
type RosterEntry struct {
	EmployeeID   int64
	EmployeeName string
	RoleID       int64
	// PayGroupID pools the role's earnings with other roles sharing the
	// group. Nil means the role pools only with itself.
	PayGroupID   *int64
	PayGroupName string
}

// BonusLine is one product's contribution to a pay group's bonus pot.
type BonusLine struct {
	ProductName string          `json:"product_name"`
	Count       decimal.Decimal `json:"count"`
	Total       decimal.Decimal `json:"total"`
}

// EmployeeSalaryResult is the evaluated salary of one employee for one
// shift. BonusBreakdown lists the group-level bonus pot per product; the
// Percent and Bonus fields hold this employee's even share of the pots.
type EmployeeSalaryResult struct {
	EmployeeID     int64
	EmployeeName   string
	Fixed          decimal.Decimal
	Percent        decimal.Decimal
	Bonus          decimal.Decimal
	Total          decimal.Decimal
	BonusBreakdown []BonusLine
}
