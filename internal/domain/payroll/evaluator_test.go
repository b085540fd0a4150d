package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ptr(v int64) *int64 { return &v }

func regularLedger(entries ...*ledger.Entry) *ledger.ShiftLedger {
	return &ledger.ShiftLedger{ShiftID: 1, Date: "2026-08-01", Regular: entries}
}

func TestEvaluate_FixedOnly(t *testing.T) {
	l := regularLedger(
		&ledger.Entry{ProductID: 1, ProductName: "Soup", Workshop: "3", Count: dec("2"), PaidSum: dec("80")},
	)
	rules := []SalaryRule{
		{ID: 1, RoleID: 10, FixedPerShift: dec("2000")},
	}
	roster := []RosterEntry{
		{EmployeeID: 100, EmployeeName: "Anna", RoleID: 10},
	}

	results := Evaluate(l, rules, roster)
	require.Len(t, results, 1)

	res := results[100]
	assert.True(t, res.Fixed.Equal(dec("2000")))
	assert.True(t, res.Percent.IsZero())
	assert.True(t, res.Bonus.IsZero())
	assert.True(t, res.Total.Equal(dec("2000")))
	assert.Empty(t, res.BonusBreakdown)
}

func TestEvaluate_PayGroupPoolSplit(t *testing.T) {
	l := regularLedger(
		&ledger.Entry{ProductID: 1, ProductName: "Soup", Workshop: "3", Count: dec("10"), PaidSum: dec("1000")},
		&ledger.Entry{ProductID: 2, ProductName: "Cake", Workshop: "3", Count: dec("4"), PaidSum: dec("400")},
	)
	// 10% of 1400 regular revenue plus 5 per Cake unit, pooled across the
	// pay group and split between its two members.
	rules := []SalaryRule{
		{
			ID:             1,
			RoleID:         10,
			Percent:        dec("10"),
			Workshops:      map[int64]struct{}{3: {}},
			ProductBonuses: map[string]decimal.Decimal{"Cake": dec("5")},
		},
	}
	roster := []RosterEntry{
		{EmployeeID: 100, EmployeeName: "Anna", RoleID: 10, PayGroupID: ptr(7)},
		{EmployeeID: 101, EmployeeName: "Boris", RoleID: 10, PayGroupID: ptr(7)},
	}

	results := Evaluate(l, rules, roster)
	require.Len(t, results, 2)

	for _, id := range []int64{100, 101} {
		res := results[id]
		assert.True(t, res.Percent.Equal(dec("70")), "employee %d percent share, got %s", id, res.Percent)
		assert.True(t, res.Bonus.Equal(dec("10")), "employee %d bonus share, got %s", id, res.Bonus)
		assert.True(t, res.Total.Equal(dec("80")))

		require.Len(t, res.BonusBreakdown, 1)
		assert.Equal(t, "Cake", res.BonusBreakdown[0].ProductName)
		assert.True(t, res.BonusBreakdown[0].Count.Equal(dec("4")))
		assert.True(t, res.BonusBreakdown[0].Total.Equal(dec("20")), "breakdown holds the group pot, not the share")
	}
}

func TestEvaluate_WorkshopFilter(t *testing.T) {
	l := regularLedger(
		&ledger.Entry{ProductID: 1, ProductName: "Soup", Workshop: "3", Count: dec("1"), PaidSum: dec("100")},
		&ledger.Entry{ProductID: 2, ProductName: "Pizza", Workshop: "4", Count: dec("1"), PaidSum: dec("500")},
		&ledger.Entry{ProductID: 3, ProductName: "Tea", Workshop: "bar", Count: dec("1"), PaidSum: dec("60")},
	)
	rules := []SalaryRule{
		{ID: 1, RoleID: 10, Percent: dec("10"), Workshops: map[int64]struct{}{3: {}}},
	}
	roster := []RosterEntry{
		{EmployeeID: 100, EmployeeName: "Anna", RoleID: 10},
	}

	results := Evaluate(l, rules, roster)
	res := results[100]

	// Workshop 4 is outside the rule and "bar" is not a numeric workshop id.
	assert.True(t, res.Percent.Equal(dec("10")), "got %s", res.Percent)
	assert.True(t, res.Total.Equal(dec("10")))
}

func TestEvaluate_ProductNameConflation(t *testing.T) {
	// Rows with the same trimmed name and workshop merge before rule
	// matching even when their product ids differ.
	l := regularLedger(
		&ledger.Entry{ProductID: 1, ProductName: "Cake", Workshop: "3", Count: dec("2"), PaidSum: dec("200")},
		&ledger.Entry{ProductID: 2, ProductName: " Cake ", Workshop: "3", Count: dec("3"), PaidSum: dec("300")},
	)
	rules := []SalaryRule{
		{
			ID:             1,
			RoleID:         10,
			Workshops:      map[int64]struct{}{3: {}},
			ProductBonuses: map[string]decimal.Decimal{"Cake": dec("10")},
		},
	}
	roster := []RosterEntry{
		{EmployeeID: 100, EmployeeName: "Anna", RoleID: 10},
	}

	results := Evaluate(l, rules, roster)
	res := results[100]

	assert.True(t, res.Bonus.Equal(dec("50")), "5 units x 10, got %s", res.Bonus)
	require.Len(t, res.BonusBreakdown, 1)
	assert.True(t, res.BonusBreakdown[0].Count.Equal(dec("5")))
}

func TestEvaluate_NoRulesForGroup(t *testing.T) {
	l := regularLedger(
		&ledger.Entry{ProductID: 1, ProductName: "Soup", Workshop: "3", Count: dec("1"), PaidSum: dec("100")},
	)
	roster := []RosterEntry{
		{EmployeeID: 100, EmployeeName: "Anna", RoleID: 10},
		{EmployeeID: 101, EmployeeName: "Boris", RoleID: 11},
	}

	results := Evaluate(l, nil, roster)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.True(t, res.Total.IsZero())
	}
}

func TestEvaluate_RoleWithoutPayGroupPoolsAlone(t *testing.T) {
	l := regularLedger(
		&ledger.Entry{ProductID: 1, ProductName: "Soup", Workshop: "3", Count: dec("1"), PaidSum: dec("100")},
	)
	rules := []SalaryRule{
		{ID: 1, RoleID: 10, Percent: dec("10"), Workshops: map[int64]struct{}{3: {}}},
		{ID: 2, RoleID: 11, Percent: dec("20"), Workshops: map[int64]struct{}{3: {}}},
	}
	roster := []RosterEntry{
		{EmployeeID: 100, EmployeeName: "Anna", RoleID: 10},
		{EmployeeID: 101, EmployeeName: "Boris", RoleID: 11},
	}

	results := Evaluate(l, rules, roster)

	// Separate roles without a pay group never see each other's rules.
	assert.True(t, results[100].Percent.Equal(dec("10")))
	assert.True(t, results[101].Percent.Equal(dec("20")))
}

func TestEvaluate_DeliveryExcluded(t *testing.T) {
	l := &ledger.ShiftLedger{
		ShiftID: 1,
		Delivery: []*ledger.Entry{
			{ProductID: 1, ProductName: "Pizza", Workshop: "3", Count: dec("5"), PaidSum: dec("900"), DeliveryService: "Wolt"},
		},
	}
	rules := []SalaryRule{
		{ID: 1, RoleID: 10, Percent: dec("10"), Workshops: map[int64]struct{}{3: {}}},
	}
	roster := []RosterEntry{
		{EmployeeID: 100, EmployeeName: "Anna", RoleID: 10},
	}

	results := Evaluate(l, rules, roster)
	assert.True(t, results[100].Total.IsZero())
}
