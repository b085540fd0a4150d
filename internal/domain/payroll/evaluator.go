package payroll

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
)

var percentDivisor = decimal.NewFromInt(100)

// saleKey regroups regular ledger rows for rule matching. Rules match on
// workshop and product name, not product id, so rows whose trimmed names
// collide are deliberately merged.
type saleKey struct {
	workshop    string
	productName string
}

type saleAgg struct {
	sum   decimal.Decimal
	count decimal.Decimal
}

// groupKey identifies a splitting pool: a real pay group when the role has
// one, otherwise a synthetic per-role pool.
type groupKey struct {
	payGroup bool
	id       int64
}

// Evaluate computes each rostered employee's salary for the shift described
// by the ledger. Only regular-channel sales count toward percentages and
// bonuses; delivery revenue belongs to the services, not the staff.
func Evaluate(l *ledger.ShiftLedger, rules []SalaryRule, roster []RosterEntry) map[int64]*EmployeeSalaryResult {
	sales := make(map[saleKey]*saleAgg)
	for _, e := range l.Regular {
		key := saleKey{workshop: e.Workshop, productName: strings.TrimSpace(e.ProductName)}
		agg, ok := sales[key]
		if !ok {
			agg = &saleAgg{}
			sales[key] = agg
		}
		agg.sum = agg.sum.Add(e.PaidSum)
		agg.count = agg.count.Add(e.Count)
	}

	rulesByRole := make(map[int64][]SalaryRule)
	for _, r := range rules {
		rulesByRole[r.RoleID] = append(rulesByRole[r.RoleID], r)
	}

	groups := make(map[groupKey][]RosterEntry)
	for _, re := range roster {
		key := groupKey{id: re.RoleID}
		if re.PayGroupID != nil {
			key = groupKey{payGroup: true, id: *re.PayGroupID}
		}
		groups[key] = append(groups[key], re)
	}

	results := make(map[int64]*EmployeeSalaryResult, len(roster))
	for _, re := range roster {
		fixed := decimal.Zero
		for _, r := range rulesByRole[re.RoleID] {
			fixed = fixed.Add(r.FixedPerShift)
		}
		results[re.EmployeeID] = &EmployeeSalaryResult{
			EmployeeID:   re.EmployeeID,
			EmployeeName: re.EmployeeName,
			Fixed:        fixed,
			Total:        fixed,
		}
	}

	for _, members := range groups {
		roleIDs := make(map[int64]struct{})
		for _, m := range members {
			roleIDs[m.RoleID] = struct{}{}
		}

		var groupRules []SalaryRule
		for _, r := range rules {
			if _, ok := roleIDs[r.RoleID]; ok {
				groupRules = append(groupRules, r)
			}
		}
		if len(groupRules) == 0 {
			continue
		}

		percentPot := decimal.Zero
		bonusPot := decimal.Zero
		breakdown := make(map[string]*BonusLine)

		for key, agg := range sales {
			workshopID, err := strconv.ParseInt(key.workshop, 10, 64)
			if err != nil {
				continue
			}

			countCredited := false
			for _, r := range groupRules {
				if _, ok := r.Workshops[workshopID]; !ok {
					continue
				}

				if r.Percent.IsPositive() {
					percentPot = percentPot.Add(agg.sum.Mul(r.Percent).Div(percentDivisor))
				}

				perUnit := r.ProductBonuses[key.productName]
				if !perUnit.IsPositive() {
					continue
				}
				productBonus := agg.count.Mul(perUnit)
				bonusPot = bonusPot.Add(productBonus)

				line, ok := breakdown[key.productName]
				if !ok {
					line = &BonusLine{ProductName: key.productName}
					breakdown[key.productName] = line
				}
				// The unit count is credited once per sale key even when
				// several rules pay a bonus on the same product.
				if !countCredited {
					line.Count = line.Count.Add(agg.count)
					countCredited = true
				}
				line.Total = line.Total.Add(productBonus)
			}
		}

		if !percentPot.IsPositive() && !bonusPot.IsPositive() {
			continue
		}

		headcount := decimal.NewFromInt(int64(len(members)))
		percentShare := percentPot.Div(headcount)
		bonusShare := bonusPot.Div(headcount)

		lines := make([]BonusLine, 0, len(breakdown))
		for _, line := range breakdown {
			lines = append(lines, *line)
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductName < lines[j].ProductName })

		for _, m := range members {
			res := results[m.EmployeeID]
			res.Percent = res.Percent.Add(percentShare)
			res.Bonus = res.Bonus.Add(bonusShare)
			res.Total = res.Total.Add(percentShare).Add(bonusShare)
			res.BonusBreakdown = lines
		}
	}

	return results
}
