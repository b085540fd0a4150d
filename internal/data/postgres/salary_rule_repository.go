package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/shiftpay/pos-ledger/internal/domain/payroll"
	"github.com/shiftpay/pos-ledger/internal/platform/persistence"
)

// SalaryRuleRepository implements the payroll.RuleRepository interface for PostgreSQL
type SalaryRuleRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSalaryRuleRepository creates a new PostgreSQL salary-rule repository
func NewSalaryRuleRepository(logger *slog.Logger, db *persistence.PostgresDB) payroll.RuleRepository {
	return &SalaryRuleRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new salary rule with its workshop set and product bonuses
func (r *SalaryRuleRepository) Create(ctx context.Context, rule *payroll.SalaryRule) error {
	query := `
		INSERT INTO salary_rules (role_id, percent, fixed_per_shift, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`

	now := time.Now()
	err := r.querier.QueryRow(ctx, query,
		rule.RoleID,
		rule.Percent,
		rule.FixedPerShift,
		now,
	).Scan(&rule.ID)
	if err != nil {
		r.logger.Error("Failed to create salary rule", "role_id", rule.RoleID, "error", err)
		return fmt.Errorf("failed to create salary rule: %w", err)
	}

	if err := r.replaceAssociations(ctx, rule); err != nil {
		return err
	}

	return nil
}

// GetByID retrieves one rule with its workshops and product bonuses.
// Returns ErrRuleNotFound if the rule doesn't exist.
func (r *SalaryRuleRepository) GetByID(ctx context.Context, id int64) (*payroll.SalaryRule, error) {
	query := `
		SELECT id, role_id, percent, fixed_per_shift
		FROM salary_rules
		WHERE id = $1
	`

	var rule payroll.SalaryRule
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.RoleID,
		&rule.Percent,
		&rule.FixedPerShift,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrRuleNotFound{RuleID: id}
		}
		r.logger.Error("Failed to get salary rule", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get salary rule: %w", err)
	}

	rules := []payroll.SalaryRule{rule}
	if err := r.loadAssociations(ctx, rules); err != nil {
		return nil, err
	}
	return &rules[0], nil
}

// List retrieves all salary rules with their workshops and product bonuses
func (r *SalaryRuleRepository) List(ctx context.Context) ([]payroll.SalaryRule, error) {
	query := `
		SELECT id, role_id, percent, fixed_per_shift
		FROM salary_rules
		ORDER BY id
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list salary rules", "error", err)
		return nil, fmt.Errorf("failed to list salary rules: %w", err)
	}
	defer rows.Close()

	var rules []payroll.SalaryRule
	for rows.Next() {
		var rule payroll.SalaryRule
		if err := rows.Scan(&rule.ID, &rule.RoleID, &rule.Percent, &rule.FixedPerShift); err != nil {
			r.logger.Error("Failed to scan salary rule", "error", err)
			return nil, fmt.Errorf("failed to scan salary rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over salary rules: %w", err)
	}

	if err := r.loadAssociations(ctx, rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// Update rewrites a rule and replaces its workshop set and product bonuses.
// Returns ErrRuleNotFound if the rule doesn't exist.
func (r *SalaryRuleRepository) Update(ctx context.Context, rule *payroll.SalaryRule) error {
	query := `
		UPDATE salary_rules
		SET role_id = $1, percent = $2, fixed_per_shift = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query,
		rule.RoleID,
		rule.Percent,
		rule.FixedPerShift,
		time.Now(),
		rule.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update salary rule", "id", rule.ID, "error", err)
		return fmt.Errorf("failed to update salary rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrRuleNotFound{RuleID: rule.ID}
	}

	return r.replaceAssociations(ctx, rule)
}

// Delete removes a rule; its workshops and bonuses go with it via cascade.
// Returns ErrRuleNotFound if the rule doesn't exist.
func (r *SalaryRuleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM salary_rules WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete salary rule", "id", id, "error", err)
		return fmt.Errorf("failed to delete salary rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrRuleNotFound{RuleID: id}
	}
	return nil
}

// replaceAssociations rewrites the rule's workshop set and product bonuses
func (r *SalaryRuleRepository) replaceAssociations(ctx context.Context, rule *payroll.SalaryRule) error {
	if _, err := r.querier.Exec(ctx, `DELETE FROM salary_rule_workshops WHERE rule_id = $1`, rule.ID); err != nil {
		return fmt.Errorf("failed to clear rule workshops: %w", err)
	}
	for workshopID := range rule.Workshops {
		_, err := r.querier.Exec(ctx,
			`INSERT INTO salary_rule_workshops (rule_id, workshop_id) VALUES ($1, $2)`,
			rule.ID, workshopID,
		)
		if err != nil {
			return fmt.Errorf("failed to add rule workshop %d: %w", workshopID, err)
		}
	}

	if _, err := r.querier.Exec(ctx, `DELETE FROM salary_rule_products WHERE rule_id = $1`, rule.ID); err != nil {
		return fmt.Errorf("failed to clear rule product bonuses: %w", err)
	}
	for productName, fixed := range rule.ProductBonuses {
		_, err := r.querier.Exec(ctx,
			`INSERT INTO salary_rule_products (rule_id, product_name, fixed_per_unit) VALUES ($1, $2, $3)`,
			rule.ID, productName, fixed,
		)
		if err != nil {
			return fmt.Errorf("failed to add rule product bonus %q: %w", productName, err)
		}
	}

	return nil
}

// loadAssociations fills Workshops and ProductBonuses for the given rules
func (r *SalaryRuleRepository) loadAssociations(ctx context.Context, rules []payroll.SalaryRule) error {
	if len(rules) == 0 {
		return nil
	}

	index := make(map[int64]*payroll.SalaryRule, len(rules))
	ids := make([]int64, 0, len(rules))
	for i := range rules {
		rules[i].Workshops = make(map[int64]struct{})
		rules[i].ProductBonuses = make(map[string]decimal.Decimal)
		index[rules[i].ID] = &rules[i]
		ids = append(ids, rules[i].ID)
	}

	rows, err := r.querier.Query(ctx,
		`SELECT rule_id, workshop_id FROM salary_rule_workshops WHERE rule_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load rule workshops: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ruleID, workshopID int64
		if err := rows.Scan(&ruleID, &workshopID); err != nil {
			return fmt.Errorf("failed to scan rule workshop: %w", err)
		}
		if rule, ok := index[ruleID]; ok {
			rule.Workshops[workshopID] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating over rule workshops: %w", err)
	}

	bonusRows, err := r.querier.Query(ctx,
		`SELECT rule_id, product_name, fixed_per_unit FROM salary_rule_products WHERE rule_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load rule product bonuses: %w", err)
	}
	defer bonusRows.Close()
	for bonusRows.Next() {
		var ruleID int64
		var productName string
		var fixed decimal.Decimal
		if err := bonusRows.Scan(&ruleID, &productName, &fixed); err != nil {
			return fmt.Errorf("failed to scan rule product bonus: %w", err)
		}
		if rule, ok := index[ruleID]; ok {
			rule.ProductBonuses[productName] = fixed
		}
	}
	if err := bonusRows.Err(); err != nil {
		return fmt.Errorf("error iterating over rule product bonuses: %w", err)
	}

	return nil
}
