package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shiftpay/pos-ledger/internal/domain/payroll"
	"github.com/shiftpay/pos-ledger/internal/platform/persistence"
)

// RosterRepository implements the payroll.RosterRepository interface for PostgreSQL
type RosterRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRosterRepository creates a new PostgreSQL shift-roster repository
func NewRosterRepository(logger *slog.Logger, db *persistence.PostgresDB) payroll.RosterRepository {
	return &RosterRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Assign puts an employee on a shift under a role. Re-assigning the same
// employee replaces the role.
func (r *RosterRepository) Assign(ctx context.Context, shiftID int64, entry *payroll.RosterEntry) error {
	query := `
		INSERT INTO shift_roster (shift_id, employee_id, employee_name, role_id, pay_group_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (shift_id, employee_id) DO UPDATE
		SET employee_name = EXCLUDED.employee_name,
		    role_id = EXCLUDED.role_id,
		    pay_group_id = EXCLUDED.pay_group_id
	`

	_, err := r.querier.Exec(ctx, query,
		shiftID,
		entry.EmployeeID,
		entry.EmployeeName,
		entry.RoleID,
		entry.PayGroupID,
	)
	if err != nil {
		r.logger.Error("Failed to assign employee to shift",
			"shift_id", shiftID,
			"employee_id", entry.EmployeeID,
			"error", err,
		)
		return fmt.Errorf("failed to assign employee to shift: %w", err)
	}

	return nil
}

// Remove takes an employee off a shift's roster
func (r *RosterRepository) Remove(ctx context.Context, shiftID, employeeID int64) error {
	query := `
		DELETE FROM shift_roster
		WHERE shift_id = $1 AND employee_id = $2
	`

	_, err := r.querier.Exec(ctx, query, shiftID, employeeID)
	if err != nil {
		r.logger.Error("Failed to remove employee from shift",
			"shift_id", shiftID,
			"employee_id", employeeID,
			"error", err,
		)
		return fmt.Errorf("failed to remove employee from shift: %w", err)
	}

	return nil
}

// ListByShift retrieves everyone on a shift's roster with their pay group
func (r *RosterRepository) ListByShift(ctx context.Context, shiftID int64) ([]payroll.RosterEntry, error) {
	query := `
		SELECT sr.employee_id, sr.employee_name, sr.role_id, sr.pay_group_id,
		       COALESCE(pg.name, '')
		FROM shift_roster sr
		LEFT JOIN pay_groups pg ON pg.id = sr.pay_group_id
		WHERE sr.shift_id = $1
		ORDER BY sr.employee_id
	`

	rows, err := r.querier.Query(ctx, query, shiftID)
	if err != nil {
		r.logger.Error("Failed to list shift roster", "shift_id", shiftID, "error", err)
		return nil, fmt.Errorf("failed to list shift roster: %w", err)
	}
	defer rows.Close()

	var entries []payroll.RosterEntry
	for rows.Next() {
		var entry payroll.RosterEntry
		err := rows.Scan(
			&entry.EmployeeID,
			&entry.EmployeeName,
			&entry.RoleID,
			&entry.PayGroupID,
			&entry.PayGroupName,
		)
		if err != nil {
			r.logger.Error("Failed to scan roster entry", "error", err)
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over shift roster: %w", err)
	}

	return entries, nil
}
