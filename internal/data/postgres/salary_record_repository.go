package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/shiftpay/pos-ledger/internal/domain/payroll"
	"github.com/shiftpay/pos-ledger/internal/platform/persistence"
)

// SalaryRecordRepository implements the payroll.RecordRepository interface for PostgreSQL
type SalaryRecordRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSalaryRecordRepository creates a new PostgreSQL salary-record repository
func NewSalaryRecordRepository(logger *slog.Logger, db *persistence.PostgresDB) payroll.RecordRepository {
	return &SalaryRecordRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so salary writes are
// atomic with outbox staging.
func (r *SalaryRecordRepository) WithTx(tx pgx.Tx) payroll.RecordRepository {
	return &SalaryRecordRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Upsert stores an evaluated salary record. Re-running a reconciliation
// replaces the computed figures; write_off and comment are manager input
// and deliberately survive the replace.
func (r *SalaryRecordRepository) Upsert(ctx context.Context, record *payroll.SalaryRecord) error {
	breakdown, err := json.Marshal(record.BonusBreakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal bonus breakdown: %w", err)
	}

	query := `
		INSERT INTO salary_records
			(shift_id, date, employee_id, employee_name, fixed, percent, bonus, total, bonus_breakdown, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (shift_id, employee_id) DO UPDATE
		SET date = EXCLUDED.date,
		    employee_name = EXCLUDED.employee_name,
		    fixed = EXCLUDED.fixed,
		    percent = EXCLUDED.percent,
		    bonus = EXCLUDED.bonus,
		    total = EXCLUDED.total,
		    bonus_breakdown = EXCLUDED.bonus_breakdown,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err = r.querier.QueryRow(ctx, query,
		record.ShiftID,
		record.Date,
		record.EmployeeID,
		record.EmployeeName,
		record.Fixed,
		record.Percent,
		record.Bonus,
		record.Total,
		breakdown,
		time.Now(),
	).Scan(&record.ID)
	if err != nil {
		r.logger.Error("Failed to upsert salary record",
			"shift_id", record.ShiftID,
			"employee_id", record.EmployeeID,
			"error", err,
		)
		return fmt.Errorf("failed to upsert salary record: %w", err)
	}

	return nil
}

// GetByShiftID retrieves the evaluated salary records of one shift
func (r *SalaryRecordRepository) GetByShiftID(ctx context.Context, shiftID int64) ([]payroll.SalaryRecord, error) {
	query := `
		SELECT id, shift_id, date, employee_id, employee_name, fixed, percent, bonus, total, bonus_breakdown, write_off, comment
		FROM salary_records
		WHERE shift_id = $1
		ORDER BY employee_id
	`

	return r.queryRecords(ctx, query, shiftID)
}

// GetByDate retrieves every salary record evaluated for a business date
func (r *SalaryRecordRepository) GetByDate(ctx context.Context, date string) ([]payroll.SalaryRecord, error) {
	query := `
		SELECT id, shift_id, date, employee_id, employee_name, fixed, percent, bonus, total, bonus_breakdown, write_off, comment
		FROM salary_records
		WHERE date = $1
		ORDER BY shift_id, employee_id
	`

	return r.queryRecords(ctx, query, date)
}

// SetWriteOff records a manual deduction with its reason.
// Returns ErrRecordNotFound if the record doesn't exist.
func (r *SalaryRecordRepository) SetWriteOff(ctx context.Context, id int64, writeOff decimal.Decimal, comment string) error {
	query := `
		UPDATE salary_records
		SET write_off = $1, comment = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query, writeOff, comment, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to set salary write-off", "id", id, "error", err)
		return fmt.Errorf("failed to set salary write-off: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrRecordNotFound{RecordID: id}
	}

	return nil
}

func (r *SalaryRecordRepository) queryRecords(ctx context.Context, query string, args ...any) ([]payroll.SalaryRecord, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query salary records", "error", err)
		return nil, fmt.Errorf("failed to query salary records: %w", err)
	}
	defer rows.Close()

	var records []payroll.SalaryRecord
	for rows.Next() {
		var record payroll.SalaryRecord
		var breakdown []byte
		err := rows.Scan(
			&record.ID,
			&record.ShiftID,
			&record.Date,
			&record.EmployeeID,
			&record.EmployeeName,
			&record.Fixed,
			&record.Percent,
			&record.Bonus,
			&record.Total,
			&breakdown,
			&record.WriteOff,
			&record.Comment,
		)
		if err != nil {
			r.logger.Error("Failed to scan salary record", "error", err)
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &record.BonusBreakdown); err != nil {
				return nil, fmt.Errorf("failed to unmarshal bonus breakdown: %w", err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over salary records: %w", err)
	}

	return records, nil
}
