package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
	"github.com/shiftpay/pos-ledger/internal/domain/outbox"
	"github.com/shiftpay/pos-ledger/internal/domain/payroll"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// TxRunner runs a function inside one database transaction, rolling back on
// error. *persistence.PostgresDB satisfies it.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// ReconJobServiceImpl implements the ReconJobService interface. For each
// request it rebuilds the day's shift ledgers from POS data, evaluates
// salaries against the current roster and rules, and stages the ledgers for
// the document store through the outbox, all within one database transaction
// per shift.
type ReconJobServiceImpl struct {
	txRunner   TxRunner
	builder    LedgerBuilder
	ruleRepo   payroll.RuleRepository
	rosterRepo payroll.RosterRepository
	recordRepo payroll.RecordRepository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewReconJobService creates a new reconciliation job service
func NewReconJobService(
	txRunner TxRunner,
	builder LedgerBuilder,
	ruleRepo payroll.RuleRepository,
	rosterRepo payroll.RosterRepository,
	recordRepo payroll.RecordRepository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) ReconJobService {
	return &ReconJobServiceImpl{
		txRunner:   txRunner,
		builder:    builder,
		ruleRepo:   ruleRepo,
		rosterRepo: rosterRepo,
		recordRepo: recordRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// ProcessReconciliation handles the core logic for one reconciliation request.
func (s *ReconJobServiceImpl) ProcessReconciliation(ctx context.Context, request *shared.ReconciliationRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Processing reconciliation", "date", request.Date, "spot_id", request.SpotID)

	ledgers, err := s.builder.Build(ctx, request.Date, request.SpotID)
	if err != nil {
		logger.Error("Failed to build shift ledgers", "date", request.Date, "spot_id", request.SpotID, "error", err)
		return fmt.Errorf("building ledgers for %s spot %d failed: %w", request.Date, request.SpotID, err)
	}

	if len(ledgers) == 0 {
		logger.Info("No shifts to reconcile", "date", request.Date, "spot_id", request.SpotID)
		return nil
	}

	rules, err := s.ruleRepo.List(ctx)
	if err != nil {
		logger.Error("Failed to load salary rules", "error", err)
		return fmt.Errorf("loading salary rules failed: %w", err)
	}

	for _, l := range ledgers {
		if err := s.reconcileShift(ctx, logger, l, rules); err != nil {
			return err
		}
	}

	logger.Info("Successfully processed reconciliation",
		"date", request.Date,
		"spot_id", request.SpotID,
		"shifts", len(ledgers),
	)
	return nil
}

// reconcileShift evaluates salaries for one shift and commits the salary
// records together with the ledger's outbox message.
func (s *ReconJobServiceImpl) reconcileShift(ctx context.Context, logger *slog.Logger, l *ledger.ShiftLedger, rules []payroll.SalaryRule) error {
	roster, err := s.rosterRepo.ListByShift(ctx, l.ShiftID)
	if err != nil {
		logger.Error("Failed to load shift roster", "shift_id", l.ShiftID, "error", err)
		return fmt.Errorf("loading roster for shift %d failed: %w", l.ShiftID, err)
	}

	results := payroll.Evaluate(l, rules, roster)

	message, err := outbox.NewMessage(l)
	if err != nil {
		logger.Error("Failed to build outbox message", "shift_id", l.ShiftID, "error", err)
		return fmt.Errorf("building outbox message for shift %d failed: %w", l.ShiftID, err)
	}

	// Stable write order across runs
	employeeIDs := make([]int64, 0, len(results))
	for id := range results {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Slice(employeeIDs, func(i, j int) bool { return employeeIDs[i] < employeeIDs[j] })

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		recordRepo := s.recordRepo.WithTx(tx)
		for _, employeeID := range employeeIDs {
			res := results[employeeID]
			record := &payroll.SalaryRecord{
				ShiftID:        l.ShiftID,
				Date:           l.Date,
				EmployeeID:     res.EmployeeID,
				EmployeeName:   res.EmployeeName,
				Fixed:          res.Fixed,
				Percent:        res.Percent,
				Bonus:          res.Bonus,
				Total:          res.Total,
				BonusBreakdown: res.BonusBreakdown,
			}
			if err := recordRepo.Upsert(ctx, record); err != nil {
				return fmt.Errorf("upserting salary record for employee %d: %w", res.EmployeeID, err)
			}
		}
		if err := s.outboxRepo.WithTx(tx).Upsert(ctx, message); err != nil {
			return fmt.Errorf("staging outbox message: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to commit reconciliation for shift", "shift_id", l.ShiftID, "error", err)
		return fmt.Errorf("committing reconciliation for shift %d failed: %w", l.ShiftID, err)
	}

	logger.Info("Shift reconciled",
		"shift_id", l.ShiftID,
		"date", l.Date,
		"salary_records", len(results),
	)
	return nil
}
