package components

import (
	"log/slog"

	"github.com/shiftpay/pos-ledger/internal/config"
	"github.com/shiftpay/pos-ledger/internal/domain/outbox"
	"github.com/shiftpay/pos-ledger/internal/domain/payroll"
	"github.com/shiftpay/pos-ledger/internal/platform/persistence"
	"github.com/shiftpay/pos-ledger/internal/posclient"
	"github.com/shiftpay/pos-ledger/internal/recon"
	"github.com/shiftpay/pos-ledger/internal/recon_processor/service"
)

// CreateReconJobService creates a new ReconJobService with all its
// dependencies. The returned builder owns the POS history worker pool and
// must be shut down when the processor stops.
func CreateReconJobService(
	pgDB *persistence.PostgresDB,
	ruleRepo payroll.RuleRepository,
	rosterRepo payroll.RosterRepository,
	recordRepo payroll.RecordRepository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) (service.ReconJobService, *recon.Builder, error) {
	posClient := posclient.NewClient(&cfg.POS, logger.With("component", "pos_client"))

	builder, err := recon.NewBuilder(
		posClient,
		cfg.POS.HistoryConcurrency,
		logger.With("component", "ledger_builder"),
	)
	if err != nil {
		return nil, nil, err
	}

	jobService := service.NewReconJobService(
		pgDB,
		builder,
		ruleRepo,
		rosterRepo,
		recordRepo,
		outboxRepo,
		logger,
	)

	logger.Info("Created reconciliation job service", "history_concurrency", cfg.POS.HistoryConcurrency)
	return jobService, builder, nil
}
