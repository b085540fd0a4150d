package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shiftpay/pos-ledger/internal/config"
	"github.com/shiftpay/pos-ledger/internal/data/mongo"
	"github.com/shiftpay/pos-ledger/internal/data/postgres"
	"github.com/shiftpay/pos-ledger/internal/logger"
	"github.com/shiftpay/pos-ledger/internal/platform/messaging/consumers"
	"github.com/shiftpay/pos-ledger/internal/platform/messaging/producers"
	"github.com/shiftpay/pos-ledger/internal/platform/persistence"
	"github.com/shiftpay/pos-ledger/internal/recon_processor/components"
	"github.com/shiftpay/pos-ledger/internal/recon_processor/consumer"
	"github.com/shiftpay/pos-ledger/internal/recon_processor/outbox_poller"
)

func main() {
	// Root context, canceled on shutdown
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Configuration first; everything else depends on it
	cfg, err := config.LoadConfig("recon_processor")
	if err != nil {
		// No logger yet
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Reconciliation Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	ruleRepo := postgres.NewSalaryRuleRepository(log, postgresDB)
	rosterRepo := postgres.NewRosterRepository(log, postgresDB)
	recordRepo := postgres.NewSalaryRecordRepository(log, postgresDB)
	ledgerRepo := mongo.NewLedgerRepository(log, mongoDB.Database())

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler should be nil-safe.

	// Initialize reconciliation job service with its POS ledger builder
	reconJobService, ledgerBuilder, err := components.CreateReconJobService(
		postgresDB,
		ruleRepo,
		rosterRepo,
		recordRepo,
		outboxRepo,
		log,
		cfg,
	)
	if err != nil {
		log.Error("Failed to initialize reconciliation job service", "error", err)
		os.Exit(1)
	}

	// Initialize reconciliation event handler
	reconEventHandler := consumer.NewReconEventHandler(
		log,
		reconJobService,
		dlqProducer,
	)

	// Initialize outbox poller
	ledgerPublisher := outbox_poller.NewLedgerDocPublisher(
		outboxRepo,
		ledgerRepo,
		log,
	)
	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		ledgerPublisher,
		log,
	)

	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.ReconTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.ReconTopic, cfg.Kafka.ConsumerGroup, reconEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shut down the POS history worker pool
	ledgerBuilder.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Reconciliation Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Reconciliation Processor shutdown completed with errors")
	} else {
		log.Info("Reconciliation Processor shutdown completed successfully")
	}
}
