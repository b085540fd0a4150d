package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiftpay/pos-ledger/internal/api_gateway"
	"github.com/shiftpay/pos-ledger/internal/api_gateway/service"
	"github.com/shiftpay/pos-ledger/internal/config"
	"github.com/shiftpay/pos-ledger/internal/data/mongo"
	"github.com/shiftpay/pos-ledger/internal/data/postgres"
	"github.com/shiftpay/pos-ledger/internal/logger"
	"github.com/shiftpay/pos-ledger/internal/platform/messaging/producers"
	"github.com/shiftpay/pos-ledger/internal/platform/persistence"
)

func main() {
	// Root context, canceled on shutdown
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Configuration first; everything else depends on it
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// No logger yet
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

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

	// Initialize Kafka producer for reconciliation requests
	kafkaProducer, err := producers.NewReconReqMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize API Gateway Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	ledgerRepo := mongo.NewLedgerRepository(log, mongoDB.Database())
	ruleRepo := postgres.NewSalaryRuleRepository(log, postgresDB)
	rosterRepo := postgres.NewRosterRepository(log, postgresDB)
	recordRepo := postgres.NewSalaryRecordRepository(log, postgresDB)

	// Initialize services
	reconService := service.NewReconService(log, kafkaProducer)
	ledgerService := service.NewLedgerService(log, ledgerRepo)
	payrollService := service.NewPayrollService(log, ruleRepo, rosterRepo, recordRepo)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, reconService, ledgerService, payrollService)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
