package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fluxo/internal/amqp"
	"fluxo/internal/config"
	"fluxo/internal/services"
	"fluxo/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	// AMQP so materialized transactions still go through classification.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	txService := services.NewTransactionService(sqliteRepo, amqpClient)
	processor := services.NewRecurringProcessor(sqliteRepo, txService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	// Run once on startup so a stopped worker catches up immediately.
	if count, err := processor.ProcessDue(ctx, time.Now()); err != nil {
		logger.Error("Initial processing failed", "error", err)
	} else {
		logger.Info("Initial processing complete", "transactions_created", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				count, err := processor.ProcessDue(ctx, now)
				if err != nil {
					logger.Error("Periodic processing failed", "error", err)
				} else {
					logger.Info("Periodic processing complete",
						"transactions_created", count,
						"next_check", now.Add(cfg.RecurringInterval).Format("15:04:05"))
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Recurring-worker shutdown complete")
}
