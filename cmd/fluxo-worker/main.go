package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fluxo/internal/ai"
	"fluxo/internal/amqp"
	"fluxo/internal/config"
	"fluxo/internal/storage"
	"fluxo/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting fluxo-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the classification worker")
		os.Exit(1)
	}
	if !cfg.GeminiEnabled {
		logger.Error("GEMINI_API_KEY is required for the classification worker")
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	gemini, err := ai.NewGeminiClient(context.Background(), cfg.GeminiModel)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}
	logger.Info("Gemini client initialized", "model", cfg.GeminiModel)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	classifyWorker := worker.NewClassifyWorker(sqliteRepo, ai.NewClassifier(gemini))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		handler := func(ctx context.Context, msg *amqp.ClassifyMessage) error {
			handleCtx, handleCancel := context.WithTimeout(ctx, cfg.ClassifyTimeout)
			defer handleCancel()
			return classifyWorker.HandleClassifyMessage(handleCtx, msg)
		}
		if err := amqpClient.ConsumeClassify(ctx, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
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
	logger.Info("fluxo-worker shutdown complete")
}
