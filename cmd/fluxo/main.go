package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fluxo/internal/ai"
	"fluxo/internal/amqp"
	"fluxo/internal/config"
	apphttp "fluxo/internal/http"
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

	// AMQP is optional: without it, new transactions simply stay in the
	// verification bucket until a batch classification runs.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without async classification", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - transactions will classify via fluxo-worker")
		}
	} else {
		logger.Info("AMQP disabled - async classification off")
	}

	txService := services.NewTransactionService(sqliteRepo, amqpClient)

	// Gemini is optional too; every AI endpoint has a deterministic
	// fallback.
	var (
		classifier *ai.Classifier
		quickAdd   *ai.QuickAddParser
		summarizer *ai.Summarizer
	)
	if cfg.GeminiEnabled {
		gemini, err := ai.NewGeminiClient(context.Background(), cfg.GeminiModel)
		if err != nil {
			logger.Warn("Failed to initialize Gemini client, AI features degraded", "error", err)
		} else {
			classifier = ai.NewClassifier(gemini)
			quickAdd = ai.NewQuickAddParser(gemini)
			summarizer = ai.NewSummarizer(gemini)
			logger.Info("Gemini client initialized", "model", cfg.GeminiModel)
		}
	}
	if quickAdd == nil {
		quickAdd = ai.NewQuickAddParser(nil)
	}
	if summarizer == nil {
		summarizer = ai.NewSummarizer(nil)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Storage:    sqliteRepo,
		TxService:  txService,
		Classifier: classifier,
		QuickAdd:   quickAdd,
		Summarizer: summarizer,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fluxo server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
