package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tradedocs/termsheet-extractor/internal/common"
	"github.com/tradedocs/termsheet-extractor/internal/document"
	"github.com/tradedocs/termsheet-extractor/internal/llm/groq"
	"github.com/tradedocs/termsheet-extractor/internal/ner"
	"github.com/tradedocs/termsheet-extractor/internal/repository"
	"github.com/tradedocs/termsheet-extractor/internal/rules"
	"github.com/tradedocs/termsheet-extractor/internal/server"
)

func main() {
	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Job history is optional: no DB_URL, no persistence.
	var jobs repository.JobStore
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, repository.Config{
			DSN:         cfg.Database.DSN,
			MaxConns:    cfg.Database.MaxConns,
			DialTimeout: cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer repository.Close(db, logger)

		store := repository.NewJobStore(db, logger)
		if err := store.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		jobs = store
	} else {
		logger.Info("DB_URL not set; job history disabled")
	}

	loader := document.NewLoader(logger)
	engine := rules.NewEngine(logger)
	nerx := ner.NewProseExtractor(logger)
	pipeline := groq.NewClient(groq.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	svc := server.NewService(loader, engine, nerx, pipeline, server.Options{
		Jobs:           jobs,
		TmpDir:         cfg.TmpDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           svc.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
