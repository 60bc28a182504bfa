package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/api"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/config"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/graph"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/inference"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/metrics"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting KI Metadata Extended API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("caption_provider", cfg.CaptionProvider),
		slog.String("face_provider", cfg.FaceProvider),
		slog.String("graph_backend", cfg.GraphBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	classifier, err := inference.NewCaptionClassifier(cfg)
	if err != nil {
		return fmt.Errorf("failed to create caption classifier: %w", err)
	}

	analyzer, err := inference.NewFaceAnalyzer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create face analyzer: %w", err)
	}

	store, err := graph.NewStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create graph store: %w", err)
	}

	var notifier *webhook.Notifier
	if cfg.WebhookURL != "" {
		notifier = webhook.NewNotifier(webhook.Config{URL: cfg.WebhookURL, Secret: cfg.WebhookSecret}, logger)
	}

	router := api.NewRouter(logger, &api.Dependencies{
		Classifier:      classifier,
		Analyzer:        analyzer,
		Graph:           store,
		Logs:            audit.NewFileLogger(cfg.LogDir, logger),
		Metrics:         metrics.New(),
		Webhook:         notifier,
		GenderThreshold: cfg.GenderThreshold,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		serveErr = fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("graph store close error", slog.Any("error", err))
	}

	logger.Info("server stopped")
	return serveErr
}
