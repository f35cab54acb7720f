package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xaenox/comment-triage/internal/api"
	"github.com/xaenox/comment-triage/internal/classifier"
	"github.com/xaenox/comment-triage/internal/metrics"
	"github.com/xaenox/comment-triage/internal/notify"
	"github.com/xaenox/comment-triage/internal/storage"
	"github.com/xaenox/comment-triage/pkg/config"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the triage HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(*configPath)
		},
	}
}

func serve(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, storageConfig(cfg.Database), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if _, err := storage.Seed(ctx, store, logger); err != nil {
		return fmt.Errorf("failed to seed storage: %w", err)
	}

	m := metrics.New()

	gateway := classifier.NewGateway(classifier.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Timeout:     cfg.LLM.Timeout,
		TranslateTo: cfg.LLM.TranslateTo,
	}, logger, classifier.WithMetrics(m))

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.Telegram.Enabled() {
		tg, err := notify.NewTelegramNotifier(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID, logger)
		if err != nil {
			return err
		}
		notifier = tg
		logger.Info("Telegram alerts enabled", zap.Int64("chat_id", cfg.Notify.Telegram.ChatID))
	}

	server := api.NewServer(api.Config{
		Address:        cfg.Server.Address,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
	}, store, gateway, notifier, logger, m)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
