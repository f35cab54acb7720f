package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xaenox/comment-triage/internal/storage"
	"github.com/xaenox/comment-triage/pkg/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "triage",
		Short:         "LLM-assisted triage of citizen feedback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(
		serveCmd(&configPath),
		seedCmd(&configPath),
		resetCmd(&configPath),
	)

	return cmd
}

func seedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample comments into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *configPath, func(store storage.Storage, logger *zap.Logger) error {
				n, err := storage.Seed(cmd.Context(), store, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d comments\n", n)
				return nil
			})
		},
	}
}

func resetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop all analyses and responses and mark every comment unreviewed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *configPath, func(store storage.Storage, logger *zap.Logger) error {
				if err := store.ResetDemo(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "demo data reset")
				return nil
			})
		},
	}
}

// withStore loads the configuration, opens the store for fn and closes it afterwards.
func withStore(ctx context.Context, configPath string, fn func(storage.Storage, *zap.Logger) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := storage.Open(ctx, storageConfig(cfg.Database), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	return fn(store, logger)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func storageConfig(cfg config.DatabaseConfig) storage.DatabaseConfig {
	return storage.DatabaseConfig{
		Driver:      cfg.Driver,
		Path:        cfg.Path,
		Host:        cfg.Host,
		Port:        cfg.Port,
		User:        cfg.User,
		Password:    cfg.Password,
		DBName:      cfg.DBName,
		SSLMode:     cfg.SSLMode,
		UseInMemory: cfg.UseInMemory,
		Debug:       cfg.Debug,
	}
}
