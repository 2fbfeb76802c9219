package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/chat"
	"github.com/zanngujjar/ai-assistants/internal/cli"
	"github.com/zanngujjar/ai-assistants/internal/gateway"
	"github.com/zanngujjar/ai-assistants/internal/remote"
	"github.com/zanngujjar/ai-assistants/internal/store"
	"github.com/zanngujjar/ai-assistants/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	logger = logger.With(zap.String("session_id", uuid.New().String()))

	var configPath string

	rootCmd := &cobra.Command{
		Use:          "hive",
		Short:        "Manage and chat with hosted AI assistants and honeycomb knowledge stores",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, st, err := setup(configPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			app := cli.New(svc, st, cfg, logger, os.Stdin, os.Stdout)
			return app.Run(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	serveCmd := &cobra.Command{
		Use:   "serve-telegram",
		Short: "Answer Telegram chats as the configured assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, st, err := setup(configPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			poll := chat.PollConfig{
				Interval:    cfg.OpenAI.PollInterval(),
				MaxAttempts: cfg.OpenAI.PollMaxAttempts,
			}
			gw, err := gateway.New(cfg.Telegram.Token, cfg.Telegram.Assistant, svc, st, poll, logger)
			if err != nil {
				return err
			}
			logger.Info("telegram gateway started",
				zap.String("assistant", cfg.Telegram.Assistant))
			return gw.Start(cmd.Context())
		},
	}
	rootCmd.AddCommand(serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func setup(configPath string, logger *zap.Logger) (*config.Config, remote.Service, store.Store, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	var st store.Store
	switch cfg.Storage.Backend {
	case "postgres":
		logger.Info("Using PostgreSQL storage")
		st, err = store.NewPostgresStore(store.DatabaseConfig{
			Host:     cfg.Storage.Postgres.Host,
			Port:     cfg.Storage.Postgres.Port,
			User:     cfg.Storage.Postgres.User,
			Password: cfg.Storage.Postgres.Password,
			DBName:   cfg.Storage.Postgres.DBName,
			SSLMode:  cfg.Storage.Postgres.SSLMode,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}
	default:
		logger.Info("Using JSON document storage",
			zap.String("data_dir", cfg.Storage.DataDir))
		st = store.NewJSONStore(cfg.Storage.DataDir, cfg.Storage.AssistantsFile, cfg.Storage.HoneycombsFile)
	}

	svc := remote.NewOpenAIService(cfg.OpenAI.APIKey, logger)
	return cfg, svc, st, nil
}
