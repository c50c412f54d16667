package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/codebreaker/internal/api"
	"github.com/mcoot/codebreaker/internal/config"
	"github.com/mcoot/codebreaker/internal/factory"
	"github.com/mcoot/codebreaker/internal/logging"
	redisstorage "github.com/mcoot/codebreaker/internal/storage/redis"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFiles    []string
		host        string
		port        int
		storageType string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "codebreaker-server",
		Short: "Run the codebreaker game server",
		Long: `codebreaker-server hosts multiplayer code-breaking lobbies over HTTP,
pushing lobby snapshots to players over SSE and WebSocket.

Settings are read from .env files and the environment. Flags override both.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Host = host
			}
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("storage") {
				cfg.StorageType = storageType
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load (default .env)")
	cmd.Flags().StringVar(&host, "host", "", "Listen host (env: HOST)")
	cmd.Flags().IntVar(&port, "port", 8080, "Listen port (env: PORT)")
	cmd.Flags().StringVar(&storageType, "storage", config.StorageMemory, "Storage backend: memory, redis (env: STORAGE_TYPE)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error (env: LOG_LEVEL)")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger, syncLogs, err := logging.NewStdout(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = syncLogs() }()
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:          logger,
		StorageType:     cfg.StorageType,
		IdleTimeout:     cfg.IdleTimeout,
		JanitorInterval: cfg.JanitorInterval,
		LeaveGrace:      cfg.LeaveGrace,
	}
	if cfg.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.LobbyTTL = cfg.LobbyTTL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		LobbyController:   app.LobbyController,
		BotService:        app.BotService,
		ConnectionManager: app.ConnectionManager,
		AllowedOrigins:    cfg.AllowedOrigins,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)
	server.RegisterOnShutdown(app.DisconnectAll)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		return app.Janitor.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
