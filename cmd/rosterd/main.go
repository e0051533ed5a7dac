package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pdenton/rosterd/internal/api"
	"github.com/pdenton/rosterd/internal/config"
	"github.com/pdenton/rosterd/internal/factory"
	"github.com/pdenton/rosterd/internal/services/adminauth"
	"github.com/pdenton/rosterd/internal/services/flush"
	"github.com/pdenton/rosterd/internal/services/gate"
	"github.com/pdenton/rosterd/internal/services/roster"
	redisstorage "github.com/pdenton/rosterd/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gateCfg := gate.DefaultConfig()
	gateCfg.CheckBans = cfg.CheckBans
	gateCfg.CheckWhitelist = cfg.CheckWhitelist
	if cfg.WhitelistRejection != "" {
		gateCfg.RejectionTemplate = cfg.WhitelistRejection
	}

	factoryCfg := factory.Config{
		StorageType:  cfg.StorageType,
		DataPath:     cfg.DataPath,
		RosterConfig: roster.Config{MinSessionDwell: cfg.MinSessionDwell()},
		GateConfig:   gateCfg,
		AuthConfig: adminauth.Config{
			Username:     cfg.AdminUsername,
			PasswordHash: cfg.AdminPasswordHash,
		},
		FlushConfig:        flush.Config{Interval: cfg.FlushInterval},
		WipePendingOnStart: cfg.WipePending,
		Logger:             logger,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(context.Background(), factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !app.AuthService.Enabled() {
		logger.Warn("no admin account configured, API authentication is disabled")
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		RosterService: app.RosterService,
		LedgerService: app.LedgerService,
		GateService:   app.GateService,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Run the flush scheduler; it performs a final flush on shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Scheduler.Run(ctx)
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			cancel()
			wg.Wait()
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	wg.Wait()
	logger.Info("server stopped")
}
