package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/swordgame-go/internal/api"
	"github.com/mcoot/swordgame-go/internal/config"
	"github.com/mcoot/swordgame-go/internal/factory"
	redisstorage "github.com/mcoot/swordgame-go/internal/storage/redis"
	"github.com/mcoot/swordgame-go/internal/transport/ws"
	"github.com/mcoot/swordgame-go/internal/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	// Set up logging with JSON output
	level, _ := cfg.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		RandomSeed:  cfg.RandomSeed,
		WebSocket: ws.Options{
			MessageRate:  cfg.MessageRate,
			MessageBurst: cfg.MessageBurst,
		},
		Bots: factory.BotConfig{
			Count:    cfg.Bots,
			Strategy: cfg.BotStrategy,
			Interval: cfg.BotInterval,
		},
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		logger.Error("failed to start application", slog.String("error", err.Error()))
		return 1
	}

	staticDir := cfg.StaticDir
	if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
		logger.Warn("static directory not found, client page disabled", slog.String("dir", staticDir))
		staticDir = ""
	}

	router := web.NewRouter(web.RouterConfig{
		Logger:    logger,
		Hub:       app.Hub,
		Sink:      app.Dispatcher,
		Feed:      app.Feed,
		Greeting:  app.Greeting(),
		Players:   app.Dispatcher,
		StaticDir: staticDir,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()), slog.String("storage", cfg.StorageType))

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
		stop()
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	// Closing the hub disconnects every player; the dispatcher stops alongside it
	app.Wait()
	logger.Info("server stopped")

	return exitCode
}
