package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mymenu-bot/bot"
	"mymenu-bot/config"
	"mymenu-bot/db"
	"mymenu-bot/server"
	"mymenu-bot/services"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// opsStatus feeds /health.
type opsStatus struct {
	catalog *services.CatalogClient
	bot     *bot.Bot
}

func (s opsStatus) BreakerState() string { return s.catalog.BreakerState() }
func (s opsStatus) SessionCount() int    { return s.bot.Sessions().Len() }

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(ctx, cfg, logger)
		return
	}

	if cfg.Telegram.Token == "" {
		logger.Fatal("TOKEN not set")
	}

	if cfg.DB.Enabled {
		if err := db.Init(ctx, cfg.DB); err != nil {
			logger.Fatal("db init", zap.Error(err))
		}
		defer db.Close()

		if cfg.DB.AutoMigrate {
			if err := applyMigrations(ctx, logger); err != nil {
				logger.Fatal("migrate", zap.Error(err))
			}
		}
	} else {
		logger.Info("database disabled, carts are kept in memory only")
	}

	catalog := services.NewCatalogClient(cfg.API, logger)

	b, err := bot.New(cfg, catalog, logger)
	if err != nil {
		logger.Fatal("bot", zap.Error(err))
	}

	go func() {
		router := server.NewRouter(opsStatus{catalog: catalog, bot: b})
		if err := server.Run(ctx, cfg.HTTP.Addr, router, logger); err != nil {
			logger.Error("ops server", zap.Error(err))
		}
	}()

	logger.Info("bot started", zap.String("menu_api", cfg.API.BaseURL))
	b.Start(ctx)
	logger.Info("bot stopped")
}

func runMigrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	if err := db.Init(ctx, cfg.DB); err != nil {
		logger.Fatal("db init", zap.Error(err))
	}
	defer db.Close()

	if err := applyMigrations(ctx, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
}
