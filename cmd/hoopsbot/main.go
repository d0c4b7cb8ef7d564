package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/omarshaarawi/hoopsbot/internal/api/espn"
	"github.com/omarshaarawi/hoopsbot/internal/api/fantasy"
	"github.com/omarshaarawi/hoopsbot/internal/bot"
	"github.com/omarshaarawi/hoopsbot/internal/chat"
	"github.com/omarshaarawi/hoopsbot/internal/config"
	"github.com/omarshaarawi/hoopsbot/internal/logger"
	"github.com/omarshaarawi/hoopsbot/internal/mcpserver"
	"github.com/omarshaarawi/hoopsbot/internal/repository/memory"
	"github.com/omarshaarawi/hoopsbot/internal/repository/rediscache"
	"github.com/omarshaarawi/hoopsbot/internal/repository/snapshot"
	"github.com/omarshaarawi/hoopsbot/internal/scheduler"
	"github.com/omarshaarawi/hoopsbot/internal/server"
	"github.com/omarshaarawi/hoopsbot/internal/service"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	if _, err := logger.New(cfg.LogLevel); err != nil {
		return err
	}

	espnClient := espn.NewClient(cfg.ESPNAPI)
	espnAPI := espn.NewAPI(espnClient)

	var cache fantasy.LeagueCache = memory.NewRepository()
	if cfg.Cache.RedisURL != "" {
		redisCache, err := rediscache.NewRepository(cfg.Cache.RedisURL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		cache = redisCache
		slog.Info("Caching league in redis")
	}
	fantasyAPI := fantasy.NewAPI(espnAPI, cache, cfg.Cache.LeagueTTL, cfg.Projection.FetchWorkers)

	store, err := snapshot.New(cfg.Storage.Backend, cfg.Storage.DataDir, cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Error closing snapshot store", "error", err)
		}
	}()

	fantasyService := service.NewFantasyService(fantasyAPI, store, service.Options{
		MaxCalendarDays: cfg.Projection.MaxCalendarDays,
		ZeroLookback:    cfg.Projection.ZeroLookback,
	})
	chatClient := chat.NewClient(cfg.Chat.APIKey, cfg.Chat.URLs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sendMessage func(string) error
	if cfg.TelegramBot.Enabled() {
		telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, bot.NewHandler(fantasyService, chatClient))
		if err != nil {
			return err
		}
		if cfg.TelegramBot.ChatID != 0 {
			sendMessage = telegramBot.SendMessage
		}

		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	} else {
		slog.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	sched, err := scheduler.NewScheduler(cfg.Scheduler, fantasyService, sendMessage)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	srv := server.New(fantasyService, chatClient, server.Options{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
		MCP:         mcpserver.Handler(mcpserver.NewServer(fantasyService, version)),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
	}

	return nil
}
