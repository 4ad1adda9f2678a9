// Command notifier runs the RSS-to-Slack pipeline: poll configured feeds,
// dedup item ids through Redis, and post new items to a Slack incoming
// webhook. It is deployed separately from the relay.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/slack-irc-relay/config"
	"github.com/onnwee/slack-irc-relay/notifier"
	"github.com/onnwee/slack-irc-relay/telemetry"
)

func main() {
	_ = godotenv.Load(".env")

	lvl := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateNotifierReady(); err != nil {
		slog.Error("config validation failed", slog.Any("err", err))
		os.Exit(1)
	}

	feeds, err := notifier.ParseFeedList(cfg.RSSURLs, cfg.RSSFeedNames)
	if err != nil {
		slog.Error("feed configuration invalid", slog.Any("err", err))
		os.Exit(1)
	}

	telemetry.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dedup := notifier.NewRedisDeduper(cfg.RedisHost, cfg.SlackChannel)
	defer func() {
		if err := dedup.Close(); err != nil {
			slog.Warn("redis close failed", slog.Any("err", err))
		}
	}()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := dedup.Ping(pingCtx); err != nil {
		cancel()
		slog.Error("redis unreachable", slog.String("host", cfg.RedisHost), slog.Any("err", err))
		os.Exit(1)
	}
	cancel()

	post := &notifier.WebhookPoster{URL: cfg.SlackWebhookURL, Channel: cfg.SlackChannel}
	n := notifier.New(feeds, dedup, post, time.Duration(cfg.RSSRefreshMin)*time.Minute)

	slog.Info("notifier started", slog.Int("feeds", len(feeds)), slog.Int("refresh_minutes", cfg.RSSRefreshMin))
	n.Run(ctx)
	slog.Info("shutting down")
}
