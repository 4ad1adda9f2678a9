// Command slack-irc-relay bridges an IRC server and a Slack workspace.
// It:
//   - Loads configuration and initializes structured logging.
//   - Resolves the bot identity and binds all irc-prefixed Slack channels.
//   - Relays IRC private messages into per-sender private Slack channels,
//     provisioning them on demand, and relays Slack messages back to IRC.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status, /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
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
	"github.com/onnwee/slack-irc-relay/ircclient"
	"github.com/onnwee/slack-irc-relay/relay"
	"github.com/onnwee/slack-irc-relay/server"
	"github.com/onnwee/slack-irc-relay/slackapi"
	"github.com/onnwee/slack-irc-relay/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	initLogging()

	// Config: the relay refuses to start with missing credentials, before any
	// network activity.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config validation failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("slack-irc-relay", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slack := slackapi.New(cfg.SlackAdminToken, cfg.SlackBotToken)
	irc := ircclient.New(cfg)
	engine := relay.New(slack, irc, cfg.ChannelPrefix)

	// Startup: bot identity + channel binding. Any failure here is fatal.
	startCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	if err := engine.Start(startCtx); err != nil {
		cancel()
		slog.Error("relay startup failed", slog.Any("err", err))
		os.Exit(1)
	}
	cancel()

	// IRC: register the private-message handler before dialing so no early
	// message slips past, then connect.
	irc.OnPrivateMessage(func(from, message string) {
		engine.HandleIRCMessage(ctx, from, message)
	})
	if err := irc.Connect(ctx); err != nil {
		slog.Error("irc connect failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Slack real-time stream
	go relay.RunRTM(ctx, slack.Bot, engine)

	// HTTP server (health/readiness/status/metrics)
	src := &server.Sources{
		Ready:         engine.Ready,
		DirectorySize: engine.DirectorySize,
		IRCConnected:  irc.Connected,
		StartedAt:     time.Now(),
	}
	go func() {
		if err := server.Start(ctx, src, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}

// initLogging configures the default slog logger from LOG_LEVEL and
// LOG_FORMAT. Defaults: level=info, format=text.
func initLogging() {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()))
}
