// Package server exposes the relay's HTTP surface: liveness and readiness
// probes, a JSON status snapshot, and Prometheus metrics. Requests get a
// correlation id and a tracing span for consistent logging.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/slack-irc-relay/telemetry"
)

// Sources supplies the live state the handlers report on. Nil funcs read as
// false/zero so a partially wired server (tests, the notifier binary) still
// serves.
type Sources struct {
	Ready         func() bool
	DirectorySize func() int
	IRCConnected  func() bool
	StartedAt     time.Time
}

func (s *Sources) ready() bool {
	return s.Ready != nil && s.Ready()
}

func (s *Sources) directorySize() int {
	if s.DirectorySize == nil {
		return 0
	}
	return s.DirectorySize()
}

func (s *Sources) ircConnected() bool {
	return s.IRCConnected != nil && s.IRCConnected()
}

// NewMux returns the HTTP handler with all routes.
func NewMux(src *Sources) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/readyz", src.handleReadyz)
	mux.HandleFunc("/status", src.handleStatus)

	// Correlation id injector + tracing span around every request.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corr := r.Header.Get("X-Correlation-ID")
		if corr == "" {
			corr = uuid.New().String()
		}
		ctx := telemetry.WithCorrelation(r.Context(), corr)
		w.Header().Set("X-Correlation-ID", corr)

		ctx, span := telemetry.StartSpan(ctx, "http-server", r.Method+" "+r.URL.Path)
		defer span.End()

		telemetry.LoggerWithCorr(ctx).Debug("request start",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("component", "http"))

		mux.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Start runs the HTTP server and shuts down gracefully on context cancellation.
func Start(ctx context.Context, src *Sources, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewMux(src),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", slog.Any("err", err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("http server error", slog.Any("err", err))
		return err
	}
	return nil
}
