package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		slog.Warn("healthz write failed", slog.Any("err", err))
	}
}

// handleReadyz reports ready only once the directory is built and the IRC
// connection is up; until then load balancers should hold traffic.
func (s *Sources) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if s.ready() && s.ircConnected() {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ready")); err != nil {
			slog.Warn("readyz write failed", slog.Any("err", err))
		}
		return
	}
	http.Error(w, "not ready", http.StatusServiceUnavailable)
}

type statusResponse struct {
	Ready         bool    `json:"ready"`
	IRCConnected  bool    `json:"irc_connected"`
	DirectorySize int     `json:"directory_size"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (s *Sources) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Ready:         s.ready(),
		IRCConnected:  s.ircConnected(),
		DirectorySize: s.directorySize(),
		UptimeSeconds: time.Since(s.StartedAt).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("status encode failed", slog.Any("err", err))
	}
}
