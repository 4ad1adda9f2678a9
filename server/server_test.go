package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testSources(ready, connected bool, size int) *Sources {
	return &Sources{
		Ready:         func() bool { return ready },
		DirectorySize: func() int { return size },
		IRCConnected:  func() bool { return connected },
		StartedAt:     time.Now().Add(-time.Minute),
	}
}

func TestHealthz(t *testing.T) {
	h := NewMux(testSources(false, false, 0))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Errorf("expected a correlation id header")
	}
}

func TestReadyz(t *testing.T) {
	cases := []struct {
		name      string
		ready     bool
		connected bool
		want      int
	}{
		{"not started", false, false, http.StatusServiceUnavailable},
		{"directory built, irc down", true, false, http.StatusServiceUnavailable},
		{"irc up, directory pending", false, true, http.StatusServiceUnavailable},
		{"fully up", true, true, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewMux(testSources(tc.ready, tc.connected, 0))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tc.want {
				t.Errorf("readyz = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	h := NewMux(testSources(true, true, 7))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !resp.Ready || !resp.IRCConnected || resp.DirectorySize != 7 {
		t.Errorf("unexpected status %+v", resp)
	}
	if resp.UptimeSeconds <= 0 {
		t.Errorf("uptime should be positive, got %f", resp.UptimeSeconds)
	}
}

func TestCorrelationIDReused(t *testing.T) {
	h := NewMux(testSources(true, true, 0))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Correlation-ID"); got != "corr-123" {
		t.Errorf("correlation id = %q, want corr-123", got)
	}
}

func TestNilSourcesServe(t *testing.T) {
	h := NewMux(&Sources{StartedAt: time.Now()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("nil sources readyz = %d, want 503", rec.Code)
	}
}
