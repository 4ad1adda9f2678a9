// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons recorded on RelayDropped.
const (
	DropReasonProvision   = "provision_failed"
	DropReasonJoin        = "join_failed"
	DropReasonPost        = "post_failed"
	DropReasonUnknownChan = "unknown_channel"
	DropReasonNoUser      = "no_user"
)

var (
	once sync.Once

	// Counters
	IRCMessagesRelayed   prometheus.Counter
	SlackMessagesRelayed prometheus.Counter
	ChannelsProvisioned  prometheus.Counter
	ChannelsRecovered    prometheus.Counter
	InvitesIssued        prometheus.Counter
	RelayDropped         *prometheus.CounterVec
	FeedItemsPosted      prometheus.Counter
	FeedPollErrors       prometheus.Counter

	// Histograms (seconds)
	ProvisionDuration prometheus.Observer

	// Gauges
	DirectorySizeGauge prometheus.Gauge
	IRCConnectedGauge  prometheus.Gauge // 1=connected,0=not
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		IRCMessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_irc_messages_total", Help: "Private messages relayed from IRC to Slack"})
		SlackMessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_slack_messages_total", Help: "Messages relayed from Slack to IRC"})
		ChannelsProvisioned = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_channels_provisioned_total", Help: "Slack channels created for new IRC correspondents"})
		ChannelsRecovered = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_channels_recovered_total", Help: "Archived Slack channels recovered by unarchiving"})
		InvitesIssued = promauto.NewCounter(prometheus.CounterOpts{Name: "relay_invites_issued_total", Help: "Bot invites issued during membership reconciliation"})
		RelayDropped = promauto.NewCounterVec(prometheus.CounterOpts{Name: "relay_dropped_events_total", Help: "Events dropped by the relay, by reason"}, []string{"reason"})
		FeedItemsPosted = promauto.NewCounter(prometheus.CounterOpts{Name: "notifier_feed_items_posted_total", Help: "New RSS items posted to Slack"})
		FeedPollErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "notifier_feed_poll_errors_total", Help: "Feed fetch/parse failures"})
		ProvisionDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "relay_provision_duration_seconds", Help: "Channel provisioning duration seconds", Buckets: prometheus.DefBuckets})
		DirectorySizeGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "relay_directory_size", Help: "Number of channel to IRC correspondent mappings"})
		IRCConnectedGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "relay_irc_connected", Help: "IRC connection up=1 down=0"})
	})
}

// Count increments c if metrics are initialized.
func Count(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// CountDrop increments the dropped-event counter for a reason if metrics are initialized.
func CountDrop(reason string) {
	if RelayDropped != nil {
		RelayDropped.WithLabelValues(reason).Inc()
	}
}

// SetDirectorySize records the current number of directory entries.
func SetDirectorySize(n int) {
	if DirectorySizeGauge != nil {
		DirectorySizeGauge.Set(float64(n))
	}
}

// SetIRCConnected sets the IRC connection gauge.
func SetIRCConnected(up bool) {
	if IRCConnectedGauge != nil {
		if up {
			IRCConnectedGauge.Set(1)
		} else {
			IRCConnectedGauge.Set(0)
		}
	}
}

// TimeFunc measures the duration of fn and records it in obs if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context carrying the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with the corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
