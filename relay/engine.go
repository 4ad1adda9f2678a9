// Package relay contains the bridge coordinator: it binds Slack channels to
// IRC correspondents at startup, provisions channels for new correspondents
// as they appear, and forwards messages between the two networks one event at
// a time.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/onnwee/slack-irc-relay/slackapi"
	"github.com/onnwee/slack-irc-relay/telemetry"
)

// SlackGateway is the slice of the Slack surface the engine needs. It is
// implemented by *slackapi.Client.
type SlackGateway interface {
	BotUserID(ctx context.Context) (string, error)
	ListByPrefix(ctx context.Context, prefix string) ([]slackapi.Channel, error)
	GetExistingOrProvision(ctx context.Context, name string, private bool) (slackapi.Channel, error)
	EnsureJoined(ctx context.Context, channelID string) (string, error)
	PostMessage(ctx context.Context, channelID, text string, opts slackapi.PostOptions) error
}

// IRCSender is the outbound IRC capability.
type IRCSender interface {
	Say(target, text string)
}

// Engine owns the channel directory and the two event handlers. Handlers for
// distinct events may run concurrently; the steps within one event always run
// in order. Steady-state failures are logged and the event dropped, never
// retried.
type Engine struct {
	slack  SlackGateway
	irc    IRCSender
	prefix string

	dir       *Directory
	provision singleflight.Group
	ready     atomic.Bool
}

// New builds an engine. prefix is the reserved channel-name prefix
// (typically "irc-").
func New(slack SlackGateway, irc IRCSender, prefix string) *Engine {
	return &Engine{
		slack:  slack,
		irc:    irc,
		prefix: prefix,
		dir:    NewDirectory(),
	}
}

// Start resolves the bot identity and builds the directory from all live
// channels carrying the reserved prefix. Any failure here is fatal to
// startup; the caller is expected to exit.
func (e *Engine) Start(ctx context.Context) error {
	if _, err := e.slack.BotUserID(ctx); err != nil {
		return fmt.Errorf("resolve bot identity: %w", err)
	}
	bound, err := e.BindChannels(ctx)
	if err != nil {
		return fmt.Errorf("bind channels: %w", err)
	}
	e.dir.Replace(bound)
	telemetry.SetDirectorySize(e.dir.Len())
	e.ready.Store(true)
	slog.Info("relay ready", slog.Int("channels", e.dir.Len()), slog.String("prefix", e.prefix))
	return nil
}

// Ready reports whether startup completed.
func (e *Engine) Ready() bool { return e.ready.Load() }

// DirectorySize returns the number of channel mappings.
func (e *Engine) DirectorySize() int { return e.dir.Len() }

// JoinOutcome is the per-channel result of the startup binding pass.
type JoinOutcome struct {
	ChannelID string
	Name      string
	Err       error
}

// BindChannels lists all channels with the reserved prefix, skips archived
// ones, and joins the bot to each live channel concurrently. Join failures
// are collected per channel and skipped; they never discard the successes.
// Only the listing itself can fail the whole pass.
func (e *Engine) BindChannels(ctx context.Context) (map[string]string, error) {
	channels, err := e.slack.ListByPrefix(ctx, e.prefix)
	if err != nil {
		return nil, err
	}
	live := make([]slackapi.Channel, 0, len(channels))
	for _, ch := range channels {
		if !ch.IsArchived {
			live = append(live, ch)
		}
	}

	outcomes := make([]JoinOutcome, len(live))
	var wg sync.WaitGroup
	for i, ch := range live {
		wg.Add(1)
		go func(i int, ch slackapi.Channel) {
			defer wg.Done()
			_, err := e.slack.EnsureJoined(ctx, ch.ID)
			outcomes[i] = JoinOutcome{ChannelID: ch.ID, Name: ch.Name, Err: err}
		}(i, ch)
	}
	wg.Wait()

	bound := make(map[string]string, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			slog.Warn("channel join failed; skipping",
				slog.String("channel_id", o.ChannelID),
				slog.String("name", o.Name),
				slog.Any("err", o.Err))
			continue
		}
		bound[o.ChannelID] = o.Name
	}
	return bound, nil
}

// HandleIRCMessage processes one IRC private message: provision or recover
// the irc-<from> channel, make sure the bot is joined, bind the mapping, and
// post the text to Slack under the sender's name with unfurling enabled.
// Provisioning is serialized per channel name so a burst of first messages
// from a new sender creates exactly one channel.
func (e *Engine) HandleIRCMessage(ctx context.Context, from, message string) {
	ctx, span := telemetry.StartSpan(ctx, "relay", "irc-message", attribute.String("from", from))
	defer span.End()

	name := e.prefix + from
	v, err, _ := e.provision.Do(name, func() (interface{}, error) {
		var ch slackapi.Channel
		var perr error
		telemetry.TimeFunc(telemetry.ProvisionDuration, func() {
			ch, perr = e.slack.GetExistingOrProvision(ctx, name, true)
		})
		return ch, perr
	})
	if err != nil {
		telemetry.RecordError(span, err)
		dropIRC(telemetry.DropReasonProvision, err, from, message)
		return
	}
	ch := v.(slackapi.Channel)

	if _, err := e.slack.EnsureJoined(ctx, ch.ID); err != nil {
		telemetry.RecordError(span, err)
		dropIRC(telemetry.DropReasonJoin, err, from, message)
		return
	}

	e.dir.Bind(ch.ID, name)
	telemetry.SetDirectorySize(e.dir.Len())

	err = e.slack.PostMessage(ctx, ch.ID, message, slackapi.PostOptions{
		Username:    from,
		UnfurlLinks: true,
		UnfurlMedia: true,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		dropIRC(telemetry.DropReasonPost, err, from, message)
		return
	}
	telemetry.Count(telemetry.IRCMessagesRelayed)
}

func dropIRC(reason string, err error, from, message string) {
	slog.Error("irc message dropped",
		slog.String("reason", reason),
		slog.Any("err", err),
		slog.String("from", from),
		slog.String("message", message))
	telemetry.CountDrop(reason)
}

// HandleSlackMessage processes one Slack message event. Events without an
// originating user are dropped silently: the relay's own postings come back
// on the event stream as bot messages and must not echo to IRC. Events for
// channels outside the directory are dropped at debug level. Everything else
// is sent to the IRC correspondent recovered by stripping the reserved
// prefix.
func (e *Engine) HandleSlackMessage(ctx context.Context, channelID, userID, text string) {
	if userID == "" {
		telemetry.CountDrop(telemetry.DropReasonNoUser)
		return
	}
	name, ok := e.dir.Lookup(channelID)
	if !ok {
		slog.Debug("message from unrecognized channel",
			slog.String("channel_id", channelID),
			slog.String("text", text))
		telemetry.CountDrop(telemetry.DropReasonUnknownChan)
		return
	}
	_, span := telemetry.StartSpan(ctx, "relay", "slack-message", attribute.String("channel_id", channelID))
	defer span.End()

	target := strings.TrimPrefix(name, e.prefix)
	e.irc.Say(target, text)
	telemetry.Count(telemetry.SlackMessagesRelayed)
}
