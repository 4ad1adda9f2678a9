package relay

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"
)

// RunRTM subscribes to the Slack real-time stream with the bot client and
// feeds message events into the engine until ctx is canceled. Connection
// management (reconnects, pings) is the RTM client's job; event-level
// failures are the engine's and never propagate out of the loop.
func RunRTM(ctx context.Context, bot *slack.Client, e *Engine) {
	rtm := bot.NewRTM()
	go rtm.ManageConnection()
	defer func() {
		if err := rtm.Disconnect(); err != nil {
			slog.Warn("rtm disconnect", slog.Any("err", err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-rtm.IncomingEvents:
			if !ok {
				return
			}
			switch ev := msg.Data.(type) {
			case *slack.ConnectedEvent:
				slog.Info("slack rtm connected", slog.Int("attempt", ev.ConnectionCount))
			case *slack.MessageEvent:
				e.HandleSlackMessage(ctx, ev.Channel, ev.User, ev.Text)
			case *slack.RTMError:
				slog.Error("slack rtm error", slog.Any("err", ev))
			case *slack.InvalidAuthEvent:
				slog.Error("slack rtm invalid auth; events will stop")
				return
			}
		}
	}
}
