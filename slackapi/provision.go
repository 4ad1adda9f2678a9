package slackapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/onnwee/slack-irc-relay/telemetry"
)

// ErrAmbiguousChannel is returned when a name matches more than one channel.
// Provisioning refuses to proceed in that case: creating another channel with
// the same name, or unarchiving an arbitrary one of the matches, could act on
// the wrong conversation.
var ErrAmbiguousChannel = errors.New("ambiguous channel match")

// GetOrCreate returns a usable channel for name: an existing live match, an
// archived match after unarchiving it, or a freshly created channel (private
// when private is true). The call is idempotent with respect to the channel's
// existence.
func (c *Client) GetOrCreate(ctx context.Context, name string, private bool) (Channel, error) {
	res, err := c.LookupChannel(ctx, name)
	if err != nil {
		return Channel{}, err
	}
	if matches, ok := res.Ambiguous(); ok {
		return Channel{}, fmt.Errorf("%w: %q has %d matches", ErrAmbiguousChannel, name, len(matches))
	}
	if ch, ok := res.One(); ok {
		if !ch.IsArchived {
			return ch, nil
		}
		if err := c.Admin.UnArchiveConversationContext(ctx, ch.ID); err != nil {
			return Channel{}, fmt.Errorf("unarchive %s: %w", ch.ID, err)
		}
		ch.IsArchived = false
		telemetry.Count(telemetry.ChannelsRecovered)
		return ch, nil
	}
	created, err := c.Admin.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
		IsPrivate:   private,
	})
	if err != nil {
		return Channel{}, fmt.Errorf("conversations.create %q: %w", name, err)
	}
	if created == nil || created.ID == "" {
		return Channel{}, fmt.Errorf("conversations.create %q: malformed response, missing channel id", name)
	}
	telemetry.Count(telemetry.ChannelsProvisioned)
	return fromSlackChannel(*created), nil
}

// GetExistingOrProvision is the relay's entry point: it returns a live match
// without the archive round-trip when one exists, and defers to GetOrCreate
// otherwise. Ambiguous matches fail the same way they do in GetOrCreate.
func (c *Client) GetExistingOrProvision(ctx context.Context, name string, private bool) (Channel, error) {
	res, err := c.LookupChannel(ctx, name)
	if err != nil {
		return Channel{}, err
	}
	if matches, ok := res.Ambiguous(); ok {
		return Channel{}, fmt.Errorf("%w: %q has %d matches", ErrAmbiguousChannel, name, len(matches))
	}
	if ch, ok := res.One(); ok && !ch.IsArchived {
		return ch, nil
	}
	return c.GetOrCreate(ctx, name, private)
}
