package slackapi

import (
	"context"
	"fmt"
	"slices"

	"github.com/slack-go/slack"

	"github.com/onnwee/slack-irc-relay/telemetry"
)

// conversationMembers pages through the member list of a channel using the
// admin client, which is a member of every relay-managed private channel by
// virtue of having created it.
func (c *Client) conversationMembers(ctx context.Context, channelID string) ([]string, error) {
	var out []string
	params := &slack.GetUsersInConversationParameters{
		ChannelID: channelID,
		Limit:     200,
	}
	for {
		members, cursor, err := c.Admin.GetUsersInConversationContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("conversations.members %s: %w", channelID, err)
		}
		out = append(out, members...)
		if cursor == "" {
			return out, nil
		}
		params.Cursor = cursor
	}
}

// EnsureJoined makes sure the bot identity is a member of the channel,
// inviting it when absent. It returns the same channel id on success so calls
// chain naturally. A failed member lookup returns the error immediately; the
// invite is never attempted on unknown membership state.
func (c *Client) EnsureJoined(ctx context.Context, channelID string) (string, error) {
	botID, err := c.BotUserID(ctx)
	if err != nil {
		return "", err
	}
	members, err := c.conversationMembers(ctx, channelID)
	if err != nil {
		return "", err
	}
	if slices.Contains(members, botID) {
		return channelID, nil
	}
	if _, err := c.Admin.InviteUsersToConversationContext(ctx, channelID, botID); err != nil {
		return "", fmt.Errorf("invite bot to %s: %w", channelID, err)
	}
	telemetry.Count(telemetry.InvitesIssued)
	return channelID, nil
}
