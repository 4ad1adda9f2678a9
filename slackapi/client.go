package slackapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/slack-go/slack"
)

// Client holds the two credential scopes the relay operates with. The admin
// client carries the elevated scopes for creating, unarchiving, and inviting
// into private channels; the bot client is the identity that posts messages
// and reads the public channel listing.
type Client struct {
	Admin *slack.Client
	Bot   *slack.Client

	mu    sync.Mutex
	botID string
}

// New builds a Client from the two tokens. Extra slack options (custom API
// URL, HTTP client) apply to both underlying clients; tests use them to point
// at a mock server.
func New(adminToken, botToken string, opts ...slack.Option) *Client {
	return &Client{
		Admin: slack.New(adminToken, opts...),
		Bot:   slack.New(botToken, opts...),
	}
}

// BotUserID resolves the relay's own Slack user id via auth.test, caching the
// result for the process lifetime. All membership checks use this id.
func (c *Client) BotUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.botID != "" {
		return c.botID, nil
	}
	resp, err := c.Bot.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("auth.test: %w", err)
	}
	if resp.UserID == "" {
		return "", fmt.Errorf("auth.test: malformed response, missing user_id")
	}
	c.botID = resp.UserID
	return c.botID, nil
}

// PostOptions carries the presentation knobs for PostMessage.
type PostOptions struct {
	Username    string
	UnfurlLinks bool
	UnfurlMedia bool
}

// PostMessage posts text to a channel as the bot, with the given username
// overlay and unfurling behavior.
func (c *Client) PostMessage(ctx context.Context, channelID, text string, opts PostOptions) error {
	_, _, err := c.Bot.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionPostMessageParameters(slack.PostMessageParameters{
			Username:    opts.Username,
			UnfurlLinks: opts.UnfurlLinks,
			UnfurlMedia: opts.UnfurlMedia,
		}),
	)
	if err != nil {
		return fmt.Errorf("chat.postMessage to %s: %w", channelID, err)
	}
	return nil
}
