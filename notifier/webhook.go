package notifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// WebhookPoster posts to a Slack incoming webhook, targeting a fixed channel.
type WebhookPoster struct {
	URL     string
	Channel string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

func (p *WebhookPoster) post(ctx context.Context, msg *slack.WebhookMessage) error {
	msg.Channel = p.Channel
	if p.HTTPClient != nil {
		return slack.PostWebhookCustomHTTPContext(ctx, p.URL, p.HTTPClient, msg)
	}
	return slack.PostWebhookContext(ctx, p.URL, msg)
}

// PostAttachment posts a single attachment under the given username.
func (p *WebhookPoster) PostAttachment(ctx context.Context, att slack.Attachment, username string) error {
	err := p.post(ctx, &slack.WebhookMessage{
		Username:    username,
		Attachments: []slack.Attachment{att},
	})
	if err != nil {
		return fmt.Errorf("webhook post attachment: %w", err)
	}
	return nil
}

// PostText posts a plain text message under the given username.
func (p *WebhookPoster) PostText(ctx context.Context, text, username string) error {
	err := p.post(ctx, &slack.WebhookMessage{
		Username: username,
		Text:     text,
	})
	if err != nil {
		return fmt.Errorf("webhook post text: %w", err)
	}
	return nil
}
