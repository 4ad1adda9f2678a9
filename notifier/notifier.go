// Package notifier implements the RSS-to-Slack pipeline: poll a set of feeds,
// drop items already posted (tracked in a Redis set), and push the new ones
// to a Slack incoming webhook as attachments. It runs as its own binary
// (cmd/notifier), independent of the relay.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mmcdole/gofeed"
	"github.com/slack-go/slack"

	"github.com/onnwee/slack-irc-relay/telemetry"
)

// attachmentColor is the accent color on posted feed items.
const attachmentColor = "#622569"

// Feed pairs a display name with a feed URL.
type Feed struct {
	Name string
	URL  string
}

// ParseFeedList zips the comma-separated URL and name lists from config.
// A length mismatch is a configuration error.
func ParseFeedList(urls, names string) ([]Feed, error) {
	urlList := strings.Split(urls, ",")
	nameList := strings.Split(names, ",")
	if len(urlList) != len(nameList) {
		return nil, fmt.Errorf("feed name/url mismatch: %d urls, %d names", len(urlList), len(nameList))
	}
	feeds := make([]Feed, len(urlList))
	for i := range urlList {
		feeds[i] = Feed{Name: strings.TrimSpace(nameList[i]), URL: strings.TrimSpace(urlList[i])}
	}
	return feeds, nil
}

// Item is one feed entry flattened to its Slack form.
type Item struct {
	FeedName   string
	ID         string
	Attachment slack.Attachment
}

// Deduper answers whether an item id was seen before, recording it as seen.
type Deduper interface {
	Seen(ctx context.Context, id string) (bool, error)
}

// Poster delivers notifications to Slack.
type Poster interface {
	PostAttachment(ctx context.Context, att slack.Attachment, username string) error
	PostText(ctx context.Context, text, username string) error
}

// Notifier polls feeds on an interval and posts unseen items.
type Notifier struct {
	Feeds   []Feed
	Dedup   Deduper
	Post    Poster
	Refresh time.Duration
	// Pace is the delay between consecutive posts in one cycle, so a burst of
	// new items doesn't hit the webhook all at once.
	Pace time.Duration

	parser *gofeed.Parser
}

// New builds a notifier with the standard feed parser.
func New(feeds []Feed, dedup Deduper, post Poster, refresh time.Duration) *Notifier {
	return &Notifier{
		Feeds:   feeds,
		Dedup:   dedup,
		Post:    post,
		Refresh: refresh,
		Pace:    200 * time.Millisecond,
		parser:  gofeed.NewParser(),
	}
}

// Run announces the configured feeds once, then polls until ctx is canceled.
func (n *Notifier) Run(ctx context.Context) {
	if err := n.Post.PostText(ctx, n.announcement(), "RSS-Bot"); err != nil {
		slog.Warn("startup announcement failed", slog.Any("err", err))
	}
	for {
		posted := n.PollOnce(ctx)
		slog.Info("feed poll complete", slog.Int("posted", posted), slog.Int("feeds", len(n.Feeds)))
		select {
		case <-ctx.Done():
			return
		case <-time.After(n.Refresh + time.Duration(posted)*n.Pace):
		}
	}
}

func (n *Notifier) announcement() string {
	parts := make([]string, len(n.Feeds))
	for i, f := range n.Feeds {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.URL)
	}
	return "RSS Bot Configured with feeds " + strings.Join(parts, ", ")
}

// PollOnce fetches every feed, filters out already-seen items, and posts the
// rest. A fetch or parse failure on one feed is logged and skipped; the other
// feeds still run. Returns the number of items posted.
func (n *Notifier) PollOnce(ctx context.Context) int {
	posted := 0
	for _, feed := range n.Feeds {
		items, err := n.fetch(ctx, feed)
		if err != nil {
			slog.Error("feed fetch failed", slog.String("feed", feed.Name), slog.Any("err", err))
			telemetry.Count(telemetry.FeedPollErrors)
			continue
		}
		for _, item := range items {
			seen, err := n.Dedup.Seen(ctx, item.ID)
			if err != nil {
				slog.Error("dedup check failed", slog.String("id", item.ID), slog.Any("err", err))
				continue
			}
			if seen {
				continue
			}
			if posted > 0 {
				select {
				case <-ctx.Done():
					return posted
				case <-time.After(n.Pace):
				}
			}
			if err := n.Post.PostAttachment(ctx, item.Attachment, item.FeedName); err != nil {
				slog.Error("post failed", slog.String("feed", item.FeedName), slog.String("id", item.ID), slog.Any("err", err))
				continue
			}
			telemetry.Count(telemetry.FeedItemsPosted)
			posted++
		}
	}
	return posted
}

func (n *Notifier) fetch(ctx context.Context, feed Feed) ([]Item, error) {
	parsed, err := n.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, err
	}
	return FlattenFeed(feed.Name, parsed), nil
}

// FlattenFeed converts parsed feed entries into postable items. HTML in
// titles and descriptions is converted to Slack-friendly markdown text; items
// without a usable id fall back to their link.
func FlattenFeed(name string, parsed *gofeed.Feed) []Item {
	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		id := entry.GUID
		if id == "" {
			id = entry.Link
		}
		if id == "" {
			continue
		}
		items = append(items, Item{
			FeedName: name,
			ID:       id,
			Attachment: slack.Attachment{
				Color:     attachmentColor,
				Title:     cleanHTML(entry.Title),
				TitleLink: entry.Link,
				Text:      fmt.Sprintf("%s\n<%s>", cleanHTML(entry.Description), entry.Link),
				Footer:    entry.Published,
			},
		})
	}
	return items
}

// cleanHTML strips markup down to Slack-friendly text. Conversion failures
// fall back to the raw input.
func cleanHTML(s string) string {
	out, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(out)
}
