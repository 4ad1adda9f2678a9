package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/slack-go/slack"
)

func TestParseFeedList(t *testing.T) {
	feeds, err := ParseFeedList("https://a.example/feed, https://b.example/rss", "Alpha, Beta")
	if err != nil {
		t.Fatalf("ParseFeedList error: %v", err)
	}
	if len(feeds) != 2 {
		t.Fatalf("feeds = %d, want 2", len(feeds))
	}
	if feeds[0].Name != "Alpha" || feeds[0].URL != "https://a.example/feed" {
		t.Errorf("unexpected first feed %+v", feeds[0])
	}
	if feeds[1].Name != "Beta" || feeds[1].URL != "https://b.example/rss" {
		t.Errorf("unexpected second feed %+v", feeds[1])
	}
}

func TestParseFeedListMismatch(t *testing.T) {
	if _, err := ParseFeedList("https://a.example,https://b.example", "OnlyOne"); err == nil {
		t.Errorf("expected mismatch error")
	}
}

func TestFlattenFeed(t *testing.T) {
	parsed := &gofeed.Feed{Items: []*gofeed.Item{
		{
			GUID:        "guid-1",
			Title:       "Plain title",
			Description: "<p>Body with <b>bold</b></p>",
			Link:        "https://a.example/post/1",
			Published:   "Mon, 02 Jan 2006 15:04:05 MST",
		},
		{
			// No GUID: link becomes the id.
			Title: "Second",
			Link:  "https://a.example/post/2",
		},
		{
			// Neither GUID nor link: undeduplicatable, skipped.
			Title: "Ghost",
		},
	}}

	items := FlattenFeed("Alpha", parsed)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	first := items[0]
	if first.ID != "guid-1" || first.FeedName != "Alpha" {
		t.Errorf("unexpected item %+v", first)
	}
	if first.Attachment.TitleLink != "https://a.example/post/1" {
		t.Errorf("TitleLink = %q", first.Attachment.TitleLink)
	}
	if strings.Contains(first.Attachment.Text, "<p>") {
		t.Errorf("description HTML should be stripped: %q", first.Attachment.Text)
	}
	if !strings.Contains(first.Attachment.Text, "<https://a.example/post/1>") {
		t.Errorf("text should carry the bracketed link: %q", first.Attachment.Text)
	}
	if first.Attachment.Color != attachmentColor {
		t.Errorf("Color = %q", first.Attachment.Color)
	}
	if items[1].ID != "https://a.example/post/2" {
		t.Errorf("link fallback id = %q", items[1].ID)
	}
}

type memDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *memDeduper) Seen(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[id] {
		return true, nil
	}
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	d.seen[id] = true
	return false, nil
}

type memPoster struct {
	mu          sync.Mutex
	attachments []slack.Attachment
	usernames   []string
	texts       []string
}

func (p *memPoster) PostAttachment(_ context.Context, att slack.Attachment, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attachments = append(p.attachments, att)
	p.usernames = append(p.usernames, username)
	return nil
}

func (p *memPoster) PostText(_ context.Context, text, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts = append(p.texts, text)
	return nil
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Alpha</title><link>https://a.example</link><description>d</description>
<item><guid>id-1</guid><title>One</title><link>https://a.example/1</link><description>first</description></item>
<item><guid>id-2</guid><title>Two</title><link>https://a.example/2</link><description>second</description></item>
</channel></rss>`

func TestPollOnceDedupsAndPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		if _, err := w.Write([]byte(rssBody)); err != nil {
			t.Errorf("write feed: %v", err)
		}
	}))
	defer srv.Close()

	dedup := &memDeduper{seen: map[string]bool{"id-1": true}}
	post := &memPoster{}
	n := New([]Feed{{Name: "Alpha", URL: srv.URL}}, dedup, post, time.Minute)
	n.Pace = 0

	posted := n.PollOnce(context.Background())
	if posted != 1 {
		t.Fatalf("posted = %d, want 1 (id-1 already seen)", posted)
	}
	if len(post.attachments) != 1 || post.attachments[0].Title != "Two" {
		t.Errorf("unexpected attachments %+v", post.attachments)
	}
	if post.usernames[0] != "Alpha" {
		t.Errorf("posted as %q, want feed name", post.usernames[0])
	}

	// Second cycle: nothing new.
	if posted := n.PollOnce(context.Background()); posted != 0 {
		t.Errorf("second poll posted %d, want 0", posted)
	}
}

func TestPollOnceSkipsFailingFeed(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(rssBody)); err != nil {
			t.Errorf("write feed: %v", err)
		}
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	post := &memPoster{}
	n := New([]Feed{
		{Name: "Broken", URL: bad.URL},
		{Name: "Alpha", URL: good.URL},
	}, &memDeduper{}, post, time.Minute)
	n.Pace = 0

	if posted := n.PollOnce(context.Background()); posted != 2 {
		t.Errorf("posted = %d, want 2 from the healthy feed", posted)
	}
}
