package slackapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"golang.org/x/sync/errgroup"
)

// listAll pages through conversations.list for the given types. Public
// channels are visible to the bot token; private channels require the admin
// token, so callers pick the api client to match.
func listAll(ctx context.Context, api *slack.Client, types []string) ([]slack.Channel, error) {
	var out []slack.Channel
	params := &slack.GetConversationsParameters{
		Types: types,
		Limit: 200,
	}
	for {
		channels, cursor, err := api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("conversations.list %s: %w", strings.Join(types, ","), err)
		}
		out = append(out, channels...)
		if cursor == "" {
			return out, nil
		}
		params.Cursor = cursor
	}
}

// listBoth runs the public and private listings concurrently and returns the
// two slices. The sources are disjoint by construction, so no dedup happens.
func (c *Client) listBoth(ctx context.Context) ([]slack.Channel, []slack.Channel, error) {
	var public, private []slack.Channel
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		public, err = listAll(gctx, c.Bot, []string{"public_channel"})
		return err
	})
	g.Go(func() error {
		var err error
		private, err = listAll(gctx, c.Admin, []string{"private_channel"})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return public, private, nil
}

// LookupChannel finds a channel whose name or id equals identifier, checking
// the public and private listings. Zero matches yields None, one yields One,
// and a name collision across the two backing stores is reported and returned
// as Ambiguous rather than silently picking a winner.
func (c *Client) LookupChannel(ctx context.Context, identifier string) (LookupResult, error) {
	public, private, err := c.listBoth(ctx)
	if err != nil {
		return LookupResult{}, err
	}
	var matches []Channel
	for _, list := range [][]slack.Channel{public, private} {
		for _, ch := range list {
			if ch.Name == identifier || ch.ID == identifier {
				matches = append(matches, fromSlackChannel(ch))
			}
		}
	}
	if len(matches) > 1 {
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		slog.Error("multiple matching channels", slog.String("identifier", identifier), slog.Any("ids", ids))
	}
	return LookupResult{matches: matches}, nil
}

// ListByPrefix returns the union of public and private channels whose name
// starts with prefix, in no particular order.
func (c *Client) ListByPrefix(ctx context.Context, prefix string) ([]Channel, error) {
	public, private, err := c.listBoth(ctx)
	if err != nil {
		return nil, err
	}
	var out []Channel
	for _, list := range [][]slack.Channel{public, private} {
		for _, ch := range list {
			if strings.HasPrefix(ch.Name, prefix) {
				out = append(out, fromSlackChannel(ch))
			}
		}
	}
	return out, nil
}
