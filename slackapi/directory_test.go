package slackapi

import (
	"context"
	"testing"

	"github.com/slack-go/slack"

	"github.com/onnwee/slack-irc-relay/testutil"
)

func newTestClient(t *testing.T, m *testutil.MockSlackServer) *Client {
	t.Helper()
	return New("xoxp-admin", "xoxb-bot",
		slack.OptionAPIURL(m.APIURL()),
		slack.OptionHTTPClient(m.Client()),
	)
}

func TestLookupChannelNone(t *testing.T) {
	m := testutil.NewMockSlackServer(t)
	m.MockConversationsList(nil, nil)
	c := newTestClient(t, m)

	res, err := c.LookupChannel(context.Background(), "irc-alice")
	if err != nil {
		t.Fatalf("LookupChannel error: %v", err)
	}
	if !res.None() {
		t.Errorf("expected None result")
	}
}

func TestLookupChannelOneByNameAndID(t *testing.T) {
	m := testutil.NewMockSlackServer(t)
	m.MockConversationsList(
		[]map[string]interface{}{testutil.ChannelJSON("C100", "general", false, false, nil)},
		[]map[string]interface{}{testutil.ChannelJSON("G200", "irc-alice", true, false, nil)},
	)
	c := newTestClient(t, m)

	res, err := c.LookupChannel(context.Background(), "irc-alice")
	if err != nil {
		t.Fatalf("LookupChannel error: %v", err)
	}
	ch, ok := res.One()
	if !ok {
		t.Fatalf("expected One result")
	}
	if ch.ID != "G200" || !ch.IsPrivate {
		t.Errorf("unexpected channel %+v", ch)
	}

	res, err = c.LookupChannel(context.Background(), "C100")
	if err != nil {
		t.Fatalf("LookupChannel by id error: %v", err)
	}
	if ch, ok := res.One(); !ok || ch.Name != "general" {
		t.Errorf("lookup by id got %+v ok=%v", ch, ok)
	}
}

func TestLookupChannelAmbiguous(t *testing.T) {
	m := testutil.NewMockSlackServer(t)
	m.MockConversationsList(
		[]map[string]interface{}{testutil.ChannelJSON("C1", "irc-alice", false, false, nil)},
		[]map[string]interface{}{testutil.ChannelJSON("G1", "irc-alice", true, false, nil)},
	)
	c := newTestClient(t, m)

	res, err := c.LookupChannel(context.Background(), "irc-alice")
	if err != nil {
		t.Fatalf("LookupChannel error: %v", err)
	}
	matches, ok := res.Ambiguous()
	if !ok {
		t.Fatalf("expected Ambiguous result")
	}
	if len(matches) != 2 {
		t.Errorf("expected both matches returned, got %d", len(matches))
	}
}

func TestLookupChannelTransportErrorPropagates(t *testing.T) {
	m := testutil.NewMockSlackServer(t)
	m.MockError("/conversations.list", "invalid_auth")
	c := newTestClient(t, m)

	if _, err := c.LookupChannel(context.Background(), "irc-alice"); err == nil {
		t.Errorf("expected transport error to propagate")
	}
}

func TestListByPrefix(t *testing.T) {
	m := testutil.NewMockSlackServer(t)
	m.MockConversationsList(
		[]map[string]interface{}{
			testutil.ChannelJSON("C1", "irc-alice", false, false, nil),
			testutil.ChannelJSON("C2", "general", false, false, nil),
		},
		[]map[string]interface{}{
			testutil.ChannelJSON("G1", "irc-bob", true, true, nil),
		},
	)
	c := newTestClient(t, m)

	out, err := c.ListByPrefix(context.Background(), "irc-")
	if err != nil {
		t.Fatalf("ListByPrefix error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(out))
	}
	names := map[string]bool{}
	for _, ch := range out {
		names[ch.Name] = true
	}
	if !names["irc-alice"] || !names["irc-bob"] {
		t.Errorf("unexpected names %v", names)
	}
}
