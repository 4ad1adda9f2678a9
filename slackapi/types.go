// Package slackapi contains the Slack Web API helpers the relay is built on:
// channel lookup across the public and private listings, idempotent
// provisioning (create or recover from archive), and bot membership
// reconciliation. It wraps github.com/slack-go/slack behind a small,
// normalized surface.
package slackapi

import "github.com/slack-go/slack"

// Channel is the normalized view of a Slack conversation, covering both
// public channels and private channels (the old "groups" backing store).
type Channel struct {
	ID         string
	Name       string
	IsArchived bool
	IsPrivate  bool
	Members    []string
}

func fromSlackChannel(ch slack.Channel) Channel {
	return Channel{
		ID:         ch.ID,
		Name:       ch.Name,
		IsArchived: ch.IsArchived,
		IsPrivate:  ch.IsPrivate,
		Members:    ch.Members,
	}
}

// LookupResult is the outcome of a channel lookup. Exactly one of None, One,
// or Ambiguous describes it; callers are expected to branch on all three.
// Name uniqueness is enforced by Slack, not locally, so a transient
// name collision across the two backing stores surfaces as Ambiguous instead
// of being silently resolved.
type LookupResult struct {
	matches []Channel
}

// None reports that no channel matched.
func (r LookupResult) None() bool { return len(r.matches) == 0 }

// One returns the single match, if there was exactly one.
func (r LookupResult) One() (Channel, bool) {
	if len(r.matches) == 1 {
		return r.matches[0], true
	}
	return Channel{}, false
}

// Ambiguous returns the full match set when more than one channel matched.
func (r LookupResult) Ambiguous() ([]Channel, bool) {
	if len(r.matches) > 1 {
		return r.matches, true
	}
	return nil, false
}
