// Package testutil provides httptest-backed fakes for the external services
// the relay talks to.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockSlackServer creates a test server that mocks Slack Web API responses.
// Handlers are keyed by API method path (e.g. "/conversations.list"); every
// request also bumps Calls for call-count assertions.
type MockSlackServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc

	mu    sync.Mutex
	calls map[string]int
}

// NewMockSlackServer creates a new mock Slack API server.
func NewMockSlackServer(t *testing.T) *MockSlackServer {
	t.Helper()
	m := &MockSlackServer{
		Handlers: make(map[string]http.HandlerFunc),
		calls:    make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		m.mu.Lock()
		m.calls[key]++
		m.mu.Unlock()
		if handler, ok := m.Handlers[key]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(m.Close)
	return m
}

// APIURL returns the base URL in the form slack-go expects (trailing slash).
func (m *MockSlackServer) APIURL() string {
	return m.URL + "/"
}

// Calls returns how many times the given API method was hit.
func (m *MockSlackServer) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// WriteJSON writes a JSON response body.
func WriteJSON(w http.ResponseWriter, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // test mock response
}

// ChannelJSON builds a conversation object in the wire shape slack-go decodes.
func ChannelJSON(id, name string, private, archived bool, members []string) map[string]interface{} {
	if members == nil {
		members = []string{}
	}
	return map[string]interface{}{
		"id":          id,
		"name":        name,
		"is_channel":  !private,
		"is_group":    private,
		"is_private":  private,
		"is_archived": archived,
		"members":     members,
	}
}

// MockAuthTest adds a handler for /auth.test returning the given bot user id.
func (m *MockSlackServer) MockAuthTest(userID string) {
	m.Handlers["/auth.test"] = func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, map[string]interface{}{
			"ok":      true,
			"user":    "relay-bot",
			"user_id": userID,
			"team":    "testers",
			"team_id": "T1",
			"url":     "https://testers.slack.com/",
		})
	}
}

// MockConversationsList serves the public list to public_channel queries and
// the private list to private_channel queries.
func (m *MockSlackServer) MockConversationsList(public, private []map[string]interface{}) {
	m.Handlers["/conversations.list"] = func(w http.ResponseWriter, r *http.Request) {
		channels := public
		if strings.Contains(r.FormValue("types"), "private_channel") {
			channels = private
		}
		if channels == nil {
			channels = []map[string]interface{}{}
		}
		WriteJSON(w, map[string]interface{}{
			"ok":       true,
			"channels": channels,
			"response_metadata": map[string]interface{}{
				"next_cursor": "",
			},
		})
	}
}

// MockConversationsMembers adds a handler for /conversations.members.
func (m *MockSlackServer) MockConversationsMembers(members []string) {
	m.Handlers["/conversations.members"] = func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, map[string]interface{}{
			"ok":      true,
			"members": members,
			"response_metadata": map[string]interface{}{
				"next_cursor": "",
			},
		})
	}
}

// MockConversationsCreate responds to channel creation with a channel built
// from the requested name by fn.
func (m *MockSlackServer) MockConversationsCreate(fn func(name string, private bool) map[string]interface{}) {
	m.Handlers["/conversations.create"] = func(w http.ResponseWriter, r *http.Request) {
		name := r.FormValue("name")
		private := r.FormValue("is_private") == "true"
		WriteJSON(w, map[string]interface{}{
			"ok":      true,
			"channel": fn(name, private),
		})
	}
}

// MockConversationsInvite acknowledges invites with the given channel object.
func (m *MockSlackServer) MockConversationsInvite(channel map[string]interface{}) {
	m.Handlers["/conversations.invite"] = func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, map[string]interface{}{
			"ok":      true,
			"channel": channel,
		})
	}
}

// MockConversationsUnarchive acknowledges unarchive calls.
func (m *MockSlackServer) MockConversationsUnarchive() {
	m.Handlers["/conversations.unarchive"] = func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, map[string]interface{}{"ok": true})
	}
}

// MockPostMessage acknowledges chat.postMessage calls.
func (m *MockSlackServer) MockPostMessage() {
	m.Handlers["/chat.postMessage"] = func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, map[string]interface{}{
			"ok":      true,
			"channel": r.FormValue("channel"),
			"ts":      "1503435956.000247",
		})
	}
}

// MockError makes the given method fail with a Slack API error payload.
func (m *MockSlackServer) MockError(method, slackError string) {
	m.Handlers[method] = func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, map[string]interface{}{
			"ok":    false,
			"error": slackError,
		})
	}
}
