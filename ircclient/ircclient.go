// Package ircclient wraps the IRC connection the relay listens on: connect
// with optional TLS, surface private messages addressed to the relay nick,
// and send text to IRC targets.
package ircclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	irc "github.com/thoj/go-ircevent"

	"github.com/onnwee/slack-irc-relay/config"
	"github.com/onnwee/slack-irc-relay/telemetry"
)

// Sender is the outbound IRC capability the relay engine uses.
type Sender interface {
	Say(target, text string)
}

// Client owns a single IRC connection for the process lifetime.
type Client struct {
	conn *irc.Connection
	addr string
}

// New prepares a connection from config without dialing yet.
func New(cfg *config.Config) *Client {
	conn := irc.IRC(cfg.IRCNick, cfg.IRCUsername)
	conn.UseTLS = cfg.IRCTLS
	if cfg.IRCTLS {
		conn.TLSConfig = &tls.Config{ServerName: cfg.IRCServer, MinVersion: tls.VersionTLS12}
	}
	conn.QuitMessage = "relay shutting down"
	return &Client{conn: conn, addr: cfg.IRCAddr()}
}

// OnPrivateMessage registers fn for PRIVMSGs addressed directly to the relay
// nick. Channel traffic the nick happens to see is not a private message and
// is ignored.
func (c *Client) OnPrivateMessage(fn func(from, message string)) {
	c.conn.AddCallback("PRIVMSG", func(e *irc.Event) {
		if !isDirectMessage(e.Arguments, c.conn.GetNick()) {
			return
		}
		fn(e.Nick, e.Message())
	})
}

// isDirectMessage reports whether a PRIVMSG's target is the given nick.
func isDirectMessage(args []string, nick string) bool {
	return len(args) > 0 && args[0] == nick
}

// Connect dials the server and starts the read loop. The connection is torn
// down when ctx is canceled. Protocol errors after connect are logged and the
// library's reconnect handling takes over; they never crash the process.
func (c *Client) Connect(ctx context.Context) error {
	c.conn.AddCallback("ERROR", func(e *irc.Event) {
		slog.Error("irc protocol error", slog.String("raw", e.Raw))
	})
	if err := c.conn.Connect(c.addr); err != nil {
		return fmt.Errorf("irc connect %s: %w", c.addr, err)
	}
	telemetry.SetIRCConnected(true)
	go func() {
		<-ctx.Done()
		telemetry.SetIRCConnected(false)
		c.conn.Quit()
	}()
	go func() {
		c.conn.Loop()
		telemetry.SetIRCConnected(false)
		slog.Info("irc loop exited")
	}()
	return nil
}

// Say sends text to an IRC nick or channel.
func (c *Client) Say(target, text string) {
	c.conn.Privmsg(target, text)
}

// Connected reports whether the underlying connection is up.
func (c *Client) Connected() bool {
	return c.conn.Connected()
}
