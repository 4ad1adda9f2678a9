// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// Required credentials are enforced by Validate (relay) and ValidateNotifierReady (RSS notifier).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultChannelPrefix is the reserved Slack channel name prefix that marks
// relay-managed channels (irc-<nick>).
const DefaultChannelPrefix = "irc-"

type Config struct {
	// IRC
	IRCNick     string
	IRCServer   string
	IRCPort     int
	IRCTLS      bool
	IRCUsername string

	// Slack. The admin token holds the elevated scopes needed to create,
	// unarchive, and invite into private channels; the bot token is what the
	// relay posts and reads the event stream as.
	SlackAdminToken string
	SlackBotToken   string

	// Relay
	ChannelPrefix string
	HTTPAddr      string

	// RSS notifier (cmd/notifier)
	SlackWebhookURL string
	SlackChannel    string
	RSSURLs         string
	RSSFeedNames    string
	RSSRefreshMin   int
	RedisHost       string
}

// Load reads environment variables and applies defaults. It doesn't fail on
// missing credentials; call Validate (or ValidateNotifierReady) once you know
// which binary is running.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.IRCNick = os.Getenv("IRC_NICK")
	cfg.IRCServer = os.Getenv("IRC_SERVER")
	cfg.IRCPort = 6697
	if v := os.Getenv("IRC_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("invalid IRC_PORT %q", v)
		}
		cfg.IRCPort = n
	}
	cfg.IRCTLS = true
	if v := os.Getenv("IRC_TLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid IRC_TLS %q", v)
		}
		cfg.IRCTLS = b
	}
	cfg.IRCUsername = os.Getenv("IRC_USERNAME")
	if cfg.IRCUsername == "" {
		cfg.IRCUsername = "slack-relay"
	}

	cfg.SlackAdminToken = os.Getenv("SLACK_ADMIN_TOKEN")
	cfg.SlackBotToken = os.Getenv("SLACK_BOT_TOKEN")

	cfg.ChannelPrefix = os.Getenv("CHANNEL_PREFIX")
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = DefaultChannelPrefix
	}
	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	// Notifier
	cfg.SlackWebhookURL = os.Getenv("SLACK_URL")
	cfg.SlackChannel = os.Getenv("SLACK_CHANNEL")
	cfg.RSSURLs = os.Getenv("RSS_URLS")
	cfg.RSSFeedNames = os.Getenv("RSS_FEED_NAMES")
	cfg.RSSRefreshMin = 5
	if v := os.Getenv("RSS_CHECK_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid RSS_CHECK_MINUTES %q", v)
		}
		cfg.RSSRefreshMin = n
	}
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	if cfg.RedisHost == "" {
		cfg.RedisHost = "redis"
	}

	return cfg, nil
}

// Validate checks the values the relay cannot run without. Missing values are
// reported before any network activity happens.
func (c *Config) Validate() error {
	var missing []string
	if c.IRCNick == "" {
		missing = append(missing, "IRC_NICK")
	}
	if c.IRCServer == "" {
		missing = append(missing, "IRC_SERVER")
	}
	if c.SlackAdminToken == "" {
		missing = append(missing, "SLACK_ADMIN_TOKEN")
	}
	if c.SlackBotToken == "" {
		missing = append(missing, "SLACK_BOT_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("invalid configuration: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateNotifierReady checks the values required by the RSS notifier binary.
func (c *Config) ValidateNotifierReady() error {
	var missing []string
	if c.SlackWebhookURL == "" {
		missing = append(missing, "SLACK_URL")
	}
	if c.SlackChannel == "" {
		missing = append(missing, "SLACK_CHANNEL")
	}
	if c.RSSURLs == "" {
		missing = append(missing, "RSS_URLS")
	}
	if c.RSSFeedNames == "" {
		missing = append(missing, "RSS_FEED_NAMES")
	}
	if len(missing) > 0 {
		return fmt.Errorf("invalid configuration: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// IRCAddr returns the host:port dial address for the IRC server.
func (c *Config) IRCAddr() string {
	return fmt.Sprintf("%s:%d", c.IRCServer, c.IRCPort)
}
