package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisDeduper tracks posted item ids in a Redis set, one set per destination
// channel so multiple notifier deployments don't collide.
type RedisDeduper struct {
	client *redis.Client
	setKey string
}

// NewRedisDeduper connects to host (port 6379) and scopes the set to channel.
func NewRedisDeduper(host, channel string) *RedisDeduper {
	return &RedisDeduper{
		client: redis.NewClient(&redis.Options{Addr: host + ":6379"}),
		setKey: "rss-posts:" + channel,
	}
}

// Seen adds id to the set and reports whether it was already present. SADD
// returning 0 means the member existed, which is exactly the dedup signal.
func (d *RedisDeduper) Seen(ctx context.Context, id string) (bool, error) {
	added, err := d.client.SAdd(ctx, d.setKey, id).Result()
	if err != nil {
		return false, fmt.Errorf("sadd %s: %w", d.setKey, err)
	}
	return added == 0, nil
}

// Ping verifies the Redis connection, used at startup so a misconfigured
// host fails fast instead of on the first poll.
func (d *RedisDeduper) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (d *RedisDeduper) Close() error {
	return d.client.Close()
}
