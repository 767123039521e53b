// Package redisclient wraps the go-redis client used for fixed-window
// rate counters, abuse-burst counters, and the redsync lock backend.
package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shortalex12333/Image-processing-sub000/config"
)

// Client wraps *redis.Client so callers depend on this package, not
// go-redis directly, matching the teacher's redisclient wrapper.
type Client struct {
	*redis.Client
}

// New parses cfg.RedisURL and returns a connected client. Connectivity is
// not verified here; call Ping to check liveness.
func New(cfg *config.Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return &Client{Client: redis.NewClient(opts)}, nil
}

// Ping checks connectivity with a bounded timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.Client.Ping(ctx).Err()
}
