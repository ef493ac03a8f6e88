// Package redis holds the Redis-backed challenge and revocation stores.
package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const (
	defaultTimeout = 5 * time.Second
	defaultPort    = "6379"
)

// Config captures the settings for establishing a Redis connection.
// Host may be a bare host name or host:port.
type Config struct {
	Host    string
	DB      int
	Timeout time.Duration
}

// Addr returns host:port, filling in the default Redis port when missing.
func (c Config) Addr() string {
	if _, _, err := net.SplitHostPort(c.Host); err == nil {
		return c.Host
	}
	return net.JoinHostPort(c.Host, defaultPort)
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr(),
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_CONNECT_FAILED").With("addr", cfg.Addr()).Wrap(err)
	}

	return client, nil
}
