// Package mongo holds the MongoDB identity store.
package mongo

import (
	"context"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	appName        = "auth-service"
	defaultTimeout = 10 * time.Second
)

type Config struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	Timeout     time.Duration
}

// Conn is an open connection bound to the identity database.
type Conn struct {
	client *mongo.Client
	db     *mongo.Database
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

func clientOptions(cfg Config) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(cfg.timeout())
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	return opts
}

// Open connects and waits for the primary to answer a ping.
func Open(ctx context.Context, cfg Config) (*Conn, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, oops.In("mongo").Code("MONGO_CONFIG_INVALID").
			With("uri_set", cfg.URI != "").With("database", cfg.Database).
			Errorf("mongo uri and database are required")
	}

	openCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	client, err := mongo.Connect(openCtx, clientOptions(cfg))
	if err != nil {
		return nil, oops.In("mongo").Code("MONGO_CONNECT_FAILED").With("operation", "connect").Wrap(err)
	}
	if err := client.Ping(openCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, oops.In("mongo").Code("MONGO_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return &Conn{client: client, db: client.Database(cfg.Database)}, nil
}

func (c *Conn) Database() *mongo.Database { return c.db }

// Ping backs the readiness probe.
func (c *Conn) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Conn) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
