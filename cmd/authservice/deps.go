package main

import (
	"context"
	"database/sql"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/infrastructure/config"
	"github.com/99minutos/auth-service/internal/infrastructure/db/memory"
	"github.com/99minutos/auth-service/internal/infrastructure/db/mongo"
	"github.com/99minutos/auth-service/internal/infrastructure/db/postgres"
	"github.com/99minutos/auth-service/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-service/internal/infrastructure/email"
	"github.com/99minutos/auth-service/internal/infrastructure/http/handlers"
)

// backends holds the stores chosen by configuration plus their readiness
// checks and cleanup.
type backends struct {
	identities  ports.IdentityStore
	challenges  ports.ChallengeStore
	revocations ports.RevocationStore
	checks      []handlers.Check
	closers     []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func buildBackends(ctx context.Context, cfg *config.Config, vault ports.CredentialVault, log zerolog.Logger) (*backends, error) {
	b := &backends{}
	if err := b.identityStore(ctx, cfg, vault, log); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.ephemeralStores(ctx, cfg, log); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backends) identityStore(ctx context.Context, cfg *config.Config, vault ports.CredentialVault, log zerolog.Logger) error {
	switch cfg.Identity.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, postgres.Config{URL: cfg.Identity.DatabaseURL})
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() { _ = db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		b.identities = postgres.NewIdentityStore(db, vault)
		b.checks = append(b.checks, handlers.Check{Name: "postgres", Ping: pingSQL(db)})

	case config.BackendMongo:
		conn, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() { _ = conn.Close(context.Background()) })
		store := mongo.NewIdentityStore(conn.Database(), vault)
		if err := store.EnsureIndexes(ctx); err != nil {
			return err
		}
		b.identities = store
		b.checks = append(b.checks, handlers.Check{Name: "mongodb", Ping: conn.Ping})

	case config.BackendMemory:
		log.Warn().Msg("using in-memory identity store, accounts are lost on restart")
		b.identities = memory.NewIdentityStore(vault)

	default:
		return oops.Code("CONFIG_INVALID").With("backend", cfg.Identity.Backend).Errorf("unknown identity backend")
	}
	return nil
}

func (b *backends) ephemeralStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.Redis.HostName == "" {
		log.Warn().Msg("REDIS_HOST_NAME is empty, using in-memory challenge and revocation stores")
		b.challenges = memory.NewChallengeStore()
		b.revocations = memory.NewRevocationStore()
		return nil
	}

	client, err := redis.Connect(ctx, redis.Config{Host: cfg.Redis.HostName, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	b.closers = append(b.closers, func() { _ = client.Close() })
	b.challenges = redis.NewChallengeStore(client, cfg.Auth.TwoFATTL)
	b.revocations = redis.NewRevocationStore(client, cfg.Auth.TokenTTL)
	b.checks = append(b.checks, handlers.Check{Name: "redis", Ping: pingRedis(client)})
	return nil
}

func buildEmailClient(cfg *config.Config, log zerolog.Logger) (ports.EmailClient, error) {
	switch cfg.Email.Backend {
	case config.EmailLog:
		return email.NewLogClient(log), nil
	case config.EmailPostmark:
		sender, err := domain.ParseEmail(cfg.Email.Sender)
		if err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("field", "EMAIL_SENDER").Wrap(err)
		}
		hc := &http.Client{Timeout: cfg.Email.Timeout}
		return email.NewPostmarkClient(cfg.Email.PostmarkBaseURL, sender, cfg.Email.PostmarkToken, hc), nil
	default:
		return nil, oops.Code("CONFIG_INVALID").With("backend", cfg.Email.Backend).Errorf("unknown email backend")
	}
}

func pingSQL(db *sql.DB) func(context.Context) error {
	return db.PingContext
}

func pingRedis(client *goredis.Client) func(context.Context) error {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}
