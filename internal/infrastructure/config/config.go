// Package config loads the process-wide configuration from the environment.
// It is read once at startup and passed to constructors; nothing re-reads the
// environment per request.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"

	EmailPostmark = "postmark"
	EmailLog      = "log"
)

type Config struct {
	Port           string   `env:"PORT,      default=3000"`
	Env            string   `env:"ENV,       default=development"`
	LogLevel       string   `env:"LOG_LEVEL, default=info"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:8000"`

	Auth     AuthConfig
	Identity IdentityConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Email    EmailConfig
}

type AuthConfig struct {
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=10m"`
	TwoFATTL    time.Duration `env:"TWO_FA_TTL,   default=10m"`
	HashWorkers int           `env:"HASH_WORKERS, default=0"`
}

type IdentityConfig struct {
	Backend     string `env:"IDENTITY_BACKEND, default=postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_service"`
}

// RedisConfig backs the challenge and revocation stores. An empty HostName
// selects the in-memory stores.
type RedisConfig struct {
	HostName string `env:"REDIS_HOST_NAME, default=127.0.0.1"`
	DB       int    `env:"REDIS_DB,        default=0"`
}

type EmailConfig struct {
	Backend         string        `env:"EMAIL_BACKEND,     default=postmark"`
	PostmarkToken   string        `env:"POSTMARK_AUTH_TOKEN"`
	PostmarkBaseURL string        `env:"POSTMARK_BASE_URL, default=https://api.postmarkapp.com"`
	Sender          string        `env:"EMAIL_SENDER,      default=no-reply@auth-service.local"`
	Timeout         time.Duration `env:"EMAIL_TIMEOUT,     default=10s"`
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit lookuper, used by tests.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects missing secrets and inconsistent settings. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error
	required := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s must be set and non-empty", name))
		}
	}

	required("JWT_SECRET", c.Auth.JWTSecret)
	required("EMAIL_SENDER", c.Email.Sender)

	switch c.Email.Backend {
	case EmailPostmark:
		required("POSTMARK_AUTH_TOKEN", c.Email.PostmarkToken)
	case EmailLog:
	default:
		errs = append(errs, fmt.Errorf("EMAIL_BACKEND %q is not one of postmark, log", c.Email.Backend))
	}

	switch c.Identity.Backend {
	case BackendPostgres:
		required("DATABASE_URL", c.Identity.DatabaseURL)
	case BackendMongo:
		required("MONGO_URI", c.Mongo.URI)
		required("MONGO_DB", c.Mongo.Database)
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_BACKEND %q is not one of postgres, mongo, memory", c.Identity.Backend))
	}

	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.TwoFATTL <= 0 {
		errs = append(errs, errors.New("TWO_FA_TTL must be positive"))
	}
	if c.Auth.HashWorkers < 0 {
		errs = append(errs, errors.New("HASH_WORKERS must not be negative"))
	}
	return errors.Join(errs...)
}
