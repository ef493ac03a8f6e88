// Package postgres holds the PostgreSQL identity store and its schema
// migrations.
package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/samber/oops"

	"github.com/99minutos/auth-service/internal/infrastructure/db/postgres/migrations"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultMaxConns = 10
)

// Config captures the settings for opening the connection pool.
type Config struct {
	URL      string
	MaxConns int
	Timeout  time.Duration
}

// DBTX is the subset of database/sql used by the store.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open returns a pooled *sql.DB using the pgx driver and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "open pool").Wrap(err)
	}
	db.SetMaxOpenConns(maxConns)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return db, nil
}

// gooseUp is swapped in tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "set dialect").Wrap(err)
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	return nil
}
