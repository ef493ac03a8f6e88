package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/99minutos/auth-service/internal/api"
	"github.com/99minutos/auth-service/internal/api/metrics"
	"github.com/99minutos/auth-service/internal/core/service"
	"github.com/99minutos/auth-service/internal/infrastructure/config"
	apphttp "github.com/99minutos/auth-service/internal/infrastructure/http"
	"github.com/99minutos/auth-service/internal/infrastructure/queue"
	"github.com/99minutos/auth-service/internal/infrastructure/token"
	"github.com/99minutos/auth-service/internal/infrastructure/vault"
	"github.com/99minutos/auth-service/pkg/logger"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. Configuration is read from the environment
once at startup; missing secrets abort the process.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-service",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Str("identity_backend", cfg.Identity.Backend).Msg("starting")

	pool := queue.NewPool(cfg.Auth.HashWorkers, log)
	pool.Start()
	defer pool.Stop()

	v := vault.New(pool, log, vault.WithDurationObserver(metrics.PasswordHashDuration))

	b, err := buildBackends(ctx, cfg, v, log)
	if err != nil {
		log.Error().Err(err).Msg("backend setup failed")
		return err
	}
	defer b.Close()

	emailClient, err := buildEmailClient(cfg, log)
	if err != nil {
		return err
	}

	svc := service.NewAuthService(service.AuthDeps{
		Identities:  b.identities,
		Challenges:  b.challenges,
		Revocations: b.revocations,
		Vault:       v,
		Tokens:      token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Email:       emailClient,
		Log:         log,
	})

	e := api.NewRouter(api.RouterDeps{
		AuthService:    svc,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		Checks:         b.checks,
		Metrics:        true,
	})

	return apphttp.Serve(ctx, e, ":"+cfg.Port, log)
}
