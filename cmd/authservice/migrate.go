package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/99minutos/auth-service/internal/infrastructure/db/postgres"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var databaseURL string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the PostgreSQL identity database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, databaseURL)
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL (env DATABASE_URL)")
	return cmd
}

func runMigrate(cmd *cobra.Command, databaseURL string) error {
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable or --database-url is required")
	}

	ctx := cmd.Context()

	cmd.Println("Connecting to database...")
	db, err := postgres.Open(ctx, postgres.Config{URL: databaseURL})
	if err != nil {
		return err
	}
	defer db.Close()

	cmd.Println("Running migrations...")
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
