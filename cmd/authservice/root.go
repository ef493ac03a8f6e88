package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the auth service CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authservice",
		Short: "Authentication service",
		Long: `Authentication service with signup, login with optional
email-delivered 2FA, logout and session token verification.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
