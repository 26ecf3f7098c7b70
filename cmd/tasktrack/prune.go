// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	authpg "github.com/tasktrack/tasktrack/internal/auth/postgres"
	"github.com/tasktrack/tasktrack/internal/store"
)

// connectDatabase is replaced in tests.
var connectDatabase = func(ctx context.Context, url string, timeout time.Duration) (Database, error) {
	return store.Connect(ctx, url, timeout)
}

// NewPruneSessionsCmd creates the prune-sessions subcommand.
func NewPruneSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-sessions",
		Short: "Delete expired sessions",
		Long: `Delete every session whose token has expired. Expired tokens are
already rejected at authentication; this reclaims their rows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return oops.Code("CONFIG_INVALID").With("key", "database_url").Errorf("database_url is required")
			}

			db, err := connectDatabase(cmd.Context(), cfg.DatabaseURL, cfg.DBConnectTimeout)
			if err != nil {
				return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
			}
			defer db.Close()

			n, err := authpg.NewSessionRepository(db).DeleteExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			cmd.Printf("Deleted %d expired session(s)\n", n)
			return nil
		},
	}
}
