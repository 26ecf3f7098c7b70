// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tasktrack/tasktrack/internal/observability"
	"github.com/tasktrack/tasktrack/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// DatabaseConnector opens the connection pool.
	// Default: store.Connect
	DatabaseConnector func(ctx context.Context, url string, timeout time.Duration) (Database, error)

	// MigratorFactory creates the migrator used for auto-migration.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (AutoMigrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, checker observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// APIServerFactory creates the HTTP API server.
	// Default: api.NewServer
	APIServerFactory func(addr string, handler http.Handler, logger *slog.Logger) APIServer

	// LogOutput receives structured logs.
	// Default: os.Stderr
	LogOutput io.Writer
}

// Database wraps the pool methods used by serve and prune-sessions.
type Database interface {
	store.Pool
	Close()
}

// AutoMigrator is the subset of store.Migrator run at startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// APIServer interface wraps the methods used from api.Server.
type APIServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}
