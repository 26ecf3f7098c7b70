// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

//go:build integration

// Package pgtest starts a migrated PostgreSQL container for integration suites.
package pgtest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tasktrack/tasktrack/internal/store"
)

// Env is a running database with every migration applied.
type Env struct {
	Ctx       context.Context
	Pool      *pgxpool.Pool
	ConnStr   string
	container testcontainers.Container
}

// Start runs a postgres container, applies migrations and opens a pool.
func Start(ctx context.Context) (*Env, error) {
	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("tasktrack_test"),
		postgres.WithUsername("tasktrack"),
		postgres.WithPassword("tasktrack"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, oops.Code("TEST_DB_START_FAILED").Wrap(err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, oops.Code("TEST_DB_START_FAILED").Wrap(err)
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}
	_ = migrator.Close()

	pool, err := store.Connect(ctx, connStr, 30*time.Second)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Env{Ctx: ctx, Pool: pool, ConnStr: connStr, container: container}, nil
}

// Truncate empties every table.
func (e *Env) Truncate(ctx context.Context) error {
	_, err := e.Pool.Exec(ctx, `TRUNCATE tasks, sessions, users`)
	return err
}

// Close releases the pool and terminates the container.
func (e *Env) Close() {
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.container != nil {
		_ = e.container.Terminate(e.Ctx)
	}
}
