// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tasktrack/tasktrack/internal/api"
	"github.com/tasktrack/tasktrack/internal/auth"
	authpg "github.com/tasktrack/tasktrack/internal/auth/postgres"
	"github.com/tasktrack/tasktrack/internal/avatar"
	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/logging"
	"github.com/tasktrack/tasktrack/internal/notify"
	"github.com/tasktrack/tasktrack/internal/observability"
	"github.com/tasktrack/tasktrack/internal/store"
	"github.com/tasktrack/tasktrack/internal/task"
	taskpg "github.com/tasktrack/tasktrack/internal/task/postgres"
)

const serviceName = "tasktrack"

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. It connects to PostgreSQL, applies
pending migrations unless auto_migrate is off, and serves the /users and
/tasks routes until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}

	if deps.DatabaseConnector == nil {
		deps.DatabaseConnector = func(ctx context.Context, url string, timeout time.Duration) (Database, error) {
			return store.Connect(ctx, url, timeout)
		}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(url string) (AutoMigrator, error) {
			return store.NewMigrator(url)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, checker observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, checker, logger)
		}
	}
	if deps.APIServerFactory == nil {
		deps.APIServerFactory = func(addr string, handler http.Handler, logger *slog.Logger) APIServer {
			return api.NewServer(addr, handler, logger)
		}
	}
	if deps.LogOutput == nil {
		deps.LogOutput = os.Stderr
	}

	if err := cfg.Validate(); err != nil {
		return oops.With("operation", "validate configuration").Wrap(err)
	}

	logger := logging.Setup(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.Level(),
	}, deps.LogOutput)
	slog.SetDefault(logger)

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	)))
	otel.SetTracerProvider(tp)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer provider shutdown failed", "error", err)
		}
	}()

	logger.Info("starting tasktrack",
		"http_addr", cfg.HTTPAddr,
		"metrics_addr", cfg.MetricsAddr,
		"database_url", cfg.Redacted().DatabaseURL,
	)

	if cfg.AutoMigrate {
		if err := runAutoMigration(cfg.DatabaseURL, deps.MigratorFactory); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	db, err := deps.DatabaseConnector(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	logger.Info("connected to database")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer ObservabilityServer
	var recorder api.Recorder
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, func(ctx context.Context) error {
			return store.Ready(ctx, db)
		}, logger)
		recorder = obsServer.Metrics()
	} else {
		recorder = observability.NewMetrics(prometheus.NewRegistry())
	}

	mailer, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer closeCancel()
		if closeErr := mailer.Close(closeCtx); closeErr != nil {
			logger.Warn("notification queue not drained", "error", closeErr)
		}
	}()

	router, err := newRouter(cfg, db, mailer, recorder, logger)
	if err != nil {
		return err
	}

	if obsServer != nil {
		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return oops.With("operation", "start observability server").Wrap(startErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	apiServer := deps.APIServerFactory(cfg.HTTPAddr, router, logger)
	apiErrChan, err := apiServer.Start()
	if err != nil {
		stopServers(cfg.ShutdownTimeout, logger, obsServer)
		return oops.With("operation", "start api server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("TaskTrack server started")
	logger.Info("tasktrack ready", "http_addr", apiServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")
	stopServers(cfg.ShutdownTimeout, logger, apiServer, obsServer)
	logger.Info("shutdown complete")
	return nil
}

type stopper interface {
	Stop(ctx context.Context) error
	Addr() string
}

// stopServers stops each non-nil server in order, sharing one timeout.
func stopServers(timeout time.Duration, logger *slog.Logger, servers ...stopper) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, srv := range servers {
		if srv == nil {
			continue
		}
		if err := srv.Stop(ctx); err != nil {
			logger.Warn("error stopping server", "addr", srv.Addr(), "error", err)
		}
	}
}

// newNotifier sends mail through SMTP when it is configured and logs
// notifications otherwise. Delivery always runs off the request path.
func newNotifier(cfg *config.Config, logger *slog.Logger) (*notify.Async, error) {
	smtpCfg := notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	}

	var next auth.Notifier = notify.NewLogNotifier(logger)
	if smtpCfg.Enabled() {
		smtp, err := notify.NewSMTPNotifier(smtpCfg, notify.WithSMTPLogger(logger))
		if err != nil {
			return nil, oops.With("operation", "create smtp notifier").Wrap(err)
		}
		next = smtp
		logger.Info("smtp notifications enabled", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	}
	return notify.NewAsync(next, notify.DefaultQueueSize, logger), nil
}

// newRouter builds the services over db and the gin router that serves them.
func newRouter(cfg *config.Config, db store.Pool, notifier auth.Notifier, recorder api.Recorder, logger *slog.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return nil, oops.With("operation", "create token issuer").Wrap(err)
	}

	taskRepo := taskpg.NewTaskRepository(db)
	authService, err := auth.NewService(auth.ServiceDeps{
		Users:    authpg.NewUserRepository(db),
		Sessions: authpg.NewSessionRepository(db),
		Tasks:    taskRepo,
		Tx:       store.NewTransactor(db),
		Hasher:   auth.NewArgon2idHasher(),
		Tokens:   tokens,
		Notifier: notifier,
		Logger:   logger,
	})
	if err != nil {
		return nil, oops.With("operation", "create auth service").Wrap(err)
	}

	taskService, err := task.NewService(taskRepo, task.WithLogger(logger))
	if err != nil {
		return nil, oops.With("operation", "create task service").Wrap(err)
	}

	router, err := api.NewRouter(api.Deps{
		Auth:    authService,
		Tasks:   taskService,
		Avatars: avatar.NewNormalizer(cfg.AvatarSize, cfg.AvatarMaxBytes),
		Metrics: recorder,
		Logger:  logger,
		Tracer:  otel.Tracer("github.com/tasktrack/tasktrack/internal/api"),
	})
	if err != nil {
		return nil, oops.With("operation", "create router").Wrap(err)
	}
	return router, nil
}

// runAutoMigration applies pending migrations and always closes the migrator.
func runAutoMigration(url string, factory func(string) (AutoMigrator, error)) error {
	migrator, err := factory(url)
	if err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").With("operation", "apply migrations").Wrap(err)
	}
	return nil
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
