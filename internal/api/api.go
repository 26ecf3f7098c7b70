// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package api exposes the user and task services over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/avatar"
	"github.com/tasktrack/tasktrack/internal/fields"
	"github.com/tasktrack/tasktrack/internal/task"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// AuthService is the account surface used by the handlers. *auth.Service
// implements it.
type AuthService interface {
	Signup(ctx context.Context, set fields.Set, client auth.ClientInfo) (*auth.User, string, error)
	Login(ctx context.Context, set fields.Set, client auth.ClientInfo) (*auth.User, string, error)
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
	RevokeOne(ctx context.Context, userID ulid.ULID, token string) error
	RevokeAll(ctx context.Context, userID ulid.ULID) error
	UpdateSelf(ctx context.Context, current *auth.User, set fields.Set) (*auth.User, error)
	DeleteSelf(ctx context.Context, userID ulid.ULID) (*auth.User, error)
	SetAvatar(ctx context.Context, userID ulid.ULID, png []byte) error
	ClearAvatar(ctx context.Context, userID ulid.ULID) error
	Avatar(ctx context.Context, userID ulid.ULID) ([]byte, error)
}

// TaskService is the task surface used by the handlers. *task.Service
// implements it.
type TaskService interface {
	Create(ctx context.Context, ownerID ulid.ULID, set fields.Set) (*task.Task, error)
	List(ctx context.Context, ownerID ulid.ULID, opts task.ListOptions) ([]*task.Task, error)
	Get(ctx context.Context, ownerID ulid.ULID, id string) (*task.Task, error)
	Update(ctx context.Context, ownerID ulid.ULID, id string, set fields.Set) (*task.Task, error)
	Delete(ctx context.Context, ownerID ulid.ULID, id string) (*task.Task, error)
	DeleteAll(ctx context.Context, ownerID ulid.ULID) (int64, error)
}

// Recorder receives request and account event measurements.
// *observability.Metrics implements it.
type Recorder interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
	RecordAuthEvent(event string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string, int, time.Duration) {}
func (nopRecorder) RecordAuthEvent(string, error)                     {}

// Deps wires the router.
type Deps struct {
	Auth    AuthService
	Tasks   TaskService
	Avatars *avatar.Normalizer
	Metrics Recorder
	Logger  *slog.Logger
	Tracer  trace.Tracer
}

type handler struct {
	auth    AuthService
	tasks   TaskService
	avatars *avatar.Normalizer
	metrics Recorder
	logger  *slog.Logger
}

// NewRouter builds the gin engine. Every route is served at its bare path
// and again under /v1.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Auth == nil {
		return nil, oops.Code("API_DEPENDENCY_MISSING").Errorf("auth service is required")
	}
	if deps.Tasks == nil {
		return nil, oops.Code("API_DEPENDENCY_MISSING").Errorf("task service is required")
	}
	if deps.Avatars == nil {
		deps.Avatars = avatar.NewNormalizer(0, 0)
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer("github.com/tasktrack/tasktrack/internal/api")
	}

	h := &handler{
		auth:    deps.Auth,
		tasks:   deps.Tasks,
		avatars: deps.Avatars,
		metrics: deps.Metrics,
		logger:  deps.Logger,
	}

	r := gin.New()
	r.Use(
		requestID(),
		tracing(deps.Tracer),
		requestLogger(deps.Logger, deps.Metrics),
		gin.CustomRecovery(h.recovered),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, MessageResponse{Error: "Route not found"})
	})

	h.register(r.Group(""))
	h.register(r.Group("/v1"))
	return r, nil
}

func (h *handler) register(rg *gin.RouterGroup) {
	authed := h.requireAuth

	users := rg.Group("/users")
	users.POST("/signup", h.signup)
	users.POST("/login", h.login)
	users.POST("/logout", authed, h.logout)
	users.POST("/terminate-all-sessions", authed, h.terminateAll)
	users.POST("/terminate-all-senssions", authed, h.terminateAll)
	users.GET("/me", authed, h.me)
	users.PATCH("/me", authed, h.updateMe)
	users.DELETE("/me", authed, h.deleteMe)
	users.POST("/me/avatar", authed, h.uploadAvatar)
	users.DELETE("/me/avatar", authed, h.deleteAvatar)
	users.GET("/:id/avatar", h.getAvatar)

	tasks := rg.Group("/tasks", authed)
	tasks.POST("", h.createTask)
	tasks.GET("", h.listTasks)
	tasks.DELETE("", h.deleteAllTasks)
	tasks.GET("/:id", h.getTask)
	tasks.PATCH("/:id", h.updateTask)
	tasks.DELETE("/:id", h.deleteTask)
}
