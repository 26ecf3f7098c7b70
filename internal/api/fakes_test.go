// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/fields"
	"github.com/tasktrack/tasktrack/internal/task"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testToken = "valid-token"

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testUser() *auth.User {
	return &auth.User{
		ID:           ulid.MustParse("01HZX3M4Q7B8C9D0E1F2G3H4J5"),
		Name:         "Alice",
		Handle:       "alice",
		Age:          30,
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
}

type fakeAuth struct {
	user *auth.User

	signup      func(ctx context.Context, set fields.Set, client auth.ClientInfo) (*auth.User, string, error)
	login       func(ctx context.Context, set fields.Set, client auth.ClientInfo) (*auth.User, string, error)
	revokeOne   func(ctx context.Context, userID ulid.ULID, token string) error
	revokeAll   func(ctx context.Context, userID ulid.ULID) error
	updateSelf  func(ctx context.Context, current *auth.User, set fields.Set) (*auth.User, error)
	deleteSelf  func(ctx context.Context, userID ulid.ULID) (*auth.User, error)
	setAvatar   func(ctx context.Context, userID ulid.ULID, png []byte) error
	clearAvatar func(ctx context.Context, userID ulid.ULID) error
	avatar      func(ctx context.Context, userID ulid.ULID) ([]byte, error)
}

func (f *fakeAuth) Signup(ctx context.Context, set fields.Set, client auth.ClientInfo) (*auth.User, string, error) {
	return f.signup(ctx, set, client)
}

func (f *fakeAuth) Login(ctx context.Context, set fields.Set, client auth.ClientInfo) (*auth.User, string, error) {
	return f.login(ctx, set, client)
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*auth.Identity, error) {
	if token != testToken {
		return nil, auth.ErrUnauthenticated
	}
	return &auth.Identity{User: f.user, Token: token}, nil
}

func (f *fakeAuth) RevokeOne(ctx context.Context, userID ulid.ULID, token string) error {
	return f.revokeOne(ctx, userID, token)
}

func (f *fakeAuth) RevokeAll(ctx context.Context, userID ulid.ULID) error {
	return f.revokeAll(ctx, userID)
}

func (f *fakeAuth) UpdateSelf(ctx context.Context, current *auth.User, set fields.Set) (*auth.User, error) {
	return f.updateSelf(ctx, current, set)
}

func (f *fakeAuth) DeleteSelf(ctx context.Context, userID ulid.ULID) (*auth.User, error) {
	return f.deleteSelf(ctx, userID)
}

func (f *fakeAuth) SetAvatar(ctx context.Context, userID ulid.ULID, png []byte) error {
	return f.setAvatar(ctx, userID, png)
}

func (f *fakeAuth) ClearAvatar(ctx context.Context, userID ulid.ULID) error {
	return f.clearAvatar(ctx, userID)
}

func (f *fakeAuth) Avatar(ctx context.Context, userID ulid.ULID) ([]byte, error) {
	return f.avatar(ctx, userID)
}

type fakeTasks struct {
	create    func(ctx context.Context, ownerID ulid.ULID, set fields.Set) (*task.Task, error)
	list      func(ctx context.Context, ownerID ulid.ULID, opts task.ListOptions) ([]*task.Task, error)
	get       func(ctx context.Context, ownerID ulid.ULID, id string) (*task.Task, error)
	update    func(ctx context.Context, ownerID ulid.ULID, id string, set fields.Set) (*task.Task, error)
	del       func(ctx context.Context, ownerID ulid.ULID, id string) (*task.Task, error)
	deleteAll func(ctx context.Context, ownerID ulid.ULID) (int64, error)
}

func (f *fakeTasks) Create(ctx context.Context, ownerID ulid.ULID, set fields.Set) (*task.Task, error) {
	return f.create(ctx, ownerID, set)
}

func (f *fakeTasks) List(ctx context.Context, ownerID ulid.ULID, opts task.ListOptions) ([]*task.Task, error) {
	return f.list(ctx, ownerID, opts)
}

func (f *fakeTasks) Get(ctx context.Context, ownerID ulid.ULID, id string) (*task.Task, error) {
	return f.get(ctx, ownerID, id)
}

func (f *fakeTasks) Update(ctx context.Context, ownerID ulid.ULID, id string, set fields.Set) (*task.Task, error) {
	return f.update(ctx, ownerID, id, set)
}

func (f *fakeTasks) Delete(ctx context.Context, ownerID ulid.ULID, id string) (*task.Task, error) {
	return f.del(ctx, ownerID, id)
}

func (f *fakeTasks) DeleteAll(ctx context.Context, ownerID ulid.ULID) (int64, error) {
	return f.deleteAll(ctx, ownerID)
}

type event struct {
	name string
	ok   bool
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []string
	events   []event
}

func (r *fakeRecorder) ObserveRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, method+" "+route+" "+http.StatusText(status))
}

func (r *fakeRecorder) RecordAuthEvent(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{name: name, ok: err == nil})
}

type fixture struct {
	auth    *fakeAuth
	tasks   *fakeTasks
	metrics *fakeRecorder
	logs    *bytes.Buffer
	router  *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		auth:    &fakeAuth{user: testUser()},
		tasks:   &fakeTasks{},
		metrics: &fakeRecorder{},
		logs:    &bytes.Buffer{},
	}
	router, err := NewRouter(Deps{
		Auth:    f.auth,
		Tasks:   f.tasks,
		Metrics: f.metrics,
		Logger:  slog.New(slog.NewJSONHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)
	f.router = router
	return f
}

type response struct {
	Code   int
	Header http.Header
	Body   []byte
}

func (r response) message(t *testing.T) MessageResponse {
	t.Helper()
	var m MessageResponse
	require.NoError(t, json.Unmarshal(r.Body, &m))
	return m
}

func (r response) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v))
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) response {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return f.serve(req)
}

func (f *fixture) serve(req *http.Request) response {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return response{Code: w.Code, Header: w.Header(), Body: w.Body.Bytes()}
}

func newRequest(method, path, authorization string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req
}
