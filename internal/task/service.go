// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/internal/fields"
)

// Service provides owner-scoped task operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("TASK_DEPENDENCY_MISSING").Errorf("task repository is required")
	}
	s := &Service{repo: repo, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		return nil, oops.Code("TASK_DEPENDENCY_MISSING").Errorf("logger cannot be nil")
	}
	return s, nil
}

// parseID maps malformed identifiers to ErrNotFound.
func parseID(id string) (ulid.ULID, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return ulid.ULID{}, oops.Code("TASK_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	return parsed, nil
}

// Create stores a new task for ownerID. The owner is never taken from set.
func (s *Service) Create(ctx context.Context, ownerID ulid.ULID, set fields.Set) (*Task, error) {
	if err := CreateFields.Check(set); err != nil {
		return nil, err
	}
	if !set.Has("text") {
		return nil, oops.Code("TASK_INVALID_TEXT").With("field", "text").Wrap(errTextRequired)
	}

	now := s.now()
	t := &Task{ID: ulid.Make(), OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	if err := apply(t, set); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, oops.Code("TASK_CREATE_FAILED").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	return t, nil
}

// List returns the owner's tasks matching opts. No match yields an empty
// slice.
func (s *Service) List(ctx context.Context, ownerID ulid.ULID, opts ListOptions) ([]*Task, error) {
	tasks, err := s.repo.List(ctx, ownerID, opts)
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	if tasks == nil {
		tasks = []*Task{}
	}
	return tasks, nil
}

// Get returns the owner's task with the given id.
func (s *Service) Get(ctx context.Context, ownerID ulid.ULID, id string) (*Task, error) {
	taskID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, ownerID, taskID)
	if err != nil {
		return nil, oops.Code("TASK_GET_FAILED").With("id", id).Wrap(err)
	}
	return t, nil
}

// Update applies a whitelisted partial update to the owner's task.
func (s *Service) Update(ctx context.Context, ownerID ulid.ULID, id string, set fields.Set) (*Task, error) {
	if err := UpdateFields.Check(set); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if err := apply(&updated, set); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, oops.Code("TASK_UPDATE_FAILED").With("id", id).Wrap(err)
	}
	return &updated, nil
}

// Delete removes the owner's task and returns it.
func (s *Service) Delete(ctx context.Context, ownerID ulid.ULID, id string) (*Task, error) {
	taskID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.Delete(ctx, ownerID, taskID)
	if err != nil {
		return nil, oops.Code("TASK_DELETE_FAILED").With("id", id).Wrap(err)
	}
	return t, nil
}

// DeleteAll removes every task of the owner. It never reports not found.
func (s *Service) DeleteAll(ctx context.Context, ownerID ulid.ULID) (int64, error) {
	n, err := s.repo.DeleteAllByOwner(ctx, ownerID)
	if err != nil {
		return 0, oops.Code("TASK_DELETE_ALL_FAILED").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	s.logger.DebugContext(ctx, "tasks cleared", "owner_id", ownerID.String(), "count", n)
	return n, nil
}
