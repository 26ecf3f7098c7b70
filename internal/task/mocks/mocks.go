// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package mocks provides testify doubles for the task package interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/tasktrack/tasktrack/internal/task"
)

// MockRepository is a testify double for task.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a MockRepository whose expectations are asserted
// when the test ends.
func NewMockRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockRepository {
	m := &MockRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func taskResult(ret mock.Arguments) (*task.Task, error) {
	var t *task.Task
	if v := ret.Get(0); v != nil {
		t = v.(*task.Task)
	}
	return t, ret.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockRepository) Get(ctx context.Context, ownerID, id ulid.ULID) (*task.Task, error) {
	return taskResult(m.Called(ctx, ownerID, id))
}

func (m *MockRepository) List(ctx context.Context, ownerID ulid.ULID, opts task.ListOptions) ([]*task.Task, error) {
	ret := m.Called(ctx, ownerID, opts)
	var tasks []*task.Task
	if v := ret.Get(0); v != nil {
		tasks = v.([]*task.Task)
	}
	return tasks, ret.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, ownerID, id ulid.ULID) (*task.Task, error) {
	return taskResult(m.Called(ctx, ownerID, id))
}

func (m *MockRepository) DeleteAllByOwner(ctx context.Context, ownerID ulid.ULID) (int64, error) {
	ret := m.Called(ctx, ownerID)
	return ret.Get(0).(int64), ret.Error(1)
}
