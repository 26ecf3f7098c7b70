// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package mocks provides testify doubles for the auth package interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/tasktrack/tasktrack/internal/auth"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t cleanupT) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

func userResult(ret mock.Arguments) (*auth.User, error) {
	var u *auth.User
	if v := ret.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, ret.Error(1)
}

// MockUserRepository is a testify double for auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a MockUserRepository whose expectations are
// asserted when the test ends.
func NewMockUserRepository(t cleanupT) *MockUserRepository {
	m := &MockUserRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	return userResult(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return userResult(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByHandle(ctx context.Context, handle string) (*auth.User, error) {
	return userResult(m.Called(ctx, handle))
}

func (m *MockUserRepository) Update(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) SetAvatar(ctx context.Context, id ulid.ULID, png []byte) error {
	return m.Called(ctx, id, png).Error(0)
}

func (m *MockUserRepository) GetAvatar(ctx context.Context, id ulid.ULID) ([]byte, error) {
	ret := m.Called(ctx, id)
	var png []byte
	if v := ret.Get(0); v != nil {
		png = v.([]byte)
	}
	return png, ret.Error(1)
}

// MockSessionRepository is a testify double for auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a MockSessionRepository.
func NewMockSessionRepository(t cleanupT) *MockSessionRepository {
	m := &MockSessionRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockSessionRepository) Create(ctx context.Context, session *auth.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	ret := m.Called(ctx, tokenHash)
	var s *auth.Session
	if v := ret.Get(0); v != nil {
		s = v.(*auth.Session)
	}
	return s, ret.Error(1)
}

func (m *MockSessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	return m.Called(ctx, id, lastSeen).Error(0)
}

func (m *MockSessionRepository) DeleteByTokenHash(ctx context.Context, userID ulid.ULID, tokenHash string) error {
	return m.Called(ctx, userID, tokenHash).Error(0)
}

func (m *MockSessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	ret := m.Called(ctx, userID)
	return ret.Get(0).(int64), ret.Error(1)
}

// MockPasswordHasher is a testify double for auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher.
func NewMockPasswordHasher(t cleanupT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	register(&m.Mock, t)
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	ret := m.Called(password)
	return ret.String(0), ret.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	ret := m.Called(password, hash)
	return ret.Bool(0), ret.Error(1)
}

func (m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	return m.Called(hash).Bool(0)
}

// MockTaskPurger is a testify double for auth.TaskPurger.
type MockTaskPurger struct {
	mock.Mock
}

// NewMockTaskPurger creates a MockTaskPurger.
func NewMockTaskPurger(t cleanupT) *MockTaskPurger {
	m := &MockTaskPurger{}
	register(&m.Mock, t)
	return m
}

func (m *MockTaskPurger) DeleteAllByOwner(ctx context.Context, ownerID ulid.ULID) (int64, error) {
	ret := m.Called(ctx, ownerID)
	return ret.Get(0).(int64), ret.Error(1)
}

// MockNotifier is a testify double for auth.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a MockNotifier.
func NewMockNotifier(t cleanupT) *MockNotifier {
	m := &MockNotifier{}
	register(&m.Mock, t)
	return m
}

func (m *MockNotifier) Welcome(ctx context.Context, to auth.Recipient) error {
	return m.Called(ctx, to).Error(0)
}

func (m *MockNotifier) Goodbye(ctx context.Context, to auth.Recipient) error {
	return m.Called(ctx, to).Error(0)
}

// InlineTransactor runs the function directly on the caller's context.
// Err, when set, is returned before fn runs, as if BEGIN had failed.
type InlineTransactor struct {
	Err   error
	Calls int
}

func (t *InlineTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	if t.Err != nil {
		return t.Err
	}
	return fn(ctx)
}
