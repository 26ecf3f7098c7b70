// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/internal/fields"
	"github.com/tasktrack/tasktrack/pkg/errutil"
)

// TaskPurger removes every task owned by a user. It is satisfied by the task
// repository and used when an account is deleted.
type TaskPurger interface {
	DeleteAllByOwner(ctx context.Context, ownerID ulid.ULID) (int64, error)
}

// Transactor runs fn inside a database transaction carried by ctx.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ServiceDeps holds the collaborators of a Service. Notifier, Logger and Now
// are optional.
type ServiceDeps struct {
	Users    UserRepository
	Sessions SessionRepository
	Tasks    TaskPurger
	Tx       Transactor
	Hasher   PasswordHasher
	Tokens   *TokenIssuer
	Notifier Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service provides account and session operations.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tasks    TaskPurger
	tx       Transactor
	hasher   PasswordHasher
	tokens   *TokenIssuer
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Identity is the authenticated caller of a request.
type Identity struct {
	User    *User
	Token   string
	Session *Session
}

// NewService creates a new Service.
func NewService(deps ServiceDeps) (*Service, error) {
	switch {
	case deps.Users == nil:
		return nil, oops.Code("AUTH_DEPENDENCY_MISSING").Errorf("users repository is required")
	case deps.Sessions == nil:
		return nil, oops.Code("AUTH_DEPENDENCY_MISSING").Errorf("sessions repository is required")
	case deps.Tasks == nil:
		return nil, oops.Code("AUTH_DEPENDENCY_MISSING").Errorf("task purger is required")
	case deps.Tx == nil:
		return nil, oops.Code("AUTH_DEPENDENCY_MISSING").Errorf("transactor is required")
	case deps.Hasher == nil:
		return nil, oops.Code("AUTH_DEPENDENCY_MISSING").Errorf("password hasher is required")
	case deps.Tokens == nil:
		return nil, oops.Code("AUTH_DEPENDENCY_MISSING").Errorf("token issuer is required")
	}

	svc := &Service{
		users:    deps.Users,
		sessions: deps.Sessions,
		tasks:    deps.Tasks,
		tx:       deps.Tx,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	if svc.notifier == nil {
		svc.notifier = NopNotifier{}
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// dummyPasswordHash is verified when no account matches so that unknown
// identifiers and wrong passwords take comparable time. It matches nothing.
//
//nolint:gosec // G101: not a credential
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func (s *Service) bestEffort(ctx context.Context, operation string, err error, attrs ...any) {
	if err == nil {
		return
	}
	args := append([]any{"operation", operation, "error", err.Error()}, attrs...)
	s.logger.WarnContext(ctx, "best-effort operation failed", args...)
}

// CreateUser validates a signup field set, hashes the password and stores the
// new user.
func (s *Service) CreateUser(ctx context.Context, set fields.Set) (*User, error) {
	in, err := parseSignup(set)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.password)
	if err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").With("operation", "hash password").Wrap(err)
	}

	now := s.now()
	user := &User{
		ID:           ulid.Make(),
		Name:         in.name,
		Handle:       in.handle,
		Age:          in.age,
		Email:        in.email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").With("operation", "create user").Wrap(err)
	}
	return user, nil
}

// Signup creates a user, sends the welcome notification and issues a first
// token.
func (s *Service) Signup(ctx context.Context, set fields.Set, client ClientInfo) (*User, string, error) {
	user, err := s.CreateUser(ctx, set)
	if err != nil {
		return nil, "", err
	}

	s.bestEffort(ctx, "welcome", s.notifier.Welcome(ctx, user.Recipient()), "user_id", user.ID.String())

	token, err := s.IssueToken(ctx, user, client)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// VerifyCredentials returns the user matching id when password verifies.
// Unknown identifiers and wrong passwords both yield ErrInvalidLogin.
func (s *Service) VerifyCredentials(ctx context.Context, id Identifier, password string) (*User, error) {
	lookup := s.users.GetByEmail
	if id.Kind == IdentifierHandle {
		lookup = s.users.GetByHandle
	}
	user, lookupErr := lookup(ctx, id.Value)

	targetHash := dummyPasswordHash
	exists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by "+id.Kind.String()).
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		exists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && exists {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("user_id", user.ID.String()).
			Wrap(verifyErr)
	}
	if !exists || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").
			With("identifier", id.Kind.String()).
			Wrap(ErrInvalidLogin)
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}
	return user, nil
}

func (s *Service) upgradeHash(ctx context.Context, user *User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.bestEffort(ctx, "upgrade_hash", err, "user_id", user.ID.String())
		return
	}
	upgraded := *user
	upgraded.PasswordHash = hash
	upgraded.UpdatedAt = s.now()
	if err := s.users.Update(ctx, &upgraded); err != nil {
		s.bestEffort(ctx, "upgrade_hash", err, "user_id", user.ID.String())
		return
	}
	*user = upgraded
}

// Login checks a login field set and issues a token for the matching user.
func (s *Service) Login(ctx context.Context, set fields.Set, client ClientInfo) (*User, string, error) {
	id, password, err := parseLogin(set)
	if err != nil {
		return nil, "", err
	}

	user, err := s.VerifyCredentials(ctx, id, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(ctx, user, client)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a token for user and records it as an active session.
func (s *Service) IssueToken(ctx context.Context, user *User, client ClientInfo) (string, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_ISSUE_FAILED").With("user_id", user.ID.String()).Wrap(err)
	}

	session, err := NewSession(user.ID, HashToken(token), client, s.now(), expiresAt)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_ISSUE_FAILED").With("operation", "build session").Wrap(err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return token, nil
}

// RevokeOne removes the session for token. Revoking an absent session
// succeeds.
func (s *Service) RevokeOne(ctx context.Context, userID ulid.ULID, token string) error {
	if err := s.sessions.DeleteByTokenHash(ctx, userID, HashToken(token)); err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// RevokeAll removes every session of the user.
func (s *Service) RevokeAll(ctx context.Context, userID ulid.ULID) error {
	n, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return oops.Code("AUTH_LOGOUT_ALL_FAILED").
			With("operation", "delete sessions").
			With("user_id", userID.String()).
			Wrap(err)
	}
	s.logger.DebugContext(ctx, "sessions revoked", "user_id", userID.String(), "count", n)
	return nil
}

// Authenticate resolves a bearer token to its caller. The token must verify,
// be unexpired, and still have a session row belonging to its subject.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, oops.Code("AUTH_TOKEN_MISSING").Wrap(ErrUnauthenticated)
	}

	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			errutil.LogErrorContext(ctx, s.logger, "session lookup failed", err)
		}
		return nil, oops.Code("AUTH_SESSION_REVOKED").With("user_id", userID.String()).Wrap(ErrUnauthenticated)
	}

	now := s.now()
	if session.UserID != userID || session.IsExpiredAt(now) {
		return nil, oops.Code("AUTH_SESSION_INVALID").With("user_id", userID.String()).Wrap(ErrUnauthenticated)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			errutil.LogErrorContext(ctx, s.logger, "user lookup failed", err)
		}
		return nil, oops.Code("AUTH_USER_MISSING").With("user_id", userID.String()).Wrap(ErrUnauthenticated)
	}

	s.bestEffort(ctx, "update_last_seen", s.sessions.UpdateLastSeen(ctx, session.ID, now),
		"session_id", session.ID.String())
	session.LastSeenAt = now

	return &Identity{User: user, Token: token, Session: session}, nil
}

// UpdateSelf applies a whitelisted partial update to current and returns the
// stored result. A new password is hashed exactly once.
func (s *Service) UpdateSelf(ctx context.Context, current *User, set fields.Set) (*User, error) {
	if err := UpdateFields.Check(set); err != nil {
		return nil, err
	}

	updated := *current

	name, err := set.String("name")
	if err != nil {
		return nil, err
	}
	if name != nil {
		if updated.Name, err = ValidateName(*name); err != nil {
			return nil, err
		}
	}

	email, err := set.String("email")
	if err != nil {
		return nil, err
	}
	if email != nil {
		if updated.Email, err = NormalizeEmail(*email); err != nil {
			return nil, err
		}
	}

	age, err := set.Int("age")
	if err != nil {
		return nil, err
	}
	if age != nil {
		if err := ValidateAge(*age); err != nil {
			return nil, err
		}
		updated.Age = *age
	}

	password, err := set.String("password")
	if err != nil {
		return nil, err
	}
	if password != nil {
		if err := ValidatePassword(*password); err != nil {
			return nil, err
		}
		if updated.PasswordHash, err = s.hasher.Hash(*password); err != nil {
			return nil, oops.Code("AUTH_UPDATE_FAILED").With("operation", "hash password").Wrap(err)
		}
	}

	updated.UpdatedAt = s.now()
	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "update user").
			With("user_id", current.ID.String()).
			Wrap(err)
	}
	return &updated, nil
}

// DeleteSelf removes the user's tasks, sessions and account in one
// transaction and returns the account as it was before deletion.
func (s *Service) DeleteSelf(ctx context.Context, userID ulid.ULID) (*User, error) {
	var snapshot *User
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return oops.Code("AUTH_DELETE_FAILED").With("operation", "get user").Wrap(err)
		}
		if _, err := s.tasks.DeleteAllByOwner(ctx, userID); err != nil {
			return oops.Code("AUTH_DELETE_FAILED").With("operation", "delete tasks").Wrap(err)
		}
		if _, err := s.sessions.DeleteByUser(ctx, userID); err != nil {
			return oops.Code("AUTH_DELETE_FAILED").With("operation", "delete sessions").Wrap(err)
		}
		if err := s.users.Delete(ctx, userID); err != nil {
			return oops.Code("AUTH_DELETE_FAILED").With("operation", "delete user").Wrap(err)
		}
		snapshot = user
		return nil
	})
	if err != nil {
		return nil, oops.With("user_id", userID.String()).Wrap(err)
	}

	s.bestEffort(ctx, "goodbye", s.notifier.Goodbye(ctx, snapshot.Recipient()), "user_id", userID.String())
	return snapshot, nil
}

// SetAvatar stores an already normalized PNG avatar.
func (s *Service) SetAvatar(ctx context.Context, userID ulid.ULID, png []byte) error {
	if len(png) == 0 {
		return oops.Code("AUTH_AVATAR_EMPTY").Wrap(errutil.Validation("avatar image is empty"))
	}
	if err := s.users.SetAvatar(ctx, userID, png); err != nil {
		return oops.Code("AUTH_AVATAR_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	return nil
}

// ClearAvatar removes the user's avatar.
func (s *Service) ClearAvatar(ctx context.Context, userID ulid.ULID) error {
	if err := s.users.SetAvatar(ctx, userID, nil); err != nil {
		return oops.Code("AUTH_AVATAR_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	return nil
}

// Avatar returns the user's PNG avatar or ErrNotFound.
func (s *Service) Avatar(ctx context.Context, userID ulid.ULID) ([]byte, error) {
	png, err := s.users.GetAvatar(ctx, userID)
	if err != nil {
		return nil, oops.Code("AUTH_AVATAR_GET_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	return png, nil
}
