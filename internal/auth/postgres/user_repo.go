// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/store"
	"github.com/tasktrack/tasktrack/pkg/errutil"
)

// Unique constraint names from the users migration.
const (
	constraintUserEmail  = "users_email_key"
	constraintUserHandle = "users_handle_key"
)

const userColumns = `id, name, handle, age, email, password_hash, created_at, updated_at`

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	db store.DBTX
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db store.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// uniqueViolation maps duplicate email or handle inserts to conflict errors.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintUserEmail:
		return oops.Code("USER_EMAIL_TAKEN").Wrap(errutil.Conflict("email is already registered"))
	case constraintUserHandle:
		return oops.Code("USER_HANDLE_TAKEN").Wrap(errutil.Conflict("handle is already taken"))
	default:
		return oops.Code("USER_DUPLICATE").
			With("constraint", pgErr.ConstraintName).
			Wrap(errutil.Conflict("user already exists"))
	}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO users (id, name, handle, age, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		user.ID.String(),
		user.Name,
		user.Handle,
		user.Age,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return conflict
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("handle", user.Handle).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	return r.getOne(ctx, "id", id.String())
}

// GetByEmail retrieves a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, "email", email)
}

// GetByHandle retrieves a user by handle.
func (r *UserRepository) GetByHandle(ctx context.Context, handle string) (*auth.User, error) {
	return r.getOne(ctx, "handle", handle)
}

// getOne looks a user up by one of the unique columns. column is never user
// input.
func (r *UserRepository) getOne(ctx context.Context, column, value string) (*auth.User, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With(column, value).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by "+column).
			Wrap(err)
	}
	return user, nil
}

// Update overwrites the mutable columns of an existing user.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE users
		SET name = $2, age = $3, email = $4, password_hash = $5, updated_at = $6
		WHERE id = $1
	`,
		user.ID.String(),
		user.Name,
		user.Age,
		user.Email,
		user.PasswordHash,
		user.UpdatedAt,
	)
	if err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return conflict
		}
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", user.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", user.ID.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// SetAvatar stores PNG bytes for the user. Nil clears the avatar.
func (r *UserRepository) SetAvatar(ctx context.Context, id ulid.ULID, png []byte) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1
	`, id.String(), png)
	if err != nil {
		return oops.Code("USER_AVATAR_SET_FAILED").
			With("operation", "update avatar").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// GetAvatar returns the stored avatar bytes.
func (r *UserRepository) GetAvatar(ctx context.Context, id ulid.ULID) ([]byte, error) {
	var png []byte
	err := store.Conn(ctx, r.db).QueryRow(ctx, `SELECT avatar FROM users WHERE id = $1`, id.String()).Scan(&png)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_AVATAR_GET_FAILED").
			With("operation", "select avatar").
			With("id", id.String()).
			Wrap(err)
	}
	if len(png) == 0 {
		return nil, oops.Code("AVATAR_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return png, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr     string
		user      auth.User
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&idStr, &user.Name, &user.Handle, &user.Age, &user.Email, &user.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with lookup context
		}
		return nil, oops.Code("USER_SCAN_FAILED").With("operation", "scan user").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").With("id", idStr).Wrap(err)
	}
	user.ID = id
	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return &user, nil
}
