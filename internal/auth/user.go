// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// User is an account. PasswordHash never holds plaintext.
type User struct {
	ID           ulid.ULID
	Name         string
	Handle       string
	Age          int
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Recipient returns the notification address for u.
func (u *User) Recipient() Recipient {
	return Recipient{Email: u.Email, Name: u.Name}
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. A duplicate email or handle yields a
	// conflict error.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by normalized email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByHandle retrieves a user by handle.
	GetByHandle(ctx context.Context, handle string) (*User, error)

	// Update overwrites the mutable columns of an existing user.
	Update(ctx context.Context, user *User) error

	// Delete removes a user.
	Delete(ctx context.Context, id ulid.ULID) error

	// SetAvatar stores PNG bytes for the user. Nil clears the avatar.
	SetAvatar(ctx context.Context, id ulid.ULID, png []byte) error

	// GetAvatar returns the stored avatar, or ErrNotFound when the user or
	// the avatar is absent.
	GetAvatar(ctx context.Context, id ulid.ULID) ([]byte, error)
}
