// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package task implements owner-scoped task records and the list query
// parameters that filter, sort and page them.
package task

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/internal/fields"
	"github.com/tasktrack/tasktrack/pkg/errutil"
)

// ErrNotFound is returned for a task that does not exist or belongs to
// another owner. The two cases are indistinguishable to callers.
var ErrNotFound = errutil.NotFound("Task does not found!")

// Field whitelists for task operations.
var (
	CreateFields = fields.Whitelist{
		Allowed:        []string{"text", "completed"},
		EmptyMessage:   "please provide at least the task text to create it!",
		UnknownMessage: "Not allowed fields passed, allowed fields [text,completed]",
	}
	UpdateFields = fields.Whitelist{
		Allowed:        []string{"text", "completed"},
		UnknownMessage: "Invalid updates passed!",
	}
)

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID        ulid.ULID
	OwnerID   ulid.ULID
	Text      string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository manages task persistence. Every method is scoped to an owner.
type Repository interface {
	// Create stores a new task.
	Create(ctx context.Context, task *Task) error

	// Get retrieves the owner's task by ID.
	Get(ctx context.Context, ownerID, id ulid.ULID) (*Task, error)

	// List returns the owner's tasks matching opts, in order.
	List(ctx context.Context, ownerID ulid.ULID, opts ListOptions) ([]*Task, error)

	// Update overwrites text, completion and update time of the owner's task.
	Update(ctx context.Context, task *Task) error

	// Delete removes the owner's task and returns it as it was.
	Delete(ctx context.Context, ownerID, id ulid.ULID) (*Task, error)

	// DeleteAllByOwner removes every task of the owner and returns the count.
	DeleteAllByOwner(ctx context.Context, ownerID ulid.ULID) (int64, error)
}

var errTextRequired = errutil.Validation("text is required")

// ValidateText trims text and requires it to be non-empty.
func ValidateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", oops.Code("TASK_INVALID_TEXT").With("field", "text").Wrap(errTextRequired)
	}
	return text, nil
}

// apply copies the provided whitelisted fields of set onto t.
func apply(t *Task, set fields.Set) error {
	text, err := set.String("text")
	if err != nil {
		return err
	}
	if text != nil {
		if t.Text, err = ValidateText(*text); err != nil {
			return err
		}
	}

	completed, err := set.Bool("completed")
	if err != nil {
		return err
	}
	if completed != nil {
		t.Completed = *completed
	}
	return nil
}
