// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package postgres implements task.Repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/internal/store"
	"github.com/tasktrack/tasktrack/internal/task"
)

const taskColumns = `id, owner_id, text, completed, created_at, updated_at`

// TaskRepository implements task.Repository using PostgreSQL.
type TaskRepository struct {
	db store.DBTX
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db store.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create stores a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO tasks (id, owner_id, text, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		t.ID.String(),
		t.OwnerID.String(),
		t.Text,
		t.Completed,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TASK_INSERT_FAILED").
			With("operation", "insert task").
			With("owner_id", t.OwnerID.String()).
			Wrap(err)
	}
	return nil
}

// Get retrieves the owner's task by ID.
func (r *TaskRepository) Get(ctx context.Context, ownerID, id ulid.ULID) (*task.Task, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`,
		id.String(), ownerID.String())

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TASK_NOT_FOUND").With("id", id.String()).Wrap(task.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TASK_SELECT_FAILED").With("operation", "get task").Wrap(err)
	}
	return t, nil
}

// listQuery builds the SELECT for opts. The ORDER BY column comes from the
// sort field whitelist, never from the request.
func listQuery(ownerID ulid.ULID, opts task.ListOptions) (string, []any) {
	var sb strings.Builder
	args := []any{ownerID.String()}

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`)
	if opts.Completed != nil {
		args = append(args, *opts.Completed)
		fmt.Fprintf(&sb, ` AND completed = $%d`, len(args))
	}

	column := opts.SortBy.Column()
	if column == "" {
		column = task.SortCreatedAt.Column()
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, ` ORDER BY %s %s, id %s`, column, dir, dir)

	limit := opts.Limit
	if limit <= 0 {
		limit = task.DefaultLimit
	}
	args = append(args, limit, max(opts.Offset, 0))
	fmt.Fprintf(&sb, ` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return sb.String(), args
}

// List returns the owner's tasks matching opts.
func (r *TaskRepository) List(ctx context.Context, ownerID ulid.ULID, opts task.ListOptions) ([]*task.Task, error) {
	sql, args := listQuery(ownerID, opts)
	rows, err := store.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code("TASK_LIST_QUERY_FAILED").
			With("operation", "list tasks").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TASK_ROWS_ERROR").With("operation", "iterate task rows").Wrap(err)
	}
	return tasks, nil
}

// Update overwrites text, completion and update time of the owner's task.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE tasks SET text = $3, completed = $4, updated_at = $5
		WHERE id = $1 AND owner_id = $2
	`,
		t.ID.String(),
		t.OwnerID.String(),
		t.Text,
		t.Completed,
		t.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TASK_UPDATE_QUERY_FAILED").
			With("operation", "update task").
			With("id", t.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TASK_NOT_FOUND").With("id", t.ID.String()).Wrap(task.ErrNotFound)
	}
	return nil
}

// Delete removes the owner's task and returns it as it was.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id ulid.ULID) (*task.Task, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2 RETURNING `+taskColumns,
		id.String(), ownerID.String())

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TASK_NOT_FOUND").With("id", id.String()).Wrap(task.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TASK_DELETE_QUERY_FAILED").With("operation", "delete task").Wrap(err)
	}
	return t, nil
}

// DeleteAllByOwner removes every task of the owner.
func (r *TaskRepository) DeleteAllByOwner(ctx context.Context, ownerID ulid.ULID) (int64, error) {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `DELETE FROM tasks WHERE owner_id = $1`, ownerID.String())
	if err != nil {
		return 0, oops.Code("TASK_DELETE_ALL_QUERY_FAILED").
			With("operation", "delete tasks by owner").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		idStr, ownerStr string
		t               task.Task
	)
	err := row.Scan(&idStr, &ownerStr, &t.Text, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with lookup context
		}
		return nil, oops.Code("TASK_SCAN_FAILED").With("operation", "scan task").Wrap(err)
	}

	if t.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("TASK_INVALID_ID").With("id", idStr).Wrap(err)
	}
	if t.OwnerID, err = ulid.Parse(ownerStr); err != nil {
		return nil, oops.Code("TASK_INVALID_OWNER_ID").With("owner_id", ownerStr).Wrap(err)
	}
	return &t, nil
}
