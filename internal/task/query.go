// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package task

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/pkg/errutil"
)

// Page size bounds.
const (
	DefaultLimit = 10
	MaxLimit     = 10000
)

// SortField is a sortable task attribute.
type SortField string

// Sortable fields, named as they appear in the sortBy query parameter.
const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortText      SortField = "text"
	SortCompleted SortField = "completed"
)

var sortColumns = map[SortField]string{
	SortCreatedAt: "created_at",
	SortUpdatedAt: "updated_at",
	SortText:      "text",
	SortCompleted: "completed",
}

// Column returns the database column for f, or "" when f is not sortable.
func (f SortField) Column() string {
	return sortColumns[f]
}

// ListOptions filters, orders and pages a task listing.
type ListOptions struct {
	// Completed filters by completion when non-nil.
	Completed *bool
	SortBy    SortField
	Desc      bool
	Limit     int
	Offset    int
}

// DefaultListOptions returns the first page in creation order.
func DefaultListOptions() ListOptions {
	return ListOptions{SortBy: SortCreatedAt, Limit: DefaultLimit}
}

// ParseListOptions reads completed, limit, skip, page and sortBy from q.
// Malformed numbers fall back to their defaults. A limit above MaxLimit, a
// page whose offset overflows, and an unknown sort field are validation
// errors.
func ParseListOptions(q url.Values) (ListOptions, error) {
	opts := DefaultListOptions()

	if v := q.Get("completed"); v != "" {
		completed := strings.EqualFold(strings.TrimSpace(v), "true")
		opts.Completed = &completed
	}

	if n, ok := positiveInt(q.Get("limit")); ok {
		if n > MaxLimit {
			return ListOptions{}, oops.Code("TASK_LIMIT_INVALID").
				With("limit", n).
				Wrap(errutil.Validation("Invalid limit, at most %d tasks per page", MaxLimit))
		}
		opts.Limit = n
	}

	if n, err := strconv.Atoi(strings.TrimSpace(q.Get("skip"))); err == nil && n > 0 {
		opts.Offset = n
	}
	if page, ok := positiveInt(q.Get("page")); ok {
		if page-1 > math.MaxInt32/opts.Limit {
			return ListOptions{}, oops.Code("TASK_PAGE_INVALID").
				With("page", page).
				With("limit", opts.Limit).
				Wrap(errutil.Validation("Invalid page"))
		}
		opts.Offset = (page - 1) * opts.Limit
	}

	if v := q.Get("sortBy"); v != "" {
		field, dir, _ := strings.Cut(v, ":")
		sortBy := SortField(strings.TrimSpace(field))
		if sortBy.Column() == "" {
			return ListOptions{}, oops.Code("TASK_SORT_INVALID").
				With("sort_by", v).
				Wrap(errutil.Validation("Invalid sort field, allowed fields [createdAt,updatedAt,text,completed]"))
		}
		opts.SortBy = sortBy
		opts.Desc = strings.EqualFold(strings.TrimSpace(dir), "desc")
	}

	return opts, nil
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
