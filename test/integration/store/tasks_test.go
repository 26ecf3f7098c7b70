// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

//go:build integration

package store_test

import (
	"context"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/task"
)

func texts(ts []*task.Task) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Text
	}
	return out
}

func listWith(ctx context.Context, owner ulid.ULID, query string) []*task.Task {
	q, err := url.ParseQuery(query)
	Expect(err).NotTo(HaveOccurred())
	opts, err := task.ParseListOptions(q)
	Expect(err).NotTo(HaveOccurred())
	got, err := tasks.List(ctx, owner, opts)
	Expect(err).NotTo(HaveOccurred())
	return got
}

var _ = Describe("TaskRepository", func() {
	var (
		ctx   context.Context
		owner *auth.User
		other *auth.User
		base  time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		owner = createUser(ctx, "owner")
		other = createUser(ctx, "intruder")
		base = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	})

	Describe("ownership", func() {
		It("hides another owner's task from get, update and delete", func() {
			t := createTask(ctx, owner.ID, "private", false, base)

			_, err := tasks.Get(ctx, other.ID, t.ID)
			Expect(err).To(MatchError(task.ErrNotFound))

			stolen := *t
			stolen.OwnerID = other.ID
			stolen.Text = "hijacked"
			Expect(tasks.Update(ctx, &stolen)).To(MatchError(task.ErrNotFound))

			_, err = tasks.Delete(ctx, other.ID, t.ID)
			Expect(err).To(MatchError(task.ErrNotFound))

			got, err := tasks.Get(ctx, owner.ID, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Text).To(Equal("private"))
		})

		It("lists only the owner's tasks", func() {
			createTask(ctx, owner.ID, "mine", false, base)
			createTask(ctx, other.ID, "theirs", false, base)

			Expect(texts(listWith(ctx, owner.ID, ""))).To(Equal([]string{"mine"}))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			createTask(ctx, owner.ID, "c", true, base.Add(2*time.Minute))
			createTask(ctx, owner.ID, "a", false, base)
			createTask(ctx, owner.ID, "d", false, base.Add(3*time.Minute))
			createTask(ctx, owner.ID, "b", true, base.Add(time.Minute))
		})

		It("defaults to creation order", func() {
			Expect(texts(listWith(ctx, owner.ID, ""))).To(Equal([]string{"a", "b", "c", "d"}))
		})

		It("filters by completion", func() {
			Expect(texts(listWith(ctx, owner.ID, "completed=true"))).To(Equal([]string{"b", "c"}))
			Expect(texts(listWith(ctx, owner.ID, "completed=nope"))).To(Equal([]string{"a", "d"}))
		})

		It("sorts descending", func() {
			Expect(texts(listWith(ctx, owner.ID, "sortBy=createdAt:desc"))).To(Equal([]string{"d", "c", "b", "a"}))
			Expect(texts(listWith(ctx, owner.ID, "sortBy=text:DESC"))).To(Equal([]string{"d", "c", "b", "a"}))
		})

		It("pages with limit and skip", func() {
			Expect(texts(listWith(ctx, owner.ID, "limit=2&skip=1"))).To(Equal([]string{"b", "c"}))
			Expect(texts(listWith(ctx, owner.ID, "limit=2&page=2"))).To(Equal([]string{"c", "d"}))
			Expect(listWith(ctx, owner.ID, "limit=2&skip=10")).To(BeEmpty())
		})

		It("breaks ties by id", func() {
			for _, text := range []string{"t1", "t2", "t3"} {
				createTask(ctx, other.ID, text, false, base)
			}

			got := listWith(ctx, other.ID, "")
			Expect(got).To(HaveLen(3))
			for i := 1; i < len(got); i++ {
				Expect(got[i-1].ID.Compare(got[i].ID)).To(BeNumerically("<", 0))
			}
		})
	})

	Describe("mutations", func() {
		It("updates text and completion", func() {
			t := createTask(ctx, owner.ID, "draft", false, base)
			t.Text = "final"
			t.Completed = true
			t.UpdatedAt = base.Add(time.Hour)

			Expect(tasks.Update(ctx, t)).To(Succeed())

			got, err := tasks.Get(ctx, owner.ID, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Text).To(Equal("final"))
			Expect(got.Completed).To(BeTrue())
			Expect(got.UpdatedAt).To(BeTemporally("~", base.Add(time.Hour), time.Millisecond))
		})

		It("returns the deleted task", func() {
			t := createTask(ctx, owner.ID, "gone", false, base)

			deleted, err := tasks.Delete(ctx, owner.ID, t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted.Text).To(Equal("gone"))

			_, err = tasks.Get(ctx, owner.ID, t.ID)
			Expect(err).To(MatchError(task.ErrNotFound))
		})

		It("deletes all of one owner's tasks", func() {
			createTask(ctx, owner.ID, "1", false, base)
			createTask(ctx, owner.ID, "2", false, base)
			createTask(ctx, other.ID, "3", false, base)

			n, err := tasks.DeleteAllByOwner(ctx, owner.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(2)))
			Expect(listWith(ctx, other.ID, "")).To(HaveLen(1))
		})
	})
})
