// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/pkg/errutil"
)

var _ = Describe("UserRepository", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("persists every field", func() {
			u := createUser(ctx, "alice")

			got, err := users.GetByID(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("User alice"))
			Expect(got.Handle).To(Equal("alice"))
			Expect(got.Age).To(Equal(30))
			Expect(got.Email).To(Equal("alice@example.com"))
			Expect(got.PasswordHash).To(Equal(u.PasswordHash))
			Expect(got.CreatedAt).To(BeTemporally("~", u.CreatedAt, time.Millisecond))
		})

		It("rejects a duplicate email as a conflict", func() {
			createUser(ctx, "alice")
			dup := &auth.User{
				ID: ulid.Make(), Name: "Other", Handle: "other", Age: 20,
				Email: "alice@example.com", PasswordHash: "h",
				CreatedAt: time.Now(), UpdatedAt: time.Now(),
			}

			err := users.Create(ctx, dup)
			Expect(err).To(HaveOccurred())
			Expect(errutil.KindOf(err)).To(Equal(errutil.KindConflict))
			Expect(errutil.PublicMessage(err)).To(ContainSubstring("email"))
		})

		It("rejects a duplicate handle as a conflict", func() {
			createUser(ctx, "alice")
			dup := &auth.User{
				ID: ulid.Make(), Name: "Other", Handle: "alice", Age: 20,
				Email: "other@example.com", PasswordHash: "h",
				CreatedAt: time.Now(), UpdatedAt: time.Now(),
			}

			err := users.Create(ctx, dup)
			Expect(err).To(HaveOccurred())
			Expect(errutil.KindOf(err)).To(Equal(errutil.KindConflict))
			Expect(errutil.PublicMessage(err)).To(ContainSubstring("handle"))
		})
	})

	Describe("lookups", func() {
		It("finds by email and handle", func() {
			u := createUser(ctx, "bobby")

			byEmail, err := users.GetByEmail(ctx, "bobby@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(byEmail.ID).To(Equal(u.ID))

			byHandle, err := users.GetByHandle(ctx, "bobby")
			Expect(err).NotTo(HaveOccurred())
			Expect(byHandle.ID).To(Equal(u.ID))
		})

		It("returns ErrNotFound for unknown users", func() {
			_, err := users.GetByID(ctx, ulid.Make())
			Expect(err).To(MatchError(auth.ErrNotFound))

			_, err = users.GetByHandle(ctx, "nobody")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("Update", func() {
		It("overwrites mutable columns", func() {
			u := createUser(ctx, "carol")
			u.Name = "Carol C"
			u.Age = 41
			u.UpdatedAt = time.Now().UTC()

			Expect(users.Update(ctx, u)).To(Succeed())

			got, err := users.GetByID(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Carol C"))
			Expect(got.Age).To(Equal(41))
		})

		It("maps an email collision to a conflict", func() {
			createUser(ctx, "carol")
			dave := createUser(ctx, "davey")
			dave.Email = "carol@example.com"

			err := users.Update(ctx, dave)
			Expect(errutil.KindOf(err)).To(Equal(errutil.KindConflict))
		})
	})

	Describe("avatars", func() {
		It("stores, reads and clears the avatar", func() {
			u := createUser(ctx, "erin1")

			_, err := users.GetAvatar(ctx, u.ID)
			Expect(err).To(MatchError(auth.ErrNotFound))

			Expect(users.SetAvatar(ctx, u.ID, []byte{0x89, 'P', 'N', 'G'})).To(Succeed())
			data, err := users.GetAvatar(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte{0x89, 'P', 'N', 'G'}))

			Expect(users.SetAvatar(ctx, u.ID, nil)).To(Succeed())
			_, err = users.GetAvatar(ctx, u.ID)
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the user and cascades sessions", func() {
			u := createUser(ctx, "frank")
			now := time.Now()
			s, err := auth.NewSession(u.ID, auth.HashToken("tok"), auth.ClientInfo{}, now, now.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions.Create(ctx, s)).To(Succeed())

			Expect(users.Delete(ctx, u.ID)).To(Succeed())

			_, err = users.GetByID(ctx, u.ID)
			Expect(err).To(MatchError(auth.ErrNotFound))
			_, err = sessions.GetByTokenHash(ctx, auth.HashToken("tok"))
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("refuses to delete a user who still owns tasks", func() {
			u := createUser(ctx, "grace")
			createTask(ctx, u.ID, "left over", false, time.Now())

			Expect(users.Delete(ctx, u.ID)).NotTo(Succeed())
		})
	})
})
