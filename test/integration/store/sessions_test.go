// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tasktrack/tasktrack/internal/auth"
)

var _ = Describe("SessionRepository", func() {
	var (
		ctx  context.Context
		user *auth.User
		now  time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		user = createUser(ctx, "sessions")
		now = time.Now().UTC().Truncate(time.Microsecond)
	})

	newSession := func(token string, expiresAt time.Time) *auth.Session {
		s, err := auth.NewSession(user.ID, auth.HashToken(token), auth.ClientInfo{UserAgent: "ginkgo", IPAddress: "127.0.0.1"}, now, expiresAt)
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions.Create(ctx, s)).To(Succeed())
		return s
	}

	It("round-trips a session by token hash", func() {
		s := newSession("first", now.Add(time.Hour))

		got, err := sessions.GetByTokenHash(ctx, auth.HashToken("first"))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(s.ID))
		Expect(got.UserID).To(Equal(user.ID))
		Expect(got.UserAgent).To(Equal("ginkgo"))
		Expect(got.IPAddress).To(Equal("127.0.0.1"))
		Expect(got.ExpiresAt).To(BeTemporally("~", s.ExpiresAt, time.Millisecond))
	})

	It("keeps several active sessions per user", func() {
		newSession("a", now.Add(time.Hour))
		newSession("b", now.Add(time.Hour))

		for _, token := range []string{"a", "b"} {
			_, err := sessions.GetByTokenHash(ctx, auth.HashToken(token))
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("revokes one session and leaves the others", func() {
		newSession("keep", now.Add(time.Hour))
		newSession("drop", now.Add(time.Hour))

		Expect(sessions.DeleteByTokenHash(ctx, user.ID, auth.HashToken("drop"))).To(Succeed())
		Expect(sessions.DeleteByTokenHash(ctx, user.ID, auth.HashToken("drop"))).To(Succeed())

		_, err := sessions.GetByTokenHash(ctx, auth.HashToken("drop"))
		Expect(err).To(MatchError(auth.ErrNotFound))
		_, err = sessions.GetByTokenHash(ctx, auth.HashToken("keep"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("does not revoke another user's session", func() {
		other := createUser(ctx, "otheruser")
		newSession("mine", now.Add(time.Hour))

		Expect(sessions.DeleteByTokenHash(ctx, other.ID, auth.HashToken("mine"))).To(Succeed())

		_, err := sessions.GetByTokenHash(ctx, auth.HashToken("mine"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("revokes every session of the user", func() {
		newSession("x", now.Add(time.Hour))
		newSession("y", now.Add(time.Hour))

		n, err := sessions.DeleteByUser(ctx, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(2)))
	})

	It("updates last seen", func() {
		s := newSession("seen", now.Add(time.Hour))
		later := now.Add(10 * time.Minute)

		Expect(sessions.UpdateLastSeen(ctx, s.ID, later)).To(Succeed())

		got, err := sessions.GetByTokenHash(ctx, auth.HashToken("seen"))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.LastSeenAt).To(BeTemporally("~", later, time.Millisecond))
	})

	It("prunes only expired sessions", func() {
		newSession("live", now.Add(time.Hour))
		newSession("stale", now.Add(time.Minute))

		n, err := sessions.DeleteExpired(ctx, now.Add(2*time.Minute))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))

		_, err = sessions.GetByTokenHash(ctx, auth.HashToken("live"))
		Expect(err).NotTo(HaveOccurred())
		_, err = sessions.GetByTokenHash(ctx, auth.HashToken("stale"))
		Expect(err).To(MatchError(auth.ErrNotFound))
	})
})
