// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

//go:build integration

package store_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tasktrack/tasktrack/internal/store"
)

var _ = Describe("Migrator", func() {
	It("reports every embedded migration as applied", func() {
		m, err := store.NewMigrator(env.ConnStr)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = m.Close() }()

		status, err := m.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Dirty).To(BeFalse())
		Expect(status.Pending).To(BeEmpty())
		Expect(status.Applied).To(Equal([]uint{1, 2, 3}))
		Expect(status.Version).To(Equal(uint(3)))
	})

	It("steps down and back up", func() {
		m, err := store.NewMigrator(env.ConnStr)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = m.Close() }()

		Expect(m.Steps(-1)).To(Succeed())
		pending, err := m.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(Equal([]uint{3}))

		Expect(m.Up()).To(Succeed())
		Expect(m.Up()).To(Succeed(), "a second Up is a no-op")
		pending, err = m.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())
	})
})

var _ = Describe("Transactor", func() {
	It("rolls back every write when fn fails", func() {
		ctx := context.Background()
		tx := store.NewTransactor(env.Pool)
		boom := errors.New("boom")

		err := tx.InTransaction(ctx, func(ctx context.Context) error {
			u := createUser(ctx, "rolledback")
			createTask(ctx, u.ID, "never", false, time.Now())
			return boom
		})
		Expect(err).To(MatchError(boom))

		_, err = users.GetByHandle(ctx, "rolledback")
		Expect(err).To(HaveOccurred())
	})
})
