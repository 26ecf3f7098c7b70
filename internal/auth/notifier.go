// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package auth

import "context"

// Recipient is the addressee of an account notification.
type Recipient struct {
	Email string
	Name  string
}

// Notifier sends account lifecycle messages. Delivery failures are logged by
// the caller and never fail the originating request.
type Notifier interface {
	Welcome(ctx context.Context, to Recipient) error
	Goodbye(ctx context.Context, to Recipient) error
}

// NopNotifier discards every notification.
type NopNotifier struct{}

// Welcome implements Notifier.
func (NopNotifier) Welcome(context.Context, Recipient) error { return nil }

// Goodbye implements Notifier.
func (NopNotifier) Goodbye(context.Context, Recipient) error { return nil }
