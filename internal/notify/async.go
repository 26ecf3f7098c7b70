// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/tasktrack/tasktrack/internal/auth"
)

// DefaultQueueSize is the Async queue capacity when none is given.
const DefaultQueueSize = 64

// ErrQueueFull is returned when a notification cannot be queued.
var ErrQueueFull = oops.Code("NOTIFY_QUEUE_FULL").Errorf("notification queue is full")

// ErrClosed is returned for notifications submitted after Close.
var ErrClosed = oops.Code("NOTIFY_CLOSED").Errorf("notifier is closed")

type job struct {
	ctx  context.Context
	send func(ctx context.Context) error
	kind string
}

// Async hands notifications to a single background worker so request
// handlers never wait on delivery.
type Async struct {
	next   auth.Notifier
	logger *slog.Logger
	queue  chan job
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsync starts the worker. Close must be called to stop it.
func NewAsync(next auth.Notifier, size int, logger *slog.Logger) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Async{
		next:   next,
		logger: logger,
		queue:  make(chan job, size),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for j := range a.queue {
		if err := j.send(j.ctx); err != nil {
			a.logger.WarnContext(j.ctx, "notification dropped", "kind", j.kind, "error", err.Error())
		}
	}
}

func (a *Async) enqueue(ctx context.Context, kind string, send func(ctx context.Context) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	// the request context ends with the response; keep its values only
	select {
	case a.queue <- job{ctx: context.WithoutCancel(ctx), send: send, kind: kind}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Welcome implements auth.Notifier.
func (a *Async) Welcome(ctx context.Context, to auth.Recipient) error {
	return a.enqueue(ctx, "welcome", func(ctx context.Context) error { return a.next.Welcome(ctx, to) })
}

// Goodbye implements auth.Notifier.
func (a *Async) Goodbye(ctx context.Context, to auth.Recipient) error {
	return a.enqueue(ctx, "goodbye", func(ctx context.Context) error { return a.next.Goodbye(ctx, to) })
}

// Close stops accepting notifications and waits for queued ones to drain, or
// for ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return oops.Code("NOTIFY_DRAIN_TIMEOUT").Wrap(ctx.Err())
	}
}
