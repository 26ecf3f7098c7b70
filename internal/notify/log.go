// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package notify

import (
	"context"
	"log/slog"

	"github.com/tasktrack/tasktrack/internal/auth"
)

// LogNotifier writes notifications to a logger instead of sending them.
// It is used when no SMTP server is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger selects slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Welcome implements auth.Notifier.
func (n *LogNotifier) Welcome(ctx context.Context, to auth.Recipient) error {
	n.log(ctx, welcomeMessage(to))
	return nil
}

// Goodbye implements auth.Notifier.
func (n *LogNotifier) Goodbye(ctx context.Context, to auth.Recipient) error {
	n.log(ctx, goodbyeMessage(to))
	return nil
}

func (n *LogNotifier) log(ctx context.Context, m Message) {
	n.logger.InfoContext(ctx, "notification",
		"to", m.To.Email,
		"subject", m.Subject,
	)
}
