// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"gopkg.in/gomail.v2"

	"github.com/tasktrack/tasktrack/internal/auth"
)

// MaxAttempts bounds SMTP delivery attempts per message.
const MaxAttempts = 3

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends notifications by email.
type SMTPNotifier struct {
	from    string
	sender  Sender
	backoff func() retry.Backoff
	logger  *slog.Logger
}

// SMTPOption configures an SMTPNotifier.
type SMTPOption func(*SMTPNotifier)

// WithSender replaces the gomail dialer.
func WithSender(s Sender) SMTPOption {
	return func(n *SMTPNotifier) { n.sender = s }
}

// WithBaseDelay sets the first retry delay.
func WithBaseDelay(d time.Duration) SMTPOption {
	return func(n *SMTPNotifier) { n.backoff = exponential(d) }
}

// WithSMTPLogger sets the logger.
func WithSMTPLogger(logger *slog.Logger) SMTPOption {
	return func(n *SMTPNotifier) { n.logger = logger }
}

func exponential(base time.Duration) func() retry.Backoff {
	return func() retry.Backoff {
		return retry.WithMaxRetries(MaxAttempts-1, retry.NewExponential(base))
	}
}

// NewSMTPNotifier creates an SMTPNotifier for cfg.
func NewSMTPNotifier(cfg SMTPConfig, opts ...SMTPOption) (*SMTPNotifier, error) {
	if !cfg.Enabled() {
		return nil, oops.Code("SMTP_CONFIG_INVALID").Errorf("smtp host and sender address are required")
	}
	n := &SMTPNotifier{
		from:    cfg.From,
		sender:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		backoff: exponential(500 * time.Millisecond),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Welcome implements auth.Notifier.
func (n *SMTPNotifier) Welcome(ctx context.Context, to auth.Recipient) error {
	return n.send(ctx, welcomeMessage(to))
}

// Goodbye implements auth.Notifier.
func (n *SMTPNotifier) Goodbye(ctx context.Context, to auth.Recipient) error {
	return n.send(ctx, goodbyeMessage(to))
}

func (n *SMTPNotifier) compose(m Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", n.from)
	gm.SetAddressHeader("To", m.To.Email, m.To.Name)
	gm.SetHeader("Subject", m.Subject)
	gm.SetBody("text/plain", m.Body)
	return gm
}

func (n *SMTPNotifier) send(ctx context.Context, m Message) error {
	if strings.TrimSpace(m.To.Email) == "" {
		return oops.Code("NOTIFY_RECIPIENT_EMPTY").Errorf("recipient email is empty")
	}

	gm := n.compose(m)
	attempt := 0
	err := retry.Do(ctx, n.backoff(), func(ctx context.Context) error {
		attempt++
		if err := n.sender.DialAndSend(gm); err != nil {
			n.logger.WarnContext(ctx, "smtp delivery failed", "attempt", attempt, "subject", m.Subject, "error", err.Error())
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").
			With("subject", m.Subject).
			With("attempts", attempt).
			Wrap(err)
	}

	n.logger.InfoContext(ctx, "notification sent", "subject", m.Subject, "attempts", attempt)
	return nil
}
