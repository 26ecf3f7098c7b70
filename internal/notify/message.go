// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package notify delivers account lifecycle messages.
package notify

import (
	"fmt"

	"github.com/tasktrack/tasktrack/internal/auth"
)

// Message is a rendered plain-text notification.
type Message struct {
	To      auth.Recipient
	Subject string
	Body    string
}

// Subjects of the account messages.
const (
	WelcomeSubject = "You signed-up successfully"
	GoodbyeSubject = "Sorry to see you go!"
)

func welcomeMessage(to auth.Recipient) Message {
	return Message{
		To:      to,
		Subject: WelcomeSubject,
		Body:    fmt.Sprintf("Welcome to TaskTrack, %s.", to.Name),
	}
}

func goodbyeMessage(to auth.Recipient) Message {
	return Message{
		To:      to,
		Subject: GoodbyeSubject,
		Body:    fmt.Sprintf("Goodbye, %s. I hope to see you back sometime soon.", to.Name),
	}
}
