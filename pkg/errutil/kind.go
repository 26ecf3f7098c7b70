// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package errutil

import (
	"errors"
	"fmt"
)

// Kind classifies an error independently of the transport that reports it.
type Kind int

// Error kinds. KindInternal is the zero value so unclassified errors are
// treated as internal failures.
const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthenticated
	KindInvalidLogin
	KindNotFound
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidLogin:
		return "invalid_login"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// kindError carries a kind and a message that is safe to show to clients.
type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

// New returns an error of the given kind with a public message.
func New(kind Kind, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Validation returns a validation error with a formatted public message.
func Validation(format string, args ...any) error {
	return &kindError{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// Conflict returns a conflict error with a formatted public message.
func Conflict(format string, args ...any) error {
	return &kindError{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error with a public message.
func NotFound(msg string) error {
	return &kindError{kind: KindNotFound, msg: msg}
}

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

// PublicMessage returns the client-safe message of the first classified error
// in err's chain, or "" when the chain holds none.
func PublicMessage(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return ""
}
