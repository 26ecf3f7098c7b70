// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

// Package auth owns user accounts and the bearer tokens that authenticate them.
//
// # Domain Types
//
// User and Session values are built by the Service from whitelisted field sets
// (see package fields). Repositories receive values that already passed the
// credential rules in credentials.go and only enforce storage constraints
// such as email and handle uniqueness.
//
// # Tokens
//
// A bearer token is accepted only while it verifies against the signing
// secret, has not expired, and is still present in the session table. RevokeOne
// removes one session row and RevokeAll removes every row for the user, so a
// revoked token stops authenticating even though its signature remains valid.
//
// # Services
//
// Service is created with NewService, which rejects missing dependencies.
package auth
