// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package auth

import "github.com/tasktrack/tasktrack/pkg/errutil"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errutil.NotFound("not found")

// ErrUnauthenticated is returned for every bearer token rejection so clients
// cannot tell a bad signature from a revoked session.
var ErrUnauthenticated = errutil.New(errutil.KindUnauthenticated, "Please authenticate")

// ErrInvalidLogin is returned when credentials do not match any account.
var ErrInvalidLogin = errutil.New(errutil.KindInvalidLogin, "Unable to login")
