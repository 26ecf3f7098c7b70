// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package config

import "net/url"

// redactURL masks the password of a connection URL. Unparseable input is
// masked entirely.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return redactedValue
	}
	if u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
