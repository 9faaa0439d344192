// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package session is the demo sign-in. Credentials are checked against a
// fixed set of users and the signed in user is kept in a StateStore under
// the key "user", so it persists between invocations when the file or redis
// backend is used.
package session
