// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package query is the request/cache/mutation layer every list and form
// command is built on.
//
// A Client owns a map of Key to entry. Readers mount on a key with Get and
// share one in-flight fetch per key; writers run through a Mutation whose
// success invalidates keys, which makes mounted readers refetch in the
// background. Terminal errors are reported to a notify.Sink exactly once per
// fetch or write, and only configured success messages are reported for
// writes. Reads never report success.
//
// Fetches run to completion even when every waiter has gone away: a waiter's
// context only bounds how long it waits. A Client-wide timeout, when set,
// bounds the fetch itself.
package query
