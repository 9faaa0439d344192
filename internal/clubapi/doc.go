// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package clubapi wraps the ClubPulse REST endpoints. Each service is a thin
// URL template over transport.Client; caching and notifications are left to
// the query package.
//
//	api := clubapi.New(transport.New(url, token, nil))
//	members, err := api.Members.List(ctx, url.Values{"status": {"active"}})
package clubapi
