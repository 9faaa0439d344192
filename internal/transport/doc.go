// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package transport issues JSON requests against the ClubPulse API and turns
// every failure into either a NetworkError or an APIError.
package transport
