// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// clubpulse is the command line client for the ClubPulse club administration
// API. It wires the CLI, delegates to internal packages, and serves as the
// entry point.
package main
