// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for clubpulse. It wires flags,
// validators, role gates, actions, and shell completion for subcommands.
// Reads go through the query cache and writes through query mutations, so a
// write's toast and invalidations behave the same from every command.
package command
