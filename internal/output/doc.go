// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output turns a JSON:API document into rows and renders them. The
// pipeline is always the same: pick the data array, filter and search, apply
// attr transforms, sort, then emit as a table, JSON, YAML or the raw document.
package output
