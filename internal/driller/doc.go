// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller resolves dotted attribute paths, such as those given to
// --attrs, --filter and --sort, against one JSON record.
package driller
