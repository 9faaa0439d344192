// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"strconv"
	"strings"
)

// Key identifies one cached read, e.g. Key{"analytics", "dashboard"}.
type Key []string

// String encodes the key so that segment boundaries survive:
// Key{"a,b"} and Key{"a", "b"} never collide.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, seg := range k {
		parts[i] = strconv.Quote(seg)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Equal reports whether k and other have the same segments in the same order.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}
