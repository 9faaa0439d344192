// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// segmentRe splits one path segment into its key and optional [n] index.
var segmentRe = regexp.MustCompile(`^(.*?)(?:\[(\d+)\])?$`)

// Driller walks path through the JSON document raw. Segments are separated
// by dots and may carry an explicit array index, as in "tags[0]". A
// single-element array met without an index is stepped into, so
// "items.id" finds the id of the only item. The zero Result is returned when
// the path does not resolve.
func Driller(raw string, path string) gjson.Result {
	current := gjson.Parse(raw)
	if path == "" {
		return current
	}

	for _, segment := range strings.Split(path, ".") {
		m := segmentRe.FindStringSubmatch(segment)
		key, index := m[1], m[2]

		if key != "" {
			current = unwrap(current).Get(escape(key))
		}
		if !current.Exists() {
			return gjson.Result{}
		}

		if index != "" {
			n, _ := strconv.Atoi(index)
			items := current.Array()
			if !current.IsArray() || n >= len(items) {
				return gjson.Result{}
			}
			current = items[n]
			continue
		}

		current = unwrap(current)
	}

	return current
}

// unwrap steps into a single-element array.
func unwrap(r gjson.Result) gjson.Result {
	if r.IsArray() {
		if items := r.Array(); len(items) == 1 {
			return items[0]
		}
	}
	return r
}

// escape protects gjson's path syntax characters inside a key.
func escape(key string) string {
	if !strings.ContainsAny(key, `\*?|#@!.`) {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`\*?|#@!.`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
