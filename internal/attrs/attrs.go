// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// now is replaced in tests.
var now = time.Now

var lengthRE = regexp.MustCompile(`-?\d+`)

// Date layouts recognized by the humanize transform.
var humanLayouts = []string{time.RFC3339, "2006-01-02"}

// localLayout is how the t transform renders a converted timestamp.
const localLayout = "2006-01-02T15:04:05MST"

// Attr is one column of list output: where to read it from a resource, what
// to call it and how to dress its value.
type Attr struct {
	// Key is the gjson path into a resource. Paths without a leading "." on
	// the command line are read from the resource's attributes.
	Key string `yaml:"key"`
	// Include is false for attrs that only exist to filter or sort on.
	Include bool `yaml:"include"`
	// OutputKey names the value in output and titles the text column.
	OutputKey string `yaml:"outputKey"`
	// TransformSpec is a run of transform letters and lengths, e.g. "U,20".
	TransformSpec string `yaml:"transformSpec"`
}

// transform is a parsed TransformSpec. Later letters override earlier ones so
// a global spec prepended to an attr's own spec loses to it.
type transform struct {
	upper, lower bool
	local        bool
	human        bool
	length       int
	hasLength    bool
}

func parseTransform(spec string) transform {
	var t transform
	for _, r := range spec {
		switch r {
		case 'u', 'U':
			t.upper, t.lower = true, false
		case 'l', 'L':
			t.upper, t.lower = false, true
		case 't', 'T':
			t.local = true
		case 'h', 'H':
			t.human = true
		}
	}
	if m := lengthRE.FindAllString(spec, -1); len(m) > 0 {
		t.length, _ = strconv.Atoi(m[len(m)-1])
		t.hasLength = true
	}
	return t
}

// Transform applies the TransformSpec to value. Strings take every transform;
// numbers only take h, which adds thousands separators. Anything else is
// returned as is.
func (a *Attr) Transform(value any) any {
	t := parseTransform(a.TransformSpec)

	switch v := value.(type) {
	case string:
		return t.apply(v)
	case float64:
		if t.human {
			return humanize.Commaf(v)
		}
	}
	return value
}

func (t transform) apply(s string) string {
	// A relative date ("3 days ago") replaces the value outright.
	if t.human {
		for _, layout := range humanLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return humanize.RelTime(ts, now(), "ago", "from now")
			}
		}
	}

	if t.local {
		s = toLocal(s)
	}

	switch {
	case t.upper:
		s = strings.ToUpper(s)
	case t.lower:
		s = strings.ToLower(s)
	}

	if t.hasLength {
		s = clip(s, t.length)
	}
	return s
}

// toLocal renders an RFC3339 timestamp in the zone named by CLUBPULSE_TZ, or
// TZ. Without a zone, or for a value that is not a timestamp, s is returned
// unchanged.
func toLocal(s string) string {
	zone := os.Getenv("CLUBPULSE_TZ")
	if zone == "" {
		zone = os.Getenv("TZ")
	}
	if zone == "" {
		return s
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		log.WithError(err).Debugf("unknown zone %q", zone)
		return s
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Debugf("not a timestamp: %s", s)
		return s
	}
	return ts.In(loc).Format(localLayout)
}

// clip shortens s to n bytes. A negative n keeps both ends of s and joins
// them with "..".
func clip(s string, n int) string {
	abs := max(n, -n)
	if len(s) <= abs {
		return s
	}
	if n >= 0 {
		return s[:n]
	}
	keep := abs/2 - 1
	return s[:keep] + ".." + s[len(s)-keep:]
}

// AttrList is the value of the --attrs flag.
type AttrList []Attr

// String renders the list in --attrs syntax.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses a comma separated run of specs and merges them into the list.
// Each spec is key[:outputKey[:transform]]. A leading ! on the key keeps the
// attr for filtering but drops it from output. A key that is already in the
// list, by key or output key, updates that attr in place.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	for _, spec := range strings.Split(value, ",") {
		attr := parseSpec(spec)
		if a.merge(attr) {
			continue
		}

		switch {
		case strings.HasPrefix(attr.Key, "."):
			attr.Key = attr.Key[1:]
		case attr.Key != "*":
			attr.Key = "attributes." + attr.Key
		}
		*a = append(*a, attr)
	}

	return nil
}

// parseSpec reads one spec. The output key defaults to the last segment of
// the key when the spec has a single field, and to the whole key when the
// output field is present but empty.
func parseSpec(spec string) Attr {
	fields := strings.Split(spec, ":")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	attr := Attr{Key: fields[0], Include: true}
	if rest, ok := strings.CutPrefix(attr.Key, "!"); ok {
		attr.Key = rest
		attr.Include = false
	}
	if attr.Key == "*" {
		attr.Include = false
	}

	switch {
	case len(fields) == 1:
		attr.OutputKey = attr.Key[strings.LastIndex(attr.Key, ".")+1:]
	case fields[1] != "":
		attr.OutputKey = fields[1]
	default:
		attr.OutputKey = attr.Key
	}

	if len(fields) > 2 {
		attr.TransformSpec = fields[2]
	}
	return attr
}

// merge folds attr into a matching entry and reports whether there was one.
func (a *AttrList) merge(attr Attr) bool {
	for i := range *a {
		cur := &(*a)[i]
		if cur.Key == attr.Key || cur.OutputKey == attr.Key {
			cur.Include = attr.Include
			cur.OutputKey = attr.OutputKey
			cur.TransformSpec = attr.TransformSpec
			return true
		}
	}
	return false
}

// SetGlobalTransformSpec prepends the spec of the first "*" attr to every
// attr in the list.
func (a *AttrList) SetGlobalTransformSpec() error {
	var spec string
	for _, attr := range *a {
		if attr.Key == "*" {
			spec = attr.TransformSpec
			break
		}
	}
	if spec == "" {
		return nil
	}

	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
	return nil
}

// Type satisfies the flag Value interface.
func (a *AttrList) Type() string {
	return "list"
}
