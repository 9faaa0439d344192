// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/clubpulse/internal/attrs"
	"github.com/staranto/clubpulse/internal/driller"
)

// filterRegex splits a filter expression into key, operator and target.
// Operators are one of = ^ ~ < > @ or /, optionally prefixed with '!', so
// '!=' and '!^' are negations of '=' and '^'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is one parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string

	re *regexp.Regexp
}

// Server reports whether the filter is meant for the API rather than for
// client-side matching. Server filters are written with a leading _, as in
// _status=active.
func (f Filter) Server() bool {
	return strings.HasPrefix(f.Key, "_")
}

// delimiter separates filter expressions. CLUBPULSE_FILTER_DELIM overrides
// the default ",".
func delimiter() string {
	if d, ok := os.LookupEnv("CLUBPULSE_FILTER_DELIM"); ok && d != "" {
		return d
	}
	return ","
}

// BuildFilters parses a filter specification. Malformed expressions, and /
// expressions whose target does not compile, are logged and skipped.
func BuildFilters(spec string) []Filter {
	if spec == "" {
		return nil
	}

	var out []Filter
	for _, expr := range strings.Split(spec, delimiter()) {
		parts := filterRegex.FindStringSubmatch(expr)
		if parts == nil {
			log.Error("invalid filter: " + expr)
			continue
		}

		op, negate := strings.CutPrefix(parts[2], "!")
		f := Filter{Key: parts[1], Negate: negate, Operand: op, Target: parts[3]}

		if op == "/" {
			re, err := regexp.Compile(f.Target)
			if err != nil {
				log.WithError(err).Error("invalid regex: " + f.Target)
				continue
			}
			f.re = re
		}
		out = append(out, f)
	}
	return out
}

// ServerParams returns the server filters of spec as query parameters. Only
// plain equality can be expressed to the API; other server filters are
// logged and dropped.
func ServerParams(spec string) url.Values {
	params := url.Values{}
	for _, f := range BuildFilters(spec) {
		if !f.Server() {
			continue
		}
		if f.Operand != "=" || f.Negate {
			log.Errorf("server filter %s only supports =", f.Key)
			continue
		}
		params.Add(strings.TrimPrefix(f.Key, "_"), f.Target)
	}
	return params
}

// Match reports whether value satisfies the filter. Strings and booleans
// compare as text, numbers numerically, and lists and maps only take @. A
// missing value never matches, negated or not.
func (f Filter) Match(value any) bool {
	if value == nil {
		return false
	}

	var hit bool
	switch v := value.(type) {
	case string:
		hit = f.matchString(v)
	case bool:
		hit = f.matchString(strconv.FormatBool(v))
	case []any:
		if f.Operand != "@" {
			return true
		}
		hit = slices.Contains(v, any(f.Target))
	case map[string]any:
		if f.Operand != "@" {
			return true
		}
		_, hit = v[f.Target]
	default:
		n, ok := toFloat64(value)
		if !ok {
			log.Errorf("unsupported type for filtering: %T", value)
			return false
		}
		var valid bool
		if hit, valid = f.matchNumber(n); !valid {
			return false
		}
	}
	return hit != f.Negate
}

func (f Filter) matchString(v string) bool {
	switch f.Operand {
	case "=":
		return v == f.Target
	case "~":
		return strings.EqualFold(v, f.Target)
	case "^":
		return strings.HasPrefix(v, f.Target)
	case ">":
		return v > f.Target
	case "<":
		return v < f.Target
	case "@":
		return strings.Contains(strings.ToLower(v), strings.ToLower(f.Target))
	case "/":
		return f.re != nil && f.re.MatchString(v)
	}
	return false
}

// matchNumber compares numerically. The second result is false when the
// filter can not be applied to a number at all.
func (f Filter) matchNumber(v float64) (hit, valid bool) {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + f.Target)
		return false, false
	}

	switch f.Operand {
	case "=":
		return v == tgt, true
	case ">":
		return v > tgt, true
	case "<":
		return v < tgt, true
	}
	log.Error("unsupported numeric operand: " + f.Operand)
	return false, false
}

// Search is a case-insensitive substring match of Text against any of
// Fields, which are JSON paths into a record. An empty Text matches
// everything.
type Search struct {
	Text   string
	Fields []string
}

// Match reports whether candidate satisfies the search.
func (s Search) Match(candidate gjson.Result) bool {
	text := strings.ToLower(strings.TrimSpace(s.Text))
	if text == "" {
		return true
	}
	for _, field := range s.Fields {
		value := driller.Driller(candidate.Raw, field)
		if value.Exists() && strings.Contains(strings.ToLower(value.String()), text) {
			return true
		}
	}
	return false
}

// bound is a client filter paired with the record path of its attr.
type bound struct {
	Filter
	path string
}

// bind resolves each client filter's key, an attr output key, to the attr's
// record path. Filters naming no attr are reported once and dropped.
func bind(filters []Filter, al attrs.AttrList) []bound {
	var out []bound
	for _, f := range filters {
		if f.Server() {
			continue
		}
		i := slices.IndexFunc(al, func(a attrs.Attr) bool { return a.OutputKey == f.Key })
		if i < 0 {
			msg := fmt.Sprintf("filter key not found: %s", f.Key)
			log.Error(msg)
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
			continue
		}
		out = append(out, bound{Filter: f, path: al[i].Key})
	}
	return out
}

// FilterDataset returns the rows of candidates that satisfy both the search
// and the filter spec, projected onto al. Values are not transformed here;
// the output pipeline does that after filtering.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string, search Search) []map[string]any {
	filters := bind(BuildFilters(spec), al)

	var rows []map[string]any
	for _, candidate := range candidates.Array() {
		if !search.Match(candidate) || !matchAll(candidate, filters) {
			continue
		}

		row := make(map[string]any, len(al))
		for _, a := range al {
			row[a.OutputKey] = driller.Driller(candidate.Raw, a.Key).Value()
		}
		rows = append(rows, row)
	}
	return rows
}

func matchAll(candidate gjson.Result, filters []bound) bool {
	for _, f := range filters {
		if !f.Match(driller.Driller(candidate.Raw, f.path).Value()) {
			return false
		}
	}
	return true
}

// toFloat64 normalizes the numeric kinds gjson and callers produce.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
