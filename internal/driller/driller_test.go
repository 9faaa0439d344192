// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// no-cloc
package driller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

const member = `{
	"type": "members", "id": "MEM-1",
	"attributes": {
		"name": "Ann Lee", "email": "ann@example.com", "role": "President",
		"active": false, "phone": null, "joinDate": "2024-01-15",
		"clubs": [{"id": 7, "name": "Chess"}],
		"tags": ["board", "founder"]
	}
}`

const event = `{
	"type": "events", "id": "E1",
	"attributes": {
		"title": "Spring Gala", "budget": 2500.5, "attendees": 42,
		"rsvps": [
			{"userId": "u1", "status": "attending"},
			{"userId": "u2", "status": "maybe"}
		],
		"organizer": [{"name": "Ann Lee", "contact": {"email": "ann@example.com"}}]
	}
}`

const report = `{
	"type": "reports", "id": "r1",
	"attributes": {
		"content": {"summary": {"total": 12, "by-type": {"Social": 5}}},
		"attachments": ["minutes.pdf", "budget.csv"],
		"memberStats": {"growthRate": 3.5},
		"a*b": {"c?": "escaped"}
	}
}`

func TestDriller(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		path    string
		want    string
		missing bool
		array   bool
	}{
		{name: "root id", doc: member, path: "id", want: "MEM-1"},
		{name: "attribute", doc: member, path: "attributes.email", want: "ann@example.com"},
		{name: "false is a value", doc: member, path: "attributes.active", want: "false"},
		{name: "null exists", doc: member, path: "attributes.phone", want: ""},
		{name: "number", doc: event, path: "attributes.attendees", want: "42"},
		{name: "fraction", doc: event, path: "attributes.budget", want: "2500.5"},

		{name: "single club is stepped into", doc: member, path: "attributes.clubs.name", want: "Chess"},
		{name: "single club without a key", doc: member, path: "attributes.clubs", want: `{"id": 7, "name": "Chess"}`},
		{name: "single organizer nested", doc: event, path: "attributes.organizer.contact.email", want: "ann@example.com"},
		{name: "tags stay an array", doc: member, path: "attributes.tags", array: true},
		{name: "rsvps stay an array", doc: event, path: "attributes.rsvps", array: true},

		{name: "tag by index", doc: member, path: "attributes.tags[1]", want: "founder"},
		{name: "rsvp by index", doc: event, path: "attributes.rsvps[1].status", want: "maybe"},
		{name: "attachment by index", doc: report, path: "attributes.attachments[0]", want: "minutes.pdf"},
		{name: "index on the only element", doc: member, path: "attributes.clubs[0].id", want: "7"},

		{name: "report content", doc: report, path: "attributes.content.summary.total", want: "12"},
		{name: "hyphenated key", doc: report, path: "attributes.content.summary.by-type.Social", want: "5"},
		{name: "analytics stat", doc: report, path: "attributes.memberStats.growthRate", want: "3.5"},
		{name: "gjson syntax in keys", doc: report, path: "attributes.a*b.c?", want: "escaped"},

		{name: "missing key", doc: member, path: "attributes.nickname", missing: true},
		{name: "missing parent", doc: member, path: "relationships.club.id", missing: true},
		{name: "index past the end", doc: event, path: "attributes.rsvps[5]", missing: true},
		{name: "index on an object", doc: member, path: "attributes[0]", missing: true},
		{name: "empty document", doc: `{}`, path: "id", missing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Driller(tt.doc, tt.path)

			switch {
			case tt.missing:
				assert.False(t, got.Exists(), "got %s", got.Raw)
			case tt.array:
				assert.True(t, got.IsArray(), "got %s", got.Raw)
			default:
				assert.True(t, got.Exists())
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestDriller_EmptyPath(t *testing.T) {
	got := Driller(member, "")
	assert.Equal(t, gjson.Parse(member).Raw, got.Raw)
}

func TestEscape(t *testing.T) {
	tests := map[string]string{
		"name":     "name",
		"by-type":  "by-type",
		"a*b":      `a\*b`,
		"c?":       `c\?`,
		"v1.2":     `v1\.2`,
		"#tag|@me": `\#tag\|\@me`,
	}
	for in, want := range tests {
		assert.Equal(t, want, escape(in), in)
	}
}

func BenchmarkDriller(b *testing.B) {
	paths := map[string]string{
		"root":    "id",
		"attr":    "attributes.title",
		"indexed": "attributes.rsvps[1].status",
		"stepped": "attributes.organizer.contact.email",
	}
	for name, path := range paths {
		b.Run(name, func(b *testing.B) {
			for range b.N {
				Driller(event, path)
			}
		})
	}
}
