// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
)

// Field is one line of a --schema listing.
type Field struct {
	// Path is what --attrs, --filter and --sort accept for the field.
	Path string
	// Type is a short name for the JSON type of the value.
	Type string
	// Encoding is the jsonapi encoding option, e.g. iso8601.
	Encoding string
}

// maxSchemaDepth is how far SchemaFields descends into struct attributes.
const maxSchemaDepth = 1

var timeType = reflect.TypeOf(time.Time{})

// SchemaFields lists the jsonapi fields of typ. The primary key is listed as
// .id; struct attributes are expanded one level with dotted paths.
// Relationships are not listed.
func SchemaFields(typ reflect.Type) []Field {
	return schemaWalk("", typ, 0)
}

func schemaWalk(holder string, typ reflect.Type, depth int) []Field {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var fields []Field
	for i := range typ.NumField() {
		sf := typ.Field(i)
		tag, ok := sf.Tag.Lookup("jsonapi")
		if !ok {
			continue
		}

		parts := strings.Split(tag, ",")
		switch {
		case parts[0] == "primary" && holder == "":
			fields = append(fields, Field{Path: ".id", Type: "string"})
			continue
		case parts[0] != "attr" || len(parts) < 2:
			log.Debugf("schema: skipping %s (%s)", sf.Name, tag)
			continue
		}

		f := Field{Path: parts[1], Type: typeName(sf.Type)}
		if holder != "" {
			f.Path = holder + "." + f.Path
		}
		if len(parts) > 2 && parts[2] != "omitempty" {
			f.Encoding = parts[2]
		}
		fields = append(fields, f)

		if f.Type == "object" && depth < maxSchemaDepth {
			fields = append(fields, schemaWalk(f.Path, sf.Type, depth+1)...)
		}
	}
	return fields
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return "time"
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Struct, reflect.Map, reflect.Interface:
		return "object"
	default:
		return t.Kind().String()
	}
}

// DumpSchema prints the fields of typ, sorted by path, as a borderless table.
func DumpSchema(w io.Writer, typ reflect.Type) {
	fields := SchemaFields(typ)
	if len(fields) == 0 {
		log.Debugf("no jsonapi fields on %s", typ.Name())
		return
	}

	slices.SortFunc(fields, func(a, b Field) int {
		return strings.Compare(a.Path, b.Path)
	})

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f.Path, f.Type, f.Encoding})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		Headers("PATH", "TYPE", "ENCODING").
		Rows(rows...)

	fmt.Fprintf(w, "Schema for %s --\n", typ.Name())
	fmt.Fprintln(w, t)
	fmt.Fprintln(w,
		`Paths are relative to the record attributes and work with --attrs,
--filter and --sort. Prefix a path with _ in --filter to have the server
filter on it. Use --output=raw to see the full JSON:API document.`)
}
