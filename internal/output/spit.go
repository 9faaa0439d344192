// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/clubpulse/internal/attrs"
	"github.com/staranto/clubpulse/internal/filters"
)

// Options are the list flags that shape output.
type Options struct {
	// Format is text, json, yaml or raw. Anything else renders text.
	Format string
	Filter string
	Search string
	Sort   string
	// Local converts timestamps in every column to the local zone.
	Local  bool
	Color  bool
	Titles bool
}

// OptionsFrom reads Options from the global list flags of cmd.
func OptionsFrom(cmd *cli.Command) Options {
	return Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Search: cmd.String("search"),
		Sort:   cmd.String("sort"),
		Local:  cmd.Bool("local"),
		Color:  cmd.Bool("color"),
		Titles: cmd.Bool("titles"),
	}
}

// emitter writes the finished rows in one format.
type emitter func(w io.Writer, rows []map[string]any, al attrs.AttrList, opts Options) error

var emitters = map[string]emitter{
	"json": func(w io.Writer, rows []map[string]any, _ attrs.AttrList, _ Options) error {
		// TODO Keep attr order in JSON objects; map keys come out sorted.
		b, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	},
	"yaml": func(w io.Writer, rows []map[string]any, _ attrs.AttrList, _ Options) error {
		b, err := yaml.Marshal(rows)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	},
	"text": func(w io.Writer, rows []map[string]any, al attrs.AttrList, opts Options) error {
		TableWriter(rows, al, opts, w)
		return nil
	},
}

// SliceDiceSpit renders the JSON document raw. parent is the gjson path of
// the record array, usually "data". Records are filtered and searched, their
// values transformed per attr, sorted and then emitted in opts.Format. raw
// output writes the document untouched. searchFields are the record paths
// --search matches against.
func SliceDiceSpit(raw []byte, al attrs.AttrList, opts Options, parent string, w io.Writer, searchFields ...string) error {
	if opts.Format == "raw" {
		_, err := fmt.Fprintf(w, "%s\n", raw)
		return err
	}

	doc := gjson.ParseBytes(raw)
	if parent != "" {
		doc = doc.Get(parent)
	}

	search := filters.Search{Text: opts.Search, Fields: searchFields}
	rows := filters.FilterDataset(doc, al, opts.Filter, search)
	log.Debugf("%d of %d rows kept", len(rows), len(doc.Array()))

	transformRows(rows, al, opts.Local)
	SortDataset(rows, opts.Sort)

	emit, ok := emitters[opts.Format]
	if !ok {
		emit = emitters["text"]
	}
	if err := emit(w, rows, al, opts); err != nil {
		return fmt.Errorf("failed to write %s output: %w", opts.Format, err)
	}
	return nil
}

// transformRows applies each attr's transform to its column. With local,
// every column also gets the t transform; al itself is not changed.
func transformRows(rows []map[string]any, al attrs.AttrList, local bool) {
	al = slices.Clone(al)
	for i := range al {
		if local {
			al[i].TransformSpec += "t"
		}
	}

	for _, row := range rows {
		for _, a := range al {
			if a.TransformSpec == "" || a.Key == "*" {
				continue
			}
			if v, ok := row[a.OutputKey]; ok {
				row[a.OutputKey] = a.Transform(v)
			}
		}
	}
}
