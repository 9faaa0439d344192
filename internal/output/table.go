// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"github.com/staranto/clubpulse/internal/attrs"
	"github.com/staranto/clubpulse/internal/config"
)

// palette holds the table colors. The config file may override each one
// under colors.title, colors.even and colors.odd.
type palette struct {
	title, even, odd string
}

func loadPalette() palette {
	title, _ := config.GetString("colors.title", "#f6be00")
	even, _ := config.GetString("colors.even", "#ffffff")
	odd, _ := config.GetString("colors.odd", "#00c8f0")
	return palette{title: title, even: even, odd: odd}
}

// TableWriter renders rows as a borderless table with one column per
// included attr. Missing values print as "-".
func TableWriter(rows []map[string]any, al attrs.AttrList, opts Options, w io.Writer) {
	if len(rows) == 0 {
		return
	}

	var cols []string
	for _, a := range al {
		if a.Include {
			cols = append(cols, a.OutputKey)
		}
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = InterfaceToString(r[c], "-")
		}
		cells = append(cells, line)
	}

	header := lipgloss.NewStyle().Align(lipgloss.Left)
	even := lipgloss.NewStyle().Align(lipgloss.Left)
	odd := even
	if opts.Color {
		p := loadPalette()
		header = header.Foreground(lipgloss.Color(p.title))
		even = even.Foreground(lipgloss.Color(p.even))
		odd = odd.Foreground(lipgloss.Color(p.odd))
	}

	pad, _ := config.GetInt("padding", 1)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := odd
			switch {
			case row == table.HeaderRow:
				style = header
			case row%2 == 0:
				style = even
			}
			if col > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Rows(cells...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(cols...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// InterfaceToString converts a decoded JSON value to its cell text. nil and
// zero values print as emptyValue, or "" when none is given; false is still
// printed.
func InterfaceToString(value any, emptyValue ...string) string {
	empty := ""
	if len(emptyValue) > 0 {
		empty = emptyValue[0]
	}

	switch v := value.(type) {
	case nil:
		return empty
	case bool:
		return strconv.FormatBool(v)
	}
	if reflect.ValueOf(value).IsZero() {
		return empty
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		// Counts print without a fraction; percentages and money keep theirs.
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatFloat(v, 'f', 0, 64)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
