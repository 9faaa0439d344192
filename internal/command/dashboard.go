// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/query"
)

// DashboardCommandAction prints the summary figures, one row per metric.
func DashboardCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[*model.Stat]{
		CommandName:  "dashboard",
		SchemaType:   reflect.TypeOf(model.Stat{}),
		DefaultAttrs: []string{"group", "metric", "value::h"},
		SearchFields: []string{"attributes.group", "attributes.metric"},
		Key:          clubapi.KeyDashboard,
		FetchFn: func(ctx context.Context, _ *cli.Command) ([]*model.Stat, error) {
			a, err := m.API.Analytics.Dashboard(ctx)
			if err != nil {
				return nil, err
			}
			return a.Stats(), nil
		},
	}
	return runner.Run(ctx, cmd)
}

// series describes one analytics time series subcommand.
type series struct {
	name  string
	usage string
	attrs []string
	fetch func(*clubapi.Analytics) func(context.Context, model.Period) ([]*model.Point, error)
}

var allSeries = []series{
	{
		name:  "growth",
		usage: "member growth over the period",
		attrs: []string{".id:name", "members"},
		fetch: func(a *clubapi.Analytics) func(context.Context, model.Period) ([]*model.Point, error) {
			return a.MemberGrowth
		},
	},
	{
		name:  "attendance",
		usage: "event attendance over the period",
		attrs: []string{".id:name", "events", "attendance"},
		fetch: func(a *clubapi.Analytics) func(context.Context, model.Period) ([]*model.Point, error) {
			return a.EventAttendance
		},
	},
	{
		name:  "financial",
		usage: "spending over the period",
		attrs: []string{".id:name", "value::h"},
		fetch: func(a *clubapi.Analytics) func(context.Context, model.Period) ([]*model.Point, error) {
			return a.Financial
		},
	},
}

func (s series) action(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	period, err := model.ParsePeriod(cmd.String("period"))
	if err != nil {
		return err
	}

	runner := &QueryActionRunner[*model.Point]{
		CommandName:  "dashboard",
		SchemaType:   reflect.TypeOf(model.Point{}),
		DefaultAttrs: s.attrs,
		SearchFields: []string{"id"},
		Key:          clubapi.KeySeries(s.name, period),
		FetchFn: func(ctx context.Context, _ *cli.Command) ([]*model.Point, error) {
			return s.fetch(m.API.Analytics)(ctx, period)
		},
	}
	return runner.Run(ctx, cmd)
}

// parseWhere turns key=value pairs into a filter map.
func parseWhere(pairs []string) (map[string]string, error) {
	where := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --where %q, want key=value", p)
		}
		where[k] = v
	}
	return where, nil
}

// DashboardCustomCommandAction runs an ad hoc analytics query. The result
// has no fixed shape so it is printed as a document rather than a table.
func DashboardCustomCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	metrics := cmd.StringSlice("metric")
	where, err := parseWhere(cmd.StringSlice("where"))
	if err != nil {
		return err
	}

	key := append(query.Key{"analytics", "custom"}, metrics...)
	for _, k := range slices.Sorted(maps.Keys(where)) {
		key = append(key, k+"="+where[k])
	}

	q := query.Get(m.Cache, key, func(ctx context.Context) (map[string]any, error) {
		return m.API.Analytics.Custom(ctx, metrics, where)
	})
	defer q.Close()

	result, err := q.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return reported(err)
	}

	w := writer(cmd)
	if cmd.String("output") == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(result)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func DashboardCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	var commands []*cli.Command
	for _, s := range allSeries {
		commands = append(commands, &cli.Command{
			Name:      s.name,
			Usage:     s.usage,
			UsageText: fmt.Sprintf("clubpulse dashboard %s [--period week|month|year] [options]", s.name),
			Flags:     listFlags("dashboard", NewPeriodFlag("dashboard")),
			Action:    s.action,
		})
	}

	commands = append(commands, &cli.Command{
		Name:      "custom",
		Usage:     "ad hoc analytics query",
		UsageText: "clubpulse dashboard custom --metric NAME [--metric NAME] [--where KEY=VALUE] [--output json|yaml]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "metric", Aliases: []string{"m"}, Required: true},
			&cli.StringSliceFlag{Name: "where", Aliases: []string{"w"}},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "json",
				Validator: func(value string) error {
					if value != "json" && value != "yaml" {
						return fmt.Errorf("must be json or yaml")
					}
					return nil
				},
			},
		},
		Action: DashboardCustomCommandAction,
	})

	return (&QueryCommandBuilder{
		Name:      "dashboard",
		Usage:     "club analytics",
		UsageText: "clubpulse dashboard [options]",
		Roles:     []model.Role{model.RoleAdmin, model.RoleClub},
		Commands:  commands,
		Action:    DashboardCommandAction,
		Meta:      meta,
	}).Build()
}
