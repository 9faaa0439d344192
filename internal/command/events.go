// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/filters"
	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/query"
)

var (
	eventAttrs  = []string{".id", "title", "date", "time", "location", "type", "status", "attendees"}
	eventSearch = []string{"attributes.title", "attributes.location", "attributes.type"}
)

func EventsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[*model.Event]{
		CommandName:  "events",
		SchemaType:   reflect.TypeOf(model.Event{}),
		DefaultAttrs: eventAttrs,
		SearchFields: eventSearch,
		Key:          clubapi.KeyEvents,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*model.Event, error) {
			return m.API.Events.List(ctx, filters.ServerParams(cmd.String("filter")))
		},
	}
	return runner.Run(ctx, cmd)
}

func EventsAttendeesCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}

	runner := &QueryActionRunner[*model.Member]{
		CommandName:  "events",
		SchemaType:   reflect.TypeOf(model.Member{}),
		DefaultAttrs: []string{".id", "name", "email", "role"},
		SearchFields: memberSearch,
		Key:          clubapi.KeyAttendees(id),
		FetchFn: func(ctx context.Context, _ *cli.Command) ([]*model.Member, error) {
			return m.API.Events.Attendees(ctx, id)
		},
	}
	return runner.Run(ctx, cmd)
}

func EventsAddCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	ev := &model.Event{
		Title:        cmd.String("title"),
		Description:  cmd.String("description"),
		Date:         cmd.String("date"),
		Time:         cmd.String("time"),
		Location:     cmd.String("location"),
		Type:         cmd.String("type"),
		Status:       "Pending",
		MaxAttendees: cmd.Int("max-attendees"),
		Budget:       cmd.Float("budget"),
	}
	if user, err := m.Session.Current(ctx); err == nil {
		ev.Organizer = user.Name
	}

	create := query.Post(m.Cache, m.API.Events.Create, query.MutationOptions[*model.Event, *model.Event]{
		InvalidateQueries: []query.Key{clubapi.KeyEvents, clubapi.KeyDashboard},
		SuccessMessage:    "Event created successfully",
	})
	out, err := mutate(ctx, create, ev)
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(cmd), out.ID)
	return nil
}

func EventsRmCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}

	del := query.Delete(m.Cache, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, m.API.Events.Delete(ctx, id)
	}, query.MutationOptions[string, struct{}]{
		InvalidateQueries: []query.Key{clubapi.KeyEvents, clubapi.KeyDashboard},
		SuccessMessage:    "Event deleted successfully",
	})
	_, err = mutate(ctx, del, id)
	return err
}

func EventsRSVPCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}
	user, err := m.Session.Current(ctx)
	if err != nil {
		return err
	}
	status, err := model.ParseRSVPStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	rsvp := query.Post(m.Cache, func(ctx context.Context, r model.RSVP) (struct{}, error) {
		return struct{}{}, m.API.Events.RSVP(ctx, id, r.UserID, r.Status)
	}, query.MutationOptions[model.RSVP, struct{}]{
		InvalidateQueries: []query.Key{clubapi.KeyEvents, clubapi.KeyAttendees(id)},
		SuccessMessage:    "RSVP saved successfully",
	})
	_, err = mutate(ctx, rsvp, model.RSVP{UserID: user.ID, Status: status})
	return err
}

// EventsCommandBuilder constructs the cli.Command definition for the
// "events" command and its subcommands.
func EventsCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "events",
		Usage:     "event schedule",
		UsageText: "clubpulse events [options]",
		Roles:     []model.Role{model.RoleAdmin, model.RoleClub},
		Commands: []*cli.Command{
			{
				Name:      "attendees",
				Usage:     "list the members attending an event",
				UsageText: "clubpulse events attendees ID [options]",
				Flags:     listFlags("events"),
				Action:    EventsAttendeesCommandAction,
			},
			{
				Name:      "add",
				Usage:     "schedule an event",
				UsageText: "clubpulse events add --title TITLE --date YYYY-MM-DD [options]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "date", Required: true},
					&cli.StringFlag{Name: "time", Value: "18:00"},
					&cli.StringFlag{Name: "location"},
					&cli.StringFlag{Name: "type", Value: "Meeting"},
					&cli.StringFlag{Name: "description"},
					&cli.IntFlag{Name: "max-attendees"},
					&cli.FloatFlag{Name: "budget"},
				},
				Action: EventsAddCommandAction,
			},
			{
				Name:      "rm",
				Usage:     "cancel an event",
				UsageText: "clubpulse events rm ID",
				Action:    EventsRmCommandAction,
			},
			{
				Name:      "rsvp",
				Usage:     "reply to an event invitation",
				UsageText: "clubpulse events rsvp ID --status attending|not-attending|maybe",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Value: string(model.RSVPAttending),
						Validator: func(value string) error {
							return FlagValidators(value, RSVPValidator)
						},
					},
				},
				Action: EventsRSVPCommandAction,
			},
		},
		Action: EventsCommandAction,
		Meta:   meta,
	}).Build()
}
