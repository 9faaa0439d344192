// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/filters"
	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/query"
)

var (
	memberAttrs  = []string{".id", "name", "email", "role", "status", "joinDate::h"}
	memberSearch = []string{"attributes.name", "attributes.email", "attributes.role"}
)

// MembersCommandAction lists the roster. _key=value filters are sent to the
// server; --search and the other filters run locally.
func MembersCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[*model.Member]{
		CommandName:  "members",
		SchemaType:   reflect.TypeOf(model.Member{}),
		DefaultAttrs: memberAttrs,
		SearchFields: memberSearch,
		Key:          clubapi.KeyMembers,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*model.Member, error) {
			return m.API.Members.List(ctx, filters.ServerParams(cmd.String("filter")))
		},
	}
	return runner.Run(ctx, cmd)
}

// MembersSearchCommandAction runs the server side search.
func MembersSearchCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	q, err := requireArg(cmd, "QUERY")
	if err != nil {
		return err
	}

	runner := &QueryActionRunner[*model.Member]{
		CommandName:  "members",
		SchemaType:   reflect.TypeOf(model.Member{}),
		DefaultAttrs: memberAttrs,
		SearchFields: memberSearch,
		Key:          query.Key{"members", "search", q},
		FetchFn: func(ctx context.Context, _ *cli.Command) ([]*model.Member, error) {
			return m.API.Members.Search(ctx, q)
		},
	}
	return runner.Run(ctx, cmd)
}

func memberFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: required},
		&cli.StringFlag{
			Name:     "email",
			Required: required,
			Validator: func(value string) error {
				return FlagValidators(value, EmailValidator)
			},
		},
		&cli.StringFlag{Name: "role", Value: "Member"},
		&cli.StringFlag{Name: "status", Value: "Active"},
		&cli.StringFlag{Name: "phone"},
		&cli.StringFlag{Name: "department"},
	}
}

// applyMemberFlags copies the flags the user set onto mem.
func applyMemberFlags(cmd *cli.Command, mem *model.Member) {
	fields := map[string]*string{
		"name":       &mem.Name,
		"email":      &mem.Email,
		"role":       &mem.Role,
		"status":     &mem.Status,
		"phone":      &mem.Phone,
		"department": &mem.Department,
	}
	for name, field := range fields {
		switch {
		case cmd.IsSet(name):
			*field = cmd.String(name)
		case *field == "":
			// Flag defaults (role, status) only fill blanks.
			*field = cmd.String(name)
		}
	}
}

func MembersAddCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	mem := &model.Member{JoinDate: time.Now().Format(time.DateOnly)}
	applyMemberFlags(cmd, mem)

	create := query.Post(m.Cache, m.API.Members.Create, query.MutationOptions[*model.Member, *model.Member]{
		InvalidateQueries: []query.Key{clubapi.KeyMembers, clubapi.KeyDashboard},
		SuccessMessage:    "Member created successfully",
	})
	out, err := mutate(ctx, create, mem)
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(cmd), out.ID)
	return nil
}

func MembersUpdateCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}

	current, err := m.API.Members.Read(ctx, id)
	if err != nil {
		return err
	}
	applyMemberFlags(cmd, current)

	update := query.Put(m.Cache, func(ctx context.Context, mem *model.Member) (*model.Member, error) {
		return m.API.Members.Update(ctx, id, mem)
	}, query.MutationOptions[*model.Member, *model.Member]{
		InvalidateQueries: []query.Key{clubapi.KeyMembers},
		SuccessMessage:    "Member updated successfully",
	})
	_, err = mutate(ctx, update, current)
	return err
}

func MembersRmCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}

	del := query.Delete(m.Cache, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, m.API.Members.Delete(ctx, id)
	}, query.MutationOptions[string, struct{}]{
		InvalidateQueries: []query.Key{clubapi.KeyMembers, clubapi.KeyDashboard},
		SuccessMessage:    "Member deleted successfully",
	})
	_, err = mutate(ctx, del, id)
	return err
}

// MembersCommandBuilder constructs the cli.Command definition for the
// "members" command and its write subcommands.
func MembersCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	admin := RequireRoles(model.RoleAdmin)

	return (&QueryCommandBuilder{
		Name:      "members",
		Usage:     "member roster",
		UsageText: "clubpulse members [options]",
		Roles:     []model.Role{model.RoleAdmin, model.RoleClub},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "server side member search",
				UsageText: "clubpulse members search QUERY [options]",
				Flags:     listFlags("members"),
				Action:    MembersSearchCommandAction,
			},
			{
				Name:      "add",
				Usage:     "add a member",
				UsageText: "clubpulse members add --name NAME --email EMAIL [options]",
				Flags:     memberFlags(true),
				Before:    admin,
				Action:    MembersAddCommandAction,
			},
			{
				Name:      "update",
				Usage:     "change a member",
				UsageText: "clubpulse members update ID [options]",
				Flags:     memberFlags(false),
				Before:    admin,
				Action:    MembersUpdateCommandAction,
			},
			{
				Name:      "rm",
				Usage:     "remove a member",
				UsageText: "clubpulse members rm ID",
				Before:    admin,
				Action:    MembersRmCommandAction,
			},
		},
		Action: MembersCommandAction,
		Meta:   meta,
	}).Build()
}
