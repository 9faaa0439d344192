// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/filters"
	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/query"
)

func ClubsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[*model.Club]{
		CommandName:  "clubs",
		SchemaType:   reflect.TypeOf(model.Club{}),
		DefaultAttrs: []string{".id", "name", "university_id"},
		SearchFields: []string{"attributes.name"},
		Key:          clubapi.KeyClubs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*model.Club, error) {
			return m.API.Clubs.List(ctx, filters.ServerParams(cmd.String("filter")))
		},
	}
	return runner.Run(ctx, cmd)
}

func ClubsAddCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	create := query.Post(m.Cache, m.API.Clubs.Create, query.MutationOptions[*model.Club, *model.Club]{
		InvalidateQueries: []query.Key{clubapi.KeyClubs},
		SuccessMessage:    "Club created successfully",
	})
	out, err := mutate(ctx, create, &model.Club{
		Name:         cmd.String("name"),
		UniversityID: cmd.Int("university-id"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(cmd), strconv.Itoa(out.ID))
	return nil
}

func ClubsCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "clubs",
		Usage:     "registered clubs",
		UsageText: "clubpulse clubs [options]",
		Roles:     []model.Role{model.RoleAdmin},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "register a club",
				UsageText: "clubpulse clubs add --name NAME --university-id ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Required: true,
						Validator: func(value string) error {
							return FlagValidators(value, NotBlankValidator)
						},
					},
					&cli.IntFlag{Name: "university-id", Required: true},
				},
				Action: ClubsAddCommandAction,
			},
		},
		Action: ClubsCommandAction,
		Meta:   meta,
	}).Build()
}

func AdministrationsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[*model.Administration]{
		CommandName:  "administrations",
		SchemaType:   reflect.TypeOf(model.Administration{}),
		DefaultAttrs: []string{".id", "name", "email", "phone", "university_id"},
		SearchFields: []string{"attributes.name", "attributes.email"},
		Key:          clubapi.KeyAdministrations,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*model.Administration, error) {
			return m.API.Administrations.List(ctx, filters.ServerParams(cmd.String("filter")))
		},
	}
	return runner.Run(ctx, cmd)
}

func AdministrationsAddCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	create := query.Post(m.Cache, m.API.Administrations.Create,
		query.MutationOptions[*model.Administration, *model.Administration]{
			InvalidateQueries: []query.Key{clubapi.KeyAdministrations},
			SuccessMessage:    "Administration created successfully",
		})
	out, err := mutate(ctx, create, &model.Administration{
		UniversityID: cmd.Int("university-id"),
		Name:         cmd.String("name"),
		Email:        cmd.String("email"),
		Phone:        cmd.String("phone"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(cmd), strconv.Itoa(out.ID))
	return nil
}

func AdministrationsCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "administrations",
		Usage:     "university administrations",
		UsageText: "clubpulse administrations [options]",
		Roles:     []model.Role{model.RoleAdmin},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "register a university administration",
				UsageText: "clubpulse administrations add --university-id ID --name NAME --email EMAIL [--phone PHONE]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "university-id", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{
						Name:     "email",
						Required: true,
						Validator: func(value string) error {
							return FlagValidators(value, EmailValidator)
						},
					},
					&cli.StringFlag{Name: "phone"},
				},
				Action: AdministrationsAddCommandAction,
			},
		},
		Action: AdministrationsCommandAction,
		Meta:   meta,
	}).Build()
}
