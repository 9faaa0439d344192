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

var (
	approvalAttrs  = []string{".id", "title", "type", "requestedBy", "requestedOn::h", "status"}
	approvalSearch = []string{"attributes.title", "attributes.requestedBy", "attributes.type"}
)

func ApprovalsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[*model.Approval]{
		CommandName:  "approvals",
		SchemaType:   reflect.TypeOf(model.Approval{}),
		DefaultAttrs: approvalAttrs,
		SearchFields: approvalSearch,
		Key:          clubapi.KeyApprovals,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*model.Approval, error) {
			return m.API.Approvals.List(ctx, filters.ServerParams(cmd.String("filter")))
		},
	}
	return runner.Run(ctx, cmd)
}

// decision is the input of an approve or reject write.
type decision struct {
	ID   string
	Text string
}

func ApprovalsApproveCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}

	approve := query.Post(m.Cache, func(ctx context.Context, d decision) (struct{}, error) {
		return struct{}{}, m.API.Approvals.Approve(ctx, d.ID, d.Text)
	}, query.MutationOptions[decision, struct{}]{
		InvalidateQueries: []query.Key{clubapi.KeyApprovals},
		SuccessMessage:    "Request approved successfully",
	})
	_, err = mutate(ctx, approve, decision{ID: id, Text: cmd.String("notes")})
	return err
}

func ApprovalsRejectCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}

	reject := query.Post(m.Cache, func(ctx context.Context, d decision) (struct{}, error) {
		return struct{}{}, m.API.Approvals.Reject(ctx, d.ID, d.Text)
	}, query.MutationOptions[decision, struct{}]{
		InvalidateQueries: []query.Key{clubapi.KeyApprovals},
		SuccessMessage:    "Request rejected successfully",
	})
	_, err = mutate(ctx, reject, decision{ID: id, Text: cmd.String("reason")})
	return err
}

func ApprovalsCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "approvals",
		Usage:     "pending approval requests",
		UsageText: "clubpulse approvals [options]",
		Roles:     []model.Role{model.RoleAdmin},
		Commands: []*cli.Command{
			{
				Name:      "approve",
				Usage:     "approve a request",
				UsageText: "clubpulse approvals approve ID [--notes NOTES]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "notes"},
				},
				Action: ApprovalsApproveCommandAction,
			},
			{
				Name:      "reject",
				Usage:     "reject a request",
				UsageText: "clubpulse approvals reject ID --reason REASON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "reason",
						Required: true,
						Validator: func(value string) error {
							return FlagValidators(value, NotBlankValidator)
						},
					},
				},
				Action: ApprovalsRejectCommandAction,
			},
		},
		Action: ApprovalsCommandAction,
		Meta:   meta,
	}).Build()
}

func EventApprovalsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[*model.EventApproval]{
		CommandName:  "event-approvals",
		SchemaType:   reflect.TypeOf(model.EventApproval{}),
		DefaultAttrs: []string{".id", "event_id", "status", "remarks"},
		SearchFields: []string{"attributes.remarks"},
		Key:          clubapi.KeyEventApprovals,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*model.EventApproval, error) {
			return m.API.EventApprovals.List(ctx, filters.ServerParams(cmd.String("filter")))
		},
	}
	return runner.Run(ctx, cmd)
}

func EventApprovalsAddCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	eventID, err := requireArg(cmd, "EVENT_ID")
	if err != nil {
		return err
	}
	status, err := model.ParseDecisionStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	create := query.Post(m.Cache, m.API.EventApprovals.Create, query.MutationOptions[*model.EventApproval, *model.EventApproval]{
		InvalidateQueries: []query.Key{clubapi.KeyEventApprovals, clubapi.KeyEvents},
		SuccessMessage:    "Event approval recorded successfully",
	})
	out, err := mutate(ctx, create, &model.EventApproval{
		EventID: eventID,
		Status:  string(status),
		Remarks: cmd.String("remarks"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(cmd), strconv.Itoa(out.ID))
	return nil
}

func EventApprovalsCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "event-approvals",
		Usage:     "event approval decisions",
		UsageText: "clubpulse event-approvals [options]",
		Roles:     []model.Role{model.RoleAdmin},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "record a decision on an event",
				UsageText: "clubpulse event-approvals add EVENT_ID --status approved|rejected [--remarks TEXT]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Required: true},
					&cli.StringFlag{Name: "remarks"},
				},
				Action: EventApprovalsAddCommandAction,
			},
		},
		Action: EventApprovalsCommandAction,
		Meta:   meta,
	}).Build()
}
