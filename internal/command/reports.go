// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/aws"
	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/filters"
	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/query"
)

var reportAttrs = []string{".id", "title", "type", "submittedBy", "submittedOn::h", "status"}

func ReportsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[*model.Report]{
		CommandName:  "reports",
		SchemaType:   reflect.TypeOf(model.Report{}),
		DefaultAttrs: reportAttrs,
		SearchFields: []string{"attributes.title", "attributes.type", "attributes.submittedBy"},
		Key:          clubapi.KeyReports,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]*model.Report, error) {
			return m.API.Reports.List(ctx, filters.ServerParams(cmd.String("filter")))
		},
	}
	return runner.Run(ctx, cmd)
}

func ReportsGenerateCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	req := model.ReportRequest{
		Title: cmd.String("title"),
		Type:  cmd.String("type"),
	}
	if c := cmd.String("content"); c != "" {
		var content any
		if err := json.Unmarshal([]byte(c), &content); err != nil {
			return fmt.Errorf("--content must be JSON: %w", err)
		}
		req.Content = content
	}

	generate := query.Post(m.Cache, m.API.Reports.Generate, query.MutationOptions[model.ReportRequest, *model.Report]{
		InvalidateQueries: []query.Key{clubapi.KeyReports},
		SuccessMessage:    "Report generated successfully",
	})
	out, err := mutate(ctx, generate, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(cmd), out.ID)
	return nil
}

func ReportsApproveCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}

	approve := query.Post(m.Cache, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, m.API.Reports.Approve(ctx, id)
	}, query.MutationOptions[string, struct{}]{
		InvalidateQueries: []query.Key{clubapi.KeyReports},
		SuccessMessage:    "Report approved successfully",
	})
	_, err = mutate(ctx, approve, id)
	return err
}

func ReportsRejectCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}

	reject := query.Post(m.Cache, func(ctx context.Context, d decision) (struct{}, error) {
		return struct{}{}, m.API.Reports.Reject(ctx, d.ID, d.Text)
	}, query.MutationOptions[decision, struct{}]{
		InvalidateQueries: []query.Key{clubapi.KeyReports},
		SuccessMessage:    "Report rejected successfully",
	})
	_, err = mutate(ctx, reject, decision{ID: id, Text: cmd.String("reason")})
	return err
}

// exportContentTypes are the object content types of uploaded exports.
var exportContentTypes = map[model.ExportFormat]string{
	model.ExportCSV: "text/csv",
	model.ExportPDF: "application/pdf",
}

// uploadExport puts data at loc using the AWS settings of m.
func uploadExport(ctx context.Context, m meta.Meta, loc aws.Location, data []byte, format model.ExportFormat) error {
	cfg, err := aws.LoadAWSConfig(ctx,
		aws.WithProfile(m.Settings.AWSProfile),
		aws.WithRegion(m.Settings.AWSRegion))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	up := &aws.Uploader{Client: aws.NewS3(cfg, aws.WithEndpoint(m.Settings.S3Endpoint))}
	return up.Put(ctx, loc, data, exportContentTypes[format])
}

// ReportsExportCommandAction writes the server's export of a report to
// --out, which may be a file or an s3://bucket/key URL, or to stdout.
func ReportsExportCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}
	format, err := model.ParseExportFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	q := query.Get(m.Cache, query.Key{"reports", id, "export", string(format)},
		func(ctx context.Context) (json.RawMessage, error) {
			return m.API.Reports.Export(ctx, id, format)
		})
	defer q.Close()

	data, err := q.Wait(ctx)
	if err != nil {
		return reported(err)
	}

	out := cmd.String("out")
	if out == "" {
		_, err = writer(cmd).Write(append(data, '\n'))
		return err
	}

	loc, isS3, err := aws.ParseS3URL(out)
	if err != nil {
		return err
	}
	if isS3 {
		return uploadExport(ctx, m, loc, data, format)
	}

	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Debugf("report %s exported to %s", id, out)
	return nil
}

func ReportsCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	admin := RequireRoles(model.RoleAdmin)

	return (&QueryCommandBuilder{
		Name:      "reports",
		Usage:     "club reports",
		UsageText: "clubpulse reports [options]",
		Roles:     []model.Role{model.RoleAdmin, model.RoleClub},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "generate a report",
				UsageText: "clubpulse reports generate --title TITLE --type TYPE [--content JSON]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "type", Value: "Activity"},
					&cli.StringFlag{Name: "content", Usage: "report body as a JSON document"},
				},
				Action: ReportsGenerateCommandAction,
			},
			{
				Name:      "approve",
				Usage:     "approve a submitted report",
				UsageText: "clubpulse reports approve ID",
				Before:    admin,
				Action:    ReportsApproveCommandAction,
			},
			{
				Name:      "reject",
				Usage:     "reject a submitted report",
				UsageText: "clubpulse reports reject ID --reason REASON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "reason",
						Required: true,
						Validator: func(value string) error {
							return FlagValidators(value, NotBlankValidator)
						},
					},
				},
				Before: admin,
				Action: ReportsRejectCommandAction,
			},
			{
				Name:      "export",
				Usage:     "download a report",
				UsageText: "clubpulse reports export ID [--format csv|pdf] [--out FILE|s3://BUCKET/KEY]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: string(model.ExportCSV),
						Validator: func(value string) error {
							return FlagValidators(value, ExportFormatValidator)
						},
					},
					&cli.StringFlag{Name: "out", Usage: "file or s3://bucket/key to write the export to"},
				},
				Action: ReportsExportCommandAction,
			},
		},
		Action: ReportsCommandAction,
		Meta:   meta,
	}).Build()
}
