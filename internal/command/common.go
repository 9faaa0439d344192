// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"

	"github.com/apex/log"
	"github.com/hashicorp/jsonapi"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/attrs"
	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/output"
	"github.com/staranto/clubpulse/internal/query"
)

// ErrReported marks an error that has already been shown to the user as a
// notification, so main does not print it a second time.
var ErrReported = errors.New("reported")

// reported wraps err with ErrReported.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrReported, err)
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr clubpulse <subcmd>` and returns true so the caller can exit
// early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "clubpulse", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the attribute schema for the provided type
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(writer(cmd), t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// EmitJSONAPISlice marshals a slice as JSONAPI and passes it to the common
// output routine. searchFields are the record paths --search looks at.
func EmitJSONAPISlice(results any, al attrs.AttrList, cmd *cli.Command, searchFields ...string) error {
	var raw bytes.Buffer
	if err := jsonapi.MarshalPayload(&raw, results); err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return output.SliceDiceSpit(raw.Bytes(), al, output.OptionsFrom(cmd), "data", writer(cmd), searchFields...)
}

// writer is where command output goes: the root command's Writer, which
// tests replace.
func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// GetMeta returns the meta.Meta stored in the command's (or the root
// command's) Metadata. If missing or of an unexpected type, it returns the
// zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil {
		return meta.Meta{}
	}
	for _, c := range []*cli.Command{cmd, cmd.Root()} {
		if c == nil || c.Metadata == nil {
			continue
		}
		if m, ok := c.Metadata["meta"].(meta.Meta); ok {
			return m
		}
	}
	return meta.Meta{}
}

// CommandRoles returns the roles recorded on a builder-made command. nil
// means any logged in user.
func CommandRoles(cmd *cli.Command) []model.Role {
	if cmd == nil || cmd.Metadata == nil {
		return nil
	}
	roles, _ := cmd.Metadata["roles"].([]model.Role)
	return roles
}

// RequireRoles returns a Before hook that rejects the command unless a user
// with one of roles is logged in. No roles means any logged in user.
func RequireRoles(roles ...model.Role) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		m := GetMeta(cmd)
		if m.Session == nil {
			return ctx, nil
		}
		user, err := m.Session.Require(ctx, roles...)
		if err != nil {
			return ctx, err
		}
		log.Debugf("%s running %s as %s", user.Email, cmd.Name, user.Role)
		return ctx, nil
	}
}

// QueryCommandBuilder is a helper that constructs a cli.Command for list
// commands using a consistent pattern. It accepts the command name, usage
// text, custom flags, subcommands, the action handler, the roles allowed to
// run it and meta. The builder automatically wires metadata, adds
// tldr/schema flags, applies global flags, and sets up validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Commands  []*cli.Command
	Action    func(context.Context, *cli.Command) error
	Roles     []model.Role
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	gate := RequireRoles(qcb.Roles...)
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta":  qcb.Meta,
			"roles": qcb.Roles,
		},
		Flags:    listFlags(qcb.Name, qcb.Flags...),
		Commands: qcb.Commands,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := GlobalFlagsValidator(ctx, c); err != nil {
				return ctx, err
			}
			return gate(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action pattern for all
// list commands. It handles the short-circuit checks, BuildAttrs, schema
// dumping and output emission. The data is read through the cache under Key
// with FetchFn.
type QueryActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	SearchFields []string
	Key          query.Key
	FetchFn      func(context.Context, *cli.Command) ([]T, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	// Step 1: GetMeta + debug.
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	// Step 2: Short-circuit checks.
	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	// Step 3: BuildAttrs + debug.
	attrs := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs.String())

	// Step 4: Read through the cache.
	q := query.Get(m.Cache, qar.Key, func(ctx context.Context) ([]T, error) {
		return qar.FetchFn(ctx, cmd)
	})
	defer q.Close()

	results, err := q.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return reported(err)
	}

	// Step 5: Emit + return.
	return EmitJSONAPISlice(results, attrs, cmd, qar.SearchFields...)
}

// mutate runs one write through mut and reports failures as already shown.
func mutate[In, Out any](ctx context.Context, mut *query.Mutation[In, Out], in In) (Out, error) {
	out, err := mut.Mutate(ctx, in)
	return out, reported(err)
}

// requireArg returns the first positional argument or an error naming it.
func requireArg(cmd *cli.Command, name string) (string, error) {
	if cmd.Args().Len() < 1 || cmd.Args().First() == "" {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return cmd.Args().First(), nil
}
