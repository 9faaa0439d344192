// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/model"
)

const sampleDoc = "# clubpulse members\n\nShort description\n\nList the roster\nof the club.\n\nQuick examples\n\n```\n# List every member\nclubpulse members\n\nclubpulse   members   rm   ID\n```\n\nFlags and related docs\n\nrm needs admin.\n"

func sampleCommand() *cli.Command {
	return &cli.Command{
		Name:      "members",
		Usage:     "member roster",
		UsageText: "clubpulse members [options]",
		Metadata:  map[string]any{"roles": []model.Role{model.RoleAdmin, model.RoleClub}},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "free text search"},
			&cli.StringFlag{Name: "attrs", Usage: "attributes to show"},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a member",
				UsageText: "clubpulse members add --name NAME",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "name", Required: true}},
			},
			{Name: "secret", Hidden: true},
		},
	}
}

func TestParseHandDoc(t *testing.T) {
	doc := parseHandDoc(sampleDoc)

	assert.Equal(t, "List the roster of the club.", doc.Short)
	assert.Equal(t, []example{
		{Desc: "List every member", Cmd: "clubpulse members"},
		{Desc: "", Cmd: "clubpulse members rm ID"},
	}, doc.Examples)
	assert.Equal(t, "rm needs admin.", doc.Notes)

	assert.Equal(t, handDoc{}, parseHandDoc("# clubpulse whoami\n"))
}

func TestRenderReference(t *testing.T) {
	ref := renderReference(sampleCommand(), parseHandDoc(sampleDoc))

	for _, want := range []string{
		"# clubpulse members\n",
		"clubpulse-members - List the roster of the club.\n",
		"`clubpulse members [options]`",
		"Roles: admin, club.",
		"### add\n\nadd a member\n\n`clubpulse members add --name NAME`",
		"- `--name` (required)\n",
		"- `--attrs`: attributes to show\n- `--search`, `-s`: free text search\n",
		"List every member:\n\n    clubpulse members\n",
		"## NOTES\n\nrm needs admin.\n",
	} {
		assert.Contains(t, ref, want)
	}
	assert.NotContains(t, ref, "secret")
}

func TestRenderReference_NoRolesNoHandDoc(t *testing.T) {
	ref := renderReference(&cli.Command{Name: "whoami", Usage: "show the signed-in user"}, handDoc{})

	assert.Contains(t, ref, "clubpulse-whoami - show the signed-in user\n")
	assert.Contains(t, ref, "`clubpulse whoami [options]`")
	assert.Contains(t, ref, "Any signed-in user.")
	assert.NotContains(t, ref, "## EXAMPLES")
	assert.NotContains(t, ref, "## COMMANDS")
}

func TestRenderTLDR(t *testing.T) {
	tldr := renderTLDR(sampleCommand(), parseHandDoc(sampleDoc))
	assert.Contains(t, tldr, "# clubpulse-members\n\n> List the roster of the club.\n")
	assert.Contains(t, tldr, "- List every member:\n\n`clubpulse members`\n")
	assert.Contains(t, tldr, "- Member roster:\n\n`clubpulse members rm {{id}}`\n")

	fallback := renderTLDR(&cli.Command{Name: "whoami"}, handDoc{})
	assert.Contains(t, fallback, "> clubpulse whoami.\n")
	assert.Contains(t, fallback, "`clubpulse whoami --help`")
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"clubpulse members rm ID", "clubpulse members rm {{id}}"},
		{"clubpulse members add --email EMAIL", "clubpulse members add --email {{email}}"},
		{"clubpulse  reports   export r1 --format csv", "clubpulse reports export r1 --format csv"},
		{"clubpulse members --filter role=President", "clubpulse members --filter role=President"},
		{"clubpulse events rsvp E1 attending", "clubpulse events rsvp E1 attending"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, placeholders(tt.in), tt.in)
	}
}

func TestWriteIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")

	wrote, err := writeIfChanged(path, []byte("one\n"), true)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = writeIfChanged(path, []byte("one"), true)
	require.NoError(t, err)
	assert.False(t, wrote, "whitespace-only change is skipped")

	wrote, err = writeIfChanged(path, []byte("one"), false)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = writeIfChanged(path, []byte("two"), true)
	require.NoError(t, err)
	assert.True(t, wrote)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "commands"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "commands", "members.md"), []byte(sampleDoc), 0o644))

	app := &cli.Command{Name: "clubpulse", Commands: []*cli.Command{sampleCommand(), {Name: "whoami"}}}

	n, err := run(app, root, true)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	for _, rel := range []string{
		"docs/reference/clubpulse-members.md",
		"docs/reference/clubpulse-whoami.md",
		"docs/man/share/man1/clubpulse-members.1",
		"docs/tldr/clubpulse-whoami.md",
	} {
		assert.FileExists(t, filepath.Join(root, rel))
	}

	man, err := os.ReadFile(filepath.Join(root, "docs/man/share/man1/clubpulse-members.1"))
	require.NoError(t, err)
	assert.Contains(t, string(man), "SYNOPSIS")

	n, err = run(app, root, true)
	require.NoError(t, err)
	assert.Zero(t, n, "second run writes nothing")

	_, err = run(&cli.Command{Name: "clubpulse"}, t.TempDir(), true)
	assert.Error(t, err)
}
