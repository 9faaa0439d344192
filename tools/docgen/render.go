// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/command"
	"github.com/staranto/clubpulse/internal/model"
)

// handDoc is what a docs/commands page contributes.
type handDoc struct {
	Short    string
	Examples []example
	Notes    string
}

type example struct {
	Desc string
	Cmd  string
}

// Section headings recognised in hand-written pages. They are plain lines,
// not markdown headers.
const (
	secShort    = "short description"
	secExamples = "quick examples"
	secNotes    = "flags and related docs"
)

// parseHandDoc splits a hand-written page into its sections. The H1 is
// ignored; the tree provides the title.
func parseHandDoc(md string) handDoc {
	var (
		doc     handDoc
		section string
		fenced  bool
		desc    string
		short   []string
		notes   []string
	)

	for _, ln := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(ln, "\r"))

		if strings.HasPrefix(trimmed, "```") {
			fenced = !fenced
			continue
		}
		if !fenced {
			switch strings.ToLower(trimmed) {
			case secShort, secExamples, secNotes:
				section = strings.ToLower(trimmed)
				continue
			}
			if strings.HasPrefix(trimmed, "# ") {
				continue
			}
		}

		switch section {
		case secShort:
			// First paragraph only.
			if trimmed == "" {
				if len(short) > 0 {
					section = ""
				}
				continue
			}
			short = append(short, trimmed)
		case secExamples:
			if !fenced || trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				desc = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
				continue
			}
			doc.Examples = append(doc.Examples, example{Desc: desc, Cmd: strings.Join(strings.Fields(trimmed), " ")})
			desc = ""
		case secNotes:
			notes = append(notes, trimmed)
		}
	}

	doc.Short = strings.Join(short, " ")
	doc.Notes = strings.TrimSpace(strings.Join(notes, "\n"))
	return doc
}

// renderReference renders the markdown reference page for one top-level
// command.
func renderReference(cmd *cli.Command, hand handDoc) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# clubpulse %s\n\n", cmd.Name)

	b.WriteString("## NAME\n\n")
	fmt.Fprintf(&b, "clubpulse-%s - %s\n\n", cmd.Name, shortOf(cmd, hand))

	b.WriteString("## SYNOPSIS\n\n")
	fmt.Fprintf(&b, "`%s`\n\n", synopsis(cmd))

	b.WriteString("## ACCESS\n\n")
	b.WriteString(access(command.CommandRoles(cmd)) + "\n\n")

	if subs := visibleCommands(cmd); len(subs) > 0 {
		b.WriteString("## COMMANDS\n\n")
		for _, sub := range subs {
			fmt.Fprintf(&b, "### %s\n\n", sub.Name)
			if sub.Usage != "" {
				b.WriteString(sub.Usage + "\n\n")
			}
			fmt.Fprintf(&b, "`%s`\n\n", synopsis(sub))
			writeFlags(&b, sub)
		}
	}

	b.WriteString("## OPTIONS\n\n")
	writeFlags(&b, cmd)

	if len(hand.Examples) > 0 {
		b.WriteString("## EXAMPLES\n\n")
		for _, ex := range hand.Examples {
			if ex.Desc != "" {
				b.WriteString(ex.Desc + ":\n\n")
			}
			fmt.Fprintf(&b, "    %s\n\n", ex.Cmd)
		}
	}

	if hand.Notes != "" {
		b.WriteString("## NOTES\n\n")
		b.WriteString(hand.Notes + "\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderTLDR renders a tldr-pages entry for one top-level command.
func renderTLDR(cmd *cli.Command, hand handDoc) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# clubpulse-%s\n\n", cmd.Name)
	fmt.Fprintf(&b, "> %s.\n", strings.TrimSuffix(shortOf(cmd, hand), "."))
	b.WriteString("> More information: https://github.com/staranto/clubpulse.\n")

	examples := hand.Examples
	if len(examples) == 0 {
		examples = []example{{Desc: "Show help for the command", Cmd: "clubpulse " + cmd.Name + " --help"}}
	}
	for _, ex := range examples {
		desc := ex.Desc
		if desc == "" {
			desc = upperFirst(cmd.Usage)
		}
		fmt.Fprintf(&b, "\n- %s:\n\n`%s`\n", desc, placeholders(ex.Cmd))
	}

	return b.String()
}

func shortOf(cmd *cli.Command, hand handDoc) string {
	if hand.Short != "" {
		return hand.Short
	}
	if cmd.Usage != "" {
		return cmd.Usage
	}
	return "clubpulse " + cmd.Name
}

func synopsis(cmd *cli.Command) string {
	if cmd.UsageText != "" {
		return cmd.UsageText
	}
	return "clubpulse " + cmd.Name + " [options]"
}

func access(roles []model.Role) string {
	if len(roles) == 0 {
		return "Any signed-in user."
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return "Roles: " + strings.Join(names, ", ") + "."
}

func visibleCommands(cmd *cli.Command) []*cli.Command {
	var out []*cli.Command
	for _, c := range cmd.Commands {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

type (
	usager   interface{ GetUsage() string }
	required interface{ IsRequired() bool }
	visible  interface{ IsVisible() bool }
)

func writeFlags(b *strings.Builder, cmd *cli.Command) {
	flags := slices.Clone(cmd.Flags)
	flags = slices.DeleteFunc(flags, func(f cli.Flag) bool {
		v, ok := f.(visible)
		return ok && !v.IsVisible()
	})
	if len(flags) == 0 {
		return
	}
	slices.SortFunc(flags, func(a, b cli.Flag) int {
		return strings.Compare(a.Names()[0], b.Names()[0])
	})

	for _, f := range flags {
		b.WriteString(flagLine(f) + "\n")
	}
	b.WriteString("\n")
}

func flagLine(f cli.Flag) string {
	names := f.Names()
	dashed := make([]string, len(names))
	for i, n := range names {
		if len(n) == 1 {
			dashed[i] = "`-" + n + "`"
		} else {
			dashed[i] = "`--" + n + "`"
		}
	}

	line := "- " + strings.Join(dashed, ", ")
	if u, ok := f.(usager); ok && u.GetUsage() != "" {
		line += ": " + u.GetUsage()
	}
	if r, ok := f.(required); ok && r.IsRequired() {
		line += " (required)"
	}
	return line
}

// placeholders rewrites upper-case argument words (ID, EMAIL) into tldr's
// {{id}} form.
func placeholders(cmd string) string {
	fields := strings.Fields(cmd)
	for i, f := range fields {
		if len(f) > 1 && strings.ToUpper(f) == f && strings.Trim(f, "ABCDEFGHIJKLMNOPQRSTUVWXYZ_") == "" {
			fields[i] = "{{" + strings.ToLower(f) + "}}"
		}
	}
	return strings.Join(fields, " ")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
