// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/clubpulse/internal/command"
	"github.com/staranto/clubpulse/internal/config"
	mylog "github.com/staranto/clubpulse/internal/log"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(realMain(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// realMain runs clubpulse with args and returns the exit code: 1 when the
// app can not be built, 2 when the command fails.
func realMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	mylog.InitLogger()

	if len(args) < 2 {
		fmt.Fprintln(stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	if slices.Contains(args, "--version") || slices.Contains(args, "-v") {
		fmt.Fprintln(stdout, version)
		return 0
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	app.Writer = stdout
	app.ErrWriter = stderr

	if err := app.Run(ctx, args); err != nil {
		// Failed reads and writes were already shown as notifications.
		if !errors.Is(err, command.ErrReported) {
			fmt.Fprintln(stderr, err)
		}
		return 2
	}
	return 0
}

// mangleArguments expands an @set of default arguments from the config file
// into args, right after the subcommand. Without an explicit @set the
// "defaults" set of the subcommand is used, e.g.
//
//	members:
//	  defaults:
//	    - --titles
//	    - --sort name
func mangleArguments(args []string) []string {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2, len(args)+4)
	copy(preamble, args[:2])

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help")
		}
	}

	rest := slices.Clone(args[2:])

	// See if there is a @set specified. If so, it replaces the defaults and
	// the @set entry is removed from args.
	set := "defaults"
	for i, a := range rest {
		if strings.HasPrefix(a, "@") {
			set = a[1:]
			rest = slices.Delete(rest, i, i+1)
			break
		}
	}

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)

	out := preamble
	for _, arg := range setArgs {
		out = append(out, strings.Fields(arg)...)
	}
	out = append(out, rest...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
