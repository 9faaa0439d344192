// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/clubpulse/internal/cacheutil"
	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/config"
	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/notify"
	"github.com/staranto/clubpulse/internal/query"
	"github.com/staranto/clubpulse/internal/session"
	"github.com/staranto/clubpulse/internal/transport"
)

// drainTimeout bounds how long the app waits for background refetches
// after a command finishes.
const drainTimeout = 5 * time.Second

// InitApp builds the process state from the config file and environment and
// returns the root command.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	m, err := NewMeta(ctx, args)
	if err != nil {
		return nil, err
	}
	return NewApp(m), nil
}

// NewMeta loads configuration and wires the session, transport, API and
// cache.
func NewMeta(ctx context.Context, args []string) (meta.Meta, error) {
	// The arg[1] immediately following the binary (arg[0]) is the clubpulse
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load(ns)
	if err != nil {
		log.WithError(err).Debug("continuing without a config file")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return meta.Meta{}, fmt.Errorf("failed to load settings: %w", err)
	}
	log.Debugf("settings: url=%s timeout=%s stale=%s backend=%s",
		settings.APIURL, settings.APITimeout, settings.CacheStale, settings.SessionBackend)

	if settings.CacheClean > 0 {
		if err := cacheutil.Default().Purge(settings.CacheClean); err != nil {
			log.WithError(err).Warn("failed to purge state files")
		}
	}

	store, err := session.NewStateStore(settings)
	if err != nil {
		return meta.Meta{}, err
	}
	creds, err := session.DemoCredentials()
	if err != nil {
		return meta.Meta{}, fmt.Errorf("failed to build credentials: %w", err)
	}
	mgr := session.NewManager(store, creds)

	// A configured API token wins over the session token.
	token := func() string {
		if settings.APIToken != "" {
			return settings.APIToken
		}
		return mgr.Token(context.Background())
	}
	tc := transport.New(settings.APIURL, token, &http.Client{Timeout: settings.APITimeout})

	sink := notify.Multi{
		notify.NewWriter(term.IsTerminal(int(os.Stderr.Fd()))),
		notify.LogSink{},
	}
	cache := query.NewClient(sink,
		query.WithStaleTime(settings.CacheStale),
		query.WithTimeout(settings.APITimeout))

	return meta.Meta{
		Args:     args,
		Config:   cfg,
		Context:  ctx,
		Settings: settings,
		Cache:    cache,
		API:      clubapi.New(tc),
		Session:  mgr,
	}, nil
}

// NewApp returns the root command for m.
func NewApp(m meta.Meta) *cli.Command {
	app := &cli.Command{
		Name:  "clubpulse",
		Usage: "ClubPulse club administration",
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "clubpulse version info",
				HideDefault: true,
			},
		},
		// Writes only mark entries stale, but a mounted reader (watch) may
		// still be refetching when the command returns.
		After: func(ctx context.Context, _ *cli.Command) error {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
			defer cancel()
			if err := m.Cache.Drain(ctx); err != nil {
				log.WithError(err).Warn("background fetches still running")
			}
			return nil
		},
	}

	app.Commands = append(app.Commands,
		LoginCommandBuilder(app, m),
		SignupCommandBuilder(app, m),
		LogoutCommandBuilder(app, m),
		WhoamiCommandBuilder(app, m),
		MembersCommandBuilder(app, m),
		EventsCommandBuilder(app, m),
		ApprovalsCommandBuilder(app, m),
		EventApprovalsCommandBuilder(app, m),
		ReportsCommandBuilder(app, m),
		NotificationsCommandBuilder(app, m),
		ClubsCommandBuilder(app, m),
		AdministrationsCommandBuilder(app, m),
		DashboardCommandBuilder(app, m),
		CompletionCommandBuilder(app, m),
	)

	// Make sure flags are sorted for the --help text.
	var sortFlags func([]*cli.Command)
	sortFlags = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
			sortFlags(cmd.Commands)
		}
	}
	sortFlags(app.Commands)

	return app
}
