// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/query"
)

// readPassword prompts on the terminal. Replaced in tests.
var readPassword = func() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// LoginCommandAction signs in against the static credential store.
func LoginCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	creds := model.LoginCredentials{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}
	if creds.Password == "" {
		p, err := readPassword()
		if err != nil {
			return err
		}
		creds.Password = p
	}

	login := query.Post(m.Cache, func(ctx context.Context, c model.LoginCredentials) (*model.User, error) {
		return m.Session.Login(ctx, c.Email, c.Password)
	})
	user, err := mutate(ctx, login, creds)
	if err != nil {
		return err
	}

	fmt.Fprintf(writer(cmd), "Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func LoginCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "sign in",
		UsageText: "clubpulse login --email EMAIL [--password PASSWORD]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "account email",
				Required: true,
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("CLUBPULSE_EMAIL"),
				),
				Validator: func(value string) error {
					return FlagValidators(value, EmailValidator)
				},
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "account password, prompted for when omitted",
			},
		},
		Action: LoginCommandAction,
	}
}

// SignupCommandAction always fails in demo mode; the failure is reported
// like any other write.
func SignupCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	signup := query.Post(m.Cache, m.Session.Signup)
	_, err := mutate(ctx, signup, model.SignupCredentials{
		Name:                 cmd.String("name"),
		Email:                cmd.String("email"),
		Password:             cmd.String("password"),
		PasswordConfirmation: cmd.String("password"),
	})
	return err
}

func SignupCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:   "signup",
		Usage:  "create an account",
		Hidden: true,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: SignupCommandAction,
	}
}

func LogoutCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if err := m.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(writer(cmd), "Logged out")
	return nil
}

func LogoutCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "sign out and forget the session",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: LogoutCommandAction,
	}
}

func WhoamiCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	user, err := m.Session.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer(cmd), "%s <%s> %s\n", user.Name, user.Email, user.Role)
	return nil
}

func WhoamiCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the signed in user",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: WhoamiCommandAction,
	}
}
