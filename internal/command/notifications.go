// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/query"
)

var notificationAttrs = []string{".id", "title", "message::40", "type", "createdAt::h", "isRead"}

// readNotifications is the fetch shared by the list, count and watch
// commands so they agree on the cache entry.
func readNotifications(m meta.Meta) query.FetchFunc[[]*model.Notification] {
	return func(ctx context.Context) ([]*model.Notification, error) {
		return m.API.Notifications.List(ctx, nil)
	}
}

func NotificationsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[*model.Notification]{
		CommandName:  "notifications",
		SchemaType:   reflect.TypeOf(model.Notification{}),
		DefaultAttrs: notificationAttrs,
		SearchFields: []string{"attributes.title", "attributes.message"},
		Key:          clubapi.KeyNotifications,
		FetchFn: func(ctx context.Context, _ *cli.Command) ([]*model.Notification, error) {
			return readNotifications(m)(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

// NotificationsCountCommandAction prints the unread counter.
func NotificationsCountCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	q := query.Get(m.Cache, clubapi.KeyNotifications, readNotifications(m))
	defer q.Close()

	all, err := q.Wait(ctx)
	if err != nil {
		return reported(err)
	}
	fmt.Fprintln(writer(cmd), model.CountUnread(all))
	return nil
}

// NotificationsReadCommandAction marks one notification, or with --all every
// notification, read.
func NotificationsReadCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	opts := query.MutationOptions[string, struct{}]{
		InvalidateQueries: []query.Key{clubapi.KeyNotifications},
	}

	if cmd.Bool("all") {
		opts.SuccessMessage = "All notifications marked as read"
		readAll := query.Put(m.Cache, func(ctx context.Context, _ string) (struct{}, error) {
			return struct{}{}, m.API.Notifications.MarkAllRead(ctx)
		}, opts)
		_, err := mutate(ctx, readAll, "")
		return err
	}

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return fmt.Errorf("%w (or use --all)", err)
	}

	opts.SuccessMessage = "Notification marked as read"
	read := query.Put(m.Cache, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, m.API.Notifications.MarkRead(ctx, id)
	}, opts)
	_, err = mutate(ctx, read, id)
	return err
}

func NotificationsRmCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id, err := requireArg(cmd, "ID")
	if err != nil {
		return err
	}

	del := query.Delete(m.Cache, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, m.API.Notifications.Delete(ctx, id)
	}, query.MutationOptions[string, struct{}]{
		InvalidateQueries: []query.Key{clubapi.KeyNotifications},
		SuccessMessage:    "Notification deleted successfully",
	})
	_, err = mutate(ctx, del, id)
	return err
}

func NotificationsCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "notifications",
		Usage:     "notification inbox",
		UsageText: "clubpulse notifications [options]",
		Commands: []*cli.Command{
			{
				Name:   "count",
				Usage:  "print the number of unread notifications",
				Action: NotificationsCountCommandAction,
			},
			{
				Name:      "read",
				Usage:     "mark notifications read",
				UsageText: "clubpulse notifications read ID | --all",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "mark every notification read"},
				},
				Action: NotificationsReadCommandAction,
			},
			{
				Name:      "rm",
				Usage:     "delete a notification",
				UsageText: "clubpulse notifications rm ID",
				Action:    NotificationsRmCommandAction,
			},
			{
				Name:      "watch",
				Usage:     "follow the inbox as new notifications arrive",
				UsageText: "clubpulse notifications watch [--interval DURATION]",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "poll interval, defaults to poll.interval from the config",
					},
				},
				Action: NotificationsWatchCommandAction,
			},
		},
		Action: NotificationsCommandAction,
		Meta:   meta,
	}).Build()
}
