// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/poll"
	"github.com/staranto/clubpulse/internal/query"
)

// changedMsg reports that the mounted inbox reader changed state.
type changedMsg struct{}

// arrivedMsg carries one batch of unread notifications from the poller.
type arrivedMsg []*model.Notification

// stoppedMsg reports that a watched channel was closed.
type stoppedMsg struct{}

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true)
	watchNewStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00c8f0"))
	watchDimStyle   = lipgloss.NewStyle().Faint(true)
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
)

// watchModel renders the inbox. The list comes from the cache; poll batches
// only invalidate it and flag what arrived.
type watchModel struct {
	cache *query.Client
	inbox *query.Query[[]*model.Notification]
	sub   *poll.Subscription[*model.Notification]
	now   func() time.Time

	items []*model.Notification
	fresh map[string]bool
	err   error
	done  bool
}

func newWatchModel(cache *query.Client, inbox *query.Query[[]*model.Notification],
	sub *poll.Subscription[*model.Notification]) *watchModel {
	return &watchModel{
		cache: cache,
		inbox: inbox,
		sub:   sub,
		now:   time.Now,
		fresh: map[string]bool{},
	}
}

func waitChanged(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return stoppedMsg{}
		}
		return changedMsg{}
	}
}

func waitArrived(ch <-chan []*model.Notification) tea.Cmd {
	return func() tea.Msg {
		batch, ok := <-ch
		if !ok {
			return stoppedMsg{}
		}
		return arrivedMsg(batch)
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(waitChanged(m.inbox.Changes()), waitArrived(m.sub.C()))
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.done = true
			return m, tea.Quit
		case "r":
			m.cache.Invalidate(clubapi.KeyNotifications)
		}
		return m, nil

	case changedMsg:
		snap := m.inbox.Snapshot()
		if snap.Status == query.StatusSuccess {
			m.items = snap.Data
		}
		m.err = snap.Err
		return m, waitChanged(m.inbox.Changes())

	case arrivedMsg:
		for _, n := range msg {
			m.fresh[n.ID] = true
		}
		m.cache.Invalidate(clubapi.KeyNotifications)
		return m, waitArrived(m.sub.C())
	}

	return m, nil
}

func (m *watchModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(watchTitleStyle.Render(
		fmt.Sprintf("Notifications (%d unread)", model.CountUnread(m.items))))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(watchDimStyle.Render("No notifications"))
		b.WriteString("\n")
	}

	for _, n := range m.items {
		marker := " "
		if model.Unread(n) {
			marker = "*"
		}
		title := n.Title
		if m.fresh[n.ID] {
			title = watchNewStyle.Render(title + " (new)")
		}
		fmt.Fprintf(&b, "%s %s  %s  %s\n", marker, title, n.Message,
			watchDimStyle.Render(m.when(n.CreatedAt)))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(watchErrStyle.Render(query.ErrorMessage(m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(watchDimStyle.Render("r refresh, q quit"))
	b.WriteString("\n")
	return b.String()
}

// when renders an RFC 3339 stamp relative to now, or as-is when it does not
// parse.
func (m *watchModel) when(stamp string) string {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	return humanize.RelTime(t, m.now(), "ago", "from now")
}

// NotificationsWatchCommandAction keeps the inbox on screen, refreshing it
// whenever the unread poll delivers a batch.
func NotificationsWatchCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	interval := m.Settings.PollInterval
	if cmd.IsSet("interval") {
		interval = cmd.Duration("interval")
	}

	inbox := query.Get(m.Cache, clubapi.KeyNotifications, readNotifications(m))
	defer inbox.Close()

	sub := poll.Subscribe(ctx, interval, m.API.Notifications.Unread, model.Unread)
	defer sub.Unsubscribe()

	p := tea.NewProgram(newWatchModel(m.Cache, inbox, sub),
		tea.WithContext(ctx),
		tea.WithOutput(writer(cmd)),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
