// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/config"
	"github.com/staranto/clubpulse/internal/meta"
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/notify"
	"github.com/staranto/clubpulse/internal/query"
	"github.com/staranto/clubpulse/internal/session"
	"github.com/staranto/clubpulse/internal/transport"
)

const (
	adminEmail = "admin@example.com"
	clubEmail  = "club@example.com"
)

var demoPasswords = map[string]string{
	adminEmail: "admin123",
	clubEmail:  "club123",
}

// fakeServer answers from a route table and records what it was asked.
type fakeServer struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	seen   []string
	bodies map[string][]byte
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		routes: map[string]func(http.ResponseWriter, *http.Request){},
		bodies: map[string][]byte{},
	}
}

func (f *fakeServer) handle(route string, status int, body any) {
	f.routes[route] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	b, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.seen = append(f.seen, route)
	f.bodies[route] = b
	h, ok := f.routes[route]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no route ` + route + `"}`))
		return
	}
	h(w, r)
}

func (f *fakeServer) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

func (f *fakeServer) body(route string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

type harness struct {
	out    *bytes.Buffer
	toasts *notify.Recorder
	meta   meta.Meta
	server *fakeServer
}

// newHarness wires an app against a fake API. email, when set, is logged in
// before the command runs.
func newHarness(t *testing.T, email string) *harness {
	t.Helper()

	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	creds, err := session.DemoCredentials()
	require.NoError(t, err)
	mgr := session.NewManager(session.NewMemoryStore(), creds)
	if email != "" {
		_, err := mgr.Login(context.Background(), email, demoPasswords[email])
		require.NoError(t, err)
	}

	toasts := &notify.Recorder{}
	tc := transport.New(srv.URL, func() string { return mgr.Token(context.Background()) }, srv.Client())
	m := meta.Meta{
		Context:  context.Background(),
		Settings: config.Settings{APIURL: srv.URL, PollInterval: time.Hour},
		Cache:    query.NewClient(toasts),
		API:      clubapi.New(tc),
		Session:  mgr,
	}

	return &harness{out: &bytes.Buffer{}, toasts: toasts, meta: m, server: fake}
}

// run builds a fresh root command, since a cli.Command keeps flag state
// between runs, and runs args against it.
func (h *harness) run(args ...string) error {
	app := NewApp(h.meta)
	app.Writer = h.out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	return app.Run(context.Background(), append([]string{"clubpulse"}, args...))
}

func (h *harness) descriptions(v notify.Variant) []string {
	var out []string
	for _, n := range h.toasts.Variant(v) {
		out = append(out, n.Description)
	}
	return out
}

var roster = []*model.Member{
	{ID: "m1", Name: "Ann Lee", Email: "ann@example.com", Role: "Member", Status: "Active", JoinDate: "2024-01-15"},
	{ID: "m2", Name: "Bob Ray", Email: "bob@example.com", Role: "President", Status: "Active", JoinDate: "2023-09-01"},
}

func TestRoleGate(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		args    []string
		wantErr error
	}{
		{"signed out", "", []string{"members"}, session.ErrNotLoggedIn},
		{"club on admin list", clubEmail, []string{"approvals"}, session.ErrForbidden},
		{"club on admin write", clubEmail, []string{"members", "rm", "m1"}, session.ErrForbidden},
		{"club on clubs", clubEmail, []string{"clubs"}, session.ErrForbidden},
		{"signed out inbox", "", []string{"notifications", "count"}, session.ErrNotLoggedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.email)
			err := h.run(tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, h.server.requests(), "gated commands never reach the API")
		})
	}
}

func TestMembers_List(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "table",
			args:     []string{"members"},
			contains: []string{"Ann Lee", "Bob Ray", "ann@example.com"},
		},
		{
			name:     "search",
			args:     []string{"members", "--search", "bob"},
			contains: []string{"Bob Ray"},
			excludes: []string{"Ann Lee"},
		},
		{
			name:     "filter",
			args:     []string{"members", "--filter", "role=President"},
			contains: []string{"Bob Ray"},
			excludes: []string{"Ann Lee"},
		},
		{
			name:     "json",
			args:     []string{"members", "--output", "json", "--attrs", "phone"},
			contains: []string{`"name":"Ann Lee"`, `"email":"bob@example.com"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, clubEmail)
			h.server.handle("GET /members", http.StatusOK, roster)

			require.NoError(t, h.run(tt.args...))

			for _, s := range tt.contains {
				assert.Contains(t, h.out.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, h.out.String(), s)
			}
			assert.Empty(t, h.toasts.All())
		})
	}
}

func TestMembers_ListFailure(t *testing.T) {
	h := newHarness(t, adminEmail)
	h.server.handle("GET /members", http.StatusInternalServerError, map[string]string{"message": "Database unavailable"})

	err := h.run("members")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReported)
	assert.Equal(t, []string{"Database unavailable"}, h.descriptions(notify.VariantDestructive))
	assert.Empty(t, h.out.String())
}

func TestMembers_Rm(t *testing.T) {
	h := newHarness(t, adminEmail)
	h.server.handle("DELETE /members/m1", http.StatusNoContent, nil)

	require.NoError(t, h.run("members", "rm", "m1"))

	assert.Equal(t, []string{"DELETE /members/m1"}, h.server.requests())
	assert.Equal(t, []string{"Member deleted successfully"}, h.descriptions(notify.VariantDefault))
}

func TestMembers_RmFailure(t *testing.T) {
	h := newHarness(t, adminEmail)
	h.server.handle("DELETE /members/m9", http.StatusNotFound, map[string]string{"message": "Member not found"})

	err := h.run("members", "rm", "m9")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReported)
	assert.Empty(t, h.descriptions(notify.VariantDefault))
	assert.Equal(t, []string{"Member not found"}, h.descriptions(notify.VariantDestructive))
}

func TestMembers_RmMissingID(t *testing.T) {
	h := newHarness(t, adminEmail)

	err := h.run("members", "rm")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReported)
	assert.Contains(t, err.Error(), "missing ID")
	assert.Empty(t, h.server.requests())
}

func TestMembers_Add(t *testing.T) {
	h := newHarness(t, adminEmail)
	h.server.handle("POST /members", http.StatusCreated, &model.Member{ID: "m3", Name: "Cy Presley"})

	require.NoError(t, h.run("members", "add", "--name", "Cy Presley", "--email", "cy@example.com"))

	assert.Equal(t, "m3\n", h.out.String())
	assert.Equal(t, []string{"Member created successfully"}, h.descriptions(notify.VariantDefault))

	var sent model.Member
	require.NoError(t, json.Unmarshal(h.server.body("POST /members"), &sent))
	assert.Equal(t, "Cy Presley", sent.Name)
	assert.Equal(t, "Member", sent.Role)
	assert.Equal(t, "Active", sent.Status)
	assert.NotEmpty(t, sent.JoinDate)
}

func TestMembers_AddRejectsBadEmail(t *testing.T) {
	h := newHarness(t, adminEmail)

	err := h.run("members", "add", "--name", "Cy", "--email", "not-an-email")
	require.Error(t, err)
	assert.Empty(t, h.server.requests())
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		wantOut   string
		wantToast string
		wantErr   bool
	}{
		{name: "ok", password: "admin123", wantOut: "Logged in as Admin User (admin)\n"},
		{name: "bad password", password: "nope", wantToast: "Invalid email or password", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")

			err := h.run("login", "--email", adminEmail, "--password", tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrReported)
				assert.Equal(t, []string{tt.wantToast}, h.descriptions(notify.VariantDestructive))
				_, err := h.meta.Session.Current(context.Background())
				assert.ErrorIs(t, err, session.ErrNotLoggedIn)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, h.out.String())
			user, err := h.meta.Session.Current(context.Background())
			require.NoError(t, err)
			assert.Equal(t, model.RoleAdmin, user.Role)
		})
	}
}

func TestLogin_PromptsForPassword(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func() (string, error) { return "club123", nil }

	h := newHarness(t, "")
	require.NoError(t, h.run("login", "--email", clubEmail))
	assert.Equal(t, "Logged in as Club Manager (club)\n", h.out.String())
}

func TestLogoutWhoami(t *testing.T) {
	h := newHarness(t, clubEmail)

	require.NoError(t, h.run("whoami"))
	assert.Equal(t, "Club Manager <club@example.com> club\n", h.out.String())

	h.out.Reset()
	require.NoError(t, h.run("logout"))
	assert.Equal(t, "Logged out\n", h.out.String())

	err := h.run("whoami")
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestSignup_Unsupported(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("signup", "--name", "New", "--email", "new@example.com", "--password", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReported)
	assert.Equal(t, []string{session.ErrSignupUnsupported.Error()}, h.descriptions(notify.VariantDestructive))
}

func TestNotifications(t *testing.T) {
	inbox := []*model.Notification{
		{ID: "n1", Title: "Welcome", Message: "Hello", Type: "info", CreatedAt: "2024-03-01T10:00:00Z"},
		{ID: "n2", Title: "Approved", Message: "Spring Fair", Type: "success", CreatedAt: "2024-03-02T10:00:00Z", IsRead: true},
		{ID: "n3", Title: "Reminder", Message: "Dues", Type: "warning", CreatedAt: "2024-03-03T10:00:00Z"},
	}

	tests := []struct {
		name      string
		args      []string
		route     string
		wantOut   string
		wantToast string
	}{
		{name: "count", args: []string{"notifications", "count"}, route: "GET /notifications", wantOut: "2\n"},
		{name: "read one", args: []string{"notifications", "read", "n1"}, route: "PUT /notifications/n1/read", wantToast: "Notification marked as read"},
		{name: "read all", args: []string{"notifications", "read", "--all"}, route: "PUT /notifications/read-all", wantToast: "All notifications marked as read"},
		{name: "rm", args: []string{"notifications", "rm", "n2"}, route: "DELETE /notifications/n2", wantToast: "Notification deleted successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, clubEmail)
			h.server.handle("GET /notifications", http.StatusOK, inbox)
			if tt.route != "GET /notifications" {
				h.server.handle(tt.route, http.StatusOK, map[string]bool{"ok": true})
			}

			require.NoError(t, h.run(tt.args...))

			assert.Contains(t, h.server.requests(), tt.route)
			assert.Equal(t, tt.wantOut, h.out.String())
			if tt.wantToast != "" {
				assert.Equal(t, []string{tt.wantToast}, h.descriptions(notify.VariantDefault))
			}
		})
	}
}

func TestNotificationsRead_NeedsTarget(t *testing.T) {
	h := newHarness(t, clubEmail)

	err := h.run("notifications", "read")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all")
	assert.Empty(t, h.server.requests())
}

func TestEventsRSVP(t *testing.T) {
	h := newHarness(t, clubEmail)
	h.server.handle("POST /events/e1/rsvp", http.StatusOK, map[string]bool{"ok": true})

	require.NoError(t, h.run("events", "rsvp", "e1", "--status", "maybe"))

	var sent model.RSVP
	require.NoError(t, json.Unmarshal(h.server.body("POST /events/e1/rsvp"), &sent))
	assert.Equal(t, model.RSVP{UserID: "club", Status: model.RSVPMaybe}, sent)
	assert.Equal(t, []string{"RSVP saved successfully"}, h.descriptions(notify.VariantDefault))
}

func TestEventsRSVP_BadStatus(t *testing.T) {
	h := newHarness(t, clubEmail)

	err := h.run("events", "rsvp", "e1", "--status", "perhaps")
	require.Error(t, err)
	assert.Empty(t, h.server.requests())
}

func TestApprovalsReject_NeedsReason(t *testing.T) {
	h := newHarness(t, adminEmail)

	err := h.run("approvals", "reject", "a1", "--reason", "  ")
	require.Error(t, err)
	assert.Empty(t, h.server.requests())
}

func TestApprovalsApprove(t *testing.T) {
	h := newHarness(t, adminEmail)
	h.server.handle("POST /approvals/a1/approve", http.StatusOK, map[string]bool{"ok": true})

	require.NoError(t, h.run("approvals", "approve", "a1", "--notes", "fine"))

	assert.JSONEq(t, `{"notes":"fine"}`, string(h.server.body("POST /approvals/a1/approve")))
	assert.Equal(t, []string{"Request approved successfully"}, h.descriptions(notify.VariantDefault))
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, adminEmail)
	h.server.handle("GET /analytics/dashboard", http.StatusOK, model.Analytics{
		MemberStats:    model.MemberStats{Total: 120, Active: 100, GrowthRate: 4.5},
		FinancialStats: model.FinancialStats{TotalBudget: 12500},
	})

	require.NoError(t, h.run("dashboard", "--filter", "group=members", "--attrs", "value"))

	out := h.out.String()
	assert.Contains(t, out, "growthRate")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "120")
	assert.NotContains(t, out, "totalBudget")
}

func TestDashboard_Series(t *testing.T) {
	h := newHarness(t, adminEmail)
	h.server.routes["GET /analytics/members/growth"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "year", r.URL.Query().Get("period"))
		_ = json.NewEncoder(w).Encode([]*model.Point{{Name: "Jan", Members: 10}, {Name: "Feb", Members: 14}})
	}

	require.NoError(t, h.run("dashboard", "growth", "--period", "year", "--output", "json"))

	assert.Contains(t, h.out.String(), `"name":"Feb"`)
	assert.Contains(t, h.out.String(), `"members":14`)
}

func TestDashboard_SeriesBadPeriod(t *testing.T) {
	h := newHarness(t, adminEmail)

	err := h.run("dashboard", "growth", "--period", "decade")
	require.Error(t, err)
	assert.Empty(t, h.server.requests())
}

func TestParseWhere(t *testing.T) {
	got, err := parseWhere([]string{"club=chess", "from=2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"club": "chess", "from": "2024-01-01"}, got)

	_, err = parseWhere([]string{"nokey"})
	assert.Error(t, err)
}

func TestReportsExport(t *testing.T) {
	h := newHarness(t, adminEmail)
	h.server.routes["GET /reports/r1/export"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`{"url":"https://files.example.com/r1.csv"}`))
	}

	require.NoError(t, h.run("reports", "export", "r1", "--format", "csv"))
	assert.JSONEq(t, `{"url":"https://files.example.com/r1.csv"}`, h.out.String())
}

func TestReportsExport_S3(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", t.TempDir()+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", t.TempDir()+"/credentials")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")

	h := newHarness(t, adminEmail)
	h.meta.Settings.AWSRegion = "us-east-1"
	h.meta.Settings.S3Endpoint = h.meta.Settings.APIURL
	h.server.handle("GET /reports/r1/export", http.StatusOK, map[string]string{"title": "Spring Fair"})
	h.server.handle("PUT /exports/r1.csv", http.StatusOK, nil)

	require.NoError(t, h.run("reports", "export", "r1", "--out", "s3://exports/r1.csv"))

	assert.Contains(t, h.server.requests(), "PUT /exports/r1.csv")
	assert.Contains(t, string(h.server.body("PUT /exports/r1.csv")), "Spring Fair")
	assert.Empty(t, h.out.String())
}

func TestReportsExport_BadS3URL(t *testing.T) {
	h := newHarness(t, adminEmail)
	h.server.handle("GET /reports/r1/export", http.StatusOK, map[string]string{"title": "Spring Fair"})

	err := h.run("reports", "export", "r1", "--out", "s3://exports")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want s3://bucket/key")
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh"} {
		t.Run(shell, func(t *testing.T) {
			h := newHarness(t, "")
			require.NoError(t, h.run("completion", shell))
			assert.Contains(t, h.out.String(), "_clubpulse")
			assert.Contains(t, h.out.String(), "event-approvals")
		})
	}
}

func TestGetMeta(t *testing.T) {
	m := meta.Meta{Args: []string{"clubpulse", "members"}}
	root := &cli.Command{Name: "root", Metadata: map[string]any{"meta": m}}

	assert.Equal(t, m.Args, GetMeta(root).Args)
	assert.Nil(t, GetMeta(nil).Args)
	assert.Nil(t, GetMeta(&cli.Command{}).Args)
}

func TestReported(t *testing.T) {
	assert.NoError(t, reported(nil))

	cause := errors.New("Member not found")
	err := reported(cause)
	assert.ErrorIs(t, err, ErrReported)
	assert.ErrorIs(t, err, cause)
}
