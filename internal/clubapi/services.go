// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package clubapi

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/transport"
)

// API groups every service behind one transport.
type API struct {
	Members         *Members
	Events          *Events
	Reports         *Reports
	Approvals       *Approvals
	Notifications   *Notifications
	Analytics       *Analytics
	Clubs           Resource[model.Club]
	Administrations Resource[model.Administration]
	EventApprovals  Resource[model.EventApproval]
}

// New returns an API speaking through c.
func New(c *transport.Client) *API {
	return &API{
		Members:         &Members{Resource: NewResource[model.Member](c, "/members")},
		Events:          &Events{Resource: NewResource[model.Event](c, "/events")},
		Reports:         &Reports{Resource: NewResource[model.Report](c, "/reports")},
		Approvals:       &Approvals{Resource: NewResource[model.Approval](c, "/approvals")},
		Notifications:   &Notifications{Resource: NewResource[model.Notification](c, "/notifications")},
		Analytics:       &Analytics{client: c},
		Clubs:           NewResource[model.Club](c, "/clubs"),
		Administrations: NewResource[model.Administration](c, "/administrations"),
		EventApprovals:  NewResource[model.EventApproval](c, "/event-approvals"),
	}
}

type Members struct {
	Resource[model.Member]
}

// Search runs a server side search over the roster.
func (s *Members) Search(ctx context.Context, q string) ([]*model.Member, error) {
	return transport.Get[[]*model.Member](ctx, s.client,
		transport.WithQuery(s.Path("search"), url.Values{"q": {q}}))
}

type Events struct {
	Resource[model.Event]
}

// RSVP records userID's reply to eventID.
func (s *Events) RSVP(ctx context.Context, eventID, userID string, status model.RSVPStatus) error {
	if eventID == "" {
		return ErrMissingID
	}
	_, err := transport.Post[json.RawMessage](ctx, s.client, s.Path(eventID, "rsvp"),
		model.RSVP{UserID: userID, Status: status})
	return err
}

// Attendees lists the members attending eventID.
func (s *Events) Attendees(ctx context.Context, eventID string) ([]*model.Member, error) {
	if eventID == "" {
		return nil, ErrMissingID
	}
	return transport.Get[[]*model.Member](ctx, s.client, s.Path(eventID, "attendees"))
}

type Reports struct {
	Resource[model.Report]
}

// Approve marks report id approved.
func (s *Reports) Approve(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := transport.Post[json.RawMessage](ctx, s.client, s.Path(id, "approve"), struct{}{})
	return err
}

// Reject marks report id rejected with reason.
func (s *Reports) Reject(ctx context.Context, id, reason string) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := transport.Post[json.RawMessage](ctx, s.client, s.Path(id, "reject"),
		model.RejectRequest{Reason: reason})
	return err
}

// Export returns the server's rendering of report id.
func (s *Reports) Export(ctx context.Context, id string, format model.ExportFormat) (json.RawMessage, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return transport.Get[json.RawMessage](ctx, s.client,
		transport.WithQuery(s.Path(id, "export"), url.Values{"format": {string(format)}}))
}

// Generate asks the server to build a report.
func (s *Reports) Generate(ctx context.Context, req model.ReportRequest) (*model.Report, error) {
	return transport.Post[*model.Report](ctx, s.client, s.Path("generate"), req)
}

type Approvals struct {
	Resource[model.Approval]
}

// Approve grants request id.
func (s *Approvals) Approve(ctx context.Context, id, notes string) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := transport.Post[json.RawMessage](ctx, s.client, s.Path(id, "approve"),
		model.ApproveRequest{Notes: notes})
	return err
}

// Reject refuses request id.
func (s *Approvals) Reject(ctx context.Context, id, reason string) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := transport.Post[json.RawMessage](ctx, s.client, s.Path(id, "reject"),
		model.RejectRequest{Reason: reason})
	return err
}

type Notifications struct {
	Resource[model.Notification]
}

// Unread lists only unread notifications.
func (s *Notifications) Unread(ctx context.Context) ([]*model.Notification, error) {
	return s.List(ctx, url.Values{"unread": {"true"}})
}

// MarkRead marks notification id read.
func (s *Notifications) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := transport.Put[json.RawMessage](ctx, s.client, s.Path(id, "read"), struct{}{})
	return err
}

// MarkAllRead marks every notification read.
func (s *Notifications) MarkAllRead(ctx context.Context) error {
	_, err := transport.Put[json.RawMessage](ctx, s.client, s.Path("read-all"), struct{}{})
	return err
}

type Analytics struct {
	client *transport.Client
}

// Dashboard returns the summary figures.
func (s *Analytics) Dashboard(ctx context.Context) (*model.Analytics, error) {
	return transport.Get[*model.Analytics](ctx, s.client, "/analytics/dashboard")
}

// MemberGrowth returns roster growth over period.
func (s *Analytics) MemberGrowth(ctx context.Context, period model.Period) ([]*model.Point, error) {
	return s.series(ctx, "/analytics/members/growth", period)
}

// EventAttendance returns attendance over period.
func (s *Analytics) EventAttendance(ctx context.Context, period model.Period) ([]*model.Point, error) {
	return s.series(ctx, "/analytics/events/attendance", period)
}

// Financial returns spending over period.
func (s *Analytics) Financial(ctx context.Context, period model.Period) ([]*model.Point, error) {
	return s.series(ctx, "/analytics/financial", period)
}

func (s *Analytics) series(ctx context.Context, path string, period model.Period) ([]*model.Point, error) {
	if period == "" {
		period = model.DefaultPeriod
	}
	return transport.Get[[]*model.Point](ctx, s.client,
		transport.WithQuery(path, url.Values{"period": {string(period)}}))
}

// Custom runs an ad hoc report over metrics, narrowed by filters.
func (s *Analytics) Custom(ctx context.Context, metrics []string, filters map[string]string) (map[string]any, error) {
	params := url.Values{"metrics": metrics}
	for k, v := range filters {
		params.Add(k, v)
	}
	return transport.Get[map[string]any](ctx, s.client, transport.WithQuery("/analytics/custom", params))
}
