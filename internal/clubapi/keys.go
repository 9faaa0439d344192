// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package clubapi

import (
	"github.com/staranto/clubpulse/internal/model"
	"github.com/staranto/clubpulse/internal/query"
)

// Cache keys shared by readers and the writes that invalidate them.
var (
	KeyMembers         = query.Key{"members"}
	KeyEvents          = query.Key{"events"}
	KeyReports         = query.Key{"reports"}
	KeyApprovals       = query.Key{"approvals"}
	KeyNotifications   = query.Key{"notifications"}
	KeyClubs           = query.Key{"clubs"}
	KeyAdministrations = query.Key{"administrations"}
	KeyEventApprovals  = query.Key{"event-approvals"}
	KeyDashboard       = query.Key{"analytics", "dashboard"}
)

// KeyAttendees is the key of one event's attendee list.
func KeyAttendees(eventID string) query.Key {
	return query.Key{"events", eventID, "attendees"}
}

// KeySeries is the key of one analytics series over period.
func KeySeries(name string, period model.Period) query.Key {
	return query.Key{"analytics", name, string(period)}
}
