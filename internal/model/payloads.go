// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidValue is wrapped by the Parse functions below.
var ErrInvalidValue = errors.New("invalid value")

// RSVPStatus is a reply to an event invitation.
type RSVPStatus string

const (
	RSVPAttending    RSVPStatus = "attending"
	RSVPNotAttending RSVPStatus = "not-attending"
	RSVPMaybe        RSVPStatus = "maybe"
)

// RSVPStatuses lists the accepted replies.
var RSVPStatuses = []string{string(RSVPAttending), string(RSVPNotAttending), string(RSVPMaybe)}

// ParseRSVPStatus validates s.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	v, err := parseEnum("rsvp status", s, RSVPStatuses)
	return RSVPStatus(v), err
}

// RSVP is the body of an event reply.
type RSVP struct {
	UserID string     `json:"userId"`
	Status RSVPStatus `json:"status"`
}

// Period is an analytics window.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// DefaultPeriod is used when none is given.
const DefaultPeriod = PeriodMonth

// Periods lists the accepted windows.
var Periods = []string{string(PeriodWeek), string(PeriodMonth), string(PeriodYear)}

// ParsePeriod validates s. An empty s is DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	v, err := parseEnum("period", s, Periods)
	return Period(v), err
}

// ExportFormat is a report export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportFormats lists the accepted encodings.
var ExportFormats = []string{string(ExportCSV), string(ExportPDF)}

// ParseExportFormat validates s.
func ParseExportFormat(s string) (ExportFormat, error) {
	v, err := parseEnum("export format", s, ExportFormats)
	return ExportFormat(v), err
}

// DecisionStatus is the outcome recorded on an event approval.
type DecisionStatus string

const (
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
)

// DecisionStatuses lists the accepted outcomes.
var DecisionStatuses = []string{string(DecisionApproved), string(DecisionRejected)}

// ParseDecisionStatus validates s.
func ParseDecisionStatus(s string) (DecisionStatus, error) {
	v, err := parseEnum("decision", s, DecisionStatuses)
	return DecisionStatus(v), err
}

func parseEnum(what, s string, allowed []string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(allowed, v) {
		return "", fmt.Errorf("%w: %s %q, want one of %s", ErrInvalidValue, what, s, strings.Join(allowed, "|"))
	}
	return v, nil
}

// ApproveRequest is the body of an approval or report approval.
type ApproveRequest struct {
	Notes string `json:"notes,omitempty"`
}

// RejectRequest is the body of a rejection.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ReportRequest asks the server to generate a report.
type ReportRequest struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content any    `json:"content,omitempty"`
}
