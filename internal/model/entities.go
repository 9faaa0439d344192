// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

// Member is one person on a club roster.
type Member struct {
	ID         string `jsonapi:"primary,members" json:"id,omitempty"`
	Name       string `jsonapi:"attr,name" json:"name"`
	Email      string `jsonapi:"attr,email" json:"email"`
	Role       string `jsonapi:"attr,role" json:"role"`
	Status     string `jsonapi:"attr,status" json:"status"`
	JoinDate   string `jsonapi:"attr,joinDate" json:"joinDate,omitempty"`
	Avatar     string `jsonapi:"attr,avatar,omitempty" json:"avatar,omitempty"`
	Phone      string `jsonapi:"attr,phone,omitempty" json:"phone,omitempty"`
	Department string `jsonapi:"attr,department,omitempty" json:"department,omitempty"`
}

// Event is a scheduled club activity.
type Event struct {
	ID           string  `jsonapi:"primary,events" json:"id,omitempty"`
	Title        string  `jsonapi:"attr,title" json:"title"`
	Description  string  `jsonapi:"attr,description" json:"description"`
	Date         string  `jsonapi:"attr,date" json:"date"`
	Time         string  `jsonapi:"attr,time" json:"time"`
	Location     string  `jsonapi:"attr,location" json:"location"`
	Type         string  `jsonapi:"attr,type" json:"type"`
	Status       string  `jsonapi:"attr,status" json:"status"`
	Attendees    int     `jsonapi:"attr,attendees" json:"attendees"`
	MaxAttendees int     `jsonapi:"attr,maxAttendees,omitempty" json:"maxAttendees,omitempty"`
	Organizer    string  `jsonapi:"attr,organizer,omitempty" json:"organizer,omitempty"`
	Budget       float64 `jsonapi:"attr,budget,omitempty" json:"budget,omitempty"`
}

// Report is a document a club submits for review.
type Report struct {
	ID          string         `jsonapi:"primary,reports" json:"id,omitempty"`
	Title       string         `jsonapi:"attr,title" json:"title"`
	Type        string         `jsonapi:"attr,type" json:"type"`
	SubmittedBy string         `jsonapi:"attr,submittedBy" json:"submittedBy"`
	SubmittedOn string         `jsonapi:"attr,submittedOn" json:"submittedOn"`
	Status      string         `jsonapi:"attr,status" json:"status"`
	Content     map[string]any `jsonapi:"attr,content,omitempty" json:"content,omitempty"`
	Attachments []string       `jsonapi:"attr,attachments,omitempty" json:"attachments,omitempty"`
}

// Approval is a pending request an administrator decides on.
type Approval struct {
	ID          string `jsonapi:"primary,approvals" json:"id,omitempty"`
	Title       string `jsonapi:"attr,title" json:"title"`
	Type        string `jsonapi:"attr,type" json:"type"`
	Details     string `jsonapi:"attr,details" json:"details"`
	RequestedBy string `jsonapi:"attr,requestedBy" json:"requestedBy"`
	RequestedOn string `jsonapi:"attr,requestedOn" json:"requestedOn"`
	Status      string `jsonapi:"attr,status" json:"status"`
	RelatedID   string `jsonapi:"attr,relatedId,omitempty" json:"relatedId,omitempty"`
	RelatedType string `jsonapi:"attr,relatedType,omitempty" json:"relatedType,omitempty"`
}

// Notification is a message delivered to the signed in user.
type Notification struct {
	ID          string `jsonapi:"primary,notifications" json:"id"`
	Title       string `jsonapi:"attr,title" json:"title"`
	Message     string `jsonapi:"attr,message" json:"message"`
	Type        string `jsonapi:"attr,type" json:"type"`
	CreatedAt   string `jsonapi:"attr,createdAt" json:"createdAt"`
	IsRead      bool   `jsonapi:"attr,isRead" json:"isRead"`
	RelatedID   string `jsonapi:"attr,relatedId,omitempty" json:"relatedId,omitempty"`
	RelatedType string `jsonapi:"attr,relatedType,omitempty" json:"relatedType,omitempty"`
}

// Unread keeps notifications that have not been read.
func Unread(n *Notification) bool {
	return n != nil && !n.IsRead
}

// CountUnread counts the unread notifications in ns.
func CountUnread(ns []*Notification) int {
	count := 0
	for _, n := range ns {
		if Unread(n) {
			count++
		}
	}
	return count
}

// Club belongs to a university.
type Club struct {
	ID           int    `jsonapi:"primary,clubs" json:"id,omitempty"`
	Name         string `jsonapi:"attr,name" json:"name"`
	UniversityID int    `jsonapi:"attr,university_id" json:"university_id"`
}

// Administration is the administrative contact of a university.
type Administration struct {
	ID           int    `jsonapi:"primary,administrations" json:"id,omitempty"`
	UniversityID int    `jsonapi:"attr,university_id" json:"university_id"`
	Name         string `jsonapi:"attr,name" json:"name"`
	Email        string `jsonapi:"attr,email" json:"email"`
	Phone        string `jsonapi:"attr,phone" json:"phone"`
}

// EventApproval records the decision on an event.
type EventApproval struct {
	ID      int    `jsonapi:"primary,event-approvals" json:"id,omitempty"`
	EventID string `jsonapi:"attr,event_id" json:"event_id"`
	Status  string `jsonapi:"attr,status" json:"status"`
	Remarks string `jsonapi:"attr,remarks" json:"remarks"`
}
