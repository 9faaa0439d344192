// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import "fmt"

type MemberStats struct {
	Total        int     `jsonapi:"attr,total" json:"total"`
	Active       int     `jsonapi:"attr,active" json:"active"`
	Inactive     int     `jsonapi:"attr,inactive" json:"inactive"`
	NewThisMonth int     `jsonapi:"attr,newThisMonth" json:"newThisMonth"`
	GrowthRate   float64 `jsonapi:"attr,growthRate" json:"growthRate"`
}

type EventStats struct {
	Total             int     `jsonapi:"attr,total" json:"total"`
	Upcoming          int     `jsonapi:"attr,upcoming" json:"upcoming"`
	Completed         int     `jsonapi:"attr,completed" json:"completed"`
	Cancelled         int     `jsonapi:"attr,cancelled" json:"cancelled"`
	AverageAttendance float64 `jsonapi:"attr,averageAttendance" json:"averageAttendance"`
}

type FinancialStats struct {
	TotalBudget      float64 `jsonapi:"attr,totalBudget" json:"totalBudget"`
	Spent            float64 `jsonapi:"attr,spent" json:"spent"`
	Remaining        float64 `jsonapi:"attr,remaining" json:"remaining"`
	AverageEventCost float64 `jsonapi:"attr,averageEventCost" json:"averageEventCost"`
}

// Analytics is the dashboard summary.
type Analytics struct {
	MemberStats    MemberStats    `jsonapi:"attr,memberStats" json:"memberStats"`
	EventStats     EventStats     `jsonapi:"attr,eventStats" json:"eventStats"`
	FinancialStats FinancialStats `jsonapi:"attr,financialStats" json:"financialStats"`
}

// Stat is one named figure of the dashboard.
type Stat struct {
	ID     string  `jsonapi:"primary,stats"`
	Group  string  `jsonapi:"attr,group"`
	Metric string  `jsonapi:"attr,metric"`
	Value  float64 `jsonapi:"attr,value"`
}

// Stats flattens a into one row per figure, in a stable order.
func (a Analytics) Stats() []*Stat {
	rows := []struct {
		group, metric string
		value         float64
	}{
		{"members", "total", float64(a.MemberStats.Total)},
		{"members", "active", float64(a.MemberStats.Active)},
		{"members", "inactive", float64(a.MemberStats.Inactive)},
		{"members", "newThisMonth", float64(a.MemberStats.NewThisMonth)},
		{"members", "growthRate", a.MemberStats.GrowthRate},
		{"events", "total", float64(a.EventStats.Total)},
		{"events", "upcoming", float64(a.EventStats.Upcoming)},
		{"events", "completed", float64(a.EventStats.Completed)},
		{"events", "cancelled", float64(a.EventStats.Cancelled)},
		{"events", "averageAttendance", a.EventStats.AverageAttendance},
		{"financial", "totalBudget", a.FinancialStats.TotalBudget},
		{"financial", "spent", a.FinancialStats.Spent},
		{"financial", "remaining", a.FinancialStats.Remaining},
		{"financial", "averageEventCost", a.FinancialStats.AverageEventCost},
	}

	stats := make([]*Stat, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, &Stat{
			ID:     fmt.Sprintf("%s.%s", r.group, r.metric),
			Group:  r.group,
			Metric: r.metric,
			Value:  r.value,
		})
	}
	return stats
}

// Point is one bucket of a time series.
type Point struct {
	Name       string  `jsonapi:"primary,points" json:"name"`
	Members    float64 `jsonapi:"attr,members,omitempty" json:"members,omitempty"`
	Events     float64 `jsonapi:"attr,events,omitempty" json:"events,omitempty"`
	Attendance float64 `jsonapi:"attr,attendance,omitempty" json:"attendance,omitempty"`
	Value      float64 `jsonapi:"attr,value,omitempty" json:"value,omitempty"`
}
