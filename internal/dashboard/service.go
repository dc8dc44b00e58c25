// Copyright 2026 The Ofisi Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"
)

// StudentStats are headline student numbers for the active partition.
type StudentStats struct {
	Total         int `json:"total"`
	Male          int `json:"male"`
	Female        int `json:"female"`
	NewLast30Days int `json:"new_last_30_days"`
}

// StaffStats are headline staff numbers.
type StaffStats struct {
	Total         int `json:"total"`
	Teaching      int `json:"teaching"`
	Support       int `json:"support"`
	NewLast30Days int `json:"new_last_30_days"`
}

// ClassCount is one slice of the class distribution chart.
type ClassCount struct {
	Name     string `json:"name"`
	Students int    `json:"students"`
}

// MonthlyAmount is one point of the fee collection trend.
type MonthlyAmount struct {
	Month  string  `json:"month"` // "2026-01"
	Amount float64 `json:"amount"`
}

// FeeStats summarize fee collection state.
type FeeStats struct {
	Collected    float64         `json:"collected"`
	Pending      float64         `json:"pending"`
	MonthlyTrend []MonthlyAmount `json:"monthly_trend"`
}

// Activity is one recent-activity feed entry.
type Activity struct {
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// SummaryRepository reads aggregates from the active partition.
type SummaryRepository interface {
	StudentStats(ctx context.Context) (*StudentStats, error)
	StaffStats(ctx context.Context) (*StaffStats, error)
	ClassCount(ctx context.Context) (int, error)
	ClassDistribution(ctx context.Context) ([]ClassCount, error)
	FeeStats(ctx context.Context) (*FeeStats, error)
	RecentActivity(ctx context.Context, limit int) ([]Activity, error)
}

// ActivityView is an Activity with a humanized timestamp for the feed.
type ActivityView struct {
	Activity
	TimeAgo string `json:"time_ago"`
}

// SchoolSummary is the full dashboard payload for a school tenant.
type SchoolSummary struct {
	Students          *StudentStats  `json:"students"`
	StudentChangePct  float64        `json:"student_change_pct"`
	Staff             *StaffStats    `json:"staff"`
	StaffChangePct    float64        `json:"staff_change_pct"`
	Classes           int            `json:"classes"`
	ClassDistribution []ClassCount   `json:"class_distribution"`
	Fees              *FeeStats      `json:"fees"`
	RecentActivity    []ActivityView `json:"recent_activity"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// Service assembles dashboard summaries.
type Service struct {
	repo SummaryRepository
	now  func() time.Time
}

// NewService creates a dashboard service.
func NewService(repo SummaryRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SchoolSummary builds the school dashboard from the active partition.
func (s *Service) SchoolSummary(ctx context.Context) (*SchoolSummary, error) {
	students, err := s.repo.StudentStats(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := s.repo.StaffStats(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.repo.ClassCount(ctx)
	if err != nil {
		return nil, err
	}
	distribution, err := s.repo.ClassDistribution(ctx)
	if err != nil {
		return nil, err
	}
	fees, err := s.repo.FeeStats(ctx)
	if err != nil {
		return nil, err
	}
	activity, err := s.repo.RecentActivity(ctx, 10)
	if err != nil {
		return nil, err
	}

	now := s.now()
	feed := make([]ActivityView, 0, len(activity))
	for _, a := range activity {
		feed = append(feed, ActivityView{Activity: a, TimeAgo: timeAgo(now, a.At)})
	}

	return &SchoolSummary{
		Students:          students,
		StudentChangePct:  percentChange(students.Total, students.NewLast30Days),
		Staff:             staff,
		StaffChangePct:    percentChange(staff.Total, staff.NewLast30Days),
		Classes:           classes,
		ClassDistribution: distribution,
		Fees:              fees,
		RecentActivity:    feed,
		GeneratedAt:       now,
	}, nil
}

// percentChange returns growth over the last 30 days relative to the
// count at the start of the window, rounded to one decimal.
func percentChange(total, addedLast30 int) float64 {
	previous := total - addedLast30
	if previous <= 0 {
		if addedLast30 > 0 {
			return 100
		}
		return 0
	}
	return math.Round(float64(addedLast30)/float64(previous)*1000) / 10
}

// timeAgo renders a coarse human-readable age for the activity feed.
func timeAgo(now, at time.Time) string {
	d := now.Sub(at)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
