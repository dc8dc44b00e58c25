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

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ofisihq/ofisi/internal/dashboard"
)

// DashboardRepository implements dashboard.SummaryRepository with
// aggregate queries over the request's bound partition.
type DashboardRepository struct {
	db *DB
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// StudentStats returns headline student numbers
func (r *DashboardRepository) StudentStats(ctx context.Context) (*dashboard.StudentStats, error) {
	var stats dashboard.StudentStats
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			SELECT
				count(*),
				count(*) FILTER (WHERE gender = 'male'),
				count(*) FILTER (WHERE gender = 'female'),
				count(*) FILTER (WHERE admission_date > now() - interval '30 days')
			FROM students
			WHERE is_active
		`).Scan(&stats.Total, &stats.Male, &stats.Female, &stats.NewLast30Days)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate students: %w", err)
	}
	return &stats, nil
}

// StaffStats returns headline staff numbers
func (r *DashboardRepository) StaffStats(ctx context.Context) (*dashboard.StaffStats, error) {
	var stats dashboard.StaffStats
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			SELECT
				count(*),
				count(*) FILTER (WHERE staff_type = 'teaching'),
				count(*) FILTER (WHERE staff_type = 'support'),
				count(*) FILTER (WHERE hire_date > now() - interval '30 days')
			FROM staff
			WHERE is_active
		`).Scan(&stats.Total, &stats.Teaching, &stats.Support, &stats.NewLast30Days)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate staff: %w", err)
	}
	return &stats, nil
}

// ClassCount returns the number of classes
func (r *DashboardRepository) ClassCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `SELECT count(*) FROM classes`).Scan(&count)
	})
	return count, err
}

// ClassDistribution returns students-per-grade for the distribution chart
func (r *DashboardRepository) ClassDistribution(ctx context.Context) ([]dashboard.ClassCount, error) {
	var distribution []dashboard.ClassCount
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT grade_level, count(*)
			FROM students
			WHERE is_active
			GROUP BY grade_level
			ORDER BY grade_level
		`)
		if err != nil {
			return fmt.Errorf("failed to aggregate class distribution: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var slice dashboard.ClassCount
			if err := rows.Scan(&slice.Name, &slice.Students); err != nil {
				return fmt.Errorf("failed to scan class distribution: %w", err)
			}
			distribution = append(distribution, slice)
		}
		return rows.Err()
	})
	return distribution, err
}

// FeeStats returns collection totals and the 12-month trend. Pending is
// total dues across active students' grade levels minus collections.
func (r *DashboardRepository) FeeStats(ctx context.Context) (*dashboard.FeeStats, error) {
	stats := &dashboard.FeeStats{}
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(sum(amount), 0) FROM fee_payments
		`).Scan(&stats.Collected); err != nil {
			return fmt.Errorf("failed to sum collections: %w", err)
		}

		var due float64
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(sum(fs.amount), 0)
			FROM students s
			JOIN fee_structures fs ON fs.grade_level = s.grade_level
			WHERE s.is_active
		`).Scan(&due); err != nil {
			return fmt.Errorf("failed to sum dues: %w", err)
		}
		stats.Pending = due - stats.Collected
		if stats.Pending < 0 {
			stats.Pending = 0
		}

		rows, err := tx.Query(ctx, `
			SELECT to_char(date_trunc('month', paid_at), 'YYYY-MM'), sum(amount)
			FROM fee_payments
			WHERE paid_at > now() - interval '12 months'
			GROUP BY 1
			ORDER BY 1
		`)
		if err != nil {
			return fmt.Errorf("failed to aggregate fee trend: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var point dashboard.MonthlyAmount
			if err := rows.Scan(&point.Month, &point.Amount); err != nil {
				return fmt.Errorf("failed to scan fee trend: %w", err)
			}
			stats.MonthlyTrend = append(stats.MonthlyTrend, point)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentActivity returns the latest admissions, hires and payments
func (r *DashboardRepository) RecentActivity(ctx context.Context, limit int) ([]dashboard.Activity, error) {
	var feed []dashboard.Activity
	err := r.db.InPartition(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT kind, description, at FROM (
				SELECT 'student_admitted' AS kind,
					first_name || ' ' || last_name || ' admitted' AS description,
					created_at AS at
				FROM students
				UNION ALL
				SELECT 'staff_hired',
					first_name || ' ' || last_name || ' joined',
					created_at
				FROM staff
				UNION ALL
				SELECT 'fee_payment',
					'Payment ' || receipt_number || ' received',
					created_at
				FROM fee_payments
			) activity
			ORDER BY at DESC
			LIMIT $1
		`, limit)
		if err != nil {
			return fmt.Errorf("failed to list activity: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var a dashboard.Activity
			if err := rows.Scan(&a.Kind, &a.Description, &a.At); err != nil {
				return fmt.Errorf("failed to scan activity: %w", err)
			}
			feed = append(feed, a)
		}
		return rows.Err()
	})
	return feed, err
}
