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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) StudentStats(ctx context.Context) (*StudentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StudentStats), args.Error(1)
}

func (m *mockRepo) StaffStats(ctx context.Context) (*StaffStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StaffStats), args.Error(1)
}

func (m *mockRepo) ClassCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) ClassDistribution(ctx context.Context) ([]ClassCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClassCount), args.Error(1)
}

func (m *mockRepo) FeeStats(ctx context.Context) (*FeeStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FeeStats), args.Error(1)
}

func (m *mockRepo) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Activity), args.Error(1)
}

func TestDashboard_SchoolSummary(t *testing.T) {
	repo := new(mockRepo)
	service := NewService(repo)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }
	ctx := context.Background()

	repo.On("StudentStats", ctx).Return(&StudentStats{Total: 220, Male: 100, Female: 120, NewLast30Days: 20}, nil)
	repo.On("StaffStats", ctx).Return(&StaffStats{Total: 21, Teaching: 15, Support: 6, NewLast30Days: 1}, nil)
	repo.On("ClassCount", ctx).Return(8, nil)
	repo.On("ClassDistribution", ctx).Return([]ClassCount{{Name: "Grade 4", Students: 38}}, nil)
	repo.On("FeeStats", ctx).Return(&FeeStats{Collected: 1200000, Pending: 300000}, nil)
	repo.On("RecentActivity", ctx, 10).Return([]Activity{
		{Kind: "student_admitted", Description: "Wanjiku Kamau admitted", At: now.Add(-2 * time.Hour)},
	}, nil)

	summary, err := service.SchoolSummary(ctx)
	require.NoError(t, err)

	// 20 new on a base of 200 → 10% growth
	assert.Equal(t, 10.0, summary.StudentChangePct)
	assert.Equal(t, 5.0, summary.StaffChangePct)
	assert.Equal(t, 8, summary.Classes)
	require.Len(t, summary.RecentActivity, 1)
	assert.Equal(t, "2 hours ago", summary.RecentActivity[0].TimeAgo)
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 10.0, percentChange(220, 20))
	assert.Equal(t, 0.0, percentChange(0, 0))
	assert.Equal(t, 100.0, percentChange(5, 5))
	assert.Equal(t, 33.3, percentChange(4, 1))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", timeAgo(now, now.Add(-30*time.Second)))
	assert.Equal(t, "5 minutes ago", timeAgo(now, now.Add(-5*time.Minute)))
	assert.Equal(t, "3 hours ago", timeAgo(now, now.Add(-3*time.Hour)))
	assert.Equal(t, "2 days ago", timeAgo(now, now.Add(-49*time.Hour)))
}
