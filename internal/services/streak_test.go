package services

import (
	"testing"
	"time"

	"github.com/praxislabs/execemy-backend/internal/types"
)

func completedOn(day time.Time) *types.LessonProgress {
	completedAt := day
	return &types.LessonProgress{
		Status:      types.ProgressStatusCompleted,
		CompletedAt: &completedAt,
		UpdatedAt:   day,
	}
}

func TestComputeStreaks(t *testing.T) {
	now := testDay

	tests := []struct {
		name        string
		offsets     []int // days before now, negative values
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "three straight days ending today, plus an old one",
			offsets:     []int{0, -1, -2, -5},
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name:        "no completion today breaks the current streak",
			offsets:     []int{-1, -2, -3, -4},
			wantCurrent: 0,
			wantLongest: 4,
		},
		{
			name:        "single day",
			offsets:     []int{0},
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "two completions on the same day count once",
			offsets:     []int{0, 0, -1},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:        "longest run sits in the past",
			offsets:     []int{0, -3, -4, -5, -6},
			wantCurrent: 1,
			wantLongest: 4,
		},
		{
			name:        "empty",
			offsets:     nil,
			wantCurrent: 0,
			wantLongest: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]*types.LessonProgress, 0, len(tt.offsets))
			for _, off := range tt.offsets {
				rows = append(rows, completedOn(now.AddDate(0, 0, off)))
			}

			got := computeStreaks(rows, now)
			if got.CurrentStreak != tt.wantCurrent {
				t.Errorf("CurrentStreak = %d, want %d", got.CurrentStreak, tt.wantCurrent)
			}
			if got.LongestStreak != tt.wantLongest {
				t.Errorf("LongestStreak = %d, want %d", got.LongestStreak, tt.wantLongest)
			}
		})
	}
}

func TestComputeStreaksIgnoresIncompleteRows(t *testing.T) {
	rows := []*types.LessonProgress{
		{Status: types.ProgressStatusInProgress, UpdatedAt: testDay},
		nil,
	}
	got := computeStreaks(rows, testDay)
	if got.CurrentStreak != 0 || got.LongestStreak != 0 {
		t.Fatalf("got %+v, want zero streaks", got)
	}
}

func TestComputeWeeklyGoalProgressClampsAtFull(t *testing.T) {
	// 10 hours against a 2 hour target stays at 100, not 500.
	rows := []*types.LessonProgress{
		{TimeSpentSeconds: 36000, UpdatedAt: testDay.Add(-time.Hour)},
	}

	goal := computeWeeklyGoal(&types.User{ResidencyYear: 1}, rows, testDay)

	if goal.TargetHours != 2 {
		t.Fatalf("TargetHours = %v, want default 2", goal.TargetHours)
	}
	if goal.CurrentHours != 10 {
		t.Fatalf("CurrentHours = %v, want 10", goal.CurrentHours)
	}
	if goal.ProgressPercentage != 100 {
		t.Fatalf("ProgressPercentage = %d, want 100", goal.ProgressPercentage)
	}
}

func TestComputeWeeklyGoalTargetSources(t *testing.T) {
	target := 4.5

	tests := []struct {
		name    string
		profile *types.User
		want    float64
	}{
		{"profile column wins", &types.User{WeeklyTargetHours: &target, Bio: "Weekly commitment: 9 hours"}, 4.5},
		{"bio fallback for older accounts", &types.User{Bio: "Loves spreadsheets. Weekly commitment: 3 hours"}, 3},
		{"bio match is case insensitive", &types.User{Bio: "weekly COMMITMENT: 1.5 HOURS"}, 1.5},
		{"no signal falls back to default", &types.User{}, 2},
		{"nil profile falls back to default", nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := computeWeeklyGoal(tt.profile, nil, testDay)
			if goal.TargetHours != tt.want {
				t.Fatalf("TargetHours = %v, want %v", goal.TargetHours, tt.want)
			}
		})
	}
}

func TestComputeWeeklyGoalOnlyCountsCurrentWeek(t *testing.T) {
	rows := []*types.LessonProgress{
		{TimeSpentSeconds: 1800, UpdatedAt: testDay.Add(-time.Hour)},     // this week
		{TimeSpentSeconds: 1800, UpdatedAt: testDay.AddDate(0, 0, -10)},  // last week
		{TimeSpentSeconds: 1800, UpdatedAt: testDay.Add(48 * time.Hour)}, // future, ignored
	}

	goal := computeWeeklyGoal(nil, rows, testDay)

	if goal.CurrentHours != 0.5 {
		t.Fatalf("CurrentHours = %v, want 0.5", goal.CurrentHours)
	}
	if goal.ProgressPercentage != 25 {
		t.Fatalf("ProgressPercentage = %d, want 25", goal.ProgressPercentage)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midweek",
			now:  time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC), // Wednesday
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday is its own week start",
			now:  time.Date(2025, 3, 10, 0, 0, 1, 0, time.UTC),
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday closes the week",
			now:  time.Date(2025, 3, 16, 23, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weekStart(tt.now); !got.Equal(tt.want) {
				t.Fatalf("weekStart(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
