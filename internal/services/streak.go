package services

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/praxislabs/execemy-backend/internal/types"
)

const defaultWeeklyTargetHours = 2

// Onboarding used to store the weekly commitment inside the free-text bio
// before it became a profile column; older accounts still carry it there.
var weeklyCommitmentRe = regexp.MustCompile(`(?i)weekly commitment:\s*(\d+(?:\.\d+)?)\s*hours?`)

// computeStreaks derives the current and longest completion streaks from the
// distinct calendar days on which anything was completed.
func computeStreaks(rows []*types.LessonProgress, now time.Time) types.Streaks {
	days := make(map[time.Time]bool)
	for _, row := range rows {
		if row == nil || row.CompletedAt == nil {
			continue
		}
		days[dayOf(*row.CompletedAt, now.Location())] = true
	}
	if len(days) == 0 {
		return types.Streaks{}
	}

	// Current streak: consecutive days ending today. Zero when today has no
	// completion.
	current := 0
	for day := dayOf(now, now.Location()); days[day]; day = day.AddDate(0, 0, -1) {
		current++
	}

	sorted := make([]time.Time, 0, len(days))
	for day := range days {
		sorted = append(sorted, day)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest := 1
	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return types.Streaks{CurrentStreak: current, LongestStreak: longest}
}

// computeWeeklyGoal sums study time over the current ISO week (Monday 00:00
// local to now) against the user's target hours.
func computeWeeklyGoal(profile *types.User, rows []*types.LessonProgress, now time.Time) types.WeeklyGoal {
	target := float64(defaultWeeklyTargetHours)
	if profile != nil {
		if profile.WeeklyTargetHours != nil && *profile.WeeklyTargetHours > 0 {
			target = *profile.WeeklyTargetHours
		} else if m := weeklyCommitmentRe.FindStringSubmatch(profile.Bio); m != nil {
			if parsed, err := strconv.ParseFloat(m[1], 64); err == nil && parsed > 0 {
				target = parsed
			}
		}
	}

	start := weekStart(now)
	totalSeconds := 0
	for _, row := range rows {
		if row == nil {
			continue
		}
		if !row.UpdatedAt.Before(start) && !row.UpdatedAt.After(now) {
			totalSeconds += row.TimeSpentSeconds
		}
	}
	currentHours := math.Round(float64(totalSeconds)/3600*10) / 10

	progress := int(math.Round(currentHours / target * 100))
	if progress > 100 {
		progress = 100
	}

	return types.WeeklyGoal{
		TargetHours:        target,
		CurrentHours:       currentHours,
		ProgressPercentage: progress,
	}
}

// weekStart returns Monday 00:00 of now's ISO week, in now's location.
func weekStart(now time.Time) time.Time {
	day := dayOf(now, now.Location())
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the week, it does not start one
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
