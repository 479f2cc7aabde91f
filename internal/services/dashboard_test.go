package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/types"
)

type dashboardFixture struct {
	users   *fakeUserRepo
	lessons *fakeLessonProgressRepo
	sims    *fakeSimProgressRepo
	briefs  *fakeDebriefRepo
	scores  *fakeCompetencyScoreRepo
	store   *fakePopularityStore
	svc     DashboardService
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()

	f := &dashboardFixture{
		users:   &fakeUserRepo{user: &types.User{ID: testUser, Email: "resident@execemy.dev", ResidencyYear: 1}},
		lessons: &fakeLessonProgressRepo{},
		sims:    &fakeSimProgressRepo{},
		briefs:  &fakeDebriefRepo{},
		scores:  &fakeCompetencyScoreRepo{},
		store:   &fakePopularityStore{},
	}

	log := logger.NewNop()
	cat := testCatalog(t)
	scoring := NewScoringService(nil, log, cat, f.briefs, f.scores)
	recommendation := NewRecommendationService(nil, log, cat, f.lessons, f.sims, f.scores)
	popularity := NewPopularityService(log, cat, f.store)
	f.svc = NewDashboardService(nil, log, cat, f.users, f.lessons, f.sims, f.briefs, scoring, recommendation, popularity)
	return f
}

func pinClock(t *testing.T, now time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = prev })
}

func TestAssembleEmptyUser(t *testing.T) {
	pinClock(t, testDay)
	f := newDashboardFixture(t)

	data, err := f.svc.Assemble(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	// Every shelf present, none nil.
	if data.AggregateScores == nil || len(data.AggregateScores) != 0 {
		t.Fatalf("AggregateScores = %v, want empty map", data.AggregateScores)
	}
	if data.JumpBackInItems == nil || len(data.JumpBackInItems) != 0 {
		t.Fatalf("JumpBackInItems = %v, want empty slice", data.JumpBackInItems)
	}
	if data.StrengthenCore == nil || len(data.StrengthenCore) != 0 {
		t.Fatalf("StrengthenCore = %v, want empty slice", data.StrengthenCore)
	}
	if data.PracticeSpotlight == nil || len(data.PracticeSpotlight) != 0 {
		t.Fatalf("PracticeSpotlight = %v, want empty slice", data.PracticeSpotlight)
	}
	if data.LatestKeyInsight != nil {
		t.Fatalf("LatestKeyInsight = %q, want nil", *data.LatestKeyInsight)
	}

	// A brand-new user still gets a starting point everywhere.
	if data.Recommendation.Primary == nil || data.Recommendation.Primary.Lesson == nil ||
		data.Recommendation.Primary.Lesson.Key() != "finance/fundamentals/income" {
		t.Fatalf("Recommendation.Primary = %+v, want the first catalog lesson", data.Recommendation.Primary)
	}
	if len(data.ContinueYearPath) == 0 || data.ContinueYearPath[0].Key() != "finance/fundamentals/income" {
		t.Fatalf("ContinueYearPath = %v", data.ContinueYearPath)
	}
	if data.Roadmap.NextLesson == nil || data.Roadmap.NextLesson.Key() != "finance/fundamentals/income" {
		t.Fatalf("Roadmap.NextLesson = %+v", data.Roadmap.NextLesson)
	}
	if data.Roadmap.CompletedCount != 0 || data.Roadmap.TotalLessons != 7 {
		t.Fatalf("Roadmap counts = %d/%d", data.Roadmap.CompletedCount, data.Roadmap.TotalLessons)
	}

	if data.ResidencySummary == nil || data.ResidencySummary.CompletedLessons != 0 {
		t.Fatalf("ResidencySummary = %+v", data.ResidencySummary)
	}
	if data.Streaks.CurrentStreak != 0 || data.Streaks.LongestStreak != 0 {
		t.Fatalf("Streaks = %+v, want zeroes", data.Streaks)
	}
	if data.WeeklyGoal.TargetHours != defaultWeeklyTargetHours || data.WeeklyGoal.CurrentHours != 0 {
		t.Fatalf("WeeklyGoal = %+v", data.WeeklyGoal)
	}

	// Popularity has no counters yet; the store returns nothing, so the
	// shelf is empty rather than an error.
	if data.PopularContent == nil {
		t.Fatal("PopularContent must not be nil")
	}
	if data.NewContent == nil || len(data.NewContent) == 0 {
		t.Fatal("NewContent should surface catalog additions even for a new user")
	}
}

func TestAssembleSingleCompletedLessonToday(t *testing.T) {
	pinClock(t, testDay)
	f := newDashboardFixture(t)

	row := lessonRow("finance/fundamentals/income", types.ProgressStatusCompleted, testDay.Add(-2*time.Hour))
	row.TimeSpentSeconds = 3600
	f.lessons.rows = []*types.LessonProgress{row}

	data, err := f.svc.Assemble(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if data.Streaks.CurrentStreak != 1 || data.Streaks.LongestStreak != 1 {
		t.Fatalf("Streaks = %+v, want 1/1", data.Streaks)
	}
	if data.WeeklyGoal.CurrentHours != 1 {
		t.Fatalf("WeeklyGoal.CurrentHours = %v, want 1", data.WeeklyGoal.CurrentHours)
	}
	if data.WeeklyGoal.ProgressPercentage != 50 {
		t.Fatalf("WeeklyGoal.ProgressPercentage = %d, want 50 of the 2h default", data.WeeklyGoal.ProgressPercentage)
	}
	if data.ResidencySummary == nil || data.ResidencySummary.CompletedLessons != 1 {
		t.Fatalf("ResidencySummary = %+v, want one completed lesson", data.ResidencySummary)
	}
	if data.Roadmap.CompletedCount != 1 {
		t.Fatalf("Roadmap.CompletedCount = %d, want 1", data.Roadmap.CompletedCount)
	}
	if data.Roadmap.NextLesson == nil || data.Roadmap.NextLesson.Key() != "finance/fundamentals/balance" {
		t.Fatalf("Roadmap.NextLesson = %+v", data.Roadmap.NextLesson)
	}
	for _, ref := range data.ContinueYearPath {
		if ref.Key() == "finance/fundamentals/income" {
			t.Fatal("completed lesson still on the continue path")
		}
	}
	// Completing a finance lesson puts finance cases in the spotlight.
	if len(data.PracticeSpotlight) == 0 || data.PracticeSpotlight[0].Case == nil ||
		data.PracticeSpotlight[0].Case.DomainID != "finance" {
		t.Fatalf("PracticeSpotlight = %+v", data.PracticeSpotlight)
	}
}

func TestAssembleIsolatesFailedSources(t *testing.T) {
	pinClock(t, testDay)
	f := newDashboardFixture(t)

	// Two independent sources break: the popularity store and the
	// completed-simulations read.
	f.store.err = errors.New("redis timeout")
	f.sims.completedErr = errors.New("query cancelled")
	f.lessons.rows = []*types.LessonProgress{
		lessonRow("finance/fundamentals/income", types.ProgressStatusCompleted, testDay.Add(-time.Hour)),
		lessonRow("finance/fundamentals/balance", types.ProgressStatusInProgress, testDay.Add(-30*time.Minute)),
	}

	data, err := f.svc.Assemble(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Assemble must not fail on partial source errors: %v", err)
	}

	// The failed slots degrade to empty.
	if len(data.PopularContent) != 0 {
		t.Fatalf("PopularContent = %v, want empty after store failure", data.PopularContent)
	}
	if data.ResidencySummary == nil || data.ResidencySummary.CompletedSimulations != 0 {
		t.Fatalf("ResidencySummary = %+v", data.ResidencySummary)
	}

	// Everything else is untouched.
	if len(data.JumpBackInItems) != 1 || data.JumpBackInItems[0].Lesson == nil ||
		data.JumpBackInItems[0].Lesson.Key() != "finance/fundamentals/balance" {
		t.Fatalf("JumpBackInItems = %+v", data.JumpBackInItems)
	}
	if data.Roadmap.CompletedCount != 1 {
		t.Fatalf("Roadmap.CompletedCount = %d, want 1", data.Roadmap.CompletedCount)
	}
	if data.Streaks.CurrentStreak != 1 {
		t.Fatalf("Streaks = %+v", data.Streaks)
	}
	if data.Recommendation.Primary == nil {
		t.Fatal("Recommendation lost to an unrelated source failure")
	}
	if len(data.ContinueYearPath) == 0 {
		t.Fatal("ContinueYearPath lost to an unrelated source failure")
	}
}

func TestAssembleMissingProfileStillReturnsData(t *testing.T) {
	pinClock(t, testDay)
	f := newDashboardFixture(t)
	f.users.user = nil

	data, err := f.svc.Assemble(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if data.ResidencySummary != nil {
		t.Fatalf("ResidencySummary = %+v, want nil without a profile", data.ResidencySummary)
	}
	if data.WeeklyGoal.TargetHours != defaultWeeklyTargetHours {
		t.Fatalf("WeeklyGoal.TargetHours = %v, want default", data.WeeklyGoal.TargetHours)
	}
	if data.Roadmap.TotalLessons != 7 {
		t.Fatalf("Roadmap.TotalLessons = %d", data.Roadmap.TotalLessons)
	}
}

func TestAssembleRequiresUserID(t *testing.T) {
	f := newDashboardFixture(t)
	if _, err := f.svc.Assemble(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected an error for a nil user id")
	}
}

func TestRoadmapEndpoint(t *testing.T) {
	f := newDashboardFixture(t)
	f.lessons.rows = []*types.LessonProgress{
		lessonRow("finance/fundamentals/income", types.ProgressStatusCompleted, testDay),
	}

	roadmap, err := f.svc.Roadmap(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Roadmap: %v", err)
	}
	if roadmap.CompletedCount != 1 {
		t.Fatalf("CompletedCount = %d, want 1", roadmap.CompletedCount)
	}
	if roadmap.NextLesson == nil || roadmap.NextLesson.Key() != "finance/fundamentals/balance" {
		t.Fatalf("NextLesson = %+v", roadmap.NextLesson)
	}
}

func TestRoadmapEndpointPropagatesErrors(t *testing.T) {
	f := newDashboardFixture(t)
	f.lessons.err = errors.New("db down")

	if _, err := f.svc.Roadmap(context.Background(), testUser); err == nil {
		t.Fatal("expected the standalone roadmap endpoint to surface repo errors")
	}
}
