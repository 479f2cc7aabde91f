package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/catalog"
	"github.com/praxislabs/execemy-backend/internal/types"
)

var (
	testDay  = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC) // a Wednesday
	testUser = uuid.MustParse("7b9d3f6a-1c2e-4d5f-8a9b-0c1d2e3f4a5b")

	errDown = errors.New("backing store down")
)

// testCatalog is a small two-domain curriculum: finance has two modules of
// three and two lessons, operations one module of two lessons. Lesson and
// case numbers arrive shuffled so tests also cover canonical sorting.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	domains := []catalog.Domain{
		{
			ID:            "finance",
			Title:         "Finance",
			CompetencyKey: "financialAcumen",
			Modules: []catalog.Module{
				{
					ID:     "fundamentals",
					Title:  "Fundamentals",
					Number: 1,
					Lessons: []catalog.Lesson{
						{ID: "cash-flow", Title: "Cash Flow", Number: 3, ResidencyYear: 1, CreatedAt: testDay.AddDate(0, -3, 0)},
						{ID: "income", Title: "Income Statements", Number: 1, ResidencyYear: 1, CreatedAt: testDay.AddDate(0, -5, 0)},
						{ID: "balance", Title: "Balance Sheets", Number: 2, ResidencyYear: 1, CreatedAt: testDay.AddDate(0, -4, 0)},
					},
				},
				{
					ID:     "valuation",
					Title:  "Valuation",
					Number: 2,
					Lessons: []catalog.Lesson{
						{ID: "dcf", Title: "Discounted Cash Flow", Number: 1, ResidencyYear: 2, CreatedAt: testDay.AddDate(0, -2, 0)},
						{ID: "comps", Title: "Comparables", Number: 2, ResidencyYear: 2, CreatedAt: testDay.AddDate(0, -1, 0)},
					},
				},
			},
		},
		{
			ID:            "operations",
			Title:         "Operations",
			CompetencyKey: "operationalExcellence",
			Modules: []catalog.Module{
				{
					ID:     "process",
					Title:  "Process Design",
					Number: 1,
					Lessons: []catalog.Lesson{
						{ID: "bottlenecks", Title: "Bottlenecks", Number: 2, ResidencyYear: 1, CreatedAt: testDay.AddDate(0, 0, -20)},
						{ID: "mapping", Title: "Process Mapping", Number: 1, ResidencyYear: 1, CreatedAt: testDay.AddDate(0, 0, -40)},
					},
				},
			},
		},
	}
	sims := []catalog.Simulation{
		{CaseID: "turnaround-701", Title: "The Turnaround", DomainID: "finance", Difficulty: "hard", EstimatedMinutes: 45, CreatedAt: testDay.AddDate(0, 0, -10)},
		{CaseID: "budget-cut-702", Title: "The Budget Cut", DomainID: "finance", Difficulty: "medium", EstimatedMinutes: 30, CreatedAt: testDay.AddDate(0, 0, -3)},
		{CaseID: "line-down-801", Title: "Line Down", DomainID: "operations", Difficulty: "medium", EstimatedMinutes: 35, CreatedAt: testDay.AddDate(0, 0, -5)},
	}

	cat, err := catalog.New(domains, sims)
	if err != nil {
		t.Fatalf("build test catalog: %v", err)
	}
	return cat
}

// financeLessonKeys is the canonical finance traversal of testCatalog.
var financeLessonKeys = []string{
	"finance/fundamentals/income",
	"finance/fundamentals/balance",
	"finance/fundamentals/cash-flow",
	"finance/valuation/dcf",
	"finance/valuation/comps",
}

func lessonRow(key string, status string, updatedAt time.Time) *types.LessonProgress {
	ref := splitKey(key)
	row := &types.LessonProgress{
		ID:        uuid.New(),
		UserID:    testUser,
		DomainID:  ref[0],
		ModuleID:  ref[1],
		LessonID:  ref[2],
		Status:    status,
		UpdatedAt: updatedAt,
	}
	if status == types.ProgressStatusCompleted {
		row.ProgressPercentage = 100
		completedAt := updatedAt
		row.CompletedAt = &completedAt
	}
	return row
}

func splitKey(key string) [3]string {
	var out [3]string
	idx := 0
	start := 0
	for i := 0; i < len(key) && idx < 2; i++ {
		if key[i] == '/' {
			out[idx] = key[start:i]
			start = i + 1
			idx++
		}
	}
	out[2] = key[start:]
	return out
}

// Fake repos. Each returns its configured rows or error; tx and ctx are
// ignored.

type fakeUserRepo struct {
	user *types.User
	err  error
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.User) ([]*types.User, error) {
	return rows, f.err
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil {
		return nil, nil
	}
	return []*types.User{f.user}, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	return f.user, f.err
}

func (f *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, row *types.User) error {
	return f.err
}

type fakeLessonProgressRepo struct {
	rows       []*types.LessonProgress
	err        error
	upserted   []*types.LessonProgress
	recentErr  error
	byLesson   *types.LessonProgress
	byLessonOK bool
}

func (f *fakeLessonProgressRepo) filter(status string) []*types.LessonProgress {
	out := make([]*types.LessonProgress, 0, len(f.rows))
	for _, row := range f.rows {
		if row.Status == status {
			out = append(out, row)
		}
	}
	return out
}

func (f *fakeLessonProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LessonProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeLessonProgressRepo) GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID uuid.UUID, domainID, moduleID, lessonID string) (*types.LessonProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.byLessonOK {
		return f.byLesson, nil
	}
	for _, row := range f.rows {
		if row.DomainID == domainID && row.ModuleID == moduleID && row.LessonID == lessonID {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeLessonProgressRepo) GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LessonProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(types.ProgressStatusCompleted), nil
}

func (f *fakeLessonProgressRepo) GetInProgressByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LessonProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(types.ProgressStatusInProgress), nil
}

func (f *fakeLessonProgressRepo) GetRecentCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.LessonProgress, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if f.err != nil {
		return nil, f.err
	}
	out := f.filter(types.ProgressStatusCompleted)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLessonProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.LessonProgress) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, row)
	return nil
}

type fakeSimProgressRepo struct {
	rows         []*types.SimulationProgress
	err          error
	completedErr error
	upserted     []*types.SimulationProgress
}

func (f *fakeSimProgressRepo) filter(status string) []*types.SimulationProgress {
	out := make([]*types.SimulationProgress, 0, len(f.rows))
	for _, row := range f.rows {
		if row.Status == status {
			out = append(out, row)
		}
	}
	return out
}

func (f *fakeSimProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SimulationProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeSimProgressRepo) GetByUserAndCase(ctx context.Context, tx *gorm.DB, userID uuid.UUID, caseID string) (*types.SimulationProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, row := range f.rows {
		if row.CaseID == caseID {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeSimProgressRepo) GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SimulationProgress, error) {
	if f.completedErr != nil {
		return nil, f.completedErr
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(types.ProgressStatusCompleted), nil
}

func (f *fakeSimProgressRepo) GetInProgressByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SimulationProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(types.ProgressStatusInProgress), nil
}

func (f *fakeSimProgressRepo) GetRecentCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.SimulationProgress, error) {
	return f.GetCompletedByUserID(ctx, tx, userID)
}

func (f *fakeSimProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.SimulationProgress) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, row)
	return nil
}

type fakeDebriefRepo struct {
	rows    []*types.Debrief
	err     error
	created []*types.Debrief
}

func (f *fakeDebriefRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Debrief) ([]*types.Debrief, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, rows...)
	return rows, nil
}

func (f *fakeDebriefRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Debrief, error) {
	return f.rows, f.err
}

func (f *fakeDebriefRepo) GetLatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Debrief, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rows) == 0 {
		return nil, nil
	}
	return f.rows[0], nil
}

type fakeCompetencyScoreRepo struct {
	rows []*types.CompetencyScore
	err  error
}

func (f *fakeCompetencyScoreRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CompetencyScore, error) {
	return f.rows, f.err
}

func (f *fakeCompetencyScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.CompetencyScore) error {
	if f.err != nil {
		return f.err
	}
	for i, existing := range f.rows {
		if existing.CompetencyKey == row.CompetencyKey {
			f.rows[i] = row
			return nil
		}
	}
	f.rows = append(f.rows, row)
	return nil
}

// fakePopularityStore stands in for the Redis client.
type fakePopularityStore struct {
	bumps map[string]int
	top   map[string][]string
	err   error
}

func (f *fakePopularityStore) Bump(ctx context.Context, kind, member string) error {
	if f.err != nil {
		return f.err
	}
	if f.bumps == nil {
		f.bumps = make(map[string]int)
	}
	f.bumps[kind+":"+member]++
	return nil
}

func (f *fakePopularityStore) Top(ctx context.Context, kind string, n int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.top[kind]
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakePopularityStore) Close() error { return nil }
