package types

import (
	"time"

	"github.com/praxislabs/execemy-backend/internal/catalog"
)

// Dashboard DTOs. Ephemeral, recomputed on every call, never persisted.

const (
	ContentTypeLesson = "lesson"
	ContentTypeCase   = "case"
)

// ContentPointer is a tagged union over the two content kinds. Exactly one
// of Lesson/Case is set, matching Type.
type ContentPointer struct {
	Type   string              `json:"type"`
	Lesson *catalog.LessonRef  `json:"lesson,omitempty"`
	Case   *catalog.Simulation `json:"case,omitempty"`
	Reason string              `json:"reason,omitempty"`
}

func LessonPointer(ref catalog.LessonRef) ContentPointer {
	return ContentPointer{Type: ContentTypeLesson, Lesson: &ref}
}

func CasePointer(sim catalog.Simulation) ContentPointer {
	return ContentPointer{Type: ContentTypeCase, Case: &sim}
}

// DedupeKey identifies a pointer across both kinds for de-duplication.
func (p ContentPointer) DedupeKey() string {
	if p.Type == ContentTypeCase && p.Case != nil {
		return "case:" + p.Case.CaseID
	}
	if p.Lesson != nil {
		return "lesson:" + p.Lesson.Key()
	}
	return ""
}

type Recommendation struct {
	Primary    *ContentPointer  `json:"primary"`
	Alternates []ContentPointer `json:"alternates"`
}

type JumpBackInItem struct {
	ContentPointer
	ProgressPercentage int       `json:"progress_percentage"`
	HasReadPosition    bool      `json:"has_read_position"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type StrengthenCoreShelf struct {
	CompetencyKey      string               `json:"competency_key"`
	Score              float64              `json:"score"`
	DomainID           string               `json:"domain_id"`
	DomainTitle        string               `json:"domain_title"`
	Lessons            []catalog.LessonRef  `json:"lessons"`
	RelatedSimulations []catalog.Simulation `json:"related_simulations"`
}

type SpotlightItem struct {
	ContentPointer
	Tag string `json:"tag"`
}

type ResidencySummary struct {
	Year                 int `json:"year"`
	CompletedLessons     int `json:"completed_lessons"`
	TotalLessons         int `json:"total_lessons"`
	CompletedSimulations int `json:"completed_simulations"`
}

type RoadmapLesson struct {
	catalog.LessonRef
	Status string `json:"status"`
}

type RoadmapModule struct {
	ModuleID    string          `json:"module_id"`
	ModuleTitle string          `json:"module_title"`
	Number      int             `json:"number"`
	Lessons     []RoadmapLesson `json:"lessons"`
}

type RoadmapSection struct {
	DomainID    string          `json:"domain_id"`
	DomainTitle string          `json:"domain_title"`
	Modules     []RoadmapModule `json:"modules"`
}

type Roadmap struct {
	Sections       []RoadmapSection   `json:"sections"`
	NextLesson     *catalog.LessonRef `json:"next_lesson"`
	TotalLessons   int                `json:"total_lessons"`
	CompletedCount int                `json:"completed_count"`
}

type WeeklyGoal struct {
	TargetHours        float64 `json:"target_hours"`
	CurrentHours       float64 `json:"current_hours"`
	ProgressPercentage int     `json:"progress_percentage"`
}

type Streaks struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

type DashboardData struct {
	ResidencySummary  *ResidencySummary     `json:"residency_summary"`
	AggregateScores   map[string]float64    `json:"aggregate_scores"`
	Recommendation    Recommendation        `json:"recommendation"`
	JumpBackInItems   []JumpBackInItem      `json:"jump_back_in_items"`
	StrengthenCore    []StrengthenCoreShelf `json:"strengthen_core_shelves"`
	PracticeSpotlight []SpotlightItem       `json:"practice_spotlight"`
	ContinueYearPath  []catalog.LessonRef   `json:"continue_year_path"`
	NewContent        []ContentPointer      `json:"new_content"`
	PopularContent    []ContentPointer      `json:"popular_content"`
	Roadmap           Roadmap               `json:"roadmap"`
	WeeklyGoal        WeeklyGoal            `json:"weekly_goal"`
	Streaks           Streaks               `json:"streaks"`
	LatestKeyInsight  *string               `json:"latest_key_insight"`
}
