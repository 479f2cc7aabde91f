package services

import (
	"sort"
	"strings"
	"time"

	"github.com/praxislabs/execemy-backend/internal/catalog"
	"github.com/praxislabs/execemy-backend/internal/types"
)

const (
	jumpBackInCap = 5

	strengthenCoreShelfCap      = 2
	strengthenCoreLessonCap     = 8
	strengthenCoreFoundational  = 3
	strengthenCoreSimulationCap = 3

	spotlightCap              = 6
	spotlightRecentLessons    = 10
	spotlightSimsPerDomain    = 2
	spotlightLessonsPerDomain = 3

	continueYearPathCap = 6
	newContentCap       = 7

	popularLessonSlots = 8
	popularMergeCap    = 10
	popularContentCap  = 8
)

// deriveResidencySummary counts the user's completed lessons among the
// catalog lessons of their active residency year.
func deriveResidencySummary(cat *catalog.Catalog, profile *types.User, completed map[string]bool, completedSimulations int) *types.ResidencySummary {
	if profile == nil || profile.ResidencyYear < 1 {
		return nil
	}

	total := 0
	done := 0
	for _, ref := range cat.AllLessons() {
		if ref.ResidencyYear != profile.ResidencyYear {
			continue
		}
		total++
		if completed[ref.Key()] {
			done++
		}
	}

	return &types.ResidencySummary{
		Year:                 profile.ResidencyYear,
		CompletedLessons:     done,
		TotalLessons:         total,
		CompletedSimulations: completedSimulations,
	}
}

// deriveJumpBackIn unions in-progress lessons and simulations. Items with a
// saved read position come first; within each group, most recently updated
// wins.
func deriveJumpBackIn(cat *catalog.Catalog, lessons []*types.LessonProgress, sims []*types.SimulationProgress) []types.JumpBackInItem {
	items := make([]types.JumpBackInItem, 0, len(lessons)+len(sims))

	for _, row := range lessons {
		if row == nil {
			continue
		}
		ref := cat.LessonByKey(row.LessonKey())
		if ref == nil {
			continue
		}
		items = append(items, types.JumpBackInItem{
			ContentPointer:     types.LessonPointer(*ref),
			ProgressPercentage: row.ProgressPercentage,
			HasReadPosition:    len(row.LastReadPosition) > 0,
			UpdatedAt:          row.UpdatedAt,
		})
	}
	for _, row := range sims {
		if row == nil {
			continue
		}
		sim := cat.SimulationByCaseID(row.CaseID)
		if sim == nil {
			continue
		}
		items = append(items, types.JumpBackInItem{
			ContentPointer:     types.CasePointer(*sim),
			ProgressPercentage: row.ProgressPercentage,
			UpdatedAt:          row.UpdatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].HasReadPosition != items[j].HasReadPosition {
			return items[i].HasReadPosition
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})

	if len(items) > jumpBackInCap {
		items = items[:jumpBackInCap]
	}
	return items
}

// deriveStrengthenCore builds remediation shelves for the one or two lowest
// nonzero competency scores. Foundational lessons (first module, first
// three uncompleted) lead; the rest of the domain fills the remaining slots
// in canonical order.
func deriveStrengthenCore(cat *catalog.Catalog, scores map[string]float64, completed map[string]bool) []types.StrengthenCoreShelf {
	type weak struct {
		key   string
		score float64
	}
	weakest := make([]weak, 0, len(scores))
	for key, score := range scores {
		if score > 0 {
			weakest = append(weakest, weak{key: key, score: score})
		}
	}
	sort.Slice(weakest, func(i, j int) bool {
		if weakest[i].score != weakest[j].score {
			return weakest[i].score < weakest[j].score
		}
		return weakest[i].key < weakest[j].key
	})
	if len(weakest) > strengthenCoreShelfCap {
		weakest = weakest[:strengthenCoreShelfCap]
	}

	shelves := make([]types.StrengthenCoreShelf, 0, len(weakest))
	for _, w := range weakest {
		domain := cat.DomainForCompetency(w.key)
		if domain == nil {
			continue
		}

		uncompleted := make([]catalog.LessonRef, 0, strengthenCoreLessonCap)
		seen := make(map[string]bool)

		// Foundational slots: the first module's first uncompleted lessons.
		if len(domain.Modules) > 0 {
			first := domain.Modules[0]
			for _, l := range first.Lessons {
				if len(uncompleted) >= strengthenCoreFoundational {
					break
				}
				ref := cat.Lesson(domain.ID, first.ID, l.ID)
				if ref == nil || completed[ref.Key()] {
					continue
				}
				uncompleted = append(uncompleted, *ref)
				seen[ref.Key()] = true
			}
		}

		// Fill with the rest of the domain in (module number, lesson number)
		// order.
		for _, ref := range cat.AllLessons() {
			if len(uncompleted) >= strengthenCoreLessonCap {
				break
			}
			if ref.DomainID != domain.ID || completed[ref.Key()] || seen[ref.Key()] {
				continue
			}
			uncompleted = append(uncompleted, ref)
			seen[ref.Key()] = true
		}

		related := cat.SimulationsForDomain(domain.ID)
		if len(related) > strengthenCoreSimulationCap {
			related = related[:strengthenCoreSimulationCap]
		}
		relatedCopy := make([]catalog.Simulation, len(related))
		copy(relatedCopy, related)

		shelves = append(shelves, types.StrengthenCoreShelf{
			CompetencyKey:      w.key,
			Score:              w.score,
			DomainID:           domain.ID,
			DomainTitle:        domain.Title,
			Lessons:            uncompleted,
			RelatedSimulations: relatedCopy,
		})
	}
	return shelves
}

// derivePracticeSpotlight surfaces simulations for the domains the user has
// recently finished lessons in, backfilled with further lessons from the
// same domains when simulations run short.
func derivePracticeSpotlight(cat *catalog.Catalog, recentCompleted []*types.LessonProgress, completed map[string]bool) []types.SpotlightItem {
	if len(recentCompleted) > spotlightRecentLessons {
		recentCompleted = recentCompleted[:spotlightRecentLessons]
	}

	domainOrder := make([]string, 0, len(recentCompleted))
	seenDomain := make(map[string]bool)
	for _, row := range recentCompleted {
		if row == nil || seenDomain[row.DomainID] {
			continue
		}
		seenDomain[row.DomainID] = true
		domainOrder = append(domainOrder, row.DomainID)
	}

	items := make([]types.SpotlightItem, 0, spotlightCap)
	seen := make(map[string]bool)

	for _, domainID := range domainOrder {
		count := 0
		for _, sim := range cat.SimulationsForDomain(domainID) {
			if len(items) >= spotlightCap || count >= spotlightSimsPerDomain {
				break
			}
			pointer := types.CasePointer(sim)
			if seen[pointer.DedupeKey()] {
				continue
			}
			seen[pointer.DedupeKey()] = true
			items = append(items, types.SpotlightItem{
				ContentPointer: pointer,
				Tag:            "Apply what you've learned",
			})
			count++
		}
	}

	if len(items) < spotlightCap {
		for _, domainID := range domainOrder {
			count := 0
			for _, ref := range cat.AllLessons() {
				if len(items) >= spotlightCap || count >= spotlightLessonsPerDomain {
					break
				}
				if ref.DomainID != domainID || completed[ref.Key()] {
					continue
				}
				pointer := types.LessonPointer(ref)
				if seen[pointer.DedupeKey()] {
					continue
				}
				seen[pointer.DedupeKey()] = true
				items = append(items, types.SpotlightItem{
					ContentPointer: pointer,
					Tag:            "Strengthen your understanding",
				})
				count++
			}
			if len(items) >= spotlightCap {
				break
			}
		}
	}

	return items
}

// deriveContinueYearPath is the plain catalog-order path: the first
// uncompleted lessons, no personalization.
func deriveContinueYearPath(cat *catalog.Catalog, completed map[string]bool) []catalog.LessonRef {
	out := make([]catalog.LessonRef, 0, continueYearPathCap)
	for _, ref := range cat.AllLessons() {
		if len(out) >= continueYearPathCap {
			break
		}
		if completed[ref.Key()] {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// deriveNewContent merges the newest cases and lessons by creation time.
func deriveNewContent(newestCases []catalog.Simulation, newestLessons []catalog.LessonRef) []types.ContentPointer {
	out := make([]types.ContentPointer, 0, len(newestCases)+len(newestLessons))
	for _, sim := range newestCases {
		out = append(out, types.CasePointer(sim))
	}
	for _, ref := range newestLessons {
		out = append(out, types.LessonPointer(ref))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return contentCreatedAt(out[i]).After(contentCreatedAt(out[j]))
	})

	if len(out) > newContentCap {
		out = out[:newContentCap]
	}
	return out
}

// derivePopularContent fills lesson slots first, tops up with simulations
// while the merged list stays under ten, then caps at eight.
func derivePopularContent(popularLessons []catalog.LessonRef, popularSimulations []catalog.Simulation) []types.ContentPointer {
	out := make([]types.ContentPointer, 0, popularMergeCap)
	for _, ref := range popularLessons {
		if len(out) >= popularLessonSlots {
			break
		}
		out = append(out, types.LessonPointer(ref))
	}
	for _, sim := range popularSimulations {
		if len(out) >= popularMergeCap {
			break
		}
		out = append(out, types.CasePointer(sim))
	}
	if len(out) > popularContentCap {
		out = out[:popularContentCap]
	}
	return out
}

// deriveLatestInsight extracts the first sentence of the newest debrief.
func deriveLatestInsight(latest *types.Debrief) *string {
	if latest == nil {
		return nil
	}
	summary := strings.TrimSpace(latest.Summary)
	if summary == "" {
		return nil
	}
	if idx := strings.Index(summary, "."); idx >= 0 {
		summary = strings.TrimSpace(summary[:idx])
	}
	if summary == "" {
		return nil
	}
	return &summary
}

func contentCreatedAt(p types.ContentPointer) time.Time {
	if p.Case != nil {
		return p.Case.CreatedAt
	}
	if p.Lesson != nil {
		return p.Lesson.CreatedAt
	}
	return time.Time{}
}
