package services

import (
	"github.com/praxislabs/execemy-backend/internal/catalog"
	"github.com/praxislabs/execemy-backend/internal/types"
)

// buildRoadmap walks the whole curriculum in canonical order (domain order,
// then module number, then lesson number), classifies every lesson against
// the completed/in-progress sets, and points at the first lesson that is not
// completed. The full walk always runs; the next-lesson pointer is just
// assigned once.
func buildRoadmap(cat *catalog.Catalog, completed, inProgress map[string]bool) types.Roadmap {
	roadmap := types.Roadmap{
		Sections: make([]types.RoadmapSection, 0, len(cat.Domains())),
	}

	domains := cat.Domains()
	for di := range domains {
		d := &domains[di]
		section := types.RoadmapSection{
			DomainID:    d.ID,
			DomainTitle: d.Title,
			Modules:     make([]types.RoadmapModule, 0, len(d.Modules)),
		}
		for mi := range d.Modules {
			m := &d.Modules[mi]
			module := types.RoadmapModule{
				ModuleID:    m.ID,
				ModuleTitle: m.Title,
				Number:      m.Number,
				Lessons:     make([]types.RoadmapLesson, 0, len(m.Lessons)),
			}
			for _, l := range m.Lessons {
				ref := catalog.LessonRef{
					DomainID:      d.ID,
					ModuleID:      m.ID,
					LessonID:      l.ID,
					Title:         l.Title,
					ModuleTitle:   m.Title,
					DomainTitle:   d.Title,
					ModuleNumber:  m.Number,
					LessonNumber:  l.Number,
					ResidencyYear: l.ResidencyYear,
					CreatedAt:     l.CreatedAt,
				}
				status := classifyLesson(ref.Key(), completed, inProgress)
				module.Lessons = append(module.Lessons, types.RoadmapLesson{
					LessonRef: ref,
					Status:    status,
				})

				roadmap.TotalLessons++
				if status == types.ProgressStatusCompleted {
					roadmap.CompletedCount++
				} else if roadmap.NextLesson == nil {
					next := ref
					roadmap.NextLesson = &next
				}
			}
			section.Modules = append(section.Modules, module)
		}
		roadmap.Sections = append(roadmap.Sections, section)
	}

	return roadmap
}

func classifyLesson(key string, completed, inProgress map[string]bool) string {
	if completed[key] {
		return types.ProgressStatusCompleted
	}
	if inProgress[key] {
		return types.ProgressStatusInProgress
	}
	return types.ProgressStatusNotStarted
}
