package catalog

import (
	"embed"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed data/curriculum.yaml data/cases.yaml
var dataFS embed.FS

type Lesson struct {
	ID            string    `yaml:"id" json:"id"`
	Title         string    `yaml:"title" json:"title"`
	Number        int       `yaml:"number" json:"number"`
	ResidencyYear int       `yaml:"residency_year" json:"residency_year"`
	CreatedAt     time.Time `yaml:"created_at" json:"created_at"`
}

type Module struct {
	ID      string   `yaml:"id" json:"id"`
	Title   string   `yaml:"title" json:"title"`
	Number  int      `yaml:"number" json:"number"`
	Lessons []Lesson `yaml:"lessons" json:"lessons"`
}

type Domain struct {
	ID            string   `yaml:"id" json:"id"`
	Title         string   `yaml:"title" json:"title"`
	CompetencyKey string   `yaml:"competency" json:"competency"`
	Modules       []Module `yaml:"modules" json:"modules"`
}

type Simulation struct {
	CaseID           string    `yaml:"case_id" json:"case_id"`
	Title            string    `yaml:"title" json:"title"`
	Description      string    `yaml:"description" json:"description"`
	EstimatedMinutes int       `yaml:"estimated_minutes" json:"estimated_minutes"`
	Difficulty       string    `yaml:"difficulty" json:"difficulty"`
	DomainID         string    `yaml:"domain_id" json:"domain_id"`
	CreatedAt        time.Time `yaml:"created_at" json:"created_at"`
}

// LessonRef is the flat, denormalized view of a lesson. Identity is the
// (domain, module, lesson) triple.
type LessonRef struct {
	DomainID      string    `json:"domain_id"`
	ModuleID      string    `json:"module_id"`
	LessonID      string    `json:"lesson_id"`
	Title         string    `json:"title"`
	ModuleTitle   string    `json:"module_title"`
	DomainTitle   string    `json:"domain_title"`
	ModuleNumber  int       `json:"module_number"`
	LessonNumber  int       `json:"lesson_number"`
	ResidencyYear int       `json:"residency_year"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r LessonRef) Key() string {
	return LessonKey(r.DomainID, r.ModuleID, r.LessonID)
}

func LessonKey(domainID, moduleID, lessonID string) string {
	return domainID + "/" + moduleID + "/" + lessonID
}

// Catalog holds the full curriculum and case registry. Immutable after New;
// all accessors are safe for concurrent use.
type Catalog struct {
	domains       []Domain
	simulations   []Simulation
	flat          []LessonRef
	byDomain      map[string]*Domain
	byCompetency  map[string]*Domain
	lessonByKey   map[string]*LessonRef
	simByCaseID   map[string]*Simulation
	simsByDomain  map[string][]Simulation
}

type curriculumFile struct {
	Domains []Domain `yaml:"domains"`
}

type casesFile struct {
	Cases []Simulation `yaml:"cases"`
}

// Load builds the catalog from the embedded data files.
func Load() (*Catalog, error) {
	rawCurriculum, err := dataFS.ReadFile("data/curriculum.yaml")
	if err != nil {
		return nil, fmt.Errorf("read curriculum data: %w", err)
	}
	var cf curriculumFile
	if err := yaml.Unmarshal(rawCurriculum, &cf); err != nil {
		return nil, fmt.Errorf("parse curriculum data: %w", err)
	}

	rawCases, err := dataFS.ReadFile("data/cases.yaml")
	if err != nil {
		return nil, fmt.Errorf("read case registry: %w", err)
	}
	var sf casesFile
	if err := yaml.Unmarshal(rawCases, &sf); err != nil {
		return nil, fmt.Errorf("parse case registry: %w", err)
	}

	return New(cf.Domains, sf.Cases)
}

// New builds a catalog from already-parsed curriculum data. Domains keep
// their given order; modules and lessons are sorted by number, which defines
// the canonical traversal order everywhere else in the service.
func New(domains []Domain, simulations []Simulation) (*Catalog, error) {
	c := &Catalog{
		domains:      domains,
		simulations:  simulations,
		byDomain:     make(map[string]*Domain),
		byCompetency: make(map[string]*Domain),
		lessonByKey:  make(map[string]*LessonRef),
		simByCaseID:  make(map[string]*Simulation),
		simsByDomain: make(map[string][]Simulation),
	}

	for di := range c.domains {
		d := &c.domains[di]
		if d.ID == "" {
			return nil, fmt.Errorf("domain %d has no id", di)
		}
		if _, dup := c.byDomain[d.ID]; dup {
			return nil, fmt.Errorf("duplicate domain id %q", d.ID)
		}
		c.byDomain[d.ID] = d
		if d.CompetencyKey != "" {
			c.byCompetency[d.CompetencyKey] = d
		}
		sort.SliceStable(d.Modules, func(i, j int) bool {
			return d.Modules[i].Number < d.Modules[j].Number
		})
		for mi := range d.Modules {
			m := &d.Modules[mi]
			sort.SliceStable(m.Lessons, func(i, j int) bool {
				return m.Lessons[i].Number < m.Lessons[j].Number
			})
		}
	}

	for di := range c.domains {
		d := &c.domains[di]
		for mi := range d.Modules {
			m := &d.Modules[mi]
			for _, l := range m.Lessons {
				ref := LessonRef{
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
				key := ref.Key()
				if _, dup := c.lessonByKey[key]; dup {
					return nil, fmt.Errorf("duplicate lesson key %q", key)
				}
				c.flat = append(c.flat, ref)
				idx := len(c.flat) - 1
				c.lessonByKey[key] = &c.flat[idx]
			}
		}
	}

	for si := range c.simulations {
		s := &c.simulations[si]
		if s.CaseID == "" {
			return nil, fmt.Errorf("simulation %d has no case id", si)
		}
		if _, dup := c.simByCaseID[s.CaseID]; dup {
			return nil, fmt.Errorf("duplicate case id %q", s.CaseID)
		}
		c.simByCaseID[s.CaseID] = s
		c.simsByDomain[s.DomainID] = append(c.simsByDomain[s.DomainID], *s)
	}

	return c, nil
}

func (c *Catalog) Domains() []Domain {
	return c.domains
}

// AllLessons returns every lesson in canonical order.
func (c *Catalog) AllLessons() []LessonRef {
	return c.flat
}

func (c *Catalog) AllSimulations() []Simulation {
	return c.simulations
}

func (c *Catalog) DomainByID(id string) *Domain {
	return c.byDomain[id]
}

func (c *Catalog) DomainForCompetency(key string) *Domain {
	return c.byCompetency[key]
}

func (c *Catalog) LessonByKey(key string) *LessonRef {
	return c.lessonByKey[key]
}

func (c *Catalog) Lesson(domainID, moduleID, lessonID string) *LessonRef {
	return c.lessonByKey[LessonKey(domainID, moduleID, lessonID)]
}

func (c *Catalog) SimulationByCaseID(caseID string) *Simulation {
	return c.simByCaseID[caseID]
}

func (c *Catalog) SimulationsForDomain(domainID string) []Simulation {
	return c.simsByDomain[domainID]
}

// RecentSimulations returns up to n simulations, newest first.
func (c *Catalog) RecentSimulations(n int) []Simulation {
	out := make([]Simulation, len(c.simulations))
	copy(out, c.simulations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// RecentLessons returns up to n lessons, newest first.
func (c *Catalog) RecentLessons(n int) []LessonRef {
	out := make([]LessonRef, len(c.flat))
	copy(out, c.flat)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// LessonCountForYear counts catalog lessons assigned to a residency year.
func (c *Catalog) LessonCountForYear(year int) int {
	count := 0
	for _, l := range c.flat {
		if l.ResidencyYear == year {
			count++
		}
	}
	return count
}
