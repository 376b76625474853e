package skillgraph

import (
	"fmt"
	"slices"
	"sort"
)

// Graph holds skills, tubes and competences with precomputed indices.
// A Graph is immutable once built and safe for concurrent reads.
type Graph struct {
	skills       []Skill
	byID         map[string]*Skill
	tubes        map[string]Tube
	competences  []Competence
	competenceBy map[string]Competence
	byCompetence map[string][]Skill
}

// New builds a Graph from explicit reference data.
// Skills are ordered by tube name then difficulty; competences by code.
func New(skills []Skill, competences []Competence) *Graph {
	gr := &Graph{
		skills:       slices.Clone(skills),
		byID:         make(map[string]*Skill, len(skills)),
		tubes:        make(map[string]Tube),
		competenceBy: make(map[string]Competence, len(competences)),
		byCompetence: make(map[string][]Skill),
	}

	sort.SliceStable(gr.skills, func(i, j int) bool {
		if gr.skills[i].TubeName != gr.skills[j].TubeName {
			return gr.skills[i].TubeName < gr.skills[j].TubeName
		}
		return gr.skills[i].Difficulty < gr.skills[j].Difficulty
	})

	for i := range gr.skills {
		s := &gr.skills[i]
		gr.byID[s.ID] = s

		t := gr.tubes[s.TubeName]
		t.Name = s.TubeName
		t.Skills = append(t.Skills, *s)
		gr.tubes[s.TubeName] = t

		gr.byCompetence[s.CompetenceID] = append(gr.byCompetence[s.CompetenceID], *s)
	}

	gr.competences = slices.Clone(competences)
	sort.SliceStable(gr.competences, func(i, j int) bool {
		return gr.competences[i].Code < gr.competences[j].Code
	})
	for _, c := range gr.competences {
		gr.competenceBy[c.ID] = c
	}

	return gr
}

// Skill returns a skill by ID, or error if not found.
func (g *Graph) Skill(id string) (Skill, error) {
	s, ok := g.byID[id]
	if !ok {
		return Skill{}, fmt.Errorf("skill not found: %q", id)
	}
	return *s, nil
}

// HasSkill reports whether the graph knows the skill ID.
func (g *Graph) HasSkill(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// AllSkills returns all skills ordered by tube then difficulty.
func (g *Graph) AllSkills() []Skill {
	return slices.Clone(g.skills)
}

// Tube returns the tube with the given name.
func (g *Graph) Tube(name string) (Tube, bool) {
	t, ok := g.tubes[name]
	if !ok {
		return Tube{}, false
	}
	return Tube{Name: t.Name, Skills: slices.Clone(t.Skills)}, true
}

// TubeOf returns the tube the skill belongs to.
func (g *Graph) TubeOf(skillID string) (Tube, bool) {
	s, ok := g.byID[skillID]
	if !ok {
		return Tube{}, false
	}
	return g.Tube(s.TubeName)
}

// Competence returns a competence by ID.
func (g *Graph) Competence(id string) (Competence, bool) {
	c, ok := g.competenceBy[id]
	return c, ok
}

// Competences returns all competences ordered by code.
func (g *Graph) Competences() []Competence {
	return slices.Clone(g.competences)
}

// SkillsOfCompetence returns the skills of a competence ordered by tube then difficulty.
func (g *Graph) SkillsOfCompetence(competenceID string) []Skill {
	return slices.Clone(g.byCompetence[competenceID])
}

// EasierThan returns the skills of id's tube strictly easier than it.
func (g *Graph) EasierThan(id string) []Skill {
	s, ok := g.byID[id]
	if !ok {
		return nil
	}
	return g.tubes[s.TubeName].EasierThan(*s)
}

// HarderThan returns the skills of id's tube strictly harder than it.
func (g *Graph) HarderThan(id string) []Skill {
	s, ok := g.byID[id]
	if !ok {
		return nil
	}
	return g.tubes[s.TubeName].HarderThan(*s)
}

// Validate checks the graph for structural issues.
func (g *Graph) Validate() error {
	return validateSkills(g.skills, g.competences)
}
