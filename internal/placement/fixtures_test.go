package placement

import (
	"testing"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/skillgraph"
)

// testGraph has two competences: rec1 holds tubes web (1..6) and url (1..3),
// rec2 holds tube mail (1..2).
func testGraph(t *testing.T) *skillgraph.Graph {
	t.Helper()
	specs := []struct{ name, competence string }{
		{"@web1", "rec1"}, {"@web2", "rec1"}, {"@web3", "rec1"},
		{"@web4", "rec1"}, {"@web5", "rec1"}, {"@web6", "rec1"},
		{"@url1", "rec1"}, {"@url2", "rec1"}, {"@url3", "rec1"},
		{"@mail1", "rec2"}, {"@mail2", "rec2"},
	}
	var skills []skillgraph.Skill
	for _, sp := range specs {
		s, err := skillgraph.NewSkill(sp.name[1:], sp.name, sp.competence)
		if err != nil {
			t.Fatal(err)
		}
		skills = append(skills, s)
	}
	g := skillgraph.New(skills, []skillgraph.Competence{
		{ID: "rec1", Code: "1.1", AreaCode: "1"},
		{ID: "rec2", Code: "2.1", AreaCode: "2"},
	})
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	return g
}

func challengeFor(skillID string) assessment.Challenge {
	return assessment.Challenge{
		ID:       "ch-" + skillID,
		SkillIDs: []string{skillID},
		Status:   assessment.ChallengeValidated,
	}
}

func challengeMap(g *skillgraph.Graph) map[string]assessment.Challenge {
	out := make(map[string]assessment.Challenge)
	for _, s := range g.AllSkills() {
		c := challengeFor(s.ID)
		out[c.ID] = c
	}
	return out
}

func skillIDs(skills []skillgraph.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = s.ID
	}
	return out
}
