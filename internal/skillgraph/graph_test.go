package skillgraph

import (
	"testing"
)

func mustSkill(t *testing.T, id, name, competenceID string) Skill {
	t.Helper()
	s, err := NewSkill(id, name, competenceID)
	if err != nil {
		t.Fatalf("NewSkill(%q): %v", name, err)
	}
	return s
}

func testGraph(t *testing.T) *Graph {
	t.Helper()
	competences := []Competence{
		{ID: "rec1", Code: "1.1", AreaCode: "1", Name: "Mener une recherche"},
		{ID: "rec2", Code: "1.2", AreaCode: "1", Name: "Gérer des données"},
	}
	skills := []Skill{
		mustSkill(t, "web4", "@web4", "rec1"),
		mustSkill(t, "web1", "@web1", "rec1"),
		mustSkill(t, "web2", "@web2", "rec1"),
		mustSkill(t, "web6", "@web6", "rec1"),
		mustSkill(t, "url3", "@url3", "rec1"),
		mustSkill(t, "url5", "@url5", "rec1"),
		mustSkill(t, "file2", "@file2", "rec2"),
	}
	return New(skills, competences)
}

func ids(skills []Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = s.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseSkillName(t *testing.T) {
	tests := []struct {
		name    string
		tube    string
		level   int
		wantErr bool
	}{
		{"@web3", "@web", 3, false},
		{"@url10", "", 0, true},
		{"@r2d2", "@r2d", 2, false},
		{"web3", "", 0, true},
		{"@web", "", 0, true},
		{"@3", "", 0, true},
		{"@web0", "", 0, true},
	}
	for _, tt := range tests {
		tube, level, err := ParseSkillName(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSkillName(%q): expected error, got nil", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSkillName(%q): unexpected error: %v", tt.name, err)
			continue
		}
		if tube != tt.tube || level != tt.level {
			t.Errorf("ParseSkillName(%q) = (%q, %d), want (%q, %d)", tt.name, tube, level, tt.tube, tt.level)
		}
	}
}

func TestGraph_TubeOrderedByDifficulty(t *testing.T) {
	g := testGraph(t)
	tube, ok := g.Tube("@web")
	if !ok {
		t.Fatal("expected tube @web")
	}
	want := []string{"web1", "web2", "web4", "web6"}
	if got := ids(tube.Skills); !equalIDs(got, want) {
		t.Errorf("tube skills = %v, want %v", got, want)
	}
}

func TestTube_EasierThanExcludesPivot(t *testing.T) {
	g := testGraph(t)
	for _, s := range g.AllSkills() {
		tube, _ := g.TubeOf(s.ID)
		easier := tube.EasierThan(s)
		for i, e := range easier {
			if e.ID == s.ID {
				t.Errorf("EasierThan(%q) includes the pivot", s.ID)
			}
			if e.Difficulty >= s.Difficulty {
				t.Errorf("EasierThan(%q) includes %q of difficulty %d", s.ID, e.ID, e.Difficulty)
			}
			if i > 0 && easier[i-1].Difficulty >= e.Difficulty {
				t.Errorf("EasierThan(%q) not ascending", s.ID)
			}
		}
	}
}

func TestTube_HarderThanIsComplement(t *testing.T) {
	g := testGraph(t)
	for _, s := range g.AllSkills() {
		tube, _ := g.TubeOf(s.ID)
		easier := tube.EasierThan(s)
		harder := tube.HarderThan(s)
		if len(easier)+len(harder)+1 != len(tube.Skills) {
			t.Errorf("%q: easier(%d) + harder(%d) + pivot != tube size %d",
				s.ID, len(easier), len(harder), len(tube.Skills))
		}
		for _, h := range harder {
			if h.Difficulty <= s.Difficulty {
				t.Errorf("HarderThan(%q) includes %q", s.ID, h.ID)
			}
		}
	}
}

func TestTube_InclusiveQueries(t *testing.T) {
	g := testGraph(t)
	web4, _ := g.Skill("web4")
	tube, _ := g.TubeOf("web4")

	if got := ids(tube.EasierThanOrEqual(web4)); !equalIDs(got, []string{"web1", "web2", "web4"}) {
		t.Errorf("EasierThanOrEqual = %v", got)
	}
	if got := ids(tube.HarderThanOrEqual(web4)); !equalIDs(got, []string{"web4", "web6"}) {
		t.Errorf("HarderThanOrEqual = %v", got)
	}
}

func TestGraph_NavigatorByID(t *testing.T) {
	g := testGraph(t)
	if got := ids(g.EasierThan("url5")); !equalIDs(got, []string{"url3"}) {
		t.Errorf("EasierThan(url5) = %v", got)
	}
	if got := ids(g.HarderThan("web2")); !equalIDs(got, []string{"web4", "web6"}) {
		t.Errorf("HarderThan(web2) = %v", got)
	}
	if got := g.HarderThan("unknown"); got != nil {
		t.Errorf("HarderThan(unknown) = %v, want nil", got)
	}
}

func TestGraph_SkillNotFound(t *testing.T) {
	g := testGraph(t)
	if _, err := g.Skill("nonexistent"); err == nil {
		t.Fatal("expected error for nonexistent skill, got nil")
	}
}

func TestGraph_SkillsOfCompetence(t *testing.T) {
	g := testGraph(t)
	if got := len(g.SkillsOfCompetence("rec1")); got != 6 {
		t.Errorf("rec1 skills = %d, want 6", got)
	}
	if got := len(g.SkillsOfCompetence("rec2")); got != 1 {
		t.Errorf("rec2 skills = %d, want 1", got)
	}
	cs := g.Competences()
	if len(cs) != 2 || cs[0].Code != "1.1" {
		t.Errorf("competences not ordered by code: %+v", cs)
	}
}

func TestTube_HardestSkill(t *testing.T) {
	g := testGraph(t)
	tube, _ := g.Tube("@url")
	hardest, ok := tube.HardestSkill()
	if !ok || hardest.ID != "url5" {
		t.Errorf("HardestSkill = %v %v, want url5", hardest.ID, ok)
	}
	if _, ok := (Tube{}).HardestSkill(); ok {
		t.Error("empty tube should have no hardest skill")
	}
}
