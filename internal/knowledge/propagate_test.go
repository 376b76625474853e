package knowledge

import (
	"testing"

	"github.com/abhisek/certify/internal/skillgraph"
)

func testGraph(t *testing.T) *skillgraph.Graph {
	t.Helper()
	var skills []skillgraph.Skill
	for _, name := range []string{"@web1", "@web2", "@web3", "@web5"} {
		s, err := skillgraph.NewSkill(name[1:], name, "rec1")
		if err != nil {
			t.Fatal(err)
		}
		skills = append(skills, s)
	}
	return skillgraph.New(skills, []skillgraph.Competence{{ID: "rec1", Code: "1.1"}})
}

func TestFromEvidence_CorrectValidatesEasier(t *testing.T) {
	g := testGraph(t)
	got := FromEvidence(Evidence{SkillID: "web3", Correct: true, AssessmentID: 9, At: at(0)}, g, nil)
	if len(got) != 3 {
		t.Fatalf("got %d elements, want 3: %+v", len(got), got)
	}
	if got[0].SkillID != "web3" || got[0].Source != SourceDirect {
		t.Errorf("first element = %+v, want direct web3", got[0])
	}
	for _, e := range got {
		if e.Status != StatusValidated {
			t.Errorf("%s status = %s, want validated", e.SkillID, e.Status)
		}
		if e.AssessmentID != 9 {
			t.Errorf("%s assessment = %d, want 9", e.SkillID, e.AssessmentID)
		}
	}
	if got[1].Source != SourceInferred || got[2].Source != SourceInferred {
		t.Errorf("propagated elements should be inferred: %+v", got[1:])
	}
}

func TestFromEvidence_IncorrectInvalidatesHarder(t *testing.T) {
	g := testGraph(t)
	got := FromEvidence(Evidence{SkillID: "web2", Correct: false, At: at(0)}, g, nil)
	want := []string{"web2", "web3", "web5"}
	if len(got) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.SkillID != want[i] || e.Status != StatusInvalidated {
			t.Errorf("element %d = %+v, want invalidated %s", i, e, want[i])
		}
	}
}

func TestFromEvidence_SkipsKnownSkills(t *testing.T) {
	g := testGraph(t)
	known := map[string]Element{
		"web1": {SkillID: "web1", Status: StatusValidated},
	}
	got := FromEvidence(Evidence{SkillID: "web3", Correct: true, At: at(0)}, g, known)
	for _, e := range got {
		if e.SkillID == "web1" {
			t.Errorf("known skill web1 was re-emitted")
		}
	}
	if len(got) != 2 {
		t.Errorf("got %d elements, want 2", len(got))
	}
}

func TestFromEvidence_UnknownSkill(t *testing.T) {
	g := testGraph(t)
	if got := FromEvidence(Evidence{SkillID: "nope", Correct: true}, g, nil); got != nil {
		t.Errorf("unknown skill produced %v", got)
	}
}
