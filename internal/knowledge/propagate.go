package knowledge

import (
	"time"

	"github.com/abhisek/certify/internal/skillgraph"
)

// Evidence describes one corrected answer on a measured skill.
type Evidence struct {
	SkillID      string
	Correct      bool
	AssessmentID int64
	AnswerID     int64
	UserID       int64
	At           time.Time
}

// FromEvidence derives the elements a corrected answer produces. A correct
// answer validates the skill and every easier skill of its tube; an incorrect
// one invalidates the skill and every harder one. Skills present in known are
// skipped. Unknown skills produce nothing.
func FromEvidence(ev Evidence, g *skillgraph.Graph, known map[string]Element) []Element {
	skill, err := g.Skill(ev.SkillID)
	if err != nil {
		return nil
	}
	tube, _ := g.TubeOf(skill.ID)

	status := StatusInvalidated
	inferred := tube.HarderThan(skill)
	if ev.Correct {
		status = StatusValidated
		inferred = tube.EasierThan(skill)
	}

	var out []Element
	emit := func(skillID string, source Source) {
		if _, ok := known[skillID]; ok {
			return
		}
		out = append(out, Element{
			SkillID:      skillID,
			Status:       status,
			Source:       source,
			AssessmentID: ev.AssessmentID,
			AnswerID:     ev.AnswerID,
			UserID:       ev.UserID,
			CreatedAt:    ev.At,
		})
	}

	emit(skill.ID, SourceDirect)
	for _, s := range inferred {
		emit(s.ID, SourceInferred)
	}
	return out
}
