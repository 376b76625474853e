package knowledge

import "time"

// Status is the mastery verdict an element records.
type Status string

const (
	StatusValidated   Status = "validated"
	StatusInvalidated Status = "invalidated"
)

// Source tells whether the verdict came from the skill's own challenge or
// was propagated through its tube.
type Source string

const (
	SourceDirect   Source = "direct"
	SourceInferred Source = "inferred"
)

// Element is a timestamped fact of mastery of a skill.
type Element struct {
	SkillID      string
	Status       Status
	Source       Source
	AssessmentID int64
	AnswerID     int64
	UserID       int64
	CreatedAt    time.Time
}

// IsValidated reports whether the element validates its skill.
func (e Element) IsValidated() bool {
	return e.Status == StatusValidated
}

// BySkill indexes elements by skill ID. Later entries overwrite earlier ones,
// so callers should pass consolidated evidence.
func BySkill(elements []Element) map[string]Element {
	out := make(map[string]Element, len(elements))
	for _, e := range elements {
		out[e.SkillID] = e
	}
	return out
}
