package assessment

// ChallengeStatus is the publication status of a challenge.
type ChallengeStatus string

const (
	ChallengeValidated ChallengeStatus = "validé"
	ChallengeArchived  ChallengeStatus = "archivé"
	ChallengeRetired   ChallengeStatus = "périmé"
)

// Challenge is an item measuring one or more skills. Discriminant and
// Difficulty are the item parameters used by flash estimation.
type Challenge struct {
	ID           string
	SkillIDs     []string
	Discriminant float64
	Difficulty   float64
	Status       ChallengeStatus
	Timed        bool
}

// SkillID returns the skill the challenge measures, or "" when it has none.
func (c Challenge) SkillID() string {
	if len(c.SkillIDs) == 0 {
		return ""
	}
	return c.SkillIDs[0]
}

// Usable reports whether the challenge can still be administered.
func (c Challenge) Usable() bool {
	return c.Status != ChallengeRetired
}

// ChallengesByID indexes challenges by ID.
func ChallengesByID(challenges []Challenge) map[string]Challenge {
	out := make(map[string]Challenge, len(challenges))
	for _, c := range challenges {
		out[c.ID] = c
	}
	return out
}
