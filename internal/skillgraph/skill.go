package skillgraph

import (
	"fmt"
	"strconv"
	"strings"
)

// SkillStatus represents the publication status of a skill.
type SkillStatus string

const (
	SkillActive   SkillStatus = "actif"
	SkillArchived SkillStatus = "archive"
)

// Skill is an atomic competency unit, ordered within its tube by difficulty.
type Skill struct {
	ID           string
	Name         string // "@tubeN" form, e.g. "@web3"
	TubeName     string
	Difficulty   int
	CompetenceID string
	Status       SkillStatus
}

// Competence groups tubes under a framework code such as "1.1".
type Competence struct {
	ID       string
	Code     string
	AreaCode string
	Name     string
}

// ParseSkillName splits a "@tubeN" skill name into its tube name and difficulty.
func ParseSkillName(name string) (tube string, difficulty int, err error) {
	if !strings.HasPrefix(name, "@") {
		return "", 0, fmt.Errorf("skill name %q must start with @", name)
	}
	i := len(name)
	for i > 1 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) || i == 1 {
		return "", 0, fmt.Errorf("skill name %q must be of the form @tubeN", name)
	}
	difficulty, err = strconv.Atoi(name[i:])
	if err != nil {
		return "", 0, fmt.Errorf("skill name %q: %w", name, err)
	}
	if difficulty < 1 || difficulty > MaxDifficulty {
		return "", 0, fmt.Errorf("skill name %q: difficulty %d out of range [1, %d]", name, difficulty, MaxDifficulty)
	}
	return name[:i], difficulty, nil
}

// MaxDifficulty is the highest difficulty a skill can carry.
const MaxDifficulty = 8

// NewSkill builds a Skill from its "@tubeN" name.
func NewSkill(id, name, competenceID string) (Skill, error) {
	tube, difficulty, err := ParseSkillName(name)
	if err != nil {
		return Skill{}, err
	}
	return Skill{
		ID:           id,
		Name:         name,
		TubeName:     tube,
		Difficulty:   difficulty,
		CompetenceID: competenceID,
		Status:       SkillActive,
	}, nil
}

// Tube is an ordered progression of skills of increasing difficulty.
type Tube struct {
	Name   string
	Skills []Skill // ascending difficulty
}

// EasierThan returns the skills strictly easier than s, ascending.
func (t Tube) EasierThan(s Skill) []Skill {
	var out []Skill
	for _, sk := range t.Skills {
		if sk.Difficulty < s.Difficulty {
			out = append(out, sk)
		}
	}
	return out
}

// EasierThanOrEqual returns the skills easier than s, s included when it belongs to the tube.
func (t Tube) EasierThanOrEqual(s Skill) []Skill {
	var out []Skill
	for _, sk := range t.Skills {
		if sk.Difficulty <= s.Difficulty {
			out = append(out, sk)
		}
	}
	return out
}

// HarderThan returns the skills strictly harder than s, ascending.
func (t Tube) HarderThan(s Skill) []Skill {
	var out []Skill
	for _, sk := range t.Skills {
		if sk.Difficulty > s.Difficulty {
			out = append(out, sk)
		}
	}
	return out
}

// HarderThanOrEqual returns the skills harder than s, s included when it belongs to the tube.
func (t Tube) HarderThanOrEqual(s Skill) []Skill {
	var out []Skill
	for _, sk := range t.Skills {
		if sk.Difficulty >= s.Difficulty {
			out = append(out, sk)
		}
	}
	return out
}

// HardestSkill returns the hardest skill of the tube, or false when the tube is empty.
func (t Tube) HardestSkill() (Skill, bool) {
	if len(t.Skills) == 0 {
		return Skill{}, false
	}
	return t.Skills[len(t.Skills)-1], true
}
