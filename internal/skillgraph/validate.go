package skillgraph

import (
	"fmt"
	"strings"
)

// validateSkills performs all structural checks on the given reference data.
// Returns a combined error describing all problems found, or nil if valid.
func validateSkills(skills []Skill, competences []Competence) error {
	var errs []string

	idSet := make(map[string]bool, len(skills))
	competenceSet := make(map[string]bool, len(competences))
	for _, c := range competences {
		if competenceSet[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate competence ID: %q", c.ID))
		}
		competenceSet[c.ID] = true
	}

	// Check for duplicate IDs
	for _, s := range skills {
		if idSet[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate skill ID: %q", s.ID))
		}
		idSet[s.ID] = true
	}

	// Check names agree with tube and difficulty
	for _, s := range skills {
		tube, difficulty, err := ParseSkillName(s.Name)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if tube != s.TubeName || difficulty != s.Difficulty {
			errs = append(errs, fmt.Sprintf("skill %q: name %q disagrees with tube %q difficulty %d",
				s.ID, s.Name, s.TubeName, s.Difficulty))
		}
	}

	// Check each tube holds at most one skill per difficulty
	seen := make(map[string]string)
	for _, s := range skills {
		key := fmt.Sprintf("%s#%d", s.TubeName, s.Difficulty)
		if other, ok := seen[key]; ok {
			errs = append(errs, fmt.Sprintf("tube %q has two skills at difficulty %d: %q and %q",
				s.TubeName, s.Difficulty, other, s.ID))
			continue
		}
		seen[key] = s.ID
	}

	// Check for dangling competences
	for _, s := range skills {
		if !competenceSet[s.CompetenceID] {
			errs = append(errs, fmt.Sprintf("skill %q references nonexistent competence %q", s.ID, s.CompetenceID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("skill graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
