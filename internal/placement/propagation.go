// Package placement implements the knowledge-element based assessment path:
// skill propagation through tubes, per-skill scoring and smart placements.
package placement

import (
	"sort"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/skillgraph"
)

// Propagate derives validated and failed skills from answers. A correct
// answer validates its skill and every easier skill of the tube; any other
// result fails its skill and every harder one. Answers whose challenge or
// skill cannot be resolved are ignored. Both results are deduplicated and
// ordered by skill ID; a skill may appear in both.
func Propagate(answers []assessment.Answer, challenges map[string]assessment.Challenge, g *skillgraph.Graph) (validated, failed []skillgraph.Skill) {
	validatedSet := make(map[string]skillgraph.Skill)
	failedSet := make(map[string]skillgraph.Skill)

	for _, a := range answers {
		c, ok := challenges[a.ChallengeID]
		if !ok {
			continue
		}
		skill, err := g.Skill(c.SkillID())
		if err != nil {
			continue
		}
		tube, _ := g.TubeOf(skill.ID)
		if a.IsOK() {
			for _, s := range tube.EasierThanOrEqual(skill) {
				validatedSet[s.ID] = s
			}
		} else {
			for _, s := range tube.HarderThanOrEqual(skill) {
				failedSet[s.ID] = s
			}
		}
	}

	return sortedSkills(validatedSet), sortedSkills(failedSet)
}

func sortedSkills(set map[string]skillgraph.Skill) []skillgraph.Skill {
	out := make([]skillgraph.Skill, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
