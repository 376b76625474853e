package placement

import (
	"math"

	"github.com/abhisek/certify/internal/skillgraph"
)

const (
	// PixPerLevel is the score one difficulty level of a competence is worth.
	PixPerLevel = 8
	// DefaultMaxReachableLevel caps competence levels.
	DefaultMaxReachableLevel = 5
)

// SkillScores returns the score each target skill is worth: a difficulty
// level of a competence is worth PixPerLevel, shared equally between the
// target skills of that competence at that difficulty. Skills unknown to the
// graph are ignored.
func SkillScores(g *skillgraph.Graph, targetSkillIDs []string) map[string]float64 {
	type bucket struct {
		competence string
		difficulty int
	}
	counts := make(map[bucket]int)
	var skills []skillgraph.Skill
	seen := make(map[string]bool, len(targetSkillIDs))
	for _, id := range targetSkillIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		s, err := g.Skill(id)
		if err != nil {
			continue
		}
		skills = append(skills, s)
		counts[bucket{s.CompetenceID, s.Difficulty}]++
	}

	out := make(map[string]float64, len(skills))
	for _, s := range skills {
		out[s.ID] = PixPerLevel / float64(counts[bucket{s.CompetenceID, s.Difficulty}])
	}
	return out
}

// CompetenceScore is the placement score of one competence.
type CompetenceScore struct {
	CompetenceID string
	Code         string
	AreaCode     string
	Score        int
	Level        int
}

// CompetenceScores sums the scores of validated skills per competence, in
// competence code order. Each score is floored, then capped at
// maxReachableLevel levels; the level is score / PixPerLevel. Every
// competence of the graph is reported, scoring 0 when nothing was validated.
func CompetenceScores(g *skillgraph.Graph, validated []skillgraph.Skill, skillScores map[string]float64, maxReachableLevel int) []CompetenceScore {
	if maxReachableLevel <= 0 {
		maxReachableLevel = DefaultMaxReachableLevel
	}
	sums := make(map[string]float64)
	for _, s := range validated {
		sums[s.CompetenceID] += skillScores[s.ID]
	}

	ceiling := maxReachableLevel * PixPerLevel
	var out []CompetenceScore
	for _, c := range g.Competences() {
		score := int(math.Floor(sums[c.ID] + 1e-9))
		if score > ceiling {
			score = ceiling
		}
		out = append(out, CompetenceScore{
			CompetenceID: c.ID,
			Code:         c.Code,
			AreaCode:     c.AreaCode,
			Score:        score,
			Level:        score / PixPerLevel,
		})
	}
	return out
}

// TotalScore is the sum of the scores of the validated skills, floored.
// Unscored skills contribute zero.
func TotalScore(validated []skillgraph.Skill, skillScores map[string]float64) int {
	sum := 0.0
	for _, s := range validated {
		sum += skillScores[s.ID]
	}
	return int(math.Floor(sum + 1e-9))
}
