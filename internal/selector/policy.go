package selector

import (
	"math"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/knowledge"
	"github.com/abhisek/certify/internal/skillgraph"
)

const (
	// DefaultLevel is the predicted level before any evidence.
	DefaultLevel = 2.0
	// MaxLevelAboveEstimate bounds how far above the predicted level a
	// challenge may be.
	MaxLevelAboveEstimate = 2.0

	levelStep = 0.5
	minLevel  = 0.5
	maxLevel  = 8.0
)

// Policy scores how desirable a candidate challenge is.
type Policy interface {
	// Reward returns the expected information gain of presenting c to a
	// learner at the given level. Zero means c teaches nothing new.
	Reward(c assessment.Challenge, level float64, ctx Context) float64
}

// Context is the read-only state a Policy may consult.
type Context struct {
	Graph  *skillgraph.Graph
	Known  map[string]knowledge.Element
	Target map[string]bool // empty means every skill is targeted
}

func (c Context) isTarget(skillID string) bool {
	return len(c.Target) == 0 || c.Target[skillID]
}

// RewardPolicy weighs the skills a challenge would newly validate or
// invalidate by the probability of each outcome.
type RewardPolicy struct{}

func (RewardPolicy) Reward(c assessment.Challenge, level float64, ctx Context) float64 {
	skill, err := ctx.Graph.Skill(c.SkillID())
	if err != nil {
		return 0
	}
	tube, _ := ctx.Graph.TubeOf(skill.ID)

	p := successProbability(level, skill.Difficulty)
	gainIfOK := countUnknown(tube.EasierThanOrEqual(skill), ctx)
	gainIfKO := countUnknown(tube.HarderThanOrEqual(skill), ctx)
	return p*float64(gainIfOK) + (1-p)*float64(gainIfKO)
}

func countUnknown(skills []skillgraph.Skill, ctx Context) int {
	n := 0
	for _, s := range skills {
		if _, known := ctx.Known[s.ID]; known {
			continue
		}
		if ctx.isTarget(s.ID) {
			n++
		}
	}
	return n
}

func successProbability(level float64, difficulty int) float64 {
	return 1 / (1 + math.Exp(-(level - float64(difficulty))))
}

type observation struct {
	difficulty int
	validated  bool
}

// PredictLevel returns the level in [0.5, 8] that best explains the
// evidence, or DefaultLevel without evidence. Ties keep the lowest level.
func PredictLevel(g *skillgraph.Graph, known []knowledge.Element) float64 {
	var obs []observation
	for _, e := range known {
		s, err := g.Skill(e.SkillID)
		if err != nil {
			continue
		}
		obs = append(obs, observation{difficulty: s.Difficulty, validated: e.IsValidated()})
	}
	if len(obs) == 0 {
		return DefaultLevel
	}

	best, bestLL := DefaultLevel, math.Inf(-1)
	for level := minLevel; level <= maxLevel; level += levelStep {
		ll := 0.0
		for _, o := range obs {
			p := successProbability(level, o.difficulty)
			if o.validated {
				ll += math.Log(p)
			} else {
				ll += math.Log(1 - p)
			}
		}
		if ll > bestLL {
			best, bestLL = level, ll
		}
	}
	return best
}
