// Package selector chooses the next challenge of an adaptive assessment.
package selector

import (
	"sort"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/knowledge"
	"github.com/abhisek/certify/internal/skillgraph"
)

// Input is a snapshot of the assessment state. Answers must be ordered by
// occurrence and KnowledgeElements already consolidated.
type Input struct {
	Answers           []assessment.Answer
	Candidates        []assessment.Challenge
	KnowledgeElements []knowledge.Element
	TargetSkillIDs    []string
	Graph             *skillgraph.Graph
	MaxLength         int // 0 = unlimited
}

// Selector picks the most informative challenge under a Policy.
type Selector struct {
	policy Policy
}

// New creates a Selector. A nil policy selects RewardPolicy.
func New(p Policy) *Selector {
	if p == nil {
		p = RewardPolicy{}
	}
	return &Selector{policy: p}
}

type scored struct {
	challenge  assessment.Challenge
	difficulty int
	reward     float64
}

// Select returns the challenge with the highest reward, or Ended when the
// assessment should stop. Ties are broken by skill difficulty ascending,
// then challenge ID.
func (s *Selector) Select(in Input) Selection {
	if in.MaxLength > 0 && len(in.Answers) >= in.MaxLength {
		return Ended(EndMaxLength)
	}

	ctx := Context{
		Graph:  in.Graph,
		Known:  knowledge.BySkill(in.KnowledgeElements),
		Target: make(map[string]bool, len(in.TargetSkillIDs)),
	}
	for _, id := range in.TargetSkillIDs {
		ctx.Target[id] = true
	}

	answered := make(map[string]bool, len(in.Answers))
	for _, a := range in.Answers {
		answered[a.ChallengeID] = true
	}

	var remaining []scored
	for _, c := range in.Candidates {
		if answered[c.ID] || !c.Usable() {
			continue
		}
		skill, err := in.Graph.Skill(c.SkillID())
		if err != nil || !ctx.isTarget(skill.ID) {
			continue
		}
		if _, known := ctx.Known[skill.ID]; known {
			continue
		}
		remaining = append(remaining, scored{challenge: c, difficulty: skill.Difficulty})
	}
	if len(remaining) == 0 {
		return Ended(EndNoCandidate)
	}

	level := PredictLevel(in.Graph, in.KnowledgeElements)
	reachable := remaining[:0]
	for _, r := range remaining {
		if float64(r.difficulty) <= level+MaxLevelAboveEstimate {
			reachable = append(reachable, r)
		}
	}
	if len(reachable) == 0 {
		return Ended(EndNoCandidate)
	}

	for i := range reachable {
		reachable[i].reward = s.policy.Reward(reachable[i].challenge, level, ctx)
	}
	sort.Slice(reachable, func(i, j int) bool {
		a, b := reachable[i], reachable[j]
		if a.reward != b.reward {
			return a.reward > b.reward
		}
		if a.difficulty != b.difficulty {
			return a.difficulty < b.difficulty
		}
		return a.challenge.ID < b.challenge.ID
	})

	if reachable[0].reward <= 0 {
		return Ended(EndNoInformation)
	}
	return Selected(reachable[0].challenge)
}
