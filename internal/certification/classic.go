// Package certification scores classic (V2) certification courses from the
// candidate's positioning and the challenges administered during the test.
package certification

import (
	"fmt"
	"math"
	"sort"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/knowledge"
	"github.com/abhisek/certify/internal/placement"
	"github.com/abhisek/certify/internal/skillgraph"
)

const (
	// UncertifiedLevel is the mark level of a competence that was not certified.
	UncertifiedLevel = -1

	// MinimumReproducibilityRate is the rate under which a certification is rejected.
	MinimumReproducibilityRate = 50.0
	// TrustedReproducibilityRate is the rate from which one missed challenge
	// per competence is forgiven.
	TrustedReproducibilityRate = 80.0
)

// Input is the snapshot classic scoring works on. KnowledgeElements are the
// consolidated placement evidence of the candidate.
type Input struct {
	Assessment        assessment.CertificationAssessment
	KnowledgeElements []knowledge.Element
	Graph             *skillgraph.Graph
}

// Result is the outcome of classic scoring.
type Result struct {
	PixScore            int
	ReproducibilityRate float64
	Status              assessment.ResultStatus
	Marks               []assessment.CompetenceMark // AssessmentResultID unset
	Summary             placement.AnswerSummary
}

// Scorer computes classic certification results.
type Scorer struct {
	// MaxReachableLevel caps positioned competence levels. Zero selects
	// placement.DefaultMaxReachableLevel.
	MaxReachableLevel int
}

type competenceTally struct {
	considered int
	correct    int
}

// Score scores a classic certification. Inconsistent data yields a
// *assessment.CertificationComputeError.
func (s Scorer) Score(in Input) (Result, error) {
	ca := in.Assessment
	computeErr := func(format string, args ...any) error {
		return &assessment.CertificationComputeError{
			CourseID: ca.CertificationCourseID,
			Reason:   fmt.Sprintf(format, args...),
		}
	}

	administered := make(map[string]assessment.CertificationChallenge, len(ca.Challenges))
	for _, c := range ca.Challenges {
		administered[c.ChallengeID] = c
	}
	for _, a := range ca.Answers {
		if _, ok := administered[a.ChallengeID]; !ok {
			return Result{}, computeErr("answer %d to unknown challenge %s", a.ID, a.ChallengeID)
		}
	}

	tallies := make(map[string]*competenceTally)
	consideredTotal, correctTotal := 0, 0
	for _, c := range ca.Challenges {
		if _, ok := in.Graph.Competence(c.CompetenceID); !ok {
			return Result{}, computeErr("challenge %s measures unknown competence %s", c.ChallengeID, c.CompetenceID)
		}
		t, ok := tallies[c.CompetenceID]
		if !ok {
			t = &competenceTally{}
			tallies[c.CompetenceID] = t
		}
		if !c.Considered() {
			continue
		}
		a, answered := ca.AnswerFor(c.ChallengeID)
		if !answered {
			return Result{}, computeErr("challenge %s has no answer", c.ChallengeID)
		}
		t.considered++
		consideredTotal++
		if a.IsOK() {
			t.correct++
			correctTotal++
		}
	}

	positioned := s.positioning(in)
	for _, p := range positioned {
		if p.Level < 1 {
			continue
		}
		if _, ok := tallies[p.CompetenceID]; !ok {
			return Result{}, computeErr("competence %s has no challenge", p.Code)
		}
	}

	rate := ReproducibilityRate(correctTotal, consideredTotal)
	res := Result{
		ReproducibilityRate: rate,
		Status:              assessment.ResultValidated,
		Summary:             placement.Summarize(ca.Challenges, ca.Answers, len(ca.Challenges)),
	}
	if rate < MinimumReproducibilityRate {
		res.Status = assessment.ResultRejected
	}

	for _, p := range positioned {
		t, ok := tallies[p.CompetenceID]
		if !ok {
			continue
		}
		level, score := certifiedLevel(p, *t, rate)
		res.Marks = append(res.Marks, assessment.CompetenceMark{
			CompetenceID:   p.CompetenceID,
			CompetenceCode: p.Code,
			AreaCode:       p.AreaCode,
			Level:          level,
			Score:          score,
		})
		res.PixScore += score
	}
	sort.Slice(res.Marks, func(i, j int) bool { return res.Marks[i].CompetenceCode < res.Marks[j].CompetenceCode })
	return res, nil
}

// positioning derives per-competence scores from the validated evidence.
func (s Scorer) positioning(in Input) []placement.CompetenceScore {
	var validated []skillgraph.Skill
	for _, e := range in.KnowledgeElements {
		if !e.IsValidated() {
			continue
		}
		if sk, err := in.Graph.Skill(e.SkillID); err == nil {
			validated = append(validated, sk)
		}
	}
	all := in.Graph.AllSkills()
	ids := make([]string, len(all))
	for i, sk := range all {
		ids[i] = sk.ID
	}
	return placement.CompetenceScores(in.Graph, validated, placement.SkillScores(in.Graph, ids), s.MaxReachableLevel)
}

// certifiedLevel applies the reproducibility rules to one competence.
func certifiedLevel(p placement.CompetenceScore, t competenceTally, rate float64) (level, score int) {
	if rate < MinimumReproducibilityRate {
		return UncertifiedLevel, 0
	}
	missed := t.considered - t.correct
	switch {
	case missed == 0:
		return p.Level, p.Score
	case missed == 1 && rate >= TrustedReproducibilityRate:
		return p.Level, p.Score
	case missed == 1 && t.considered > 1:
		if p.Level <= 1 {
			return UncertifiedLevel, 0
		}
		return p.Level - 1, p.Score - placement.PixPerLevel
	default:
		return UncertifiedLevel, 0
	}
}

// ReproducibilityRate is the percentage of correct answers among considered
// challenges, rounded to two decimals. No considered challenge rates 0.
func ReproducibilityRate(correct, considered int) float64 {
	if considered == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(considered)*10000) / 100
}
