// Package scoring turns completed certification assessments into persisted
// results.
package scoring

import (
	"fmt"
	"time"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/certification"
	"github.com/abhisek/certify/internal/flash"
	"github.com/abhisek/certify/internal/knowledge"
	"github.com/abhisek/certify/internal/skillgraph"
)

// State is the terminal state of a scoring run.
type State string

const (
	StatePending       State = "pending"
	StateScored        State = "scored"
	StateScoringFailed State = "scoringFailed"
)

// Input is the snapshot one scoring run works on.
type Input struct {
	Assessment assessment.CertificationAssessment
	Course     assessment.CertificationCourse

	// Classic scoring.
	KnowledgeElements []knowledge.Element
	Graph             *skillgraph.Graph

	// Flash scoring. Challenges must hold every answered challenge.
	Challenges  map[string]assessment.Challenge
	FlashConfig assessment.FlashAlgorithmConfiguration

	Now time.Time
}

// Outcome is everything a scoring run persists.
type Outcome struct {
	State  State
	Result assessment.AssessmentResult
	Marks  []assessment.CompetenceMark
	Course assessment.CertificationCourse
	Branch string // which rule decided the result, for logs
}

// Scorer computes outcomes. It holds only immutable lookup tables.
type Scorer struct {
	Scale   flash.Scale
	Classic certification.Scorer
}

// NewScorer creates a Scorer over the given scale.
func NewScorer(scale flash.Scale, maxReachableLevel int) Scorer {
	return Scorer{Scale: scale, Classic: certification.Scorer{MaxReachableLevel: maxReachableLevel}}
}

// Score decides the outcome of a certification without side effects.
// Identical inputs yield identical outcomes. Errors other than compute
// errors are returned; compute errors become a ScoringFailed outcome.
func (s Scorer) Score(in Input) (Outcome, error) {
	switch in.Course.Version {
	case assessment.VersionFlash:
		return s.scoreFlash(in)
	case assessment.VersionClassic, 0:
		return s.scoreClassic(in)
	default:
		return Outcome{}, fmt.Errorf("course %d: unsupported version %d", in.Course.ID, in.Course.Version)
	}
}

func (s Scorer) baseResult(in Input) assessment.AssessmentResult {
	return assessment.AssessmentResult{
		AssessmentID:          in.Assessment.ID,
		CertificationCourseID: in.Course.ID,
		Emitter:               assessment.EmitterAlgorithm,
		CreatedAt:             in.Now,
	}
}

func completed(c assessment.CertificationCourse, now time.Time) assessment.CertificationCourse {
	at := now
	c.CompletedAt = &at
	return c
}

func (s Scorer) scoreClassic(in Input) (Outcome, error) {
	res, err := s.Classic.Score(certification.Input{
		Assessment:        in.Assessment,
		KnowledgeElements: in.KnowledgeElements,
		Graph:             in.Graph,
	})
	if err != nil {
		if !assessment.IsComputeError(err) {
			return Outcome{}, err
		}
		result := s.baseResult(in)
		result.Status = assessment.ResultError
		result.CommentForJury = err.Error()
		return Outcome{
			State:  StateScoringFailed,
			Result: result,
			Course: completed(in.Course, in.Now),
			Branch: "classic-compute-error",
		}, nil
	}

	result := s.baseResult(in)
	result.PixScore = res.PixScore
	result.ReproducibilityRate = res.ReproducibilityRate
	result.Status = res.Status
	return Outcome{
		State:  StateScored,
		Result: result,
		Marks:  res.Marks,
		Course: completed(in.Course, in.Now),
		Branch: "classic",
	}, nil
}

func (s Scorer) scoreFlash(in Input) (Outcome, error) {
	cfg := in.FlashConfig
	administered := make(map[string]assessment.CertificationChallenge, len(in.Assessment.Challenges))
	for _, c := range in.Assessment.Challenges {
		administered[c.ChallengeID] = c
	}

	// Neutralized and live-alert challenges neither move the estimate nor
	// count as answered.
	items := make([]flash.Item, 0, len(in.Assessment.Answers))
	correct := 0
	for _, a := range in.Assessment.Answers {
		if cc, ok := administered[a.ChallengeID]; ok && !cc.Considered() {
			continue
		}
		c, ok := in.Challenges[a.ChallengeID]
		if !ok {
			return Outcome{}, fmt.Errorf("course %d: answered challenge %s: %w", in.Course.ID, a.ChallengeID, assessment.ErrNotFound)
		}
		if a.IsOK() {
			correct++
		}
		items = append(items, flash.Item{
			ChallengeID:  c.ID,
			Discriminant: c.Discriminant,
			Difficulty:   c.Difficulty,
			Correct:      a.IsOK(),
		})
	}

	est := flash.Estimate(items, flash.DefaultEstimatedLevel, flash.Params{
		VariationPercent:      cfg.VariationPercent,
		VariationPercentUntil: cfg.VariationPercentUntil,
		DoubleMeasuresUntil:   cfg.DoubleMeasuresUntil,
	})
	capped := s.Scale.Score(est.EstimatedLevel)
	answered := len(items)
	degraded := flash.Degrade(capped, answered, cfg.MaximumAssessmentLength)

	result := s.baseResult(in)
	result.ReproducibilityRate = certification.ReproducibilityRate(correct, answered)
	course := in.Course
	out := Outcome{State: StateScored}

	if answered < cfg.MinimumAnswersRequiredToValidateACertification && course.AbortReason != assessment.AbortNone {
		result.Status = assessment.ResultRejected
		switch course.AbortReason {
		case assessment.AbortCandidate:
			result.PixScore = degraded
			course = completed(course, in.Now)
			out.Branch = "flash-rejected-candidate"
		default:
			result.PixScore = capped
			course.IsCancelled = true
			out.Branch = "flash-cancelled-technical"
		}
	} else {
		result.Status = assessment.ResultValidated
		switch course.AbortReason {
		case assessment.AbortCandidate:
			result.PixScore = degraded
			out.Branch = "flash-validated-candidate"
		case assessment.AbortTechnical:
			result.PixScore = capped
			out.Branch = "flash-validated-technical"
		default:
			result.PixScore = capped
			out.Branch = "flash-validated"
		}
		course = completed(course, in.Now)
	}

	out.Result = result
	out.Course = course
	return out, nil
}
