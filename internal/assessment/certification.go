package assessment

import "time"

// AbortReason classifies why a certification ended early.
type AbortReason string

const (
	AbortNone      AbortReason = ""
	AbortCandidate AbortReason = "candidate"
	AbortTechnical AbortReason = "technical"
)

// Version selects the scoring path of a certification course.
type Version int

const (
	VersionClassic Version = 2 // skill propagation scoring
	VersionFlash   Version = 3 // ability estimation scoring
)

// CertificationCourse is the certification session a candidate sat.
type CertificationCourse struct {
	ID          int64
	UserID      int64
	Version     Version
	CompletedAt *time.Time
	AbortReason AbortReason
	IsCancelled bool
}

// CertificationChallenge is a challenge administered during a certification course.
type CertificationChallenge struct {
	ChallengeID           string
	CourseID              int64
	CompetenceID          string
	AssociatedSkillID     string
	IsNeutralized         bool
	HasValidatedLiveAlert bool
}

// Considered reports whether the challenge counts towards scoring.
func (c CertificationChallenge) Considered() bool {
	return !c.IsNeutralized && !c.HasValidatedLiveAlert
}

// CertificationAssessment is the scoring snapshot of one certification test.
type CertificationAssessment struct {
	ID                    int64
	UserID                int64
	CertificationCourseID int64
	State                 State
	Version               Version
	Challenges            []CertificationChallenge // in administration order
	Answers               []Answer                 // ordered by AnsweredAt
}

// AnswerFor returns the answer given to a challenge.
func (c CertificationAssessment) AnswerFor(challengeID string) (Answer, bool) {
	for _, a := range c.Answers {
		if a.ChallengeID == challengeID {
			return a, true
		}
	}
	return Answer{}, false
}

// ResultStatus is the closed set of assessment result outcomes.
type ResultStatus string

const (
	ResultValidated ResultStatus = "validated"
	ResultRejected  ResultStatus = "rejected"
	ResultError     ResultStatus = "error"
)

// EmitterAlgorithm marks results produced by automatic scoring.
const EmitterAlgorithm = "PIX-ALGO"

// AssessmentResult is the append-only outcome record of a scoring run.
type AssessmentResult struct {
	ID                    int64
	AssessmentID          int64
	CertificationCourseID int64
	PixScore              int
	ReproducibilityRate   float64
	Status                ResultStatus
	Emitter               string
	CommentForJury        string
	CreatedAt             time.Time
}

// CompetenceMark is the certified level and score of one competence.
type CompetenceMark struct {
	AssessmentResultID int64
	CompetenceID       string
	CompetenceCode     string
	AreaCode           string
	Level              int
	Score              int
}

// FlashAlgorithmConfiguration holds the tunable constants of flash scoring.
type FlashAlgorithmConfiguration struct {
	MaximumAssessmentLength                        int
	VariationPercent                               float64 // 0 disables the limit
	VariationPercentUntil                          int     // 0 applies the limit to every answer
	DoubleMeasuresUntil                            int
	MinimumAnswersRequiredToValidateACertification int
	CreatedAt                                      time.Time
}

// DefaultFlashAlgorithmConfiguration returns the configuration used when none is stored.
func DefaultFlashAlgorithmConfiguration() FlashAlgorithmConfiguration {
	return FlashAlgorithmConfiguration{
		MaximumAssessmentLength: 32,
		VariationPercent:        0.5,
		VariationPercentUntil:   0,
		DoubleMeasuresUntil:     0,
		MinimumAnswersRequiredToValidateACertification: 20,
	}
}
