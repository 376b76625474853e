package assessment

import (
	"context"

	"github.com/abhisek/certify/internal/knowledge"
	"github.com/abhisek/certify/internal/skillgraph"
)

// ChallengeRepository gives access to published challenges.
type ChallengeRepository interface {
	// Get returns a challenge by ID.
	Get(ctx context.Context, id string) (Challenge, error)

	// FindBySkillIDs returns the challenges measuring any of the given skills.
	FindBySkillIDs(ctx context.Context, skillIDs []string) ([]Challenge, error)

	// FindByIDs returns the challenges with the given IDs, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]Challenge, error)
}

// AnswerRepository stores learner answers.
type AnswerRepository interface {
	// FindByAssessment returns the answers of an assessment ordered by occurrence.
	FindByAssessment(ctx context.Context, assessmentID int64) ([]Answer, error)

	// Save appends a new answer and returns it with its ID set.
	Save(ctx context.Context, a Answer) (Answer, error)
}

// AssessmentRepository gives access to assessments.
type AssessmentRepository interface {
	// Get returns an assessment with its answers.
	Get(ctx context.Context, id int64) (Assessment, error)

	// FindIDsByUser returns the IDs of every assessment of a user.
	FindIDsByUser(ctx context.Context, userID int64) ([]int64, error)
}

// CertificationAssessmentRepository loads certification scoring snapshots.
type CertificationAssessmentRepository interface {
	// GetByCourseID returns the certification assessment of a course.
	GetByCourseID(ctx context.Context, courseID int64) (CertificationAssessment, error)
}

// CertificationCourseRepository stores certification courses.
type CertificationCourseRepository interface {
	Get(ctx context.Context, id int64) (CertificationCourse, error)
	Update(ctx context.Context, c CertificationCourse) error
}

// KnowledgeElementRepository stores mastery evidence.
type KnowledgeElementRepository interface {
	// FindByAssessmentIDs returns one evidence list per assessment ID, in argument order.
	FindByAssessmentIDs(ctx context.Context, assessmentIDs []int64) ([][]knowledge.Element, error)

	// Save appends evidence.
	Save(ctx context.Context, elements []knowledge.Element) error
}

// AssessmentResultRepository stores scoring outcomes.
type AssessmentResultRepository interface {
	// Save appends a result and returns it with its ID set.
	Save(ctx context.Context, r AssessmentResult) (AssessmentResult, error)
}

// CompetenceMarkRepository stores competence marks.
type CompetenceMarkRepository interface {
	Save(ctx context.Context, marks []CompetenceMark) error
}

// FlashAlgorithmConfigurationRepository returns the current flash configuration.
type FlashAlgorithmConfigurationRepository interface {
	Get(ctx context.Context) (FlashAlgorithmConfiguration, error)
}

// TargetProfileRepository returns the skills a smart placement targets.
type TargetProfileRepository interface {
	SkillIDs(ctx context.Context, targetProfileID int64) ([]string, error)
}

// SkillRepository returns the reference data the skill graph is built from.
type SkillRepository interface {
	Skills(ctx context.Context) ([]skillgraph.Skill, error)
	Competences(ctx context.Context) ([]skillgraph.Competence, error)
}

// ScoringWriter persists the outcome of one scoring run.
type ScoringWriter interface {
	AssessmentResults() AssessmentResultRepository
	CompetenceMarks() CompetenceMarkRepository
	CertificationCourses() CertificationCourseRepository
}

// Transactor runs fn in a transaction: every write made through the writer
// commits together or not at all.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(w ScoringWriter) error) error
}

// AnswerWriter persists one answer and the evidence it produced.
type AnswerWriter interface {
	Answers() AnswerRepository
	KnowledgeElements() KnowledgeElementRepository
}

// AnswerTransactor runs fn in a transaction: an answer and its knowledge
// elements are stored together or not at all.
type AnswerTransactor interface {
	WithinAnswerTx(ctx context.Context, fn func(w AnswerWriter) error) error
}
