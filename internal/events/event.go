// Package events carries assessment completion signals to the scoring engine
// and publishes its outcome.
package events

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentCompleted is emitted when a learner ends a test.
type AssessmentCompleted struct {
	ID                    string
	AssessmentID          int64
	UserID                int64
	CertificationCourseID int64 // 0 when the assessment is not a certification
	OccurredAt            time.Time
}

// NewAssessmentCompleted builds a completion event with a fresh ID.
func NewAssessmentCompleted(assessmentID, userID, courseID int64, at time.Time) AssessmentCompleted {
	return AssessmentCompleted{
		ID:                    uuid.NewString(),
		AssessmentID:          assessmentID,
		UserID:                userID,
		CertificationCourseID: courseID,
		OccurredAt:            at,
	}
}

// CertificationScoringCompleted is emitted once a certification was scored.
type CertificationScoringCompleted struct {
	UserID                int64
	CertificationCourseID int64
	ReproducibilityRate   float64
}
