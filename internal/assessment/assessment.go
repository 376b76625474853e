package assessment

import "time"

// Type is the kind of test an assessment belongs to.
type Type string

const (
	TypePlacement      Type = "PLACEMENT"
	TypeCertification  Type = "CERTIFICATION"
	TypeSmartPlacement Type = "SMART_PLACEMENT"
	TypeDemo           Type = "DEMO"
	TypePreview        Type = "PREVIEW"
)

// State is the lifecycle state of an assessment.
type State string

const (
	StateStarted           State = "started"
	StateCompleted         State = "completed"
	StateEndedBySupervisor State = "endedBySupervisor"
)

// Assessment is one learner test run.
type Assessment struct {
	ID                    int64
	Type                  Type
	UserID                int64
	State                 State
	CertificationCourseID int64 // 0 unless Type is CERTIFICATION
	TargetProfileID       int64 // smart placements only
	CreatedAt             time.Time
	Answers               []Answer // ordered by AnsweredAt
}

// IsCertification reports whether the assessment is a certification test.
func (a Assessment) IsCertification() bool {
	return a.Type == TypeCertification
}

// IsFinished reports whether the assessment can no longer receive answers.
func (a Assessment) IsFinished() bool {
	return a.State == StateCompleted || a.State == StateEndedBySupervisor
}

// AnsweredChallengeIDs returns the set of challenges already answered.
func (a Assessment) AnsweredChallengeIDs() map[string]bool {
	out := make(map[string]bool, len(a.Answers))
	for _, ans := range a.Answers {
		out[ans.ChallengeID] = true
	}
	return out
}
