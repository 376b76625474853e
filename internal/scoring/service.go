package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/events"
	"github.com/abhisek/certify/internal/knowledge"
	"github.com/abhisek/certify/internal/logger"
	"github.com/abhisek/certify/internal/skillgraph"
)

// Deps are the collaborators of a Service.
type Deps struct {
	Assessments              assessment.AssessmentRepository
	CertificationAssessments assessment.CertificationAssessmentRepository
	Courses                  assessment.CertificationCourseRepository
	Challenges               assessment.ChallengeRepository
	KnowledgeElements        assessment.KnowledgeElementRepository
	FlashConfig              assessment.FlashAlgorithmConfigurationRepository
	Tx                       assessment.Transactor
}

// Service loads the snapshot of a completed certification, scores it and
// persists the outcome in one transaction.
type Service struct {
	deps   Deps
	graph  *skillgraph.Graph
	scorer Scorer
	log    *logger.Logger
	now    func() time.Time
}

// NewService creates a scoring service. A nil now selects time.Now.
func NewService(deps Deps, g *skillgraph.Graph, scorer Scorer, log *logger.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{deps: deps, graph: g, scorer: scorer, log: log, now: now}
}

var _ events.Handler = (*Service)(nil)

// HandleAssessmentCompleted scores the certification behind evt. It returns
// no event and persists nothing when the assessment is not a certification.
func (s *Service) HandleAssessmentCompleted(ctx context.Context, evt events.AssessmentCompleted) (*events.CertificationScoringCompleted, error) {
	a, err := s.deps.Assessments.Get(ctx, evt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment %d: %w", evt.AssessmentID, err)
	}
	if !a.IsCertification() {
		s.log.Debug("not a certification, skipping", "assessment_id", a.ID, "type", string(a.Type))
		return nil, nil
	}
	courseID := a.CertificationCourseID
	if courseID == 0 {
		courseID = evt.CertificationCourseID
	}
	return s.ScoreCourse(ctx, courseID)
}

// ScoreCourse scores a certification course and persists its outcome. It is
// also the entry point for rescoring.
func (s *Service) ScoreCourse(ctx context.Context, courseID int64) (*events.CertificationScoringCompleted, error) {
	in, err := s.snapshot(ctx, courseID)
	if err != nil {
		return nil, err
	}
	s.log.Info("scoring certification",
		"course_id", courseID,
		"user_id", in.Course.UserID,
		"version", int(in.Course.Version),
		"answers", len(in.Assessment.Answers),
	)

	out, err := s.scorer.Score(in)
	if err != nil {
		s.log.Error("scoring failed", "course_id", courseID, "error", err.Error())
		return nil, fmt.Errorf("score course %d: %w", courseID, err)
	}
	if out.State == StateScoringFailed {
		s.log.Warn("certification compute error", "course_id", courseID, "comment", out.Result.CommentForJury)
	}

	if err := s.persist(ctx, out); err != nil {
		s.log.Error("persist outcome failed", "course_id", courseID, "error", err.Error())
		return nil, err
	}
	s.log.Info("certification scored",
		"course_id", courseID,
		"state", string(out.State),
		"branch", out.Branch,
		"status", string(out.Result.Status),
		"pix_score", out.Result.PixScore,
	)

	return &events.CertificationScoringCompleted{
		UserID:                in.Course.UserID,
		CertificationCourseID: courseID,
		ReproducibilityRate:   out.Result.ReproducibilityRate,
	}, nil
}

func (s *Service) snapshot(ctx context.Context, courseID int64) (Input, error) {
	course, err := s.deps.Courses.Get(ctx, courseID)
	if err != nil {
		return Input{}, fmt.Errorf("get course %d: %w", courseID, err)
	}
	ca, err := s.deps.CertificationAssessments.GetByCourseID(ctx, courseID)
	if err != nil {
		return Input{}, fmt.Errorf("get certification assessment of course %d: %w", courseID, err)
	}
	if course.Version == 0 {
		course.Version = ca.Version
	}
	in := Input{
		Assessment: ca,
		Course:     course,
		Graph:      s.graph,
		Now:        s.now(),
	}

	if course.Version == assessment.VersionFlash {
		ids := make([]string, len(ca.Answers))
		for i, ans := range ca.Answers {
			ids[i] = ans.ChallengeID
		}
		challenges, err := s.deps.Challenges.FindByIDs(ctx, ids)
		if err != nil {
			return Input{}, fmt.Errorf("find answered challenges: %w", err)
		}
		in.Challenges = assessment.ChallengesByID(challenges)

		cfg, err := s.deps.FlashConfig.Get(ctx)
		switch {
		case errors.Is(err, assessment.ErrNotFound):
			s.log.Warn("no flash configuration stored, using defaults", "course_id", courseID)
			cfg = assessment.DefaultFlashAlgorithmConfiguration()
		case err != nil:
			return Input{}, fmt.Errorf("get flash configuration: %w", err)
		}
		in.FlashConfig = cfg
		return in, nil
	}

	ids, err := s.deps.Assessments.FindIDsByUser(ctx, course.UserID)
	if err != nil {
		return Input{}, fmt.Errorf("find assessments of user: %w", err)
	}
	lists, err := s.deps.KnowledgeElements.FindByAssessmentIDs(ctx, ids)
	if err != nil {
		return Input{}, fmt.Errorf("find knowledge elements: %w", err)
	}
	in.KnowledgeElements = knowledge.Consolidate(lists...)
	return in, nil
}

func (s *Service) persist(ctx context.Context, out Outcome) error {
	return s.deps.Tx.WithinTx(ctx, func(w assessment.ScoringWriter) error {
		saved, err := w.AssessmentResults().Save(ctx, out.Result)
		if err != nil {
			return fmt.Errorf("save assessment result: %w", err)
		}
		if len(out.Marks) > 0 {
			marks := make([]assessment.CompetenceMark, len(out.Marks))
			for i, m := range out.Marks {
				m.AssessmentResultID = saved.ID
				marks[i] = m
			}
			if err := w.CompetenceMarks().Save(ctx, marks); err != nil {
				return fmt.Errorf("save competence marks: %w", err)
			}
		}
		if err := w.CertificationCourses().Update(ctx, out.Course); err != nil {
			return fmt.Errorf("update course %d: %w", out.Course.ID, err)
		}
		return nil
	})
}
