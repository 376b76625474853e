package placement

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/knowledge"
	"github.com/abhisek/certify/internal/logger"
	"github.com/abhisek/certify/internal/selector"
	"github.com/abhisek/certify/internal/skillgraph"
)

// Repos groups the collaborators of a Service.
type Repos struct {
	Assessments       assessment.AssessmentRepository
	Challenges        assessment.ChallengeRepository
	KnowledgeElements assessment.KnowledgeElementRepository
	TargetProfiles    assessment.TargetProfileRepository
	Tx                assessment.AnswerTransactor
}

// Service runs smart placements: it picks the next challenge and turns
// answers into knowledge elements.
type Service struct {
	repos     Repos
	graph     *skillgraph.Graph
	selector  *selector.Selector
	maxLength int
	log       *logger.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMaxLength ends placements after n answers.
func WithMaxLength(n int) Option { return func(s *Service) { s.maxLength = n } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithSelector overrides the default reward-based selector.
func WithSelector(sel *selector.Selector) Option { return func(s *Service) { s.selector = sel } }

// NewService creates a placement service.
func NewService(repos Repos, g *skillgraph.Graph, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repos:    repos,
		graph:    g,
		selector: selector.New(nil),
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NextChallenge selects the next challenge of a placement. A finished
// assessment yields an Ended selection.
func (s *Service) NextChallenge(ctx context.Context, assessmentID int64) (selector.Selection, error) {
	a, err := s.repos.Assessments.Get(ctx, assessmentID)
	if err != nil {
		return selector.Selection{}, fmt.Errorf("get assessment %d: %w", assessmentID, err)
	}
	if a.IsFinished() {
		return selector.Ended(selector.EndFinished), nil
	}

	targets, err := s.targetSkills(ctx, a)
	if err != nil {
		return selector.Selection{}, err
	}
	candidates, err := s.repos.Challenges.FindBySkillIDs(ctx, targets)
	if err != nil {
		return selector.Selection{}, fmt.Errorf("find challenges: %w", err)
	}
	kes, err := s.userKnowledge(ctx, a.UserID)
	if err != nil {
		return selector.Selection{}, err
	}

	sel := s.selector.Select(selector.Input{
		Answers:           a.Answers,
		Candidates:        candidates,
		KnowledgeElements: kes,
		TargetSkillIDs:    targets,
		Graph:             s.graph,
		MaxLength:         s.maxLength,
	})
	s.log.Debug("next challenge selected",
		"assessment_id", assessmentID,
		"selection", sel.String(),
		"answers", len(a.Answers),
	)
	return sel, nil
}

// RecordAnswer stores an answer of a started placement and the knowledge
// elements it produces, in one transaction.
func (s *Service) RecordAnswer(ctx context.Context, ans assessment.Answer) (assessment.Answer, []knowledge.Element, error) {
	if !ans.Result.Valid() {
		return assessment.Answer{}, nil, fmt.Errorf("record answer: unknown result %q", ans.Result)
	}
	a, err := s.repos.Assessments.Get(ctx, ans.AssessmentID)
	if err != nil {
		return assessment.Answer{}, nil, fmt.Errorf("get assessment %d: %w", ans.AssessmentID, err)
	}
	if a.IsFinished() {
		return assessment.Answer{}, nil, fmt.Errorf("record answer: %w", assessment.ErrAssessmentEnded)
	}
	if a.AnsweredChallengeIDs()[ans.ChallengeID] {
		return assessment.Answer{}, nil, fmt.Errorf("record answer: challenge %s already answered", ans.ChallengeID)
	}
	challenge, err := s.repos.Challenges.Get(ctx, ans.ChallengeID)
	if err != nil {
		return assessment.Answer{}, nil, fmt.Errorf("get challenge %s: %w", ans.ChallengeID, err)
	}

	if ans.AnsweredAt.IsZero() {
		ans.AnsweredAt = s.now()
	}

	// Evidence only accrues for adaptive placements.
	adaptive := a.Type == assessment.TypeSmartPlacement
	var known []knowledge.Element
	if adaptive {
		if known, err = s.userKnowledge(ctx, a.UserID); err != nil {
			return assessment.Answer{}, nil, err
		}
	}

	var saved assessment.Answer
	var elements []knowledge.Element
	err = s.repos.Tx.WithinAnswerTx(ctx, func(w assessment.AnswerWriter) error {
		var err error
		if saved, err = w.Answers().Save(ctx, ans); err != nil {
			return fmt.Errorf("save answer: %w", err)
		}
		if !adaptive {
			return nil
		}
		elements = knowledge.FromEvidence(knowledge.Evidence{
			SkillID:      challenge.SkillID(),
			Correct:      saved.IsOK(),
			AssessmentID: a.ID,
			AnswerID:     saved.ID,
			UserID:       a.UserID,
			At:           saved.AnsweredAt,
		}, s.graph, knowledge.BySkill(known))
		if len(elements) == 0 {
			return nil
		}
		if err := w.KnowledgeElements().Save(ctx, elements); err != nil {
			return fmt.Errorf("save knowledge elements: %w", err)
		}
		return nil
	})
	if err != nil {
		return assessment.Answer{}, nil, err
	}
	s.log.Debug("answer recorded",
		"assessment_id", a.ID,
		"challenge_id", saved.ChallengeID,
		"result", string(saved.Result),
		"knowledge_elements", len(elements),
	)
	return saved, elements, nil
}

// userKnowledge returns the consolidated evidence of every assessment of a user.
func (s *Service) userKnowledge(ctx context.Context, userID int64) ([]knowledge.Element, error) {
	ids, err := s.repos.Assessments.FindIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find assessments of user: %w", err)
	}
	lists, err := s.repos.KnowledgeElements.FindByAssessmentIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find knowledge elements: %w", err)
	}
	return knowledge.Consolidate(lists...), nil
}

func (s *Service) targetSkills(ctx context.Context, a assessment.Assessment) ([]string, error) {
	if a.TargetProfileID == 0 || s.repos.TargetProfiles == nil {
		all := s.graph.AllSkills()
		ids := make([]string, len(all))
		for i, sk := range all {
			ids[i] = sk.ID
		}
		return ids, nil
	}
	ids, err := s.repos.TargetProfiles.SkillIDs(ctx, a.TargetProfileID)
	if err != nil {
		return nil, fmt.Errorf("get target profile %d: %w", a.TargetProfileID, err)
	}
	return ids, nil
}
