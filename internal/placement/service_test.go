package placement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/knowledge"
	"github.com/abhisek/certify/internal/logger"
	"github.com/abhisek/certify/internal/selector"
)

// fakeRepos implements every repository the service needs, in memory.
type fakeRepos struct {
	assessments map[int64]*assessment.Assessment
	challenges  map[string]assessment.Challenge
	elements    map[int64][]knowledge.Element
	targets     map[int64][]string
	nextAnswer  int64
	saveErr     error
	keSaveErr   error
}

func newFakeRepos(challenges map[string]assessment.Challenge) *fakeRepos {
	return &fakeRepos{
		assessments: make(map[int64]*assessment.Assessment),
		challenges:  challenges,
		elements:    make(map[int64][]knowledge.Element),
		targets:     make(map[int64][]string),
	}
}

func (f *fakeRepos) repos() Repos {
	return Repos{
		Assessments:       fakeAssessments{f},
		Challenges:        fakeChallenges{f},
		KnowledgeElements: fakeElements{f},
		TargetProfiles:    fakeTargets{f},
		Tx:                f,
	}
}

func (f *fakeRepos) Answers() assessment.AnswerRepository { return fakeAnswers{f} }
func (f *fakeRepos) KnowledgeElements() assessment.KnowledgeElementRepository {
	return fakeElements{f}
}

// WithinAnswerTx restores the answers and elements it found when fn fails.
func (f *fakeRepos) WithinAnswerTx(_ context.Context, fn func(w assessment.AnswerWriter) error) error {
	answers := make(map[int64][]assessment.Answer, len(f.assessments))
	for id, a := range f.assessments {
		answers[id] = append([]assessment.Answer(nil), a.Answers...)
	}
	elements := make(map[int64][]knowledge.Element, len(f.elements))
	for id, es := range f.elements {
		elements[id] = append([]knowledge.Element(nil), es...)
	}
	nextAnswer := f.nextAnswer

	if err := fn(f); err != nil {
		for id, a := range f.assessments {
			a.Answers = answers[id]
		}
		f.elements = elements
		f.nextAnswer = nextAnswer
		return err
	}
	return nil
}

type fakeAssessments struct{ f *fakeRepos }

func (r fakeAssessments) Get(_ context.Context, id int64) (assessment.Assessment, error) {
	a, ok := r.f.assessments[id]
	if !ok {
		return assessment.Assessment{}, fmt.Errorf("assessment %d: %w", id, assessment.ErrNotFound)
	}
	return *a, nil
}

func (r fakeAssessments) FindIDsByUser(_ context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for id, a := range r.f.assessments {
		if a.UserID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeAnswers struct{ f *fakeRepos }

func (r fakeAnswers) FindByAssessment(_ context.Context, id int64) ([]assessment.Answer, error) {
	return r.f.assessments[id].Answers, nil
}

func (r fakeAnswers) Save(_ context.Context, a assessment.Answer) (assessment.Answer, error) {
	if r.f.saveErr != nil {
		return assessment.Answer{}, r.f.saveErr
	}
	r.f.nextAnswer++
	a.ID = r.f.nextAnswer
	as := r.f.assessments[a.AssessmentID]
	as.Answers = append(as.Answers, a)
	return a, nil
}

type fakeChallenges struct{ f *fakeRepos }

func (r fakeChallenges) Get(_ context.Context, id string) (assessment.Challenge, error) {
	c, ok := r.f.challenges[id]
	if !ok {
		return assessment.Challenge{}, fmt.Errorf("challenge %s: %w", id, assessment.ErrNotFound)
	}
	return c, nil
}

func (r fakeChallenges) FindBySkillIDs(_ context.Context, skillIDs []string) ([]assessment.Challenge, error) {
	want := make(map[string]bool, len(skillIDs))
	for _, id := range skillIDs {
		want[id] = true
	}
	var out []assessment.Challenge
	for _, c := range r.f.challenges {
		if want[c.SkillID()] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r fakeChallenges) FindByIDs(_ context.Context, ids []string) ([]assessment.Challenge, error) {
	var out []assessment.Challenge
	for _, id := range ids {
		if c, ok := r.f.challenges[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeElements struct{ f *fakeRepos }

func (r fakeElements) FindByAssessmentIDs(_ context.Context, ids []int64) ([][]knowledge.Element, error) {
	out := make([][]knowledge.Element, len(ids))
	for i, id := range ids {
		out[i] = r.f.elements[id]
	}
	return out, nil
}

func (r fakeElements) Save(_ context.Context, elements []knowledge.Element) error {
	if r.f.keSaveErr != nil {
		return r.f.keSaveErr
	}
	for _, e := range elements {
		r.f.elements[e.AssessmentID] = append(r.f.elements[e.AssessmentID], e)
	}
	return nil
}

type fakeTargets struct{ f *fakeRepos }

func (r fakeTargets) SkillIDs(_ context.Context, id int64) ([]string, error) {
	ids, ok := r.f.targets[id]
	if !ok {
		return nil, fmt.Errorf("target profile %d: %w", id, assessment.ErrNotFound)
	}
	return ids, nil
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *fakeRepos) {
	t.Helper()
	g := testGraph(t)
	f := newFakeRepos(challengeMap(g))
	f.assessments[1] = &assessment.Assessment{
		ID:     1,
		Type:   assessment.TypeSmartPlacement,
		UserID: 42,
		State:  assessment.StateStarted,
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(f.repos(), g, logger.Nop(), opts...), f
}

func TestService_NextChallenge_SelectsUnansweredChallenge(t *testing.T) {
	svc, _ := newTestService(t)
	sel, err := svc.NextChallenge(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sel.Challenge(); !ok {
		t.Fatalf("expected a challenge, got %s", sel)
	}
}

func TestService_NextChallenge_FinishedAssessment(t *testing.T) {
	svc, f := newTestService(t)
	f.assessments[1].State = assessment.StateCompleted

	sel, err := svc.NextChallenge(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !sel.Ended() || sel.Reason() != selector.EndFinished {
		t.Errorf("selection = %s, want ended(finished)", sel)
	}
	if !errors.Is(sel.Err(), assessment.ErrAssessmentEnded) {
		t.Errorf("Err() = %v, want ErrAssessmentEnded", sel.Err())
	}
}

func TestService_NextChallenge_UnknownAssessment(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.NextChallenge(context.Background(), 99)
	if !errors.Is(err, assessment.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestService_NextChallenge_RestrictedToTargetProfile(t *testing.T) {
	svc, f := newTestService(t)
	f.assessments[1].TargetProfileID = 7
	f.targets[7] = []string{"mail1", "mail2"}

	sel, err := svc.NextChallenge(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := sel.Challenge()
	if !ok {
		t.Fatalf("expected a challenge, got %s", sel)
	}
	if c.SkillID() != "mail1" && c.SkillID() != "mail2" {
		t.Errorf("selected skill %s outside target profile", c.SkillID())
	}
}

func TestService_NextChallenge_EndsAtMaxLength(t *testing.T) {
	svc, f := newTestService(t, WithMaxLength(1))
	f.assessments[1].Answers = []assessment.Answer{{ChallengeID: "ch-web1", Result: assessment.ResultOK}}

	sel, err := svc.NextChallenge(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if sel.Reason() != selector.EndMaxLength {
		t.Errorf("selection = %s, want ended(max-length)", sel)
	}
}

func TestService_RecordAnswer_PropagatesKnowledge(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()

	saved, elements, err := svc.RecordAnswer(ctx, assessment.Answer{
		ChallengeID:  "ch-web3",
		AssessmentID: 1,
		Result:       assessment.ResultOK,
	})
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == 0 {
		t.Error("saved answer has no ID")
	}
	if !saved.AnsweredAt.Equal(fixedNow) {
		t.Errorf("AnsweredAt = %v, want %v", saved.AnsweredAt, fixedNow)
	}
	if len(elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(elements))
	}
	if elements[0].SkillID != "web3" || elements[0].Source != knowledge.SourceDirect {
		t.Errorf("first element = %+v, want direct web3", elements[0])
	}
	for _, e := range elements {
		if e.Status != knowledge.StatusValidated || e.UserID != 42 || e.AnswerID != saved.ID {
			t.Errorf("unexpected element %+v", e)
		}
	}
	if got := len(f.elements[1]); got != 3 {
		t.Errorf("stored %d elements, want 3", got)
	}

	// A failed harder skill only adds what is not already known.
	_, elements, err = svc.RecordAnswer(ctx, assessment.Answer{
		ChallengeID:  "ch-web5",
		AssessmentID: 1,
		Result:       assessment.ResultKO,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(elements) != 2 {
		t.Fatalf("got %d elements, want 2 (web5, web6)", len(elements))
	}
	for _, e := range elements {
		if e.Status != knowledge.StatusInvalidated {
			t.Errorf("element %s status = %s, want invalidated", e.SkillID, e.Status)
		}
	}
}

func TestService_RecordAnswer_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid result", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _, err := svc.RecordAnswer(ctx, assessment.Answer{ChallengeID: "ch-web1", AssessmentID: 1, Result: "maybe"})
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("finished assessment", func(t *testing.T) {
		svc, f := newTestService(t)
		f.assessments[1].State = assessment.StateEndedBySupervisor
		_, _, err := svc.RecordAnswer(ctx, assessment.Answer{ChallengeID: "ch-web1", AssessmentID: 1, Result: assessment.ResultOK})
		if !errors.Is(err, assessment.ErrAssessmentEnded) {
			t.Errorf("err = %v, want ErrAssessmentEnded", err)
		}
	})

	t.Run("already answered", func(t *testing.T) {
		svc, f := newTestService(t)
		f.assessments[1].Answers = []assessment.Answer{{ChallengeID: "ch-web1", Result: assessment.ResultOK}}
		_, _, err := svc.RecordAnswer(ctx, assessment.Answer{ChallengeID: "ch-web1", AssessmentID: 1, Result: assessment.ResultOK})
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unknown challenge", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _, err := svc.RecordAnswer(ctx, assessment.Answer{ChallengeID: "ghost", AssessmentID: 1, Result: assessment.ResultOK})
		if !errors.Is(err, assessment.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("knowledge save failure keeps no answer", func(t *testing.T) {
		svc, f := newTestService(t)
		f.keSaveErr = errors.New("disk full")
		_, _, err := svc.RecordAnswer(ctx, assessment.Answer{ChallengeID: "ch-web2", AssessmentID: 1, Result: assessment.ResultOK})
		if err == nil {
			t.Fatal("expected error")
		}
		if n := len(f.assessments[1].Answers); n != 0 {
			t.Errorf("answers = %d, want 0", n)
		}
		if n := len(f.elements[1]); n != 0 {
			t.Errorf("knowledge elements = %d, want 0", n)
		}

		f.keSaveErr = nil
		_, elements, err := svc.RecordAnswer(ctx, assessment.Answer{ChallengeID: "ch-web2", AssessmentID: 1, Result: assessment.ResultOK})
		if err != nil {
			t.Fatalf("retry: %v", err)
		}
		if len(elements) == 0 {
			t.Error("retry produced no knowledge elements")
		}
	})

	t.Run("save failure", func(t *testing.T) {
		svc, f := newTestService(t)
		f.saveErr = errors.New("disk full")
		_, _, err := svc.RecordAnswer(ctx, assessment.Answer{ChallengeID: "ch-web1", AssessmentID: 1, Result: assessment.ResultOK})
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestService_RecordAnswer_ClassicPlacementStoresNoKnowledge(t *testing.T) {
	svc, f := newTestService(t)
	f.assessments[1].Type = assessment.TypePlacement

	_, elements, err := svc.RecordAnswer(context.Background(), assessment.Answer{
		ChallengeID:  "ch-web1",
		AssessmentID: 1,
		Result:       assessment.ResultOK,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(elements) != 0 || len(f.elements) != 0 {
		t.Errorf("expected no knowledge elements, got %v", elements)
	}
}
