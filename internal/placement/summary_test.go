package placement

import (
	"fmt"
	"testing"

	"github.com/abhisek/certify/internal/assessment"
)

func TestSummarize_PartialCertification(t *testing.T) {
	var challenges []assessment.CertificationChallenge
	for i := 0; i < 9; i++ {
		challenges = append(challenges, assessment.CertificationChallenge{ChallengeID: fmt.Sprintf("c%d", i)})
	}
	challenges[2].HasValidatedLiveAlert = true

	answers := []assessment.Answer{
		{ChallengeID: "c0", Result: assessment.ResultOK},
		{ChallengeID: "c1", Result: assessment.ResultKO},
		{ChallengeID: "c3", Result: assessment.ResultAband},
		{ChallengeID: "c4", Result: assessment.ResultPartially},
		{ChallengeID: "c5", Result: assessment.ResultPartially},
		{ChallengeID: "c6", Result: assessment.ResultTimedOut},
		{ChallengeID: "c7", Result: assessment.ResultTimedOut},
		{ChallengeID: "c8", Result: assessment.ResultFocusedOut},
	}

	s := Summarize(challenges, answers, 32)

	want := AnswerSummary{
		OK:                 1,
		KO:                 1,
		Aband:              1,
		Partially:          2,
		TimedOut:           2,
		FocusedOut:         1,
		ValidatedLiveAlert: 1,
		Answered:           9,
		Total:              32,
	}
	if s != want {
		t.Errorf("Summarize = %+v, want %+v", s, want)
	}
	if got := s.Progress(); got != "9/32" {
		t.Errorf("Progress = %q, want 9/32", got)
	}
}

func TestSummarize_LiveAlertOverridesAnswer(t *testing.T) {
	challenges := []assessment.CertificationChallenge{
		{ChallengeID: "c0", HasValidatedLiveAlert: true},
		{ChallengeID: "c1"},
	}
	answers := []assessment.Answer{{ChallengeID: "c0", Result: assessment.ResultKO}}

	s := Summarize(challenges, answers, 2)
	if s.KO != 0 || s.ValidatedLiveAlert != 1 || s.Answered != 1 {
		t.Errorf("Summarize = %+v", s)
	}
	if got := s.Progress(); got != "1/2" {
		t.Errorf("Progress = %q, want 1/2", got)
	}
}

func TestSummarize_TotalNeverBelowAnswered(t *testing.T) {
	challenges := []assessment.CertificationChallenge{{ChallengeID: "c0"}, {ChallengeID: "c1"}}
	answers := []assessment.Answer{
		{ChallengeID: "c0", Result: assessment.ResultOK},
		{ChallengeID: "c1", Result: assessment.ResultSkipped},
	}
	s := Summarize(challenges, answers, 0)
	if s.Total != 2 || s.Skipped != 1 {
		t.Errorf("Summarize = %+v, want total 2 skipped 1", s)
	}
}
