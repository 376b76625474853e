package placement

import (
	"fmt"

	"github.com/abhisek/certify/internal/assessment"
)

// AnswerSummary tallies how the administered challenges of a test were
// answered. Answered counts challenges that received an answer or whose live
// alert was validated; Total is the planned length of the test.
type AnswerSummary struct {
	OK                 int
	KO                 int
	Aband              int
	Partially          int
	TimedOut           int
	FocusedOut         int
	Skipped            int
	ValidatedLiveAlert int
	Answered           int
	Total              int
}

// Summarize tallies answers against the administered challenges. A challenge
// with a validated live alert counts once as such, whatever its answer.
func Summarize(challenges []assessment.CertificationChallenge, answers []assessment.Answer, total int) AnswerSummary {
	byChallenge := make(map[string]assessment.Answer, len(answers))
	for _, a := range answers {
		byChallenge[a.ChallengeID] = a
	}

	s := AnswerSummary{Total: total}
	for _, c := range challenges {
		if c.HasValidatedLiveAlert {
			s.ValidatedLiveAlert++
			s.Answered++
			continue
		}
		a, ok := byChallenge[c.ChallengeID]
		if !ok {
			continue
		}
		s.Answered++
		switch a.Result {
		case assessment.ResultOK:
			s.OK++
		case assessment.ResultKO:
			s.KO++
		case assessment.ResultAband:
			s.Aband++
		case assessment.ResultPartially:
			s.Partially++
		case assessment.ResultTimedOut:
			s.TimedOut++
		case assessment.ResultFocusedOut:
			s.FocusedOut++
		case assessment.ResultSkipped:
			s.Skipped++
		}
	}
	if s.Total < s.Answered {
		s.Total = len(challenges)
	}
	return s
}

// Progress renders "answered/total".
func (s AnswerSummary) Progress() string {
	return fmt.Sprintf("%d/%d", s.Answered, s.Total)
}
