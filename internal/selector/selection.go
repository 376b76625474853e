package selector

import (
	"fmt"

	"github.com/abhisek/certify/internal/assessment"
)

// EndReason explains why no challenge was selected.
type EndReason string

const (
	EndMaxLength     EndReason = "max-length"
	EndNoCandidate   EndReason = "no-candidate"
	EndNoInformation EndReason = "no-information"
	EndFinished      EndReason = "finished"
)

// Selection is either a selected challenge or the end of the assessment.
// The zero value is not a valid Selection; use Selected or Ended.
type Selection struct {
	challenge assessment.Challenge
	ended     bool
	reason    EndReason
}

// Selected wraps the challenge to present next.
func Selected(c assessment.Challenge) Selection {
	return Selection{challenge: c}
}

// Ended signals that the assessment should end.
func Ended(reason EndReason) Selection {
	return Selection{ended: true, reason: reason}
}

// Challenge returns the selected challenge, or false when the assessment ended.
func (s Selection) Challenge() (assessment.Challenge, bool) {
	if s.ended {
		return assessment.Challenge{}, false
	}
	return s.challenge, true
}

// Ended reports whether the assessment should end.
func (s Selection) Ended() bool { return s.ended }

// Reason returns why the assessment ended, or "" when a challenge was selected.
func (s Selection) Reason() EndReason { return s.reason }

// Err returns an error wrapping assessment.ErrAssessmentEnded when the
// assessment ended, nil otherwise.
func (s Selection) Err() error {
	if !s.ended {
		return nil
	}
	return fmt.Errorf("%w: %s", assessment.ErrAssessmentEnded, s.reason)
}

func (s Selection) String() string {
	if s.ended {
		return fmt.Sprintf("ended(%s)", s.reason)
	}
	return fmt.Sprintf("selected(%s)", s.challenge.ID)
}
