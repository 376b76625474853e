package assessment

import "time"

// AnswerResult is the correction status of an answer.
type AnswerResult string

const (
	ResultOK         AnswerResult = "ok"
	ResultKO         AnswerResult = "ko"
	ResultPartially  AnswerResult = "partially"
	ResultTimedOut   AnswerResult = "timedout"
	ResultFocusedOut AnswerResult = "focusedOut"
	ResultAband      AnswerResult = "aband"
	ResultSkipped    AnswerResult = "skipped"
)

// Valid reports whether r is a known result.
func (r AnswerResult) Valid() bool {
	switch r {
	case ResultOK, ResultKO, ResultPartially, ResultTimedOut, ResultFocusedOut, ResultAband, ResultSkipped:
		return true
	}
	return false
}

// Answer is the learner response to one presented challenge.
type Answer struct {
	ID           int64
	ChallengeID  string
	AssessmentID int64
	Result       AnswerResult
	Value        string
	AnsweredAt   time.Time
}

// IsOK reports whether the answer counts as correct.
func (a Answer) IsOK() bool {
	return a.Result == ResultOK
}
