package assessment

import (
	"errors"
	"fmt"
)

// ErrAssessmentEnded signals that no further challenge can be selected.
// It is an expected, terminal condition rather than a failure.
var ErrAssessmentEnded = errors.New("assessment ended")

// ErrNotFound is wrapped by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// CertificationComputeError indicates that classic scoring could not produce
// a valid result. It is recovered by persisting an error result.
type CertificationComputeError struct {
	CourseID int64
	Reason   string
	Err      error
}

func (e *CertificationComputeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("certification %d: compute error: %s: %v", e.CourseID, e.Reason, e.Err)
	}
	return fmt.Sprintf("certification %d: compute error: %s", e.CourseID, e.Reason)
}

func (e *CertificationComputeError) Unwrap() error { return e.Err }

// IsComputeError reports whether err carries a CertificationComputeError.
func IsComputeError(err error) bool {
	var ce *CertificationComputeError
	return errors.As(err, &ce)
}
