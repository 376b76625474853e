package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/certify/internal/logger"
)

// ErrDuplicate is returned when an assessment completion was already dispatched.
var ErrDuplicate = errors.New("duplicate completion signal")

// Handler scores a completed assessment. A nil event means nothing is
// published.
type Handler interface {
	HandleAssessmentCompleted(ctx context.Context, evt AssessmentCompleted) (*CertificationScoringCompleted, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, evt AssessmentCompleted) (*CertificationScoringCompleted, error)

func (f HandlerFunc) HandleAssessmentCompleted(ctx context.Context, evt AssessmentCompleted) (*CertificationScoringCompleted, error) {
	return f(ctx, evt)
}

// Subscriber receives published scoring outcomes.
type Subscriber func(ctx context.Context, evt CertificationScoringCompleted)

// Dispatcher delivers each assessment completion to the handler at most once
// and fans out what the handler emits.
type Dispatcher struct {
	handler Handler
	guard   Guard
	log     *logger.Logger

	mu          sync.RWMutex
	subscribers []Subscriber
}

// NewDispatcher creates a Dispatcher. A nil guard selects a MemoryGuard.
func NewDispatcher(h Handler, g Guard, log *logger.Logger) *Dispatcher {
	if g == nil {
		g = NewMemoryGuard()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{handler: h, guard: g, log: log}
}

// Subscribe registers s for every published event.
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, s)
}

// Dispatch routes evt to the handler. A second signal for the same
// assessment returns ErrDuplicate. When the handler fails the claim is
// released so the signal can be retried.
func (d *Dispatcher) Dispatch(ctx context.Context, evt AssessmentCompleted) (*CertificationScoringCompleted, error) {
	claimed, err := d.guard.Claim(ctx, evt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("claim assessment %d: %w", evt.AssessmentID, err)
	}
	if !claimed {
		d.log.Warn("duplicate completion signal dropped",
			"event_id", evt.ID,
			"assessment_id", evt.AssessmentID,
		)
		return nil, fmt.Errorf("assessment %d: %w", evt.AssessmentID, ErrDuplicate)
	}

	out, err := d.handler.HandleAssessmentCompleted(ctx, evt)
	if err != nil {
		if rerr := d.guard.Release(ctx, evt.AssessmentID); rerr != nil {
			d.log.Error("release claim failed", "assessment_id", evt.AssessmentID, "error", rerr.Error())
		}
		return nil, err
	}
	if out == nil {
		return nil, nil
	}

	d.mu.RLock()
	subs := append([]Subscriber(nil), d.subscribers...)
	d.mu.RUnlock()
	for _, s := range subs {
		s(ctx, *out)
	}
	return out, nil
}
