package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler(calls *int32, out *CertificationScoringCompleted, err error) Handler {
	return HandlerFunc(func(_ context.Context, _ AssessmentCompleted) (*CertificationScoringCompleted, error) {
		atomic.AddInt32(calls, 1)
		return out, err
	})
}

func TestNewAssessmentCompleted_UniqueIDs(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewAssessmentCompleted(1, 2, 3, at)
	b := NewAssessmentCompleted(1, 2, 3, at)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(3), a.CertificationCourseID)
}

func TestDispatcher_PublishesToSubscribers(t *testing.T) {
	var calls int32
	want := &CertificationScoringCompleted{UserID: 2, CertificationCourseID: 3, ReproducibilityRate: 87.5}
	d := NewDispatcher(countingHandler(&calls, want, nil), nil, nil)

	var got []CertificationScoringCompleted
	d.Subscribe(func(_ context.Context, evt CertificationScoringCompleted) { got = append(got, evt) })

	out, err := d.Dispatch(context.Background(), AssessmentCompleted{AssessmentID: 1})
	require.NoError(t, err)
	assert.Equal(t, want, out)
	assert.Equal(t, []CertificationScoringCompleted{*want}, got)
}

func TestDispatcher_DropsDuplicateSignal(t *testing.T) {
	var calls int32
	d := NewDispatcher(countingHandler(&calls, &CertificationScoringCompleted{}, nil), nil, nil)
	ctx := context.Background()

	_, err := d.Dispatch(ctx, AssessmentCompleted{AssessmentID: 1})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, AssessmentCompleted{AssessmentID: 1})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = d.Dispatch(ctx, AssessmentCompleted{AssessmentID: 2})
	assert.NoError(t, err)
}

func TestDispatcher_ConcurrentDuplicatesHandledOnce(t *testing.T) {
	var calls int32
	d := NewDispatcher(countingHandler(&calls, nil, nil), NewMemoryGuard(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Dispatch(context.Background(), AssessmentCompleted{AssessmentID: 9})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDispatcher_FailureReleasesClaim(t *testing.T) {
	var calls int32
	boom := errors.New("boom")
	d := NewDispatcher(countingHandler(&calls, nil, boom), nil, nil)
	ctx := context.Background()

	_, err := d.Dispatch(ctx, AssessmentCompleted{AssessmentID: 1})
	assert.ErrorIs(t, err, boom)
	_, err = d.Dispatch(ctx, AssessmentCompleted{AssessmentID: 1})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDispatcher_NilOutcomePublishesNothing(t *testing.T) {
	var calls int32
	d := NewDispatcher(countingHandler(&calls, nil, nil), nil, nil)
	published := false
	d.Subscribe(func(context.Context, CertificationScoringCompleted) { published = true })

	out, err := d.Dispatch(context.Background(), AssessmentCompleted{AssessmentID: 5})
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, published)
}

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	ok, err := g.Claim(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Claim(ctx, 1)
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, 1))
	ok, _ = g.Claim(ctx, 1)
	assert.True(t, ok)
}
