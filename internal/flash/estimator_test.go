package flash

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(correct ...bool) []Item {
	out := make([]Item, len(correct))
	for i, c := range correct {
		out[i] = Item{
			ChallengeID:  string(rune('a' + i)),
			Discriminant: 1.5,
			Difficulty:   -1 + float64(i%5)*0.5,
			Correct:      c,
		}
	}
	return out
}

func TestEstimate_NoAnswers(t *testing.T) {
	got := Estimate(nil, 1.2, Params{})
	assert.Equal(t, DefaultEstimatedLevel, got.EstimatedLevel)
	assert.Equal(t, DefaultErrorRate, got.ErrorRate)
}

func TestEstimate_DirectionFollowsCorrectness(t *testing.T) {
	allRight := Estimate(items(true, true, true, true, true, true), 0, Params{})
	allWrong := Estimate(items(false, false, false, false, false, false), 0, Params{})
	mixed := Estimate(items(true, false, true, false, true, false), 0, Params{})

	assert.Greater(t, allRight.EstimatedLevel, 0.0)
	assert.Less(t, allWrong.EstimatedLevel, 0.0)
	assert.Greater(t, allRight.EstimatedLevel, mixed.EstimatedLevel)
	assert.Less(t, allWrong.EstimatedLevel, mixed.EstimatedLevel)
}

func TestEstimate_MoreCorrectNeverLowers(t *testing.T) {
	prev := math.Inf(-1)
	for k := 0; k <= 8; k++ {
		answers := make([]bool, 8)
		for i := 0; i < k; i++ {
			answers[i] = true
		}
		got := Estimate(items(answers...), 0, Params{}).EstimatedLevel
		assert.GreaterOrEqual(t, got, prev, "k=%d", k)
		prev = got
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	in := items(true, false, true, true, false, true, true)
	p := Params{VariationPercent: 0.5, VariationPercentUntil: 4, DoubleMeasuresUntil: 2}
	a := Estimate(in, 0, p)
	b := Estimate(in, 0, p)
	assert.Equal(t, math.Float64bits(a.EstimatedLevel), math.Float64bits(b.EstimatedLevel))
	assert.Equal(t, math.Float64bits(a.ErrorRate), math.Float64bits(b.ErrorRate))
}

func TestEstimate_VariationLimitsFirstStep(t *testing.T) {
	one := items(true)
	free := Estimate(one, 0, Params{})
	limited := Estimate(one, 0, Params{VariationPercent: 0.1})

	require.Greater(t, free.EstimatedLevel, 0.1)
	assert.InDelta(t, 0.1, limited.EstimatedLevel, 1e-12)
}

func TestEstimate_VariationUntilStopsLimiting(t *testing.T) {
	in := items(true, true, true, true)
	limitedAll := Estimate(in, 0, Params{VariationPercent: 0.05})
	limitedFirst := Estimate(in, 0, Params{VariationPercent: 0.05, VariationPercentUntil: 1})
	assert.Greater(t, limitedFirst.EstimatedLevel, limitedAll.EstimatedLevel)
}

func TestEstimate_DoubleMeasuresConsumesPairs(t *testing.T) {
	in := items(true, true)
	// One paired step limited once versus two single steps limited twice.
	paired := Estimate(in, 0, Params{VariationPercent: 0.1, DoubleMeasuresUntil: 2})
	single := Estimate(in, 0, Params{VariationPercent: 0.1})
	assert.InDelta(t, 0.1, paired.EstimatedLevel, 1e-12)
	assert.InDelta(t, 0.2, single.EstimatedLevel, 1e-12)
}

func TestEstimate_ErrorRateShrinksWithEvidence(t *testing.T) {
	few := Estimate(items(true, false), 0, Params{})
	many := Estimate(items(true, false, true, false, true, false, true, false, true, false), 0, Params{})
	assert.Less(t, many.ErrorRate, few.ErrorRate)
	assert.Greater(t, many.ErrorRate, 0.0)
}

func TestProbability(t *testing.T) {
	assert.InDelta(t, 0.5, Probability(1, 2, 1), 1e-12)
	assert.Greater(t, Probability(3, 1, 0), 0.9)
	assert.Less(t, Probability(-3, 1, 0), 0.1)
}

func TestLimitVariation(t *testing.T) {
	tests := []struct {
		name           string
		prev, next, pc float64
		want           float64
	}{
		{"small move kept", 1, 1.2, 0.5, 1.2},
		{"upward capped", 2, 4, 0.5, 3},
		{"downward capped", -2, -4, 0.5, -3},
		{"floor at percent from zero", 0, 2, 0.5, 0.5},
	}
	for _, tt := range tests {
		tt := tt // per-iteration copy (go directive is 1.21)
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, limitVariation(tt.prev, tt.next, tt.pc), 1e-12)
		})
	}
}
