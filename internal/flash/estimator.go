// Package flash estimates a candidate's ability from item responses and
// converts the estimate into a certification score.
package flash

import (
	"math"
)

const (
	// DefaultEstimatedLevel is the level assumed before any answer.
	DefaultEstimatedLevel = 0.0
	// DefaultErrorRate is reported when there is nothing to estimate from.
	DefaultErrorRate = 5.0

	startOfSamples = -9.0
	stepOfSamples  = 18.0 / 80.0
	sampleCount    = 81
)

// Item is an answered challenge as seen by the estimator.
type Item struct {
	ChallengeID  string
	Discriminant float64
	Difficulty   float64
	Correct      bool
}

// Params are the knobs controlling the refinement.
type Params struct {
	// VariationPercent limits how far one step can move the estimate.
	// Zero disables the limit.
	VariationPercent float64
	// VariationPercentUntil stops applying the limit once that many answers
	// have been consumed. Zero applies it to every step.
	VariationPercentUntil int
	// DoubleMeasuresUntil makes each step consume two answers while fewer
	// than that many answers have been consumed.
	DoubleMeasuresUntil int
}

// Estimation is the outcome of Estimate.
type Estimation struct {
	EstimatedLevel float64
	ErrorRate      float64
}

var samples = func() [sampleCount]float64 {
	var s [sampleCount]float64
	for i := range s {
		s[i] = startOfSamples + float64(i)*stepOfSamples
	}
	return s
}()

var prior = func() [sampleCount]float64 {
	var p [sampleCount]float64
	for i, x := range samples {
		p[i] = math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
	}
	return p
}()

// Estimate refines initialLevel answer by answer. Each step multiplies the
// likelihood over a fixed grid of levels by the probability of the observed
// responses, combines it with a standard normal prior and moves the estimate
// to the posterior mean, limited by the variation settings. The result is a
// pure function of its inputs.
func Estimate(items []Item, initialLevel float64, p Params) Estimation {
	if len(items) == 0 {
		return Estimation{EstimatedLevel: DefaultEstimatedLevel, ErrorRate: DefaultErrorRate}
	}

	var likelihood [sampleCount]float64
	for i := range likelihood {
		likelihood[i] = 1
	}
	var posterior [sampleCount]float64

	level := initialLevel
	consumed := 0
	for consumed < len(items) {
		step := 1
		if consumed < p.DoubleMeasuresUntil && consumed+1 < len(items) {
			step = 2
		}

		for _, it := range items[consumed : consumed+step] {
			for i, x := range samples {
				prob := Probability(x, it.Discriminant, it.Difficulty)
				if !it.Correct {
					prob = 1 - prob
				}
				likelihood[i] *= prob
			}
		}

		posterior = normalizedPosterior(likelihood)
		next := posteriorMean(posterior)
		if p.VariationPercent > 0 && (p.VariationPercentUntil == 0 || consumed < p.VariationPercentUntil) {
			next = limitVariation(level, next, p.VariationPercent)
		}
		level = next
		consumed += step
	}

	return Estimation{
		EstimatedLevel: level,
		ErrorRate:      errorRate(level, posterior),
	}
}

// Probability returns the chance that a candidate of the given level answers
// an item correctly under the two-parameter logistic model.
func Probability(level, discriminant, difficulty float64) float64 {
	return 1 / (1 + math.Exp(discriminant*(difficulty-level)))
}

func normalizedPosterior(likelihood [sampleCount]float64) [sampleCount]float64 {
	var out [sampleCount]float64
	sum := 0.0
	for i := range likelihood {
		out[i] = likelihood[i] * prior[i]
		sum += out[i]
	}
	if sum == 0 {
		// Every sample underflowed; fall back to the prior alone.
		var flat [sampleCount]float64
		for i := range flat {
			flat[i] = 1
		}
		return normalizedPosterior(flat)
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func posteriorMean(posterior [sampleCount]float64) float64 {
	mean := 0.0
	for i, x := range samples {
		mean += x * posterior[i]
	}
	return mean
}

func errorRate(level float64, posterior [sampleCount]float64) float64 {
	variance := 0.0
	for i, x := range samples {
		d := x - level
		variance += d * d * posterior[i]
	}
	return math.Sqrt(variance)
}

// limitVariation bounds the move from previous to next by
// max(|previous|*percent, percent), so an estimate starting at 0 can move.
func limitVariation(previous, next, percent float64) float64 {
	maxDelta := math.Max(math.Abs(previous)*percent, percent)
	if math.Abs(next-previous) <= maxDelta {
		return next
	}
	if next > previous {
		return previous + maxDelta
	}
	return previous - maxDelta
}
