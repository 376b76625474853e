package flash

import (
	"fmt"
	"math"
)

// Interval is a half-open range of estimated levels [Lower, Upper).
type Interval struct {
	Lower float64
	Upper float64
}

// Scale converts estimated levels to scores. It is immutable configuration
// passed to scoring rather than a package-level table.
type Scale struct {
	Intervals         []Interval // ascending, contiguous
	PointsPerInterval int
	PointsPerLevel    int
	MaxReachableLevel int
}

// DefaultScale returns the level to score mapping used in production:
// eight intervals of 128 points, capped at level 7 (896 points).
func DefaultScale() Scale {
	return Scale{
		Intervals: []Interval{
			{Lower: -5.12, Upper: -2.6},
			{Lower: -2.6, Upper: -1.7},
			{Lower: -1.7, Upper: -0.9},
			{Lower: -0.9, Upper: 0},
			{Lower: 0, Upper: 0.9},
			{Lower: 0.9, Upper: 1.7},
			{Lower: 1.7, Upper: 2.6},
			{Lower: 2.6, Upper: 5.12},
		},
		PointsPerInterval: 128,
		PointsPerLevel:    128,
		MaxReachableLevel: 7,
	}
}

// Validate checks that intervals are ascending and contiguous.
func (s Scale) Validate() error {
	if len(s.Intervals) == 0 {
		return fmt.Errorf("scale has no intervals")
	}
	if s.PointsPerInterval <= 0 || s.PointsPerLevel <= 0 || s.MaxReachableLevel <= 0 {
		return fmt.Errorf("scale points and max level must be > 0")
	}
	for i, iv := range s.Intervals {
		if iv.Upper <= iv.Lower {
			return fmt.Errorf("interval %d: upper %v must be > lower %v", i, iv.Upper, iv.Lower)
		}
		if i > 0 && iv.Lower != s.Intervals[i-1].Upper {
			return fmt.Errorf("interval %d: lower %v does not continue previous upper %v",
				i, iv.Lower, s.Intervals[i-1].Upper)
		}
	}
	return nil
}

// Ceiling is the highest score a certification can award.
func (s Scale) Ceiling() int {
	return s.MaxReachableLevel * s.PointsPerLevel
}

// RawScore maps a level onto the scale without capping. Levels below the
// first interval score 0; levels past the last score the full scale.
func (s Scale) RawScore(level float64) int {
	first := s.Intervals[0]
	last := s.Intervals[len(s.Intervals)-1]
	if level < first.Lower {
		return 0
	}
	if level >= last.Upper {
		return len(s.Intervals) * s.PointsPerInterval
	}
	for k, iv := range s.Intervals {
		if level >= iv.Lower && level < iv.Upper {
			fraction := (level - iv.Lower) / (iv.Upper - iv.Lower)
			return int(math.Floor((float64(k) + fraction) * float64(s.PointsPerInterval)))
		}
	}
	return 0
}

// Cap limits score to the ceiling. Cap(Cap(x)) == Cap(x).
func (s Scale) Cap(score int) int {
	if score < 0 {
		return 0
	}
	if c := s.Ceiling(); score > c {
		return c
	}
	return score
}

// Score maps a level to its capped score.
func (s Scale) Score(level float64) int {
	return s.Cap(s.RawScore(level))
}

// Degrade lowers score in proportion to the share of the test the candidate
// left unanswered: floor(score * answered / maximum).
func Degrade(score, answered, maximum int) int {
	if maximum <= 0 || answered >= maximum {
		return score
	}
	if answered <= 0 {
		return 0
	}
	return score * answered / maximum
}
