package entity

import (
	"fmt"
	"math"
)

// Truth is a (frequency, confidence) pair. Confidence stays below 1.
type Truth struct {
	frequency  float64
	confidence float64
	analytic   bool
}

// NewTruth clamps f into [0,1] and c into [0, MaxConfidence].
func NewTruth(f, c float64) *Truth {
	return &Truth{frequency: clamp01(f), confidence: math.Min(clamp01(c), MaxConfidence)}
}

// NewAnalyticTruth marks a truth produced by a structural rule.
func NewAnalyticTruth(f, c float64) *Truth {
	t := NewTruth(f, c)
	t.analytic = true
	return t
}

func (t *Truth) Frequency() float64  { return t.frequency }
func (t *Truth) Confidence() float64 { return t.confidence }
func (t *Truth) IsAnalytic() bool    { return t.analytic }

// Expectation is c*(f-0.5)+0.5.
func (t *Truth) Expectation() float64 {
	return t.confidence*(t.frequency-0.5) + 0.5
}

// ExpDifAbs is the absolute expectation difference.
func (t *Truth) ExpDifAbs(o *Truth) float64 {
	return math.Abs(t.Expectation() - o.Expectation())
}

// IsNegative reports frequency below one half.
func (t *Truth) IsNegative() bool { return t.frequency < 0.5 }

// Equal compares within TruthEpsilon.
func (t *Truth) Equal(o *Truth) bool {
	if t == nil || o == nil {
		return t == o
	}
	return math.Abs(t.frequency-o.frequency) < TruthEpsilon &&
		math.Abs(t.confidence-o.confidence) < TruthEpsilon
}

// Clone returns a copy.
func (t *Truth) Clone() *Truth {
	c := *t
	return &c
}

func (t *Truth) String() string {
	return fmt.Sprintf("%%%.2f;%.2f%%", t.frequency, t.confidence)
}
