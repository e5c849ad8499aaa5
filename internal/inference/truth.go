// Package inference holds the truth-function algebra and the budget
// functions shared by the bags and the inference rules.
package inference

import (
	"narsgo/internal/entity"
)

// Revision pools the evidence of two judgments on the same content.
func Revision(v1, v2 *entity.Truth) *entity.Truth {
	w1 := entity.C2W(v1.Confidence())
	w2 := entity.C2W(v2.Confidence())
	w := w1 + w2
	f := (w1*v1.Frequency() + w2*v2.Frequency()) / w
	return entity.NewTruth(f, entity.W2C(w))
}

// Deduction: {M-->P, S-->M} |- S-->P.
func Deduction(v1, v2 *entity.Truth) *entity.Truth {
	f := entity.And(v1.Frequency(), v2.Frequency())
	c := entity.And(f, v1.Confidence(), v2.Confidence())
	return entity.NewTruth(f, c)
}

// DeductionReliance applies deduction against an analytic premise of
// confidence reliance.
func DeductionReliance(v1 *entity.Truth, reliance float64) *entity.Truth {
	f := v1.Frequency()
	c := entity.And(f, v1.Confidence(), reliance)
	return entity.NewAnalyticTruth(f, c)
}

// Analogy: {S-->M, M<->P} |- S-->P.
func Analogy(v1, v2 *entity.Truth) *entity.Truth {
	f := entity.And(v1.Frequency(), v2.Frequency())
	c := entity.And(v1.Confidence(), v2.Confidence(), v2.Frequency())
	return entity.NewTruth(f, c)
}

// Resemblance: {S<->M, M<->P} |- S<->P.
func Resemblance(v1, v2 *entity.Truth) *entity.Truth {
	f := entity.And(v1.Frequency(), v2.Frequency())
	c := entity.And(v1.Confidence(), v2.Confidence(), entity.Or(v1.Frequency(), v2.Frequency()))
	return entity.NewTruth(f, c)
}

// Abduction: {P-->M, S-->M} |- S-->P.
func Abduction(v1, v2 *entity.Truth) *entity.Truth {
	if v1.IsAnalytic() || v2.IsAnalytic() {
		return entity.NewTruth(0.5, 0)
	}
	w := entity.And(v2.Frequency(), v1.Confidence(), v2.Confidence())
	return entity.NewTruth(v1.Frequency(), entity.W2C(w))
}

// AbductionReliance applies abduction against an analytic premise of
// confidence reliance.
func AbductionReliance(v1 *entity.Truth, reliance float64) *entity.Truth {
	if v1.IsAnalytic() {
		return entity.NewTruth(0.5, 0)
	}
	w := entity.And(v1.Confidence(), reliance)
	return entity.NewAnalyticTruth(v1.Frequency(), entity.W2C(w))
}

// Induction: {M-->P, M-->S} |- S-->P.
func Induction(v1, v2 *entity.Truth) *entity.Truth { return Abduction(v2, v1) }

// Exemplification: {P-->M, M-->S} |- S-->P.
func Exemplification(v1, v2 *entity.Truth) *entity.Truth {
	if v1.IsAnalytic() || v2.IsAnalytic() {
		return entity.NewTruth(0.5, 0)
	}
	w := entity.And(v1.Frequency(), v2.Frequency(), v1.Confidence(), v2.Confidence())
	return entity.NewTruth(1, entity.W2C(w))
}

// Comparison: {M-->S, M-->P} |- S<->P.
func Comparison(v1, v2 *entity.Truth) *entity.Truth {
	f0 := entity.Or(v1.Frequency(), v2.Frequency())
	f := 0.0
	if f0 != 0 {
		f = entity.And(v1.Frequency(), v2.Frequency()) / f0
	}
	w := entity.And(f0, v1.Confidence(), v2.Confidence())
	return entity.NewTruth(f, entity.W2C(w))
}

// Conversion: {P-->S} |- S-->P.
func Conversion(v1 *entity.Truth) *entity.Truth {
	w := entity.And(v1.Frequency(), v1.Confidence())
	return entity.NewTruth(1, entity.W2C(w))
}

// Contraposition: {(--,S) ==> P} |- (--,P) ==> S.
func Contraposition(v1 *entity.Truth) *entity.Truth {
	w := entity.And(1-v1.Frequency(), v1.Confidence())
	return entity.NewTruth(0, entity.W2C(w))
}

// Negation flips frequency.
func Negation(v1 *entity.Truth) *entity.Truth {
	return entity.NewTruth(1-v1.Frequency(), v1.Confidence())
}

// Intersection: f = f1*f2, c = c1*c2.
func Intersection(v1, v2 *entity.Truth) *entity.Truth {
	return entity.NewTruth(entity.And(v1.Frequency(), v2.Frequency()), entity.And(v1.Confidence(), v2.Confidence()))
}

// Union: f = or(f1, f2), c = c1*c2.
func Union(v1, v2 *entity.Truth) *entity.Truth {
	return entity.NewTruth(entity.Or(v1.Frequency(), v2.Frequency()), entity.And(v1.Confidence(), v2.Confidence()))
}

// Difference: f = f1*(1-f2), c = c1*c2.
func Difference(v1, v2 *entity.Truth) *entity.Truth {
	return entity.NewTruth(entity.And(v1.Frequency(), 1-v2.Frequency()), entity.And(v1.Confidence(), v2.Confidence()))
}

// ReduceDisjunction: {A || B, (--,B)} |- A.
func ReduceDisjunction(v1, v2 *entity.Truth) *entity.Truth {
	return DeductionReliance(Intersection(v1, Negation(v2)), 1)
}

// ReduceConjunction: {(--,(A && B)), A} |- (--,B).
func ReduceConjunction(v1, v2 *entity.Truth) *entity.Truth {
	return Negation(DeductionReliance(Intersection(Negation(v1), v2), 1))
}

// ReduceConjunctionNeg: {(--,(A && (--,B))), A} |- B.
func ReduceConjunctionNeg(v1, v2 *entity.Truth) *entity.Truth {
	return ReduceConjunction(v1, Negation(v2))
}

// AnonymousAnalogy is analogy against a premise weakened as if its
// evidence were a single observation.
func AnonymousAnalogy(v1, v2 *entity.Truth) *entity.Truth {
	v0 := entity.NewTruth(v2.Frequency(), entity.W2C(v2.Confidence()))
	return Analogy(v1, v0)
}

// DesireStrong derives a desire through a strong link.
func DesireStrong(v1, v2 *entity.Truth) *entity.Truth {
	f := entity.And(v1.Frequency(), v2.Frequency())
	c := entity.And(v1.Confidence(), v2.Confidence(), v2.Frequency())
	return entity.NewTruth(f, c)
}

// DesireWeak derives a desire through a weak link.
func DesireWeak(v1, v2 *entity.Truth) *entity.Truth {
	f := entity.And(v1.Frequency(), v2.Frequency())
	c := entity.And(v1.Confidence(), v2.Confidence(), v2.Frequency(), entity.W2C(1))
	return entity.NewTruth(f, c)
}

// DesireDed derives a desire by deduction.
func DesireDed(v1, v2 *entity.Truth) *entity.Truth {
	f := entity.And(v1.Frequency(), v2.Frequency())
	return entity.NewTruth(f, entity.And(v1.Confidence(), v2.Confidence()))
}

// DesireInd derives a desire by induction.
func DesireInd(v1, v2 *entity.Truth) *entity.Truth {
	w := entity.And(v2.Frequency(), v1.Confidence(), v2.Confidence())
	return entity.NewTruth(v1.Frequency(), entity.W2C(w))
}
