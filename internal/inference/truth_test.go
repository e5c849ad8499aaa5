package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"narsgo/internal/entity"
)

func tv(f, c float64) *entity.Truth { return entity.NewTruth(f, c) }

func assertTruth(t *testing.T, want, got *entity.Truth) {
	t.Helper()
	assert.InDelta(t, want.Frequency(), got.Frequency(), 1e-6, "frequency")
	assert.InDelta(t, want.Confidence(), got.Confidence(), 1e-6, "confidence")
}

func TestRevisionIsCommutative(t *testing.T) {
	pairs := [][2]*entity.Truth{
		{tv(1, 0.9), tv(0, 0.9)},
		{tv(0.3, 0.2), tv(0.8, 0.6)},
		{tv(0.5, 0.01), tv(1, 0.99)},
	}
	for _, p := range pairs {
		assertTruth(t, Revision(p[0], p[1]), Revision(p[1], p[0]))
	}
}

func TestRevisionPoolsEvidence(t *testing.T) {
	got := Revision(tv(1, 0.9), tv(0, 0.9))
	assert.InDelta(t, 0.5, got.Frequency(), 1e-9)
	// w = 9 + 9 = 18
	assert.InDelta(t, 18.0/19.0, got.Confidence(), 1e-9)

	strong := Revision(tv(1, 0.9), tv(1, 0.9))
	assert.Greater(t, strong.Confidence(), 0.9)
}

func TestClosedForms(t *testing.T) {
	v1, v2 := tv(1, 0.9), tv(0.8, 0.5)
	tests := []struct {
		name string
		got  *entity.Truth
		want *entity.Truth
	}{
		{"deduction", Deduction(v1, v2), tv(0.8, 0.8*0.9*0.5)},
		{"analogy", Analogy(v1, v2), tv(0.8, 0.9*0.5*0.8)},
		{"resemblance", Resemblance(v1, v2), tv(0.8, 0.9*0.5*1)},
		{"abduction", Abduction(v1, v2), tv(1, entity.W2C(0.8*0.9*0.5))},
		{"induction", Induction(v1, v2), tv(0.8, entity.W2C(1*0.9*0.5))},
		{"exemplification", Exemplification(v1, v2), tv(1, entity.W2C(0.8*0.9*0.5))},
		{"comparison", Comparison(v1, v2), tv(0.8, entity.W2C(0.9*0.5))},
		{"conversion", Conversion(v2), tv(1, entity.W2C(0.8*0.5))},
		{"contraposition", Contraposition(v2), tv(0, entity.W2C(0.2*0.5))},
		{"negation", Negation(v2), tv(0.2, 0.5)},
		{"intersection", Intersection(v1, v2), tv(0.8, 0.45)},
		{"union", Union(v1, v2), tv(1, 0.45)},
		{"difference", Difference(v1, v2), tv(0.2, 0.45)},
		{"anonymous analogy", AnonymousAnalogy(v1, v2), tv(0.8, 0.9*entity.W2C(0.5)*0.8)},
		{"desire ded", DesireDed(v1, v2), tv(0.8, 0.45)},
		{"desire ind", DesireInd(v1, v2), tv(1, entity.W2C(0.8*0.9*0.5))},
		{"desire strong", DesireStrong(v1, v2), tv(0.8, 0.9*0.5*0.8)},
		{"desire weak", DesireWeak(v1, v2), tv(0.8, 0.9*0.5*0.8*0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTruth(t, tt.want, tt.got)
		})
	}
}

func TestDeductionRelianceIsAnalytic(t *testing.T) {
	got := DeductionReliance(tv(1, 0.9), entity.Reliance)
	assert.True(t, got.IsAnalytic())
	assert.InDelta(t, 0.81, got.Confidence(), 1e-9)

	// Analytic premises carry no evidence for weak rules.
	assert.Zero(t, Abduction(got, tv(1, 0.9)).Confidence())
	assert.Zero(t, Exemplification(tv(1, 0.9), got).Confidence())
}

func TestReduceJunctions(t *testing.T) {
	// {(||,A,B). B is false} |- A
	got := ReduceDisjunction(tv(1, 0.9), tv(0, 0.9))
	assert.InDelta(t, 1, got.Frequency(), 1e-9)
	assert.InDelta(t, 0.81, got.Confidence(), 1e-9)

	// {(--,(&&,A,B)). A} |- (--,B)
	got = ReduceConjunction(tv(0, 0.9), tv(1, 0.9))
	assert.InDelta(t, 0, got.Frequency(), 1e-9)
	assert.InDelta(t, 0.81, got.Confidence(), 1e-9)

	got = ReduceConjunctionNeg(tv(0, 0.9), tv(0, 0.9))
	assert.InDelta(t, 0, got.Frequency(), 1e-9)
}

func TestComparisonOfZeroFrequencies(t *testing.T) {
	got := Comparison(tv(0, 0.9), tv(0, 0.9))
	assert.Zero(t, got.Frequency())
	assert.Zero(t, got.Confidence())
}
