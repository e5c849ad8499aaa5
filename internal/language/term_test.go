package language

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func w(name string) *Term { return MakeWord(name) }

func names(ts []*Term) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name()
	}
	return out
}

func TestStatementNames(t *testing.T) {
	tests := []struct {
		name string
		term *Term
		want string
	}{
		{"inheritance", Make(OpInheritance, w("a"), w("b")), "<a --> b>"},
		{"similarity sorted", Make(OpSimilarity, w("b"), w("a")), "<a <-> b>"},
		{"equivalence sorted", Make(OpEquivalence, w("y"), w("x")), "<x <=> y>"},
		{"ext set", Make(OpSetExt, w("b"), w("a"), w("b")), "{a,b}"},
		{"int set", Make(OpSetInt, w("red")), "[red]"},
		{"product", Make(OpProduct, w("a"), w("b")), "(*,a,b)"},
		{"negation", Make(OpNegation, w("a")), "(--,a)"},
		{"image", MakeImage(OpImageExt, []*Term{w("a"), w("rel")}, 1), "(/,rel,a,_)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.term)
			assert.Equal(t, tt.want, tt.term.Name())
		})
	}
}

func TestStructuralEqualityAndHash(t *testing.T) {
	a := Make(OpConjunction, w("x"), w("y"))
	b := Make(OpConjunction, w("y"), w("x"))
	require.NotSame(t, a, b)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, 0, a.Compare(b))
}

func TestComplexityAndVariables(t *testing.T) {
	s := Make(OpInheritance, Make(OpProduct, w("a"), MakeVariable(VarIndependent, "x")), w("r"))
	assert.Equal(t, 5, s.Complexity())
	assert.False(t, s.IsConstant())
	assert.True(t, s.HasVar(VarIndependent))
	assert.False(t, s.HasVar(VarDependent))
	assert.Equal(t, 1, w("a").Complexity())
	assert.Nil(t, MakeWord("$"))
	assert.True(t, MakeWord("#y").IsVariable())
}

func TestNormalization(t *testing.T) {
	t.Run("nested conjunction flattens", func(t *testing.T) {
		inner := Make(OpConjunction, w("a"), w("b"))
		got := Make(OpConjunction, inner, w("c"), w("a"))
		assert.Equal(t, "(&&,a,b,c)", got.Name())
	})
	t.Run("singleton intersection collapses", func(t *testing.T) {
		assert.Equal(t, "a", Make(OpIntersectionExt, w("a"), w("a")).Name())
	})
	t.Run("singleton set is kept", func(t *testing.T) {
		assert.Equal(t, "{a}", Make(OpSetExt, w("a")).Name())
	})
	t.Run("intersection of int sets is a union", func(t *testing.T) {
		got := Make(OpIntersectionExt, Make(OpSetInt, w("a")), Make(OpSetInt, w("b")))
		assert.Equal(t, "[a,b]", got.Name())
	})
	t.Run("difference of ext sets", func(t *testing.T) {
		got := Make(OpDifferenceExt, Make(OpSetExt, w("a"), w("b")), Make(OpSetExt, w("b")))
		assert.Equal(t, "{a}", got.Name())
	})
	t.Run("double negation", func(t *testing.T) {
		assert.Equal(t, "a", Make(OpNegation, Make(OpNegation, w("a"))).Name())
	})
	t.Run("nested implication folds into conjunction", func(t *testing.T) {
		got := Make(OpImplication, w("a"), Make(OpImplication, w("b"), w("c")))
		assert.Equal(t, "<(&&,a,b) ==> c>", got.Name())
	})
}

func TestInvalidStatements(t *testing.T) {
	a, b := w("a"), w("b")
	assert.Nil(t, Make(OpInheritance, a, a))
	assert.Nil(t, Make(OpInheritance, a, Make(OpIntersectionExt, a, b)))
	assert.Nil(t, Make(OpInheritance, Make(OpInheritance, a, b), Make(OpInheritance, b, a)))
	assert.Nil(t, Make(OpImplication, Make(OpImplication, a, b), w("c")))
	assert.Nil(t, Make(OpInheritance, a, nil))
	assert.Nil(t, Make(OpProduct))
	// Images may contain the other side.
	assert.NotNil(t, Make(OpInheritance, a, MakeImage(OpImageExt, []*Term{a, w("r")}, 1)))
}

func TestCommutativeRoundTrip(t *testing.T) {
	for _, op := range []Operator{OpSetExt, OpSetInt, OpIntersectionExt, OpIntersectionInt, OpConjunction, OpDisjunction} {
		t.Run(op.String(), func(t *testing.T) {
			in := []*Term{w("c"), w("a"), w("b")}
			got := Make(op, in...)
			require.NotNil(t, got)
			assert.Empty(t, cmp.Diff([]string{"a", "b", "c"}, names(got.Components())))
			again := Make(op, got.Components()...)
			assert.True(t, got.Equal(again))
		})
	}
}

func TestProductImageConversions(t *testing.T) {
	a, b, r := w("a"), w("b"), w("r")
	product := Make(OpProduct, a, b)

	img := ImageFromProduct(OpImageExt, product, r, 0)
	require.NotNil(t, img)
	assert.Equal(t, "(/,r,_,b)", img.Name())
	assert.True(t, img.Relation().Equal(r))

	back := ProductFromImage(img, a, 0)
	assert.True(t, back.Equal(product))

	moved := ImageFromImage(img, a, 1)
	assert.Equal(t, "(/,r,a,_)", moved.Name())

	s1 := Make(OpInheritance, product, r)
	s2 := Make(OpInheritance, a, img)
	assert.True(t, EqualSubTermsInRespectToImageAndProduct(s1, s2))
	assert.False(t, EqualSubTermsInRespectToImageAndProduct(s1, s1))
}

func TestMakeBySymbol(t *testing.T) {
	got, err := MakeBySymbol("{--", []*Term{w("tweety"), w("bird")})
	require.NoError(t, err)
	assert.Equal(t, "<{tweety} --> bird>", got.Name())

	got, err = MakeBySymbol("/", []*Term{w("r"), w("_"), w("b")})
	require.NoError(t, err)
	assert.Equal(t, "(/,r,_,b)", got.Name())

	_, err = MakeBySymbol("?!", []*Term{w("a")})
	assert.ErrorIs(t, err, ErrUnknownOperator)

	_, err = MakeBySymbol("-->", []*Term{w("a"), w("a")})
	assert.ErrorIs(t, err, ErrInvalidTerm)
}

func TestOperationTerms(t *testing.T) {
	op := Make(OpInheritance, Make(OpProduct, w("hello")), w("^say"))
	assert.True(t, op.IsOperation())
	assert.Equal(t, "^say", op.OperationName())
	assert.False(t, Make(OpInheritance, w("a"), w("^say")).IsOperation())
}

func TestReduceAndSetComponent(t *testing.T) {
	conj := Make(OpConjunction, w("a"), w("b"), w("c"))
	assert.Equal(t, "(&&,a,c)", ReduceComponents(conj, w("b")).Name())
	assert.Equal(t, "c", ReduceComponents(conj, Make(OpConjunction, w("a"), w("b"))).Name())
	assert.Nil(t, ReduceComponents(conj, w("z")))

	replaced := SetComponent(Make(OpProduct, w("a"), w("b")), 1, w("z"))
	assert.Equal(t, "(*,a,z)", replaced.Name())
	assert.Equal(t, "b", SetComponent(Make(OpConjunction, w("a"), w("b")), 0, nil).Name())
}

func TestTableInterns(t *testing.T) {
	tb := NewTable()
	a := tb.Intern(Make(OpInheritance, w("a"), w("b")))
	b := tb.Intern(Make(OpInheritance, w("a"), w("b")))
	assert.Same(t, a, b)
	assert.Equal(t, 1, tb.Len())

	got, ok := tb.Lookup("<a --> b>")
	require.True(t, ok)
	assert.Same(t, a, got)

	tb.Forget("<a --> b>")
	assert.Zero(t, tb.Len())
}
