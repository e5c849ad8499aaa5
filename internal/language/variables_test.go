package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameVariablesIsCanonical(t *testing.T) {
	a := Make(OpImplication,
		Make(OpInheritance, MakeVariable(VarIndependent, "x"), w("bird")),
		Make(OpInheritance, MakeVariable(VarIndependent, "x"), w("animal")))
	b := Make(OpImplication,
		Make(OpInheritance, MakeVariable(VarIndependent, "y"), w("bird")),
		Make(OpInheritance, MakeVariable(VarIndependent, "y"), w("animal")))

	ra, rb := RenameVariables(a), RenameVariables(b)
	assert.Equal(t, "<<$1 --> bird> ==> <$1 --> animal>>", ra.Name())
	assert.True(t, ra.Equal(rb))
}

func TestUnifyIndependentVariable(t *testing.T) {
	x := MakeVariable(VarIndependent, "1")
	rule := Make(OpImplication,
		Make(OpInheritance, x, w("bird")),
		Make(OpInheritance, x, w("animal")))
	fact := Make(OpInheritance, w("tweety"), w("bird"))

	u1, u2, ok := Unify(VarIndependent, rule.Subject(), fact, rule, fact)
	require.True(t, ok)
	assert.Equal(t, "<<tweety --> bird> ==> <tweety --> animal>>", u1.Name())
	assert.True(t, u2.Equal(fact))
}

func TestUnifyFailsOnMismatch(t *testing.T) {
	t1 := Make(OpInheritance, MakeVariable(VarQuery, "1"), w("bird"))
	t2 := Make(OpInheritance, w("tweety"), w("fish"))
	assert.False(t, HasSubstitute(VarQuery, t1, t2))

	t3 := Make(OpInheritance, w("tweety"), w("bird"))
	assert.True(t, HasSubstitute(VarQuery, t1, t3))
	assert.False(t, HasSubstitute(VarIndependent, t1, t3))
}

func TestApplySubstituteRejectsInvalid(t *testing.T) {
	s := Make(OpInheritance, MakeVariable(VarIndependent, "1"), w("a"))
	got := ApplySubstitute(s, Substitution{"$1": w("a")})
	assert.Nil(t, got)
}
