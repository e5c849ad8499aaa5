package kernel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"narsgo/internal/config"
	"narsgo/internal/entity"
	"narsgo/internal/language"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func inh(s, p string) *language.Term {
	return language.MakeStatement(language.OpInheritance, language.MakeWord(s), language.MakeWord(p))
}

func belief(content *language.Term, f, c float64) *entity.Sentence {
	return entity.NewSentence(content, entity.Judgment, entity.NewTruth(f, c), entity.NewStamp(1, 0, entity.Eternal))
}

func newKernel(t *testing.T, cfg config.KernelConfig) *Kernel {
	t.Helper()
	k, err := New(cfg)
	require.NoError(t, err)
	return k
}

func evaluated(t *testing.T, k *Kernel, beliefs ...*entity.Sentence) {
	t.Helper()
	_, err := k.Evaluate(context.Background(), beliefs)
	require.NoError(t, err)
}

func TestBeliefsAreExported(t *testing.T) {
	k := newKernel(t, config.KernelConfig{})
	conj := language.Make(language.OpConjunction, inh("a", "b"), inh("c", "d"))
	stats, err := k.Evaluate(context.Background(), []*entity.Sentence{
		belief(inh("robin", "bird"), 1, 0.9),
		belief(conj, 0.5, 0.45),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Beliefs)
	assert.Positive(t, stats.Exported)

	facts, err := k.Facts("belief")
	require.NoError(t, err)
	want := []Fact{
		{Predicate: "belief", Args: []any{conj.Name(), int64(50), int64(45)}},
		{Predicate: "belief", Args: []any{inh("robin", "bird").Name(), int64(100), int64(90)}},
	}
	sortFacts(want)
	assert.Empty(t, cmp.Diff(want, facts))

	statements, err := k.Facts("statement")
	require.NoError(t, err)
	assert.Len(t, statements, 3, "one per statement term, nested ones included")

	compounds, err := k.Facts("compound")
	require.NoError(t, err)
	require.Len(t, compounds, 1)
	assert.Equal(t, []any{conj.Name(), "/conjunction"}, compounds[0].Args)

	components, err := k.Facts("component")
	require.NoError(t, err)
	assert.Len(t, components, 2+2+2+2)
}

func TestDerivedPredicates(t *testing.T) {
	k := newKernel(t, config.KernelConfig{})
	evaluated(t, k,
		belief(inh("robin", "bird"), 1, 0.9),
		belief(inh("bird", "animal"), 1, 0.9),
		belief(inh("animal", "thing"), 1, 0.3),
	)

	got, err := k.Query(`isa("robin", P)`)
	require.NoError(t, err)
	var preds []any
	for _, b := range got {
		preds = append(preds, b["P"])
	}
	assert.ElementsMatch(t, []any{"bird", "animal", "thing"}, preds)

	confident, err := k.Facts("confident")
	require.NoError(t, err)
	assert.Len(t, confident, 2)
}

func TestUserRules(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.mg")
	require.NoError(t, os.WriteFile(rules, []byte(`
sibling(X, Y) :- isa(X, P), isa(Y, P), X != Y.
`), 0o644))

	k := newKernel(t, config.KernelConfig{RulesPath: rules, FactLimit: 1000, QueryTimeout: "5s"})
	assert.Contains(t, k.Predicates(), "sibling")

	evaluated(t, k, belief(inh("cat", "pet"), 1, 0.9), belief(inh("dog", "pet"), 1, 0.9))
	got, err := k.Query("sibling(X, Y)")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = k.Query(`sibling("cat", Y)`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "dog", got[0]["Y"])
}

func TestQueryPatterns(t *testing.T) {
	k := newKernel(t, config.KernelConfig{})
	evaluated(t, k, belief(inh("a", "a2"), 1, 0.9), belief(language.MakeStatement(language.OpSimilarity, language.MakeWord("x"), language.MakeWord("y")), 1, 0.9))

	tests := []struct {
		query string
		want  int
	}{
		{"believed", 2},
		{"believed(S, /similarity, P)", 1},
		{"believed(_, /inheritance, _)", 1},
		{"believed(S, C, S)", 0},
		{"?believed(S, C, P).", 2},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := k.Query(tt.query)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestQueryErrors(t *testing.T) {
	k := newKernel(t, config.KernelConfig{})
	_, err := k.Query("belief")
	assert.ErrorIs(t, err, ErrNotEvaluated)

	evaluated(t, k)
	_, err = k.Query("nothing(X)")
	assert.ErrorIs(t, err, ErrUnknownPredicate)
	_, err = k.Facts("nothing")
	assert.ErrorIs(t, err, ErrUnknownPredicate)
	_, err = k.Query("belief(X)")
	assert.Error(t, err)
	_, err = k.Query("  ")
	assert.Error(t, err)
}

func TestBadRulesLeaveProgramIntact(t *testing.T) {
	k := newKernel(t, config.KernelConfig{})
	before := k.Predicates()

	assert.Error(t, k.AddRules("broken(X :- "))
	assert.Error(t, k.AddRules("twice(X) :- belief(X)."))
	assert.Equal(t, before, k.Predicates())

	require.NoError(t, k.AddRules("strong(N) :- belief(N, F, _), :gt(F, 90)."))
	assert.Contains(t, k.Predicates(), "strong")
}

func TestMissingRulesFile(t *testing.T) {
	_, err := New(config.KernelConfig{RulesPath: filepath.Join(t.TempDir(), "none.mg")})
	assert.Error(t, err)
}
