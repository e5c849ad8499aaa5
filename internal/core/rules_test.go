package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narsgo/internal/entity"
	"narsgo/internal/inference"
	"narsgo/internal/language"
)

// premises builds a context pairing task with belief the way firing does.
func premises(t *testing.T, m *Memory, task, belief *entity.Task) *Context {
	t.Helper()
	ctx := newContext(m, m.Time())
	ctx.task = task
	if belief != nil {
		ctx.belief = belief.Sentence()
		ctx.newStamp = entity.MergeStamps(task.Sentence().Stamp(), belief.Sentence().Stamp(), ctx.now)
		require.NotNil(t, ctx.newStamp)
	}
	return ctx
}

func newJudgment(t *testing.T, m *Memory, content *language.Term, f, c float64) *entity.Task {
	t.Helper()
	require.NotNil(t, content)
	task, err := m.NewTask(InputSpec{Content: content, Punctuation: entity.Judgment, Truth: entity.NewTruth(f, c)})
	require.NoError(t, err)
	return task
}

func derivedOf(ctx *Context, content *language.Term) *entity.Task {
	for _, d := range ctx.Derived() {
		if d.Content().Equal(content) {
			return d
		}
	}
	return nil
}

func stmt(op language.Operator, s, p *language.Term) *language.Term {
	return language.MakeStatement(op, s, p)
}

func TestSyllogisticFigures(t *testing.T) {
	m := newTestMemory(t, nil)

	t.Run("deduction and exemplification", func(t *testing.T) {
		task := newJudgment(t, m, inh("b", "c"), 1, 0.9)
		belief := newJudgment(t, m, inh("a", "b"), 1, 0.9)
		ctx := premises(t, m, task, belief)

		asymmetricAsymmetric(ctx, task.Sentence(), belief.Sentence(), figure(0, 1))

		ded := derivedOf(ctx, inh("a", "c"))
		require.NotNil(t, ded)
		assert.True(t, ded.Sentence().Truth().Equal(inference.Deduction(task.Sentence().Truth(), belief.Sentence().Truth())))
		assert.Equal(t, 2, ded.Sentence().Stamp().BaseLength())
		assert.NotNil(t, derivedOf(ctx, inh("c", "a")))
	})

	t.Run("abduction induction comparison", func(t *testing.T) {
		task := newJudgment(t, m, inh("a", "m"), 1, 0.9)
		belief := newJudgment(t, m, inh("b", "m"), 1, 0.9)
		ctx := premises(t, m, task, belief)

		asymmetricAsymmetric(ctx, task.Sentence(), belief.Sentence(), figure(1, 1))

		assert.NotNil(t, derivedOf(ctx, inh("a", "b")))
		assert.NotNil(t, derivedOf(ctx, inh("b", "a")))
		assert.NotNil(t, derivedOf(ctx, stmt(language.OpSimilarity, word("a"), word("b"))))
		union := language.Make(language.OpIntersectionExt, word("a"), word("b"))
		assert.NotNil(t, derivedOf(ctx, stmt(language.OpInheritance, union, word("m"))))
	})

	t.Run("converse belief gives similarity", func(t *testing.T) {
		task := newJudgment(t, m, inh("a", "b"), 1, 0.9)
		belief := newJudgment(t, m, inh("b", "a"), 1, 0.9)
		ctx := premises(t, m, task, belief)

		asymmetricAsymmetric(ctx, task.Sentence(), belief.Sentence(), figure(0, 1))

		sim := derivedOf(ctx, stmt(language.OpSimilarity, word("a"), word("b")))
		require.NotNil(t, sim)
		assert.InDelta(t, 0.81, sim.Sentence().Truth().Confidence(), 1e-6)
	})

	t.Run("analogy", func(t *testing.T) {
		task := newJudgment(t, m, inh("a", "b"), 1, 0.9)
		belief := newJudgment(t, m, stmt(language.OpSimilarity, word("b"), word("c")), 1, 0.9)
		ctx := premises(t, m, task, belief)

		asymmetricSymmetric(ctx, task.Sentence(), belief.Sentence(), figure(1, 0))

		got := derivedOf(ctx, inh("a", "c"))
		require.NotNil(t, got)
		assert.True(t, got.Sentence().Truth().Equal(inference.Analogy(task.Sentence().Truth(), belief.Sentence().Truth())))
	})
}

func TestDetachment(t *testing.T) {
	m := newTestMemory(t, nil)
	cond, concl := inh("a", "b"), inh("c", "d")
	impl := stmt(language.OpImplication, cond, concl)

	task := newJudgment(t, m, cond, 1, 0.9)
	belief := newJudgment(t, m, impl, 1, 0.9)
	ctx := premises(t, m, task, belief)

	detachment(ctx, belief.Sentence(), task.Sentence(), 0)

	got := derivedOf(ctx, concl)
	require.NotNil(t, got)
	assert.True(t, got.Sentence().Truth().Equal(inference.Deduction(belief.Sentence().Truth(), task.Sentence().Truth())))
}

func TestStructuralRules(t *testing.T) {
	m := newTestMemory(t, nil)

	t.Run("conjunction yields its component", func(t *testing.T) {
		conj := language.Make(language.OpConjunction, inh("a", "b"), inh("c", "d"))
		task := newJudgment(t, m, conj, 1, 0.9)
		ctx := premises(t, m, task, nil)

		compoundAndSelf(ctx, conj, inh("a", "b"), true, 0)

		got := derivedOf(ctx, inh("a", "b"))
		require.NotNil(t, got)
		assert.True(t, got.Sentence().Truth().Equal(inference.DeductionReliance(task.Sentence().Truth(), entity.Reliance)))
	})

	t.Run("negation", func(t *testing.T) {
		task := newJudgment(t, m, inh("a", "b"), 1, 0.9)
		ctx := premises(t, m, task, nil)
		neg := language.Make(language.OpNegation, inh("a", "b"))

		compoundAndSelf(ctx, neg, inh("a", "b"), false, 0)

		got := derivedOf(ctx, neg)
		require.NotNil(t, got)
		assert.InDelta(t, 0.0, got.Sentence().Truth().Frequency(), 1e-9)
	})

	t.Run("contraposition", func(t *testing.T) {
		impl := stmt(language.OpImplication, inh("a", "b"), inh("c", "d"))
		task := newJudgment(t, m, impl, 0, 0.9)
		ctx := premises(t, m, task, nil)

		contraposition(ctx, impl, task.Sentence())

		want := stmt(language.OpImplication,
			language.Make(language.OpNegation, inh("c", "d")),
			language.Make(language.OpNegation, inh("a", "b")))
		got := derivedOf(ctx, want)
		require.NotNil(t, got)
		assert.True(t, got.Sentence().Truth().Equal(inference.Contraposition(task.Sentence().Truth())))
	})

	t.Run("product to images", func(t *testing.T) {
		product := language.Make(language.OpProduct, word("a"), word("b"))
		content := stmt(language.OpInheritance, product, word("r"))
		task := newJudgment(t, m, content, 1, 0.9)
		ctx := premises(t, m, task, nil)

		transformProductImage(ctx, content, content, []int{0, 0})

		first := stmt(language.OpInheritance, word("a"), language.ImageFromProduct(language.OpImageExt, product, word("r"), 0))
		second := stmt(language.OpInheritance, word("b"), language.ImageFromProduct(language.OpImageExt, product, word("r"), 1))
		assert.NotNil(t, derivedOf(ctx, first))
		assert.NotNil(t, derivedOf(ctx, second))
		for _, d := range ctx.Derived() {
			assert.True(t, d.Sentence().Truth().Equal(task.Sentence().Truth()))
		}
	})

	t.Run("image back to product", func(t *testing.T) {
		product := language.Make(language.OpProduct, word("a"), word("b"))
		image := language.ImageFromProduct(language.OpImageExt, product, word("r"), 0)
		content := stmt(language.OpInheritance, word("a"), image)
		task := newJudgment(t, m, content, 1, 0.9)
		ctx := premises(t, m, task, nil)

		transformProductImage(ctx, content, content, []int{1, 0})

		assert.NotNil(t, derivedOf(ctx, stmt(language.OpInheritance, product, word("r"))))
	})
}

func TestCompositionalRules(t *testing.T) {
	m := newTestMemory(t, nil)

	t.Run("conjunction decomposed against a belief", func(t *testing.T) {
		conj := language.Make(language.OpConjunction, inh("a", "b"), inh("c", "d"))
		task := newJudgment(t, m, conj, 0, 0.9)
		belief := newJudgment(t, m, inh("a", "b"), 1, 0.9)
		ctx := premises(t, m, task, belief)

		decomposeStatement(ctx, conj, inh("a", "b"), true, 0)

		got := derivedOf(ctx, inh("c", "d"))
		require.NotNil(t, got)
		want := inference.ReduceConjunction(task.Sentence().Truth(), belief.Sentence().Truth())
		assert.True(t, got.Sentence().Truth().Equal(want))
	})

	t.Run("outer variables", func(t *testing.T) {
		task := newJudgment(t, m, inh("m", "a"), 1, 0.9)
		belief := newJudgment(t, m, inh("m", "b"), 1, 0.9)
		ctx := premises(t, m, task, belief)

		introVarOuter(ctx, task.Content(), belief.Content(), 0)

		var implications, conjunctions int
		for _, d := range ctx.Derived() {
			switch d.Content().Op() {
			case language.OpImplication:
				implications++
				assert.True(t, d.Content().HasVar(language.VarIndependent))
			case language.OpConjunction:
				conjunctions++
				assert.True(t, d.Content().HasVar(language.VarDependent))
			}
		}
		assert.Equal(t, 2, implications)
		assert.Equal(t, 1, conjunctions)
	})
}

func TestDerivationsRequireEvidence(t *testing.T) {
	m := newTestMemory(t, nil)
	task := newJudgment(t, m, inh("b", "c"), 1, 0.9)
	belief := newJudgment(t, m, inh("a", "b"), 1, 0.9)
	ctx := premises(t, m, task, belief)
	ctx.newStamp = nil

	dedExe(ctx, word("a"), word("c"), task.Sentence(), belief.Sentence())

	assert.Empty(t, ctx.Derived())
}
