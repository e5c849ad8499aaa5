package inference

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narsgo/internal/entity"
	"narsgo/internal/language"
)

func judgment(content *language.Term, f, c float64, serials ...int64) *entity.Sentence {
	stamp := entity.NewStamp(serials[0], 0, entity.Eternal)
	for _, s := range serials[1:] {
		stamp = entity.MergeStamps(stamp, entity.NewStamp(s, 0, entity.Eternal), 0)
	}
	return entity.NewSentence(content, entity.Judgment, entity.NewTruth(f, c), stamp)
}

func inh(s, p string) *language.Term {
	return language.Make(language.OpInheritance, language.MakeWord(s), language.MakeWord(p))
}

func TestTruthToQuality(t *testing.T) {
	assert.InDelta(t, 0.95, TruthToQuality(tv(1, 0.9)), 1e-9)
	// Strong negative evidence is still worth something.
	assert.InDelta(t, 0.75*0.95, TruthToQuality(tv(0, 0.9)), 1e-9)
}

func TestRankBeliefPrefersConfidenceAndOriginality(t *testing.T) {
	content := inh("a", "b")
	weak := judgment(content, 1, 0.5, 1)
	strong := judgment(content, 1, 0.9, 2)
	assert.Greater(t, RankBelief(strong), RankBelief(weak))

	original := judgment(content, 1, 0.6, 3)
	derived := judgment(content, 1, 0.6, 4, 5, 6)
	assert.Greater(t, RankBelief(original), RankBelief(derived))
}

func TestSolutionQuality(t *testing.T) {
	q := entity.NewSentence(inh("a", "b"), entity.Question, nil, entity.NewStamp(9, 0, entity.Eternal))
	sol := judgment(inh("a", "b"), 1, 0.9, 1)
	assert.InDelta(t, 0.9, SolutionQuality(q, sol, 0), 1e-9)

	varQ := entity.NewSentence(
		language.Make(language.OpInheritance, language.MakeVariable(language.VarQuery, "x"), language.MakeWord("b")),
		entity.Question, nil, entity.NewStamp(9, 0, entity.Eternal))
	assert.InDelta(t, 0.95/math.Sqrt(3), SolutionQuality(varQ, sol, 0), 1e-9)
}

func TestForgetIsMonotonic(t *testing.T) {
	b := entity.NewBudget(0.9, 0.8, 0.5)
	last := b.Priority()
	for i := 0; i < 50; i++ {
		Forget(b, 10, entity.BagThreshold)
		require.LessOrEqual(t, b.Priority(), last)
		last = b.Priority()
	}
	assert.GreaterOrEqual(t, b.Priority(), 0.5*entity.BagThreshold)
	assert.Less(t, b.Priority(), 0.9)

	durable := entity.NewBudget(0.9, 0.99, 0.5)
	fragile := entity.NewBudget(0.9, 0.1, 0.5)
	Forget(durable, 10, entity.BagThreshold)
	Forget(fragile, 10, entity.BagThreshold)
	assert.Greater(t, durable.Priority(), fragile.Priority())
}

func TestActivateAndDistribute(t *testing.T) {
	c := entity.NewBudget(0.5, 0.4, 0.1)
	Activate(c, entity.NewBudget(0.5, 0.8, 0.9), 0.3)
	p, d, q := c.Values()
	assert.InDelta(t, 0.75, p, 1e-9)
	assert.InDelta(t, 0.6, d, 1e-9)
	assert.InDelta(t, 0.3, q, 1e-9)

	shared := DistributeAmongLinks(entity.NewBudget(0.8, 0.5, 0.4), 4)
	assert.InDelta(t, 0.4, shared.Priority(), 1e-9)
	assert.InDelta(t, 0.5, shared.Durability(), 1e-9)
}

func TestReviseBudgetWeakensTask(t *testing.T) {
	s := judgment(inh("a", "b"), 1, 0.9, 1)
	task := entity.NewTask(s, entity.NewBudget(0.8, 0.5, 0.9), nil, nil)
	b := ReviseBudget(tv(1, 0.9), tv(1, 0.9), Revision(tv(1, 0.9), tv(1, 0.9)), task)

	assert.Less(t, task.Budget().Priority(), 0.8)
	assert.Greater(t, b.Priority(), 0.0)
	assert.InDelta(t, TruthToQuality(Revision(tv(1, 0.9), tv(1, 0.9))), b.Quality(), 1e-9)
}
