package inference

import (
	"math"

	"narsgo/internal/entity"
	"narsgo/internal/language"
)

// TruthToQuality maps a truth value to a budget quality.
func TruthToQuality(t *entity.Truth) float64 {
	exp := t.Expectation()
	return math.Max(exp, (1-exp)*0.75)
}

// RankBelief orders belief tables: higher confidence and a shorter
// evidential base rank higher.
func RankBelief(s *entity.Sentence) float64 {
	originality := 1.0 / float64(s.Stamp().BaseLength()+1)
	return entity.Or(s.Truth().Confidence(), originality)
}

// SolutionQuality evaluates solution as an answer to problem. Questions
// with query variables prefer simple, expected answers; others prefer
// confidence.
func SolutionQuality(problem, solution *entity.Sentence, now int64) float64 {
	truth := solution.ProjectionTruth(problem.OccurrenceTime(), now)
	if truth == nil {
		return 0
	}
	if problem.Content().HasVar(language.VarQuery) {
		return truth.Expectation() / math.Sqrt(float64(solution.Content().Complexity()))
	}
	return truth.Confidence()
}

// Forget decays priority towards quality*relativeThreshold. The decay
// per call shrinks with durability and with forgetCycles.
func Forget(b *entity.Budget, forgetCycles, relativeThreshold float64) {
	p, d, q := b.Values()
	quality := q * relativeThreshold
	rest := p - quality
	if rest > 0 && forgetCycles > 0 {
		quality += rest * math.Pow(d, 1.0/(forgetCycles*rest))
	}
	b.SetPriority(math.Min(math.Max(quality, 0), 1))
}

// Activate raises the budget of a concept by an incoming budget.
func Activate(concept, incoming *entity.Budget, quality float64) {
	p, d, _ := concept.Values()
	ip, id, _ := incoming.Values()
	concept.Set(entity.Or(p, ip), entity.AveAri(d, id), quality)
}

// DistributeAmongLinks splits b over n links.
func DistributeAmongLinks(b *entity.Budget, n int) *entity.Budget {
	p, d, q := b.Values()
	return entity.NewClampedBudget(p/math.Sqrt(float64(n)), d, q)
}

// SolutionBudget computes the budget of an activated solution. task
// priority drops as the problem gets answered.
func SolutionBudget(problem, solution *entity.Sentence, task *entity.Task, now int64) *entity.Budget {
	quality := SolutionQuality(problem, solution, now)
	if task.Sentence().IsJudgment() {
		task.Budget().IncPriority(quality)
		return nil
	}
	p, d, _ := task.Budget().Values()
	budget := entity.NewClampedBudget(entity.Or(p, quality), d, TruthToQuality(solution.Truth()))
	task.Budget().SetPriority(math.Min(1-quality, p))
	return budget
}

// ReviseBudget computes the budget of a revision and weakens the task by
// how little the revision changed its expectation.
func ReviseBudget(tTruth, bTruth, truth *entity.Truth, task *entity.Task) *entity.Budget {
	difT := truth.ExpDifAbs(tTruth)
	task.Budget().DecPriority(1 - difT)
	task.Budget().DecDurability(1 - difT)
	dif := truth.Confidence() - math.Max(tTruth.Confidence(), bTruth.Confidence())
	dif = math.Max(dif, 0)
	p, d, _ := task.Budget().Values()
	return entity.NewClampedBudget(entity.Or(dif, p), entity.AveAri(dif, d), TruthToQuality(truth))
}
