package core

import (
	"narsgo/internal/entity"
	"narsgo/internal/events"
	"narsgo/internal/inference"
	"narsgo/internal/language"
	"narsgo/internal/logging"
)

// match pairs the current task with a belief about the same content:
// judgments are revised, questions are answered.
func match(ctx *Context) {
	s := ctx.task.Sentence()
	if s.IsJudgment() {
		if revisible(s, ctx.belief) {
			revision(ctx, s, ctx.belief, true)
		}
		return
	}
	if language.HasSubstitute(language.VarQuery, s.Content(), ctx.belief.Content()) {
		trySolution(ctx, ctx.belief, ctx.task)
	}
}

// revisible reports whether two sentences are about the same content and
// may pool their evidence.
func revisible(s1, s2 *entity.Sentence) bool {
	return s1.Revisible() && s1.Content().Equal(s2.Content())
}

// revision merges the evidence of two sentences about the same content.
func revision(ctx *Context, newBelief, oldBelief *entity.Sentence, feedbackToLinks bool) {
	newTruth, oldTruth := newBelief.Truth(), oldBelief.Truth()
	truth := inference.Revision(newTruth, oldTruth)
	budget := ctx.reviseBudget(newTruth, oldTruth, truth, feedbackToLinks)
	before := len(ctx.derived)
	ctx.doublePremiseTask(newBelief.Content(), truth, budget)
	if len(ctx.derived) > before {
		logging.InferenceDebug("revised %s with %s: %s", newBelief, oldBelief, truth)
		ctx.emit(events.Event{
			Type:     events.Revision,
			Term:     newBelief.Content(),
			Task:     ctx.derived[len(ctx.derived)-1],
			Sentence: oldBelief,
		})
	}
}

// trySolution checks whether belief answers task better than its best
// solution so far. Better answers are recorded, reported, and the belief
// is re-activated with the budget the answer earns.
func trySolution(ctx *Context, belief *entity.Sentence, task *entity.Task) bool {
	problem := task.Sentence()
	newQ := inference.SolutionQuality(problem, belief, ctx.now)
	if old := task.BestSolution(); old != nil {
		if inference.SolutionQuality(problem, old, ctx.now) >= newQ {
			return false
		}
	}
	task.SetBestSolution(belief)
	ctx.emit(events.Event{Type: events.Solution, Term: problem.Content(), Task: task, Sentence: belief})
	if task.IsInput() {
		logging.Inference("answer to %s: %s", problem, belief)
		ctx.emit(events.Event{Type: events.Answer, Term: problem.Content(), Task: task, Sentence: belief})
	}
	budget := inference.SolutionBudget(problem, belief, task, ctx.now)
	if budget != nil && budget.AboveThreshold() {
		ctx.activatedTask(budget, belief, task.ParentBelief())
	}
	return true
}
