package core

import (
	"narsgo/internal/entity"
	"narsgo/internal/inference"
	"narsgo/internal/language"
)

// isQuery reports whether s asks for a belief or a desire.
func isQuery(s *entity.Sentence) bool { return s.IsQuestion() || s.IsQuest() }

// dedExe derives <t1 --> t2> by deduction and <t2 --> t1> by
// exemplification.
func dedExe(ctx *Context, term1, term2 *language.Term, sentence, belief *entity.Sentence) {
	if language.InvalidStatement(term1, term2) {
		return
	}
	content := sentence.Content()
	v1, v2 := sentence.Truth(), belief.Truth()
	var truth1, truth2 *entity.Truth
	var budget1, budget2 *entity.Budget
	switch {
	case isQuery(sentence):
		budget1 = ctx.backwardWeak(v2)
		budget2 = ctx.backwardWeak(v2)
	case sentence.IsGoal():
		truth1 = inference.DesireWeak(v1, v2)
		budget1 = ctx.forward(truth1)
	default:
		truth1 = inference.Deduction(v1, v2)
		truth2 = inference.Exemplification(v1, v2)
		budget1 = ctx.forward(truth1)
		budget2 = ctx.forward(truth2)
	}
	ctx.doublePremiseTask(language.MakeLike(content, term1, term2), truth1, budget1)
	ctx.doublePremiseTask(language.MakeLike(content, term2, term1), truth2, budget2)
}

// abdIndCom derives by abduction, induction and comparison from two
// statements sharing a subject or a predicate.
func abdIndCom(ctx *Context, term1, term2 *language.Term, taskSentence, belief *entity.Sentence) {
	if language.InvalidStatement(term1, term2) || invalidPair(term1, term2) {
		return
	}
	content := taskSentence.Content()
	v1, v2 := taskSentence.Truth(), belief.Truth()
	var truth1, truth2, truth3 *entity.Truth
	var budget1, budget2, budget3 *entity.Budget
	switch {
	case isQuery(taskSentence):
		budget1 = ctx.backward(v2)
		budget2 = ctx.backwardWeak(v2)
		budget3 = ctx.backward(v2)
	case taskSentence.IsGoal():
		truth1 = inference.DesireStrong(v1, v2)
		truth2 = inference.DesireWeak(v2, v1)
		truth3 = inference.DesireStrong(v1, v2)
		budget1, budget2, budget3 = ctx.forward(truth1), ctx.forward(truth2), ctx.forward(truth3)
	default:
		truth1 = inference.Abduction(v1, v2)
		truth2 = inference.Abduction(v2, v1)
		truth3 = inference.Comparison(v1, v2)
		budget1, budget2, budget3 = ctx.forward(truth1), ctx.forward(truth2), ctx.forward(truth3)
	}
	ctx.doublePremiseTask(language.MakeLike(content, term1, term2), truth1, budget1)
	ctx.doublePremiseTask(language.MakeLike(content, term2, term1), truth2, budget2)
	ctx.doublePremiseTask(language.MakeSymmetric(content, term1, term2), truth3, budget3)
}

// invalidPair rejects conclusions where only one side carries an
// independent variable.
func invalidPair(t1, t2 *language.Term) bool {
	return t1.HasVar(language.VarIndependent) != t2.HasVar(language.VarIndependent)
}

// analogy derives <subj --> pred> from an asymmetric and a symmetric
// statement sharing a term.
func analogy(ctx *Context, subj, pred *language.Term, asym, sym *entity.Sentence) {
	if language.InvalidStatement(subj, pred) {
		return
	}
	sentence := ctx.task.Sentence()
	commutative := sentence.Content().Op().IsCommutative()
	var truth *entity.Truth
	var budget *entity.Budget
	switch {
	case isQuery(sentence):
		if commutative {
			budget = ctx.backwardWeak(asym.Truth())
		} else {
			budget = ctx.backward(sym.Truth())
		}
	case sentence.IsGoal():
		if commutative {
			truth = inference.DesireWeak(asym.Truth(), sym.Truth())
		} else {
			truth = inference.DesireStrong(asym.Truth(), sym.Truth())
		}
		budget = ctx.forward(truth)
	default:
		truth = inference.Analogy(asym.Truth(), sym.Truth())
		budget = ctx.forward(truth)
	}
	ctx.doublePremiseTask(language.MakeLike(asym.Content(), subj, pred), truth, budget)
}

// resemblance derives a symmetric statement from two symmetric ones.
func resemblance(ctx *Context, term1, term2 *language.Term, belief, sentence *entity.Sentence) {
	if language.InvalidStatement(term1, term2) {
		return
	}
	var truth *entity.Truth
	var budget *entity.Budget
	switch {
	case isQuery(sentence):
		budget = ctx.backward(belief.Truth())
	case sentence.IsGoal():
		truth = inference.DesireStrong(belief.Truth(), sentence.Truth())
		budget = ctx.forward(truth)
	default:
		truth = inference.Resemblance(belief.Truth(), sentence.Truth())
		budget = ctx.forward(truth)
	}
	ctx.doublePremiseTask(language.MakeLike(belief.Content(), term1, term2), truth, budget)
}

// detachment derives one side of an implication or equivalence from the
// other side.
func detachment(ctx *Context, mainSentence, subSentence *entity.Sentence, side int) {
	statement := mainSentence.Content()
	if statement.Op() != language.OpImplication && statement.Op() != language.OpEquivalence {
		return
	}
	sub := subSentence.Content()
	var content *language.Term
	switch {
	case side == 0 && sub.Equal(statement.Subject()):
		content = statement.Predicate()
	case side == 1 && sub.Equal(statement.Predicate()):
		content = statement.Subject()
	default:
		return
	}
	if content.IsStatement() && language.InvalidStatement(content.Subject(), content.Predicate()) {
		return
	}
	taskSentence := ctx.task.Sentence()
	truth1, truth2 := mainSentence.Truth(), subSentence.Truth()
	equivalence := statement.Op() == language.OpEquivalence
	var truth *entity.Truth
	var budget *entity.Budget
	switch {
	case isQuery(taskSentence):
		beliefTruth := ctx.belief.Truth()
		if equivalence || side != 0 {
			budget = ctx.backward(beliefTruth)
		} else {
			budget = ctx.backwardWeak(beliefTruth)
		}
	case taskSentence.IsGoal():
		switch {
		case equivalence:
			truth = inference.DesireStrong(truth2, truth1)
		case side == 0:
			truth = inference.DesireInd(truth1, truth2)
		default:
			truth = inference.DesireDed(truth1, truth2)
		}
		budget = ctx.forward(truth)
	default:
		switch {
		case equivalence:
			truth = inference.Analogy(truth2, truth1)
		case side == 0:
			truth = inference.Deduction(truth1, truth2)
		default:
			truth = inference.Abduction(truth2, truth1)
		}
		budget = ctx.forward(truth)
	}
	ctx.doublePremiseTask(content, truth, budget)
}

// conditionalDedInd removes or replaces a condition of a conjunctive
// implication using the other premise: deduction when the premise is the
// condition itself, induction when it implies the condition.
func conditionalDedInd(ctx *Context, premise1 *language.Term, index int, premise2 *language.Term, side int) {
	if premise1.Op() != language.OpImplication || ctx.belief == nil {
		return
	}
	ts := ctx.task.Sentence()
	deduction := side != 0
	conditionalTask := language.HasSubstitute(language.VarIndependent, premise2, ctx.belief.Content())

	var common, newComponent *language.Term
	switch side {
	case 0:
		if !premise2.IsStatement() {
			return
		}
		common, newComponent = premise2.Subject(), premise2.Predicate()
	case 1:
		if !premise2.IsStatement() {
			return
		}
		common, newComponent = premise2.Predicate(), premise2.Subject()
	default:
		common = premise2
	}

	oldCondition := premise1.Subject()
	if oldCondition.Op() != language.OpConjunction {
		return
	}
	if i := oldCondition.IndexOf(common); i >= 0 {
		index = i
	} else {
		if index < 0 || index >= oldCondition.Size() {
			return
		}
		u0, u1, ok := language.Unify(language.VarIndependent, oldCondition.Component(index), common, premise1, premise2)
		if !ok && common.Op() == oldCondition.Op() && index < common.Size() {
			u0, u1, ok = language.Unify(language.VarIndependent, oldCondition.Component(index), common.Component(index), premise1, premise2)
		}
		if !ok || u0.Op() != language.OpImplication {
			return
		}
		premise1, premise2 = u0, u1
		if oldCondition = premise1.Subject(); oldCondition.Op() != language.OpConjunction || index >= oldCondition.Size() {
			return
		}
	}

	var content *language.Term
	if !oldCondition.Equal(common) {
		if newCondition := language.SetComponent(oldCondition, index, newComponent); newCondition != nil {
			content = language.MakeLike(premise1, newCondition, premise1.Predicate())
		}
	}
	if content == nil {
		content = premise1.Predicate()
	}

	truth1, truth2 := ts.Truth(), ctx.belief.Truth()
	var truth *entity.Truth
	var budget *entity.Budget
	switch {
	case isQuery(ts):
		budget = ctx.backwardWeak(truth2)
	case ts.IsGoal():
		if deduction {
			truth = inference.DesireDed(truth1, truth2)
		} else {
			truth = inference.DesireInd(truth1, truth2)
		}
		budget = ctx.forward(truth)
	default:
		switch {
		case deduction:
			truth = inference.Deduction(truth1, truth2)
		case conditionalTask:
			truth = inference.Induction(truth2, truth1)
		default:
			truth = inference.Induction(truth1, truth2)
		}
		budget = ctx.forward(truth)
	}
	ctx.doublePremiseTask(content, truth, budget)
}

// elimiVarDep removes a component from a conjunction after unifying it
// with the other premise on dependent variables.
func elimiVarDep(ctx *Context, compound, component *language.Term, compoundTask bool) {
	content := language.ReduceComponents(compound, component)
	if content == nil || (content.IsStatement() && language.InvalidStatement(content.Subject(), content.Predicate())) {
		return
	}
	s := ctx.task.Sentence()
	v1, v2 := s.Truth(), ctx.belief.Truth()
	var truth *entity.Truth
	var budget *entity.Budget
	switch {
	case isQuery(s):
		if compoundTask {
			budget = ctx.backward(v2)
		} else {
			budget = ctx.backwardWeak(v2)
		}
	default:
		if compoundTask {
			truth = inference.AnonymousAnalogy(v1, v2)
		} else {
			truth = inference.AnonymousAnalogy(v2, v1)
		}
		budget = ctx.compoundForward(truth, content)
	}
	ctx.doublePremiseTask(content, truth, budget)
}

// matchReverse handles a belief that is the converse of the task.
func matchReverse(ctx *Context) {
	s := ctx.task.Sentence()
	if s.IsJudgment() {
		inferToSym(ctx, s, ctx.belief)
		return
	}
	conversion(ctx)
}

// matchAsymSym handles an asymmetric and a symmetric statement over the
// same pair of terms.
func matchAsymSym(ctx *Context, asym, sym *entity.Sentence) {
	if ctx.task.Sentence().IsJudgment() {
		inferToAsym(ctx, asym, sym)
		return
	}
	convertRelation(ctx)
}

// inferToSym: {<S --> P>, <P --> S>} |- <S <-> P>.
func inferToSym(ctx *Context, judgment1, judgment2 *entity.Sentence) {
	s1 := judgment1.Content()
	content := language.MakeSymmetric(s1, s1.Subject(), s1.Predicate())
	truth := inference.Intersection(judgment1.Truth(), judgment2.Truth())
	ctx.doublePremiseTask(content, truth, ctx.forward(truth))
}

// inferToAsym: {<S <-> P>, <P --> S>} |- <S --> P>.
func inferToAsym(ctx *Context, asym, sym *entity.Sentence) {
	st := asym.Content()
	content := language.MakeLike(st, st.Predicate(), st.Subject())
	truth := inference.ReduceConjunction(sym.Truth(), asym.Truth())
	ctx.doublePremiseTask(content, truth, ctx.forward(truth))
}

// conversion answers <S --> P>? with <P --> S>.
func conversion(ctx *Context) {
	truth := inference.Conversion(ctx.belief.Truth())
	convertedJudgment(ctx, truth, ctx.forward(truth))
}

// convertRelation answers a symmetric question from an asymmetric belief
// or the other way round.
func convertRelation(ctx *Context) {
	truth := ctx.belief.Truth()
	if ctx.task.Content().Op().IsCommutative() {
		truth = inference.AbductionReliance(truth, 1)
	} else {
		truth = inference.DeductionReliance(truth, 1)
	}
	convertedJudgment(ctx, truth, ctx.forward(truth))
}

// convertedJudgment answers the current question with the belief content
// rewritten into the copula of the question, keeping the constant side of
// the question where it has a query variable.
func convertedJudgment(ctx *Context, truth *entity.Truth, budget *entity.Budget) {
	content := ctx.task.Content()
	beliefContent := ctx.belief.Content()
	if !content.IsStatement() || !beliefContent.IsStatement() {
		return
	}
	subj, pred := content.Subject(), content.Predicate()
	subjB, predB := beliefContent.Subject(), beliefContent.Predicate()
	var other *language.Term
	switch {
	case subj.HasVar(language.VarQuery):
		if pred.Equal(subjB) {
			other = predB
		} else {
			other = subjB
		}
		content = language.MakeLike(content, other, pred)
	case pred.HasVar(language.VarQuery):
		if subj.Equal(subjB) {
			other = predB
		} else {
			other = subjB
		}
		content = language.MakeLike(content, subj, other)
	}
	ctx.singlePremiseTaskAs(content, entity.Judgment, truth, budget)
}
