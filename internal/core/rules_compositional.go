package core

import (
	"narsgo/internal/entity"
	"narsgo/internal/inference"
	"narsgo/internal/language"
)

// composeCompound builds intersections, unions and differences from two
// judgments sharing the term at index.
func composeCompound(ctx *Context, taskContent, beliefContent *language.Term, index int) {
	s := ctx.task.Sentence()
	if !s.IsJudgment() || ctx.belief == nil || taskContent.Op() != beliefContent.Op() {
		return
	}
	componentT := taskContent.Component(1 - index)
	componentB := beliefContent.Component(1 - index)
	common := taskContent.Component(index)
	if componentT.IsCompound() && componentT.ContainsAllComponents(componentB) {
		decomposeCompound(ctx, componentT, componentB, common, index, true)
		return
	}
	if componentB.IsCompound() && componentB.ContainsAllComponents(componentT) {
		decomposeCompound(ctx, componentB, componentT, common, index, false)
		return
	}

	truthT, truthB := s.Truth(), ctx.belief.Truth()
	truthOr := inference.Union(truthT, truthB)
	truthAnd := inference.Intersection(truthT, truthB)
	var truthDif *entity.Truth
	var termOr, termAnd, termDif *language.Term

	// Composing on the subject side reverses the roles of the extensional
	// and intensional operators.
	orOp, andOp, difOp := language.OpIntersectionInt, language.OpIntersectionExt, language.OpDifferenceExt
	if index == 1 {
		orOp, andOp, difOp = language.OpIntersectionExt, language.OpIntersectionInt, language.OpDifferenceInt
	}
	switch taskContent.Op() {
	case language.OpInheritance:
		termOr = language.Make(orOp, componentT, componentB)
		termAnd = language.Make(andOp, componentT, componentB)
		switch {
		case truthB.IsNegative() && !truthT.IsNegative():
			termDif = language.Make(difOp, componentT, componentB)
			truthDif = inference.Intersection(truthT, inference.Negation(truthB))
		case truthT.IsNegative() && !truthB.IsNegative():
			termDif = language.Make(difOp, componentB, componentT)
			truthDif = inference.Intersection(truthB, inference.Negation(truthT))
		}
	case language.OpImplication:
		if index == 0 {
			termOr = language.Make(language.OpDisjunction, componentT, componentB)
			termAnd = language.Make(language.OpConjunction, componentT, componentB)
		} else {
			termOr = language.Make(language.OpConjunction, componentT, componentB)
			termAnd = language.Make(language.OpDisjunction, componentT, componentB)
		}
	}
	if index == 0 {
		processComposed(ctx, taskContent, common, termOr, truthOr)
		processComposed(ctx, taskContent, common, termAnd, truthAnd)
		processComposed(ctx, taskContent, common, termDif, truthDif)
	} else {
		processComposed(ctx, taskContent, termOr, common, truthOr)
		processComposed(ctx, taskContent, termAnd, common, truthAnd)
		processComposed(ctx, taskContent, termDif, common, truthDif)
	}
}

// processComposed derives <subject --> predicate> unless it repeats one
// of the premises.
func processComposed(ctx *Context, statement, subject, predicate *language.Term, truth *entity.Truth) {
	if subject == nil || predicate == nil || truth == nil {
		return
	}
	content := language.MakeLike(statement, subject, predicate)
	if content == nil || content.Equal(statement) || content.Equal(ctx.belief.Content()) {
		return
	}
	ctx.doublePremiseTask(content, truth, ctx.compoundForward(truth, content))
}

// decomposeCompound: {<(S|P) --> M>, <P --> M>} |- <S --> M>.
func decomposeCompound(ctx *Context, compound, component, term1 *language.Term, index int, compoundTask bool) {
	if compound.IsStatement() || compound.Op().IsImage() {
		return
	}
	term2 := language.ReduceComponents(compound, component)
	if term2 == nil {
		return
	}
	s := ctx.task.Sentence()
	oldContent := ctx.task.Content()
	v1, v2 := s.Truth(), ctx.belief.Truth()
	if !compoundTask {
		v1, v2 = v2, v1
	}
	var content *language.Term
	if index == 0 {
		content = language.MakeLike(oldContent, term1, term2)
	} else {
		content = language.MakeLike(oldContent, term2, term1)
	}
	if content == nil {
		return
	}

	// Mirrors the roles of the operators for the predicate side.
	conj, disj := language.OpIntersectionExt, language.OpIntersectionInt
	setConj, setDisj := language.OpSetInt, language.OpSetExt
	dif := language.OpDifferenceExt
	if index == 1 {
		conj, disj = disj, conj
		setConj, setDisj = setDisj, setConj
		dif = language.OpDifferenceInt
	}

	var truth *entity.Truth
	switch oldContent.Op() {
	case language.OpInheritance:
		switch {
		case compound.Op() == conj:
			truth = inference.ReduceConjunction(v1, v2)
		case compound.Op() == disj:
			truth = inference.ReduceDisjunction(v1, v2)
		case compound.Op() == setConj && component.Op() == setConj:
			truth = inference.ReduceConjunction(v1, v2)
		case compound.Op() == setDisj && component.Op() == setDisj:
			truth = inference.ReduceDisjunction(v1, v2)
		case compound.Op() == dif:
			if compound.Component(0).Equal(component) {
				truth = inference.ReduceDisjunction(v2, v1)
			} else {
				truth = inference.ReduceConjunctionNeg(v1, v2)
			}
		}
	case language.OpImplication:
		andOp, orOp := language.OpConjunction, language.OpDisjunction
		if index == 1 {
			andOp, orOp = orOp, andOp
		}
		switch compound.Op() {
		case andOp:
			truth = inference.ReduceConjunction(v1, v2)
		case orOp:
			truth = inference.ReduceDisjunction(v1, v2)
		}
	}
	if truth == nil {
		return
	}
	ctx.doublePremiseTask(content, truth, ctx.compoundForward(truth, content))
}

// decomposeStatement: {(&&, A, B), A} |- B, and for questions with a
// query variable, answers the conjunction from the two beliefs.
func decomposeStatement(ctx *Context, compound, component *language.Term, compoundTask bool, index int) {
	if !compound.ContainsComponent(component) && compound.Op() != component.Op() {
		return
	}
	s := ctx.task.Sentence()
	belief := ctx.belief
	content := language.ReduceComponents(compound, component)
	if content == nil {
		return
	}
	if isQuery(s) {
		ctx.doublePremiseTask(content, nil, ctx.compoundBackward(content))
		if !s.Content().HasVar(language.VarQuery) {
			return
		}
		cc := ctx.mem.Concept(content)
		if cc == nil {
			return
		}
		contentBelief := cc.getBelief(ctx, ctx.task)
		if contentBelief == nil {
			return
		}
		conj := language.Make(language.OpConjunction, component, content)
		truth := inference.Intersection(contentBelief.Truth(), belief.Truth())
		budget := ctx.compoundForward(truth, conj)
		// the answer is a judgment built on the belief just found
		saved := ctx.task
		ctx.task = entity.NewTask(contentBelief, saved.Budget().Clone(), saved, nil)
		ctx.doublePremiseTask(conj, truth, budget)
		ctx.task = saved
		return
	}
	v1, v2 := s.Truth(), belief.Truth()
	if !compoundTask {
		v1, v2 = v2, v1
	}
	var truth *entity.Truth
	switch compound.Op() {
	case language.OpConjunction:
		truth = inference.ReduceConjunction(v1, v2)
	case language.OpDisjunction:
		truth = inference.ReduceDisjunction(v1, v2)
	default:
		return
	}
	ctx.doublePremiseTask(content, truth, ctx.compoundForward(truth, content))
}

// introVarOuter introduces variables for the term two inheritances share:
// {<M --> S>, <M --> P>} |- <<$1 --> S> ==> <$1 --> P>> and friends.
func introVarOuter(ctx *Context, taskContent, beliefContent *language.Term, index int) {
	if taskContent.Op() != language.OpInheritance || beliefContent.Op() != language.OpInheritance {
		return
	}
	if !ctx.task.Sentence().IsJudgment() || ctx.belief == nil {
		return
	}
	truthT, truthB := ctx.task.Sentence().Truth(), ctx.belief.Truth()

	pair := func(v *language.Term) (*language.Term, *language.Term) {
		if index == 0 {
			return language.MakeStatement(language.OpInheritance, v, taskContent.Predicate()),
				language.MakeStatement(language.OpInheritance, v, beliefContent.Predicate())
		}
		return language.MakeStatement(language.OpInheritance, taskContent.Subject(), v),
			language.MakeStatement(language.OpInheritance, beliefContent.Subject(), v)
	}
	derive := func(content *language.Term, truth *entity.Truth) {
		if content == nil {
			return
		}
		ctx.doublePremiseTask(content, truth, ctx.compoundForward(truth, content))
	}

	state1, state2 := pair(language.MakeVariable(language.VarIndependent, "1"))
	derive(language.MakeStatement(language.OpImplication, state1, state2), inference.Induction(truthT, truthB))
	derive(language.MakeStatement(language.OpImplication, state2, state1), inference.Induction(truthB, truthT))
	derive(language.MakeStatement(language.OpEquivalence, state1, state2), inference.Comparison(truthT, truthB))

	state1, state2 = pair(language.MakeVariable(language.VarDependent, "1"))
	if state1 != nil && state2 != nil {
		derive(language.Make(language.OpConjunction, state1, state2), inference.Intersection(truthT, truthB))
	}
}
